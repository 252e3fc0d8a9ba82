package model

// Station is the fixed identity of a charging site.
type Station struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// StationState captures the dynamic attributes of a station at request time.
// Waiting counts are not bounded by the port counts.
type StationState struct {
	Station
	CarPorts                 int     `json:"car_ports"`
	ScooterPorts             int     `json:"scooter_ports"`
	CarWaiting               int     `json:"car_waiting"`
	ScooterWaiting           int     `json:"scooter_waiting"`
	CarAvgSessionMinutes     float64 `json:"car_avg_session_minutes"`
	ScooterAvgSessionMinutes float64 `json:"scooter_avg_session_minutes"`
	LocalTrafficSpeedKmh     float64 `json:"local_traffic_speed_kmh"`
}

// StationReading is a station state as supplied by a caller. Coordinates are
// pointers so that a station located at (0,0) can be told apart from one
// whose location is left to the catalog. They shadow the embedded ones on
// the wire.
type StationReading struct {
	StationState
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Located reports whether both coordinates were supplied.
func (r StationReading) Located() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Occupancy returns the ports, waiting vehicles and average session length
// for the given vehicle type.
func (s StationState) Occupancy(t VehicleType) (ports, waiting int, sessionMinutes float64) {
	if t == VehicleScooter {
		return s.ScooterPorts, s.ScooterWaiting, s.ScooterAvgSessionMinutes
	}
	return s.CarPorts, s.CarWaiting, s.CarAvgSessionMinutes
}

// RankedStation is a StationState annotated with its travel and queue estimates.
type RankedStation struct {
	StationState
	DistanceKm        float64 `json:"distance_km"`
	QueueTimeMinutes  float64 `json:"queue_time_minutes"`
	TravelTimeMinutes float64 `json:"travel_time_minutes"`
	TotalETAMinutes   float64 `json:"total_eta_minutes"`
	IsRecommended     bool    `json:"is_recommended"`
}
