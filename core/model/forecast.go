package model

import "time"

// ForecastPoint is a single predicted value produced by a forecasting model.
// Lower and Upper are nil when the model does not report uncertainty bounds.
type ForecastPoint struct {
	Time  time.Time `json:"timestamp"`
	Value float64   `json:"predicted_value"`
	Lower *float64  `json:"lower_bound,omitempty"`
	Upper *float64  `json:"upper_bound,omitempty"`
}

// ForecastRow is the worst-case predicted demand for a station and vehicle type.
type ForecastRow struct {
	StationID      string      `json:"station_id"`
	StationName    string      `json:"station_name"`
	VehicleType    VehicleType `json:"vehicle_type"`
	ForecastedPeak float64     `json:"forecasted_peak"`
}

// CapacityRow is the rated number of ports of a station for a vehicle type.
type CapacityRow struct {
	StationName   string      `json:"station_name"`
	VehicleType   VehicleType `json:"vehicle_type"`
	RatedCapacity int         `json:"rated_capacity"`
}

// OverloadResult is one row of a capacity report. Capacity, UnmetDemand and
// OverloadRatio are nil when the station has no known capacity.
type OverloadResult struct {
	StationID      string      `json:"station_id"`
	StationName    string      `json:"station_name"`
	VehicleType    VehicleType `json:"vehicle_type"`
	ForecastedPeak float64     `json:"forecasted_peak"`
	Capacity       *int        `json:"capacity"`
	UnmetDemand    *float64    `json:"unmet_demand"`
	OverloadRatio  *float64    `json:"overload_ratio,omitempty"`
	Overloaded     bool        `json:"overloaded"`
	Recommendation string      `json:"recommendation"`
}
