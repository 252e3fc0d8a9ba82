// Package ranking orders charging stations by the estimated time until a
// vehicle can start charging there: travel time plus expected queue time.
//
// Zero ports yield a zero queue time and a zero traffic speed yields a zero
// travel time. Both are policy choices, not "no data" markers. Waiting counts
// larger than the number of ports are accepted as-is and produce queue times
// longer than a single session.
package ranking

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/kilianp07/evstation/core/geo"
	"github.com/kilianp07/evstation/core/model"
)

// ErrInvalidState is returned when a station state carries values that would
// make the estimate meaningless (negative counts, non-finite numbers).
var ErrInvalidState = errors.New("invalid station state")

// QueueTime returns the expected wait in minutes before a port frees up.
func QueueTime(waiting, ports int, sessionMinutes float64) float64 {
	if ports <= 0 {
		return 0
	}
	return (float64(waiting) / float64(ports)) * sessionMinutes
}

// TravelTime returns the minutes needed to cover distanceKm at speedKmh.
func TravelTime(distanceKm, speedKmh float64) float64 {
	if speedKmh <= 0 {
		return 0
	}
	return (distanceKm / speedKmh) * 60
}

// Estimate computes the unrounded distance, queue, travel and total times of
// a single station for the given user position and vehicle type.
func Estimate(user geo.Point, vt model.VehicleType, s model.StationState) (distanceKm, queue, travel, total float64) {
	ports, waiting, session := s.Occupancy(vt)
	distanceKm = geo.Haversine(user, geo.Point{Lat: s.Latitude, Lon: s.Longitude})
	queue = QueueTime(waiting, ports, session)
	travel = TravelTime(distanceKm, s.LocalTrafficSpeedKmh)
	return distanceKm, queue, travel, queue + travel
}

// Rank annotates every station with its ETA and returns them sorted ascending
// by the unrounded ETA. Ties keep input order and the first station is the
// only one marked as recommended. The input slice is never modified.
func Rank(user geo.Point, vt model.VehicleType, states []model.StationState) ([]model.RankedStation, error) {
	if !vt.Valid() {
		return nil, fmt.Errorf("%w: %d", model.ErrInvalidVehicleType, int(vt))
	}
	if !finite(user.Lat) || !finite(user.Lon) {
		return nil, fmt.Errorf("%w: user position is not finite", ErrInvalidState)
	}
	type entry struct {
		ranked model.RankedStation
		eta    float64
	}
	entries := make([]entry, 0, len(states))
	for _, s := range states {
		if err := Validate(s); err != nil {
			return nil, err
		}
		dist, queue, travel, total := Estimate(user, vt, s)
		entries = append(entries, entry{
			ranked: model.RankedStation{
				StationState:      s,
				DistanceKm:        round(dist, 2),
				QueueTimeMinutes:  round(queue, 1),
				TravelTimeMinutes: round(travel, 1),
				TotalETAMinutes:   round(total, 1),
			},
			eta: total,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].eta < entries[j].eta })

	out := make([]model.RankedStation, len(entries))
	for i, e := range entries {
		out[i] = e.ranked
	}
	if len(out) > 0 {
		out[0].IsRecommended = true
	}
	return out, nil
}

// Validate rejects station states whose numbers cannot produce a finite ETA.
func Validate(s model.StationState) error {
	switch {
	case s.CarPorts < 0 || s.ScooterPorts < 0:
		return fmt.Errorf("%w: station %s has negative ports", ErrInvalidState, s.ID)
	case s.CarWaiting < 0 || s.ScooterWaiting < 0:
		return fmt.Errorf("%w: station %s has negative waiting count", ErrInvalidState, s.ID)
	case s.CarAvgSessionMinutes < 0 || s.ScooterAvgSessionMinutes < 0:
		return fmt.Errorf("%w: station %s has negative session length", ErrInvalidState, s.ID)
	}
	for _, v := range []float64{s.Latitude, s.Longitude, s.CarAvgSessionMinutes, s.ScooterAvgSessionMinutes, s.LocalTrafficSpeedKmh} {
		if !finite(v) {
			return fmt.Errorf("%w: station %s has a non-finite value", ErrInvalidState, s.ID)
		}
	}
	return nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func round(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}
