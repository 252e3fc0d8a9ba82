package forecast

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/evstation/core/model"
)

// PeakHour is the worst-case predicted demand of a station over a horizon
// and the hour at which it happens.
type PeakHour struct {
	StationID   string            `json:"station_id"`
	StationName string            `json:"station_name"`
	VehicleType model.VehicleType `json:"vehicle_type"`
	Time        time.Time         `json:"peak_hour"`
	Value       float64           `json:"predicted_vehicles"`
}

// Row converts the peak into the analyzer input row.
func (p PeakHour) Row() model.ForecastRow {
	return model.ForecastRow{
		StationID:      p.StationID,
		StationName:    p.StationName,
		VehicleType:    p.VehicleType,
		ForecastedPeak: p.Value,
	}
}

// Peak returns the point with the highest predicted value. The earliest point
// wins ties. ok is false when points is empty.
func Peak(points []model.ForecastPoint) (peak model.ForecastPoint, ok bool) {
	if len(points) == 0 {
		return model.ForecastPoint{}, false
	}
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	return points[floats.MaxIdx(values)], true
}

// StationPeak forecasts one station for vt and reduces the series to its
// peak. Negative predictions are clamped to zero: a model may undershoot but
// demand cannot be negative. ok is false when the forecaster returns no points.
func StationPeak(ctx context.Context, f Forecaster, st model.Station, vt model.VehicleType, start time.Time, horizonHours int) (peak PeakHour, ok bool, err error) {
	points, err := f.Forecast(ctx, st, vt, start, horizonHours)
	if err != nil {
		return PeakHour{}, false, fmt.Errorf("forecast %s/%s: %w", st.ID, vt, err)
	}
	p, ok := Peak(points)
	if !ok {
		return PeakHour{}, false, nil
	}
	return PeakHour{
		StationID:   st.ID,
		StationName: st.Name,
		VehicleType: vt,
		Time:        p.Time,
		Value:       math.Max(p.Value, 0),
	}, true, nil
}

// Collect runs StationPeak for every station in order, skipping stations
// without forecast points.
func Collect(ctx context.Context, f Forecaster, stations []model.Station, vt model.VehicleType, start time.Time, horizonHours int) ([]PeakHour, error) {
	peaks := make([]PeakHour, 0, len(stations))
	for _, st := range stations {
		p, ok, err := StationPeak(ctx, f, st, vt, start, horizonHours)
		if err != nil {
			return nil, err
		}
		if ok {
			peaks = append(peaks, p)
		}
	}
	return peaks, nil
}

// Rows converts peaks into analyzer input rows.
func Rows(peaks []PeakHour) []model.ForecastRow {
	rows := make([]model.ForecastRow, len(peaks))
	for i, p := range peaks {
		rows[i] = p.Row()
	}
	return rows
}

// TopBusiest returns the n highest peaks, descending. Ties keep input order.
// A non-positive n returns every peak.
func TopBusiest(peaks []PeakHour, n int) []PeakHour {
	out := make([]PeakHour, len(peaks))
	copy(out, peaks)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
