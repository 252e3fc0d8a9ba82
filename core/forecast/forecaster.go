package forecast

import (
	"context"
	"time"

	"github.com/kilianp07/evstation/core/model"
)

// Forecaster predicts the number of vehicles charging at a station for each
// hour of the horizon starting at start.
type Forecaster interface {
	Forecast(ctx context.Context, station model.Station, vt model.VehicleType, start time.Time, horizonHours int) ([]model.ForecastPoint, error)
}

// ForecasterFunc adapts a function to the Forecaster interface.
type ForecasterFunc func(ctx context.Context, station model.Station, vt model.VehicleType, start time.Time, horizonHours int) ([]model.ForecastPoint, error)

func (f ForecasterFunc) Forecast(ctx context.Context, station model.Station, vt model.VehicleType, start time.Time, horizonHours int) ([]model.ForecastPoint, error) {
	return f(ctx, station, vt, start, horizonHours)
}
