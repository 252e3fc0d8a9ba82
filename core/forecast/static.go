package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/evstation/core/factory"
	"github.com/kilianp07/evstation/core/model"
)

// Series is a repeating hourly demand profile for one station and vehicle type.
type Series struct {
	StationID   string            `json:"station_id"`
	VehicleType model.VehicleType `json:"vehicle_type"`
	Hourly      []float64         `json:"hourly"`
	// Spread, when positive, is reported as a symmetric uncertainty band.
	Spread float64 `json:"spread"`
}

// StaticForecaster replays configured hourly profiles. A point at hour-of-day
// h takes Hourly[h % len(Hourly)], so a 24-value profile follows the wall
// clock. Stations without a profile forecast zero demand.
type StaticForecaster struct {
	series map[string][]float64
	spread map[string]float64
}

// NewStaticForecaster indexes the given profiles by station and vehicle type.
func NewStaticForecaster(series []Series) *StaticForecaster {
	f := &StaticForecaster{series: make(map[string][]float64), spread: make(map[string]float64)}
	for _, s := range series {
		k := seriesKey(s.StationID, s.VehicleType)
		cp := make([]float64, len(s.Hourly))
		copy(cp, s.Hourly)
		f.series[k] = cp
		f.spread[k] = s.Spread
	}
	return f
}

// Forecast returns one point per hour of the horizon.
func (f *StaticForecaster) Forecast(ctx context.Context, st model.Station, vt model.VehicleType, start time.Time, horizonHours int) ([]model.ForecastPoint, error) {
	if horizonHours <= 0 {
		return nil, fmt.Errorf("horizon must be positive, got %d", horizonHours)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	k := seriesKey(st.ID, vt)
	profile := f.series[k]
	spread := f.spread[k]
	start = start.Truncate(time.Hour)
	out := make([]model.ForecastPoint, horizonHours)
	for h := range out {
		ts := start.Add(time.Duration(h) * time.Hour)
		v := 0.0
		if len(profile) > 0 {
			v = profile[ts.Hour()%len(profile)]
		}
		p := model.ForecastPoint{Time: ts, Value: v}
		if spread > 0 {
			lo, hi := v-spread, v+spread
			if lo < 0 {
				lo = 0
			}
			p.Lower, p.Upper = &lo, &hi
		}
		out[h] = p
	}
	return out, nil
}

func seriesKey(stationID string, vt model.VehicleType) string {
	return stationID + "/" + vt.String()
}

var registry = factory.NewRegistry[Forecaster]()

// Register adds a forecaster factory identified by name.
func Register(name string, f factory.Factory[Forecaster]) error {
	return registry.Register(name, f)
}

// New creates the Forecaster described by cfg.
func New(cfg factory.ModuleConfig) (Forecaster, error) {
	return registry.Create(cfg)
}

func init() {
	_ = Register("static", func(conf map[string]any) (Forecaster, error) {
		var c struct {
			Series []Series `json:"series"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		for i, s := range c.Series {
			if s.StationID == "" {
				return nil, fmt.Errorf("series[%d]: station_id is required", i)
			}
			if !s.VehicleType.Valid() {
				return nil, fmt.Errorf("series[%d]: %w", i, model.ErrInvalidVehicleType)
			}
		}
		return NewStaticForecaster(c.Series), nil
	})
}
