package planning

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evstation/core/capacity"
	"github.com/kilianp07/evstation/core/events"
	"github.com/kilianp07/evstation/core/forecast"
	"github.com/kilianp07/evstation/core/model"
	"github.com/kilianp07/evstation/core/monitoring"
	"github.com/kilianp07/evstation/infra/logger"
	"github.com/kilianp07/evstation/internal/eventbus"
)

var stations = []model.Station{
	{ID: "a", Name: "Alpha"},
	{ID: "b", Name: "Bravo"},
	{ID: "c", Name: "Charlie"},
}

func testPlanner(t *testing.T, cfg Config, f forecast.Forecaster, bus *eventbus.TypedBus[events.ReportEvent]) *Planner {
	t.Helper()
	tbl := capacity.NewTable([]model.CapacityRow{
		{StationName: "Alpha", VehicleType: model.VehicleCar, RatedCapacity: 10},
		{StationName: "Bravo", VehicleType: model.VehicleCar, RatedCapacity: 20},
		{StationName: "Alpha", VehicleType: model.VehicleScooter, RatedCapacity: 10},
	})
	p, err := NewPlanner(cfg, stations, tbl, f, nil, bus, logger.NopLogger{})
	require.NoError(t, err)
	p.now = func() time.Time { return time.Date(2025, 3, 1, 8, 42, 0, 0, time.UTC) }
	return p
}

func staticForecaster() forecast.Forecaster {
	return forecast.NewStaticForecaster([]forecast.Series{
		{StationID: "a", VehicleType: model.VehicleCar, Hourly: []float64{12}},
		{StationID: "b", VehicleType: model.VehicleCar, Hourly: []float64{5}},
		{StationID: "c", VehicleType: model.VehicleCar, Hourly: []float64{3}},
		{StationID: "a", VehicleType: model.VehicleScooter, Hourly: []float64{2}},
	})
}

func TestPlanner_RunOnce(t *testing.T) {
	bus := eventbus.NewTyped[events.ReportEvent]()
	defer bus.Close()
	sub := bus.Subscribe()

	p := testPlanner(t, Config{}, staticForecaster(), bus)
	evs, err := p.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, evs, 2)

	car := evs[0]
	assert.Equal(t, model.VehicleCar, car.VehicleType)
	assert.Equal(t, 72, car.Horizon)
	assert.Equal(t, time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC), car.Start)
	assert.NotEmpty(t, car.ID)
	require.Len(t, car.Peaks, 3)
	assert.Equal(t, "a", car.Peaks[0].StationID)
	assert.Equal(t, capacity.MsgExceedsCapacity, car.Report.Message)
	require.NotEmpty(t, car.Report.Results)
	assert.Equal(t, "a", car.Report.Results[0].StationID)
	assert.Equal(t, "Add 1 more ports", car.Report.Results[0].Recommendation)

	scooter := evs[1]
	assert.Equal(t, model.VehicleScooter, scooter.VehicleType)
	assert.Equal(t, capacity.MsgNoOverload, scooter.Report.Message)
	assert.NotEqual(t, car.ID, scooter.ID)

	latest, ok := p.Store().Latest(model.VehicleCar)
	require.True(t, ok)
	assert.Equal(t, car.ID, latest.ID)

	got := <-sub
	assert.Equal(t, car.ID, got.ID)
	got = <-sub
	assert.Equal(t, scooter.ID, got.ID)
}

func TestPlanner_ForecastError(t *testing.T) {
	boom := errors.New("model offline")
	f := forecast.ForecasterFunc(func(_ context.Context, st model.Station, _ model.VehicleType, _ time.Time, _ int) ([]model.ForecastPoint, error) {
		if st.ID == "b" {
			return nil, boom
		}
		return []model.ForecastPoint{{Value: 1}}, nil
	})
	p := testPlanner(t, Config{VehicleTypes: []model.VehicleType{model.VehicleCar}}, f, nil)
	_, err := p.RunOnce(context.Background())
	assert.ErrorIs(t, err, boom)
	_, ok := p.Store().Latest(model.VehicleCar)
	assert.False(t, ok)
}

func TestPlanner_NoForecastPoints(t *testing.T) {
	f := forecast.ForecasterFunc(func(context.Context, model.Station, model.VehicleType, time.Time, int) ([]model.ForecastPoint, error) {
		return nil, nil
	})
	p := testPlanner(t, Config{VehicleTypes: []model.VehicleType{model.VehicleScooter}}, f, nil)
	evs, err := p.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, capacity.MsgNoData, evs[0].Report.Message)
	assert.Empty(t, evs[0].Report.Results)
}

func TestPlanner_Run(t *testing.T) {
	var calls atomic.Int32
	f := forecast.ForecasterFunc(func(context.Context, model.Station, model.VehicleType, time.Time, int) ([]model.ForecastPoint, error) {
		calls.Add(1)
		return []model.ForecastPoint{{Value: 1}}, nil
	})
	p := testPlanner(t, Config{IntervalSeconds: 1, VehicleTypes: []model.VehicleType{model.VehicleCar}}, f, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool { return calls.Load() >= int32(2*len(stations)) }, 3*time.Second, 20*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("run did not stop")
	}
}

func TestNewPlanner_Invalid(t *testing.T) {
	_, err := NewPlanner(Config{}, stations, capacity.Table{}, nil, nil, nil, logger.NopLogger{})
	assert.Error(t, err)
	_, err = NewPlanner(Config{HorizonHours: -1}, stations, capacity.Table{}, staticForecaster(), nil, nil, logger.NopLogger{})
	assert.Error(t, err)
}

type capturedErrors struct {
	monitoring.NopMonitor
	errs chan error
}

func (c capturedErrors) CaptureException(err error, _ map[string]string) { c.errs <- err }

func TestPlanner_RunReportsFailures(t *testing.T) {
	mon := capturedErrors{errs: make(chan error, 4)}
	monitoring.Init(mon)
	defer monitoring.Init(nil)

	boom := errors.New("model offline")
	f := forecast.ForecasterFunc(func(context.Context, model.Station, model.VehicleType, time.Time, int) ([]model.ForecastPoint, error) {
		return nil, boom
	})
	p := testPlanner(t, Config{VehicleTypes: []model.VehicleType{model.VehicleCar}}, f, nil)
	p.Run(context.Background())

	select {
	case err := <-mon.errs:
		assert.ErrorIs(t, err, boom)
	default:
		t.Fatal("failure not captured")
	}
}
