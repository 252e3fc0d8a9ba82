// Package planning periodically forecasts station demand, runs the capacity
// analysis per vehicle type and publishes the resulting reports.
package planning

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/evstation/core/capacity"
	"github.com/kilianp07/evstation/core/events"
	"github.com/kilianp07/evstation/core/forecast"
	"github.com/kilianp07/evstation/core/logger"
	"github.com/kilianp07/evstation/core/model"
	"github.com/kilianp07/evstation/core/monitoring"
	"github.com/kilianp07/evstation/internal/eventbus"
)

// Planner produces capacity reports from forecasts.
type Planner struct {
	cfg        Config
	stations   []model.Station
	table      capacity.Table
	forecaster forecast.Forecaster
	store      Store
	bus        *eventbus.TypedBus[events.ReportEvent]
	log        logger.Logger

	now func() time.Time
}

// NewPlanner builds a planner. A nil store defaults to a MemoryStore and a nil
// bus disables publication.
func NewPlanner(cfg Config, stations []model.Station, table capacity.Table, f forecast.Forecaster, store Store, bus *eventbus.TypedBus[events.ReportEvent], log logger.Logger) (*Planner, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, fmt.Errorf("planning: forecaster is required")
	}
	if store == nil {
		store = NewMemoryStore()
	}
	return &Planner{
		cfg:        cfg,
		stations:   stations,
		table:      table,
		forecaster: f,
		store:      store,
		bus:        bus,
		log:        log,
		now:        time.Now,
	}, nil
}

// Store returns the report store.
func (p *Planner) Store() Store { return p.store }

// RunOnce forecasts every station for each configured vehicle type from the
// current hour, analyzes the peaks and stores and publishes one report per
// vehicle type.
func (p *Planner) RunOnce(ctx context.Context) ([]events.ReportEvent, error) {
	start := p.now().UTC().Truncate(time.Hour)
	out := make([]events.ReportEvent, 0, len(p.cfg.VehicleTypes))
	for _, vt := range p.cfg.VehicleTypes {
		peaks, err := p.collect(ctx, vt, start)
		if err != nil {
			return out, err
		}
		rep, err := capacity.Analyze(forecast.Rows(peaks), p.table)
		if err != nil {
			return out, fmt.Errorf("analyze %s: %w", vt, err)
		}
		ev := events.ReportEvent{
			ID:          uuid.NewString(),
			VehicleType: vt,
			Start:       start,
			Horizon:     p.cfg.HorizonHours,
			Report:      rep,
			Peaks:       peaks,
			Time:        p.now().UTC(),
		}
		p.store.Put(ev)
		if p.bus != nil {
			p.bus.Publish(ev)
		}
		p.log.Infow("capacity report ready", map[string]any{
			"report_id":    ev.ID,
			"vehicle_type": vt.String(),
			"stations":     len(peaks),
			"tier":         rep.Tier(),
		})
		out = append(out, ev)
	}
	return out, nil
}

// collect forecasts all stations concurrently and keeps catalog order.
func (p *Planner) collect(ctx context.Context, vt model.VehicleType, start time.Time) ([]forecast.PeakHour, error) {
	type slot struct {
		peak forecast.PeakHour
		ok   bool
	}
	slots := make([]slot, len(p.stations))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, st := range p.stations {
		i, st := i, st
		g.Go(func() error {
			peak, ok, err := forecast.StationPeak(gctx, p.forecaster, st, vt, start, p.cfg.HorizonHours)
			if err != nil {
				return err
			}
			slots[i] = slot{peak: peak, ok: ok}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	peaks := make([]forecast.PeakHour, 0, len(slots))
	for _, s := range slots {
		if s.ok {
			peaks = append(peaks, s.peak)
		}
	}
	return peaks, nil
}

// Run executes RunOnce immediately and then on every interval until ctx is
// canceled. Failed runs are logged and retried at the next tick.
func (p *Planner) Run(ctx context.Context) {
	p.runLogged(ctx)
	interval := p.cfg.Interval()
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runLogged(ctx)
		}
	}
}

func (p *Planner) runLogged(ctx context.Context) {
	if _, err := p.RunOnce(ctx); err != nil && ctx.Err() == nil {
		p.log.Errorf("planning run failed: %v", err)
		monitoring.CaptureException(err, map[string]string{"component": "planner"})
	}
}
