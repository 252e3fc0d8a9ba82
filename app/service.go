package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/evstation/api"
	apicap "github.com/kilianp07/evstation/api/capacity"
	"github.com/kilianp07/evstation/api/stations"
	"github.com/kilianp07/evstation/config"
	"github.com/kilianp07/evstation/core/capacity"
	"github.com/kilianp07/evstation/core/events"
	"github.com/kilianp07/evstation/core/forecast"
	coremetrics "github.com/kilianp07/evstation/core/metrics"
	"github.com/kilianp07/evstation/core/model"
	coremon "github.com/kilianp07/evstation/core/monitoring"
	coremqtt "github.com/kilianp07/evstation/core/mqtt"
	"github.com/kilianp07/evstation/core/planning"
	"github.com/kilianp07/evstation/infra/logger"
	"github.com/kilianp07/evstation/infra/metrics"
	"github.com/kilianp07/evstation/infra/monitoring"
	"github.com/kilianp07/evstation/infra/mqtt"
	"github.com/kilianp07/evstation/internal/eventbus"
)

// newPublisher is replaced in tests.
var newPublisher = func(cfg mqtt.Config) (coremqtt.AlertPublisher, error) {
	return mqtt.NewPahoPublisher(cfg)
}

// Service wires the planner, the HTTP API and the report subscribers.
type Service struct {
	Catalog   model.Catalog
	Table     capacity.Table
	Planner   *planning.Planner
	Sink      coremetrics.MetricsSink
	Publisher coremqtt.AlertPublisher

	cfg     *config.Config
	bus     *eventbus.TypedBus[events.ReportEvent]
	handler http.Handler
	logFile io.Closer
	log     logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (_ *Service, err error) {
	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return nil, err
	}
	var logFile io.Closer
	if cfg.Logging.File != "" {
		f, err := logger.OpenFile(logger.FileOptions{
			Path:       cfg.Logging.File,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Compress:   cfg.Logging.Compress,
		})
		if err != nil {
			return nil, err
		}
		logFile = f
		defer func() {
			if err != nil {
				_ = f.Close()
			}
		}()
	}
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Monitoring)
	if err != nil {
		return nil, err
	}
	coremon.Init(mon)

	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, fmt.Errorf("stations: %w", err)
	}
	table := capacity.NewTable(cfg.Capacity)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, err
	}
	fc, err := forecast.New(cfg.Forecast)
	if err != nil {
		return nil, fmt.Errorf("forecaster: %w", err)
	}

	bus := eventbus.NewTyped[events.ReportEvent]()
	store := planning.NewMemoryStore()
	planner, err := planning.NewPlanner(cfg.Planning, catalog.Stations(), table, fc, store, bus, logger.New("planner"))
	if err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}

	var pub coremqtt.AlertPublisher = coremqtt.NopPublisher{}
	if cfg.MQTT.Enabled {
		if pub, err = newPublisher(cfg.MQTT); err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
	}

	handler := api.NewRouter(
		stations.NewHandler(catalog, sink, logger.New("api")),
		apicap.NewHandler(table, store),
		api.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			MaxBodyBytes:   cfg.Server.MaxBodyBytes,
			Log:            logger.New("http"),
		},
	)

	logg.Infow("service configured", map[string]any{
		"stations":       catalog.Len(),
		"capacity_rows":  table.Len(),
		"forecaster":     cfg.Forecast.Type,
		"horizon_hours":  cfg.Planning.HorizonHours,
		"mqtt_enabled":   cfg.MQTT.Enabled,
		"sentry_enabled": cfg.Monitoring.DSN != "",
		"metrics_sinks":  len(cfg.Metrics.Sinks),
		"listen_address": cfg.Server.Address,
	})
	return &Service{
		Catalog:   catalog,
		Table:     table,
		Planner:   planner,
		Sink:      sink,
		Publisher: pub,
		cfg:       cfg,
		bus:       bus,
		handler:   handler,
		logFile:   logFile,
		log:       logg,
	}, nil
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler { return s.handler }

// Run starts the subscribers, the planner loop, the Prometheus endpoint and
// the HTTP API, and blocks until ctx is canceled or a server fails.
func (s *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	metrics.StartEventCollector(ctx, s.bus, s.Sink, logger.New("metrics"))
	mqtt.StartForwarder(ctx, s.bus, s.Publisher, s.cfg.MQTT.AlertsOnly, logger.New("mqtt"))

	g.Go(func() error {
		s.Planner.Run(ctx)
		return nil
	})
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		g.Go(func() error {
			if err := metrics.StartPromServer(ctx, addr, nil, logger.New("prometheus")); err != nil {
				return fmt.Errorf("prom server: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error { return s.serve(ctx) })
	return g.Wait()
}

func (s *Service) serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Address,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(s.cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Server.WriteTimeoutSeconds) * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("http shutdown: %v", err)
		}
	}()
	s.log.Infof("http api listening on %s", s.cfg.Server.Address)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

type closer interface{ Close() }

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	sinks := []coremetrics.MetricsSink{s.Sink}
	if m, ok := s.Sink.(*coremetrics.MultiSink); ok {
		sinks = m.Sinks
	}
	for _, sink := range sinks {
		if c, ok := sink.(closer); ok {
			c.Close()
		}
	}
	coremon.Flush(2 * time.Second)
	if s.logFile != nil {
		return s.logFile.Close()
	}
	return nil
}
