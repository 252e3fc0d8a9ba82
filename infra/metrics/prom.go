package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/evstation/core/metrics"
)

// PromSink records recommendation and capacity events in Prometheus metrics.
type PromSink struct {
	rankings   *prometheus.CounterVec
	eta        *prometheus.HistogramVec
	peak       *prometheus.GaugeVec
	ratio      *prometheus.GaugeVec
	overloaded *prometheus.GaugeVec
	alerts     *prometheus.CounterVec
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		rankings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evstation_ranking_requests_total",
			Help: "Total number of station recommendation requests",
		}, []string{"vehicle_type"}),
		eta: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "evstation_recommended_eta_minutes",
			Help:    "Total ETA of the recommended station",
			Buckets: []float64{5, 10, 15, 20, 30, 45, 60, 90, 120},
		}, []string{"vehicle_type"}),
		peak: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "evstation_forecast_peak_vehicles",
			Help: "Forecasted peak number of charging vehicles over the planning horizon",
		}, []string{"station_id", "vehicle_type"}),
		ratio: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "evstation_overload_ratio",
			Help: "Forecasted peak divided by rated capacity",
		}, []string{"station_id", "vehicle_type"}),
		overloaded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "evstation_overloaded_stations",
			Help: "Number of overloaded stations in the latest capacity report",
		}, []string{"vehicle_type"}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evstation_capacity_reports_total",
			Help: "Capacity reports by worst tier",
		}, []string{"vehicle_type", "tier"}),
	}
	var err error
	if s.rankings, err = register(reg, s.rankings); err != nil {
		return nil, err
	}
	if s.eta, err = register(reg, s.eta); err != nil {
		return nil, err
	}
	if s.peak, err = register(reg, s.peak); err != nil {
		return nil, err
	}
	if s.ratio, err = register(reg, s.ratio); err != nil {
		return nil, err
	}
	if s.overloaded, err = register(reg, s.overloaded); err != nil {
		return nil, err
	}
	if s.alerts, err = register(reg, s.alerts); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the already registered collector when c was registered
// by an earlier sink.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRanking counts the request and observes the recommended ETA.
func (s *PromSink) RecordRanking(ev coremetrics.RankingEvent) error {
	vt := ev.VehicleType.String()
	s.rankings.WithLabelValues(vt).Inc()
	if ev.Recommended != nil {
		s.eta.WithLabelValues(vt).Observe(ev.Recommended.TotalETAMinutes)
	}
	return nil
}

// RecordCapacityReport updates the per-station gauges and counts the report.
func (s *PromSink) RecordCapacityReport(ev coremetrics.CapacityReportEvent) error {
	vt := ev.VehicleType.String()
	for _, p := range ev.Peaks {
		s.peak.WithLabelValues(p.StationID, p.VehicleType.String()).Set(p.Value)
	}
	overloaded := 0
	for _, r := range ev.Report.Results {
		if r.OverloadRatio != nil {
			s.ratio.WithLabelValues(r.StationID, r.VehicleType.String()).Set(*r.OverloadRatio)
		}
		if r.Overloaded {
			overloaded++
		}
	}
	s.overloaded.WithLabelValues(vt).Set(float64(overloaded))
	s.alerts.WithLabelValues(vt, ev.Report.Tier()).Inc()
	return nil
}

var _ coremetrics.CapacityRecorder = (*PromSink)(nil)
