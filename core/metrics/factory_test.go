package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/evstation/core/factory"
	metrics "github.com/kilianp07/evstation/core/metrics"
	"github.com/kilianp07/evstation/core/model"
	_ "github.com/kilianp07/evstation/infra/metrics"
)

// unhealthyInflux answers every request, including /health, with a 503.
func unhealthyInflux(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"name":"influxdb","status":"fail","message":"down"}`))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

/*
TestMetricsFactory_Builtins checks the sinks registered by infra/metrics.

	Cases:
	- nop, prometheus and influx are registered
	- a prometheus sink records rankings on the default registry
	- an unreachable influx endpoint degrades to NopSink
	- unknown type returns error
*/
func TestMetricsFactory_Builtins(t *testing.T) {
	types := metrics.SinkTypes()
	for _, want := range []string{"nop", "prometheus", "influx"} {
		if !slices.Contains(types, want) {
			t.Fatalf("sink %q not registered, have %v", want, types)
		}
	}

	s, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "prometheus"}})
	if err != nil {
		t.Fatalf("create prometheus: %v", err)
	}
	if _, ok := s.(metrics.NopSink); ok {
		t.Fatal("expected a prometheus sink, got NopSink")
	}
	if err := s.RecordRanking(metrics.RankingEvent{VehicleType: model.VehicleScooter, Candidates: 2}); err != nil {
		t.Fatalf("record ranking: %v", err)
	}
	n, err := testutil.GatherAndCount(prometheus.DefaultGatherer, "evstation_ranking_requests_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n == 0 {
		t.Fatal("expected evstation_ranking_requests_total series on the default registry")
	}

	s, err = metrics.NewMetricsSink([]factory.ModuleConfig{{
		Type: "influx",
		Conf: map[string]any{"url": unhealthyInflux(t), "token": "t", "org": "o", "bucket": "evstation"},
	}})
	if err != nil {
		t.Fatalf("create influx: %v", err)
	}
	if _, ok := s.(metrics.NopSink); !ok {
		t.Fatalf("expected NopSink fallback for unhealthy influx, got %T", s)
	}

	if _, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "statsd"}}); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

/*
TestNewMetricsSink_Multi validates NewMetricsSink with zero, one and several configs.
Cases:
  - no config -> NopSink
  - prometheus and nop -> MultiSink with two sub-sinks, both fed by RecordRanking
*/
func TestNewMetricsSink_Multi(t *testing.T) {
	s, err := metrics.NewMetricsSink(nil)
	if err != nil {
		t.Fatalf("create nop default: %v", err)
	}
	if _, ok := s.(metrics.NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", s)
	}

	cfgs := []factory.ModuleConfig{{Type: "prometheus"}, {Type: "nop"}}
	s, err = metrics.NewMetricsSink(cfgs)
	if err != nil {
		t.Fatalf("create multi: %v", err)
	}
	m, ok := s.(*metrics.MultiSink)
	if !ok {
		t.Fatalf("expected MultiSink, got %T", s)
	}
	if len(m.Sinks) != 2 {
		t.Fatalf("expected 2 sinks, got %d", len(m.Sinks))
	}
	if err := m.RecordRanking(metrics.RankingEvent{VehicleType: model.VehicleCar}); err != nil {
		t.Fatalf("record ranking: %v", err)
	}
}
