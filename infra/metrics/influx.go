package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/evstation/core/capacity"
	coremetrics "github.com/kilianp07/evstation/core/metrics"
	"github.com/kilianp07/evstation/infra/logger"
)

// InfluxConfig holds the connection settings of an InfluxDB v2 bucket.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes recommendation and capacity events to InfluxDB.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRanking writes the recommended station of a request.
func (s *InfluxSink) RecordRanking(ev coremetrics.RankingEvent) error {
	if ev.Recommended == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r := ev.Recommended
	p := write.NewPointWithMeasurement("station_recommendation").
		AddTag("station_id", r.ID).
		AddTag("vehicle_type", ev.VehicleType.String()).
		AddTag("request_id", ev.RequestID).
		AddField("candidates", ev.Candidates).
		AddField("distance_km", round3(r.DistanceKm)).
		AddField("queue_minutes", round3(r.QueueTimeMinutes)).
		AddField("travel_minutes", round3(r.TravelTimeMinutes)).
		AddField("eta_minutes", round3(r.TotalETAMinutes)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordCapacityReport writes one point per report row.
func (s *InfluxSink) RecordCapacityReport(ev coremetrics.CapacityReportEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range ev.Report.Results {
		p := write.NewPointWithMeasurement("capacity_alert").
			AddTag("station_id", r.StationID).
			AddTag("vehicle_type", r.VehicleType.String()).
			AddTag("report_id", ev.ReportID).
			AddTag("tier", capacity.RowTier(r)).
			AddField("forecasted_peak", round3(r.ForecastedPeak)).
			AddField("recommendation", r.Recommendation)
		if r.Capacity != nil {
			p = p.AddField("capacity", *r.Capacity)
		}
		if r.UnmetDemand != nil {
			p = p.AddField("unmet_demand", round3(*r.UnmetDemand))
		}
		p = p.SetTime(ev.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
