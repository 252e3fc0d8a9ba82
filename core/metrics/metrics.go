package metrics

import (
	"time"

	"github.com/kilianp07/evstation/core/capacity"
	"github.com/kilianp07/evstation/core/forecast"
	"github.com/kilianp07/evstation/core/model"
)

// RankingEvent describes one station recommendation request.
type RankingEvent struct {
	RequestID   string
	VehicleType model.VehicleType
	Candidates  int
	// Recommended is nil when the request carried no station.
	Recommended *model.RankedStation
	Time        time.Time
}

// MetricsSink records recommendation requests.
type MetricsSink interface {
	RecordRanking(ev RankingEvent) error
}

// CapacityReportEvent carries the outcome of one capacity analysis.
type CapacityReportEvent struct {
	ReportID    string
	VehicleType model.VehicleType
	Report      capacity.Report
	// Peaks holds every station peak used for the analysis, not only the
	// rows kept in the report.
	Peaks []forecast.PeakHour
	Time  time.Time
}

// CapacityRecorder records capacity reports.
type CapacityRecorder interface {
	RecordCapacityReport(ev CapacityReportEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordRanking(RankingEvent) error               { return nil }
func (NopSink) RecordCapacityReport(CapacityReportEvent) error { return nil }

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRanking forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordRanking(ev RankingEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordRanking(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordCapacityReport forwards reports to sinks able to record them.
func (m *MultiSink) RecordCapacityReport(ev CapacityReportEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(CapacityRecorder); ok {
			if err := rec.RecordCapacityReport(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
