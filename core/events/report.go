package events

import (
	"time"

	"github.com/kilianp07/evstation/core/capacity"
	"github.com/kilianp07/evstation/core/forecast"
	coremetrics "github.com/kilianp07/evstation/core/metrics"
	"github.com/kilianp07/evstation/core/model"
)

// ReportEvent is published when a planning run produced a capacity report
// for one vehicle type.
type ReportEvent struct {
	ID          string              `json:"id"`
	VehicleType model.VehicleType   `json:"vehicle_type"`
	Start       time.Time           `json:"horizon_start"`
	Horizon     int                 `json:"horizon_hours"`
	Report      capacity.Report     `json:"report"`
	Peaks       []forecast.PeakHour `json:"peaks"`
	Time        time.Time           `json:"generated_at"`
}

// MetricsEvent converts the report into the event recorded by metrics sinks.
func (e ReportEvent) MetricsEvent() coremetrics.CapacityReportEvent {
	return coremetrics.CapacityReportEvent{
		ReportID:    e.ID,
		VehicleType: e.VehicleType,
		Report:      e.Report,
		Peaks:       e.Peaks,
		Time:        e.Time,
	}
}
