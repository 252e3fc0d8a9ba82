package mqtt

import (
	"context"

	"github.com/kilianp07/evstation/core/capacity"
	"github.com/kilianp07/evstation/core/events"
	coremqtt "github.com/kilianp07/evstation/core/mqtt"
	"github.com/kilianp07/evstation/infra/logger"
	"github.com/kilianp07/evstation/internal/eventbus"
)

// StartForwarder publishes reports from the bus. With alertsOnly set, reports
// without overloaded stations are skipped.
func StartForwarder(ctx context.Context, bus *eventbus.TypedBus[events.ReportEvent], pub coremqtt.AlertPublisher, alertsOnly bool, log logger.Logger) {
	if bus == nil || pub == nil {
		return
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	bus.Handle(ctx, func(ev events.ReportEvent) {
		if alertsOnly && !ShouldPublish(ev) {
			log.Debugf("skip report %s for %s: tier %s", ev.ID, ev.VehicleType, ev.Report.Tier())
			return
		}
		if err := pub.PublishReport(ctx, ev); err != nil {
			log.Errorf("publish report %s: %v", ev.ID, err)
		}
	})
}

// ShouldPublish reports whether a report carries an alert worth sending when
// only alerts are forwarded.
func ShouldPublish(ev events.ReportEvent) bool {
	switch ev.Report.Tier() {
	case capacity.TierExceeded, capacity.TierNearCapacity:
		return true
	}
	return false
}
