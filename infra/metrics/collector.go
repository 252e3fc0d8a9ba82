package metrics

import (
	"context"

	"github.com/kilianp07/evstation/core/events"
	coremetrics "github.com/kilianp07/evstation/core/metrics"
	"github.com/kilianp07/evstation/infra/logger"
	"github.com/kilianp07/evstation/internal/eventbus"
)

// StartEventCollector subscribes to the report bus and records every capacity
// report on the sink. It stops when the context is canceled or the bus is
// closed.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[events.ReportEvent], sink coremetrics.MetricsSink, log logger.Logger) {
	if bus == nil || sink == nil {
		return
	}
	rec, ok := sink.(coremetrics.CapacityRecorder)
	if !ok {
		return
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	bus.Handle(ctx, func(ev events.ReportEvent) {
		if err := rec.RecordCapacityReport(ev.MetricsEvent()); err != nil {
			log.Errorf("record capacity report %s: %v", ev.ID, err)
		}
	})
}
