// Package mqtt defines how capacity reports leave the process.
package mqtt

import (
	"context"

	"github.com/kilianp07/evstation/core/events"
)

// AlertPublisher delivers capacity reports to external subscribers.
type AlertPublisher interface {
	// PublishReport sends the report for one vehicle type. Implementations
	// wrap delivery failures with ErrPublishFailed.
	PublishReport(ctx context.Context, ev events.ReportEvent) error
	Close()
}

// NopPublisher drops every report.
type NopPublisher struct{}

func (NopPublisher) PublishReport(context.Context, events.ReportEvent) error { return nil }
func (NopPublisher) Close()                                                  {}
