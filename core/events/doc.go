// Package events defines the events emitted on the event bus.
//
// Available event types:
//   - ReportEvent: a capacity report produced by a planning run
package events
