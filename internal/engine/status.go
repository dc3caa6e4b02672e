package engine

import (
	"time"

	"musebox/internal/models"
)

// Reporter publishes provider lifecycle status to the main process.
//
// Delivery is fire-and-forget with at-least-once semantics assumed by
// consumers; consumers must tolerate duplicate Synced reports.
type Reporter interface {
	Report(providerID string, status models.Status)
}

// StatusEvent pairs a published status with its provider and timestamp.
type StatusEvent struct {
	ProviderID string
	Status     models.Status
	At         time.Time
}

// ChannelReporter implements [Reporter] over a buffered channel.
//
// Sends never block: when the buffer is full the event is dropped, matching
// the fire-and-forget contract of the status channel.
type ChannelReporter struct {
	events chan StatusEvent
}

// NewChannelReporter creates a ChannelReporter with the given buffer size.
func NewChannelReporter(buffer int) *ChannelReporter {
	if buffer <= 0 {
		buffer = 64
	}
	return &ChannelReporter{events: make(chan StatusEvent, buffer)}
}

// Report publishes a status event without blocking.
func (r *ChannelReporter) Report(providerID string, status models.Status) {
	event := StatusEvent{ProviderID: providerID, Status: status, At: time.Now()}
	select {
	case r.events <- event:
		// Sent successfully
	default:
		// Buffer full, drop the event
	}
}

// Events returns the stream of published status events.
func (r *ChannelReporter) Events() <-chan StatusEvent {
	return r.events
}

// ReporterFunc adapts a function to the [Reporter] interface.
type ReporterFunc func(providerID string, status models.Status)

// Report calls the wrapped function.
func (f ReporterFunc) Report(providerID string, status models.Status) {
	f(providerID, status)
}
