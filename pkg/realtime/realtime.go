// Package realtime is the boundary to the push channel that keeps all open
// operator sessions converged on the same view. The core publishes change
// events after each committed mutation; it has no knowledge of the
// transport beyond the Publisher interface.
package realtime

import "context"

// EventKind identifies what changed within a dataset.
type EventKind string

const (
	FlightsChanged  EventKind = "flights"
	TargetsChanged  EventKind = "targets"
	SettingsChanged EventKind = "settings"
	RunCompleted    EventKind = "run"
)

// Event is one change notification scoped to a dataset. Payload carries a
// kind-specific body (a flight, a run summary, ...) and may be nil for
// pure invalidation events.
type Event struct {
	DatasetID string      `json:"datasetId"`
	Kind      EventKind   `json:"kind"`
	Actor     string      `json:"actor,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
}

// Publisher pushes change events to all subscribers of a dataset. Publish
// failures are reported but mutations are already committed by the time an
// event is published; callers log and continue rather than roll back.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher discards all events. Used where no realtime channel is
// configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event Event) error {
	return nil
}
