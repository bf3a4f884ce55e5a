package realtime

import (
	"context"
	"sync"
)

// Bus is an in-process Publisher for local mode and tests. Subscribers
// receive events for one dataset on a buffered channel; events are dropped
// for subscribers whose buffer is full rather than blocking the publisher.
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]chan Event
}

// NewBus creates an empty in-process event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string][]chan Event)}
}

// Subscribe registers interest in one dataset's events. The returned cancel
// function removes the subscription and closes the channel.
func (b *Bus) Subscribe(datasetID string) (<-chan Event, func()) {
	ch := make(chan Event, 64)

	b.mu.Lock()
	b.subs[datasetID] = append(b.subs[datasetID], ch)
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		channels := b.subs[datasetID]
		for i, c := range channels {
			if c == ch {
				b.subs[datasetID] = append(channels[:i], channels[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber of its dataset.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs[event.DatasetID] {
		select {
		case ch <- event:
		default:
			// Slow subscriber; drop rather than stall the writer.
		}
	}
	return nil
}
