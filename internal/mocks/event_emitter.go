package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/recite-api/internal/events"
)

// MockEventEmitter records emitted events. EmitEventFn, when set, decides
// the returned error; otherwise Err is returned.
type MockEventEmitter struct {
	EmitEventFn func(ctx context.Context, event *events.Event) error
	Err         error

	mu     sync.Mutex
	events []*events.Event
}

var _ events.EventEmitter = (*MockEventEmitter)(nil)

// EmitEvent implements events.EventEmitter.
func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.Event) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()

	if m.EmitEventFn != nil {
		return m.EmitEventFn(ctx, event)
	}
	return m.Err
}

// Events returns the emitted events in order.
func (m *MockEventEmitter) Events() []*events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*events.Event(nil), m.events...)
}

// EventsOfType returns the emitted events with the given type.
func (m *MockEventEmitter) EventsOfType(eventType string) []*events.Event {
	var out []*events.Event
	for _, e := range m.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
