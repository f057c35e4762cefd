package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/phrazzld/recite-api/internal/platform/logger"
)

type subscription struct {
	handler EventHandler
	types   map[string]bool // nil means every type
}

func (s subscription) wants(eventType string) bool {
	return s.types == nil || s.types[eventType]
}

// InMemoryEventEmitter fans events out to registered handlers synchronously,
// in registration order.
type InMemoryEventEmitter struct {
	subs   []subscription
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewInMemoryEventEmitter creates an emitter without handlers.
func NewInMemoryEventEmitter(log *slog.Logger) *InMemoryEventEmitter {
	if log == nil {
		log = slog.Default()
	}
	return &InMemoryEventEmitter{
		logger: log.With(slog.String("component", "event_fanout")),
	}
}

// RegisterHandler subscribes handler to the given event types, or to all
// events when no type is given.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler, eventTypes ...string) {
	sub := subscription{handler: handler}
	if len(eventTypes) > 0 {
		sub.types = make(map[string]bool, len(eventTypes))
		for _, t := range eventTypes {
			sub.types[t] = true
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs = append(e.subs, sub)
	e.logger.Debug("registered event handler",
		slog.Int("handler_count", len(e.subs)),
		slog.Any("event_types", eventTypes))
}

// EmitEvent delivers event to every subscribed handler. A failing handler
// does not stop delivery to the others; all failures are joined.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *Event) error {
	e.mu.RLock()
	subs := make([]subscription, len(e.subs))
	copy(subs, e.subs)
	e.mu.RUnlock()

	log := logger.FromContextOrDefault(ctx, e.logger).With(
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type))

	var errs []error
	delivered := 0
	for i, sub := range subs {
		if !sub.wants(event.Type) {
			continue
		}
		delivered++
		if err := sub.handler.HandleEvent(ctx, event); err != nil {
			log.Error("event handler failed",
				slog.Int("handler_index", i),
				slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if delivered == 0 {
		log.Debug("no handler subscribed to event")
	}
	return errors.Join(errs...)
}
