package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types published by the recitation service.
const (
	TypeReviewCompleted     = "review.completed"
	TypeRecitationMastered  = "recitation.mastered"
	TypeRecitationAbandoned = "recitation.abandoned"
)

// Event is a domain event envelope.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type identifies the payload schema
	Type string `json:"type"`

	// Payload contains the type-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// OccurredAt is when the state change that produced the event happened
	OccurredAt time.Time `json:"occurred_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an Event with the specified type and payload.
func NewEvent(eventType string, payload interface{}, occurredAt time.Time) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:         uuid.New(),
		Type:       eventType,
		Payload:    payloadBytes,
		OccurredAt: occurredAt.UTC(),
	}, nil
}

// ReviewCompleted is the payload of TypeReviewCompleted.
type ReviewCompleted struct {
	UserID        uuid.UUID  `json:"user_id"`
	TextID        uuid.UUID  `json:"text_id"`
	RecitationID  uuid.UUID  `json:"recitation_id"`
	ReviewID      uuid.UUID  `json:"review_id"`
	Round         int        `json:"round"`
	QualityRating int        `json:"quality_rating"`
	Proficiency   int        `json:"proficiency"`
	ReviewCount   int        `json:"review_count"`
	Status        string     `json:"status"`
	NextReviewAt  *time.Time `json:"next_review_at,omitempty"`
}

// RecitationMastered is the payload of TypeRecitationMastered.
type RecitationMastered struct {
	UserID       uuid.UUID `json:"user_id"`
	TextID       uuid.UUID `json:"text_id"`
	RecitationID uuid.UUID `json:"recitation_id"`
	Proficiency  int       `json:"proficiency"`
	ReviewCount  int       `json:"review_count"`
}

// RecitationAbandoned is the payload of TypeRecitationAbandoned.
type RecitationAbandoned struct {
	UserID       uuid.UUID `json:"user_id"`
	TextID       uuid.UUID `json:"text_id"`
	RecitationID uuid.UUID `json:"recitation_id"`
	ReviewCount  int       `json:"review_count"`
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent implements EventHandler.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *Event) error
}

// NopEmitter discards every event.
type NopEmitter struct{}

// EmitEvent implements EventEmitter.
func (NopEmitter) EmitEvent(context.Context, *Event) error { return nil }
