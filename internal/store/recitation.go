package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/recite-api/internal/domain"
)

// RecitationStore defines the interface for recitation persistence.
type RecitationStore interface {
	// Create saves a new recitation.
	// Returns ErrRecitationExists if the user already has a recitation for the text;
	// the check and insert are atomic.
	// Returns ErrTextNotFound if the text does not exist.
	Create(ctx context.Context, rec *domain.RecitationRecord) error

	// GetByID retrieves a recitation by its unique ID.
	// Returns ErrRecitationNotFound if the recitation does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RecitationRecord, error)

	// GetForUpdate retrieves a recitation and locks it until the surrounding
	// transaction ends. It MUST be called on a store bound to a transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.RecitationRecord, error)

	// Update persists every mutable field of the recitation.
	// Returns ErrRecitationNotFound if the recitation does not exist.
	Update(ctx context.Context, rec *domain.RecitationRecord) error

	// ListByUser returns the user's recitations, most recently updated first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.RecitationRecord, error)

	// WithTx returns a new RecitationStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) RecitationStore
}
