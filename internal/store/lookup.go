package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/recite-api/internal/domain"
)

// TextStore looks up texts owned by the content subsystem.
type TextStore interface {
	// GetByID returns ErrTextNotFound if the text does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Text, error)
}

// UserStore looks up users owned by the account subsystem.
type UserStore interface {
	// GetByID returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}
