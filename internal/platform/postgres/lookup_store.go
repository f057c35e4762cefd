package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/recite-api/internal/domain"
	"github.com/phrazzld/recite-api/internal/platform/logger"
	"github.com/phrazzld/recite-api/internal/store"
)

// PostgresTextStore implements store.TextStore over the texts table.
type PostgresTextStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTextStore creates a new PostgresTextStore.
func NewPostgresTextStore(db store.DBTX, logger *slog.Logger) *PostgresTextStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTextStore{
		db:     db,
		logger: logger.With(slog.String("component", "text_store")),
	}
}

var _ store.TextStore = (*PostgresTextStore)(nil)

// GetByID implements store.TextStore.GetByID
func (s *PostgresTextStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Text, error) {
	var text domain.Text
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, author, created_at FROM texts WHERE id = $1`, id,
	).Scan(&text.ID, &text.Title, &text.Author, &text.CreatedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to get text",
				slog.String("text_id", id.String()),
				slog.String("error", err.Error()))
		}
		return nil, notFoundAs(err, store.ErrTextNotFound)
	}
	return &text, nil
}

// PostgresUserStore implements store.UserStore over the users table.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgresUserStore.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

var _ store.UserStore = (*PostgresUserStore)(nil)

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, created_at FROM users WHERE id = $1`, id,
	).Scan(&user.ID, &user.Email, &user.DisplayName, &user.CreatedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to get user",
				slog.String("user_id", id.String()),
				slog.String("error", err.Error()))
		}
		return nil, notFoundAs(err, store.ErrUserNotFound)
	}
	return &user, nil
}
