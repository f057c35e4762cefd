package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/recite-api/internal/store"
)

// UnitOfWork implements store.UnitOfWork with database/sql transactions.
type UnitOfWork struct {
	db          *sql.DB
	recitations *PostgresRecitationStore
	reviews     *PostgresReviewStore
}

// NewUnitOfWork creates a UnitOfWork over db.
func NewUnitOfWork(db *sql.DB, logger *slog.Logger) *UnitOfWork {
	if db == nil {
		panic("db cannot be nil")
	}
	return &UnitOfWork{
		db:          db,
		recitations: NewPostgresRecitationStore(db, logger),
		reviews:     NewPostgresReviewStore(db, logger),
	}
}

var _ store.UnitOfWork = (*UnitOfWork)(nil)

// Repos implements store.UnitOfWork.Repos
func (u *UnitOfWork) Repos() store.Repos {
	return store.Repos{
		Recitations: u.recitations,
		Reviews:     u.reviews,
	}
}

// WithinTx implements store.UnitOfWork.WithinTx
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, repos store.Repos) error) error {
	return store.RunInTransaction(ctx, u.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, store.Repos{
			Recitations: u.recitations.WithTx(tx),
			Reviews:     u.reviews.WithTx(tx),
		})
	})
}
