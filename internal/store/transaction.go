package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/recite-api/internal/platform/logger"
)

// TxFn is the body of a transaction. Returning an error rolls it back.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// TxBeginner is implemented by *sql.DB.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

func RunInTransaction(ctx context.Context, db TxBeginner, fn TxFn) error {
	return RunInTransactionWithOptions(ctx, db, nil, fn)
}

// RunInTransactionWithOptions runs fn inside a transaction started with opts
// and commits when fn returns nil. On error or panic the transaction is
// rolled back; a panic is re-raised afterwards.
func RunInTransactionWithOptions(ctx context.Context, db TxBeginner, opts *sql.TxOptions, fn TxFn) error {
	log := logger.FromContext(ctx).With(slog.String("component", "transaction"))

	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		log.Error("begin failed", slog.String("error", err.Error()))
		return fmt.Errorf("%w: begin: %w", ErrTransactionFailed, err)
	}

	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("rollback after panic failed",
				slog.String("error", rbErr.Error()), slog.Any("panic", p))
		} else {
			log.Error("rolled back after panic", slog.Any("panic", p))
		}
		// ALLOW-PANIC: re-raise after rollback
		panic(p)
	}()

	if err := fn(ctx, tx); err != nil {
		return rollback(log, tx, err)
	}

	if err := tx.Commit(); err != nil {
		log.Error("commit failed", slog.String("error", err.Error()))
		return fmt.Errorf("%w: commit: %w", ErrTransactionFailed, err)
	}
	log.Debug("transaction committed")
	return nil
}

// rollback aborts tx and returns cause, annotated if the rollback itself fails.
func rollback(log *slog.Logger, tx *sql.Tx, cause error) error {
	if rbErr := tx.Rollback(); rbErr != nil {
		log.Error("rollback failed",
			slog.String("rollback_error", rbErr.Error()),
			slog.String("original_error", cause.Error()))
		return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, cause)
	}
	log.Debug("rolled back", slog.String("error", cause.Error()))
	return cause
}
