package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/recite-api/internal/store"
)

// SQLSTATE codes of the integrity violations MapError understands.
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
)

// Constraints declared in the migrations that map to specific store errors.
const (
	recitationUserTextKey  = "recitation_records_user_text_key"
	recitationUserFKey     = "recitation_records_user_id_fkey"
	recitationTextFKey     = "recitation_records_text_id_fkey"
	reviewRecitationRound  = "review_records_recitation_round_key"
	reviewOnePendingIndex  = "review_records_one_pending_idx"
	reviewRecitationIDFKey = "review_records_recitation_id_fkey"
)

var constraintErrors = map[string]error{
	recitationUserTextKey:  store.ErrRecitationExists,
	recitationUserFKey:     store.ErrUserNotFound,
	recitationTextFKey:     store.ErrTextNotFound,
	reviewRecitationRound:  store.ErrReviewExists,
	reviewOnePendingIndex:  store.ErrReviewExists,
	reviewRecitationIDFKey: store.ErrRecitationNotFound,
}

// MapError translates a driver error into the store error vocabulary. The
// driver error stays in the message but is not wrapped, so pgconn types do
// not leak past the store boundary. Unrecognised errors are returned as is.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	if specific, ok := constraintErrors[pgErr.ConstraintName]; ok {
		return fmt.Errorf("%w: %v", specific, err)
	}

	switch pgErr.Code {
	case uniqueViolationCode:
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case foreignKeyViolationCode, checkViolationCode:
		return fmt.Errorf("%w: constraint %s: %v", store.ErrInvalidEntity, pgErr.ConstraintName, err)
	case notNullViolationCode:
		return fmt.Errorf("%w: column %s is required: %v", store.ErrInvalidEntity, pgErr.ColumnName, err)
	}
	return err
}

// CheckRowsAffected returns notFound, or store.ErrNotFound when notFound is
// nil, if the statement touched no rows.
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return errors.New("nil result provided to CheckRowsAffected")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	if notFound == nil {
		return store.ErrNotFound
	}
	return notFound
}

// notFoundAs reports specific for sql.ErrNoRows and maps anything else.
func notFoundAs(err error, specific error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return specific
	}
	return MapError(err)
}
