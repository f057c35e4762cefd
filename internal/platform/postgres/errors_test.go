package postgres_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/recite-api/internal/platform/postgres"
	"github.com/phrazzld/recite-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func newPgError(code, constraint string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		TableName:      "test_table",
		ColumnName:     "test_column",
		ConstraintName: constraint,
	}
}

type MockResult struct {
	rowsAffected int64
	err          error
}

func (m MockResult) LastInsertId() (int64, error) { return 0, m.err }
func (m MockResult) RowsAffected() (int64, error) { return m.rowsAffected, m.err }

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		wantIs  []error
		wantNil bool
	}{
		{name: "nil", err: nil, wantNil: true},
		{name: "no rows", err: sql.ErrNoRows, wantIs: []error{store.ErrNotFound, sql.ErrNoRows}},
		{
			name:   "duplicate recitation",
			err:    newPgError("23505", "recitation_records_user_text_key"),
			wantIs: []error{store.ErrRecitationExists, store.ErrDuplicate},
		},
		{
			name:   "duplicate round",
			err:    newPgError("23505", "review_records_recitation_round_key"),
			wantIs: []error{store.ErrReviewExists, store.ErrDuplicate},
		},
		{
			name:   "second pending review",
			err:    newPgError("23505", "review_records_one_pending_idx"),
			wantIs: []error{store.ErrReviewExists},
		},
		{
			name:   "unknown text",
			err:    newPgError("23503", "recitation_records_text_id_fkey"),
			wantIs: []error{store.ErrTextNotFound, store.ErrNotFound},
		},
		{
			name:   "other unique violation",
			err:    newPgError("23505", "users_email_key"),
			wantIs: []error{store.ErrDuplicate},
		},
		{
			name:   "unknown user",
			err:    newPgError("23503", "recitation_records_user_id_fkey"),
			wantIs: []error{store.ErrUserNotFound, store.ErrNotFound},
		},
		{
			name:   "other foreign key violation",
			err:    newPgError("23503", "reminders_review_id_fkey"),
			wantIs: []error{store.ErrInvalidEntity},
		},
		{
			name:   "check violation",
			err:    newPgError("23514", "review_records_rating_check"),
			wantIs: []error{store.ErrInvalidEntity},
		},
		{
			name:   "not null violation",
			err:    newPgError("23502", ""),
			wantIs: []error{store.ErrInvalidEntity},
		},
		{
			name:   "wrapped pg error",
			err:    fmt.Errorf("exec: %w", newPgError("23505", "recitation_records_user_text_key")),
			wantIs: []error{store.ErrRecitationExists},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := postgres.MapError(tt.err)
			if tt.wantNil {
				assert.NoError(t, got)
				return
			}
			for _, target := range tt.wantIs {
				assert.ErrorIs(t, got, target)
			}
		})
	}

	t.Run("driver error is not exposed", func(t *testing.T) {
		t.Parallel()
		var pgErr *pgconn.PgError
		got := postgres.MapError(newPgError("23505", "recitation_records_user_text_key"))
		assert.False(t, errors.As(got, &pgErr))
		assert.Contains(t, got.Error(), "error message")
	})

	t.Run("unmapped error passes through", func(t *testing.T) {
		t.Parallel()
		original := errors.New("connection reset")
		assert.Same(t, original, postgres.MapError(original))
	})
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	assert.NoError(t, postgres.CheckRowsAffected(MockResult{rowsAffected: 1}, store.ErrReviewNotFound))
	assert.ErrorIs(t,
		postgres.CheckRowsAffected(MockResult{rowsAffected: 0}, store.ErrReviewNotFound),
		store.ErrReviewNotFound)
	assert.ErrorIs(t, postgres.CheckRowsAffected(MockResult{rowsAffected: 0}, nil), store.ErrNotFound)

	resultErr := errors.New("driver failure")
	assert.ErrorIs(t, postgres.CheckRowsAffected(MockResult{err: resultErr}, nil), resultErr)
	assert.Error(t, postgres.CheckRowsAffected(nil, nil))
}
