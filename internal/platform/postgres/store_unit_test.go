package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/recite-api/internal/domain"
	"github.com/phrazzld/recite-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

var recitationColumnNames = []string{
	"id", "user_id", "text_id", "status", "proficiency", "review_count", "notes",
	"first_started_at", "last_reviewed_at", "next_review_at", "created_at", "updated_at",
}

var reviewColumnNames = []string{
	"id", "recitation_id", "round", "status", "scheduled_at", "actual_completed_at",
	"quality_rating", "notes", "reminder_sent", "reminder_sent_at", "created_at", "updated_at",
}

var errDiskFull = errors.New("disk full")

func TestNewStoresPanicOnNilDB(t *testing.T) {
	assert.Panics(t, func() { NewPostgresRecitationStore(nil, nil) })
	assert.Panics(t, func() { NewPostgresReviewStore(nil, nil) })
	assert.Panics(t, func() { NewPostgresTextStore(nil, nil) })
	assert.Panics(t, func() { NewPostgresUserStore(nil, nil) })
	assert.Panics(t, func() { NewUnitOfWork(nil, nil) })
}

func TestRecitationStore_Create(t *testing.T) {
	now := time.Now().UTC()
	rec, err := domain.NewRecitationRecord(uuid.New(), uuid.New(), "notes", now.Add(24*time.Hour), now)
	require.NoError(t, err)

	t.Run("inserts", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO recitation_records")).
			WithArgs(rec.ID.String(), rec.UserID.String(), rec.TextID.String(), "learning", 0, 0, "notes",
				sqlmock.AnyArg(), nil, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		s := NewPostgresRecitationStore(db, nil)
		require.NoError(t, s.Create(context.Background(), rec))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate pair", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO recitation_records")).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: recitationUserTextKey})

		s := NewPostgresRecitationStore(db, nil)
		err := s.Create(context.Background(), rec)
		assert.ErrorIs(t, err, store.ErrRecitationExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("user without a users row", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO recitation_records")).
			WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: recitationUserFKey})

		s := NewPostgresRecitationStore(db, nil)
		err := s.Create(context.Background(), rec)
		assert.ErrorIs(t, err, store.ErrUserNotFound)
		assert.False(t, errors.Is(err, store.ErrInvalidEntity))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid entity never reaches the database", func(t *testing.T) {
		db, mock := newMock(t)
		bad := rec.Clone()
		bad.Proficiency = 500

		s := NewPostgresRecitationStore(db, nil)
		err := s.Create(context.Background(), bad)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRecitationStore_GetForUpdate(t *testing.T) {
	now := time.Now().UTC()
	id := uuid.New()
	userID := uuid.New()
	textID := uuid.New()

	t.Run("found", func(t *testing.T) {
		db, mock := newMock(t)
		rows := sqlmock.NewRows(recitationColumnNames).
			AddRow(id.String(), userID.String(), textID.String(), "need_review", 60, 1, "",
				now, now, now.Add(48*time.Hour), now, now)
		mock.ExpectQuery(regexp.QuoteMeta("FROM recitation_records WHERE id = $1 FOR UPDATE")).
			WithArgs(id.String()).
			WillReturnRows(rows)

		s := NewPostgresRecitationStore(db, nil)
		rec, err := s.GetForUpdate(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, rec.ID)
		assert.Equal(t, domain.RecitationStatusNeedReview, rec.Status)
		assert.Equal(t, 60, rec.Proficiency)
		require.NotNil(t, rec.NextReviewAt)
		assert.True(t, rec.NextReviewAt.Equal(now.Add(48*time.Hour)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM recitation_records WHERE id = $1")).
			WillReturnRows(sqlmock.NewRows(recitationColumnNames))

		s := NewPostgresRecitationStore(db, nil)
		_, err := s.GetByID(context.Background(), id)
		assert.ErrorIs(t, err, store.ErrRecitationNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRecitationStore_UpdateMissingRow(t *testing.T) {
	now := time.Now().UTC()
	rec, err := domain.NewRecitationRecord(uuid.New(), uuid.New(), "", now, now)
	require.NoError(t, err)

	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE recitation_records")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	s := NewPostgresRecitationStore(db, nil)
	assert.ErrorIs(t, s.Update(context.Background(), rec), store.ErrRecitationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewStore_ScanCompletedReview(t *testing.T) {
	now := time.Now().UTC()
	id := uuid.New()
	recitationID := uuid.New()

	db, mock := newMock(t)
	rows := sqlmock.NewRows(reviewColumnNames).
		AddRow(id.String(), recitationID.String(), 2, "completed", now, now, int64(4), "ok", true, now, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM review_records WHERE id = $1")).
		WithArgs(id.String()).
		WillReturnRows(rows)

	s := NewPostgresReviewStore(db, nil)
	review, err := s.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, review.Round)
	assert.Equal(t, domain.ReviewStatusCompleted, review.Status)
	require.NotNil(t, review.QualityRating)
	assert.Equal(t, domain.QualityFluent, *review.QualityRating)
	assert.True(t, review.ReminderSent)
	require.NotNil(t, review.ReminderSentAt)
	assert.NoError(t, review.Validate())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewStore_RecentRatings(t *testing.T) {
	recitationID := uuid.New()

	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT quality_rating FROM")).
		WithArgs(recitationID.String(), 3).
		WillReturnRows(sqlmock.NewRows([]string{"quality_rating"}).AddRow(int64(3)).AddRow(int64(5)))

	s := NewPostgresReviewStore(db, nil)
	ratings, err := s.RecentRatings(context.Background(), recitationID, 3)
	require.NoError(t, err)
	assert.Equal(t, []domain.QualityRating{3, 5}, ratings)

	none, err := s.RecentRatings(context.Background(), recitationID, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewStore_ListReminderCandidates(t *testing.T) {
	now := time.Now().UTC()
	from := now.Add(-24 * time.Hour)
	to := now.Add(time.Hour)

	db, mock := newMock(t)
	rows := sqlmock.NewRows(reviewColumnNames).
		AddRow(uuid.NewString(), uuid.NewString(), 1, "pending", now, nil, nil, "", false, nil, now, now)
	after := store.ReviewCursor{ScheduledAt: from, ID: uuid.New()}
	mock.ExpectQuery(regexp.QuoteMeta("AND (scheduled_at, id) > ($3, $4)")).
		WithArgs(from, to, from, after.ID.String(), 100).
		WillReturnRows(rows)

	s := NewPostgresReviewStore(db, nil)
	reviews, err := s.ListReminderCandidates(context.Background(), from, to, after, 100)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Nil(t, reviews[0].QualityRating)
	assert.Nil(t, reviews[0].ActualCompletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewStore_CreateSecondPending(t *testing.T) {
	now := time.Now().UTC()
	review, err := domain.NewReviewRecord(uuid.New(), 2, now, now)
	require.NoError(t, err)

	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO review_records")).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: reviewOnePendingIndex})

	s := NewPostgresReviewStore(db, nil)
	assert.ErrorIs(t, s.Create(context.Background(), review), store.ErrReviewExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTextStore_GetByID(t *testing.T) {
	id := uuid.New()
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM texts WHERE id = $1")).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "author", "created_at"}).
			AddRow(id.String(), "Daodejing", "Laozi", time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("FROM texts WHERE id = $1")).
		WillReturnError(sql.ErrNoRows)

	s := NewPostgresTextStore(db, nil)
	text, err := s.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Daodejing", text.Title)

	_, err = s.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrTextNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_WithinTx(t *testing.T) {
	now := time.Now().UTC()
	rec, err := domain.NewRecitationRecord(uuid.New(), uuid.New(), "", now.Add(24*time.Hour), now)
	require.NoError(t, err)
	review, err := domain.NewReviewRecord(rec.ID, 1, *rec.NextReviewAt, now)
	require.NoError(t, err)

	t.Run("commits both inserts", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO recitation_records")).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO review_records")).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		uow := NewUnitOfWork(db, nil)
		err := uow.WithinTx(context.Background(), func(ctx context.Context, repos store.Repos) error {
			if err := repos.Recitations.Create(ctx, rec); err != nil {
				return err
			}
			return repos.Reviews.Create(ctx, review)
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO recitation_records")).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO review_records")).
			WillReturnError(errDiskFull)
		mock.ExpectRollback()

		uow := NewUnitOfWork(db, nil)
		err := uow.WithinTx(context.Background(), func(ctx context.Context, repos store.Repos) error {
			if err := repos.Recitations.Create(ctx, rec); err != nil {
				return err
			}
			return repos.Reviews.Create(ctx, review)
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errDiskFull))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPrefixed(t *testing.T) {
	assert.Equal(t, "rv.id, rv.round", prefixed("rv", "id,\n\tround"))
}
