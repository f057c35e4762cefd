package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingReview(t *testing.T, scheduledAt time.Time) *ReviewRecord {
	t.Helper()
	r, err := NewReviewRecord(uuid.New(), 1, scheduledAt, scheduledAt.Add(-24*time.Hour))
	require.NoError(t, err)
	return r
}

func TestNewReviewRecord(t *testing.T) {
	now := time.Now().UTC()

	r, err := NewReviewRecord(uuid.New(), 2, now.Add(time.Hour), now)
	require.NoError(t, err)
	assert.Equal(t, ReviewStatusPending, r.Status)
	assert.Equal(t, 2, r.Round)
	assert.Nil(t, r.QualityRating)
	assert.False(t, r.ReminderSent)

	_, err = NewReviewRecord(uuid.New(), 0, now, now)
	assert.ErrorIs(t, err, ErrInvalidRound)

	_, err = NewReviewRecord(uuid.Nil, 1, now, now)
	assert.ErrorIs(t, err, ErrReviewRecitationIDEmpty)
}

func TestReviewRecordComplete(t *testing.T) {
	now := time.Now().UTC()

	t.Run("pending review", func(t *testing.T) {
		r := newPendingReview(t, now)
		require.NoError(t, r.Complete(QualityFluent, "smooth", now))

		assert.Equal(t, ReviewStatusCompleted, r.Status)
		require.NotNil(t, r.QualityRating)
		assert.Equal(t, QualityFluent, *r.QualityRating)
		require.NotNil(t, r.ActualCompletedAt)
		assert.Equal(t, now, *r.ActualCompletedAt)
		assert.Equal(t, "smooth", r.Notes)
		assert.NoError(t, r.Validate())
	})

	t.Run("invalid rating leaves review untouched", func(t *testing.T) {
		r := newPendingReview(t, now)
		err := r.Complete(6, "", now)
		assert.ErrorIs(t, err, ErrInvalidQualityRating)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, ReviewStatusPending, r.Status)
	})

	t.Run("terminal reviews conflict", func(t *testing.T) {
		for _, status := range []ReviewStatus{ReviewStatusCompleted, ReviewStatusExpired, ReviewStatusSkipped} {
			r := newPendingReview(t, now)
			r.Status = status
			err := r.Complete(QualityPerfect, "", now)
			assert.ErrorIs(t, err, ErrReviewNotPending, string(status))
			assert.ErrorIs(t, err, ErrConflict, string(status))
		}
	})
}

func TestReviewRecordTransitions(t *testing.T) {
	now := time.Now().UTC()

	r := newPendingReview(t, now)
	require.NoError(t, r.Expire(now))
	assert.Equal(t, ReviewStatusExpired, r.Status)
	assert.ErrorIs(t, r.Expire(now), ErrReviewNotPending)
	assert.ErrorIs(t, r.Skip(now), ErrReviewNotPending)
	assert.ErrorIs(t, r.MarkReminded(now), ErrReviewNotPending)

	r = newPendingReview(t, now)
	require.NoError(t, r.Skip(now))
	assert.Equal(t, ReviewStatusSkipped, r.Status)

	r = newPendingReview(t, now)
	require.NoError(t, r.MarkReminded(now))
	assert.True(t, r.ReminderSent)
	require.NotNil(t, r.ReminderSentAt)
	assert.Equal(t, now, *r.ReminderSentAt)
	assert.ErrorIs(t, r.MarkReminded(now.Add(time.Minute)), ErrReminderAlreadySent)
	assert.Equal(t, now, *r.ReminderSentAt)
}

func TestReviewRecordReminderDue(t *testing.T) {
	now := time.Now().UTC()
	lead := time.Hour
	grace := 24 * time.Hour

	testCases := []struct {
		name     string
		offset   time.Duration
		expected bool
	}{
		{name: "in thirty minutes", offset: 30 * time.Minute, expected: true},
		{name: "exactly one hour ahead", offset: time.Hour, expected: true},
		{name: "two hours ahead", offset: 2 * time.Hour, expected: false},
		{name: "just scheduled", offset: 0, expected: true},
		{name: "23 hours late", offset: -23 * time.Hour, expected: true},
		{name: "exactly 24 hours late", offset: -24 * time.Hour, expected: true},
		{name: "25 hours late", offset: -25 * time.Hour, expected: false},
		{name: "49 hours late", offset: -49 * time.Hour, expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := newPendingReview(t, now.Add(tc.offset))
			assert.Equal(t, tc.expected, r.ReminderDue(now, lead, grace))
		})
	}

	t.Run("already reminded", func(t *testing.T) {
		r := newPendingReview(t, now.Add(30*time.Minute))
		require.NoError(t, r.MarkReminded(now))
		assert.False(t, r.ReminderDue(now, lead, grace))
	})
}

func TestReviewRecordExpiredAt(t *testing.T) {
	now := time.Now().UTC()
	grace := 48 * time.Hour

	assert.True(t, newPendingReview(t, now.Add(-49*time.Hour)).ExpiredAt(now, grace))
	assert.False(t, newPendingReview(t, now.Add(-48*time.Hour)).ExpiredAt(now, grace))
	assert.False(t, newPendingReview(t, now.Add(-47*time.Hour)).ExpiredAt(now, grace))

	done := newPendingReview(t, now.Add(-72*time.Hour))
	require.NoError(t, done.Complete(QualityEffortful, "", now))
	assert.False(t, done.ExpiredAt(now, grace))
}

func TestReviewRecordClone(t *testing.T) {
	now := time.Now().UTC()
	r := newPendingReview(t, now)
	require.NoError(t, r.Complete(QualityVague, "", now))

	c := r.Clone()
	assert.Equal(t, r, c)

	*c.QualityRating = QualityPerfect
	*c.ActualCompletedAt = now.Add(time.Hour)
	assert.Equal(t, QualityVague, *r.QualityRating)
	assert.Equal(t, now, *r.ActualCompletedAt)
}
