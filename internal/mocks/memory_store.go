package mocks

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recite-api/internal/domain"
	"github.com/phrazzld/recite-api/internal/store"
)

type memState struct {
	users       map[uuid.UUID]*domain.User
	texts       map[uuid.UUID]*domain.Text
	recitations map[uuid.UUID]*domain.RecitationRecord
	reviews     map[uuid.UUID]*domain.ReviewRecord
}

func newMemState() *memState {
	return &memState{
		users:       make(map[uuid.UUID]*domain.User),
		texts:       make(map[uuid.UUID]*domain.Text),
		recitations: make(map[uuid.UUID]*domain.RecitationRecord),
		reviews:     make(map[uuid.UUID]*domain.ReviewRecord),
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.texts {
		c.texts[k] = v
	}
	for k, v := range s.recitations {
		c.recitations[k] = v.Clone()
	}
	for k, v := range s.reviews {
		c.reviews[k] = v.Clone()
	}
	return c
}

// MemoryStore implements store.UnitOfWork in memory, with text and user
// lookups available through Texts and Users. Transactions run one at a time and see a private
// copy of the data that replaces the shared state on commit.
//
// Stores returned by Repos must not be used inside a WithinTx callback; use
// the stores passed to the callback instead.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState

	failMu   sync.Mutex
	failures map[string][]error
	locks    []string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state:    newMemState(),
		failures: make(map[string][]error),
	}
}

var _ store.UnitOfWork = (*MemoryStore)(nil)

// FailOnce makes the next call of op return err. Ops are named after the
// interface method, e.g. "Reviews.Update", "Recitations.Create" or "Commit".
// Repeated calls queue further failures.
func (m *MemoryStore) FailOnce(op string, err error) {
	m.failMu.Lock()
	defer m.failMu.Unlock()
	m.failures[op] = append(m.failures[op], err)
}

func (m *MemoryStore) injected(op string) error {
	m.failMu.Lock()
	defer m.failMu.Unlock()
	queue := m.failures[op]
	if len(queue) == 0 {
		return nil
	}
	m.failures[op] = queue[1:]
	return queue[0]
}

// Locks returns the row-locking ops ("...ForUpdate") called so far, in call
// order.
func (m *MemoryStore) Locks() []string {
	m.failMu.Lock()
	defer m.failMu.Unlock()
	return append([]string(nil), m.locks...)
}

// AddUser seeds a user and returns it.
func (m *MemoryStore) AddUser(email string) *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &domain.User{ID: uuid.New(), Email: email, DisplayName: email, CreatedAt: time.Now().UTC()}
	m.state.users[u.ID] = u
	return u
}

// AddText seeds a text and returns it.
func (m *MemoryStore) AddText(title, author string) *domain.Text {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &domain.Text{ID: uuid.New(), Title: title, Author: author, CreatedAt: time.Now().UTC()}
	m.state.texts[t.ID] = t
	return t
}

// PutReview stores a copy of review as is, bypassing the uniqueness checks.
// Tests use it to place reviews at arbitrary points in time.
func (m *MemoryStore) PutReview(review *domain.ReviewRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.reviews[review.ID] = review.Clone()
}

// PutRecitation stores a copy of rec as is.
func (m *MemoryStore) PutRecitation(rec *domain.RecitationRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.recitations[rec.ID] = rec.Clone()
}

// ReviewsFor returns copies of the committed reviews of a recitation ordered
// by round.
func (m *MemoryStore) ReviewsFor(recitationID uuid.UUID) []*domain.ReviewRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return reviewsOf(m.state, recitationID)
}

// RecitationCount returns the number of committed recitations.
func (m *MemoryStore) RecitationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.recitations)
}

// Repos implements store.UnitOfWork.Repos
func (m *MemoryStore) Repos() store.Repos {
	return store.Repos{
		Recitations: &memRecitations{m: m},
		Reviews:     &memReviews{m: m},
	}
}

// WithinTx implements store.UnitOfWork.WithinTx
func (m *MemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos store.Repos) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrTransactionFailed, err)
	}

	work := m.state.clone()
	err := fn(ctx, store.Repos{
		Recitations: &memRecitations{m: m, tx: work},
		Reviews:     &memReviews{m: m, tx: work},
	})
	if err != nil {
		return err
	}
	if err := m.injected("Commit"); err != nil {
		return fmt.Errorf("%w: commit: %w", store.ErrTransactionFailed, err)
	}
	m.state = work
	return nil
}

// do runs fn against the transaction state, or against the shared state
// under the lock when tx is nil.
func (m *MemoryStore) do(tx *memState, op string, fn func(s *memState) error) error {
	if strings.HasSuffix(op, "ForUpdate") {
		m.failMu.Lock()
		m.locks = append(m.locks, op)
		m.failMu.Unlock()
	}
	if err := m.injected(op); err != nil {
		return err
	}
	if tx != nil {
		return fn(tx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.state)
}

// Texts returns the store.TextStore view of m.
func (m *MemoryStore) Texts() store.TextStore {
	return memTexts{m: m}
}

type memTexts struct {
	m *MemoryStore
}

// GetByID implements store.TextStore.GetByID
func (t memTexts) GetByID(ctx context.Context, id uuid.UUID) (*domain.Text, error) {
	var out *domain.Text
	err := t.m.do(nil, "Texts.GetByID", func(s *memState) error {
		text, ok := s.texts[id]
		if !ok {
			return store.ErrTextNotFound
		}
		c := *text
		out = &c
		return nil
	})
	return out, err
}

// Users returns the store.UserStore view of m.
func (m *MemoryStore) Users() store.UserStore {
	return memUsers{m: m}
}

type memUsers struct {
	m *MemoryStore
}

// GetByID implements store.UserStore.GetByID
func (u memUsers) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var out *domain.User
	err := u.m.do(nil, "Users.GetByID", func(s *memState) error {
		user, ok := s.users[id]
		if !ok {
			return store.ErrUserNotFound
		}
		c := *user
		out = &c
		return nil
	})
	return out, err
}

type memRecitations struct {
	m  *MemoryStore
	tx *memState
}

func (r *memRecitations) WithTx(*sql.Tx) store.RecitationStore { return r }

func (r *memRecitations) Create(ctx context.Context, rec *domain.RecitationRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	return r.m.do(r.tx, "Recitations.Create", func(s *memState) error {
		if _, ok := s.texts[rec.TextID]; !ok {
			return store.ErrTextNotFound
		}
		if _, ok := s.recitations[rec.ID]; ok {
			return store.ErrRecitationExists
		}
		for _, existing := range s.recitations {
			if existing.UserID == rec.UserID && existing.TextID == rec.TextID {
				return store.ErrRecitationExists
			}
		}
		s.recitations[rec.ID] = rec.Clone()
		return nil
	})
}

func (r *memRecitations) GetByID(ctx context.Context, id uuid.UUID) (*domain.RecitationRecord, error) {
	return r.get("Recitations.GetByID", id)
}

func (r *memRecitations) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.RecitationRecord, error) {
	return r.get("Recitations.GetForUpdate", id)
}

func (r *memRecitations) get(op string, id uuid.UUID) (*domain.RecitationRecord, error) {
	var out *domain.RecitationRecord
	err := r.m.do(r.tx, op, func(s *memState) error {
		rec, ok := s.recitations[id]
		if !ok {
			return store.ErrRecitationNotFound
		}
		out = rec.Clone()
		return nil
	})
	return out, err
}

func (r *memRecitations) Update(ctx context.Context, rec *domain.RecitationRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	return r.m.do(r.tx, "Recitations.Update", func(s *memState) error {
		if _, ok := s.recitations[rec.ID]; !ok {
			return store.ErrRecitationNotFound
		}
		s.recitations[rec.ID] = rec.Clone()
		return nil
	})
}

func (r *memRecitations) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.RecitationRecord, error) {
	out := []*domain.RecitationRecord{}
	err := r.m.do(r.tx, "Recitations.ListByUser", func(s *memState) error {
		for _, rec := range s.recitations {
			if rec.UserID == userID {
				out = append(out, rec.Clone())
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, err
}

type memReviews struct {
	m  *MemoryStore
	tx *memState
}

func (r *memReviews) WithTx(*sql.Tx) store.ReviewStore { return r }

func (r *memReviews) Create(ctx context.Context, review *domain.ReviewRecord) error {
	if err := review.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	return r.m.do(r.tx, "Reviews.Create", func(s *memState) error {
		if _, ok := s.recitations[review.RecitationID]; !ok {
			return store.ErrRecitationNotFound
		}
		for _, existing := range s.reviews {
			if existing.RecitationID != review.RecitationID {
				continue
			}
			if existing.Round == review.Round {
				return store.ErrReviewExists
			}
			if existing.Status == domain.ReviewStatusPending && review.Status == domain.ReviewStatusPending {
				return store.ErrReviewExists
			}
		}
		s.reviews[review.ID] = review.Clone()
		return nil
	})
}

func (r *memReviews) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReviewRecord, error) {
	return r.get("Reviews.GetByID", id)
}

func (r *memReviews) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.ReviewRecord, error) {
	return r.get("Reviews.GetForUpdate", id)
}

func (r *memReviews) get(op string, id uuid.UUID) (*domain.ReviewRecord, error) {
	var out *domain.ReviewRecord
	err := r.m.do(r.tx, op, func(s *memState) error {
		review, ok := s.reviews[id]
		if !ok {
			return store.ErrReviewNotFound
		}
		out = review.Clone()
		return nil
	})
	return out, err
}

func (r *memReviews) GetPendingForUpdate(ctx context.Context, recitationID uuid.UUID) (*domain.ReviewRecord, error) {
	var out *domain.ReviewRecord
	err := r.m.do(r.tx, "Reviews.GetPendingForUpdate", func(s *memState) error {
		for _, review := range s.reviews {
			if review.RecitationID == recitationID && review.Status == domain.ReviewStatusPending {
				out = review.Clone()
				return nil
			}
		}
		return store.ErrReviewNotFound
	})
	return out, err
}

func (r *memReviews) Update(ctx context.Context, review *domain.ReviewRecord) error {
	if err := review.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	return r.m.do(r.tx, "Reviews.Update", func(s *memState) error {
		if _, ok := s.reviews[review.ID]; !ok {
			return store.ErrReviewNotFound
		}
		s.reviews[review.ID] = review.Clone()
		return nil
	})
}

func (r *memReviews) ListByRecitation(ctx context.Context, recitationID uuid.UUID) ([]*domain.ReviewRecord, error) {
	var out []*domain.ReviewRecord
	err := r.m.do(r.tx, "Reviews.ListByRecitation", func(s *memState) error {
		out = reviewsOf(s, recitationID)
		return nil
	})
	return out, err
}

func (r *memReviews) RecentRatings(
	ctx context.Context,
	recitationID uuid.UUID,
	limit int,
) ([]domain.QualityRating, error) {
	if limit <= 0 {
		return nil, nil
	}
	var ratings []domain.QualityRating
	err := r.m.do(r.tx, "Reviews.RecentRatings", func(s *memState) error {
		for _, review := range reviewsOf(s, recitationID) {
			if review.Status == domain.ReviewStatusCompleted && review.QualityRating != nil {
				ratings = append(ratings, *review.QualityRating)
			}
		}
		return nil
	})
	if len(ratings) > limit {
		ratings = ratings[len(ratings)-limit:]
	}
	return ratings, err
}

func (r *memReviews) ListDueByUser(
	ctx context.Context,
	userID uuid.UUID,
	asOf time.Time,
) ([]*domain.ReviewRecord, error) {
	return r.filter("Reviews.ListDueByUser", 0, func(s *memState, review *domain.ReviewRecord) bool {
		rec, ok := s.recitations[review.RecitationID]
		return ok && rec.UserID == userID &&
			review.Status == domain.ReviewStatusPending &&
			!review.ScheduledAt.After(asOf)
	})
}

func (r *memReviews) ListReminderCandidates(
	ctx context.Context,
	from, to time.Time,
	after store.ReviewCursor,
	limit int,
) ([]*domain.ReviewRecord, error) {
	return r.filter("Reviews.ListReminderCandidates", limit, func(_ *memState, review *domain.ReviewRecord) bool {
		return after.Before(review) &&
			review.Status == domain.ReviewStatusPending && !review.ReminderSent &&
			!review.ScheduledAt.Before(from) && !review.ScheduledAt.After(to)
	})
}

func (r *memReviews) ListExpiryCandidates(
	ctx context.Context,
	before time.Time,
	after store.ReviewCursor,
	limit int,
) ([]*domain.ReviewRecord, error) {
	return r.filter("Reviews.ListExpiryCandidates", limit, func(_ *memState, review *domain.ReviewRecord) bool {
		return after.Before(review) && review.Status == domain.ReviewStatusPending && review.ScheduledAt.Before(before)
	})
}

func (r *memReviews) filter(
	op string,
	limit int,
	keep func(s *memState, review *domain.ReviewRecord) bool,
) ([]*domain.ReviewRecord, error) {
	out := []*domain.ReviewRecord{}
	err := r.m.do(r.tx, op, func(s *memState) error {
		for _, review := range s.reviews {
			if keep(s, review) {
				out = append(out, review.Clone())
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ScheduledAt.Before(out[j].ScheduledAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func reviewsOf(s *memState, recitationID uuid.UUID) []*domain.ReviewRecord {
	out := []*domain.ReviewRecord{}
	for _, review := range s.reviews {
		if review.RecitationID == recitationID {
			out = append(out, review.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Round < out[j].Round })
	return out
}
