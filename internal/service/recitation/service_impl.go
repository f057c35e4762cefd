package recitation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recite-api/internal/domain"
	"github.com/phrazzld/recite-api/internal/domain/srs"
	"github.com/phrazzld/recite-api/internal/events"
	"github.com/phrazzld/recite-api/internal/platform/logger"
	"github.com/phrazzld/recite-api/internal/store"
)

var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	uow     store.UnitOfWork
	texts   store.TextStore
	srs     srs.Service
	emitter events.EventEmitter
	now     func() time.Time
	logger  *slog.Logger
}

// Option customizes the Service.
type Option func(*serviceImpl)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *serviceImpl) { s.now = now }
}

// NewService creates the recitation Service. A nil emitter discards events.
func NewService(
	uow store.UnitOfWork,
	texts store.TextStore,
	srsService srs.Service,
	emitter events.EventEmitter,
	logger *slog.Logger,
	opts ...Option,
) (Service, error) {
	if uow == nil {
		return nil, errors.New("unit of work cannot be nil")
	}
	if texts == nil {
		return nil, errors.New("text store cannot be nil")
	}
	if srsService == nil {
		return nil, errors.New("srs service cannot be nil")
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &serviceImpl{
		uow:     uow,
		texts:   texts,
		srs:     srsService,
		emitter: emitter,
		now:     time.Now,
		logger:  logger.With(slog.String("component", "recitation_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *serviceImpl) clock() time.Time {
	return s.now().UTC()
}

// StartRecitation implements Service.StartRecitation.
func (s *serviceImpl) StartRecitation(
	ctx context.Context,
	userID, textID uuid.UUID,
	notes string,
) (*domain.RecitationRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID.String()),
		slog.String("text_id", textID.String()))

	if _, err := s.texts.GetByID(ctx, textID); err != nil {
		if errors.Is(err, store.ErrTextNotFound) {
			return nil, ErrTextNotFound
		}
		return nil, NewServiceError("start_recitation", "failed to look up text", err)
	}

	now := s.clock()
	rec, err := domain.NewRecitationRecord(userID, textID, notes, s.srs.FirstReviewAt(now), now)
	if err != nil {
		return nil, err
	}
	first, err := domain.NewReviewRecord(rec.ID, 1, *rec.NextReviewAt, now)
	if err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, repos store.Repos) error {
		if err := repos.Recitations.Create(ctx, rec); err != nil {
			return err
		}
		return repos.Reviews.Create(ctx, first)
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRecitationExists):
			log.Debug("recitation already exists")
			return nil, ErrRecitationExists
		case errors.Is(err, store.ErrTextNotFound):
			return nil, ErrTextNotFound
		case errors.Is(err, store.ErrUserNotFound):
			log.Debug("token subject has no user record")
			return nil, ErrUserNotFound
		}
		log.Error("failed to start recitation", slog.String("error", err.Error()))
		return nil, NewServiceError("start_recitation", "failed to save recitation", err)
	}

	log.Info("recitation started",
		slog.String("recitation_id", rec.ID.String()),
		slog.Time("first_review_at", first.ScheduledAt))
	return rec, nil
}

// CompleteReview implements Service.CompleteReview.
func (s *serviceImpl) CompleteReview(
	ctx context.Context,
	requesterID, reviewID uuid.UUID,
	rating domain.QualityRating,
	notes string,
) (*CompletedReview, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", requesterID.String()),
		slog.String("review_id", reviewID.String()))

	if !rating.Valid() {
		log.Debug("invalid quality rating", slog.Int("quality_rating", int(rating)))
		return nil, ErrInvalidRating
	}

	now := s.clock()
	var result CompletedReview
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos store.Repos) error {
		// Rows are locked recitation first, then review, in every operation
		// that locks both. The unlocked read only finds the recitation.
		review, err := repos.Reviews.GetByID(ctx, reviewID)
		if err != nil {
			if errors.Is(err, store.ErrReviewNotFound) {
				return ErrReviewNotFound
			}
			return err
		}

		rec, err := repos.Recitations.GetForUpdate(ctx, review.RecitationID)
		if err != nil {
			if errors.Is(err, store.ErrRecitationNotFound) {
				return ErrRecitationNotFound
			}
			return err
		}
		if !rec.IsOwnedBy(requesterID) {
			return ErrNotOwned
		}

		review, err = repos.Reviews.GetForUpdate(ctx, reviewID)
		if err != nil {
			if errors.Is(err, store.ErrReviewNotFound) {
				return ErrReviewNotFound
			}
			return err
		}
		if review.Status != domain.ReviewStatusPending {
			return ErrReviewNotPending
		}

		previous, err := repos.Reviews.RecentRatings(ctx, rec.ID, s.srs.RecentRatingsWindow()-1)
		if err != nil {
			return err
		}
		outcome, err := s.srs.CalculateNextReview(rec, review.Round, rating, previous, now)
		if err != nil {
			return err
		}
		if err := review.Complete(rating, notes, now); err != nil {
			return err
		}

		// The completed review must leave the pending state before the next
		// round is inserted.
		if err := repos.Reviews.Update(ctx, review); err != nil {
			return err
		}
		if err := repos.Recitations.Update(ctx, outcome.Recitation); err != nil {
			return err
		}

		result.Recitation = outcome.Recitation
		result.Completed = review
		if outcome.Mastered() {
			return nil
		}

		next, err := domain.NewReviewRecord(rec.ID, outcome.NextRound, *outcome.Recitation.NextReviewAt, now)
		if err != nil {
			return err
		}
		if err := repos.Reviews.Create(ctx, next); err != nil {
			if errors.Is(err, store.ErrReviewExists) {
				return ErrReviewNotPending
			}
			return err
		}
		result.Next = next
		return nil
	})
	if err != nil {
		if isExpected(err) {
			log.Debug("review not completed", slog.String("reason", err.Error()))
			return nil, err
		}
		log.Error("failed to complete review", slog.String("error", err.Error()))
		return nil, NewServiceError("complete_review", "failed to save review", err)
	}

	log.Info("review completed",
		slog.String("recitation_id", result.Recitation.ID.String()),
		slog.Int("round", result.Completed.Round),
		slog.Int("quality_rating", int(rating)),
		slog.Int("proficiency", result.Recitation.Proficiency),
		slog.String("status", string(result.Recitation.Status)))

	s.emitCompleted(ctx, &result, now)
	return &result, nil
}

func (s *serviceImpl) emitCompleted(ctx context.Context, result *CompletedReview, now time.Time) {
	rec := result.Recitation
	s.emit(ctx, events.TypeReviewCompleted, events.ReviewCompleted{
		UserID:        rec.UserID,
		TextID:        rec.TextID,
		RecitationID:  rec.ID,
		ReviewID:      result.Completed.ID,
		Round:         result.Completed.Round,
		QualityRating: int(*result.Completed.QualityRating),
		Proficiency:   rec.Proficiency,
		ReviewCount:   rec.ReviewCount,
		Status:        string(rec.Status),
		NextReviewAt:  rec.NextReviewAt,
	}, now)

	if rec.Status == domain.RecitationStatusMastered {
		s.emit(ctx, events.TypeRecitationMastered, events.RecitationMastered{
			UserID:       rec.UserID,
			TextID:       rec.TextID,
			RecitationID: rec.ID,
			Proficiency:  rec.Proficiency,
			ReviewCount:  rec.ReviewCount,
		}, now)
	}
}

// emit publishes an event after commit. Failures are logged and never
// returned to the caller.
func (s *serviceImpl) emit(ctx context.Context, eventType string, payload interface{}, now time.Time) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewEvent(eventType, payload, now)
	if err != nil {
		log.Error("failed to build event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
		return
	}
	if err := s.emitter.EmitEvent(context.WithoutCancel(ctx), event); err != nil {
		log.Warn("failed to emit event",
			slog.String("event_type", eventType),
			slog.String("event_id", event.ID.String()),
			slog.String("error", err.Error()))
	}
}

// AbandonRecitation implements Service.AbandonRecitation.
func (s *serviceImpl) AbandonRecitation(
	ctx context.Context,
	requesterID, recitationID uuid.UUID,
) (*domain.RecitationRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", requesterID.String()),
		slog.String("recitation_id", recitationID.String()))

	now := s.clock()
	var rec *domain.RecitationRecord
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos store.Repos) error {
		var err error
		rec, err = repos.Recitations.GetForUpdate(ctx, recitationID)
		if err != nil {
			if errors.Is(err, store.ErrRecitationNotFound) {
				return ErrRecitationNotFound
			}
			return err
		}
		if !rec.IsOwnedBy(requesterID) {
			return ErrNotOwned
		}
		if err := rec.Abandon(now); err != nil {
			return err
		}

		pending, err := repos.Reviews.GetPendingForUpdate(ctx, rec.ID)
		switch {
		case errors.Is(err, store.ErrReviewNotFound):
		case err != nil:
			return err
		default:
			if err := pending.Skip(now); err != nil {
				return err
			}
			if err := repos.Reviews.Update(ctx, pending); err != nil {
				return err
			}
		}
		return repos.Recitations.Update(ctx, rec)
	})
	if err != nil {
		if isExpected(err) {
			return nil, err
		}
		log.Error("failed to abandon recitation", slog.String("error", err.Error()))
		return nil, NewServiceError("abandon_recitation", "failed to save recitation", err)
	}

	log.Info("recitation abandoned", slog.Int("review_count", rec.ReviewCount))
	s.emit(ctx, events.TypeRecitationAbandoned, events.RecitationAbandoned{
		UserID:       rec.UserID,
		TextID:       rec.TextID,
		RecitationID: rec.ID,
		ReviewCount:  rec.ReviewCount,
	}, now)
	return rec, nil
}

// ListRecitations implements Service.ListRecitations.
func (s *serviceImpl) ListRecitations(ctx context.Context, userID uuid.UUID) ([]*domain.RecitationRecord, error) {
	recs, err := s.uow.Repos().Recitations.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("list_recitations", "failed to list recitations", err)
	}
	return recs, nil
}

// ListReviews implements Service.ListReviews.
func (s *serviceImpl) ListReviews(
	ctx context.Context,
	requesterID, recitationID uuid.UUID,
) ([]*domain.ReviewRecord, error) {
	repos := s.uow.Repos()
	rec, err := repos.Recitations.GetByID(ctx, recitationID)
	if err != nil {
		if errors.Is(err, store.ErrRecitationNotFound) {
			return nil, ErrRecitationNotFound
		}
		return nil, NewServiceError("list_reviews", "failed to get recitation", err)
	}
	if !rec.IsOwnedBy(requesterID) {
		return nil, ErrNotOwned
	}

	reviews, err := repos.Reviews.ListByRecitation(ctx, rec.ID)
	if err != nil {
		return nil, NewServiceError("list_reviews", "failed to list reviews", err)
	}
	return reviews, nil
}

// DueReviews implements Service.DueReviews.
func (s *serviceImpl) DueReviews(ctx context.Context, userID uuid.UUID) ([]*domain.ReviewRecord, error) {
	reviews, err := s.uow.Repos().Reviews.ListDueByUser(ctx, userID, s.clock())
	if err != nil {
		return nil, NewServiceError("due_reviews", "failed to list due reviews", err)
	}
	return reviews, nil
}
