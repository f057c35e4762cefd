package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/recite-api/internal/config"
	"github.com/phrazzld/recite-api/internal/domain"
	"github.com/phrazzld/recite-api/internal/platform/logger"
	"github.com/phrazzld/recite-api/internal/store"
)

// errRowSkipped marks a candidate whose state changed between listing and
// locking. It never leaves this package.
var errRowSkipped = errors.New("row no longer eligible")

// SweepConfig holds the windows and limits of both sweeps.
type SweepConfig struct {
	// ReminderLead is how long before ScheduledAt a reminder may go out.
	ReminderLead time.Duration
	// ReminderGrace is how long after ScheduledAt a reminder may still go out.
	ReminderGrace time.Duration
	// ExpiryGrace is how long after ScheduledAt a pending review expires.
	ExpiryGrace time.Duration
	// BatchSize limits the candidates listed per query.
	BatchSize int
	// NotifyTimeout bounds one Notifier call. Zero means no timeout.
	NotifyTimeout time.Duration
}

// DefaultSweepConfig returns the standard windows: 1h lead, 24h grace and
// expiry 48h after the scheduled time.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		ReminderLead:  time.Hour,
		ReminderGrace: 24 * time.Hour,
		ExpiryGrace:   48 * time.Hour,
		BatchSize:     500,
		NotifyTimeout: 10 * time.Second,
	}
}

// SweepConfigFrom converts the configuration file representation.
func SweepConfigFrom(cfg config.SweepConfig) SweepConfig {
	return SweepConfig{
		ReminderLead:  cfg.ReminderLead(),
		ReminderGrace: cfg.ReminderGrace(),
		ExpiryGrace:   cfg.ExpiryGrace(),
		BatchSize:     cfg.BatchSize,
		NotifyTimeout: cfg.NotifyTimeout(),
	}
}

// SweepResult counts what a single sweep run did.
type SweepResult struct {
	// Scanned is the number of candidates listed.
	Scanned int
	// Processed is the number of rows reminded or expired.
	Processed int
	// Skipped is the number of candidates that were no longer eligible once locked.
	Skipped int
	// Failed is the number of rows whose transaction failed.
	Failed int
	// NotifyFailed is the number of reminders whose delivery failed after commit.
	NotifyFailed int
}

// Sweeper runs the reminder and expiry passes.
type Sweeper struct {
	uow      store.UnitOfWork
	notifier Notifier
	config   SweepConfig
	now      func() time.Time
	logger   *slog.Logger
}

// SweeperOption customizes a Sweeper.
type SweeperOption func(*Sweeper)

// WithClock replaces time.Now for the sweeps.
func WithClock(now func() time.Time) SweeperOption {
	return func(s *Sweeper) { s.now = now }
}

// NewSweeper creates a Sweeper. A zero BatchSize falls back to the default.
func NewSweeper(
	uow store.UnitOfWork,
	notifier Notifier,
	cfg SweepConfig,
	logger *slog.Logger,
	opts ...SweeperOption,
) (*Sweeper, error) {
	if uow == nil {
		return nil, errors.New("unit of work cannot be nil")
	}
	if notifier == nil {
		return nil, errors.New("notifier cannot be nil")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultSweepConfig().BatchSize
	}
	if cfg.ReminderLead < 0 || cfg.ReminderGrace < 0 || cfg.ExpiryGrace <= 0 {
		return nil, fmt.Errorf("invalid sweep windows: lead=%s grace=%s expiry=%s",
			cfg.ReminderLead, cfg.ReminderGrace, cfg.ExpiryGrace)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Sweeper{
		uow:      uow,
		notifier: notifier,
		config:   cfg,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "sweeper")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RunReminders flags every pending, not yet reminded review inside the
// reminder window and notifies the learner after each commit.
func (s *Sweeper) RunReminders(ctx context.Context) (SweepResult, error) {
	now := s.now().UTC()
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("sweep", "reminder"))
	from := now.Add(-s.config.ReminderGrace)
	to := now.Add(s.config.ReminderLead)

	var (
		result SweepResult
		cursor store.ReviewCursor
	)
	for {
		candidates, err := s.uow.Repos().Reviews.ListReminderCandidates(ctx, from, to, cursor, s.config.BatchSize)
		if err != nil {
			return result, fmt.Errorf("failed to list reminder candidates: %w", err)
		}
		result.Scanned += len(candidates)

		for _, candidate := range candidates {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			cursor = store.CursorAfter(candidate)

			reminder, err := s.remindOne(ctx, candidate, now)
			switch {
			case errors.Is(err, errRowSkipped):
				result.Skipped++
				continue
			case err != nil:
				result.Failed++
				log.Error("failed to flag reminder",
					slog.String("review_id", candidate.ID.String()),
					slog.String("error", err.Error()))
				continue
			}

			result.Processed++
			if err := s.notify(ctx, reminder); err != nil {
				result.NotifyFailed++
				log.Warn("reminder delivery failed",
					slog.String("review_id", candidate.ID.String()),
					slog.String("error", err.Error()))
			}
		}

		if len(candidates) < s.config.BatchSize {
			break
		}
	}

	log.Info("reminder sweep finished",
		slog.Int("scanned", result.Scanned),
		slog.Int("reminded", result.Processed),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed),
		slog.Int("notify_failed", result.NotifyFailed))
	return result, nil
}

func (s *Sweeper) remindOne(ctx context.Context, candidate *domain.ReviewRecord, now time.Time) (Reminder, error) {
	var reminder Reminder
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos store.Repos) error {
		review, err := repos.Reviews.GetForUpdate(ctx, candidate.ID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return errRowSkipped
			}
			return err
		}
		if !review.ReminderDue(now, s.config.ReminderLead, s.config.ReminderGrace) {
			return errRowSkipped
		}

		rec, err := repos.Recitations.GetByID(ctx, review.RecitationID)
		if err != nil {
			return err
		}

		if err := review.MarkReminded(now); err != nil {
			return errRowSkipped
		}
		if err := repos.Reviews.Update(ctx, review); err != nil {
			return err
		}

		reminder = Reminder{
			ReviewID:     review.ID,
			RecitationID: review.RecitationID,
			UserID:       rec.UserID,
			TextID:       rec.TextID,
			Round:        review.Round,
			ScheduledAt:  review.ScheduledAt,
		}
		return nil
	})
	return reminder, err
}

func (s *Sweeper) notify(ctx context.Context, reminder Reminder) error {
	if s.config.NotifyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.NotifyTimeout)
		defer cancel()
	}
	return s.notifier.NotifyReviewDue(ctx, reminder)
}

// RunExpiry marks every review still pending ExpiryGrace after its scheduled
// time as expired. The owning recitation is left untouched.
func (s *Sweeper) RunExpiry(ctx context.Context) (SweepResult, error) {
	now := s.now().UTC()
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("sweep", "expiry"))
	before := now.Add(-s.config.ExpiryGrace)

	var (
		result SweepResult
		cursor store.ReviewCursor
	)
	for {
		candidates, err := s.uow.Repos().Reviews.ListExpiryCandidates(ctx, before, cursor, s.config.BatchSize)
		if err != nil {
			return result, fmt.Errorf("failed to list expiry candidates: %w", err)
		}
		result.Scanned += len(candidates)

		for _, candidate := range candidates {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			cursor = store.CursorAfter(candidate)

			err := s.expireOne(ctx, candidate, now)
			switch {
			case errors.Is(err, errRowSkipped):
				result.Skipped++
			case err != nil:
				result.Failed++
				log.Error("failed to expire review",
					slog.String("review_id", candidate.ID.String()),
					slog.String("error", err.Error()))
			default:
				result.Processed++
			}
		}

		if len(candidates) < s.config.BatchSize {
			break
		}
	}

	log.Info("expiry sweep finished",
		slog.Int("scanned", result.Scanned),
		slog.Int("expired", result.Processed),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed))
	return result, nil
}

func (s *Sweeper) expireOne(ctx context.Context, candidate *domain.ReviewRecord, now time.Time) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, repos store.Repos) error {
		review, err := repos.Reviews.GetForUpdate(ctx, candidate.ID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return errRowSkipped
			}
			return err
		}
		if !review.ExpiredAt(now, s.config.ExpiryGrace) {
			return errRowSkipped
		}
		if err := review.Expire(now); err != nil {
			return errRowSkipped
		}
		return repos.Reviews.Update(ctx, review)
	})
}
