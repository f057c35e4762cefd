package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recite-api/internal/platform/logger"
)

// Reminder describes a review that is about to fall due.
type Reminder struct {
	ReviewID     uuid.UUID
	RecitationID uuid.UUID
	UserID       uuid.UUID
	TextID       uuid.UUID
	Round        int
	ScheduledAt  time.Time
}

// Notifier delivers reminders. Delivery is fire-and-forget: the sweep logs a
// failed call and never retries it.
type Notifier interface {
	NotifyReviewDue(ctx context.Context, reminder Reminder) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, reminder Reminder) error

// NotifyReviewDue implements Notifier.
func (f NotifierFunc) NotifyReviewDue(ctx context.Context, reminder Reminder) error {
	return f(ctx, reminder)
}

// LogNotifier writes reminders to the log instead of delivering them.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger.With(slog.String("component", "log_notifier"))}
}

// NotifyReviewDue implements Notifier.
func (n *LogNotifier) NotifyReviewDue(ctx context.Context, reminder Reminder) error {
	logger.FromContextOrDefault(ctx, n.logger).Info("review due",
		slog.String("review_id", reminder.ReviewID.String()),
		slog.String("recitation_id", reminder.RecitationID.String()),
		slog.String("user_id", reminder.UserID.String()),
		slog.Int("round", reminder.Round),
		slog.Time("scheduled_at", reminder.ScheduledAt))
	return nil
}
