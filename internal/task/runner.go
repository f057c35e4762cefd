package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// Job tags registered by the Runner.
const (
	JobReminders = "reminder_sweep"
	JobExpiry    = "expiry_sweep"
)

// RunnerConfig sets how often each sweep runs.
type RunnerConfig struct {
	ReminderInterval time.Duration
	ExpiryInterval   time.Duration
}

// Runner schedules the sweeps on gocron timers. Every job runs in singleton
// mode, so a slow run is never overlapped by the next tick, and receives a
// context that is cancelled by Stop.
type Runner struct {
	sweeper   *Sweeper
	config    RunnerConfig
	scheduler *gocron.Scheduler
	logger    *slog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	jobMu   sync.RWMutex
	mu      sync.Mutex
	running bool
}

// NewRunner creates a Runner for sweeper.
func NewRunner(sweeper *Sweeper, cfg RunnerConfig, logger *slog.Logger) (*Runner, error) {
	if sweeper == nil {
		return nil, errors.New("sweeper cannot be nil")
	}
	if cfg.ReminderInterval <= 0 || cfg.ExpiryInterval <= 0 {
		return nil, fmt.Errorf("sweep intervals must be positive: reminder=%s expiry=%s",
			cfg.ReminderInterval, cfg.ExpiryInterval)
	}
	if logger == nil {
		logger = slog.Default()
	}

	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		sweeper:   sweeper,
		config:    cfg,
		scheduler: scheduler,
		logger:    logger.With(slog.String("component", "sweep_runner")),
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// ErrRunnerStopped is returned by Start after Stop.
var ErrRunnerStopped = errors.New("sweep runner stopped")

// Start registers both jobs and starts the scheduler without blocking. The
// first run of each job happens immediately. A stopped Runner cannot be
// restarted.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ctx.Err() != nil {
		return ErrRunnerStopped
	}
	if r.running {
		return nil
	}

	jobs := []struct {
		name     string
		interval time.Duration
		sweep    func(context.Context) (SweepResult, error)
	}{
		{JobReminders, r.config.ReminderInterval, r.sweeper.RunReminders},
		{JobExpiry, r.config.ExpiryInterval, r.sweeper.RunExpiry},
	}
	for _, j := range jobs {
		if _, err := r.scheduler.Every(j.interval).Tag(j.name).Do(r.job(j.name, j.sweep)); err != nil {
			return fmt.Errorf("failed to schedule %s: %w", j.name, err)
		}
	}

	r.scheduler.StartAsync()
	r.running = true
	r.logger.Info("sweep runner started",
		slog.Duration("reminder_interval", r.config.ReminderInterval),
		slog.Duration("expiry_interval", r.config.ExpiryInterval))
	return nil
}

// Run starts the runner and blocks until ctx is done, then stops it.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	r.Stop()
	return nil
}

// Stop cancels in-flight sweeps, stops the scheduler and waits for running
// jobs to return.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.jobMu.Lock()
	r.cancel()
	r.jobMu.Unlock()

	if r.running {
		r.scheduler.Stop()
		r.running = false
	}
	r.wg.Wait()
	r.logger.Info("sweep runner stopped")
}

func (r *Runner) job(name string, sweep func(context.Context) (SweepResult, error)) func() {
	return func() {
		r.jobMu.RLock()
		if r.ctx.Err() != nil {
			r.jobMu.RUnlock()
			return
		}
		r.wg.Add(1)
		r.jobMu.RUnlock()
		defer r.wg.Done()

		start := time.Now()
		result, err := sweep(r.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				r.logger.Info("sweep cancelled", slog.String("job", name))
				return
			}
			r.logger.Error("sweep failed",
				slog.String("job", name),
				slog.String("error", err.Error()))
			return
		}
		r.logger.Debug("sweep completed",
			slog.String("job", name),
			slog.Int("processed", result.Processed),
			slog.Duration("elapsed", time.Since(start)))
	}
}
