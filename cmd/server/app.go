package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/recite-api/internal/config"
	"github.com/phrazzld/recite-api/internal/domain/srs"
	"github.com/phrazzld/recite-api/internal/events"
	"github.com/phrazzld/recite-api/internal/platform/postgres"
	"github.com/phrazzld/recite-api/internal/platform/redis"
	"github.com/phrazzld/recite-api/internal/platform/ses"
	"github.com/phrazzld/recite-api/internal/service/auth"
	"github.com/phrazzld/recite-api/internal/service/recitation"
	"github.com/phrazzld/recite-api/internal/store"
	"github.com/phrazzld/recite-api/internal/task"
)

// application holds the shared dependencies and owns their shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	uow   store.UnitOfWork
	texts store.TextStore
	users store.UserStore

	jwtService        auth.JWTService
	srsService        srs.Service
	recitationService recitation.Service

	eventEmitter *events.AsyncEmitter
	publisher    *redis.Publisher
	sweepRunner  *task.Runner
}

// newApplication wires every component on top of an open database.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	app.uow = postgres.NewUnitOfWork(db, logger)
	app.texts = postgres.NewPostgresTextStore(db, logger)
	app.users = postgres.NewPostgresUserStore(db, logger)

	params, err := srs.NewParams(srs.ParamsConfig{
		Intervals:          cfg.Schedule.IntervalsDays,
		QualityMultipliers: cfg.Schedule.QualityMultipliers,
		FirstReviewDays:    cfg.Schedule.FirstReviewDays,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid schedule configuration: %w", err)
	}
	app.srsService, err = srs.NewServiceWithParams(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create SRS service: %w", err)
	}

	if err := app.setupEvents(ctx); err != nil {
		return nil, err
	}

	app.recitationService, err = recitation.NewService(app.uow, app.texts, app.srsService, app.eventEmitter, logger)
	if err != nil {
		app.cleanup(ctx)
		return nil, fmt.Errorf("failed to create recitation service: %w", err)
	}

	notifier, err := app.buildNotifier(ctx)
	if err != nil {
		app.cleanup(ctx)
		return nil, err
	}
	sweeper, err := task.NewSweeper(app.uow, notifier, task.SweepConfigFrom(cfg.Sweep), logger)
	if err != nil {
		app.cleanup(ctx)
		return nil, fmt.Errorf("failed to create sweeper: %w", err)
	}
	app.sweepRunner, err = task.NewRunner(sweeper, task.RunnerConfig{
		ReminderInterval: cfg.Sweep.ReminderInterval(),
		ExpiryInterval:   cfg.Sweep.ExpiryInterval(),
	}, logger)
	if err != nil {
		app.cleanup(ctx)
		return nil, fmt.Errorf("failed to create sweep runner: %w", err)
	}

	logger.Info("application initialized")
	return app, nil
}

// setupEvents builds the async emitter and, when configured, the Redis
// publisher behind it.
func (app *application) setupEvents(ctx context.Context) error {
	handlers := events.NewInMemoryEventEmitter(app.logger)

	if app.config.Events.RedisAddr != "" {
		publisher, err := redis.Connect(ctx, app.config.Events, app.logger)
		if err != nil {
			return fmt.Errorf("failed to connect event publisher: %w", err)
		}
		app.publisher = publisher
		handlers.RegisterHandler(publisher)
		app.logger.Info("publishing events to redis",
			slog.String("channel", app.config.Events.RedisChannel))
	} else {
		app.logger.Info("redis address not configured, events are not published")
	}

	asyncCfg := events.DefaultAsyncConfig()
	asyncCfg.WorkerCount = app.config.Events.WorkerCount
	asyncCfg.QueueSize = app.config.Events.QueueSize
	app.eventEmitter = events.NewAsyncEmitter(handlers, asyncCfg, app.logger)
	app.eventEmitter.Start()
	return nil
}

// buildNotifier returns the reminder channel selected by notifier.kind.
func (app *application) buildNotifier(ctx context.Context) (task.Notifier, error) {
	switch app.config.Notifier.Kind {
	case "ses":
		n, err := ses.New(ctx, app.users, app.texts, app.config.Notifier, app.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create SES notifier: %w", err)
		}
		return n, nil
	case "log", "":
		return task.NewLogNotifier(app.logger), nil
	default:
		return nil, fmt.Errorf("unknown notifier kind %q", app.config.Notifier.Kind)
	}
}

// cleanup releases resources in reverse order of creation. Events still
// queued get until ctx is done to drain.
func (app *application) cleanup(ctx context.Context) {
	if app.sweepRunner != nil {
		app.sweepRunner.Stop()
	}
	if app.eventEmitter != nil {
		if err := app.eventEmitter.Stop(ctx); err != nil {
			app.logger.Warn("event queue not drained", slog.String("error", err.Error()))
		}
	}
	if app.publisher != nil {
		if err := app.publisher.Close(); err != nil {
			app.logger.Error("error closing redis client", slog.String("error", err.Error()))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
	app.logger.Info("application shutdown completed")
}
