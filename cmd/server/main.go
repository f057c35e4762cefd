// Package main runs the recitation API: the HTTP server, the reminder and
// expiry sweeps and the schema migration command.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/phrazzld/recite-api/internal/config"
	"github.com/phrazzld/recite-api/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command: up, down, status or reset")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before reading configuration")
	flag.Parse()

	if err := run(*migrateCmd, *envFile); err != nil {
		log.Fatalf("recite-api: %v", err)
	}
}

func run(migrateCmd, envFile string) error {
	cfg, appLogger, err := loadAppConfig(envFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := setupAppDatabase(ctx, cfg.Database, appLogger)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer func() { _ = db.Close() }()
		return runMigrations(ctx, db, migrateCmd, appLogger)
	}

	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}

// loadAppConfig reads the dotenv file and the configuration, then sets up
// the default logger.
func loadAppConfig(envFile string) (*config.Config, *slog.Logger, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("notifier", cfg.Notifier.Kind),
		slog.Bool("redis_events", cfg.Events.RedisAddr != ""))
	return cfg, l, nil
}
