package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/phrazzld/recite-api/internal/platform/postgres"
)

// migrationCommands maps the -migrate values onto goose.
var migrationCommands = map[string]func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error{
	"up":    goose.UpContext,
	"down":  goose.DownContext,
	"reset": goose.ResetContext,
}

// runMigrations executes command against the embedded migrations.
func runMigrations(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	command = strings.ToLower(strings.TrimSpace(command))
	log := logger.With(slog.String("component", "migrations"), slog.String("command", command))

	goose.SetBaseFS(postgres.Migrations)
	defer goose.SetBaseFS(nil)
	goose.SetTableName(postgres.MigrationTableName)
	goose.SetLogger(&slogGooseLogger{logger: log})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	var err error
	if command == "status" {
		err = goose.StatusContext(ctx, db, postgres.MigrationsDir)
	} else if fn, ok := migrationCommands[command]; ok {
		err = fn(ctx, db, postgres.MigrationsDir)
	} else {
		return fmt.Errorf("unknown migration command %q (want up, down, status or reset)", command)
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	log.Info("migrations finished", slog.Int64("version", version))
	return nil
}

// slogGooseLogger adapts slog to goose.Logger.
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf forwards goose progress output at info level.
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf logs at error level. It does not exit; goose returns the error
// to the caller as well.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
