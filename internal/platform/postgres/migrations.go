package postgres

import "embed"

// MigrationsDir is the directory inside Migrations holding the goose files.
const MigrationsDir = "migrations"

// MigrationTableName is the table goose records applied migrations in.
const MigrationTableName = "schema_migrations"

// Migrations holds the goose SQL migrations for the schema.
//
//go:embed migrations/*.sql
var Migrations embed.FS
