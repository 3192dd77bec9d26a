package repository

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
	"github.com/vibast-solutions/ms-go-nutrition/migrations"
)

// gooseUp, gooseDown and gooseStatus are seams for tests.
var (
	gooseUp     = goose.UpContext
	gooseDown   = goose.DownContext
	gooseStatus = goose.StatusContext
)

func configureGoose() error {
	goose.SetBaseFS(migrations.FS)
	return goose.SetDialect("mysql")
}

// MigrateUp applies every pending migration.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	if err := configureGoose(); err != nil {
		return err
	}
	return gooseUp(ctx, db, ".")
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(ctx context.Context, db *sql.DB) error {
	if err := configureGoose(); err != nil {
		return err
	}
	return gooseDown(ctx, db, ".")
}

// MigrationStatus logs the applied state of each migration.
func MigrationStatus(ctx context.Context, db *sql.DB) error {
	if err := configureGoose(); err != nil {
		return err
	}
	return gooseStatus(ctx, db, ".")
}
