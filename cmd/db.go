package cmd

import (
	"context"
	"database/sql"

	"github.com/vibast-solutions/ms-go-nutrition/config"

	_ "github.com/go-sql-driver/mysql"
)

// openDB opens the MySQL pool with the configured limits and verifies it is
// reachable.
func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.MySQL.ConnMaxIdleTime)

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
