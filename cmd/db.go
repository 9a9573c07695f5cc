package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/toplist/internal/shared"
	"github.com/urfave/cli/v3"
)

// openSessionDB opens the sqlite file named by session.path.
func (r *Runner) openSessionDB(cmd *cli.Command) (*sql.DB, error) {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if config.Session.Store != "sqlite" {
		r.logger.Warn("session.store is not sqlite, the server will not use this database", "store", config.Session.Store)
	}
	if config.Session.Path == "" {
		return nil, fmt.Errorf("%w: session.path is required", shared.ErrInvalidConfig)
	}

	r.logger.Info("opening session database", "path", config.Session.Path)
	db, err := shared.NewDatabase(config.Session.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	return db, nil
}

// DBMigrate applies pending session store migrations.
func (r *Runner) DBMigrate(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openSessionDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return r.writePlain("✓ Migrations applied\n")
}

// DBRollback reverts the latest session store migration.
func (r *Runner) DBRollback(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openSessionDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RollbackMigration(db); err != nil {
		return fmt.Errorf("failed to roll back: %w", err)
	}
	return r.writePlain("✓ Rolled back latest migration\n")
}
