package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/staycal/internal/config"
	"github.com/example/staycal/internal/db"
	"github.com/example/staycal/internal/logging"
	"github.com/example/staycal/internal/migrate"
)

// env is what most commands need: config, a logger and usually the database.
type env struct {
	cfg config.Config
	log *zap.Logger
	db  *db.DB
}

func loadEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log}, nil
}

// openDB connects and, when migrateUp is set, applies pending migrations.
func (e *env) openDB(ctx context.Context, migrateUp bool) error {
	d, err := db.Open(ctx, e.cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := d.Ping(ctx); err != nil {
		d.Close()
		return fmt.Errorf("db ping: %w", err)
	}
	if migrateUp {
		if err := migrate.Up(ctx, d, e.log); err != nil {
			d.Close()
			return err
		}
	}
	e.db = d
	return nil
}

func (e *env) Close() {
	if e.db != nil {
		e.db.Close()
	}
	_ = e.log.Sync()
}
