package server

import (
	"context"
	"fmt"
	"log/slog"

	"agro-collector/confs"
	"agro-collector/db"
	"agro-collector/history"
)

// Serve connects the backing stores described by cfg and runs the HTTP server until
// ctx is cancelled.
func Serve(ctx context.Context, cfg *confs.Config, logger *slog.Logger) error {
	database, err := db.Connect(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to DB: %w", err)
	}
	defer database.Close()

	var opts []Option
	if store := history.FromConfig(cfg.Influx); store != nil {
		defer store.Close()
		logger.Info("reading history enabled", "influx_url", cfg.Influx.URL, "bucket", cfg.Influx.Bucket)
		opts = append(opts, WithHistory(store))
	} else {
		logger.Info("reading history disabled; set INFLUX_URL, INFLUX_TOKEN, INFLUX_ORG and INFLUX_BUCKET to enable")
	}

	return NewServer(cfg, database, logger, opts...).Start(ctx)
}
