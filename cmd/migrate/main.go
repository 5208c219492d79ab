package main

import (
	"context"
	"flag"

	"github.com/sirupsen/logrus"

	"lovmeds/internal/config"
	"lovmeds/internal/db"
	"lovmeds/internal/logging"
	"lovmeds/internal/migrate"
)

func main() {
	rollback := flag.Bool("rollback", false, "revert the most recent migration instead of applying")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, db.PoolOptions{MaxConns: cfg.DBMaxConns, Logger: logger})
	if err != nil {
		logger.WithError(err).Fatal("connect db")
	}
	defer pool.Close()

	if *rollback {
		if err := migrate.Rollback(ctx, pool, logger); err != nil {
			logger.WithError(err).Fatal("rollback migration")
		}
		return
	}
	if err := migrate.Apply(ctx, pool, logger); err != nil {
		logger.WithError(err).Fatal("apply migrations")
	}
}
