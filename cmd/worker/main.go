package main

import (
	"context"
	"errors"
	"log"

	"go.uber.org/zap"

	"scoresheet/internal/config"
	"scoresheet/internal/db"
	"scoresheet/internal/logging"
	"scoresheet/internal/storage"
	"scoresheet/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("worker stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	if cfg.RedisAddr == "" {
		return errors.New("REDIS_ADDR is required")
	}
	if !cfg.Mirror.Enabled() {
		return errors.New("MINIO_ENDPOINT and MINIO_BUCKET are required")
	}

	// Start services
	s3c, err := storage.New(context.Background(), cfg.Mirror, logger)
	if err != nil {
		return err
	}
	srv := &worker.Server{Store: s3c, Log: logger}
	if cfg.DatabaseURL != "" {
		dbase, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer dbase.Close()
		srv.Ledger = db.NewLedger(dbase)
	}

	logger.Info("worker starting", zap.String("redis", cfg.RedisAddr), zap.String("bucket", cfg.Mirror.Bucket))
	return worker.Run(cfg.RedisAddr, srv)
}
