package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	celerybridge "github.com/celerybridge/celerybridge-go"
	"github.com/celerybridge/celerybridge-go/internal/config"
	"github.com/celerybridge/celerybridge-go/internal/daemon"
	"github.com/celerybridge/celerybridge-go/internal/storage"
)

// The poller is a fallback for environments where database webhooks cannot
// reach the API: it scans for pending submissions and dispatches scrape tasks
// for any that have none in flight.
func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	log := logger.Sugar()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer db.Close()

	rdb, err := celerybridge.NewBroker(celerybridge.BrokerConfig{URL: cfg.RedisURL, Logger: log})
	if err != nil {
		log.Fatalf("connect redis: %v", err)
	}

	bridge := celerybridge.NewClient(rdb,
		celerybridge.WithLogger(log),
		celerybridge.WithDefaultQueue(cfg.CeleryQueue),
		celerybridge.WithWaitDefaults(cfg.ResultPollTimeout, cfg.ResultPollInterval),
	)

	d := daemon.New(storage.New(db), bridge, daemon.Config{
		Interval: cfg.PollInterval,
		Batch:    cfg.PollBatch,
		Logger:   log,
	})
	d.Run(ctx)

	// Broker connection closes before exit so in-flight commands flush.
	if err := rdb.Close(); err != nil {
		log.Errorf("close redis: %v", err)
	}
	log.Infof("submission poller exited")
}
