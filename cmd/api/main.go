package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	celerybridge "github.com/celerybridge/celerybridge-go"
	"github.com/celerybridge/celerybridge-go/internal/api"
	"github.com/celerybridge/celerybridge-go/internal/config"
	"github.com/celerybridge/celerybridge-go/internal/storage"
)

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

	if err := storage.Migrate(cfg.PostgresDSN, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	db, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer db.Close()

	rdb, err := celerybridge.NewBroker(celerybridge.BrokerConfig{URL: cfg.RedisURL, Logger: log})
	if err != nil {
		log.Fatalf("connect redis: %v", err)
	}
	defer rdb.Close()

	bridge := celerybridge.NewClient(rdb,
		celerybridge.WithLogger(log),
		celerybridge.WithDefaultQueue(cfg.CeleryQueue),
		celerybridge.WithWaitDefaults(cfg.ResultPollTimeout, cfg.ResultPollInterval),
	)
	server := api.New(storage.New(db), bridge, log)

	srv := &http.Server{Addr: cfg.APIAddr, Handler: server.Router()}
	go func() {
		log.Infof("api listening on %s", cfg.APIAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("http server: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
}
