package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sanctionwatch/internal/entity/cache"
	entityhandler "sanctionwatch/internal/entity/handler"
	entitymetrics "sanctionwatch/internal/entity/metrics"
	entityservice "sanctionwatch/internal/entity/service"
	entitystore "sanctionwatch/internal/entity/store"
	"sanctionwatch/internal/platform/config"
	"sanctionwatch/internal/platform/httpserver"
	"sanctionwatch/internal/platform/logger"
	"sanctionwatch/internal/platform/postgres"
	platformredis "sanctionwatch/internal/platform/redis"
	"sanctionwatch/internal/sync/adapter"
	"sanctionwatch/internal/sync/events"
	synchandler "sanctionwatch/internal/sync/handler"
	"sanctionwatch/internal/sync/history"
	syncmetrics "sanctionwatch/internal/sync/metrics"
	syncservice "sanctionwatch/internal/sync/service"
	httptransport "sanctionwatch/internal/transport/http"
)

// main wires dependencies and owns the server lifecycle. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		log.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.Migrate(db); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	entityStore := entitystore.NewPostgres(db, cfg.SyncBatchSize)
	historyStore := history.NewPostgres(db)

	entityOpts := []entityservice.Option{entityservice.WithMetrics(entitymetrics.New())}
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		entityOpts = append(entityOpts, entityservice.WithCache(
			cache.NewRedisStatsCache(redisClient.Client, cfg.StatsCacheTTL)))
	}
	entitySvc := entityservice.New(entityStore, log, entityOpts...)

	adapters := []adapter.Adapter{
		adapter.NewOFAC(adapter.NewHTTPFetcher(cfg.OFACFeedURL, cfg.FetchTimeout), log),
		adapter.NewUN(adapter.NewHTTPFetcher(cfg.UNFeedURL, cfg.FetchTimeout), log),
		adapter.NewEU(adapter.NewFixtureFetcher(adapter.EUFixture), log),
		adapter.NewInterpol(adapter.NewFixtureFetcher(adapter.InterpolFixture), log),
	}

	syncOpts := []syncservice.Option{
		syncservice.WithMetrics(syncmetrics.New()),
		syncservice.WithStatsInvalidator(entitySvc),
	}
	if len(cfg.KafkaBrokers) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		publisher, err := events.New(ctx, cfg.KafkaBrokers, cfg.KafkaTopic)
		cancel()
		if err != nil {
			log.Error("kafka unavailable", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		syncOpts = append(syncOpts, syncservice.WithPublisher(publisher))
	}
	syncSvc := syncservice.New(adapters, entityStore, historyStore, newSyncPostgresTx(db), log, syncOpts...)

	router := httptransport.NewRouter(httptransport.Deps{
		Entities: entityhandler.New(entitySvc, log),
		Sync:     synchandler.New(syncSvc, historyStore, log),
		Logger:   log,
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting sanctionwatch", "addr", cfg.Addr, "sources", syncSvc.Sources())

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
