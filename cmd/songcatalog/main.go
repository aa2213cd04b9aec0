package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"songcatalog/internal/logging"
	"songcatalog/internal/notify"
	"songcatalog/internal/store"
	"songcatalog/internal/ws"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fallback := logging.New(logging.Config{})
		fallback.Fatal().Err(err).Msg("load configuration")
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logging.SetGlobal(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := openMongo(ctx, cfg.MongoURI)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("close MongoDB connection")
		}
	}()
	logger.Info().Msg("MongoDB connected")

	dataStore := store.NewMongo(client.Database(cfg.MongoDatabase))

	if cfg.SeedDemoData {
		if err := seedDemoData(ctx, dataStore); err != nil {
			logger.Fatal().Err(err).Msg("seed demo data")
		}
	}

	hub := ws.NewHub(originChecker(cfg.AllowedOrigins))

	var events notify.Broadcaster
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("parse REDIS_URL")
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()

		bridge := notify.NewRedisBroadcaster(rdb, "")
		go bridge.Forward(ctx, hub)
		events = bridge
		logger.Info().Msg("Redis event fan-out enabled")
	} else {
		events = notify.NewHubBroadcaster(hub)
	}

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: newHTTPHandler(cfg, dataStore, hub, events),
	}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown")
	}
	hub.Close()
}
