package main

import (
	"context"
	"errors"
	"modflow/backend/internal/api/handler"
	"modflow/backend/internal/config"
	"modflow/backend/internal/livefeed"
	"modflow/backend/internal/logging"
	"modflow/backend/internal/moderation"
	"modflow/backend/internal/storage"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const version = "1.0.0"

func setupDependencies(ctx context.Context, cfg *config.Config) (*gorm.DB, *redis.Client) {
	db, err := storage.Open(cfg.DatabaseDSN, logging.Component("gorm"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect PostgreSQL")
	}
	if err := storage.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	if cfg.RedisAddr == "" {
		log.Info().Msg("REDIS_ADDR not set, live feed stays local to this instance")
		return db, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, live feed stays local to this instance")
		rdb.Close()
		return db, nil
	}

	log.Info().Msg("database and redis connections established, migrations complete")
	return db, rdb
}

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogPretty)
	log.Info().Str("version", version).Msg("starting moderation backend")
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, rdb := setupDependencies(ctx, cfg)
	defer storage.Close(db)

	hub := livefeed.NewHub()
	go hub.Run(ctx)

	var publisher moderation.Publisher = hub
	if rdb != nil {
		defer rdb.Close()
		publisher = livefeed.NewRedisPublisher(rdb, config.EventChannel)
		go func() {
			if err := livefeed.Subscribe(ctx, rdb, config.EventChannel, hub); err != nil {
				log.Error().Err(err).Msg("live feed relay stopped")
			}
		}()
	}

	svc := moderation.NewService(storage.NewStorageService(db), moderation.WithPublisher(publisher))

	r := gin.New()
	r.Use(gin.Recovery(), logging.GinLogger())
	handler.NewHandler(svc, hub, cfg.JWTSecret, cfg.MaxPageLimit, version).Register(r)

	server := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
