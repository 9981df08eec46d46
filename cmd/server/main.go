package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Djidro/Royalpos/internal/config"
	"github.com/Djidro/Royalpos/internal/infra"
	"github.com/Djidro/Royalpos/internal/router"
	"github.com/Djidro/Royalpos/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger. Dev: pretty, prod: JSON.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One breaker guards every call to the PocketBase mirror.
	mirrorCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())

	r, handlers := router.New(cfg, db, rdb, mirrorCB)

	// Async machinery: outbox consumers, the retry scheduler, and the pull
	// loop that merges remote records back in. All skipped when no mirror
	// is configured; the register is fully usable offline.
	worker.StartWorkerPool(ctx, rdb, handlers, cfg.WorkerPoolSize)
	if cfg.MirrorEnabled() {
		worker.StartRetryCron(ctx, rdb, mirrorCB)
		worker.StartSyncPull(ctx, handlers.Sync, time.Duration(cfg.SyncPullIntervalSec)*time.Second)
	} else {
		log.Info().Msg("mirror not configured, running local-only")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("%s POS backend listening on :%d", cfg.BusinessName, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
