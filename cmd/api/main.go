package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rural-health-core/internal/adapters/messaging/kafkabus"
	"rural-health-core/internal/bootstrap"
	"rural-health-core/internal/platform/config"
	"rural-health-core/internal/router"
)

// @title Rural Health Core API
// @version 1.0
// @description Recordatorios de adherencia, triage de síntomas y estadísticas por aldea.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		bootstrap.NewLogger(config.Config{}).Error("config error", map[string]any{"err": err})
		os.Exit(1)
	}
	log := bootstrap.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	verifier, err := bootstrap.NewAuthVerifier(cfg, log)
	if err != nil {
		log.Error("auth verifier", map[string]any{"err": err})
		os.Exit(1)
	}

	store, err := bootstrap.OpenStorage(ctx, cfg, log)
	if err != nil {
		log.Error("storage", map[string]any{"err": err})
		os.Exit(1)
	}

	opts := router.Options{AuthVerifier: verifier, Logger: log}
	if store != nil {
		defer store.Close()
		opts.DB = store.DB
		opts.VillageStats = store.VillageStats
	}

	if cfg.StatsTransport == config.StatsTransportKafka {
		pub := kafkabus.NewStatsPublisher(kafkabus.NewWriter(cfg.KafkaBrokers, cfg.StatsTopic))
		defer pub.Close()
		opts.StatsRecorder = pub
		log.Info("village stats published to kafka", map[string]any{"topic": cfg.StatsTopic})
	}

	handler, err := router.NewRouter(opts)
	if err != nil {
		log.Error("router", map[string]any{"err": err})
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("starting server", map[string]any{"addr": cfg.Addr(), "stats_transport": cfg.StatsTransport})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", map[string]any{"err": err})
		os.Exit(1)
	}
	log.Info("server stopped", nil)
}

