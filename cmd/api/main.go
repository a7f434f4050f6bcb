package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanwahyu/fiscaliza/internal/bootstrap"
	"github.com/bryanwahyu/fiscaliza/internal/config"
	"github.com/bryanwahyu/fiscaliza/internal/infra/httpserver"
	"github.com/bryanwahyu/fiscaliza/internal/logging"
	"github.com/bryanwahyu/fiscaliza/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Pretty, os.Stderr)

	ctx := context.Background()

	stores, err := bootstrap.OpenStores(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store init error")
	}
	defer stores.Close()

	archive, err := bootstrap.NewArchive(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("archive init error")
	}

	metrics := middleware.NewMetrics()
	svc, err := bootstrap.NewService(cfg, stores, log, metrics)
	if err != nil {
		log.Fatal().Err(err).Msg("service init error")
	}
	svc.Archive = archive
	if svc.Extractor == nil {
		log.Warn().Str("provider", cfg.Extractor.Provider).Msg("no extractor configured; only text input is accepted")
	}

	keys, _ := cfg.APIKeyMap()
	limiter := middleware.NewRateLimiter(cfg.Server.RateLimit.Capacity, cfg.Server.RateLimit.RefillRate)
	defer limiter.Stop()

	handler := httpserver.NewRouter(svc, httpserver.Options{
		Log:            log,
		Metrics:        metrics,
		RateLimiter:    limiter,
		APIKeys:        keys,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxUploadBytes: int64(cfg.Server.MaxUploadMB) << 20,
		Checkers:       bootstrap.Checkers(cfg, stores, svc),
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Extractor.Timeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Info().Str("addr", addr).Str("store", cfg.Database.Driver).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	// alerts yang masih jalan
	svc.Wait()
}
