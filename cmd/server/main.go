package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zlovtnik/nfe-identifications/internal/identification/cache"
	"github.com/zlovtnik/nfe-identifications/internal/identification/handler"
	"github.com/zlovtnik/nfe-identifications/internal/identification/metrics"
	"github.com/zlovtnik/nfe-identifications/internal/identification/service"
	"github.com/zlovtnik/nfe-identifications/internal/identification/store"
	"github.com/zlovtnik/nfe-identifications/internal/platform/config"
	"github.com/zlovtnik/nfe-identifications/internal/platform/httpserver"
	"github.com/zlovtnik/nfe-identifications/internal/platform/logger"
	"github.com/zlovtnik/nfe-identifications/internal/platform/postgres"
	platformredis "github.com/zlovtnik/nfe-identifications/internal/platform/redis"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		panic("configuration error: " + err.Error())
	}
	log := logger.New(cfg.LogLevel)

	ctx := context.Background()

	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	var cacheStore service.CacheStore
	if redisClient != nil {
		cacheStore = cache.New(redisClient.Client)
		defer redisClient.Close()
	} else {
		log.Warn("REDIS_URL not set, running without cache")
	}

	m := metrics.New()
	repo := service.NewRepository(store.NewPostgres(db), cacheStore, cfg.CacheTTL, log, m)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)

	handler.New(repo, log).Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"postgres": "ok", "redis": "ok"}
		code := http.StatusOK
		if err := postgres.Health(r.Context(), db); err != nil {
			status["postgres"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		if redisClient == nil {
			status["redis"] = "disabled"
		} else if err := redisClient.Health(r.Context()); err != nil {
			status["redis"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting nfe-identifications server", "addr", cfg.Addr, "cache_ttl", cfg.CacheTTL.String())

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
