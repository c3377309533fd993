package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Johnhpure/meet/internal/cache"
	"github.com/Johnhpure/meet/internal/config"
	"github.com/Johnhpure/meet/internal/db"
	httpx "github.com/Johnhpure/meet/internal/http"
	"github.com/Johnhpure/meet/internal/observability"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	// tracing is opt-in via OTEL_EXPORTER_OTLP_ENDPOINT
	if cfg.OTLPEndpoint != "" {
		ctx, cancel := config.WithTimeout(5 * time.Second)
		shutdownTracer, err := observability.InitTracer(ctx, "meet", cfg.OTLPEndpoint)
		cancel()

		if err != nil {
			log.Error("tracer init failed", "err", err)
		} else {
			defer func() {
				ctx, cancel := config.WithTimeout(5 * time.Second)
				defer cancel()
				_ = shutdownTracer(ctx)
			}()
		}
	}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("could not connect to postgres", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	bootCtx, cancelBoot := config.WithTimeout(10 * time.Second)

	err = db.EnsureSchema(bootCtx, pool)

	if err != nil {
		cancelBoot()
		log.Error("schema bootstrap failed", "err", err)
		os.Exit(1)
	}

	err = db.EnsureAdmin(bootCtx, pool, cfg)
	cancelBoot()

	if err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}

	err = os.MkdirAll(cfg.UploadDir, 0o755)

	if err != nil {
		log.Error("could not create upload dir", "err", err, "dir", cfg.UploadDir)
		os.Exit(1)
	}

	// statistics snapshots go to Redis when configured, otherwise to an
	// in-process TTL cache
	var statsCache cache.Cache
	var pingCache func() error

	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.StatsCacheTTL)

		defer redisCache.Close()

		statsCache = redisCache
		pingCache = func() error {
			ctx, cancel := config.WithTimeout(1 * time.Second)
			defer cancel()
			return redisCache.Ping(ctx)
		}
	} else {
		statsCache = cache.NewMemory(cfg.StatsCacheTTL)
	}

	router := httpx.NewRouter(log, cfg, pool, statsCache, pingCache)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
