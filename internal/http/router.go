package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/Johnhpure/meet/internal/auth"
	"github.com/Johnhpure/meet/internal/cache"
	"github.com/Johnhpure/meet/internal/config"
	"github.com/Johnhpure/meet/internal/http/handlers"
	"github.com/Johnhpure/meet/internal/http/middlewares"
	"github.com/Johnhpure/meet/internal/observability"
	"github.com/Johnhpure/meet/internal/repo/postgres"
	"github.com/Johnhpure/meet/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// NewRouter wires repositories, the service layer and handlers onto one gin
// engine. Everything is constructed here and injected; no package-level
// state.
func NewRouter(
	log *slog.Logger,
	cfg config.Config,
	pool *pgxpool.Pool,
	statsCache cache.Cache,
	pingCache func() error,
) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(registry)

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(prom.GinHandleMiddleware())
	r.Use(otelgin.Middleware("meet"))

	// health + metrics
	pingDB := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(pingDB, pingCache)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// wire up repositories and the service layer
	registrationsRepo := postgres.NewRegistrationsRepo(pool, prom)
	adminsRepo := postgres.NewAdminsRepo(pool)
	registrationSvc := service.NewRegistrationService(registrationsRepo, statsCache, log)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	authMw := middlewares.NewAuthMiddleware(jwtManager)

	registrationsHandler := handlers.NewRegistrationsHandler(registrationSvc, log)
	uploadHandler := handlers.NewUploadHandler(cfg.UploadDir, cfg.MaxUploadBytes, prom, log)
	authHandler := handlers.NewAuthHandler(adminsRepo, jwtManager, log)

	// uploaded images served back as static assets
	r.Static("/uploads", cfg.UploadDir)

	publicLimiter := middlewares.NewRateLimiter(20, time.Minute)
	loginLimiter := middlewares.NewRateLimiter(10, time.Minute)

	// public surface
	api := r.Group("/api")
	api.POST("/registrations", publicLimiter.Middleware(), middlewares.RequireJSON(), registrationsHandler.Create)
	api.POST("/upload", publicLimiter.Middleware(), uploadHandler.Upload)

	// admin surface
	adminGroup := api.Group("/admin")
	adminGroup.POST("/login", loginLimiter.Middleware(), middlewares.RequireJSON(), authHandler.Login)

	protected := adminGroup.Group("")
	protected.Use(authMw.RequireAdmin())
	protected.GET("/registrations", registrationsHandler.List)
	protected.GET("/registrations/:id", registrationsHandler.Detail)
	protected.PUT("/registrations/:id", middlewares.RequireJSON(), registrationsHandler.Update)
	protected.DELETE("/registrations/:id", registrationsHandler.Delete)
	protected.GET("/statistics", registrationsHandler.Statistics)

	return r
}
