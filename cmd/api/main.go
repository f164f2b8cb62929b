// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/carterperez-dev/templates/course-backend/internal/admin"
	"github.com/carterperez-dev/templates/course-backend/internal/auth"
	"github.com/carterperez-dev/templates/course-backend/internal/config"
	"github.com/carterperez-dev/templates/course-backend/internal/core"
	"github.com/carterperez-dev/templates/course-backend/internal/course"
	"github.com/carterperez-dev/templates/course-backend/internal/enrollment"
	"github.com/carterperez-dev/templates/course-backend/internal/health"
	"github.com/carterperez-dev/templates/course-backend/internal/middleware"
	"github.com/carterperez-dev/templates/course-backend/internal/seed"
	"github.com/carterperez-dev/templates/course-backend/internal/server"
	"github.com/carterperez-dev/templates/course-backend/internal/storage"
	"github.com/carterperez-dev/templates/course-backend/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		logger.Info("database schema applied")
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redis.Enabled() {
		logger.Info("redis connected", "pool_size", cfg.Redis.PoolSize)
	} else {
		logger.Info("redis not configured, catalog cache disabled")
	}

	hasher := core.Argon2Hasher{}

	if _, err := seed.New(db.DB, hasher, cfg.Seed, logger).Run(ctx); err != nil {
		return err
	}

	var metrics *core.Metrics
	if cfg.Metrics.Enabled {
		metrics = core.NewMetrics(prometheus.NewRegistry())
	}

	store, localStore, err := storage.New(ctx, cfg.Storage, logger, metrics)
	if err != nil {
		return err
	}

	catalogCache := course.NoopCatalogCache()
	if cfg.CacheEnabled() && redis.Enabled() {
		catalogCache = course.NewRedisCatalogCache(
			redis.Client,
			cfg.Cache.TTL,
			logger,
			metrics,
		)
	}

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo, hasher)
	userHandler := user.NewHandler(userSvc)

	authRepo := auth.NewRepository(db.DB)
	authSvc := auth.NewService(authRepo, userSvc, hasher, cfg.Auth.ResetTokenTTL)
	authHandler := auth.NewHandler(authSvc)

	enrollmentRepo := enrollment.NewRepository(db.DB)

	courseRepo := course.NewRepository(db.DB)
	courseSvc := course.NewService(courseRepo, enrollmentRepo, catalogCache, store)
	courseHandler := course.NewHandler(courseSvc, cfg.Upload.MaxPDFBytes)

	enrollmentSvc := enrollment.NewService(enrollmentRepo, courseSvc)
	enrollmentHandler := enrollment.NewHandler(enrollmentSvc)

	var redisChecker health.Checker
	adminCfg := admin.HandlerConfig{
		Stats:   admin.NewRepository(db.DB),
		DBStats: db.Stats,
		DBPing:  db.Ping,
	}
	if redis.Enabled() {
		redisChecker = redis
		adminCfg.RedisStats = redis.PoolStats
		adminCfg.RedisPing = redis.Ping
	}

	healthHandler := health.NewHandler(db, redisChecker)
	adminHandler := admin.NewHandler(adminCfg)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics(metrics))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	if metrics != nil {
		router.Handle(cfg.Metrics.Path, metrics.Handler())
	}
	router.Handle(localStore.URLPrefix()+"/*", localStore.Handler())

	authenticator := middleware.Authenticator(authSvc)
	optionalAuth := middleware.OptionalAuth(authSvc)

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r)
		userHandler.RegisterRoutes(r, authenticator)
		courseHandler.RegisterRoutes(r, authenticator, optionalAuth)
		enrollmentHandler.RegisterRoutes(r, authenticator)

		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticator)
			r.Use(middleware.RequireAdmin)

			userHandler.RegisterAdminRoutes(r)
			authHandler.RegisterAdminRoutes(r)
			adminHandler.RegisterRoutes(r)
		})
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
