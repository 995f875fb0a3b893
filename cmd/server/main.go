package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"linkhub/internal/config"
	httpHandler "linkhub/internal/handler/http"
	"linkhub/internal/ratelimit"
	"linkhub/internal/repository/postgres"
	redisrepo "linkhub/internal/repository/redis"
	"linkhub/internal/service"
	"linkhub/internal/upload"
	"linkhub/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.App.LogLevel)
	appLogger.Info("Starting LinkHub",
		"environment", cfg.App.Environment,
		"port", cfg.Server.Port,
	)

	ctx := context.Background()
	db, err := postgres.InitDB(
		ctx,
		cfg.Database.DatabaseDSN(),
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
		cfg.Database.ConnMaxLifetime,
	)
	if err != nil {
		appLogger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()
	appLogger.Info("Database connection established")

	if err := postgres.Migrate(ctx, db); err != nil {
		appLogger.Error("Failed to run migrations", "error", err)
		log.Fatalf("Migration failed: %v", err)
	}
	appLogger.Info("Schema migrations applied")

	redisClient, err := redisrepo.InitRedis(
		cfg.Redis.RedisAddr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if err != nil {
		appLogger.Error("Failed to connect to redis", "error", err)
		log.Fatalf("Redis connection failed: %v", err)
	}
	defer redisClient.Close()
	appLogger.Info("Redis connection established")

	pageCache := redisrepo.NewCache(redisClient, cfg.Redis.CacheTTL)

	profileRepo := postgres.NewProfileRepository(db)
	linkRepo := postgres.NewLinkRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	badgeRepo := postgres.NewBadgeRepository(db)

	profileService := service.NewProfileService(profileRepo, linkRepo, badgeRepo, pageCache)
	linkService := service.NewLinkService(linkRepo, profileRepo, pageCache)
	analyticsService := service.NewAnalyticsService(eventRepo, profileRepo)
	badgeService := service.NewBadgeService(badgeRepo, profileRepo)

	uploader, err := upload.NewStorage(cfg.Upload.Dir, cfg.Server.BaseURL+"/uploads")
	if err != nil {
		appLogger.Error("Failed to initialize upload storage", "error", err)
		log.Fatalf("Upload storage init failed: %v", err)
	}

	handler := httpHandler.NewHandler(
		profileService,
		linkService,
		analyticsService,
		badgeService,
		uploader,
		appLogger.Logger,
	)

	mux := http.NewServeMux()
	handler.Routes(mux)

	// Uploaded images are served straight off disk
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(uploader.Dir()))))

	if cfg.App.EnableMetrics {
		mux.Handle("GET /metrics", promhttp.Handler())
		appLogger.Info("Metrics endpoint enabled", "path", "/metrics")
	}

	middlewares := []func(http.Handler) http.Handler{
		httpHandler.RecoveryMiddleware(appLogger.Logger),
		httpHandler.LoggingMiddleware(appLogger.Logger),
		httpHandler.RequestIDMiddleware,
		httpHandler.CORSMiddleware,
		httpHandler.MetricsMiddleware,
	}

	if cfg.App.RateLimitEnabled {
		limiter := ratelimit.NewFixedWindowLimiter(
			redisClient,
			cfg.App.RateLimitPerMinute,
			time.Minute,
		)
		middlewares = append(middlewares, httpHandler.RateLimitMiddleware(limiter))
		appLogger.Info("Rate limiting enabled", "requests_per_minute", cfg.App.RateLimitPerMinute)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      httpHandler.Chain(middlewares...)(mux),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Block until SIGINT/SIGTERM, then drain in-flight requests
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Forced shutdown", "error", err)
	}

	appLogger.Info("Server stopped")
}
