// @title        CabPool API
// @version      1.0
// @description  Registration and feedback API behind the CabPool landing page.
// @BasePath     /
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cabpool/cabpool-backend/config"
	"github.com/cabpool/cabpool-backend/db"
	"github.com/cabpool/cabpool-backend/handlers"
	"github.com/cabpool/cabpool-backend/internal/store"
	"github.com/cabpool/cabpool-backend/internal/store/postgres"
	"github.com/cabpool/cabpool-backend/internal/store/sqlite"
	"github.com/cabpool/cabpool-backend/internal/store/supabase"
	"github.com/cabpool/cabpool-backend/logger"
	"github.com/cabpool/cabpool-backend/middleware"
	"github.com/cabpool/cabpool-backend/router"
	"github.com/cabpool/cabpool-backend/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Initialize logger
	logger.InitLogger()
	log := logger.GetLogger()
	defer func() { _ = logger.Close() }()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if redacted, err := cfg.RedactedYAML(); err == nil {
		log.Debugf("Effective configuration:\n%s", redacted)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	dataStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.Store.Driver, err)
	}
	defer func() {
		if err := dataStore.Close(); err != nil {
			log.Warnw("Failed to close store", "error", err)
		}
	}()

	var redisClient redis.UniversalClient
	if cfg.RateLimit.Enabled {
		redisClient = newRedisClient(cfg)
		defer func() { _ = redisClient.Close() }()
	}

	// Services
	submissionMetrics := services.NewSubmissionMetrics(prometheus.DefaultRegisterer)
	var notifier services.WelcomeNotifier
	if cfg.Email.Enabled {
		notifier = services.NewEmailService(cfg.Email)
	}
	registrationService := services.NewRegistrationService(dataStore, notifier, submissionMetrics)
	feedbackService := services.NewFeedbackService(dataStore, cfg.Feedback, submissionMetrics)
	statsService := services.NewStatsService(dataStore)
	healthService := services.NewHealthService(dataStore, redisClient, cfg.Server.Version)

	r := router.SetupRouter(router.Dependencies{
		Config:              cfg,
		RegistrationHandler: handlers.NewRegistrationHandler(registrationService),
		FeedbackHandler:     handlers.NewFeedbackHandler(feedbackService),
		StatsHandler:        handlers.NewStatsHandler(statsService),
		HealthHandler:       handlers.NewHealthHandler(healthService),
		HTTPMetrics:         middleware.NewHTTPMetrics(prometheus.DefaultRegisterer),
		Gatherer:            prometheus.DefaultGatherer,
		RedisClient:         redisClient,
		Logger:              log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Infow("Starting server",
			"port", cfg.Server.Port,
			"environment", cfg.Server.Environment,
			"store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Infow("Shutting down server", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server forced to shutdown", "error", err)
	}
	log.Info("Server exited")
}

// openStore builds the persistence backend selected by STORE_DRIVER.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		if cfg.Store.RunMigrations {
			if err := db.RunMigrations(cfg.Database.URL()); err != nil {
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.Database, cfg.IsProduction())
		if err != nil {
			return nil, fmt.Errorf("connect to %s: %w", logger.MaskConnectionString(cfg.Database.URL()), err)
		}
		return postgres.NewStore(pool), nil
	case config.DriverSupabase:
		return supabase.NewStore(cfg.Supabase.URL, cfg.Supabase.Key())
	case config.DriverSQLite:
		return sqlite.Open(cfg.SQLite.Path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func newRedisClient(cfg *config.Config) *redis.Client {
	redisOptions := &redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	if cfg.Redis.UseTLS || cfg.IsProduction() {
		redisOptions.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}
	return redis.NewClient(redisOptions)
}
