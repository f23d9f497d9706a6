package router

import (
	"time"

	"github.com/cabpool/cabpool-backend/config"
	_ "github.com/cabpool/cabpool-backend/docs" // registers the swagger document
	"github.com/cabpool/cabpool-backend/handlers"
	"github.com/cabpool/cabpool-backend/logger"
	"github.com/cabpool/cabpool-backend/middleware"
	"github.com/cabpool/cabpool-backend/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Dependencies struct holds all dependencies required for setting up routes.
type Dependencies struct {
	Config              *config.Config
	RegistrationHandler *handlers.RegistrationHandler
	FeedbackHandler     *handlers.FeedbackHandler
	StatsHandler        *handlers.StatsHandler
	HealthHandler       *handlers.HealthHandler
	HTTPMetrics         *middleware.HTTPMetrics
	// Gatherer backs /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
	// RedisClient is only required when rate limiting is enabled.
	RedisClient redis.UniversalClient
	Logger      *zap.SugaredLogger
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()

	log := deps.Logger
	if log == nil {
		log = logger.GetLogger()
	}
	if err := r.SetTrustedProxies(deps.Config.Server.TrustedProxies); err != nil {
		log.Warnw("Invalid trusted proxies, trusting none", "error", err)
		_ = r.SetTrustedProxies(nil)
	}

	// Global Middleware. Access log and metrics wrap the error handler so they
	// observe the final status code; CORS runs inside it so rejections render as JSON.
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.AccessLog(log.Desugar()))
	if deps.HTTPMetrics != nil {
		r.Use(deps.HTTPMetrics.Handler())
	}
	r.Use(middleware.SecurityHeaders(deps.Config.IsProduction()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))
	r.Use(middleware.Recovery())
	r.Use(middleware.BodyLimit(deps.Config.Server.MaxBodyBytes))

	r.NoRoute(middleware.NotFound)

	// Health and Metrics Routes
	r.GET("/health", deps.HealthHandler.Health)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	if !deps.Config.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group("/api")
	{
		writes := api.Group("")
		if limiter := rateLimiter(deps, log); limiter != nil {
			writes.Use(limiter)
		}
		writes.POST("/register", deps.RegistrationHandler.Register)
		writes.POST("/feedback", deps.FeedbackHandler.SubmitFeedback)

		api.GET("/feedback", deps.FeedbackHandler.ListFeedback)
		api.GET("/stats", deps.StatsHandler.GetStats)
	}

	return r
}

func rateLimiter(deps Dependencies, log *zap.SugaredLogger) gin.HandlerFunc {
	rl := deps.Config.RateLimit
	if !rl.Enabled {
		return nil
	}
	if deps.RedisClient == nil {
		log.Warn("Rate limiting enabled without a Redis client; submissions are not limited")
		return nil
	}
	return middleware.RateLimiter(services.NewRateLimitService(deps.RedisClient), rl.RequestsPerWindow, time.Duration(rl.WindowSeconds)*time.Second)
}
