package services

import (
	"context"
	"time"

	"github.com/cabpool/cabpool-backend/logger"
	"github.com/cabpool/cabpool-backend/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const HealthMessage = "CabPool API is running"

// Pinger is anything whose reachability can be checked, such as store.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthService struct {
	store       Pinger
	redisClient redis.UniversalClient
	version     string
	startTime   time.Time
	log         *zap.SugaredLogger
}

// NewHealthService creates the service. redisClient is nil when rate limiting is off.
func NewHealthService(store Pinger, redisClient redis.UniversalClient, version string) *HealthService {
	return &HealthService{
		store:       store,
		redisClient: redisClient,
		version:     version,
		startTime:   time.Now(),
		log:         logger.GetLogger(),
	}
}

// Health never touches a dependency.
func (h *HealthService) Health() types.Health {
	return types.Health{
		Status:    types.HealthStatusOK,
		Message:   HealthMessage,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Readiness checks every configured dependency. Redis only degrades rate limiting,
// so a Redis failure is reported but does not mark the service DOWN.
func (h *HealthService) Readiness(ctx context.Context) types.Readiness {
	components := map[string]types.HealthComponent{
		"store": h.checkStore(ctx),
	}
	if h.redisClient != nil {
		components["redis"] = h.checkRedis(ctx)
	}

	return types.Readiness{
		Status:     components["store"].Status,
		Components: components,
		Version:    h.version,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
	}
}

func (h *HealthService) checkStore(ctx context.Context) types.HealthComponent {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Errorw("Store health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: "Store connection failed",
		}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}

func (h *HealthService) checkRedis(ctx context.Context) types.HealthComponent {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		h.log.Errorw("Redis health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: "Redis connection failed",
		}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}
