package handlers

import (
	"context"

	"github.com/cabpool/cabpool-backend/types"
)

// RegistrationServiceInterface defines the registration service methods needed by handlers
type RegistrationServiceInterface interface {
	Register(ctx context.Context, req types.RegistrationCreate) (*types.RegistrationSummary, error)
}

// FeedbackServiceInterface defines the feedback service methods needed by handlers
type FeedbackServiceInterface interface {
	Submit(ctx context.Context, req types.FeedbackCreate) (*types.FeedbackSummary, error)
	ListRecent(ctx context.Context, rawLimit string) ([]types.Feedback, error)
}

type StatsServiceInterface interface {
	Stats(ctx context.Context) (*types.Stats, error)
}

type HealthServiceInterface interface {
	Health() types.Health
	Readiness(ctx context.Context) types.Readiness
}
