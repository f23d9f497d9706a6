package handlers

import (
	"context"

	"github.com/cabpool/cabpool-backend/logger"
	"github.com/cabpool/cabpool-backend/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

func init() {
	logger.IsTest = true
	gin.SetMode(gin.TestMode)
}

// MockRegistrationService implements RegistrationServiceInterface for handler tests.
type MockRegistrationService struct {
	mock.Mock
}

func (m *MockRegistrationService) Register(ctx context.Context, req types.RegistrationCreate) (*types.RegistrationSummary, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RegistrationSummary), args.Error(1)
}

// MockFeedbackService implements FeedbackServiceInterface for handler tests.
type MockFeedbackService struct {
	mock.Mock
}

func (m *MockFeedbackService) Submit(ctx context.Context, req types.FeedbackCreate) (*types.FeedbackSummary, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FeedbackSummary), args.Error(1)
}

func (m *MockFeedbackService) ListRecent(ctx context.Context, rawLimit string) ([]types.Feedback, error) {
	args := m.Called(ctx, rawLimit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Feedback), args.Error(1)
}

type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) Stats(ctx context.Context) (*types.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Stats), args.Error(1)
}

type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) Health() types.Health {
	args := m.Called()
	return args.Get(0).(types.Health)
}

func (m *MockHealthService) Readiness(ctx context.Context) types.Readiness {
	args := m.Called(ctx)
	return args.Get(0).(types.Readiness)
}
