package services

import (
	"context"
	"testing"

	"github.com/cabpool/cabpool-backend/logger"
	"github.com/cabpool/cabpool-backend/types"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) FindRegistrationByEmail(ctx context.Context, email string) (*types.Registration, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Registration), args.Error(1)
}

func (m *mockStore) CreateRegistration(ctx context.Context, reg *types.Registration) error {
	args := m.Called(ctx, reg)
	return args.Error(0)
}

func (m *mockStore) CountRegistrations(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) CreateFeedback(ctx context.Context, fb *types.Feedback) error {
	args := m.Called(ctx, fb)
	return args.Error(0)
}

func (m *mockStore) ListRecentFeedback(ctx context.Context, limit int) ([]types.Feedback, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Feedback), args.Error(1)
}

func (m *mockStore) CountFeedback(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockStore) Close() error {
	return nil
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendWelcomeEmail(ctx context.Context, reg *types.Registration) error {
	args := m.Called(ctx, reg)
	return args.Error(0)
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	return m.GetCounter().GetValue()
}
