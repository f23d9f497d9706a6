package services

import (
	"context"
	"time"

	apperrors "github.com/cabpool/cabpool-backend/errors"
	"github.com/cabpool/cabpool-backend/internal/store"
	"github.com/cabpool/cabpool-backend/types"
)

const MsgStatsFailed = "Failed to fetch stats"

// StatsCounter is the part of store.Store the stats endpoint reads.
type StatsCounter interface {
	CountRegistrations(ctx context.Context) (int64, error)
	CountFeedback(ctx context.Context) (int64, error)
}

var _ StatsCounter = (store.Store)(nil)

type StatsService struct {
	counter StatsCounter
	now     func() time.Time
}

func NewStatsService(counter StatsCounter) *StatsService {
	return &StatsService{counter: counter, now: time.Now}
}

// Stats returns exact row counts. Either count failing fails the whole call.
func (s *StatsService) Stats(ctx context.Context) (*types.Stats, error) {
	registrations, err := s.counter.CountRegistrations(ctx)
	if err != nil {
		return nil, apperrors.StorageFailed(MsgStatsFailed, err)
	}
	feedback, err := s.counter.CountFeedback(ctx)
	if err != nil {
		return nil, apperrors.StorageFailed(MsgStatsFailed, err)
	}

	return &types.Stats{
		TotalRegistrations: registrations,
		TotalFeedback:      feedback,
		Timestamp:          s.now().UTC().Format(time.RFC3339),
	}, nil
}
