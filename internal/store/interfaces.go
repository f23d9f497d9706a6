package store

import (
	"context"

	"github.com/cabpool/cabpool-backend/types"
)

// RegistrationStore persists interest registrations.
type RegistrationStore interface {
	// FindRegistrationByEmail returns the registration with the given normalized email,
	// or ErrNotFound.
	FindRegistrationByEmail(ctx context.Context, email string) (*types.Registration, error)
	// CreateRegistration inserts reg and fills in ID and CreatedAt. A duplicate email
	// yields ErrConflict regardless of any earlier lookup.
	CreateRegistration(ctx context.Context, reg *types.Registration) error
	CountRegistrations(ctx context.Context) (int64, error)
}

// FeedbackStore persists landing page feedback.
type FeedbackStore interface {
	// CreateFeedback inserts fb and fills in ID and CreatedAt.
	CreateFeedback(ctx context.Context, fb *types.Feedback) error
	// ListRecentFeedback returns at most limit rows, newest first.
	ListRecentFeedback(ctx context.Context, limit int) ([]types.Feedback, error)
	CountFeedback(ctx context.Context) (int64, error)
}

// Store is the full persistence collaborator behind the API.
type Store interface {
	RegistrationStore
	FeedbackStore
	Ping(ctx context.Context) error
	Close() error
}
