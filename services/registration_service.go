package services

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/cabpool/cabpool-backend/errors"
	"github.com/cabpool/cabpool-backend/internal/store"
	"github.com/cabpool/cabpool-backend/logger"
	"github.com/cabpool/cabpool-backend/types"
	"go.uber.org/zap"
)

// Client-facing registration messages.
const (
	MsgRegistrationRequired  = "Please fill all the required fields"
	MsgRegistrationEmail     = "Please provide a valid email address"
	MsgRegistrationDuplicate = "This email is already registered"
	MsgRegistrationFailed    = "Failed to save registration. Please try again."
	MsgRegistrationCreated   = "Registration successful! We'll be in touch soon."
)

// WelcomeNotifier is told about every stored registration.
type WelcomeNotifier interface {
	SendWelcomeEmail(ctx context.Context, reg *types.Registration) error
}

type RegistrationService struct {
	store    store.RegistrationStore
	notifier WelcomeNotifier
	metrics  *SubmissionMetrics
	log      *zap.SugaredLogger
}

// NewRegistrationService wires the service. notifier and metrics may be nil.
func NewRegistrationService(s store.RegistrationStore, notifier WelcomeNotifier, metrics *SubmissionMetrics) *RegistrationService {
	return &RegistrationService{
		store:    s,
		notifier: notifier,
		metrics:  metrics,
		log:      logger.GetLogger(),
	}
}

// Register validates req, stores the normalized registration and returns its summary.
// Every failure is an *errors.AppError.
func (s *RegistrationService) Register(ctx context.Context, req types.RegistrationCreate) (*types.RegistrationSummary, error) {
	if anyBlank(req.Name, req.Email, req.PickupPoint, req.DropPoint) {
		s.metrics.registration(OutcomeInvalid)
		return nil, apperrors.ValidationFailed(MsgRegistrationRequired, "missing required field")
	}

	email := NormalizeEmail(req.Email)
	if !IsValidEmail(email) {
		s.metrics.registration(OutcomeInvalid)
		return nil, apperrors.ValidationFailed(MsgRegistrationEmail, "")
	}

	existing, err := s.store.FindRegistrationByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		s.metrics.registration(OutcomeDuplicate)
		return nil, apperrors.Conflict(MsgRegistrationDuplicate, "matched by pre-check")
	case err != nil && !errors.Is(err, store.ErrNotFound):
		s.metrics.registration(OutcomeFailed)
		return nil, apperrors.StorageFailed(MsgRegistrationFailed, err)
	}

	reg := &types.Registration{
		Name:        strings.TrimSpace(req.Name),
		Email:       email,
		Phone:       trimOptional(req.Phone),
		PickupPoint: strings.TrimSpace(req.PickupPoint),
		DropPoint:   strings.TrimSpace(req.DropPoint),
		Message:     trimOptional(req.Message),
	}

	if err := s.store.CreateRegistration(ctx, reg); err != nil {
		if errors.Is(err, store.ErrConflict) {
			s.metrics.registration(OutcomeDuplicate)
			return nil, apperrors.Conflict(MsgRegistrationDuplicate, "rejected by unique index")
		}
		s.metrics.registration(OutcomeFailed)
		return nil, apperrors.StorageFailed(MsgRegistrationFailed, err)
	}

	s.metrics.registration(OutcomeCreated)
	s.log.Infow("Registration stored",
		"registrationID", reg.ID,
		"email", logger.MaskEmail(reg.Email))

	if s.notifier != nil {
		if err := s.notifier.SendWelcomeEmail(ctx, reg); err != nil {
			s.log.Warnw("Welcome email not sent",
				"registrationID", reg.ID,
				"error", err)
		}
	}

	return &types.RegistrationSummary{
		ID:    reg.ID,
		Name:  reg.Name,
		Email: reg.Email,
	}, nil
}
