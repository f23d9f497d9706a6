package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/cabpool/cabpool-backend/config"
	apperrors "github.com/cabpool/cabpool-backend/errors"
	"github.com/cabpool/cabpool-backend/internal/store"
	"github.com/cabpool/cabpool-backend/types"
)

// Client-facing feedback messages.
const (
	MsgFeedbackRequired  = "Name and comment are required fields"
	MsgFeedbackTooShort  = "Comment must be at least 10 characters long"
	MsgFeedbackTooLong   = "Comment must be at most 1000 characters long"
	MsgFeedbackFailed    = "Failed to save feedback. Please try again."
	MsgFeedbackCreated   = "Thank you for your feedback!"
	MsgFeedbackListError = "Failed to fetch feedback"
	MsgInvalidLimit      = "limit must be a positive integer"
)

type FeedbackService struct {
	store   store.FeedbackStore
	limits  config.FeedbackConfig
	metrics *SubmissionMetrics
}

func NewFeedbackService(s store.FeedbackStore, limits config.FeedbackConfig, metrics *SubmissionMetrics) *FeedbackService {
	return &FeedbackService{store: s, limits: limits, metrics: metrics}
}

// Submit validates and stores one feedback entry.
func (s *FeedbackService) Submit(ctx context.Context, req types.FeedbackCreate) (*types.FeedbackSummary, error) {
	name := strings.TrimSpace(req.Name)
	comment := strings.TrimSpace(req.Comment)

	if name == "" || comment == "" {
		s.metrics.feedbackSubmission(OutcomeInvalid)
		return nil, apperrors.ValidationFailed(MsgFeedbackRequired, "")
	}
	switch n := runeLen(comment); {
	case n < types.MinCommentLength:
		s.metrics.feedbackSubmission(OutcomeInvalid)
		return nil, apperrors.ValidationFailed(MsgFeedbackTooShort, strconv.Itoa(n))
	case n > types.MaxCommentLength:
		s.metrics.feedbackSubmission(OutcomeInvalid)
		return nil, apperrors.ValidationFailed(MsgFeedbackTooLong, strconv.Itoa(n))
	}

	fb := &types.Feedback{Name: name, Comment: comment}
	if err := s.store.CreateFeedback(ctx, fb); err != nil {
		s.metrics.feedbackSubmission(OutcomeFailed)
		return nil, apperrors.StorageFailed(MsgFeedbackFailed, err)
	}

	s.metrics.feedbackSubmission(OutcomeCreated)
	return &types.FeedbackSummary{ID: fb.ID, Name: fb.Name}, nil
}

// ListRecent returns the newest feedback. rawLimit is the unparsed query value.
func (s *FeedbackService) ListRecent(ctx context.Context, rawLimit string) ([]types.Feedback, error) {
	limit, err := s.ParseLimit(rawLimit)
	if err != nil {
		return nil, err
	}

	items, err := s.store.ListRecentFeedback(ctx, limit)
	if err != nil {
		return nil, apperrors.StorageFailed(MsgFeedbackListError, err)
	}
	if items == nil {
		items = []types.Feedback{}
	}
	return items, nil
}

// ParseLimit maps an empty value to the default and clamps large values to the maximum.
func (s *FeedbackService) ParseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.limits.DefaultLimit, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, apperrors.ValidationFailed(MsgInvalidLimit, "limit="+raw)
	}
	if limit > s.limits.MaxLimit {
		return s.limits.MaxLimit, nil
	}
	return limit, nil
}
