package postgres

import (
	"context"
	"fmt"

	"github.com/cabpool/cabpool-backend/internal/store"
	"github.com/cabpool/cabpool-backend/types"
)

var _ store.FeedbackStore = (*FeedbackStore)(nil)

// FeedbackStore implements store.FeedbackStore using PostgreSQL.
type FeedbackStore struct {
	db DBTX
}

func NewFeedbackStore(db DBTX) *FeedbackStore {
	return &FeedbackStore{db: db}
}

func (s *FeedbackStore) CreateFeedback(ctx context.Context, fb *types.Feedback) error {
	query := `
		INSERT INTO feedback (name, comment)
		VALUES ($1, $2)
		RETURNING id::text, created_at`

	if err := s.db.QueryRow(ctx, query, fb.Name, fb.Comment).Scan(&fb.ID, &fb.CreatedAt); err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (s *FeedbackStore) ListRecentFeedback(ctx context.Context, limit int) ([]types.Feedback, error) {
	query := `
		SELECT id::text, name, comment, created_at
		FROM feedback
		ORDER BY created_at DESC, seq DESC
		LIMIT $1`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	items := make([]types.Feedback, 0, limit)
	for rows.Next() {
		var fb types.Feedback
		if err := rows.Scan(&fb.ID, &fb.Name, &fb.Comment, &fb.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		items = append(items, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback: %w", err)
	}
	return items, nil
}

func (s *FeedbackStore) CountFeedback(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM feedback`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count feedback: %w", err)
	}
	return count, nil
}
