// Package supabase implements the store interfaces over the Supabase REST API,
// for deployments where the database is only reachable through PostgREST.
package supabase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cabpool/cabpool-backend/internal/store"
	"github.com/cabpool/cabpool-backend/types"
	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"
)

const (
	registrationsTable = "registrations"
	feedbackTable      = "feedback"

	uniqueViolation = "23505"
)

var _ store.Store = (*Store)(nil)

// Store implements store.Store with a supabase-go client. PostgREST calls are not
// context aware; ctx is only checked before each request.
type Store struct {
	client *supa.Client
}

// NewStore creates a client for the project at url, authenticating with key.
func NewStore(url, key string) (*Store, error) {
	if url == "" || key == "" {
		return nil, errors.New("supabase url and key are required")
	}
	client, err := supa.NewClient(url, key, &supa.ClientOptions{Schema: "public"})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &Store{client: client}, nil
}

type registrationInsert struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       *string `json:"phone"`
	PickupPoint string  `json:"pickup_point"`
	DropPoint   string  `json:"drop_point"`
	Message     *string `json:"message"`
}

type feedbackInsert struct {
	Name    string `json:"name"`
	Comment string `json:"comment"`
}

// FindRegistrationByEmail expects email already normalized to lowercase.
func (s *Store) FindRegistrationByEmail(ctx context.Context, email string) (*types.Registration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []types.Registration
	_, err := s.client.From(registrationsTable).
		Select("*", "", false).
		Eq("email", email).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("find registration: %w", err)
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	return &rows[0], nil
}

func (s *Store) CreateRegistration(ctx context.Context, reg *types.Registration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload := registrationInsert{
		Name:        reg.Name,
		Email:       reg.Email,
		Phone:       reg.Phone,
		PickupPoint: reg.PickupPoint,
		DropPoint:   reg.DropPoint,
		Message:     reg.Message,
	}

	var rows []types.Registration
	_, err := s.client.From(registrationsTable).
		Insert(payload, false, "", "representation", "").
		ExecuteTo(&rows)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrConflict
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("insert registration: empty representation")
	}
	reg.ID = rows[0].ID
	reg.CreatedAt = rows[0].CreatedAt
	return nil
}

func (s *Store) CountRegistrations(ctx context.Context) (int64, error) {
	return s.count(ctx, registrationsTable)
}

func (s *Store) CreateFeedback(ctx context.Context, fb *types.Feedback) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var rows []types.Feedback
	_, err := s.client.From(feedbackTable).
		Insert(feedbackInsert{Name: fb.Name, Comment: fb.Comment}, false, "", "representation", "").
		ExecuteTo(&rows)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("insert feedback: empty representation")
	}
	fb.ID = rows[0].ID
	fb.CreatedAt = rows[0].CreatedAt
	return nil
}

func (s *Store) ListRecentFeedback(ctx context.Context, limit int) ([]types.Feedback, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows := make([]types.Feedback, 0, limit)
	_, err := s.client.From(feedbackTable).
		Select("id,name,comment,created_at", "", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Order("seq", &postgrest.OrderOpts{Ascending: false}).
		Limit(limit, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	if rows == nil {
		rows = []types.Feedback{}
	}
	return rows, nil
}

func (s *Store) CountFeedback(ctx context.Context) (int64, error) {
	return s.count(ctx, feedbackTable)
}

// Ping issues the cheapest request the REST API accepts.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, _, err := s.client.From(registrationsTable).Select("id", "", false).Limit(1, "").Execute(); err != nil {
		return fmt.Errorf("supabase ping: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) count(ctx context.Context, table string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	_, count, err := s.client.From(table).Select("id", "exact", true).Execute()
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return count, nil
}

// PostgREST errors surface as "(code) message".
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, uniqueViolation) || strings.Contains(msg, "duplicate key")
}
