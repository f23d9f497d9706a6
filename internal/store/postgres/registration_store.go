package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/cabpool/cabpool-backend/internal/store"
	"github.com/cabpool/cabpool-backend/types"
	"github.com/jackc/pgx/v5"
)

var _ store.RegistrationStore = (*RegistrationStore)(nil)

// RegistrationStore implements store.RegistrationStore using PostgreSQL.
type RegistrationStore struct {
	db DBTX
}

func NewRegistrationStore(db DBTX) *RegistrationStore {
	return &RegistrationStore{db: db}
}

// FindRegistrationByEmail matches case-insensitively, the same way the unique index does.
func (s *RegistrationStore) FindRegistrationByEmail(ctx context.Context, email string) (*types.Registration, error) {
	query := `
		SELECT id::text, name, email, phone, pickup_point, drop_point, message, created_at
		FROM registrations
		WHERE lower(email) = lower($1)
		LIMIT 1`

	var reg types.Registration
	err := s.db.QueryRow(ctx, query, email).Scan(
		&reg.ID,
		&reg.Name,
		&reg.Email,
		&reg.Phone,
		&reg.PickupPoint,
		&reg.DropPoint,
		&reg.Message,
		&reg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return &reg, nil
}

func (s *RegistrationStore) CreateRegistration(ctx context.Context, reg *types.Registration) error {
	query := `
		INSERT INTO registrations (name, email, phone, pickup_point, drop_point, message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id::text, created_at`

	err := s.db.QueryRow(ctx, query,
		reg.Name,
		reg.Email,
		reg.Phone,
		reg.PickupPoint,
		reg.DropPoint,
		reg.Message,
	).Scan(&reg.ID, &reg.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrConflict
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

func (s *RegistrationStore) CountRegistrations(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM registrations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return count, nil
}
