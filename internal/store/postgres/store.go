package postgres

import (
	"context"
	"errors"

	"github.com/cabpool/cabpool-backend/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// DBTX is the subset of *pgxpool.Pool the stores use. pgxmock.PgxPoolIface satisfies it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

var _ store.Store = (*Store)(nil)

// Store implements store.Store on a PostgreSQL connection pool.
type Store struct {
	*RegistrationStore
	*FeedbackStore
	db DBTX
}

// NewStore wraps db. The store owns db and closes it in Close.
func NewStore(db DBTX) *Store {
	return &Store{
		RegistrationStore: NewRegistrationStore(db),
		FeedbackStore:     NewFeedbackStore(db),
		db:                db,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Store) Close() error {
	s.db.Close()
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
