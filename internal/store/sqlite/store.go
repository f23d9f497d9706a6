// Package sqlite implements the store interfaces with GORM on an embedded SQLite
// database. It backs local development and the router tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cabpool/cabpool-backend/internal/store"
	"github.com/cabpool/cabpool-backend/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// InMemory is the DSN of a private, non-persistent database.
const InMemory = ":memory:"

var _ store.Store = (*Store)(nil)

type Store struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

// Open opens (creating if needed) the database at path and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sqlite handle: %w", err)
	}
	// A single connection serializes writers and keeps an in-memory database alive.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&registrationModel{}, &feedbackModel{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate sqlite schema: %w", err)
	}

	return &Store{db: db, sqlDB: sqlDB}, nil
}

func (s *Store) FindRegistrationByEmail(ctx context.Context, email string) (*types.Registration, error) {
	var m registrationModel
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return m.toType(), nil
}

func (s *Store) CreateRegistration(ctx context.Context, reg *types.Registration) error {
	m := registrationModel{
		Name:        reg.Name,
		Email:       reg.Email,
		Phone:       reg.Phone,
		PickupPoint: reg.PickupPoint,
		DropPoint:   reg.DropPoint,
		Message:     reg.Message,
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isDuplicate(err) {
			return store.ErrConflict
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	reg.ID = m.ID
	reg.CreatedAt = m.CreatedAt.UTC()
	return nil
}

func (s *Store) CountRegistrations(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&registrationModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return count, nil
}

func (s *Store) CreateFeedback(ctx context.Context, fb *types.Feedback) error {
	m := feedbackModel{Name: fb.Name, Comment: fb.Comment}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	fb.ID = m.ID
	fb.CreatedAt = m.CreatedAt.UTC()
	return nil
}

func (s *Store) ListRecentFeedback(ctx context.Context, limit int) ([]types.Feedback, error) {
	var models []feedbackModel
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("rowid DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}

	items := make([]types.Feedback, 0, len(models))
	for i := range models {
		items = append(items, models[i].toType())
	}
	return items, nil
}

func (s *Store) CountFeedback(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&feedbackModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count feedback: %w", err)
	}
	return count, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.sqlDB.Close()
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}
