package sqlite

import (
	"time"

	"github.com/cabpool/cabpool-backend/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type registrationModel struct {
	ID          string  `gorm:"primaryKey;type:text"`
	Name        string  `gorm:"not null"`
	Email       string  `gorm:"type:text collate nocase;not null;uniqueIndex:registrations_email_key"`
	Phone       *string
	PickupPoint string  `gorm:"not null"`
	DropPoint   string  `gorm:"not null"`
	Message     *string
	CreatedAt   time.Time `gorm:"not null;index"`
}

func (registrationModel) TableName() string { return "registrations" }

func (m *registrationModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func (m *registrationModel) toType() *types.Registration {
	return &types.Registration{
		ID:          m.ID,
		Name:        m.Name,
		Email:       m.Email,
		Phone:       m.Phone,
		PickupPoint: m.PickupPoint,
		DropPoint:   m.DropPoint,
		Message:     m.Message,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

type feedbackModel struct {
	ID        string    `gorm:"primaryKey;type:text"`
	Name      string    `gorm:"not null"`
	Comment   string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;index"`
}

func (feedbackModel) TableName() string { return "feedback" }

func (m *feedbackModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func (m *feedbackModel) toType() types.Feedback {
	return types.Feedback{
		ID:        m.ID,
		Name:      m.Name,
		Comment:   m.Comment,
		CreatedAt: m.CreatedAt.UTC(),
	}
}
