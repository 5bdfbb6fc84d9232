package models

import (
	"time"

	"github.com/lastmile/backend/internal/domain/notify"
	"github.com/google/uuid"
)

// NotificationModel is the persistence model for one inbox message.
type NotificationModel struct {
	BaseModel
	RecipientID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Title       string          `gorm:"type:varchar(200);not null"`
	Message     string          `gorm:"type:text"`
	Category    notify.Category `gorm:"type:varchar(30);not null"`
	ReferenceID uuid.UUID       `gorm:"type:uuid"`
	ReadAt      *time.Time      `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}
