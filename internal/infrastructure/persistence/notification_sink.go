package persistence

import (
	"context"
	"time"

	"github.com/lastmile/backend/internal/domain/notify"
	"github.com/lastmile/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormNotificationSink stores notifications as inbox rows. Delivery failures
// are logged and dropped so the caller's transaction is never failed by a
// notification.
type GormNotificationSink struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormNotificationSink creates a new GormNotificationSink
func NewGormNotificationSink(db *gorm.DB, logger *zap.Logger) *GormNotificationSink {
	return &GormNotificationSink{db: db, logger: logger}
}

// Notify stores one notification for the recipient
func (s *GormNotificationSink) Notify(ctx context.Context, n notify.Notification) {
	now := time.Now()
	m := &models.NotificationModel{
		BaseModel: models.BaseModel{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		RecipientID: n.RecipientID,
		Title:       n.Title,
		Message:     n.Message,
		Category:    n.Category,
		ReferenceID: n.ReferenceID,
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		s.logger.Warn("failed to store notification",
			zap.String("recipient_id", n.RecipientID.String()),
			zap.String("category", string(n.Category)),
			zap.Error(err))
	}
}

// FindByRecipient returns the recipient's notifications, newest first
func (s *GormNotificationSink) FindByRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]notify.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.NotificationModel
	err := s.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	notifications := make([]notify.Notification, len(rows))
	for i, row := range rows {
		notifications[i] = notify.Notification{
			RecipientID: row.RecipientID,
			Title:       row.Title,
			Message:     row.Message,
			Category:    row.Category,
			ReferenceID: row.ReferenceID,
		}
	}
	return notifications, nil
}

// Ensure GormNotificationSink implements Sink
var _ notify.Sink = (*GormNotificationSink)(nil)
