package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nyozov/services/internal/shared/apperr"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type CreateInput struct {
	UserID  string
	Type    string
	Title   string
	Message string
	OrderID string
}

// Create inserts a notification record. Callers on the webhook path treat
// a failure here as non-fatal.
func (s *Service) Create(ctx context.Context, in CreateInput) (Notification, error) {
	n := Notification{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Type:      in.Type,
		Title:     in.Title,
		Message:   in.Message,
		CreatedAt: time.Now(),
	}
	if in.OrderID != "" {
		oid := in.OrderID
		n.OrderID = &oid
	}
	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		return Notification{}, apperr.PersistenceErr(err)
	}
	return n, nil
}

// ListForUser returns the 50 most recent notifications.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Notification, error) {
	var out []Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(50).
		Find(&out).Error
	if err != nil {
		return nil, apperr.PersistenceErr(err)
	}
	return out, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND `read` = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, apperr.PersistenceErr(err)
	}
	return count, nil
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	res := s.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if res.Error != nil {
		return apperr.PersistenceErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFoundErr("Notification not found.")
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	err := s.db.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND `read` = ?", userID, false).
		Update("read", true).Error
	if err != nil {
		return apperr.PersistenceErr(err)
	}
	return nil
}
