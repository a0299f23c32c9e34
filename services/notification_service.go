package services

import (
	"backoffice/models"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// NotificationService хранит уведомления пользователей и служит подписчиком Notifier
type NotificationService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewNotificationService создает новый экземпляр NotificationService
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db, now: time.Now}
}

func (s *NotificationService) Name() string { return "store" }

// Notify сохраняет по одной записи на получателя
func (s *NotificationService) Notify(ctx context.Context, event Event) error {
	if len(event.Recipients) == 0 {
		return nil
	}
	rows := make([]models.Notification, 0, len(event.Recipients))
	for _, r := range event.Recipients {
		rows = append(rows, models.Notification{
			EventID:   event.ID,
			UserID:    r.UserID,
			Kind:      event.Kind,
			Title:     event.Title,
			Body:      event.Body,
			CreatedAt: event.CreatedAt,
		})
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("не удалось сохранить уведомления: %w", err)
	}
	return nil
}

// List возвращает уведомления пользователя, новые первыми
func (s *NotificationService) List(userID uint, unreadOnly bool) ([]models.Notification, error) {
	query := s.db.Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var list []models.Notification
	if err := query.Order("created_at DESC, id DESC").Limit(200).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении уведомлений: %w", err)
	}
	return list, nil
}

// MarkRead отмечает уведомление прочитанным. Повторная отметка не меняет время прочтения.
func (s *NotificationService) MarkRead(id, userID uint) (*models.Notification, error) {
	var n models.Notification
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("уведомление", id)
		}
		return nil, err
	}
	if n.ReadAt != nil {
		return &n, nil
	}

	now := s.now()
	if err := s.db.Model(&n).Update("read_at", now).Error; err != nil {
		return nil, fmt.Errorf("не удалось обновить уведомление: %w", err)
	}
	n.ReadAt = &now
	return &n, nil
}

// MarkAllRead отмечает все уведомления пользователя прочитанными и возвращает их количество
func (s *NotificationService) MarkAllRead(userID uint) (int64, error) {
	res := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", s.now())
	if res.Error != nil {
		return 0, fmt.Errorf("не удалось обновить уведомления: %w", res.Error)
	}
	return res.RowsAffected, nil
}
