package database

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/thereayou/microblog/internal/models"
	"gorm.io/gorm"
)

// AddNotification заменяет уведомление пользователя с тем же именем новым
func (d *Database) AddNotification(ctx context.Context, userID uuid.UUID, name string, data any) (*models.Notification, error) {
	var notification *models.Notification

	err := d.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		notification, err = addNotification(tx, userID, name, data)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "database.AddNotification")
	}
	return notification, nil
}

// NotificationsSince уведомления новее since (unix-время в секундах), по возрастанию времени
func (d *Database) NotificationsSince(ctx context.Context, userID uuid.UUID, since float64) ([]models.Notification, error) {
	notifications := []models.Notification{}
	err := d.db.WithContext(ctx).
		Where("user_id = ? AND timestamp > ?", userID, since).
		Order("timestamp ASC").
		Find(&notifications).Error
	if err != nil {
		return nil, errors.Wrap(err, "database.NotificationsSince")
	}
	return notifications, nil
}

func addNotification(tx *gorm.DB, userID uuid.UUID, name string, data any) (*models.Notification, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	if err := tx.Where("user_id = ? AND name = ?", userID, name).Delete(&models.Notification{}).Error; err != nil {
		return nil, err
	}

	notification := &models.Notification{
		Name:        name,
		UserID:      userID,
		Timestamp:   unixSeconds(time.Now()),
		PayloadJSON: string(payload),
	}
	if err := tx.Create(notification).Error; err != nil {
		return nil, err
	}
	return notification, nil
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
