package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/thereayou/microblog/internal/models"
	"gorm.io/gorm"
)

// SaveMessage сохраняет сообщение и в той же транзакции обновляет получателю
// уведомление со счётчиком непрочитанных. Возвращает это уведомление.
func (d *Database) SaveMessage(ctx context.Context, message *models.Message) (*models.Notification, error) {
	var notification *models.Notification

	err := d.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}

		count, err := unreadMessageCount(tx, message.RecipientID)
		if err != nil {
			return err
		}

		notification, err = addNotification(tx, message.RecipientID, models.NotificationUnreadMessages, count)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "database.SaveMessage")
	}
	return notification, nil
}

// ReceivedMessages входящие сообщения пользователя, новые сверху
func (d *Database) ReceivedMessages(ctx context.Context, userID uuid.UUID, page, perPage int) (Page[models.Message], error) {
	base := func() *gorm.DB {
		return d.db.WithContext(ctx).Model(&models.Message{}).Where("recipient_id = ?", userID)
	}

	result, err := paginate[models.Message](d.db.WithContext(ctx), base, "timestamp DESC, id DESC", []string{"Author"}, page, perPage)
	return result, errors.Wrap(err, "database.ReceivedMessages")
}

func (d *Database) UnreadMessageCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := unreadMessageCount(d.db.WithContext(ctx), userID)
	return count, errors.Wrap(err, "database.UnreadMessageCount")
}

// MarkMessagesRead запоминает момент прочтения и обнуляет уведомление-счётчик
func (d *Database) MarkMessagesRead(ctx context.Context, userID uuid.UUID, at time.Time) (*models.Notification, error) {
	var notification *models.Notification

	err := d.transaction(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", userID).Update("last_message_read_time", at.UTC())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		var err error
		notification, err = addNotification(tx, userID, models.NotificationUnreadMessages, 0)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "database.MarkMessagesRead")
	}
	return notification, nil
}

func unreadMessageCount(tx *gorm.DB, userID uuid.UUID) (int64, error) {
	var user models.User
	if err := tx.Select("id", "last_message_read_time").First(&user, "id = ?", userID).Error; err != nil {
		return 0, err
	}

	q := tx.Model(&models.Message{}).Where("recipient_id = ?", userID)
	if user.LastMessageReadTime != nil {
		q = q.Where("timestamp > ?", *user.LastMessageReadTime)
	}

	var count int64
	err := q.Count(&count).Error
	return count, err
}
