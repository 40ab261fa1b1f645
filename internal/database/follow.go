package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/thereayou/microblog/internal/models"
	"gorm.io/gorm/clause"
)

// Follow подписывает follower на followed. Повторная подписка ничего не меняет.
func (d *Database) Follow(ctx context.Context, followerID, followedID uuid.UUID) error {
	if followerID == followedID {
		return ErrCannotFollowSelf
	}

	follow := models.Follow{
		FollowerID: followerID,
		FollowedID: followedID,
		CreatedAt:  time.Now().UTC(),
	}
	err := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&follow).Error
	return errors.Wrap(err, "database.Follow")
}

// Unfollow снимает подписку; отсутствие подписки не ошибка
func (d *Database) Unfollow(ctx context.Context, followerID, followedID uuid.UUID) error {
	if followerID == followedID {
		return ErrCannotFollowSelf
	}

	err := d.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follow{}).Error
	return errors.Wrap(err, "database.Unfollow")
}

func (d *Database) IsFollowing(ctx context.Context, followerID, followedID uuid.UUID) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "database.IsFollowing")
	}
	return count > 0, nil
}

func (d *Database) FollowersCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&models.Follow{}).Where("followed_id = ?", userID).Count(&count).Error
	return count, errors.Wrap(err, "database.FollowersCount")
}

func (d *Database) FollowingCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, errors.Wrap(err, "database.FollowingCount")
}
