package database

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/thereayou/microblog/internal/models"
)

func (d *Database) SaveUser(ctx context.Context, user *models.User) error {
	if err := d.db.WithContext(ctx).Create(user).Error; err != nil {
		return errors.Wrap(err, "database.SaveUser")
	}
	return nil
}

func (d *Database) UpdateUser(ctx context.Context, user *models.User) error {
	return errors.Wrap(d.db.WithContext(ctx).Save(user).Error, "database.UpdateUser")
}

func (d *Database) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := models.User{}
	if err := d.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, errors.Wrap(err, "database.GetUser")
	}
	return &user, nil
}

func (d *Database) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user := models.User{}
	if err := d.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, errors.Wrap(err, "database.FindUserByUsername")
	}
	return &user, nil
}

func (d *Database) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := models.User{}
	if err := d.db.WithContext(ctx).Where("email = ?", strings.TrimSpace(email)).First(&user).Error; err != nil {
		return nil, errors.Wrap(err, "database.FindUserByEmail")
	}
	return &user, nil
}

// UsernameTaken проверяет занятость имени; exceptID позволяет оставить своё текущее имя
func (d *Database) UsernameTaken(ctx context.Context, username string, exceptID uuid.UUID) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? AND id <> ?", username, exceptID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "database.UsernameTaken")
	}
	return count > 0, nil
}

func (d *Database) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "database.EmailTaken")
	}
	return count > 0, nil
}

func (d *Database) SetPassword(ctx context.Context, id uuid.UUID, hash string) error {
	res := d.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password_hash", hash)
	if res.Error != nil {
		return errors.Wrap(res.Error, "database.SetPassword")
	}
	if res.RowsAffected == 0 {
		return errors.Wrap(ErrNotFound, "database.SetPassword")
	}
	return nil
}

func (d *Database) UpdateLastSeen(ctx context.Context, id uuid.UUID) error {
	return d.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_seen_at", time.Now().UTC()).Error
}
