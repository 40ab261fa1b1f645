package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username            string    `gorm:"size:64;uniqueIndex;not null"`
	Email               string    `gorm:"size:120;uniqueIndex;not null"`
	PasswordHash        string    `gorm:"size:256"`
	AboutMe             string    `gorm:"size:140"`
	LastSeenAt          time.Time
	LastMessageReadTime *time.Time
	CreatedAt           time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
