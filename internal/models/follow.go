package models

import (
	"time"

	"github.com/google/uuid"
)

// Follow связь "follower подписан на followed"
type Follow struct {
	FollowerID uuid.UUID `gorm:"type:uuid;primaryKey"`
	FollowedID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt  time.Time

	// Связи: подписка исчезает вместе с любым из пользователей
	Follower User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Followed User `gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE"`
}

func (Follow) TableName() string { return "followers" }
