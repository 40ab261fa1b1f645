package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/microblog/internal/models"
	"github.com/thereayou/microblog/pkg/auth"
)

const (
	avatarSize      = 128
	smallAvatarSize = 36
)

type UserInfo struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Avatar   string    `json:"avatar"`
}

func NewUserInfo(u *models.User) UserInfo {
	return UserInfo{ID: u.ID, Username: u.Username, Avatar: auth.Avatar(u.Email, smallAvatarSize)}
}

// Profile публичная карточка пользователя
type Profile struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Avatar     string    `json:"avatar"`
	AboutMe    string    `json:"about_me"`
	LastSeen   time.Time `json:"last_seen"`
	Followers  int64     `json:"followers_count"`
	Following  int64     `json:"following_count"`
	IsFollowed bool      `json:"is_following"`
	IsMe       bool      `json:"is_me"`
	IsOnline   bool      `json:"is_online"`
}

func NewProfile(u *models.User) Profile {
	return Profile{
		ID:       u.ID,
		Username: u.Username,
		Avatar:   auth.Avatar(u.Email, avatarSize),
		AboutMe:  u.AboutMe,
		LastSeen: u.LastSeenAt,
	}
}

type EditProfileRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	AboutMe  string `json:"about_me" binding:"max=140"`
}
