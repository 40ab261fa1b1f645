package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/microblog/internal/models"
)

// MessageRequest личное сообщение
type MessageRequest struct {
	Message string `json:"message" binding:"required,max=140"`
}

type MessageResponse struct {
	ID        uuid.UUID `json:"id"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
	Author    UserInfo  `json:"author"`
}

func NewMessageList(messages []models.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for i := range messages {
		m := &messages[i]
		out = append(out, MessageResponse{
			ID:        m.ID,
			Body:      m.Body,
			Timestamp: m.Timestamp,
			Author:    NewUserInfo(&m.Author),
		})
	}
	return out
}
