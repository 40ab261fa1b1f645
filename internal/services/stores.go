package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/thereayou/microblog/internal/email"
	"github.com/thereayou/microblog/internal/models"
	ws "github.com/thereayou/microblog/internal/websocket"
)

// UserStore то, что нужно PasswordReset от базы
type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	SetPassword(ctx context.Context, id uuid.UUID, hash string) error
}

// Pusher доставляет событие живым соединениям пользователя
type Pusher interface {
	Notify(userID uuid.UUID, msgType ws.MessageType, data any) error
}

// Mailer отправляет письма в фоне
type Mailer interface {
	SendAsync(msg email.Message)
}
