package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/thereayou/microblog/internal/database"
	"github.com/thereayou/microblog/internal/email"
	"github.com/thereayou/microblog/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidResetToken = auth.ErrInvalidResetToken

// PasswordReset восстановление пароля по ссылке из письма
type PasswordReset struct {
	users   UserStore
	jwt     *auth.JWTManager
	mailer  Mailer
	sender  string
	baseURL string
}

func NewPasswordReset(users UserStore, jwt *auth.JWTManager, mailer Mailer, sender, baseURL string) *PasswordReset {
	return &PasswordReset{users: users, jwt: jwt, mailer: mailer, sender: sender, baseURL: baseURL}
}

// Request отправляет письмо со ссылкой, если адрес зарегистрирован.
// Неизвестный адрес не ошибка: ответ не должен выдавать, есть ли такой пользователь.
func (s *PasswordReset) Request(ctx context.Context, address string) error {
	user, err := s.users.FindUserByEmail(ctx, address)
	if err != nil {
		if database.IsNotFound(err) {
			return nil
		}
		return err
	}

	token, err := s.jwt.GenerateResetToken(user.ID)
	if err != nil {
		return err
	}

	msg, err := email.PasswordResetMessage(s.sender, user.Email, user.Username, s.baseURL+"/auth/reset_password/"+token)
	if err != nil {
		return err
	}
	s.mailer.SendAsync(msg)

	slog.Info("password reset requested", "user_id", user.ID)
	return nil
}

// Reset меняет пароль владельца токена
func (s *PasswordReset) Reset(ctx context.Context, token, password string) error {
	userID, err := s.jwt.VerifyResetToken(token)
	if err != nil {
		return ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.users.SetPassword(ctx, userID, string(hash)); err != nil {
		if database.IsNotFound(err) {
			return ErrInvalidResetToken
		}
		return err
	}
	return nil
}

// IsInvalidToken сообщает, что ссылка сброса недействительна
func IsInvalidToken(err error) bool {
	return errors.Is(err, ErrInvalidResetToken)
}
