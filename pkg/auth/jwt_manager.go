package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// ResetTokenTTL срок жизни токена сброса пароля
const ResetTokenTTL = 10 * time.Minute

var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
)

// Claims полезная нагрузка наших токенов.
// ResetPassword заполнен только у токенов сброса пароля.
type Claims struct {
	ResetPassword string `json:"reset_password,omitempty"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	secretKey     string
	tokenDuration time.Duration
}

func NewJWTManager(secret string, duration time.Duration) *JWTManager {
	return &JWTManager{secretKey: secret, tokenDuration: duration}
}

// Generate создаёт access-токен для userID
func (m *JWTManager) Generate(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
		},
	}
	return m.sign(claims)
}

// Verify парсит и проверяет access-токен. Токен сброса пароля здесь не принимается.
func (m *JWTManager) Verify(accessToken string) (*Claims, error) {
	claims, err := m.parse(accessToken)
	if err != nil {
		return nil, err
	}
	if claims.ResetPassword != "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// UserID достаёт идентификатор пользователя из проверенного access-токена
func (m *JWTManager) UserID(accessToken string) (uuid.UUID, error) {
	claims, err := m.Verify(accessToken)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(claims.Subject)
}

// Expiry возвращает время истечения токена
func (m *JWTManager) Expiry(accessToken string) (time.Time, error) {
	claims, err := m.Verify(accessToken)
	if err != nil {
		return time.Time{}, err
	}
	return claims.ExpiresAt.Time, nil
}

// GenerateResetToken создаёт одноразовую ссылку сброса пароля, живущую ResetTokenTTL
func (m *JWTManager) GenerateResetToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := Claims{
		ResetPassword: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ResetTokenTTL)),
		},
	}
	return m.sign(claims)
}

// VerifyResetToken возвращает пользователя из токена сброса пароля
func (m *JWTManager) VerifyResetToken(token string) (uuid.UUID, error) {
	claims, err := m.parse(token)
	if err != nil || claims.ResetPassword == "" {
		return uuid.Nil, ErrInvalidResetToken
	}
	id, err := uuid.Parse(claims.ResetPassword)
	if err != nil {
		return uuid.Nil, ErrInvalidResetToken
	}
	return id, nil
}

func (m *JWTManager) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secretKey))
}

func (m *JWTManager) parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(m.secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractTokenFromHeader извлекает токен из Authorization header
func ExtractTokenFromHeader(r *http.Request) (string, error) {
	hdr := r.Header.Get("Authorization")
	parts := strings.SplitN(hdr, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid Authorization header")
	}
	return parts[1], nil
}
