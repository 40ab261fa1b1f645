package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/thereayou/microblog/pkg/auth"
)

const (
	UserIDKey = "userID"
	TokenKey  = "token"

	// BlacklistPrefix префикс ключей отозванных токенов в Redis
	BlacklistPrefix = "blacklist:"
)

// AuthMiddleware проверяет JWT токен
func AuthMiddleware(jwtManager *auth.JWTManager, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractTokenFromHeader(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		authenticate(c, jwtManager, redisClient, token)
	}
}

// WSAuthMiddleware специальный middleware для WebSocket: браузер не умеет
// передавать заголовки при апгрейде, поэтому токен можно отдать в ?token=
func WSAuthMiddleware(jwtManager *auth.JWTManager, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token, _ = auth.ExtractTokenFromHeader(c.Request)
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		authenticate(c, jwtManager, redisClient, token)
	}
}

func authenticate(c *gin.Context, jwtManager *auth.JWTManager, redisClient *redis.Client, token string) {
	// Проверяем, не в черном списке ли токен
	exists, err := redisClient.Exists(c.Request.Context(), BlacklistPrefix+token).Result()
	if err != nil {
		slog.Error("token blacklist lookup failed", "error", err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "unable to verify token, try again later"})
		return
	}
	if exists > 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token is blacklisted"})
		return
	}

	userID, err := jwtManager.UserID(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	c.Set(UserIDKey, userID)
	c.Set(TokenKey, token)
	c.Next()
}

// CurrentUserID пользователь, установленный AuthMiddleware
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
