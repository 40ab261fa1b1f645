package middleware

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type lastSeenStore interface {
	UpdateLastSeen(ctx context.Context, id uuid.UUID) error
}

// LastSeen отмечает время последнего запроса аутентифицированного пользователя.
// Ставится после AuthMiddleware.
func LastSeen(store lastSeenStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := CurrentUserID(c); ok {
			if err := store.UpdateLastSeen(c.Request.Context(), userID); err != nil {
				slog.Warn("failed to update last seen", "user_id", userID, "error", err)
			}
		}
		c.Next()
	}
}
