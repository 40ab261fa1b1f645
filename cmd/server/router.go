package server

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/thereayou/microblog/internal/database"
	"github.com/thereayou/microblog/internal/handlers"
	"github.com/thereayou/microblog/internal/middleware"
	"github.com/thereayou/microblog/internal/services"
	"github.com/thereayou/microblog/pkg/auth"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	User      *handlers.UserHandler
	Post      *handlers.PostHandler
	Message   *handlers.MessageHandler
	Translate *handlers.TranslateHandler
	WebSocket *handlers.WebSocketHandler
	Reporter  *services.ErrorReporter
}

func APIEndpoints(r *gin.Engine, h Handlers, jwtMgr *auth.JWTManager, rdb *redis.Client, db *database.Database) {
	// Паника в обработчике откатывает открытую транзакцию и превращается в 500
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.Error("panic recovered", "path", c.Request.URL.Path, "panic", recovered)
		h.Reporter.Report(c.Request.Method+" "+c.Request.URL.Path, recovered, debug.Stack())
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error has occurred"})
	}))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "File Not Found"})
	})

	// Auth endpoints
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/logout", middleware.AuthMiddleware(jwtMgr, rdb), h.Auth.Logout)
		authGroup.POST("/reset_password_request", h.Auth.ResetPasswordRequest)
		authGroup.POST("/reset_password/:token", h.Auth.ResetPassword)
	}

	// API endpoints
	api := r.Group("/api/v1")
	api.GET("/ws", middleware.WSAuthMiddleware(jwtMgr, rdb), h.WebSocket.HandleWebSocket)

	protected := api.Group("", middleware.AuthMiddleware(jwtMgr, rdb), middleware.LastSeen(db))
	{
		protected.GET("/index", h.Post.Index)
		protected.POST("/index", h.Post.CreatePost)
		protected.GET("/explore", h.Post.Explore)
		protected.GET("/search", h.Post.Search)

		protected.GET("/me", h.User.GetMe)
		protected.PUT("/edit_profile", h.User.EditProfile)
		protected.GET("/user/:username", h.User.GetUser)
		protected.GET("/user/:username/popup", h.User.Popup)
		protected.POST("/follow/:username", h.User.Follow)
		protected.POST("/unfollow/:username", h.User.Unfollow)

		protected.POST("/translate", h.Translate.Translate)

		protected.GET("/messages", h.Message.Messages)
		protected.POST("/send_message/:recipient", h.Message.SendMessage)
		protected.GET("/notifications", h.Message.Notifications)
	}
}
