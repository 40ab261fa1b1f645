package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/thereayou/microblog/internal/database"
	"github.com/thereayou/microblog/internal/handlers/dto"
	"github.com/thereayou/microblog/internal/middleware"
	"github.com/thereayou/microblog/internal/models"
	"github.com/thereayou/microblog/internal/services"
	"github.com/thereayou/microblog/pkg/auth"
)

type AuthHandler struct {
	db         *database.Database
	jwtManager *auth.JWTManager
	redis      *redis.Client
	reset      *services.PasswordReset
}

func NewAuthHandler(db *database.Database, jwtMgr *auth.JWTManager, rdb *redis.Client, reset *services.PasswordReset) *AuthHandler {
	return &AuthHandler{db: db, jwtManager: jwtMgr, redis: rdb, reset: reset}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	ctx := c.Request.Context()

	taken, err := h.db.UsernameTaken(ctx, req.Username, uuid.Nil)
	if err != nil {
		internalError(c, "failed to check username", err)
		return
	}
	if taken {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please use a different username."})
		return
	}

	taken, err = h.db.EmailTaken(ctx, req.Email)
	if err != nil {
		internalError(c, "failed to check email", err)
		return
	}
	if taken {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please use a different email address."})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot hash password"})
		return
	}

	now := time.Now().UTC()
	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		LastSeenAt:   now,
		CreatedAt:    now,
	}

	if err := h.db.SaveUser(ctx, user); err != nil {
		internalError(c, "failed to create user", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Congratulations, you are now a registered user!",
		"user":    dto.NewUserInfo(user),
	})
}

// Login выдаёт JWT и обновляет last_seen
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	user, err := h.db.FindUserByUsername(ctx, req.Username)
	if err != nil {
		if database.IsNotFound(err) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		internalError(c, "failed to load user", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	if err := h.db.UpdateLastSeen(ctx, user.ID); err != nil {
		internalError(c, "could not update last seen", err)
		return
	}

	token, err := h.jwtManager.Generate(user.ID)
	if err != nil {
		internalError(c, "could not generate token", err)
		return
	}
	exp, err := h.jwtManager.Expiry(token)
	if err != nil {
		internalError(c, "could not generate token", err)
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{
		Token:          token,
		TokenExpiresAt: exp.UTC().Format(time.RFC3339),
	})
}

// Logout ставит токен в черный список в Redis до истечения
func (h *AuthHandler) Logout(c *gin.Context) {
	rawToken, err := auth.ExtractTokenFromHeader(c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exp, err := h.jwtManager.Expiry(rawToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	ttl := time.Until(exp)
	if err := h.redis.Set(c.Request.Context(), middleware.BlacklistPrefix+rawToken, 1, ttl).Err(); err != nil {
		internalError(c, "failed to revoke token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "You have been logged out."})
}

// ResetPasswordRequest всегда отвечает одинаково, чтобы не раскрывать зарегистрированные адреса
func (h *AuthHandler) ResetPasswordRequest(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.reset.Request(c.Request.Context(), req.Email); err != nil {
		internalError(c, "failed to request password reset", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Check your email for the instructions to reset your password"})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordForm
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.reset.Reset(c.Request.Context(), c.Param("token"), req.Password)
	if err != nil {
		if services.IsInvalidToken(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "The password reset link is invalid or has expired."})
			return
		}
		internalError(c, "failed to reset password", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Your password has been reset."})
}
