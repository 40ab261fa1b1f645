package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/microblog/internal/database"
	"github.com/thereayou/microblog/internal/handlers/dto"
	"github.com/thereayou/microblog/internal/models"
)

// Presence сообщает, есть ли у пользователя открытое websocket-соединение
type Presence interface {
	IsOnline(userID uuid.UUID) bool
}

type UserHandler struct {
	db       *database.Database
	presence Presence
	perPage  int
}

func NewUserHandler(db *database.Database, presence Presence, perPage int) *UserHandler {
	return &UserHandler{db: db, presence: presence, perPage: perPage}
}

// profile собирает карточку user глазами viewer
func (h *UserHandler) profile(ctx context.Context, user *models.User, viewer uuid.UUID) (dto.Profile, error) {
	p := dto.NewProfile(user)
	p.IsMe = user.ID == viewer
	if h.presence != nil {
		p.IsOnline = h.presence.IsOnline(user.ID)
	}

	var err error
	if p.Followers, err = h.db.FollowersCount(ctx, user.ID); err != nil {
		return p, err
	}
	if p.Following, err = h.db.FollowingCount(ctx, user.ID); err != nil {
		return p, err
	}
	if !p.IsMe {
		if p.IsFollowed, err = h.db.IsFollowing(ctx, viewer, user.ID); err != nil {
			return p, err
		}
	}
	return p, nil
}

// lookup ищет пользователя из :username и отвечает 404, если его нет
func (h *UserHandler) lookup(c *gin.Context) (*models.User, bool) {
	username := c.Param("username")
	user, err := h.db.FindUserByUsername(c.Request.Context(), username)
	if err != nil {
		if database.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User " + username + " not found."})
			return nil, false
		}
		internalError(c, "failed to load user", err)
		return nil, false
	}
	return user, true
}

// GetMe возвращает информацию о текущем пользователе
func (h *UserHandler) GetMe(c *gin.Context) {
	userID := currentUserID(c)
	ctx := c.Request.Context()

	user, err := h.db.GetUser(ctx, userID)
	if err != nil {
		if database.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		internalError(c, "failed to load user", err)
		return
	}

	p, err := h.profile(ctx, user, userID)
	if err != nil {
		internalError(c, "failed to load profile", err)
		return
	}

	unread, err := h.db.UnreadMessageCount(ctx, userID)
	if err != nil {
		internalError(c, "failed to count messages", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":      p,
		"email":        user.Email,
		"new_messages": unread,
	})
}

// GetUser профиль пользователя и его посты
func (h *UserHandler) GetUser(c *gin.Context) {
	user, ok := h.lookup(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	p, err := h.profile(ctx, user, currentUserID(c))
	if err != nil {
		internalError(c, "failed to load profile", err)
		return
	}

	posts, err := h.db.UserPosts(ctx, user.ID, pageParam(c), h.perPage)
	if err != nil {
		internalError(c, "failed to load posts", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  p,
		"posts": pageResponse(c, posts, dto.NewPostList(posts.Items)),
	})
}

// Popup короткая карточка для всплывающей подсказки
func (h *UserHandler) Popup(c *gin.Context) {
	user, ok := h.lookup(c)
	if !ok {
		return
	}

	p, err := h.profile(c.Request.Context(), user, currentUserID(c))
	if err != nil {
		internalError(c, "failed to load profile", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// EditProfile меняет имя и "о себе"; своё текущее имя можно оставить
func (h *UserHandler) EditProfile(c *gin.Context) {
	userID := currentUserID(c)
	ctx := c.Request.Context()

	var req dto.EditProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	user, err := h.db.GetUser(ctx, userID)
	if err != nil {
		internalError(c, "failed to load user", err)
		return
	}

	if req.Username != user.Username {
		taken, err := h.db.UsernameTaken(ctx, req.Username, user.ID)
		if err != nil {
			internalError(c, "failed to check username", err)
			return
		}
		if taken {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please use a different username."})
			return
		}
	}

	user.Username = req.Username
	user.AboutMe = req.AboutMe

	if err := h.db.UpdateUser(ctx, user); err != nil {
		internalError(c, "failed to update user", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Your changes have been saved.",
		"user":    dto.NewProfile(user),
	})
}

func (h *UserHandler) Follow(c *gin.Context) {
	user, ok := h.lookup(c)
	if !ok {
		return
	}

	err := h.db.Follow(c.Request.Context(), currentUserID(c), user.ID)
	if errors.Is(err, database.ErrCannotFollowSelf) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot follow yourself"})
		return
	}
	if err != nil {
		internalError(c, "failed to follow user", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "You are following " + user.Username})
}

func (h *UserHandler) Unfollow(c *gin.Context) {
	user, ok := h.lookup(c)
	if !ok {
		return
	}

	err := h.db.Unfollow(c.Request.Context(), currentUserID(c), user.ID)
	if errors.Is(err, database.ErrCannotFollowSelf) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot unfollow yourself!"})
		return
	}
	if err != nil {
		internalError(c, "failed to unfollow user", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "You are not following " + user.Username + "."})
}
