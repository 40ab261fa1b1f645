package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/microblog/internal/database"
	"github.com/thereayou/microblog/internal/handlers/dto"
	"github.com/thereayou/microblog/internal/models"
	"github.com/thereayou/microblog/internal/services"
)

// MessageHandler личные сообщения и уведомления
type MessageHandler struct {
	db       *database.Database
	notifier *services.Notifier
	perPage  int
}

func NewMessageHandler(db *database.Database, notifier *services.Notifier, perPage int) *MessageHandler {
	return &MessageHandler{db: db, notifier: notifier, perPage: perPage}
}

// SendMessage сохраняет сообщение и обновляет получателю счётчик непрочитанных
func (h *MessageHandler) SendMessage(c *gin.Context) {
	ctx := c.Request.Context()
	username := c.Param("recipient")

	recipient, err := h.db.FindUserByUsername(ctx, username)
	if err != nil {
		if database.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User " + username + " not found."})
			return
		}
		internalError(c, "failed to load user", err)
		return
	}

	var req dto.MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	body := strings.TrimSpace(req.Message)
	if body == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message must not be empty"})
		return
	}

	msg := &models.Message{
		SenderID:    currentUserID(c),
		RecipientID: recipient.ID,
		Body:        body,
	}
	notification, err := h.db.SaveMessage(ctx, msg)
	if err != nil {
		internalError(c, "failed to send message", err)
		return
	}
	h.notifier.Push(notification)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Your message has been sent.",
		"id":      msg.ID,
	})
}

// Messages входящие сообщения; просмотр сбрасывает счётчик непрочитанных
func (h *MessageHandler) Messages(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUserID(c)

	notification, err := h.db.MarkMessagesRead(ctx, userID, time.Now())
	if err != nil {
		internalError(c, "failed to mark messages read", err)
		return
	}
	h.notifier.Push(notification)

	messages, err := h.db.ReceivedMessages(ctx, userID, pageParam(c), h.perPage)
	if err != nil {
		internalError(c, "failed to load messages", err)
		return
	}
	c.JSON(http.StatusOK, pageResponse(c, messages, dto.NewMessageList(messages.Items)))
}

// Notifications уведомления новее ?since= (unix-время в секундах)
func (h *MessageHandler) Notifications(c *gin.Context) {
	since := 0.0
	if s := c.Query("since"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be a number"})
			return
		}
		since = v
	}

	notifications, err := h.db.NotificationsSince(c.Request.Context(), currentUserID(c), since)
	if err != nil {
		internalError(c, "failed to load notifications", err)
		return
	}

	events := make([]models.NotificationEvent, 0, len(notifications))
	for i := range notifications {
		event, err := notifications[i].Event()
		if err != nil {
			internalError(c, "failed to decode notification", err)
			return
		}
		events = append(events, event)
	}
	c.JSON(http.StatusOK, events)
}
