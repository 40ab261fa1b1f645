package services

import (
	"log/slog"

	"github.com/thereayou/microblog/internal/models"
	ws "github.com/thereayou/microblog/internal/websocket"
)

// Notifier отправляет сохранённые уведомления в открытые websocket-соединения.
// Сами уведомления пишутся в той же транзакции, что и вызвавшее их изменение.
type Notifier struct {
	pusher Pusher
}

func NewNotifier(pusher Pusher) *Notifier {
	return &Notifier{pusher: pusher}
}

// Push доставляет уже сохранённое уведомление. Ошибки доставки не фатальны:
// клиент всё равно получит уведомление через /notifications.
func (n *Notifier) Push(notification *models.Notification) {
	if n.pusher == nil || notification == nil {
		return
	}

	event, err := notification.Event()
	if err != nil {
		slog.Warn("failed to decode notification", "id", notification.ID, "error", err)
		return
	}
	if err := n.pusher.Notify(notification.UserID, ws.TypeNotification, event); err != nil {
		slog.Warn("failed to push notification", "user_id", notification.UserID, "error", err)
	}
}
