package models

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationUnreadMessages имя уведомления со счётчиком непрочитанных сообщений
const NotificationUnreadMessages = "unread_message_count"

// Notification payload хранится JSON-текстом, декодируется в Data
type Notification struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"size:128;index;not null"`
	UserID      uuid.UUID `gorm:"type:uuid;index;not null"`
	User        User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Timestamp   float64   `gorm:"index"`
	PayloadJSON string    `gorm:"column:payload_json;type:text"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// Data декодирует payload уведомления
func (n *Notification) Data() (any, error) {
	var v any
	if n.PayloadJSON == "" {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(n.PayloadJSON), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// NotificationEvent представление уведомления для клиента (HTTP и websocket)
type NotificationEvent struct {
	Name      string  `json:"name"`
	Data      any     `json:"data"`
	Timestamp float64 `json:"timestamp"`
}

func (n *Notification) Event() (NotificationEvent, error) {
	data, err := n.Data()
	if err != nil {
		return NotificationEvent{}, err
	}
	return NotificationEvent{Name: n.Name, Data: data, Timestamp: n.Timestamp}, nil
}
