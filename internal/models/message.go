package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Message struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	SenderID    uuid.UUID `gorm:"type:uuid;index;not null"`
	RecipientID uuid.UUID `gorm:"type:uuid;index;not null"`
	Body        string    `gorm:"size:140;not null"`
	Timestamp   time.Time `gorm:"index;not null"`

	// Связи
	Author    User `gorm:"foreignKey:SenderID"`
	Recipient User `gorm:"foreignKey:RecipientID"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	return nil
}
