package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostsIndex имя индекса постов в поисковом движке
const PostsIndex = "posts"

type Post struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Body      string    `gorm:"size:140;not null"`
	Timestamp time.Time `gorm:"index;not null"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Language  string    `gorm:"size:5"`

	// Связи
	Author User `gorm:"foreignKey:UserID"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now().UTC()
	}
	return nil
}

func (p *Post) SearchIndex() string { return PostsIndex }

func (p *Post) SearchID() string { return p.ID.String() }

// SearchDocument возвращает только поля, участвующие в полнотекстовом поиске
func (p *Post) SearchDocument() map[string]any {
	return map[string]any{"body": p.Body}
}
