package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/microblog/internal/models"
)

type PostRequest struct {
	Post string `json:"post" binding:"required,max=140"`
}

type PostResponse struct {
	ID        uuid.UUID `json:"id"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
	Language  string    `json:"language"`
	Author    UserInfo  `json:"author"`
}

func NewPostResponse(p *models.Post) PostResponse {
	return PostResponse{
		ID:        p.ID,
		Body:      p.Body,
		Timestamp: p.Timestamp,
		Language:  p.Language,
		Author:    NewUserInfo(&p.Author),
	}
}

func NewPostList(posts []models.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for i := range posts {
		out = append(out, NewPostResponse(&posts[i]))
	}
	return out
}

// PageResponse страница списка со ссылками на соседние страницы.
// Пустая ссылка означает, что страницы нет.
type PageResponse[T any] struct {
	Items   []T    `json:"items"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
	Total   int64  `json:"total"`
	NextURL string `json:"next_url,omitempty"`
	PrevURL string `json:"prev_url,omitempty"`
}

type TranslateRequest struct {
	Text           string `json:"text" binding:"required"`
	SourceLanguage string `json:"source_language" binding:"required"`
	DestLanguage   string `json:"dest_language" binding:"required"`
}
