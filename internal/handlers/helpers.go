package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/microblog/internal/database"
	"github.com/thereayou/microblog/internal/handlers/dto"
	"github.com/thereayou/microblog/internal/middleware"
)

func currentUserID(c *gin.Context) uuid.UUID {
	return c.MustGet(middleware.UserIDKey).(uuid.UUID)
}

// pageParam номер страницы из ?page=, по умолчанию первая
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// pageURL текущий адрес с другим номером страницы; 0 значит страницы нет
func pageURL(c *gin.Context, page int) string {
	if page == 0 {
		return ""
	}
	u := *c.Request.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.RequestURI()
}

func pageResponse[T, R any](c *gin.Context, p database.Page[T], items []R) dto.PageResponse[R] {
	return dto.PageResponse[R]{
		Items:   items,
		Page:    p.Page,
		PerPage: p.PerPage,
		Total:   p.Total,
		NextURL: pageURL(c, p.NextNum()),
		PrevURL: pageURL(c, p.PrevNum()),
	}
}

// internalError логирует причину и отдаёт клиенту общее сообщение
func internalError(c *gin.Context, msg string, err error) {
	slog.Error(msg, "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
