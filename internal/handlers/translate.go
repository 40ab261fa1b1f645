package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/microblog/internal/handlers/dto"
	"github.com/thereayou/microblog/internal/translate"
)

type TranslateHandler struct {
	translator *translate.Translator
}

func NewTranslateHandler(t *translate.Translator) *TranslateHandler {
	return &TranslateHandler{translator: t}
}

// Translate переводит текст поста. Ошибки сервиса перевода отдаются
// текстом вместо перевода, а не HTTP-ошибкой.
func (h *TranslateHandler) Translate(c *gin.Context) {
	var req dto.TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	text, err := h.translator.Translate(c.Request.Context(), req.Text, req.SourceLanguage, req.DestLanguage)
	switch {
	case errors.Is(err, translate.ErrNotConfigured):
		text = translate.ErrNotConfigured.Error()
	case err != nil:
		text = translate.ErrFailed.Error()
	}

	c.JSON(http.StatusOK, gin.H{"text": text})
}
