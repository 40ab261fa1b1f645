package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/microblog/internal/database"
	"github.com/thereayou/microblog/internal/handlers/dto"
	"github.com/thereayou/microblog/internal/lang"
	"github.com/thereayou/microblog/internal/models"
)

type PostHandler struct {
	db       *database.Database
	detector *lang.Detector
	perPage  int
}

func NewPostHandler(db *database.Database, detector *lang.Detector, perPage int) *PostHandler {
	return &PostHandler{db: db, detector: detector, perPage: perPage}
}

// Index лента: свои посты и посты тех, на кого подписан
func (h *PostHandler) Index(c *gin.Context) {
	posts, err := h.db.FollowingPosts(c.Request.Context(), currentUserID(c), pageParam(c), h.perPage)
	if err != nil {
		internalError(c, "failed to load feed", err)
		return
	}
	c.JSON(http.StatusOK, pageResponse(c, posts, dto.NewPostList(posts.Items)))
}

// CreatePost публикует пост; язык определяется автоматически
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req dto.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	body := strings.TrimSpace(req.Post)
	if body == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "post must not be empty"})
		return
	}

	ctx := c.Request.Context()
	userID := currentUserID(c)

	post := &models.Post{
		Body:     body,
		UserID:   userID,
		Language: h.detector.Detect(body),
	}
	if err := h.db.SavePost(ctx, post); err != nil {
		internalError(c, "failed to save post", err)
		return
	}

	saved, err := h.db.GetPost(ctx, post.ID)
	if err != nil {
		internalError(c, "failed to load post", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Your post is now live!",
		"post":    dto.NewPostResponse(saved),
	})
}

// Explore все посты всех пользователей
func (h *PostHandler) Explore(c *gin.Context) {
	posts, err := h.db.ExplorePosts(c.Request.Context(), pageParam(c), h.perPage)
	if err != nil {
		internalError(c, "failed to load posts", err)
		return
	}
	c.JSON(http.StatusOK, pageResponse(c, posts, dto.NewPostList(posts.Items)))
}

// Search полнотекстовый поиск по постам
func (h *PostHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	posts, err := h.db.SearchPosts(c.Request.Context(), q, pageParam(c), h.perPage)
	if err != nil {
		internalError(c, "search failed", err)
		return
	}
	c.JSON(http.StatusOK, pageResponse(c, posts, dto.NewPostList(posts.Items)))
}
