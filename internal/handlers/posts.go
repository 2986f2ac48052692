package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/spycce/SMPost/internal/content"
	"github.com/spycce/SMPost/internal/logging"
)

type PostsHandler struct {
	store   content.Store
	logger  logging.Logger
	metrics *APIMetrics
}

func NewPostsHandler(store content.Store, logger logging.Logger, metrics *APIMetrics) *PostsHandler {
	return &PostsHandler{
		store:   store,
		logger:  logger,
		metrics: metrics,
	}
}

type postRequest struct {
	Platform        string     `json:"platform"`
	Content         string     `json:"content"`
	Hashtags        []string   `json:"hashtags"`
	ImageURL        *string    `json:"imageUrl"`
	ImagePrompt     *string    `json:"imagePrompt"`
	Status          *string    `json:"status"`
	ScheduledAt     *time.Time `json:"scheduledDate"`
	EngagementScore *int       `json:"engagementScore"`
}

func (h *PostsHandler) List(c *gin.Context) {
	posts, err := h.store.ListPosts(c.Request.Context())
	if err != nil {
		h.metrics.IncPost("list", "error")
		h.logger.WithError(err).Error("Failed to list posts")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to load posts",
		})
		return
	}
	if posts == nil {
		posts = []content.Post{}
	}
	h.metrics.IncPost("list", "success")
	c.JSON(http.StatusOK, posts)
}

func (h *PostsHandler) Get(c *gin.Context) {
	post, err := h.store.GetPost(c.Request.Context(), c.Param("id"))
	if errors.Is(err, content.ErrNotFound) {
		h.metrics.IncPost("get", "not_found")
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Post not found",
		})
		return
	}
	if err != nil {
		h.metrics.IncPost("get", "error")
		h.logger.WithError(err).Error("Failed to load post")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to load post",
		})
		return
	}
	h.metrics.IncPost("get", "success")
	c.JSON(http.StatusOK, post)
}

func (h *PostsHandler) Create(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.IncPost("create", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request format",
		})
		return
	}

	post := content.Post{
		Platform:        content.Platform(req.Platform),
		Content:         req.Content,
		Hashtags:        req.Hashtags,
		ScheduledAt:     req.ScheduledAt,
		EngagementScore: req.EngagementScore,
	}
	if req.ImageURL != nil {
		post.ImageURL = *req.ImageURL
	}
	if req.ImagePrompt != nil {
		post.ImagePrompt = *req.ImagePrompt
	}
	if req.Status != nil {
		post.Status = content.Status(*req.Status)
	}

	created, err := h.store.CreatePost(c.Request.Context(), post)
	if errors.Is(err, content.ErrValidation) {
		h.metrics.IncPost("create", "validation_failed")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	if err != nil {
		h.metrics.IncPost("create", "error")
		h.logger.WithError(err).Error("Failed to create post")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to create post",
		})
		return
	}

	h.metrics.IncPost("create", "success")
	h.logger.WithFields(logging.Fields{
		"post_id":  created.ID,
		"platform": created.Platform,
		"status":   created.Status,
	}).Info("Post created")
	c.JSON(http.StatusCreated, created)
}

func (h *PostsHandler) Update(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.IncPost("update", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request format",
		})
		return
	}

	update := content.PostUpdate{
		ImageURL:        req.ImageURL,
		ImagePrompt:     req.ImagePrompt,
		ScheduledAt:     req.ScheduledAt,
		EngagementScore: req.EngagementScore,
	}
	if req.Content != "" {
		update.Content = &req.Content
	}
	if req.Hashtags != nil {
		update.Hashtags = &req.Hashtags
	}
	if req.Status != nil {
		status := content.Status(*req.Status)
		update.Status = &status
	}

	post, err := h.store.UpdatePost(c.Request.Context(), c.Param("id"), update)
	if errors.Is(err, content.ErrNotFound) {
		h.metrics.IncPost("update", "not_found")
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Post not found",
		})
		return
	}
	if errors.Is(err, content.ErrValidation) {
		h.metrics.IncPost("update", "validation_failed")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	if err != nil {
		h.metrics.IncPost("update", "error")
		h.logger.WithError(err).Error("Failed to update post")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to update post",
		})
		return
	}

	h.metrics.IncPost("update", "success")
	c.JSON(http.StatusOK, post)
}

func (h *PostsHandler) Delete(c *gin.Context) {
	err := h.store.DeletePost(c.Request.Context(), c.Param("id"))
	if errors.Is(err, content.ErrNotFound) {
		h.metrics.IncPost("delete", "not_found")
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Post not found",
		})
		return
	}
	if err != nil {
		h.metrics.IncPost("delete", "error")
		h.logger.WithError(err).Error("Failed to delete post")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to delete post",
		})
		return
	}

	h.metrics.IncPost("delete", "success")
	c.JSON(http.StatusOK, gin.H{"success": true})
}
