package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spycce/SMPost/internal/content"
	"github.com/spycce/SMPost/internal/generate"
	"github.com/spycce/SMPost/internal/logging"
)

type AIHandler struct {
	generator Generator
	logger    logging.Logger
	metrics   *APIMetrics
}

func NewAIHandler(generator Generator, logger logging.Logger, metrics *APIMetrics) *AIHandler {
	return &AIHandler{
		generator: generator,
		logger:    logger,
		metrics:   metrics,
	}
}

type generateRequest struct {
	Topic        string `json:"topic"`
	Platform     string `json:"platform"`
	Tone         string `json:"tone"`
	IncludeEmoji bool   `json:"includeEmojis"`
	BrandVoice   string `json:"brandVoice"`
	Variants     int    `json:"variantsCount"`
}

func (h *AIHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Topic == "" {
		h.metrics.IncAI("generate", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request format",
		})
		return
	}
	platform, err := content.ParsePlatform(req.Platform)
	if err != nil {
		h.metrics.IncAI("generate", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Unknown platform",
		})
		return
	}

	result, err := h.generator.GeneratePost(c.Request.Context(), generate.PostRequest{
		Topic:        req.Topic,
		Platform:     platform,
		Tone:         req.Tone,
		IncludeEmoji: req.IncludeEmoji,
		BrandVoice:   req.BrandVoice,
		Variants:     req.Variants,
	})
	if err != nil {
		h.aiError(c, "generate", err)
		return
	}

	h.metrics.IncAI("generate", "success")
	c.JSON(http.StatusOK, result)
}

type scoreRequest struct {
	Content  string `json:"content"`
	Platform string `json:"platform"`
}

func (h *AIHandler) Score(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
		h.metrics.IncAI("score", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request format",
		})
		return
	}
	platform, err := content.ParsePlatform(req.Platform)
	if err != nil {
		h.metrics.IncAI("score", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Unknown platform",
		})
		return
	}

	result, err := h.generator.ScorePost(c.Request.Context(), req.Content, platform)
	if err != nil {
		h.aiError(c, "score", err)
		return
	}

	h.metrics.IncAI("score", "success")
	c.JSON(http.StatusOK, result)
}

type trendsRequest struct {
	Industry string `json:"industry"`
}

func (h *AIHandler) Trends(c *gin.Context) {
	var req trendsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Industry == "" {
		h.metrics.IncAI("trends", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request format",
		})
		return
	}

	trends, err := h.generator.Trends(c.Request.Context(), req.Industry)
	if err != nil {
		h.aiError(c, "trends", err)
		return
	}

	h.metrics.IncAI("trends", "success")
	c.JSON(http.StatusOK, trends)
}

type hashtagsRequest struct {
	Topic    string `json:"topic"`
	Platform string `json:"platform"`
}

func (h *AIHandler) Hashtags(c *gin.Context) {
	var req hashtagsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Topic == "" {
		h.metrics.IncAI("hashtags", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request format",
		})
		return
	}
	platform, err := content.ParsePlatform(req.Platform)
	if err != nil {
		h.metrics.IncAI("hashtags", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Unknown platform",
		})
		return
	}

	tags, err := h.generator.Hashtags(c.Request.Context(), req.Topic, platform)
	if err != nil {
		h.aiError(c, "hashtags", err)
		return
	}

	h.metrics.IncAI("hashtags", "success")
	c.JSON(http.StatusOK, tags)
}

type repurposeRequest struct {
	Content        string `json:"content"`
	TargetPlatform string `json:"targetPlatform"`
}

func (h *AIHandler) Repurpose(c *gin.Context) {
	var req repurposeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
		h.metrics.IncAI("repurpose", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request format",
		})
		return
	}
	platform, err := content.ParsePlatform(req.TargetPlatform)
	if err != nil {
		h.metrics.IncAI("repurpose", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Unknown platform",
		})
		return
	}

	text, err := h.generator.Repurpose(c.Request.Context(), req.Content, platform)
	if err != nil {
		h.aiError(c, "repurpose", err)
		return
	}

	h.metrics.IncAI("repurpose", "success")
	c.JSON(http.StatusOK, gin.H{"content": text})
}

type imageRequest struct {
	Prompt string `json:"prompt"`
}

func (h *AIHandler) Image(c *gin.Context) {
	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Prompt == "" {
		h.metrics.IncAI("image", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request format",
		})
		return
	}

	ref, err := h.generator.GenerateImage(c.Request.Context(), req.Prompt)
	if err != nil {
		h.aiError(c, "image", err)
		return
	}

	h.metrics.IncAI("image", "success")
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    ref,
	})
}

// aiError maps generation failures to HTTP responses. Missing
// credentials and provider errors both surface as 502 so the dashboard
// can distinguish "our backend broke" from "the AI provider is down".
func (h *AIHandler) aiError(c *gin.Context, op string, err error) {
	var providerErr *generate.ProviderError

	switch {
	case errors.Is(err, generate.ErrMissingCredentials):
		h.metrics.IncAI(op, "missing_credentials")
		h.logger.Warn("AI request rejected: no API key configured")
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error":   "AI provider is not configured",
		})
	case errors.As(err, &providerErr):
		h.metrics.IncAI(op, "provider_error")
		h.logger.WithFields(logging.Fields{
			"status": providerErr.StatusCode,
			"op":     op,
		}).Error("AI provider request failed")
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error":   "AI provider request failed",
		})
	default:
		h.metrics.IncAI(op, "error")
		h.logger.WithError(err).WithField("op", op).Error("AI request failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "AI request failed",
		})
	}
}
