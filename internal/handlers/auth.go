package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/spycce/SMPost/internal/auth"
	"github.com/spycce/SMPost/internal/content"
	"github.com/spycce/SMPost/internal/logging"
)

type AuthHandler struct {
	store       content.Store
	jwtSecret   []byte
	frontendURL string
	logger      logging.Logger
	metrics     *APIMetrics
}

func NewAuthHandler(store content.Store, jwtSecret []byte, frontendURL string, logger logging.Logger, metrics *APIMetrics) *AuthHandler {
	return &AuthHandler{
		store:       store,
		jwtSecret:   jwtSecret,
		frontendURL: frontendURL,
		logger:      logger,
		metrics:     metrics,
	}
}

// Authorize starts the mock OAuth flow for a platform. A real
// deployment would redirect to the platform's consent screen; here we
// bounce straight to our own callback.
func (h *AuthHandler) Authorize(c *gin.Context) {
	platform, err := content.ParsePlatform(c.Param("platform"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Unknown platform",
		})
		return
	}

	state := uuid.NewString()
	callback := fmt.Sprintf("/api/auth/%s/callback?state=%s", platform, state)
	c.Redirect(http.StatusFound, callback)
}

// Callback completes the mock OAuth flow: it connects the platform's
// account with a generated token and sends the browser back to the
// dashboard.
func (h *AuthHandler) Callback(c *gin.Context) {
	platform, err := content.ParsePlatform(c.Param("platform"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Unknown platform",
		})
		return
	}

	ctx := c.Request.Context()
	account, err := h.store.AccountByPlatform(ctx, platform)
	if errors.Is(err, content.ErrNotFound) {
		if err := h.store.SeedAccounts(ctx); err != nil {
			h.logger.WithError(err).Error("Failed to seed accounts")
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Failed to connect account",
			})
			return
		}
		account, err = h.store.AccountByPlatform(ctx, platform)
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to resolve account")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to connect account",
		})
		return
	}

	handle := c.Query("handle")
	if handle == "" {
		handle = "@demo_user"
	}

	connected, err := h.store.ConnectAccount(ctx, account.ID, handle, mockAccessToken())
	if err != nil {
		h.logger.WithError(err).Error("Failed to connect account")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to connect account",
		})
		return
	}

	h.logger.WithFields(logging.Fields{
		"account_id": connected.ID,
		"platform":   connected.Platform,
	}).Info("OAuth callback connected account")

	c.Redirect(http.StatusFound, h.frontendURL+"/connections")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login is a stub session endpoint: any email gets a signed session
// token for the demo user.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request format",
		})
		return
	}

	token, err := auth.GenerateJWT("u_123", req.Email, "Demo User", h.jwtSecret)
	if err != nil {
		h.logger.WithError(err).Error("Failed to sign session token")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to create session",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":    "u_123",
			"name":  "Demo User",
			"email": req.Email,
		},
	})
}
