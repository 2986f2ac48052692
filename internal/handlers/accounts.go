package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/spycce/SMPost/internal/content"
	"github.com/spycce/SMPost/internal/logging"
)

type AccountsHandler struct {
	store   content.Store
	logger  logging.Logger
	metrics *APIMetrics
}

func NewAccountsHandler(store content.Store, logger logging.Logger, metrics *APIMetrics) *AccountsHandler {
	return &AccountsHandler{
		store:   store,
		logger:  logger,
		metrics: metrics,
	}
}

// List returns every platform's account record, seeding disconnected
// defaults the first time the store is empty.
func (h *AccountsHandler) List(c *gin.Context) {
	accounts, err := h.listSeeded(c.Request.Context())
	if err != nil {
		h.metrics.IncAccount("list", "error")
		h.logger.WithError(err).Error("Failed to list accounts")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to load accounts",
		})
		return
	}
	h.metrics.IncAccount("list", "success")
	c.JSON(http.StatusOK, accounts)
}

type connectRequest struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
}

// Connect marks an account connected with a mock OAuth token and
// returns the full account list, matching what the dashboard renders.
func (h *AccountsHandler) Connect(c *gin.Context) {
	var req connectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		h.metrics.IncAccount("connect", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request format",
		})
		return
	}

	handle := req.Handle
	if handle == "" {
		handle = "@demo_user"
	}
	token := mockAccessToken()

	account, err := h.store.ConnectAccount(c.Request.Context(), req.ID, handle, token)
	if errors.Is(err, content.ErrNotFound) {
		h.metrics.IncAccount("connect", "not_found")
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Account not found",
		})
		return
	}
	if err != nil {
		h.metrics.IncAccount("connect", "error")
		h.logger.WithError(err).Error("Failed to connect account")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to connect account",
		})
		return
	}

	h.metrics.IncAccount("connect", "success")
	h.logger.WithFields(logging.Fields{
		"account_id": account.ID,
		"platform":   account.Platform,
		"handle":     account.Handle,
	}).Info("Account connected")

	h.respondWithAccounts(c)
}

type disconnectRequest struct {
	ID string `json:"id"`
}

func (h *AccountsHandler) Disconnect(c *gin.Context) {
	var req disconnectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		h.metrics.IncAccount("disconnect", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request format",
		})
		return
	}

	account, err := h.store.DisconnectAccount(c.Request.Context(), req.ID)
	if errors.Is(err, content.ErrNotFound) {
		h.metrics.IncAccount("disconnect", "not_found")
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Account not found",
		})
		return
	}
	if err != nil {
		h.metrics.IncAccount("disconnect", "error")
		h.logger.WithError(err).Error("Failed to disconnect account")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to disconnect account",
		})
		return
	}

	h.metrics.IncAccount("disconnect", "success")
	h.logger.WithFields(logging.Fields{
		"account_id": account.ID,
		"platform":   account.Platform,
	}).Info("Account disconnected")

	h.respondWithAccounts(c)
}

func (h *AccountsHandler) listSeeded(ctx context.Context) ([]content.SocialAccount, error) {
	accounts, err := h.store.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		if err := h.store.SeedAccounts(ctx); err != nil {
			return nil, err
		}
		accounts, err = h.store.ListAccounts(ctx)
		if err != nil {
			return nil, err
		}
	}
	return accounts, nil
}

func (h *AccountsHandler) respondWithAccounts(c *gin.Context) {
	accounts, err := h.store.ListAccounts(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to reload accounts")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to load accounts",
		})
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func mockAccessToken() string {
	return fmt.Sprintf("mock_token_%s", uuid.NewString()[:8])
}
