package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/spycce/SMPost/internal/content"
	"github.com/spycce/SMPost/internal/generate"
	"github.com/spycce/SMPost/internal/logging"
)

const (
	automationMaxPosts = 3
	automationSpacing  = 4 * time.Hour
	automationHour     = 10
)

// fallbackTrends is used when the AI provider can't supply trends, so
// auto-pilot still produces a schedule.
var fallbackTrends = []generate.Trend{
	{Topic: "AI Marketing"},
	{Topic: "SEO Tips"},
	{Topic: "Brand Storytelling"},
}

type AutomationHandler struct {
	store     content.Store
	generator Generator
	industry  string
	logger    logging.Logger
	metrics   *APIMetrics
	now       func() time.Time
}

func NewAutomationHandler(store content.Store, generator Generator, industry string, logger logging.Logger, metrics *APIMetrics) *AutomationHandler {
	return &AutomationHandler{
		store:     store,
		generator: generator,
		industry:  industry,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
	}
}

type automationRequest struct {
	Industry string `json:"industry"`
}

// Run is the auto-pilot trigger: fetch trends, generate a post per
// trend, and schedule the batch across the connected accounts starting
// tomorrow morning.
func (h *AutomationHandler) Run(c *gin.Context) {
	var req automationRequest
	// Body is optional; industry falls back to the configured default.
	_ = c.ShouldBindJSON(&req)
	industry := req.Industry
	if industry == "" {
		industry = h.industry
	}

	ctx := c.Request.Context()

	connected, err := h.connectedAccounts(ctx)
	if err != nil {
		h.metrics.IncAutomation("error")
		h.logger.WithError(err).Error("Failed to load accounts")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to load accounts",
		})
		return
	}
	if len(connected) == 0 {
		h.metrics.IncAutomation("no_accounts")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Connect at least one social account before running auto-pilot",
		})
		return
	}

	trends, err := h.generator.Trends(ctx, industry)
	if err != nil || len(trends) == 0 {
		h.logger.WithError(err).Warn("Trend lookup failed, using fallback topics")
		trends = fallbackTrends
	}
	if len(trends) > automationMaxPosts {
		trends = trends[:automationMaxPosts]
	}

	firstSlot := h.firstSlot()
	created := make([]content.Post, len(trends))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(automationMaxPosts)

	for i, trend := range trends {
		i, trend := i, trend
		account := connected[i%len(connected)]
		slot := firstSlot.Add(time.Duration(i) * automationSpacing)

		g.Go(func() error {
			result, err := h.generator.GeneratePost(gctx, generate.PostRequest{
				Topic:    trend.Topic,
				Platform: account.Platform,
				Tone:     "Professional",
			})
			if err != nil {
				return err
			}

			post, err := h.store.CreatePost(gctx, content.Post{
				Platform:    account.Platform,
				Content:     result.Text,
				Hashtags:    result.Hashtags,
				ImagePrompt: result.ImagePrompt,
				Status:      content.StatusScheduled,
				ScheduledAt: &slot,
			})
			if err != nil {
				return err
			}

			mu.Lock()
			created[i] = post
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		h.metrics.IncAutomation("error")
		h.logger.WithError(err).Error("Auto-pilot run failed")
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error":   "Auto-pilot run failed",
		})
		return
	}

	h.metrics.IncAutomation("success")
	h.logger.WithFields(logging.Fields{
		"posts":    len(created),
		"industry": industry,
	}).Info("Auto-pilot scheduled posts")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"posts":   created,
	})
}

func (h *AutomationHandler) connectedAccounts(ctx context.Context) ([]content.SocialAccount, error) {
	accounts, err := h.store.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	var connected []content.SocialAccount
	for _, a := range accounts {
		if a.Connected {
			connected = append(connected, a)
		}
	}
	return connected, nil
}

// firstSlot is 10:00 tomorrow in the server's timezone.
func (h *AutomationHandler) firstSlot() time.Time {
	now := h.now()
	tomorrow := now.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), automationHour, 0, 0, 0, now.Location())
}
