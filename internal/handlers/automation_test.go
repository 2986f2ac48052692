package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/spycce/SMPost/internal/content"
	"github.com/spycce/SMPost/internal/generate"
)

type automationHarness struct {
	router  *gin.Engine
	store   *content.MemoryStore
	stub    *generatorStub
	handler *AutomationHandler
}

func setupAutomationHandler(stub *generatorStub) *automationHarness {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	store := content.NewMemoryStore()
	handler := NewAutomationHandler(store, stub, "Digital Marketing", testLogger(), nil)
	router.POST("/api/automation/run", handler.Run)
	return &automationHarness{router: router, store: store, stub: stub, handler: handler}
}

func connectPlatform(t *testing.T, store *content.MemoryStore, platform content.Platform) {
	t.Helper()
	ctx := context.Background()
	if err := store.SeedAccounts(ctx); err != nil {
		t.Fatalf("seed accounts: %v", err)
	}
	account, err := store.AccountByPlatform(ctx, platform)
	if err != nil {
		t.Fatalf("account by platform: %v", err)
	}
	if _, err := store.ConnectAccount(ctx, account.ID, "@auto", "mock_token_auto"); err != nil {
		t.Fatalf("connect account: %v", err)
	}
}

func TestAutomationRequiresConnectedAccount(t *testing.T) {
	h := setupAutomationHandler(&generatorStub{})

	resp := doJSON(t, h.router, http.MethodPost, "/api/automation/run", nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
	}
	if h.stub.trendsCalls != 0 {
		t.Fatal("trends must not be fetched without a connected account")
	}
}

func TestAutomationSchedulesPostsFromTrends(t *testing.T) {
	stub := &generatorStub{
		trends: []generate.Trend{
			{Topic: "AI Marketing"},
			{Topic: "SEO Tips"},
			{Topic: "Brand Storytelling"},
		},
		post: generate.GeneratedContent{Text: "generated body", Hashtags: []string{"#trend"}},
	}
	h := setupAutomationHandler(stub)
	connectPlatform(t, h.store, content.PlatformLinkedIn)

	base := time.Date(2026, time.March, 9, 15, 30, 0, 0, time.UTC)
	h.handler.now = func() time.Time { return base }

	resp := doJSON(t, h.router, http.MethodPost, "/api/automation/run", map[string]interface{}{
		"industry": "SaaS",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Success bool           `json:"success"`
		Posts   []content.Post `json:"posts"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Posts) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(body.Posts))
	}

	firstSlot := time.Date(2026, time.March, 10, 10, 0, 0, 0, time.UTC)
	for i, post := range body.Posts {
		if post.Status != content.StatusScheduled {
			t.Fatalf("post %d: expected Scheduled, got %s", i, post.Status)
		}
		if post.Platform != content.PlatformLinkedIn {
			t.Fatalf("post %d: expected LinkedIn, got %s", i, post.Platform)
		}
		want := firstSlot.Add(time.Duration(i) * 4 * time.Hour)
		if post.ScheduledAt == nil || !post.ScheduledAt.Equal(want) {
			t.Fatalf("post %d: expected slot %v, got %v", i, want, post.ScheduledAt)
		}
	}

	stored, err := h.store.ListPosts(context.Background())
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("expected 3 stored posts, got %d", len(stored))
	}
}

func TestAutomationRoundRobinsConnectedAccounts(t *testing.T) {
	stub := &generatorStub{
		trends: []generate.Trend{
			{Topic: "One"},
			{Topic: "Two"},
			{Topic: "Three"},
		},
		post: generate.GeneratedContent{Text: "body"},
	}
	h := setupAutomationHandler(stub)
	connectPlatform(t, h.store, content.PlatformInstagram)
	connectPlatform(t, h.store, content.PlatformTwitter)

	resp := doJSON(t, h.router, http.MethodPost, "/api/automation/run", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Posts []content.Post `json:"posts"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	counts := map[content.Platform]int{}
	for _, post := range body.Posts {
		counts[post.Platform]++
	}
	if counts[content.PlatformInstagram] == 0 || counts[content.PlatformTwitter] == 0 {
		t.Fatalf("expected posts spread across both accounts, got %v", counts)
	}
}

func TestAutomationFallsBackWhenTrendsFail(t *testing.T) {
	stub := &generatorStub{
		post: generate.GeneratedContent{Text: "fallback body"},
	}
	h := setupAutomationHandler(stub)
	connectPlatform(t, h.store, content.PlatformFacebook)

	resp := doJSON(t, h.router, http.MethodPost, "/api/automation/run", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Posts []content.Post `json:"posts"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Posts) != len(fallbackTrends) {
		t.Fatalf("expected %d fallback posts, got %d", len(fallbackTrends), len(body.Posts))
	}
}
