package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/spycce/SMPost/internal/content"
)

type accountsHarness struct {
	router *gin.Engine
	store  *content.MemoryStore
}

func setupAccountsHandler() *accountsHarness {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	store := content.NewMemoryStore()
	handler := NewAccountsHandler(store, testLogger(), nil)
	router.GET("/api/accounts", handler.List)
	router.POST("/api/accounts/connect", handler.Connect)
	router.POST("/api/accounts/disconnect", handler.Disconnect)
	return &accountsHarness{router: router, store: store}
}

func TestListAccountsSeedsDefaults(t *testing.T) {
	h := setupAccountsHandler()

	resp := doJSON(t, h.router, http.MethodGet, "/api/accounts", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var accounts []content.SocialAccount
	if err := json.Unmarshal(resp.Body.Bytes(), &accounts); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(accounts) != len(content.Platforms) {
		t.Fatalf("expected %d seeded accounts, got %d", len(content.Platforms), len(accounts))
	}
	for _, a := range accounts {
		if a.Connected {
			t.Fatalf("seeded account %s must start disconnected", a.Platform)
		}
		if a.Handle != "" {
			t.Fatalf("seeded account %s must start with a blank handle", a.Platform)
		}
	}
}

func TestConnectAccount(t *testing.T) {
	h := setupAccountsHandler()
	ctx := context.Background()
	if err := h.store.SeedAccounts(ctx); err != nil {
		t.Fatalf("seed accounts: %v", err)
	}
	account, err := h.store.AccountByPlatform(ctx, content.PlatformTwitter)
	if err != nil {
		t.Fatalf("account by platform: %v", err)
	}

	resp := doJSON(t, h.router, http.MethodPost, "/api/accounts/connect", map[string]interface{}{
		"id":     account.ID,
		"handle": "@acme",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	connected, err := h.store.AccountByPlatform(ctx, content.PlatformTwitter)
	if err != nil {
		t.Fatalf("account by platform: %v", err)
	}
	if !connected.Connected {
		t.Fatal("expected account to be connected")
	}
	if connected.Handle != "@acme" {
		t.Fatalf("unexpected handle %q", connected.Handle)
	}
	if !strings.HasPrefix(connected.AccessToken, "mock_token_") {
		t.Fatalf("unexpected access token %q", connected.AccessToken)
	}
	if connected.LastSync == nil {
		t.Fatal("expected lastSync to be set")
	}
}

func TestConnectAccountNotFound(t *testing.T) {
	h := setupAccountsHandler()

	resp := doJSON(t, h.router, http.MethodPost, "/api/accounts/connect", map[string]interface{}{
		"id": "missing",
	})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestDisconnectAccountClearsToken(t *testing.T) {
	h := setupAccountsHandler()
	ctx := context.Background()
	if err := h.store.SeedAccounts(ctx); err != nil {
		t.Fatalf("seed accounts: %v", err)
	}
	account, err := h.store.AccountByPlatform(ctx, content.PlatformInstagram)
	if err != nil {
		t.Fatalf("account by platform: %v", err)
	}
	if _, err := h.store.ConnectAccount(ctx, account.ID, "@brand", "mock_token_abc"); err != nil {
		t.Fatalf("connect account: %v", err)
	}

	resp := doJSON(t, h.router, http.MethodPost, "/api/accounts/disconnect", map[string]interface{}{
		"id": account.ID,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	got, err := h.store.AccountByPlatform(ctx, content.PlatformInstagram)
	if err != nil {
		t.Fatalf("account by platform: %v", err)
	}
	if got.Connected {
		t.Fatal("expected account to be disconnected")
	}
	if got.AccessToken != "" {
		t.Fatalf("expected access token cleared, got %q", got.AccessToken)
	}
}
