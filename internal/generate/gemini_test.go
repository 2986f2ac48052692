package generate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func geminiTestServer(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewGeminiClient(GeminiConfig{
		APIKey: "test-key",
		APIURL: server.URL,
	})
}

func textResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]interface{}{{"text": text}},
			}},
		},
	}
}

func TestGenerateJSONSendsSchemaAndKey(t *testing.T) {
	var captured geminiRequest
	client := geminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("unexpected api key header %q", got)
		}
		if r.URL.Path != "/models/gemini-2.5-flash:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(textResponse(`{"ok":true}`))
	})

	schema := map[string]interface{}{"type": "OBJECT"}
	raw, err := client.GenerateJSON(context.Background(), "system text", "user prompt", schema)
	if err != nil {
		t.Fatalf("generate json: %v", err)
	}
	if string(raw) != `{"ok":true}` {
		t.Fatalf("unexpected payload %s", raw)
	}

	if captured.GenerationConfig == nil || captured.GenerationConfig.ResponseMimeType != "application/json" {
		t.Fatal("expected JSON response mode in request")
	}
	if captured.SystemInstruction == nil || captured.SystemInstruction.Parts[0].Text != "system text" {
		t.Fatal("expected system instruction in request")
	}
	if captured.Contents[0].Parts[0].Text != "user prompt" {
		t.Fatal("expected prompt in request contents")
	}
}

func TestGenerateTextTrimsResponse(t *testing.T) {
	client := geminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(textResponse("  some text \n"))
	})

	text, err := client.GenerateText(context.Background(), "", "prompt")
	if err != nil {
		t.Fatalf("generate text: %v", err)
	}
	if text != "some text" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestGenerateImageBuildsDataURL(t *testing.T) {
	client := geminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-2.5-flash-image:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]interface{}{
						{"inlineData": map[string]interface{}{
							"mimeType": "image/png",
							"data":     "aGVsbG8=",
						}},
					},
				}},
			},
		})
	})

	ref, err := client.GenerateImage(context.Background(), "a sunset")
	if err != nil {
		t.Fatalf("generate image: %v", err)
	}
	if ref != "data:image/png;base64,aGVsbG8=" {
		t.Fatalf("unexpected image ref %q", ref)
	}
}

func TestMissingAPIKey(t *testing.T) {
	client := NewGeminiClient(GeminiConfig{})

	_, err := client.GenerateText(context.Background(), "", "prompt")
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestProviderErrorOnNon2xx(t *testing.T) {
	client := geminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := client.GenerateText(context.Background(), "", "prompt")
	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if providerErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("unexpected status %d", providerErr.StatusCode)
	}
}

func TestEmptyResponseIsError(t *testing.T) {
	client := geminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"candidates": []interface{}{}})
	})

	if _, err := client.GenerateText(context.Background(), "", "prompt"); err == nil {
		t.Fatal("expected error for empty response")
	}
}
