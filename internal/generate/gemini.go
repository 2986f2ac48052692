package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrMissingCredentials is returned when no API key is configured. It is
// distinct from provider-side failures so callers can tell a deployment
// problem from a transient one.
var ErrMissingCredentials = errors.New("gemini: API key not configured")

// ProviderError is a non-2xx response from the generation provider.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("gemini: unexpected status %d: %s", e.StatusCode, e.Message)
}

// Client is the generative backend the content service talks to.
// GenerateJSON constrains the response to a JSON document matching
// schema; GenerateText returns plain text; GenerateImage returns an
// image reference (a data URL).
type Client interface {
	GenerateJSON(ctx context.Context, system, prompt string, schema map[string]interface{}) ([]byte, error)
	GenerateText(ctx context.Context, system, prompt string) (string, error)
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// GeminiConfig configures the Gemini REST client.
type GeminiConfig struct {
	APIKey     string
	APIURL     string
	Model      string
	ImageModel string
}

type GeminiClient struct {
	client     *http.Client
	apiKey     string
	apiURL     string
	model      string
	imageModel string
}

func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	imageModel := cfg.ImageModel
	if imageModel == "" {
		imageModel = "gemini-2.5-flash-image"
	}
	return &GeminiClient{
		client:     &http.Client{Timeout: 60 * time.Second},
		apiKey:     cfg.APIKey,
		apiURL:     apiURL,
		model:      model,
		imageModel: imageModel,
	}
}

type geminiRequest struct {
	Contents          []geminiContent   `json:"contents"`
	SystemInstruction *geminiContent    `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMimeType string                 `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]interface{} `json:"responseSchema,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (c *GeminiClient) GenerateJSON(ctx context.Context, system, prompt string, schema map[string]interface{}) ([]byte, error) {
	resp, err := c.generateContent(ctx, c.model, system, prompt, &generationConfig{
		ResponseMimeType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return nil, err
	}
	text := firstText(resp)
	if text == "" {
		return nil, fmt.Errorf("gemini: empty response")
	}
	return []byte(text), nil
}

func (c *GeminiClient) GenerateText(ctx context.Context, system, prompt string) (string, error) {
	resp, err := c.generateContent(ctx, c.model, system, prompt, nil)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(firstText(resp))
	if text == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return text, nil
}

func (c *GeminiClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	resp, err := c.generateContent(ctx, c.imageModel, "", prompt, nil)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) > 0 {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				mime := part.InlineData.MimeType
				if mime == "" {
					mime = "image/png"
				}
				return "data:" + mime + ";base64," + part.InlineData.Data, nil
			}
		}
	}
	return "", fmt.Errorf("gemini: response contained no image data")
}

func (c *GeminiClient) generateContent(ctx context.Context, model, system, prompt string, genCfg *generationConfig) (*geminiResponse, error) {
	if c.apiKey == "" {
		return nil, ErrMissingCredentials
	}

	reqBody := geminiRequest{
		Contents:         []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: genCfg,
	}
	if system != "" {
		reqBody.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("gemini: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.apiURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("gemini: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gemini: read response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("gemini: decode response: %w", err)
	}
	return &parsed, nil
}

func firstText(resp *geminiResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}
