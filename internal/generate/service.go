package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spycce/SMPost/internal/content"
	"github.com/spycce/SMPost/internal/logging"
)

const generateTimeout = 45 * time.Second

const managerSystemPrompt = "You are an expert social media manager."

// GeneratedContent is the structured result of a post generation call.
type GeneratedContent struct {
	Text        string   `json:"text"`
	Variants    []string `json:"variants,omitempty"`
	Hashtags    []string `json:"hashtags"`
	ImagePrompt string   `json:"imagePrompt,omitempty"`
}

// ScoreResult rates a draft post's engagement potential.
type ScoreResult struct {
	Score    float64 `json:"score"`
	Critique string  `json:"critique"`
}

// Trend is a trending topic suggestion for an industry.
type Trend struct {
	Topic     string  `json:"topic"`
	Sentiment string  `json:"sentiment"`
	Relevance float64 `json:"relevance"`
}

// PostRequest describes a post generation call.
type PostRequest struct {
	Topic        string
	Platform     content.Platform
	Tone         string
	IncludeEmoji bool
	BrandVoice   string
	Variants     int
}

// Service wraps the generative client with the prompt and schema
// knowledge for each dashboard operation.
type Service struct {
	client Client
	logger logging.Logger
}

func NewService(client Client, logger logging.Logger) *Service {
	return &Service{client: client, logger: logger}
}

func (s *Service) GeneratePost(ctx context.Context, req PostRequest) (GeneratedContent, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	variants := req.Variants
	if variants < 1 {
		variants = 1
	}

	system := managerSystemPrompt
	if req.BrandVoice != "" {
		system = fmt.Sprintf("You are an expert social media manager. Adopt the following Brand Voice: %q.", req.BrandVoice)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d post variation(s) for %s.\n", variants, req.Platform)
	fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	fmt.Fprintf(&b, "Tone: %s\n", req.Tone)
	fmt.Fprintf(&b, "Include Emojis: %t\n\n", req.IncludeEmoji)
	b.WriteString("If requesting multiple variants, provide distinctly different angles (e.g., one question-based, one story-based, one value-based).\n")

	schema := map[string]interface{}{
		"type": "OBJECT",
		"properties": map[string]interface{}{
			"text":        map[string]interface{}{"type": "STRING"},
			"variants":    map[string]interface{}{"type": "ARRAY", "items": map[string]interface{}{"type": "STRING"}},
			"hashtags":    map[string]interface{}{"type": "ARRAY", "items": map[string]interface{}{"type": "STRING"}},
			"imagePrompt": map[string]interface{}{"type": "STRING"},
		},
		"required": []string{"text", "hashtags", "imagePrompt"},
	}

	raw, err := s.client.GenerateJSON(ctx, system, b.String(), schema)
	if err != nil {
		return GeneratedContent{}, fmt.Errorf("generate post: %w", err)
	}

	var result GeneratedContent
	if err := json.Unmarshal(raw, &result); err != nil {
		return GeneratedContent{}, fmt.Errorf("generate post: decode result: %w", err)
	}
	if result.Hashtags == nil {
		result.Hashtags = []string{}
	}
	return result, nil
}

func (s *Service) ScorePost(ctx context.Context, postContent string, platform content.Platform) (ScoreResult, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	prompt := fmt.Sprintf(`Analyze this social media post for %s:
%q

Rate it from 0 to 100 based on engagement potential, clarity, and platform best practices.
Provide a short critique on how to improve it.`, platform, postContent)

	schema := map[string]interface{}{
		"type": "OBJECT",
		"properties": map[string]interface{}{
			"score":    map[string]interface{}{"type": "NUMBER"},
			"critique": map[string]interface{}{"type": "STRING"},
		},
	}

	raw, err := s.client.GenerateJSON(ctx, managerSystemPrompt, prompt, schema)
	if err != nil {
		return ScoreResult{}, fmt.Errorf("score post: %w", err)
	}

	var result ScoreResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return ScoreResult{}, fmt.Errorf("score post: decode result: %w", err)
	}
	return result, nil
}

func (s *Service) Trends(ctx context.Context, industry string) ([]Trend, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	prompt := fmt.Sprintf(`Identify 3 trending topics or hashtags relevant to the %s industry right now.
Return a JSON array of objects with topic, sentiment (Positive/Neutral/Negative), and relevance score (1-10).`, industry)

	schema := map[string]interface{}{
		"type": "ARRAY",
		"items": map[string]interface{}{
			"type": "OBJECT",
			"properties": map[string]interface{}{
				"topic":     map[string]interface{}{"type": "STRING"},
				"sentiment": map[string]interface{}{"type": "STRING"},
				"relevance": map[string]interface{}{"type": "NUMBER"},
			},
			"required": []string{"topic"},
		},
	}

	raw, err := s.client.GenerateJSON(ctx, managerSystemPrompt, prompt, schema)
	if err != nil {
		return nil, fmt.Errorf("trends: %w", err)
	}

	var trends []Trend
	if err := json.Unmarshal(raw, &trends); err != nil {
		return nil, fmt.Errorf("trends: decode result: %w", err)
	}
	return trends, nil
}

func (s *Service) Hashtags(ctx context.Context, topic string, platform content.Platform) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	prompt := fmt.Sprintf(`Generate 10 trending and relevant hashtags for a %s post about %q.
Return ONLY a JSON array of strings, e.g. ["#tag1", "#tag2"].`, platform, topic)

	schema := map[string]interface{}{
		"type":  "ARRAY",
		"items": map[string]interface{}{"type": "STRING"},
	}

	raw, err := s.client.GenerateJSON(ctx, managerSystemPrompt, prompt, schema)
	if err != nil {
		return nil, fmt.Errorf("hashtags: %w", err)
	}

	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, fmt.Errorf("hashtags: decode result: %w", err)
	}
	return tags, nil
}

func (s *Service) Repurpose(ctx context.Context, postContent string, target content.Platform) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	prompt := fmt.Sprintf(`Repurpose the following content for %s.
Original Content: %q

Adapt the tone, length, and style to fit %s best practices.
Return only the new post text.`, target, postContent, target)

	text, err := s.client.GenerateText(ctx, managerSystemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("repurpose: %w", err)
	}
	return text, nil
}

func (s *Service) GenerateImage(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	ref, err := s.client.GenerateImage(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate image: %w", err)
	}
	return ref, nil
}
