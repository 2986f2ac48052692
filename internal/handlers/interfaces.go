package handlers

import (
	"context"

	"github.com/spycce/SMPost/internal/content"
	"github.com/spycce/SMPost/internal/generate"
)

// Generator is the AI content service the API handlers call. Satisfied
// by *generate.Service in production and by stubs in tests.
type Generator interface {
	GeneratePost(ctx context.Context, req generate.PostRequest) (generate.GeneratedContent, error)
	ScorePost(ctx context.Context, postContent string, platform content.Platform) (generate.ScoreResult, error)
	Trends(ctx context.Context, industry string) ([]generate.Trend, error)
	Hashtags(ctx context.Context, topic string, platform content.Platform) ([]string, error)
	Repurpose(ctx context.Context, postContent string, target content.Platform) (string, error)
	GenerateImage(ctx context.Context, prompt string) (string, error)
}
