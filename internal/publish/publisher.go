package publish

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/spycce/SMPost/internal/content"
	"github.com/spycce/SMPost/internal/logging"
)

// ErrNoCredential is returned when a post targets a platform with no
// usable credential.
var ErrNoCredential = errors.New("no credential for platform")

// Publisher delivers a post to its target platform using the account
// credential resolved by the caller.
type Publisher interface {
	Publish(ctx context.Context, post content.Post, credential string) error
}

// MockPublisherConfig configures the simulated publisher.
type MockPublisherConfig struct {
	// MinDelay and MaxDelay bound the simulated network latency. Both
	// zero disables the delay entirely (used in tests).
	MinDelay time.Duration
	MaxDelay time.Duration
	Logger   logging.Logger
}

// MockPublisher simulates platform delivery. It stands in for the real
// platform APIs: it validates the credential, sleeps a bounded random
// latency, and honors context cancellation.
type MockPublisher struct {
	minDelay time.Duration
	maxDelay time.Duration
	logger   logging.Logger
	rng      *rand.Rand
}

func NewMockPublisher(cfg MockPublisherConfig) *MockPublisher {
	if cfg.MaxDelay < cfg.MinDelay {
		cfg.MaxDelay = cfg.MinDelay
	}
	return &MockPublisher{
		minDelay: cfg.MinDelay,
		maxDelay: cfg.MaxDelay,
		logger:   cfg.Logger,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (p *MockPublisher) Publish(ctx context.Context, post content.Post, credential string) error {
	if credential == "" {
		return ErrNoCredential
	}

	if delay := p.delay(); delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if p.logger != nil {
		p.logger.WithFields(logging.Fields{
			"post_id":  post.ID,
			"platform": post.Platform,
		}).Info("Post delivered to platform")
	}
	return nil
}

func (p *MockPublisher) delay() time.Duration {
	if p.maxDelay <= 0 {
		return 0
	}
	span := p.maxDelay - p.minDelay
	if span <= 0 {
		return p.minDelay
	}
	return p.minDelay + time.Duration(p.rng.Int63n(int64(span)))
}
