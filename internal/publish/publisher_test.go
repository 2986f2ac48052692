package publish

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/spycce/SMPost/internal/content"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestPublishRequiresCredential(t *testing.T) {
	pub := NewMockPublisher(MockPublisherConfig{Logger: testLogger()})

	err := pub.Publish(context.Background(), content.Post{ID: "p1", Platform: content.PlatformTwitter}, "")
	if !errors.Is(err, ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
}

func TestPublishSucceedsWithoutDelay(t *testing.T) {
	pub := NewMockPublisher(MockPublisherConfig{Logger: testLogger()})

	if err := pub.Publish(context.Background(), content.Post{ID: "p1", Platform: content.PlatformTwitter}, "tok"); err != nil {
		t.Fatalf("publish: %v", err)
	}
}

func TestPublishHonorsContextCancellation(t *testing.T) {
	pub := NewMockPublisher(MockPublisherConfig{
		MinDelay: time.Minute,
		MaxDelay: time.Minute,
		Logger:   testLogger(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := pub.Publish(ctx, content.Post{ID: "p1", Platform: content.PlatformTwitter}, "tok")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
