package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/spycce/SMPost/internal/content"
	"github.com/spycce/SMPost/internal/events"
	"github.com/spycce/SMPost/internal/logging"
	"github.com/spycce/SMPost/internal/monitoring"
	"github.com/spycce/SMPost/internal/publish"
)

const (
	defaultInterval       = 60 * time.Second
	defaultBatchSize      = 50
	defaultPublishTimeout = 30 * time.Second
)

// Config configures the publishing scheduler.
type Config struct {
	Interval       time.Duration
	BatchSize      int
	PublishTimeout time.Duration
	Store          content.Store
	Publisher      publish.Publisher
	Events         *events.Producer
	Metrics        *monitoring.MetricsCollector
	Logger         logging.Logger
}

// Scheduler wakes on an interval, finds posts whose scheduled time has
// arrived, and publishes each one, moving it to Published or Failed.
type Scheduler struct {
	interval       time.Duration
	batchSize      int
	publishTimeout time.Duration
	store          content.Store
	publisher      publish.Publisher
	events         *events.Producer
	logger         logging.Logger

	ticksTotal     *prometheus.CounterVec
	publishedTotal *prometheus.CounterVec
	failedTotal    *prometheus.CounterVec

	running sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func New(cfg Config) *Scheduler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	publishTimeout := cfg.PublishTimeout
	if publishTimeout <= 0 {
		publishTimeout = defaultPublishTimeout
	}

	s := &Scheduler{
		interval:       interval,
		batchSize:      batchSize,
		publishTimeout: publishTimeout,
		store:          cfg.Store,
		publisher:      cfg.Publisher,
		events:         cfg.Events,
		logger:         cfg.Logger,
	}

	if cfg.Metrics != nil {
		s.ticksTotal = cfg.Metrics.NewCounter(
			"scheduler_ticks_total",
			"Scheduler tick outcomes",
			[]string{"result"},
		)
		s.publishedTotal = cfg.Metrics.NewCounter(
			"scheduler_posts_published_total",
			"Posts published by the scheduler",
			[]string{"platform"},
		)
		s.failedTotal = cfg.Metrics.NewCounter(
			"scheduler_posts_failed_total",
			"Posts the scheduler failed to publish",
			[]string{"platform", "reason"},
		)
	}

	return s
}

// Start launches the scheduler loop in a goroutine. The first tick runs
// immediately; subsequent ticks fire on the configured interval until
// ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.tick(ctx)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for an in-flight tick to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// tick runs one cycle if no other cycle is in flight. A tick that takes
// longer than the interval must not overlap with the next one.
func (s *Scheduler) tick(ctx context.Context) {
	if !s.running.TryLock() {
		s.logger.Warn("Scheduler tick still running, skipping")
		s.countTick("skipped")
		return
	}
	defer s.running.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.WithField("panic", fmt.Sprint(r)).Error("Scheduler tick panic")
			s.countTick("panic")
		}
	}()

	if err := s.RunTick(ctx, time.Now().UTC()); err != nil {
		s.logger.WithError(err).Error("Scheduler tick failed")
		s.countTick("error")
		return
	}
	s.countTick("ok")
}

// RunTick processes one batch of due posts. Exported so tests can drive
// the scheduler with a controlled clock instead of waiting on the
// ticker.
func (s *Scheduler) RunTick(ctx context.Context, now time.Time) error {
	due, err := s.store.FindDue(ctx, now, s.batchSize)
	if err != nil {
		return fmt.Errorf("find due posts: %w", err)
	}
	if len(due) == 0 {
		return nil
	}

	s.logger.WithField("count", len(due)).Info("Processing due posts")

	for _, post := range due {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.processPost(ctx, post)
	}
	return nil
}

// processPost publishes a single due post and records the terminal
// status. A failure on one post never aborts the rest of the batch.
func (s *Scheduler) processPost(ctx context.Context, post content.Post) {
	log := s.logger.WithFields(logging.Fields{
		"post_id":  post.ID,
		"platform": post.Platform,
	})

	credential, reason := s.resolveCredential(ctx, post)
	if credential == "" {
		log.WithField("reason", reason).Warn("Post failed: no usable account")
		s.finish(ctx, post, content.StatusFailed, reason)
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	err := s.publisher.Publish(pubCtx, post, credential)
	cancel()
	if err != nil {
		log.WithError(err).Warn("Post failed: publish error")
		s.finish(ctx, post, content.StatusFailed, "publish_error")
		return
	}

	log.Info("Post published")
	s.finish(ctx, post, content.StatusPublished, "")
}

// resolveCredential finds the connected account for the post's platform.
// An empty credential means the post cannot be published; reason says
// why.
func (s *Scheduler) resolveCredential(ctx context.Context, post content.Post) (string, string) {
	account, err := s.store.ConnectedAccount(ctx, post.Platform)
	if err != nil {
		s.logger.WithError(err).WithField("post_id", post.ID).Error("Failed to resolve account")
		return "", "account_lookup_error"
	}
	if account == nil {
		return "", "no_connected_account"
	}
	if account.AccessToken == "" {
		return "", "missing_access_token"
	}
	return account.AccessToken, ""
}

// finish moves the post from Scheduled to its terminal status. The
// conditional transition makes retries and overlapping schedulers safe:
// whoever loses the race sees changed=false and emits nothing.
func (s *Scheduler) finish(ctx context.Context, post content.Post, to content.Status, reason string) {
	changed, err := s.store.TransitionStatus(ctx, post.ID, content.StatusScheduled, to)
	if err != nil {
		s.logger.WithError(err).WithField("post_id", post.ID).Error("Failed to transition post status")
		return
	}
	if !changed {
		s.logger.WithField("post_id", post.ID).Warn("Post already left Scheduled, skipping")
		return
	}

	switch to {
	case content.StatusPublished:
		if s.publishedTotal != nil {
			s.publishedTotal.WithLabelValues(string(post.Platform)).Inc()
		}
		s.events.PublishPostEvent("post_published", post, to)
	case content.StatusFailed:
		if s.failedTotal != nil {
			s.failedTotal.WithLabelValues(string(post.Platform), reason).Inc()
		}
		s.events.PublishPostEvent("post_failed", post, to)
	}
}

func (s *Scheduler) countTick(result string) {
	if s.ticksTotal != nil {
		s.ticksTotal.WithLabelValues(result).Inc()
	}
}
