package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/spycce/SMPost/internal/content"
	"github.com/spycce/SMPost/internal/logging"
)

// PostEvent is emitted on post lifecycle transitions (published, failed).
type PostEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	ClusterID string    `json:"cluster_id"`
	Timestamp time.Time `json:"timestamp"`

	PostID   string           `json:"post_id"`
	Platform content.Platform `json:"platform"`
	Status   content.Status   `json:"status"`
}

// Producer publishes post lifecycle events to Kafka. A nil *Producer is
// valid and drops events, so callers don't have to branch on whether
// Kafka is configured.
type Producer struct {
	client    *kgo.Client
	logger    logging.Logger
	clusterID string
	topic     string
}

// NewProducer connects to the given brokers. Returns (nil, nil) when no
// brokers are configured.
func NewProducer(brokers []string, clusterID, topic string, logger logging.Logger) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, nil
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.ClientID("smpost"),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ProducerLinger(10 * time.Millisecond),
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	return &Producer{
		client:    client,
		logger:    logger,
		clusterID: clusterID,
		topic:     topic,
	}, nil
}

func (p *Producer) Close() {
	if p == nil {
		return
	}
	p.client.Close()
}

// PublishPostEvent emits a lifecycle event for a post. Errors are
// logged, not returned: event delivery must never block or fail the
// scheduler's status transitions.
func (p *Producer) PublishPostEvent(eventType string, post content.Post, status content.Status) {
	if p == nil {
		return
	}

	event := PostEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		ClusterID: p.clusterID,
		Timestamp: time.Now().UTC(),
		PostID:    post.ID,
		Platform:  post.Platform,
		Status:    status,
	}

	value, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).Error("Failed to marshal post event")
		return
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(post.ID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(eventType)},
			{Key: "cluster_id", Value: []byte(p.clusterID)},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		p.logger.WithError(err).WithField("post_id", post.ID).Error("Failed to produce post event")
	}
}

// HealthCheck pings the Kafka cluster.
func (p *Producer) HealthCheck(ctx context.Context) error {
	if p == nil {
		return nil
	}
	if err := p.client.Ping(ctx); err != nil {
		return fmt.Errorf("kafka ping: %w", err)
	}
	return nil
}
