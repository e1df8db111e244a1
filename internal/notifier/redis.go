package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mohamedkhairy/market-pulse/internal/config"
	"github.com/mohamedkhairy/market-pulse/pkg/logger"
)

// Publisher delivers cycle digests. A nil digest is a no-op.
type Publisher interface {
	PublishDigest(ctx context.Context, digest *Digest) error
	Close() error
}

// RedisPublisher publishes digests to a Redis pub/sub channel
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher connects to Redis and verifies the connection
func NewRedisPublisher(cfg config.RedisConfig) (*RedisPublisher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Connected to Redis",
		logger.String("host", cfg.Host),
		logger.Int("port", cfg.Port),
		logger.String("channel", cfg.Channel),
	)

	return &RedisPublisher{client: rdb, channel: cfg.Channel}, nil
}

// PublishDigest publishes a digest as JSON
func (p *RedisPublisher) PublishDigest(ctx context.Context, digest *Digest) error {
	if digest == nil {
		return nil
	}

	payload, err := json.Marshal(digest)
	if err != nil {
		return fmt.Errorf("failed to marshal digest: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to channel %s: %w", p.channel, err)
	}

	logger.Debug("Published alert digest",
		logger.String("channel", p.channel),
		logger.Int("alerts", len(digest.Alerts)),
	)
	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// NoopPublisher discards digests, used when Redis is disabled
type NoopPublisher struct{}

func (NoopPublisher) PublishDigest(context.Context, *Digest) error { return nil }
func (NoopPublisher) Close() error                                 { return nil }
