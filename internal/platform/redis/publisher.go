// Package redis publishes domain events to a Redis pub/sub channel, where the
// rewards subsystem subscribes to them.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/recite-api/internal/config"
	"github.com/phrazzld/recite-api/internal/events"
	"github.com/phrazzld/recite-api/internal/platform/logger"
)

// Client is the subset of the go-redis client used by Publisher.
type Client interface {
	Publish(ctx context.Context, channel string, message interface{}) *goredis.IntCmd
	Ping(ctx context.Context) *goredis.StatusCmd
	Close() error
}

// Publisher implements events.EventHandler by publishing each event as JSON.
type Publisher struct {
	client  Client
	channel string
	logger  *slog.Logger
}

var _ events.EventHandler = (*Publisher)(nil)

// NewPublisher wraps an existing client.
func NewPublisher(client Client, channel string, logger *slog.Logger) (*Publisher, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	if channel == "" {
		return nil, errors.New("redis channel required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		client:  client,
		channel: channel,
		logger:  logger.With(slog.String("component", "redis_publisher")),
	}, nil
}

// Connect dials Redis from cfg, verifies the connection and returns a
// Publisher for cfg.RedisChannel.
func Connect(ctx context.Context, cfg config.EventsConfig, logger *slog.Logger) (*Publisher, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewPublisher(rdb, cfg.RedisChannel, logger)
}

// HandleEvent implements events.EventHandler.
func (p *Publisher) HandleEvent(ctx context.Context, event *events.Event) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", event.ID, err)
	}

	receivers, err := p.client.Publish(ctx, p.channel, raw).Result()
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.ID, err)
	}

	logger.FromContextOrDefault(ctx, p.logger).Debug("event published",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type),
		slog.String("channel", p.channel),
		slog.Int64("receivers", receivers))
	return nil
}

// Close releases the underlying client.
func (p *Publisher) Close() error {
	return p.client.Close()
}
