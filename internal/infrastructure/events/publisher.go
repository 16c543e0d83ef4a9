package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/johnquangdev/meeting-bot/internal/domain/entities"
)

// RedisPublisher publishes session lifecycle events on a Redis pub/sub channel
type RedisPublisher struct {
	client  redis.UniversalClient
	channel string
}

// NewRedisPublisher creates a publisher writing to channel
func NewRedisPublisher(client redis.UniversalClient, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

// Publish sends event as JSON
func (p *RedisPublisher) Publish(ctx context.Context, event entities.SessionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal session event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish session event: %w", err)
	}
	return nil
}

// NoopPublisher drops events; used when Redis is not configured
type NoopPublisher struct{}

// Publish does nothing
func (NoopPublisher) Publish(context.Context, entities.SessionEvent) error {
	return nil
}
