package sync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Maxito7/frontdesk_backend/internal/config"
	"github.com/Maxito7/frontdesk_backend/internal/domain"
	"github.com/Maxito7/frontdesk_backend/internal/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

// RedisPublisher implements domain.ChangePublisher over a redis pub/sub
// channel, so every server instance's hub sees every committed change.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	cb      *gobreaker.CircuitBreaker
}

// NewRedisPublisher creates a new instance of the redis publisher
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{
		client:  client,
		channel: channel,
		cb:      config.NewCircuitBreaker("Redis-Publisher"),
	}
}

// Publish implements domain.ChangePublisher
func (p *RedisPublisher) Publish(ctx context.Context, event domain.ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling change event: %w", err)
	}

	_, err = p.cb.Execute(func() (any, error) {
		return nil, p.client.Publish(ctx, p.channel, payload).Err()
	})
	if err != nil {
		return fmt.Errorf("publishing change event %s: %w", event.ID, err)
	}

	metrics.SyncEventsPublished.Inc()
	return nil
}
