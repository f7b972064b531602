package sync

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/Maxito7/frontdesk_backend/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisBridge subscribes the local hub to the shared redis change channel.
// On connection loss it resubscribes with bounded exponential backoff and
// jitter; sessions then converge again through their full refetch.
type RedisBridge struct {
	client  *redis.Client
	channel string
	hub     *Hub
}

// NewRedisBridge creates a new instance of the redis bridge
func NewRedisBridge(client *redis.Client, channel string, hub *Hub) *RedisBridge {
	return &RedisBridge{
		client:  client,
		channel: channel,
		hub:     hub,
	}
}

// Run consumes the redis channel and broadcasts into the hub until the
// context is cancelled.
func (b *RedisBridge) Run(ctx context.Context) {
	attempt := 0
	for {
		if ctx.Err() != nil {
			return
		}

		connected, err := b.consume(ctx)
		if connected {
			attempt = 0
		}
		if err != nil && ctx.Err() == nil {
			delay := nextBackoff(attempt)
			attempt++
			log.Printf("sync bridge: subscription lost (%v), resubscribing in %s", err, delay)

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
		}
	}
}

// consume reports whether the subscription was ever established, so the
// caller can reset its backoff after a healthy connection.
func (b *RedisBridge) consume(ctx context.Context) (bool, error) {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	// Fail fast if the subscription could not be established.
	if _, err := pubsub.Receive(ctx); err != nil {
		return false, err
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return true, context.Canceled
			}

			var event domain.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("sync bridge: dropping malformed event: %v", err)
				continue
			}
			b.hub.Broadcast(event)
		}
	}
}
