package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/sangkips/salon-api/internal/domain/entity"
)

const (
	channelPrefix = "salon:events:"
	channelAll    = "salon:events:all"
)

// Publisher fans comanda events out over redis pub/sub
type Publisher struct {
	redis *redis.Client
}

// NewPublisher creates a redis event publisher
func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{redis: rdb}
}

// PublishComandaClosed publishes to the typed channel and to the catch-all channel
func (p *Publisher) PublishComandaClosed(ctx context.Context, event entity.ComandaClosedEvent) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := channelPrefix + event.EventType
	if err := p.redis.Publish(ctx, channel, eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	if err := p.redis.Publish(ctx, channelAll, eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish to all channel: %w", err)
	}

	return nil
}
