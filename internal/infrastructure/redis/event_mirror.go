package redis

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"

	"github.com/khushi-tulsiyan/auctionmania/internal/domain"
)

const eventsChannel = "auction_events"

// EventMirror publishes accepted-bid events to a Redis pub/sub channel so
// out-of-process observers (analytics, audit tails) can follow the auctions
// without joining a room. It is never part of the acceptance path.
type EventMirror struct {
	client *redis.Client
}

func NewEventMirror(client *redis.Client) *EventMirror {
	return &EventMirror{client: client}
}

func (m *EventMirror) PublishBidEvent(ctx context.Context, event *domain.BidEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return m.client.Publish(ctx, eventsChannel, payload).Err()
}
