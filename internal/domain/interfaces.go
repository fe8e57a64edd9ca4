package domain

import (
	"context"
)

// Connection is one subscriber's transport endpoint. Send must be safe for
// concurrent use and must not block on network I/O: implementations queue the
// message and write asynchronously, delivering queued messages in Send order.
type Connection interface {
	ID() string
	BidderID() string
	Send(message interface{}) error
	Close() error
}

// BidPlacer runs one bid against one auction and returns the structured
// outcome.
type BidPlacer interface {
	PlaceBid(ctx context.Context, auctionID, bidderID string, amount int64) BidResult
}

// Broadcaster fans accepted-bid events out to room members and delivers the
// targeted outbid notification. BroadcastBidAccepted only enqueues per
// Connection's Send contract, so callers may hold an ordering lock across it;
// implementations must never be called while an auction's lock is held.
type Broadcaster interface {
	BroadcastBidAccepted(auctionID string, result BidResult)
	BroadcastToRoom(auctionID string, message interface{})
}

// EventMirror publishes accepted bids to out-of-process observers.
// Fire-and-forget: a mirror failure never affects the commit.
type EventMirror interface {
	PublishBidEvent(ctx context.Context, event *BidEvent) error
}

// CatalogSource supplies the initial auction set at boot.
type CatalogSource interface {
	LoadCatalog(ctx context.Context) ([]Seed, error)
}
