package services

import (
	"context"
	"sync"

	"github.com/khushi-tulsiyan/auctionmania/internal/auction"
	"github.com/khushi-tulsiyan/auctionmania/internal/domain"
	"github.com/khushi-tulsiyan/auctionmania/pkg/logger"
)

// BidService routes bid requests to the owning Auction and turns accepted
// transitions into broadcast events. A per-auction ordering mutex is held
// across the commit and the fan-out enqueue so every room member observes
// accepted bids in acceptance order. Connection sends are queue handoffs, not
// socket writes, so no network I/O happens under either lock and a slow
// subscriber can never stall bid acceptance.
type BidService struct {
	registry    *auction.Registry
	broadcaster domain.Broadcaster
	mirror      domain.EventMirror
	log         logger.Logger

	mu    sync.Mutex
	order map[string]*sync.Mutex
}

func NewBidService(
	registry *auction.Registry,
	broadcaster domain.Broadcaster,
	mirror domain.EventMirror,
	log logger.Logger,
) *BidService {
	return &BidService{
		registry:    registry,
		broadcaster: broadcaster,
		mirror:      mirror,
		log:         log,
		order:       make(map[string]*sync.Mutex),
	}
}

// orderingLock returns the mutex that sequences commit and fan-out enqueue
// for one auction. Different auctions stay independent.
func (s *BidService) orderingLock(auctionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, exists := s.order[auctionID]
	if !exists {
		lock = &sync.Mutex{}
		s.order[auctionID] = lock
	}
	return lock
}

// PlaceBid runs one bid against one auction and returns the structured result.
// Every rejection reason is a value the submitting connection can act on.
func (s *BidService) PlaceBid(ctx context.Context, auctionID, bidderID string, amount int64) domain.BidResult {
	a, ok := s.registry.Get(auctionID)
	if !ok {
		return domain.BidResult{
			Accepted:  false,
			Reason:    domain.RejectNotFound,
			AuctionID: auctionID,
		}
	}

	// Commit and enqueue as one ordered step: a bid committed after this one
	// cannot reach any member's send queue before it.
	lock := s.orderingLock(auctionID)
	lock.Lock()
	result := a.PlaceBid(bidderID, amount)
	if result.Accepted {
		// Commit is final: broadcast happens even if the submitter is gone.
		s.broadcaster.BroadcastBidAccepted(auctionID, result)
	}
	lock.Unlock()

	if !result.Accepted {
		s.log.Info("bid rejected",
			"auction_id", auctionID, "bidder_id", bidderID, "amount", amount,
			"reason", string(result.Reason))
		return result
	}

	s.log.Info("bid accepted",
		"auction_id", auctionID, "bidder_id", bidderID, "amount", amount,
		"previous_leader", result.PreviousLeader)

	if s.mirror != nil {
		event := &domain.BidEvent{
			Type:      domain.BidEventAccepted,
			AuctionID: auctionID,
			BidderID:  bidderID,
			Amount:    amount,
			Timestamp: result.Timestamp,
		}
		if err := s.mirror.PublishBidEvent(ctx, event); err != nil {
			s.log.Error("failed to mirror bid event", "auction_id", auctionID, "error", err)
		}
	}

	return result
}
