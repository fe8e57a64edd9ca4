package auction

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/khushi-tulsiyan/auctionmania/internal/domain"
)

// Auction owns the mutable state of one auction. Every state transition and
// every read runs under the same per-instance mutex, so no caller can observe
// a partially committed bid. The lock is never held across I/O.
type Auction struct {
	id            string
	title         string
	startingPrice int64
	minIncrement  int64
	deadline      time.Time
	clock         clockwork.Clock

	mu         sync.Mutex
	currentBid int64
	leaderID   string
	history    []domain.Bid
}

func New(seed domain.Seed, deadline time.Time, clock clockwork.Clock) *Auction {
	return &Auction{
		id:            seed.ID,
		title:         seed.Title,
		startingPrice: seed.StartingPrice,
		minIncrement:  seed.MinIncrement,
		deadline:      deadline,
		clock:         clock,
		currentBid:    seed.StartingPrice,
	}
}

func (a *Auction) ID() string { return a.id }

// PlaceBid runs the atomic check-then-commit transition. The deadline is an
// exclusive upper bound: a bid processed at the deadline instant is rejected.
// First committer wins; a concurrent loser is re-validated against the
// post-commit price and told the winner's new minimum.
func (a *Auction) PlaceBid(bidderID string, amount int64) domain.BidResult {
	if bidderID == "" || amount <= 0 {
		return domain.BidResult{
			Accepted:  false,
			Reason:    domain.RejectInvalidInput,
			AuctionID: a.id,
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock.Now()
	if !now.Before(a.deadline) {
		return domain.BidResult{
			Accepted:  false,
			Reason:    domain.RejectAuctionClosed,
			AuctionID: a.id,
		}
	}

	minBid := a.currentBid + a.minIncrement
	if amount < minBid {
		return domain.BidResult{
			Accepted:   false,
			Reason:     domain.RejectBidTooLow,
			AuctionID:  a.id,
			CurrentBid: a.currentBid,
			MinimumBid: minBid,
		}
	}

	// Commit. Everything the result needs is captured before the swap so a
	// half-applied transition can never leak out.
	previousLeader := a.leaderID
	previousBid := a.currentBid

	a.currentBid = amount
	a.leaderID = bidderID
	a.history = append(a.history, domain.Bid{
		BidderID:  bidderID,
		Amount:    amount,
		Timestamp: now,
	})

	return domain.BidResult{
		Accepted:       true,
		AuctionID:      a.id,
		NewBid:         amount,
		LeaderID:       bidderID,
		PreviousLeader: previousLeader,
		PreviousBid:    previousBid,
		Timestamp:      now,
	}
}

// Snapshot returns a consistent view of the auction state.
func (a *Auction) Snapshot() domain.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock.Now()
	remaining := a.deadline.Sub(now)
	if remaining < 0 {
		remaining = 0
	}

	return domain.Snapshot{
		ID:              a.id,
		Title:           a.title,
		StartingPrice:   a.startingPrice,
		CurrentBid:      a.currentBid,
		MinIncrement:    a.minIncrement,
		LeaderID:        a.leaderID,
		Deadline:        a.deadline,
		TimeRemainingMS: remaining.Milliseconds(),
		IsActive:        now.Before(a.deadline),
	}
}

// History returns the accepted bids in acceptance order.
func (a *Auction) History() []domain.Bid {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]domain.Bid, len(a.history))
	copy(out, a.history)
	return out
}

func (a *Auction) Deadline() time.Time { return a.deadline }
