package domain

import (
	"time"
)

// Bid is one accepted bid in an auction's history.
type Bid struct {
	BidderID  string    `json:"bidder_id"`
	Amount    int64     `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot is an immutable view of one auction, safe to hand to any caller.
// Amounts are integer minor currency units.
type Snapshot struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	StartingPrice   int64     `json:"starting_price"`
	CurrentBid      int64     `json:"current_bid"`
	MinIncrement    int64     `json:"min_increment"`
	LeaderID        string    `json:"leader_id,omitempty"`
	Deadline        time.Time `json:"deadline"`
	TimeRemainingMS int64     `json:"time_remaining_ms"`
	IsActive        bool      `json:"is_active"`
}

type RejectReason string

const (
	RejectInvalidInput  RejectReason = "INVALID_INPUT"
	RejectAuctionClosed RejectReason = "AUCTION_CLOSED"
	RejectBidTooLow     RejectReason = "BID_TOO_LOW"
	RejectNotFound      RejectReason = "NOT_FOUND"
)

// BidResult is the outcome of one PlaceBid transition. Rejections are values,
// not errors: every reason here is recoverable by the caller.
type BidResult struct {
	Accepted  bool
	Reason    RejectReason
	AuctionID string

	// Set on acceptance.
	NewBid         int64
	LeaderID       string
	PreviousLeader string
	PreviousBid    int64
	Timestamp      time.Time

	// Set on BID_TOO_LOW so the caller can immediately offer a valid next bid.
	CurrentBid int64
	MinimumBid int64
}

// Message returns the human-readable rejection text sent in bid_error frames.
func (r BidResult) Message() string {
	switch r.Reason {
	case RejectInvalidInput:
		return "invalid bid: amount must be positive and bidder known"
	case RejectAuctionClosed:
		return "auction has ended"
	case RejectBidTooLow:
		return "bid below minimum"
	case RejectNotFound:
		return "auction not found"
	default:
		return ""
	}
}

// Seed describes one auction to create at boot, from config or the catalog table.
type Seed struct {
	ID            string        `mapstructure:"id"`
	Title         string        `mapstructure:"title"`
	StartingPrice int64         `mapstructure:"starting_price"`
	MinIncrement  int64         `mapstructure:"min_increment"`
	Duration      time.Duration `mapstructure:"duration"`
}

// BidEvent is the accepted-bid record mirrored to out-of-process observers.
type BidEvent struct {
	Type      string    `json:"type"`
	AuctionID string    `json:"auction_id"`
	BidderID  string    `json:"bidder_id"`
	Amount    int64     `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

const BidEventAccepted = "bid_accepted"
