package services

import (
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"

	"github.com/khushi-tulsiyan/auctionmania/internal/auction"
	"github.com/khushi-tulsiyan/auctionmania/internal/domain"
	"github.com/khushi-tulsiyan/auctionmania/pkg/logger"
)

// DeadlineCloser announces auction_closed to each room once its deadline has
// passed. Acceptance never depends on this sweep; PlaceBid re-checks the
// deadline itself. The closer only tells subscribers that bidding is over.
type DeadlineCloser struct {
	registry    *auction.Registry
	broadcaster domain.Broadcaster
	clock       clockwork.Clock
	cron        *cron.Cron
	log         logger.Logger

	mu        sync.Mutex
	announced map[string]bool
}

func NewDeadlineCloser(
	registry *auction.Registry,
	broadcaster domain.Broadcaster,
	clock clockwork.Clock,
	log logger.Logger,
) *DeadlineCloser {
	return &DeadlineCloser{
		registry:    registry,
		broadcaster: broadcaster,
		clock:       clock,
		cron:        cron.New(cron.WithSeconds()),
		log:         log,
		announced:   make(map[string]bool),
	}
}

func (c *DeadlineCloser) Start() error {
	if _, err := c.cron.AddFunc("@every 1s", c.Sweep); err != nil {
		return err
	}
	c.cron.Start()
	c.log.Info("deadline closer started")
	return nil
}

func (c *DeadlineCloser) Stop() {
	c.cron.Stop()
	c.log.Info("deadline closer stopped")
}

// Sweep announces every newly expired auction exactly once.
func (c *DeadlineCloser) Sweep() {
	now := c.clock.Now()
	for _, a := range c.registry.ExpiredSince(now) {
		c.mu.Lock()
		done := c.announced[a.ID()]
		if !done {
			c.announced[a.ID()] = true
		}
		c.mu.Unlock()
		if done {
			continue
		}

		snapshot := a.Snapshot()
		c.log.Info("auction closed",
			"auction_id", a.ID(), "final_bid", snapshot.CurrentBid, "winner_id", snapshot.LeaderID)

		c.broadcaster.BroadcastToRoom(a.ID(), domain.AuctionClosedMessage{
			Type:      domain.MsgAuctionClosed,
			AuctionID: a.ID(),
			FinalBid:  snapshot.CurrentBid,
			WinnerID:  snapshot.LeaderID,
			Timestamp: now.UnixMilli(),
		})
	}
}
