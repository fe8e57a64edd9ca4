package auction

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khushi-tulsiyan/auctionmania/internal/domain"
)

func newTestAuction(clock clockwork.Clock, lifetime time.Duration) *Auction {
	seed := domain.Seed{
		ID:            "a1",
		Title:         "Test Item",
		StartingPrice: 50,
		MinIncrement:  10,
	}
	return New(seed, clock.Now().Add(lifetime), clock)
}

func TestPlaceBid_IncrementRule(t *testing.T) {
	tests := []struct {
		name       string
		amount     int64
		wantAccept bool
		wantReason domain.RejectReason
	}{
		{name: "exactly minimum bid accepted", amount: 60, wantAccept: true},
		{name: "above minimum accepted", amount: 75, wantAccept: true},
		{name: "one below minimum rejected", amount: 59, wantReason: domain.RejectBidTooLow},
		{name: "equal to current price rejected", amount: 50, wantReason: domain.RejectBidTooLow},
		{name: "zero amount invalid", amount: 0, wantReason: domain.RejectInvalidInput},
		{name: "negative amount invalid", amount: -5, wantReason: domain.RejectInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := clockwork.NewFakeClock()
			a := newTestAuction(clock, time.Hour)

			result := a.PlaceBid("bidder-x", tt.amount)

			assert.Equal(t, tt.wantAccept, result.Accepted)
			if tt.wantAccept {
				assert.Equal(t, tt.amount, result.NewBid)
				assert.Equal(t, "bidder-x", result.LeaderID)
			} else {
				assert.Equal(t, tt.wantReason, result.Reason)
			}
		})
	}
}

func TestPlaceBid_TooLowReportsAuthoritativePrice(t *testing.T) {
	clock := clockwork.NewFakeClock()
	a := newTestAuction(clock, time.Hour)

	require.True(t, a.PlaceBid("x", 60).Accepted)

	result := a.PlaceBid("y", 65)
	require.False(t, result.Accepted)
	assert.Equal(t, domain.RejectBidTooLow, result.Reason)
	assert.Equal(t, int64(60), result.CurrentBid)
	assert.Equal(t, int64(70), result.MinimumBid)

	// State untouched by the rejection.
	snap := a.Snapshot()
	assert.Equal(t, int64(60), snap.CurrentBid)
	assert.Equal(t, "x", snap.LeaderID)
}

func TestPlaceBid_EmptyBidderRejected(t *testing.T) {
	clock := clockwork.NewFakeClock()
	a := newTestAuction(clock, time.Hour)

	result := a.PlaceBid("", 60)
	assert.False(t, result.Accepted)
	assert.Equal(t, domain.RejectInvalidInput, result.Reason)
	assert.Empty(t, a.History())
}

func TestPlaceBid_DeadlineIsExclusive(t *testing.T) {
	clock := clockwork.NewFakeClock()
	a := newTestAuction(clock, time.Minute)

	// One tick before the deadline is still open.
	clock.Advance(time.Minute - time.Nanosecond)
	require.True(t, a.PlaceBid("x", 60).Accepted)

	// The deadline instant itself is closed.
	clock.Advance(time.Nanosecond)
	result := a.PlaceBid("y", 100)
	require.False(t, result.Accepted)
	assert.Equal(t, domain.RejectAuctionClosed, result.Reason)

	// Terminal: state never moves again.
	snap := a.Snapshot()
	assert.Equal(t, int64(60), snap.CurrentBid)
	assert.Equal(t, "x", snap.LeaderID)
	assert.False(t, snap.IsActive)
	assert.Equal(t, int64(0), snap.TimeRemainingMS)
	assert.Len(t, a.History(), 1)
}

func TestPlaceBid_LeaderCanRaiseOwnBid(t *testing.T) {
	clock := clockwork.NewFakeClock()
	a := newTestAuction(clock, time.Hour)

	require.True(t, a.PlaceBid("x", 60).Accepted)

	// The raise must satisfy the increment against the leader's own prior bid.
	tooLow := a.PlaceBid("x", 65)
	require.False(t, tooLow.Accepted)
	assert.Equal(t, domain.RejectBidTooLow, tooLow.Reason)

	raised := a.PlaceBid("x", 70)
	require.True(t, raised.Accepted)
	assert.Equal(t, "x", raised.PreviousLeader)
	assert.Equal(t, "x", raised.LeaderID)
}

func TestPlaceBid_Scenario(t *testing.T) {
	clock := clockwork.NewFakeClock()
	a := newTestAuction(clock, time.Minute)

	resA := a.PlaceBid("X", 60)
	require.True(t, resA.Accepted)
	assert.Equal(t, int64(60), a.Snapshot().CurrentBid)
	assert.Equal(t, "X", a.Snapshot().LeaderID)

	resB := a.PlaceBid("Y", 65)
	require.False(t, resB.Accepted)
	assert.Equal(t, domain.RejectBidTooLow, resB.Reason)
	assert.Equal(t, int64(70), resB.MinimumBid)

	resC := a.PlaceBid("Y", 70)
	require.True(t, resC.Accepted)
	assert.Equal(t, "X", resC.PreviousLeader)
	assert.Equal(t, "Y", resC.LeaderID)

	clock.Advance(2 * time.Minute)
	resD := a.PlaceBid("Z", 80)
	require.False(t, resD.Accepted)
	assert.Equal(t, domain.RejectAuctionClosed, resD.Reason)
}

func TestPlaceBid_ConcurrentBidsSerialize(t *testing.T) {
	clock := clockwork.NewFakeClock()
	a := newTestAuction(clock, time.Hour)

	const bidders = 50
	results := make([]domain.BidResult, bidders)

	var wg sync.WaitGroup
	for i := 0; i < bidders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Overlapping amounts force most bids to lose the race.
			results[i] = a.PlaceBid(fmt.Sprintf("bidder-%d", i), int64(60+i))
		}(i)
	}
	wg.Wait()

	history := a.History()
	snap := a.Snapshot()

	accepted := 0
	for _, res := range results {
		if res.Accepted {
			accepted++
		} else {
			require.Equal(t, domain.RejectBidTooLow, res.Reason)
			// The loser is told a price some winner actually set.
			assert.Equal(t, res.CurrentBid+10, res.MinimumBid)
		}
	}

	require.Equal(t, accepted, len(history))
	require.NotEmpty(t, history)

	// Accepted subsequence strictly increases by at least the increment.
	prev := int64(50)
	for _, bid := range history {
		assert.GreaterOrEqual(t, bid.Amount, prev+10)
		prev = bid.Amount
	}

	last := history[len(history)-1]
	assert.Equal(t, last.Amount, snap.CurrentBid)
	assert.Equal(t, last.BidderID, snap.LeaderID)
}

func TestPlaceBid_PairRaceHasOneWinner(t *testing.T) {
	clock := clockwork.NewFakeClock()
	a := newTestAuction(clock, time.Hour)

	var wg sync.WaitGroup
	results := make([]domain.BidResult, 2)
	for i, bidder := range []string{"x", "y"} {
		wg.Add(1)
		go func(i int, bidder string) {
			defer wg.Done()
			results[i] = a.PlaceBid(bidder, 60)
		}(i, bidder)
	}
	wg.Wait()

	winners := 0
	for _, res := range results {
		if res.Accepted {
			winners++
		} else {
			assert.Equal(t, domain.RejectBidTooLow, res.Reason)
			assert.Equal(t, int64(60), res.CurrentBid)
		}
	}
	assert.Equal(t, 1, winners)
	assert.Len(t, a.History(), 1)
}

func TestSnapshot_ReportsRemainingTime(t *testing.T) {
	clock := clockwork.NewFakeClock()
	a := newTestAuction(clock, 10*time.Second)

	snap := a.Snapshot()
	assert.True(t, snap.IsActive)
	assert.Equal(t, int64(10_000), snap.TimeRemainingMS)
	assert.Equal(t, int64(50), snap.CurrentBid)
	assert.Empty(t, snap.LeaderID)

	clock.Advance(4 * time.Second)
	assert.Equal(t, int64(6_000), a.Snapshot().TimeRemainingMS)
}
