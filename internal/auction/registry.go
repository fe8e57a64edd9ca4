package auction

import (
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/khushi-tulsiyan/auctionmania/internal/domain"
)

// Registry owns the id->Auction mapping for the process lifetime. The map is
// built once at construction and never mutated afterwards, so lookups need no
// locking of their own.
type Registry struct {
	auctions map[string]*Auction
	order    []string
}

// NewRegistry creates the initial auction set. Seed deadlines are relative to
// the clock's now at construction.
func NewRegistry(seeds []domain.Seed, clock clockwork.Clock) *Registry {
	r := &Registry{
		auctions: make(map[string]*Auction, len(seeds)),
	}

	now := clock.Now()
	for _, seed := range seeds {
		if _, dup := r.auctions[seed.ID]; dup {
			continue
		}
		r.auctions[seed.ID] = New(seed, now.Add(seed.Duration), clock)
		r.order = append(r.order, seed.ID)
	}
	sort.Strings(r.order)

	return r
}

func (r *Registry) Get(id string) (*Auction, bool) {
	a, ok := r.auctions[id]
	return a, ok
}

// ListAll returns snapshots of every auction in stable id order.
func (r *Registry) ListAll() []domain.Snapshot {
	snapshots := make([]domain.Snapshot, 0, len(r.order))
	for _, id := range r.order {
		snapshots = append(snapshots, r.auctions[id].Snapshot())
	}
	return snapshots
}

// GetHistory returns the ordered bid sequence for one auction.
func (r *Registry) GetHistory(id string) ([]domain.Bid, bool) {
	a, ok := r.auctions[id]
	if !ok {
		return nil, false
	}
	return a.History(), true
}

// ExpiredSince reports auctions whose deadline is at or before now.
func (r *Registry) ExpiredSince(now time.Time) []*Auction {
	var expired []*Auction
	for _, id := range r.order {
		a := r.auctions[id]
		if !now.Before(a.Deadline()) {
			expired = append(expired, a)
		}
	}
	return expired
}
