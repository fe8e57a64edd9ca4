// Package clocksync implements the client side of the server-authoritative
// countdown protocol. The server only ever ships timestamps: server_time on
// join and in each heartbeat_ack. The client derives a local offset from the
// latest sample and renders every countdown as deadline - (local + offset).
// The server independently re-checks the deadline with its own clock on every
// bid, so a wrong offset can only mislead a display, never the acceptance
// decision.
package clocksync

import (
	"sync"
	"time"
)

// Sample is one observation of the server clock: the server timestamp and the
// local time at which it was received.
type Sample struct {
	ServerTime time.Time
	ReceivedAt time.Time
}

// Offset is the server-minus-local difference a sample implies.
func Offset(s Sample) time.Duration {
	return s.ServerTime.Sub(s.ReceivedAt)
}

// Tracker keeps the current offset for one connection. Last sample wins; there
// is no averaging or smoothing. Before the first sample the offset is zero, so
// a connection that never completes the handshake degrades to the local clock
// for display only.
type Tracker struct {
	mu     sync.Mutex
	offset time.Duration
	synced bool
}

func (t *Tracker) Update(s Sample) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.offset = Offset(s)
	t.synced = true
}

func (t *Tracker) Offset() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.offset
}

func (t *Tracker) Synced() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.synced
}

// Remaining converts a server-side deadline into the time left as the client
// should display it, given the local clock reading.
func (t *Tracker) Remaining(deadline, localNow time.Time) time.Duration {
	remaining := deadline.Sub(localNow.Add(t.Offset()))
	if remaining < 0 {
		return 0
	}
	return remaining
}
