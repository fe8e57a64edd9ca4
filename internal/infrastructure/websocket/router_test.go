package websocket

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khushi-tulsiyan/auctionmania/internal/domain"
	"github.com/khushi-tulsiyan/auctionmania/pkg/logger"
)

type mockConn struct {
	id       string
	bidderID string
	mu       sync.Mutex
	received []interface{}
	sendErr  error
	closed   bool
}

func (m *mockConn) ID() string       { return m.id }
func (m *mockConn) BidderID() string { return m.bidderID }

func (m *mockConn) Send(message interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.received = append(m.received, message)
	return nil
}

func (m *mockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockConn) getReceived() []interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]interface{}, len(m.received))
	copy(out, m.received)
	return out
}

func (m *mockConn) countByType(msgType string) int {
	count := 0
	for _, msg := range m.getReceived() {
		switch v := msg.(type) {
		case domain.BidUpdateMessage:
			if v.Type == msgType {
				count++
			}
		case domain.OutbidMessage:
			if v.Type == msgType {
				count++
			}
		}
	}
	return count
}

func acceptedResult(prevLeader string) domain.BidResult {
	return domain.BidResult{
		Accepted:       true,
		AuctionID:      "a1",
		NewBid:         70,
		LeaderID:       "y",
		PreviousLeader: prevLeader,
		PreviousBid:    60,
		Timestamp:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRouter_BroadcastBidAccepted(t *testing.T) {
	tests := []struct {
		name        string
		result      domain.BidResult
		wantUpdates map[string]int
		wantOutbids map[string]int
	}{
		{
			name:        "update reaches every room member once",
			result:      acceptedResult("x"),
			wantUpdates: map[string]int{"cx": 1, "cy": 1, "cz": 1},
			wantOutbids: map[string]int{"cx": 1, "cy": 0, "cz": 0},
		},
		{
			name:        "first bid has no previous leader and no outbid",
			result:      acceptedResult(""),
			wantUpdates: map[string]int{"cx": 1, "cy": 1, "cz": 1},
			wantOutbids: map[string]int{"cx": 0, "cy": 0, "cz": 0},
		},
		{
			name:        "leader raising own bid gets no outbid",
			result:      acceptedResult("y"),
			wantUpdates: map[string]int{"cx": 1, "cy": 1, "cz": 1},
			wantOutbids: map[string]int{"cx": 0, "cy": 0, "cz": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRouter(logger.NewNop())
			conns := map[string]*mockConn{
				"cx": {id: "cx", bidderID: "x"},
				"cy": {id: "cy", bidderID: "y"},
				"cz": {id: "cz", bidderID: "z"},
			}
			for _, c := range conns {
				r.Join(c, "a1")
			}

			r.BroadcastBidAccepted("a1", tt.result)

			for id, want := range tt.wantUpdates {
				assert.Equal(t, want, conns[id].countByType(domain.MsgBidUpdate), "bid_update for %s", id)
			}
			for id, want := range tt.wantOutbids {
				assert.Equal(t, want, conns[id].countByType(domain.MsgOutbid), "outbid for %s", id)
			}
		})
	}
}

func TestRouter_NoCrossRoomDelivery(t *testing.T) {
	r := NewRouter(logger.NewNop())
	member := &mockConn{id: "c1", bidderID: "x"}
	outsider := &mockConn{id: "c2", bidderID: "y"}
	r.Join(member, "a1")
	r.Join(outsider, "a2")

	r.BroadcastBidAccepted("a1", acceptedResult(""))

	assert.Len(t, member.getReceived(), 1)
	assert.Empty(t, outsider.getReceived())
}

func TestRouter_OutbidReachesAllPreviousLeaderConnections(t *testing.T) {
	r := NewRouter(logger.NewNop())
	// The previous leader is connected twice; only one connection is in the room.
	inRoom := &mockConn{id: "c1", bidderID: "x"}
	elsewhere := &mockConn{id: "c2", bidderID: "x"}
	r.Join(inRoom, "a1")
	r.Join(elsewhere, "a2")

	r.BroadcastBidAccepted("a1", acceptedResult("x"))

	assert.Equal(t, 1, inRoom.countByType(domain.MsgOutbid))
	assert.Equal(t, 1, elsewhere.countByType(domain.MsgOutbid))
	assert.Equal(t, 0, elsewhere.countByType(domain.MsgBidUpdate))
}

func TestRouter_LeaveStopsRoomDeliveryOnly(t *testing.T) {
	r := NewRouter(logger.NewNop())
	conn := &mockConn{id: "c1", bidderID: "x"}
	r.Join(conn, "a1")
	r.Leave(conn, "a1")

	r.BroadcastBidAccepted("a1", acceptedResult(""))
	assert.Empty(t, conn.getReceived())

	// Still reachable for outbid after leaving the room.
	r.BroadcastBidAccepted("a1", acceptedResult("x"))
	assert.Equal(t, 1, conn.countByType(domain.MsgOutbid))
}

func TestRouter_DisconnectRemovesEverywhere(t *testing.T) {
	r := NewRouter(logger.NewNop())
	conn := &mockConn{id: "c1", bidderID: "x"}
	r.Join(conn, "a1")
	r.Join(conn, "a2")
	r.Disconnect(conn)

	r.BroadcastBidAccepted("a1", acceptedResult("x"))
	r.BroadcastBidAccepted("a2", acceptedResult("x"))

	assert.Empty(t, conn.getReceived())
}

func TestRouter_OneFailedSendDoesNotStopFanout(t *testing.T) {
	r := NewRouter(logger.NewNop())
	broken := &mockConn{id: "c1", bidderID: "x", sendErr: errors.New("write: broken pipe")}
	healthy := &mockConn{id: "c2", bidderID: "y"}
	r.Join(broken, "a1")
	r.Join(healthy, "a1")

	r.BroadcastBidAccepted("a1", acceptedResult(""))

	assert.Len(t, healthy.getReceived(), 1)
}

func TestRouter_ConcurrentJoinLeaveBroadcast(t *testing.T) {
	r := NewRouter(logger.NewNop())
	stable := &mockConn{id: "stable", bidderID: "s"}
	r.Join(stable, "a1")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := &mockConn{id: string(rune('A' + i)), bidderID: "b"}
			r.Join(c, "a1")
			r.BroadcastToRoom("a1", domain.BidUpdateMessage{Type: domain.MsgBidUpdate, AuctionID: "a1"})
			r.Leave(c, "a1")
			r.Disconnect(c)
		}(i)
	}
	wg.Wait()

	require.Equal(t, 20, stable.countByType(domain.MsgBidUpdate))
}
