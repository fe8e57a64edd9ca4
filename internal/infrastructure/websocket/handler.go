package websocket

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/khushi-tulsiyan/auctionmania/internal/auction"
	"github.com/khushi-tulsiyan/auctionmania/internal/domain"
	"github.com/khushi-tulsiyan/auctionmania/pkg/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// Handler owns the websocket gateway: it upgrades connections, runs the
// per-connection read loop and dispatches inbound frames. The bidder identity
// is taken from the connection, never from individual frames.
//
// The gateway is the server half of the countdown protocol: it ships
// server_time on join and in every heartbeat_ack, and clients fold those
// samples into an internal/clocksync Tracker to render countdowns. The
// acceptance decision never reads a client clock.
type Handler struct {
	bidPlacer domain.BidPlacer
	registry  *auction.Registry
	router    *Router
	clock     clockwork.Clock
	log       logger.Logger
}

func NewHandler(
	bidPlacer domain.BidPlacer,
	registry *auction.Registry,
	router *Router,
	clock clockwork.Clock,
	log logger.Logger,
) *Handler {
	return &Handler{
		bidPlacer: bidPlacer,
		registry:  registry,
		router:    router,
		clock:     clock,
		log:       log,
	}
}

func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	bidderID := r.URL.Query().Get("bidder_id")
	if bidderID == "" {
		http.Error(w, "bidder_id required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("failed to upgrade connection", "error", err)
		return
	}

	wsConn := NewConnection(conn, bidderID, h.log)
	h.log.Info("connection established", "conn_id", wsConn.ID(), "bidder_id", bidderID)

	go h.readLoop(wsConn, conn)
}

func (h *Handler) readLoop(wsConn *Connection, conn *websocket.Conn) {
	defer func() {
		h.router.Disconnect(wsConn)
		wsConn.Close()
	}()

	for {
		var msg domain.InboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			h.log.Info("connection read ended", "conn_id", wsConn.ID(), "error", err)
			return
		}

		switch msg.Type {
		case domain.MsgPlaceBid:
			h.handlePlaceBid(wsConn, msg)
		case domain.MsgJoinAuction:
			h.handleJoin(wsConn, msg.AuctionID)
		case domain.MsgLeaveAuction:
			h.router.Leave(wsConn, msg.AuctionID)
		case domain.MsgHeartbeat:
			h.handleHeartbeat(wsConn, msg.ClientTime)
		case domain.MsgPing:
			h.send(wsConn, map[string]string{"type": domain.MsgPong})
		default:
			h.log.Warn("unknown message type", "conn_id", wsConn.ID(), "type", msg.Type)
		}
	}
}

// send is the direct-reply path; failures are logged like broadcast failures.
func (h *Handler) send(conn *Connection, message interface{}) {
	if err := conn.Send(message); err != nil {
		h.log.Error("failed to send reply", "conn_id", conn.ID(), "error", err)
	}
}

func (h *Handler) handlePlaceBid(conn *Connection, msg domain.InboundMessage) {
	result := h.bidPlacer.PlaceBid(context.Background(), msg.AuctionID, conn.BidderID(), msg.Amount)

	if result.Accepted {
		h.send(conn, domain.BidSuccessMessage{
			Type:      domain.MsgBidSuccess,
			AuctionID: result.AuctionID,
			NewBid:    result.NewBid,
		})
		return
	}

	h.send(conn, domain.BidErrorMessage{
		Type:       domain.MsgBidError,
		AuctionID:  result.AuctionID,
		Reason:     string(result.Reason),
		Message:    result.Message(),
		CurrentBid: result.CurrentBid,
		MinimumBid: result.MinimumBid,
	})
}

// handleJoin adds the connection to the room and immediately ships the current
// state with the server timestamp for the initial clock-sync sample.
func (h *Handler) handleJoin(conn *Connection, auctionID string) {
	a, ok := h.registry.Get(auctionID)
	if !ok {
		h.send(conn, domain.BidErrorMessage{
			Type:      domain.MsgBidError,
			AuctionID: auctionID,
			Reason:    string(domain.RejectNotFound),
			Message:   "auction not found",
		})
		return
	}

	h.router.Join(conn, auctionID)

	h.send(conn, domain.AuctionStateMessage{
		Type:       domain.MsgAuctionState,
		Auction:    a.Snapshot(),
		ServerTime: h.clock.Now().UnixMilli(),
	})
}

// handleHeartbeat echoes the client's own timestamp alongside a fresh server
// timestamp; the pair is one clocksync.Sample for the client's Tracker.
// Cadence is the client's concern; a missed heartbeat only lets that client's
// offset go stale.
func (h *Handler) handleHeartbeat(conn *Connection, clientTime int64) {
	h.send(conn, domain.HeartbeatAckMessage{
		Type:       domain.MsgHeartbeatAck,
		ServerTime: h.clock.Now().UnixMilli(),
		ClientTime: clientTime,
	})
}
