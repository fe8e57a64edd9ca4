package websocket

import (
	"sync"

	"github.com/khushi-tulsiyan/auctionmania/internal/domain"
	"github.com/khushi-tulsiyan/auctionmania/pkg/logger"
)

// Router maps each auction id to its room of subscribed connections and fans
// state-change events out to exactly that set. It also keeps a bidder index so
// the outbid notification can reach one specific previous leader. Membership
// and broadcast for the same auction can run concurrently.
type Router struct {
	rooms   map[string]map[string]domain.Connection // auctionID -> connID -> conn
	bidders map[string]map[string]domain.Connection // bidderID -> connID -> conn
	mutex   sync.RWMutex
	log     logger.Logger
}

func NewRouter(log logger.Logger) *Router {
	return &Router{
		rooms:   make(map[string]map[string]domain.Connection),
		bidders: make(map[string]map[string]domain.Connection),
		log:     log,
	}
}

// Join adds the connection to the auction's room and registers it under its
// bidder id.
func (r *Router) Join(conn domain.Connection, auctionID string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.rooms[auctionID] == nil {
		r.rooms[auctionID] = make(map[string]domain.Connection)
	}
	r.rooms[auctionID][conn.ID()] = conn

	if r.bidders[conn.BidderID()] == nil {
		r.bidders[conn.BidderID()] = make(map[string]domain.Connection)
	}
	r.bidders[conn.BidderID()][conn.ID()] = conn

	r.log.Info("joined room", "conn_id", conn.ID(), "bidder_id", conn.BidderID(), "auction_id", auctionID)
}

// Leave removes the connection from one room. The bidder index entry stays
// until Disconnect so outbid delivery keeps working for its other rooms.
func (r *Router) Leave(conn domain.Connection, auctionID string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if room, exists := r.rooms[auctionID]; exists {
		delete(room, conn.ID())
		if len(room) == 0 {
			delete(r.rooms, auctionID)
		}
	}

	r.log.Info("left room", "conn_id", conn.ID(), "auction_id", auctionID)
}

// Disconnect removes the connection from every room and from the bidder index.
func (r *Router) Disconnect(conn domain.Connection) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for auctionID, room := range r.rooms {
		delete(room, conn.ID())
		if len(room) == 0 {
			delete(r.rooms, auctionID)
		}
	}

	if conns, exists := r.bidders[conn.BidderID()]; exists {
		delete(conns, conn.ID())
		if len(conns) == 0 {
			delete(r.bidders, conn.BidderID())
		}
	}

	r.log.Info("disconnected", "conn_id", conn.ID(), "bidder_id", conn.BidderID())
}

func (r *Router) roomConnections(auctionID string) []domain.Connection {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var conns []domain.Connection
	for _, conn := range r.rooms[auctionID] {
		conns = append(conns, conn)
	}
	return conns
}

func (r *Router) bidderConnections(bidderID string) []domain.Connection {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var conns []domain.Connection
	for _, conn := range r.bidders[bidderID] {
		conns = append(conns, conn)
	}
	return conns
}

// BroadcastToRoom delivers the message to every current member of the room.
// One member's send failure never affects the others.
func (r *Router) BroadcastToRoom(auctionID string, message interface{}) {
	for _, conn := range r.roomConnections(auctionID) {
		if err := conn.Send(message); err != nil {
			r.log.Error("failed to send to room member",
				"auction_id", auctionID, "conn_id", conn.ID(), "error", err)
		}
	}
}

// BroadcastBidAccepted sends the bid_update to the whole room and, when a
// distinct previous leader exists, the outbid notification to that bidder's
// connections only. A leader raising their own bid gets no outbid.
func (r *Router) BroadcastBidAccepted(auctionID string, result domain.BidResult) {
	r.BroadcastToRoom(auctionID, domain.BidUpdateMessage{
		Type:             domain.MsgBidUpdate,
		AuctionID:        auctionID,
		NewBid:           result.NewBid,
		LeaderID:         result.LeaderID,
		PreviousLeaderID: result.PreviousLeader,
		PreviousBid:      result.PreviousBid,
		Timestamp:        result.Timestamp.UnixMilli(),
	})

	if result.PreviousLeader == "" || result.PreviousLeader == result.LeaderID {
		return
	}

	outbid := domain.OutbidMessage{
		Type:      domain.MsgOutbid,
		AuctionID: auctionID,
		NewBid:    result.NewBid,
		OutbidBy:  result.LeaderID,
		Timestamp: result.Timestamp.UnixMilli(),
	}
	for _, conn := range r.bidderConnections(result.PreviousLeader) {
		if err := conn.Send(outbid); err != nil {
			r.log.Error("failed to send outbid",
				"auction_id", auctionID, "bidder_id", result.PreviousLeader, "error", err)
		}
	}
}
