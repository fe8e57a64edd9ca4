package domain

// Websocket frame types. Inbound frames come from bidder clients, outbound
// frames go to them. Timestamps on the wire are Unix milliseconds.

const (
	MsgPlaceBid     = "place_bid"
	MsgJoinAuction  = "join_auction"
	MsgLeaveAuction = "leave_auction"
	MsgHeartbeat    = "heartbeat"
	MsgPing         = "ping"

	MsgBidSuccess    = "bid_success"
	MsgBidError      = "bid_error"
	MsgBidUpdate     = "bid_update"
	MsgOutbid        = "outbid"
	MsgAuctionState  = "auction_state"
	MsgAuctionClosed = "auction_closed"
	MsgHeartbeatAck  = "heartbeat_ack"
	MsgPong          = "pong"
)

// InboundMessage is the envelope for every client frame; unused fields are
// zero for a given type.
type InboundMessage struct {
	Type       string `json:"type"`
	AuctionID  string `json:"auction_id,omitempty"`
	Amount     int64  `json:"amount,omitempty"`
	ClientTime int64  `json:"client_time,omitempty"`
}

type BidSuccessMessage struct {
	Type      string `json:"type"`
	AuctionID string `json:"auction_id"`
	NewBid    int64  `json:"new_bid"`
}

type BidErrorMessage struct {
	Type      string `json:"type"`
	AuctionID string `json:"auction_id"`
	Reason    string `json:"reason"`
	Message   string `json:"message"`
	// Present on BID_TOO_LOW so the client can adopt the authoritative price.
	CurrentBid int64 `json:"current_bid,omitempty"`
	MinimumBid int64 `json:"minimum_bid,omitempty"`
}

type BidUpdateMessage struct {
	Type             string `json:"type"`
	AuctionID        string `json:"auction_id"`
	NewBid           int64  `json:"new_bid"`
	LeaderID         string `json:"leader_id"`
	PreviousLeaderID string `json:"previous_leader_id,omitempty"`
	PreviousBid      int64  `json:"previous_bid"`
	Timestamp        int64  `json:"timestamp"`
}

type OutbidMessage struct {
	Type      string `json:"type"`
	AuctionID string `json:"auction_id"`
	NewBid    int64  `json:"new_bid"`
	OutbidBy  string `json:"outbid_by"`
	Timestamp int64  `json:"timestamp"`
}

type AuctionStateMessage struct {
	Type       string   `json:"type"`
	Auction    Snapshot `json:"auction"`
	ServerTime int64    `json:"server_time"`
}

type AuctionClosedMessage struct {
	Type      string `json:"type"`
	AuctionID string `json:"auction_id"`
	FinalBid  int64  `json:"final_bid"`
	WinnerID  string `json:"winner_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type HeartbeatAckMessage struct {
	Type       string `json:"type"`
	ServerTime int64  `json:"server_time"`
	ClientTime int64  `json:"client_time"`
}
