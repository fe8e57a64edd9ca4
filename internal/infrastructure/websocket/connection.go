package websocket

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/khushi-tulsiyan/auctionmania/pkg/logger"
	"github.com/khushi-tulsiyan/auctionmania/pkg/utils"
)

const sendQueueSize = 256

var (
	errConnectionClosed = errors.New("connection closed")
	errSendQueueFull    = errors.New("send queue full")
)

// Connection wraps one gorilla websocket connection. Outbound messages are
// queued and drained by a single writer goroutine: Send never blocks on the
// socket, and queued messages reach the wire in Send order. A slow peer
// therefore delays only its own writer, never the caller.
type Connection struct {
	id        string
	bidderID  string
	conn      *websocket.Conn
	sendCh    chan interface{}
	done      chan struct{}
	closeOnce sync.Once
	log       logger.Logger
}

func NewConnection(conn *websocket.Conn, bidderID string, log logger.Logger) *Connection {
	c := &Connection{
		id:       utils.GenerateID("conn"),
		bidderID: bidderID,
		conn:     conn,
		sendCh:   make(chan interface{}, sendQueueSize),
		done:     make(chan struct{}),
		log:      log,
	}
	go c.writeLoop()
	return c
}

func (c *Connection) ID() string { return c.id }

func (c *Connection) BidderID() string { return c.bidderID }

// Send queues the message for asynchronous delivery. A full queue means the
// peer is not draining; the message is dropped and the error reported rather
// than blocking the caller.
func (c *Connection) Send(message interface{}) error {
	select {
	case <-c.done:
		return errConnectionClosed
	default:
	}

	select {
	case c.sendCh <- message:
		return nil
	default:
		return errSendQueueFull
	}
}

func (c *Connection) writeLoop() {
	for {
		select {
		case message := <-c.sendCh:
			if err := c.conn.WriteJSON(message); err != nil {
				c.log.Error("failed to write to connection", "conn_id", c.id, "error", err)
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Connection) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return c.conn.Close()
}
