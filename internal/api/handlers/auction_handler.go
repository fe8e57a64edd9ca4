package handlers

import (
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"

	"github.com/khushi-tulsiyan/auctionmania/internal/auction"
	"github.com/khushi-tulsiyan/auctionmania/internal/domain"
	"github.com/khushi-tulsiyan/auctionmania/pkg/logger"
)

// AuctionHandler serves the read-only query API: auction listings, single
// snapshots and bid histories.
type AuctionHandler struct {
	registry *auction.Registry
	clock    clockwork.Clock
	log      logger.Logger
}

type ListAuctionsResponse struct {
	Auctions   []domain.Snapshot `json:"auctions"`
	ServerTime int64             `json:"server_time"`
}

type BidHistoryResponse struct {
	AuctionID string       `json:"auction_id"`
	Bids      []domain.Bid `json:"bids"`
}

func NewAuctionHandler(registry *auction.Registry, clock clockwork.Clock, log logger.Logger) *AuctionHandler {
	return &AuctionHandler{
		registry: registry,
		clock:    clock,
		log:      log,
	}
}

func (h *AuctionHandler) ListAuctions(c echo.Context) error {
	return c.JSON(http.StatusOK, ListAuctionsResponse{
		Auctions:   h.registry.ListAll(),
		ServerTime: h.clock.Now().UnixMilli(),
	})
}

func (h *AuctionHandler) GetAuction(c echo.Context) error {
	id := c.Param("id")

	a, ok := h.registry.Get(id)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "auction not found"})
	}

	return c.JSON(http.StatusOK, a.Snapshot())
}

func (h *AuctionHandler) GetBidHistory(c echo.Context) error {
	id := c.Param("id")

	bids, ok := h.registry.GetHistory(id)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "auction not found"})
	}
	if bids == nil {
		bids = []domain.Bid{}
	}

	return c.JSON(http.StatusOK, BidHistoryResponse{
		AuctionID: id,
		Bids:      bids,
	})
}
