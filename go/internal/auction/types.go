package auction

import (
	"time"

	"github.com/mcdev12/capspace/go/internal/models"
)

// CreateAuctionRequest represents the request to put a contract up for auction
type CreateAuctionRequest struct {
	ContractID       int64 `json:"contract_id"`
	MinimumBidAmount int   `json:"minimum_bid_amount"`
	// StartTimestamp defaults to now.
	StartTimestamp *time.Time `json:"start_timestamp,omitempty"`
}

// Result is the outcome of resolving an auction
type Result struct {
	Auction    models.Auction     `json:"auction"`
	Contract   *models.Contract   `json:"contract"`
	WinningBid *models.AuctionBid `json:"winning_bid,omitempty"`
	// AlreadyResolved is set when the auction was closed before this call; nothing was written.
	AlreadyResolved bool `json:"already_resolved"`
	// Voided is set when the contract left its chain head while the auction was open.
	// The auction is closed without a result and bids are ignored.
	Voided bool `json:"voided"`
}
