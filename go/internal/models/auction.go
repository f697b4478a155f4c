package models

import (
	"time"

	"github.com/google/uuid"
)

// Auction sells one contract to the highest bidding team.
type Auction struct {
	ID                int64      `json:"id"`
	LeagueID          uuid.UUID  `json:"league_id"`
	SeasonEndYear     int        `json:"season_end_year"`
	ContractID        int64      `json:"contract_id"`
	MinimumBidAmount  int        `json:"minimum_bid_amount"`
	StartTimestamp    time.Time  `json:"start_timestamp"`
	SoftEndTimestamp  time.Time  `json:"soft_end_timestamp"`
	FixedEndTimestamp time.Time  `json:"fixed_end_timestamp"`
	ClosedAt          *time.Time `json:"closed_at,omitempty"`
	ResultContractID  *int64     `json:"result_contract_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Open reports whether a bid placed at t would be within the bidding window.
func (a Auction) Open(t time.Time) bool {
	return a.ClosedAt == nil && !t.Before(a.StartTimestamp) && t.Before(a.FixedEndTimestamp)
}

// AuctionBid is one accepted bid. Bids on an auction are strictly increasing by id.
type AuctionBid struct {
	ID        int64     `json:"id"`
	AuctionID int64     `json:"auction_id"`
	TeamID    uuid.UUID `json:"team_id"`
	UserID    uuid.UUID `json:"user_id"`
	Amount    int       `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}
