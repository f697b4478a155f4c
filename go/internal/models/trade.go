package models

import (
	"time"

	"github.com/google/uuid"
)

// TradeStatus defines the status of a trade in its chain.
type TradeStatus string

const (
	TradeStatusProposed                   TradeStatus = "PROPOSED"
	TradeStatusCompleted                  TradeStatus = "COMPLETED"
	TradeStatusCanceled                   TradeStatus = "CANCELED"
	TradeStatusRejected                   TradeStatus = "REJECTED"
	TradeStatusCounteroffered             TradeStatus = "COUNTEROFFERED"
	TradeStatusInvalidatedByExternalTrade TradeStatus = "INVALIDATED_BY_EXTERNAL_TRADE"
)

// Terminal reports whether no further action can be taken on a trade with this status.
func (s TradeStatus) Terminal() bool {
	return s != TradeStatusProposed
}

// TradeActionType is a single team-user decision on a trade.
type TradeActionType string

const (
	TradeActionPropose      TradeActionType = "PROPOSE"
	TradeActionAccept       TradeActionType = "ACCEPT"
	TradeActionReject       TradeActionType = "REJECT"
	TradeActionCancel       TradeActionType = "CANCEL"
	TradeActionCounteroffer TradeActionType = "COUNTEROFFER"
)

// TradeAssetType tags which asset a TradeAsset references.
type TradeAssetType string

const (
	TradeAssetContract        TradeAssetType = "CONTRACT"
	TradeAssetDraftPick       TradeAssetType = "DRAFT_PICK"
	TradeAssetDraftPickOption TradeAssetType = "DRAFT_PICK_OPTION"
)

// Trade is one record of a trade negotiation chain.
type Trade struct {
	ID              int64       `json:"id"`
	LeagueID        uuid.UUID   `json:"league_id"`
	SeasonEndYear   int         `json:"season_end_year"`
	Status          TradeStatus `json:"status"`
	PreviousTradeID *int64      `json:"previous_trade_id,omitempty"`
	OriginalTradeID *int64      `json:"original_trade_id,omitempty"`
	TeamIDs         []uuid.UUID `json:"team_ids"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// RootID returns the id of the chain root this trade belongs to.
func (t Trade) RootID() int64 {
	if t.OriginalTradeID != nil {
		return *t.OriginalTradeID
	}
	return t.ID
}

// Involves reports whether teamID is a party to the trade.
func (t Trade) Involves(teamID uuid.UUID) bool {
	for _, id := range t.TeamIDs {
		if id == teamID {
			return true
		}
	}
	return false
}

// TradeAction records one team-user decision.
type TradeAction struct {
	ID        int64           `json:"id"`
	TradeID   int64           `json:"trade_id"`
	TeamID    uuid.UUID       `json:"team_id"`
	UserID    uuid.UUID       `json:"user_id"`
	Action    TradeActionType `json:"action"`
	CreatedAt time.Time       `json:"created_at"`
}

// TradeAsset moves exactly one contract, draft pick or draft pick option between two teams.
type TradeAsset struct {
	ID                int64          `json:"id"`
	TradeID           int64          `json:"trade_id"`
	AssetType         TradeAssetType `json:"asset_type"`
	ContractID        *int64         `json:"contract_id,omitempty"`
	DraftPickID       *int64         `json:"draft_pick_id,omitempty"`
	DraftPickOptionID *int64         `json:"draft_pick_option_id,omitempty"`
	FromTeamID        uuid.UUID      `json:"from_team_id"`
	ToTeamID          uuid.UUID      `json:"to_team_id"`
}

// TeamUser is the acting identity for trade actions and bids.
type TeamUser struct {
	UserID uuid.UUID `json:"user_id"`
	TeamID uuid.UUID `json:"team_id"`
}
