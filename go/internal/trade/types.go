package trade

import (
	"github.com/google/uuid"
	"github.com/mcdev12/capspace/go/internal/models"
)

// AssetInput is one asset movement in a proposal or counteroffer. Type selects which id is read.
type AssetInput struct {
	Type              models.TradeAssetType `json:"type"`
	ContractID        *int64                `json:"contract_id,omitempty"`
	DraftPickID       *int64                `json:"draft_pick_id,omitempty"`
	DraftPickOptionID *int64                `json:"draft_pick_option_id,omitempty"`
	// Clause attaches a new option to DraftPickID when DraftPickOptionID is unset.
	Clause     string    `json:"clause,omitempty"`
	FromTeamID uuid.UUID `json:"from_team_id"`
	ToTeamID   uuid.UUID `json:"to_team_id"`
}

// ProposeRequest represents a new trade offer from the acting team
type ProposeRequest struct {
	LeagueID      uuid.UUID    `json:"league_id"`
	SeasonEndYear int          `json:"season_end_year"`
	ToTeamIDs     []uuid.UUID  `json:"to_team_ids"`
	Assets        []AssetInput `json:"assets"`
}

// Details is a trade with its assets and actions
type Details struct {
	Trade   models.Trade         `json:"trade"`
	Assets  []models.TradeAsset  `json:"assets"`
	Actions []models.TradeAction `json:"actions"`
}
