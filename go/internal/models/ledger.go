package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TransactionType names the operation a Transaction audits.
type TransactionType string

const (
	TransactionTypeAuctionClose     TransactionType = "AUCTION_CLOSE"
	TransactionTypeTradeCompletion  TransactionType = "TRADE_COMPLETION"
	TransactionTypeDrop             TransactionType = "DROP"
	TransactionTypeKeeperSave       TransactionType = "KEEPER_SAVE"
	TransactionTypeRosterLock       TransactionType = "ROSTER_LOCK"
	TransactionTypeContractAdvance  TransactionType = "CONTRACT_ADVANCE"
	TransactionTypeActivateRookie   TransactionType = "ACTIVATE_ROOKIE"
	TransactionTypeIRMove           TransactionType = "IR_MOVE"
	TransactionTypeFreeAgentSigning TransactionType = "FREE_AGENT_SIGNING"
	TransactionTypeRookieDraft      TransactionType = "ROOKIE_DRAFT"
	TransactionTypeContractExpire   TransactionType = "CONTRACT_EXPIRE"
	TransactionTypeSettingsChange   TransactionType = "SETTINGS_CHANGE"
)

// Transaction is the append-only audit record of one committed operation.
type Transaction struct {
	ID            int64           `json:"id"`
	LeagueID      uuid.UUID       `json:"league_id"`
	SeasonEndYear int             `json:"season_end_year"`
	Type          TransactionType `json:"type"`
	DeadlineID    *int64          `json:"deadline_id,omitempty"`
	TeamID        *uuid.UUID      `json:"team_id,omitempty"`
	ContractID    *int64          `json:"contract_id,omitempty"`
	TradeID       *int64          `json:"trade_id,omitempty"`
	AuctionID     *int64          `json:"auction_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TeamUpdate is the per-team summary a Transaction produced. Data holds the encoded payload.
type TeamUpdate struct {
	ID            int64           `json:"id"`
	TransactionID int64           `json:"transaction_id"`
	TeamID        uuid.UUID       `json:"team_id"`
	Data          json.RawMessage `json:"data"`
	CreatedAt     time.Time       `json:"created_at"`
}
