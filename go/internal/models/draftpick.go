package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftPick is a tradable rookie draft pick for one season and round.
type DraftPick struct {
	ID                  int64      `json:"id"`
	LeagueID            uuid.UUID  `json:"league_id"`
	SeasonEndYear       int        `json:"season_end_year"`
	Round               int        `json:"round"`
	OriginalOwnerTeamID uuid.UUID  `json:"original_owner_team_id"`
	CurrentOwnerTeamID  uuid.UUID  `json:"current_owner_team_id"`
	UsedAt              *time.Time `json:"used_at,omitempty"` // nil until used at the rookie draft
	CreatedAt           time.Time  `json:"created_at"`
}

// DraftPickOptionStatus defines the status of a draft pick option.
type DraftPickOptionStatus string

const (
	DraftPickOptionStatusProposed                             DraftPickOptionStatus = "PROPOSED"
	DraftPickOptionStatusActive                               DraftPickOptionStatus = "ACTIVE"
	DraftPickOptionStatusUsed                                 DraftPickOptionStatus = "USED"
	DraftPickOptionStatusCancelledViaTradeRejection           DraftPickOptionStatus = "CANCELLED_VIA_TRADE_REJECTION"
	DraftPickOptionStatusCancelledViaDraftPickOptionAmendment DraftPickOptionStatus = "CANCELLED_VIA_DRAFT_PICK_OPTION_AMENDMENT"
	DraftPickOptionStatusInvalidatedByExternalTrade           DraftPickOptionStatus = "INVALIDATED_BY_EXTERNAL_TRADE"
)

// DraftPickOption is a clause attached to a draft pick through a trade, e.g. a swap or protection.
type DraftPickOption struct {
	ID          int64                 `json:"id"`
	DraftPickID int64                 `json:"draft_pick_id"`
	Clause      string                `json:"clause"`
	Status      DraftPickOptionStatus `json:"status"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}
