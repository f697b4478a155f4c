package roster

import "github.com/google/uuid"

// SaveKeepersRequest lists the contracts a team keeps through the keeper deadline
type SaveKeepersRequest struct {
	LeagueID      uuid.UUID `json:"league_id"`
	SeasonEndYear int       `json:"season_end_year"`
	ContractIDs   []int64   `json:"contract_ids"`
}
