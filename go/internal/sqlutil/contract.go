package sqlutil

import (
	"github.com/mcdev12/capspace/go/internal/db"
	"github.com/mcdev12/capspace/go/internal/models"
)

// ContractToModel converts a contract row. Contract rows are read by more than
// one repository, so the conversion lives here rather than in one of them.
func ContractToModel(c db.Contract) *models.Contract {
	return &models.Contract{
		ID:                 c.ID,
		LeagueID:           c.LeagueID,
		SeasonEndYear:      int(c.SeasonEndYear),
		PlayerID:           FromNullUUID(c.PlayerID),
		LeaguePlayerID:     FromNullUUID(c.LeaguePlayerID),
		TeamID:             FromNullUUID(c.TeamID),
		ContractYear:       int(c.ContractYear),
		ContractType:       models.ContractType(c.ContractType),
		IsIR:               c.IsIr,
		Salary:             int(c.Salary),
		Status:             models.ContractStatus(c.Status),
		PreviousContractID: FromNullInt64(c.PreviousContractID),
		OriginalContractID: FromNullInt64(c.OriginalContractID),
		CreatedAt:          c.CreatedAt,
	}
}

// ContractsToModels converts contract rows.
func ContractsToModels(rows []db.Contract) []models.Contract {
	out := make([]models.Contract, len(rows))
	for i, c := range rows {
		out[i] = *ContractToModel(c)
	}
	return out
}
