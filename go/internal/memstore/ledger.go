package memstore

import (
	"cmp"
	"context"

	"github.com/google/uuid"
	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/models"
)

func (tx *Tx) InsertTransaction(_ context.Context, t models.Transaction) (*models.Transaction, error) {
	if t.DeadlineID != nil {
		if _, ok := tx.st.deadlines[*t.DeadlineID]; !ok {
			return nil, apperr.NotFound("deadline", *t.DeadlineID)
		}
	}
	t.ID = tx.st.id()
	t.CreatedAt = tx.clock.Now()
	tx.st.transactions[t.ID] = t
	return &t, nil
}

func (tx *Tx) InsertTeamUpdate(_ context.Context, u models.TeamUpdate) (*models.TeamUpdate, error) {
	if _, ok := tx.st.transactions[u.TransactionID]; !ok {
		return nil, apperr.NotFound("transaction", u.TransactionID)
	}
	u.ID = tx.st.id()
	u.Data = cloneRaw(u.Data)
	u.CreatedAt = tx.clock.Now()
	tx.st.teamUpdates[u.ID] = u
	return &u, nil
}

func (tx *Tx) ListTeamUpdates(_ context.Context, transactionID int64) ([]models.TeamUpdate, error) {
	return sortedValues(tx.st.teamUpdates,
		func(u models.TeamUpdate) bool { return u.TransactionID == transactionID },
		func(a, b models.TeamUpdate) int { return cmp.Compare(a.ID, b.ID) },
	), nil
}

func (tx *Tx) FindTeamTransaction(_ context.Context, teamID uuid.UUID, txType models.TransactionType, deadlineID int64) (*models.Transaction, error) {
	var found *models.Transaction
	for _, t := range tx.st.transactions {
		if t.TeamID == nil || *t.TeamID != teamID || t.Type != txType || t.DeadlineID == nil || *t.DeadlineID != deadlineID {
			continue
		}
		if found == nil || t.ID > found.ID {
			t := t
			found = &t
		}
	}
	return found, nil
}

func (tx *Tx) ListTransactions(_ context.Context, leagueID uuid.UUID, seasonEndYear int) ([]models.Transaction, error) {
	return sortedValues(tx.st.transactions,
		func(t models.Transaction) bool { return t.LeagueID == leagueID && t.SeasonEndYear == seasonEndYear },
		func(a, b models.Transaction) int { return cmp.Compare(a.ID, b.ID) },
	), nil
}

// ListInSeasonDroppedContracts returns the contracts a team dropped during the regular or post season.
func (tx *Tx) ListInSeasonDroppedContracts(_ context.Context, leagueID uuid.UUID, seasonEndYear int, teamID uuid.UUID) ([]models.Contract, error) {
	drops := sortedValues(tx.st.transactions,
		func(t models.Transaction) bool {
			if t.LeagueID != leagueID || t.SeasonEndYear != seasonEndYear || t.Type != models.TransactionTypeDrop {
				return false
			}
			if t.TeamID == nil || *t.TeamID != teamID || t.DeadlineID == nil || t.ContractID == nil {
				return false
			}
			d, ok := tx.st.deadlines[*t.DeadlineID]
			return ok && d.Type.InSeason()
		},
		func(a, b models.Transaction) int { return cmp.Compare(a.ID, b.ID) },
	)

	out := make([]models.Contract, 0, len(drops))
	for _, t := range drops {
		c, ok := tx.st.contracts[*t.ContractID]
		if !ok {
			return nil, apperr.NotFound("contract", *t.ContractID)
		}
		out = append(out, c)
	}
	return out, nil
}
