package memstore

import (
	"cmp"
	"context"

	"github.com/google/uuid"
	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/models"
)

func byContractID(a, b models.Contract) int { return cmp.Compare(a.ID, b.ID) }

// checkOneActive mirrors the partial unique indexes on contract.
func (tx *Tx) checkOneActive(c models.Contract) error {
	if c.Status != models.ContractStatusActive {
		return nil
	}
	for _, o := range tx.st.contracts {
		if o.Status != models.ContractStatusActive || o.LeagueID != c.LeagueID || o.SeasonEndYear != c.SeasonEndYear {
			continue
		}
		samePlayer := c.PlayerID != nil && o.PlayerID != nil && *c.PlayerID == *o.PlayerID
		sameLeaguePlayer := c.LeaguePlayerID != nil && o.LeaguePlayerID != nil && *c.LeaguePlayerID == *o.LeaguePlayerID
		if samePlayer || sameLeaguePlayer {
			return apperr.Validation(apperr.CodeDuplicateActiveContract,
				"player already has active contract %d in season %d", o.ID, o.SeasonEndYear)
		}
	}
	return nil
}

func (tx *Tx) GetContract(_ context.Context, id int64) (*models.Contract, error) {
	c, ok := tx.st.contracts[id]
	if !ok {
		return nil, apperr.NotFound("contract", id)
	}
	return &c, nil
}

func (tx *Tx) InsertContractRoot(_ context.Context, c models.Contract) (*models.Contract, error) {
	if err := tx.checkOneActive(c); err != nil {
		return nil, err
	}
	c.ID = tx.st.id()
	c.PreviousContractID = nil
	root := c.ID
	c.OriginalContractID = &root
	c.CreatedAt = tx.clock.Now()
	tx.st.contracts[c.ID] = c
	return &c, nil
}

func (tx *Tx) ReplaceContract(_ context.Context, currentID int64, next models.Contract) (*models.Contract, error) {
	current, ok := tx.st.contracts[currentID]
	if !ok {
		return nil, apperr.NotFound("contract", currentID)
	}
	if current.Status != models.ContractStatusActive {
		return nil, apperr.Conflict(apperr.CodeInvalidState, nil, "contract %d is %s, not the active head of its chain", currentID, current.Status)
	}
	current.Status = models.ContractStatusReplaced
	tx.st.contracts[currentID] = current

	if err := tx.checkOneActive(next); err != nil {
		return nil, err
	}
	next.ID = tx.st.id()
	next.CreatedAt = tx.clock.Now()
	tx.st.contracts[next.ID] = next
	return &next, nil
}

func (tx *Tx) GetLatestInChain(_ context.Context, originalContractID int64) (*models.Contract, error) {
	var latest *models.Contract
	for _, c := range tx.st.contracts {
		if c.OriginalContractID == nil || *c.OriginalContractID != originalContractID {
			continue
		}
		if latest == nil || c.ID > latest.ID {
			c := c
			latest = &c
		}
	}
	if latest == nil {
		return nil, apperr.NotFound("contract chain", originalContractID)
	}
	return latest, nil
}

func (tx *Tx) ListContractChain(_ context.Context, originalContractID int64) ([]models.Contract, error) {
	return sortedValues(tx.st.contracts, func(c models.Contract) bool {
		return c.OriginalContractID != nil && *c.OriginalContractID == originalContractID
	}, byContractID), nil
}

func (tx *Tx) ListActiveContractsByTeam(_ context.Context, leagueID uuid.UUID, seasonEndYear int, teamID uuid.UUID) ([]models.Contract, error) {
	return sortedValues(tx.st.contracts, func(c models.Contract) bool {
		return c.LeagueID == leagueID && c.SeasonEndYear == seasonEndYear &&
			c.Status == models.ContractStatusActive && c.OwnedBy(teamID)
	}, byContractID), nil
}

func (tx *Tx) ListActiveContractsByLeague(_ context.Context, leagueID uuid.UUID, seasonEndYear int) ([]models.Contract, error) {
	return sortedValues(tx.st.contracts, func(c models.Contract) bool {
		return c.LeagueID == leagueID && c.SeasonEndYear == seasonEndYear && c.Status == models.ContractStatusActive
	}, byContractID), nil
}
