package contract

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/models"
)

// ChainRepository defines the contract table operations
type ChainRepository interface {
	GetContract(ctx context.Context, id int64) (*models.Contract, error)
	InsertContractRoot(ctx context.Context, c models.Contract) (*models.Contract, error)
	ReplaceContract(ctx context.Context, currentID int64, next models.Contract) (*models.Contract, error)
	GetLatestInChain(ctx context.Context, originalContractID int64) (*models.Contract, error)
	ListContractChain(ctx context.Context, originalContractID int64) ([]models.Contract, error)
	ListActiveContractsByTeam(ctx context.Context, leagueID uuid.UUID, seasonEndYear int, teamID uuid.UUID) ([]models.Contract, error)
	ListActiveContractsByLeague(ctx context.Context, leagueID uuid.UUID, seasonEndYear int) ([]models.Contract, error)
}

// InsertRoot validates and inserts the first contract of a chain.
func InsertRoot(ctx context.Context, repo ChainRepository, c models.Contract) (*models.Contract, error) {
	if err := Validate(c); err != nil {
		return nil, err
	}
	root, err := repo.InsertContractRoot(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to insert contract: %w", err)
	}
	return root, nil
}

// ReplaceInChain flips current to REPLACED and inserts next as the new head.
// It must run inside the caller's transaction: a failed insert rolls back the flip.
func ReplaceInChain(ctx context.Context, repo ChainRepository, current, next models.Contract) (*models.Contract, error) {
	if err := Validate(next); err != nil {
		return nil, err
	}
	if next.PreviousContractID == nil || *next.PreviousContractID != current.ID ||
		next.OriginalContractID == nil || *next.OriginalContractID != current.RootID() {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "successor does not follow contract %d", current.ID)
	}

	latest, err := repo.GetLatestInChain(ctx, current.RootID())
	if err != nil {
		return nil, fmt.Errorf("failed to get latest contract in chain: %w", err)
	}
	if latest.ID != current.ID {
		return nil, apperr.Conflict(apperr.CodeInvalidState, nil,
			"contract %d was replaced by %d", current.ID, latest.ID)
	}

	replaced, err := repo.ReplaceContract(ctx, current.ID, next)
	if err != nil {
		return nil, fmt.Errorf("failed to replace contract %d: %w", current.ID, err)
	}
	return replaced, nil
}
