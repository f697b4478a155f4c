package contract

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/db"
	"github.com/mcdev12/capspace/go/internal/models"
	"github.com/mcdev12/capspace/go/internal/sqlutil"
)

// Querier defines what the repository needs from the database layer
type Querier interface {
	GetContract(ctx context.Context, id int64) (db.Contract, error)
	InsertContract(ctx context.Context, arg db.InsertContractParams) (db.Contract, error)
	SetContractRoot(ctx context.Context, id int64) (db.Contract, error)
	MarkContractReplaced(ctx context.Context, id int64) (int64, error)
	GetLatestContractInChain(ctx context.Context, originalContractID int64) (db.Contract, error)
	ListContractChain(ctx context.Context, originalContractID int64) ([]db.Contract, error)
	ListActiveContractsByTeam(ctx context.Context, arg db.ListActiveContractsByTeamParams) ([]db.Contract, error)
	ListActiveContractsByLeague(ctx context.Context, arg db.ListActiveContractsByLeagueParams) ([]db.Contract, error)
}

// Repository implements the contract table
type Repository struct {
	queries Querier
}

// NewRepository creates a new contract repository
func NewRepository(querier Querier) *Repository {
	return &Repository{
		queries: querier,
	}
}

// GetContract retrieves a contract row by ID
func (r *Repository) GetContract(ctx context.Context, id int64) (*models.Contract, error) {
	c, err := r.queries.GetContract(ctx, id)
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, apperr.NotFound("contract", id)
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	return sqlutil.ContractToModel(c), nil
}

// InsertContractRoot inserts the first contract of a new chain and points it at itself
func (r *Repository) InsertContractRoot(ctx context.Context, c models.Contract) (*models.Contract, error) {
	c.PreviousContractID = nil
	c.OriginalContractID = nil
	row, err := r.insert(ctx, c)
	if err != nil {
		return nil, err
	}

	row, err = r.queries.SetContractRoot(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to set contract root: %w", err)
	}
	return sqlutil.ContractToModel(row), nil
}

// ReplaceContract marks the current chain head REPLACED and inserts its successor.
// Both writes belong to the caller's transaction.
func (r *Repository) ReplaceContract(ctx context.Context, currentID int64, next models.Contract) (*models.Contract, error) {
	n, err := r.queries.MarkContractReplaced(ctx, currentID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark contract replaced: %w", err)
	}
	if n == 0 {
		return nil, apperr.Conflict(apperr.CodeInvalidState, nil, "contract %d is no longer the active head of its chain", currentID)
	}

	row, err := r.insert(ctx, next)
	if err != nil {
		return nil, err
	}
	return sqlutil.ContractToModel(row), nil
}

func (r *Repository) insert(ctx context.Context, c models.Contract) (db.Contract, error) {
	row, err := r.queries.InsertContract(ctx, db.InsertContractParams{
		LeagueID:           c.LeagueID,
		SeasonEndYear:      int32(c.SeasonEndYear),
		PlayerID:           sqlutil.ToNullUUID(c.PlayerID),
		LeaguePlayerID:     sqlutil.ToNullUUID(c.LeaguePlayerID),
		TeamID:             sqlutil.ToNullUUID(c.TeamID),
		ContractYear:       int32(c.ContractYear),
		ContractType:       string(c.ContractType),
		IsIr:               c.IsIR,
		Salary:             int32(c.Salary),
		Status:             string(c.Status),
		PreviousContractID: sqlutil.ToNullInt64(c.PreviousContractID),
		OriginalContractID: sqlutil.ToNullInt64(c.OriginalContractID),
	})
	if err != nil {
		if constraint, ok := sqlutil.IsUniqueViolation(err); ok {
			return db.Contract{}, &apperr.Error{
				Kind:    apperr.KindValidation,
				Code:    apperr.CodeDuplicateActiveContract,
				Message: fmt.Sprintf("player already has an active contract in season %d (%s)", c.SeasonEndYear, constraint),
				Err:     err,
			}
		}
		return db.Contract{}, fmt.Errorf("failed to insert contract: %w", err)
	}
	return row, nil
}

// GetLatestInChain returns the most recently created contract of a chain
func (r *Repository) GetLatestInChain(ctx context.Context, originalContractID int64) (*models.Contract, error) {
	c, err := r.queries.GetLatestContractInChain(ctx, originalContractID)
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, apperr.NotFound("contract chain", originalContractID)
		}
		return nil, fmt.Errorf("failed to get latest contract in chain: %w", err)
	}
	return sqlutil.ContractToModel(c), nil
}

// ListContractChain returns every contract of a chain, root first
func (r *Repository) ListContractChain(ctx context.Context, originalContractID int64) ([]models.Contract, error) {
	rows, err := r.queries.ListContractChain(ctx, originalContractID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contract chain: %w", err)
	}
	return sqlutil.ContractsToModels(rows), nil
}

// ListActiveContractsByTeam returns the active contracts a team holds in a season
func (r *Repository) ListActiveContractsByTeam(ctx context.Context, leagueID uuid.UUID, seasonEndYear int, teamID uuid.UUID) ([]models.Contract, error) {
	rows, err := r.queries.ListActiveContractsByTeam(ctx, db.ListActiveContractsByTeamParams{
		LeagueID:      leagueID,
		SeasonEndYear: int32(seasonEndYear),
		TeamID:        teamID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list team contracts: %w", err)
	}
	return sqlutil.ContractsToModels(rows), nil
}

// ListActiveContractsByLeague returns every active contract of a league season
func (r *Repository) ListActiveContractsByLeague(ctx context.Context, leagueID uuid.UUID, seasonEndYear int) ([]models.Contract, error) {
	rows, err := r.queries.ListActiveContractsByLeague(ctx, db.ListActiveContractsByLeagueParams{
		LeagueID:      leagueID,
		SeasonEndYear: int32(seasonEndYear),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list league contracts: %w", err)
	}
	return sqlutil.ContractsToModels(rows), nil
}
