package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/capspace/go/internal/db"
	"github.com/mcdev12/capspace/go/internal/models"
	"github.com/mcdev12/capspace/go/internal/sqlutil"
)

// Querier defines what the repository needs from the database layer
type Querier interface {
	InsertTransaction(ctx context.Context, arg db.InsertTransactionParams) (db.Transaction, error)
	FindTeamTransaction(ctx context.Context, arg db.FindTeamTransactionParams) (db.Transaction, error)
	ListTransactions(ctx context.Context, arg db.ListTransactionsParams) ([]db.Transaction, error)
	ListInSeasonDroppedContracts(ctx context.Context, arg db.ListInSeasonDroppedContractsParams) ([]db.Contract, error)
	InsertTeamUpdate(ctx context.Context, arg db.InsertTeamUpdateParams) (db.TeamUpdate, error)
	ListTeamUpdates(ctx context.Context, transactionID int64) ([]db.TeamUpdate, error)
}

// Repository implements the transaction and team_update tables.
type Repository struct {
	queries Querier
}

// NewRepository creates a new ledger repository
func NewRepository(querier Querier) *Repository {
	return &Repository{
		queries: querier,
	}
}

// InsertTransaction appends a transaction record
func (r *Repository) InsertTransaction(ctx context.Context, t models.Transaction) (*models.Transaction, error) {
	row, err := r.queries.InsertTransaction(ctx, db.InsertTransactionParams{
		LeagueID:      t.LeagueID,
		SeasonEndYear: int32(t.SeasonEndYear),
		Type:          string(t.Type),
		DeadlineID:    sqlutil.ToNullInt64(t.DeadlineID),
		TeamID:        sqlutil.ToNullUUID(t.TeamID),
		ContractID:    sqlutil.ToNullInt64(t.ContractID),
		TradeID:       sqlutil.ToNullInt64(t.TradeID),
		AuctionID:     sqlutil.ToNullInt64(t.AuctionID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}
	return dbTransactionToModel(row), nil
}

// FindTeamTransaction returns the latest transaction of a type recorded for a team at a deadline, or nil.
func (r *Repository) FindTeamTransaction(ctx context.Context, teamID uuid.UUID, txType models.TransactionType, deadlineID int64) (*models.Transaction, error) {
	row, err := r.queries.FindTeamTransaction(ctx, db.FindTeamTransactionParams{
		TeamID:     teamID,
		Type:       string(txType),
		DeadlineID: deadlineID,
	})
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find team transaction: %w", err)
	}
	return dbTransactionToModel(row), nil
}

// ListTransactions lists a league season's transactions in commit order
func (r *Repository) ListTransactions(ctx context.Context, leagueID uuid.UUID, seasonEndYear int) ([]models.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx, db.ListTransactionsParams{
		LeagueID:      leagueID,
		SeasonEndYear: int32(seasonEndYear),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	result := make([]models.Transaction, len(rows))
	for i, row := range rows {
		result[i] = *dbTransactionToModel(row)
	}
	return result, nil
}

// ListInSeasonDroppedContracts returns the contracts a team dropped during the regular or post season
func (r *Repository) ListInSeasonDroppedContracts(ctx context.Context, leagueID uuid.UUID, seasonEndYear int, teamID uuid.UUID) ([]models.Contract, error) {
	rows, err := r.queries.ListInSeasonDroppedContracts(ctx, db.ListInSeasonDroppedContractsParams{
		LeagueID:      leagueID,
		SeasonEndYear: int32(seasonEndYear),
		TeamID:        teamID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list dropped contracts: %w", err)
	}
	return sqlutil.ContractsToModels(rows), nil
}

// InsertTeamUpdate appends a team update to a transaction
func (r *Repository) InsertTeamUpdate(ctx context.Context, u models.TeamUpdate) (*models.TeamUpdate, error) {
	row, err := r.queries.InsertTeamUpdate(ctx, db.InsertTeamUpdateParams{
		TransactionID: u.TransactionID,
		TeamID:        u.TeamID,
		Data:          u.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert team update: %w", err)
	}
	return dbTeamUpdateToModel(row), nil
}

// ListTeamUpdates lists the team updates of a transaction
func (r *Repository) ListTeamUpdates(ctx context.Context, transactionID int64) ([]models.TeamUpdate, error) {
	rows, err := r.queries.ListTeamUpdates(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team updates: %w", err)
	}

	result := make([]models.TeamUpdate, len(rows))
	for i, row := range rows {
		result[i] = *dbTeamUpdateToModel(row)
	}
	return result, nil
}

func dbTransactionToModel(t db.Transaction) *models.Transaction {
	return &models.Transaction{
		ID:            t.ID,
		LeagueID:      t.LeagueID,
		SeasonEndYear: int(t.SeasonEndYear),
		Type:          models.TransactionType(t.Type),
		DeadlineID:    sqlutil.FromNullInt64(t.DeadlineID),
		TeamID:        sqlutil.FromNullUUID(t.TeamID),
		ContractID:    sqlutil.FromNullInt64(t.ContractID),
		TradeID:       sqlutil.FromNullInt64(t.TradeID),
		AuctionID:     sqlutil.FromNullInt64(t.AuctionID),
		CreatedAt:     t.CreatedAt,
	}
}

func dbTeamUpdateToModel(u db.TeamUpdate) *models.TeamUpdate {
	return &models.TeamUpdate{
		ID:            u.ID,
		TransactionID: u.TransactionID,
		TeamID:        u.TeamID,
		Data:          u.Data,
		CreatedAt:     u.CreatedAt,
	}
}
