package trade

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
	InsertTrade(ctx context.Context, arg db.InsertTradeParams) (db.Trade, error)
	SetTradeRoot(ctx context.Context, id int64) (db.Trade, error)
	GetTrade(ctx context.Context, id int64) (db.Trade, error)
	GetTradeForUpdate(ctx context.Context, id int64) (db.Trade, error)
	GetLatestTradeInChain(ctx context.Context, originalTradeID int64) (db.Trade, error)
	UpdateTradeStatus(ctx context.Context, arg db.UpdateTradeStatusParams) (db.Trade, error)
	InsertTradeTeam(ctx context.Context, tradeID int64, teamID uuid.UUID) error
	ListTradeTeams(ctx context.Context, tradeID int64) ([]uuid.UUID, error)
	InsertTradeAction(ctx context.Context, arg db.InsertTradeActionParams) (db.TradeAction, error)
	ListTradeActions(ctx context.Context, tradeID int64) ([]db.TradeAction, error)
	InsertTradeAsset(ctx context.Context, arg db.InsertTradeAssetParams) (db.TradeAsset, error)
	ListTradeAssets(ctx context.Context, tradeID int64) ([]db.TradeAsset, error)
	ListOpenTradesReferencing(ctx context.Context, arg db.ListOpenTradesReferencingParams) ([]db.Trade, error)
}

// Repository implements the trade, trade_team, trade_action and trade_asset tables
type Repository struct {
	queries Querier
}

// NewRepository creates a new trade repository
func NewRepository(querier Querier) *Repository {
	return &Repository{
		queries: querier,
	}
}

// InsertTrade inserts a trade and its team rows. A trade without an original
// trade becomes the root of a new chain.
func (r *Repository) InsertTrade(ctx context.Context, t models.Trade) (*models.Trade, error) {
	row, err := r.queries.InsertTrade(ctx, db.InsertTradeParams{
		LeagueID:        t.LeagueID,
		SeasonEndYear:   int32(t.SeasonEndYear),
		Status:          string(t.Status),
		PreviousTradeID: sqlutil.ToNullInt64(t.PreviousTradeID),
		OriginalTradeID: sqlutil.ToNullInt64(t.OriginalTradeID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert trade: %w", err)
	}

	if t.OriginalTradeID == nil {
		row, err = r.queries.SetTradeRoot(ctx, row.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to set trade root: %w", err)
		}
	}

	for _, teamID := range t.TeamIDs {
		if err := r.queries.InsertTradeTeam(ctx, row.ID, teamID); err != nil {
			return nil, fmt.Errorf("failed to insert trade team: %w", err)
		}
	}
	return r.withTeams(ctx, row)
}

// GetTrade retrieves a trade by ID
func (r *Repository) GetTrade(ctx context.Context, id int64) (*models.Trade, error) {
	row, err := r.queries.GetTrade(ctx, id)
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, apperr.NotFound("trade", id)
		}
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}
	return r.withTeams(ctx, row)
}

// GetTradeForUpdate retrieves a trade and locks its row until the transaction ends
func (r *Repository) GetTradeForUpdate(ctx context.Context, id int64) (*models.Trade, error) {
	row, err := r.queries.GetTradeForUpdate(ctx, id)
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, apperr.NotFound("trade", id)
		}
		return nil, fmt.Errorf("failed to lock trade: %w", err)
	}
	return r.withTeams(ctx, row)
}

// GetLatestTradeInChain returns the head of a trade chain
func (r *Repository) GetLatestTradeInChain(ctx context.Context, originalTradeID int64) (*models.Trade, error) {
	row, err := r.queries.GetLatestTradeInChain(ctx, originalTradeID)
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, apperr.NotFound("trade chain", originalTradeID)
		}
		return nil, fmt.Errorf("failed to get latest trade in chain: %w", err)
	}
	return r.withTeams(ctx, row)
}

// UpdateTradeStatus sets a trade's status
func (r *Repository) UpdateTradeStatus(ctx context.Context, id int64, status models.TradeStatus) (*models.Trade, error) {
	row, err := r.queries.UpdateTradeStatus(ctx, db.UpdateTradeStatusParams{
		ID:     id,
		Status: string(status),
	})
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, apperr.NotFound("trade", id)
		}
		return nil, fmt.Errorf("failed to update trade status: %w", err)
	}
	return r.withTeams(ctx, row)
}

// InsertTradeAction records a team-user decision
func (r *Repository) InsertTradeAction(ctx context.Context, a models.TradeAction) (*models.TradeAction, error) {
	row, err := r.queries.InsertTradeAction(ctx, db.InsertTradeActionParams{
		TradeID: a.TradeID,
		TeamID:  a.TeamID,
		UserID:  a.UserID,
		Action:  string(a.Action),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert trade action: %w", err)
	}
	return dbTradeActionToModel(row), nil
}

// ListTradeActions lists a trade's actions, oldest first
func (r *Repository) ListTradeActions(ctx context.Context, tradeID int64) ([]models.TradeAction, error) {
	rows, err := r.queries.ListTradeActions(ctx, tradeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trade actions: %w", err)
	}

	actions := make([]models.TradeAction, len(rows))
	for i, row := range rows {
		actions[i] = *dbTradeActionToModel(row)
	}
	return actions, nil
}

// InsertTradeAsset adds one asset movement to a trade
func (r *Repository) InsertTradeAsset(ctx context.Context, a models.TradeAsset) (*models.TradeAsset, error) {
	row, err := r.queries.InsertTradeAsset(ctx, db.InsertTradeAssetParams{
		TradeID:           a.TradeID,
		AssetType:         string(a.AssetType),
		ContractID:        sqlutil.ToNullInt64(a.ContractID),
		DraftPickID:       sqlutil.ToNullInt64(a.DraftPickID),
		DraftPickOptionID: sqlutil.ToNullInt64(a.DraftPickOptionID),
		FromTeamID:        a.FromTeamID,
		ToTeamID:          a.ToTeamID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert trade asset: %w", err)
	}
	return dbTradeAssetToModel(row), nil
}

// ListTradeAssets lists a trade's assets
func (r *Repository) ListTradeAssets(ctx context.Context, tradeID int64) ([]models.TradeAsset, error) {
	rows, err := r.queries.ListTradeAssets(ctx, tradeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trade assets: %w", err)
	}

	assets := make([]models.TradeAsset, len(rows))
	for i, row := range rows {
		assets[i] = *dbTradeAssetToModel(row)
	}
	return assets, nil
}

// ListOpenTradesReferencing finds proposed or counteroffered trades outside one chain that move
// any of the given contract chains or draft picks, directly or through an option.
func (r *Repository) ListOpenTradesReferencing(ctx context.Context, leagueID uuid.UUID, seasonEndYear int, contractRootIDs, draftPickIDs []int64, excludeOriginalID int64) ([]models.Trade, error) {
	rows, err := r.queries.ListOpenTradesReferencing(ctx, db.ListOpenTradesReferencingParams{
		LeagueID:          leagueID,
		SeasonEndYear:     int32(seasonEndYear),
		ContractRootIDs:   contractRootIDs,
		DraftPickIDs:      draftPickIDs,
		ExcludeOriginalID: excludeOriginalID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list trades referencing assets: %w", err)
	}

	trades := make([]models.Trade, 0, len(rows))
	for _, row := range rows {
		t, err := r.withTeams(ctx, row)
		if err != nil {
			return nil, err
		}
		trades = append(trades, *t)
	}
	return trades, nil
}

func (r *Repository) withTeams(ctx context.Context, row db.Trade) (*models.Trade, error) {
	teams, err := r.queries.ListTradeTeams(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trade teams: %w", err)
	}
	t := dbTradeToModel(row)
	t.TeamIDs = teams
	return t, nil
}

func dbTradeToModel(t db.Trade) *models.Trade {
	return &models.Trade{
		ID:              t.ID,
		LeagueID:        t.LeagueID,
		SeasonEndYear:   int(t.SeasonEndYear),
		Status:          models.TradeStatus(t.Status),
		PreviousTradeID: sqlutil.FromNullInt64(t.PreviousTradeID),
		OriginalTradeID: sqlutil.FromNullInt64(t.OriginalTradeID),
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func dbTradeActionToModel(a db.TradeAction) *models.TradeAction {
	return &models.TradeAction{
		ID:        a.ID,
		TradeID:   a.TradeID,
		TeamID:    a.TeamID,
		UserID:    a.UserID,
		Action:    models.TradeActionType(a.Action),
		CreatedAt: a.CreatedAt,
	}
}

func dbTradeAssetToModel(a db.TradeAsset) *models.TradeAsset {
	return &models.TradeAsset{
		ID:                a.ID,
		TradeID:           a.TradeID,
		AssetType:         models.TradeAssetType(a.AssetType),
		ContractID:        sqlutil.FromNullInt64(a.ContractID),
		DraftPickID:       sqlutil.FromNullInt64(a.DraftPickID),
		DraftPickOptionID: sqlutil.FromNullInt64(a.DraftPickOptionID),
		FromTeamID:        a.FromTeamID,
		ToTeamID:          a.ToTeamID,
	}
}
