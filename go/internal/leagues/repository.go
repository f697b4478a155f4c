package leagues

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/db"
	"github.com/mcdev12/capspace/go/internal/models"
	"github.com/mcdev12/capspace/go/internal/sqlutil"
	"github.com/sqlc-dev/pqtype"
)

// Querier defines what the repository needs from the database layer
type Querier interface {
	GetLeague(ctx context.Context, id uuid.UUID) (db.League, error)
	UpdateLeagueSettings(ctx context.Context, arg db.UpdateLeagueSettingsParams) (db.League, error)
}

// Repository implements league data access operations
type Repository struct {
	queries Querier
}

// NewRepository creates a new leagues repository
func NewRepository(querier Querier) *Repository {
	return &Repository{
		queries: querier,
	}
}

// GetLeague retrieves a league by ID
func (r *Repository) GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error) {
	league, err := r.queries.GetLeague(ctx, id)
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, apperr.NotFound("league", id)
		}
		return nil, fmt.Errorf("failed to get league: %w", err)
	}

	return dbLeagueToModel(league), nil
}

// UpdateLeagueSettings replaces the league's rule overrides
func (r *Repository) UpdateLeagueSettings(ctx context.Context, id uuid.UUID, settings json.RawMessage) (*models.League, error) {
	league, err := r.queries.UpdateLeagueSettings(ctx, db.UpdateLeagueSettingsParams{
		ID:       id,
		Settings: pqtype.NullRawMessage{RawMessage: settings, Valid: len(settings) > 0},
	})
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, apperr.NotFound("league", id)
		}
		return nil, fmt.Errorf("failed to update league settings: %w", err)
	}

	return dbLeagueToModel(league), nil
}

// dbLeagueToModel converts a database league to domain model
func dbLeagueToModel(dbLeague db.League) *models.League {
	var settings json.RawMessage
	if dbLeague.Settings.Valid {
		settings = dbLeague.Settings.RawMessage
	}

	return &models.League{
		ID:                   dbLeague.ID,
		Name:                 dbLeague.Name,
		CommissionerID:       dbLeague.CommissionerID,
		Settings:             settings,
		Status:               models.LeagueStatus(dbLeague.Status),
		CurrentSeasonEndYear: int(dbLeague.CurrentSeasonEndYear),
		CreatedAt:            dbLeague.CreatedAt,
		UpdatedAt:            dbLeague.UpdatedAt,
	}
}
