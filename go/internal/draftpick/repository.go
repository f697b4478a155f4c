package draftpick

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/db"
	"github.com/mcdev12/capspace/go/internal/models"
	"github.com/mcdev12/capspace/go/internal/sqlutil"
)

// Querier defines what the repository needs from the database layer
type Querier interface {
	InsertDraftPick(ctx context.Context, arg db.InsertDraftPickParams) (db.DraftPick, error)
	GetDraftPick(ctx context.Context, id int64) (db.DraftPick, error)
	ListDraftPicksBySeason(ctx context.Context, arg db.ListDraftPicksBySeasonParams) ([]db.DraftPick, error)
	UpdateDraftPickOwner(ctx context.Context, arg db.UpdateDraftPickOwnerParams) (db.DraftPick, error)
	MarkDraftPickUsed(ctx context.Context, id int64, usedAt time.Time) (db.DraftPick, error)
	InsertDraftPickOption(ctx context.Context, arg db.InsertDraftPickOptionParams) (db.DraftPickOption, error)
	GetDraftPickOption(ctx context.Context, id int64) (db.DraftPickOption, error)
	UpdateDraftPickOptionStatus(ctx context.Context, arg db.UpdateDraftPickOptionStatusParams) (db.DraftPickOption, error)
	ListDraftPickOptionsByPick(ctx context.Context, draftPickID int64) ([]db.DraftPickOption, error)
}

// Repository implements the draft_pick and draft_pick_option tables
type Repository struct {
	queries Querier
}

// NewRepository creates a new draft pick repository
func NewRepository(querier Querier) *Repository {
	return &Repository{
		queries: querier,
	}
}

// InsertDraftPick creates one pick. A league has a single pick per season, round and original owner.
func (r *Repository) InsertDraftPick(ctx context.Context, p models.DraftPick) (*models.DraftPick, error) {
	row, err := r.queries.InsertDraftPick(ctx, db.InsertDraftPickParams{
		LeagueID:            p.LeagueID,
		SeasonEndYear:       int32(p.SeasonEndYear),
		Round:               int32(p.Round),
		OriginalOwnerTeamID: p.OriginalOwnerTeamID,
		CurrentOwnerTeamID:  p.CurrentOwnerTeamID,
	})
	if err != nil {
		if _, ok := sqlutil.IsUniqueViolation(err); ok {
			return nil, apperr.Validation(apperr.CodeInvalidState, "draft pick for round %d of season %d already exists", p.Round, p.SeasonEndYear)
		}
		return nil, fmt.Errorf("failed to insert draft pick: %w", err)
	}
	return dbDraftPickToModel(row), nil
}

// GetDraftPick retrieves a draft pick by ID
func (r *Repository) GetDraftPick(ctx context.Context, id int64) (*models.DraftPick, error) {
	row, err := r.queries.GetDraftPick(ctx, id)
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, apperr.NotFound("draft pick", id)
		}
		return nil, fmt.Errorf("failed to get draft pick: %w", err)
	}
	return dbDraftPickToModel(row), nil
}

// ListDraftPicksBySeason lists a league's picks for one season, by round
func (r *Repository) ListDraftPicksBySeason(ctx context.Context, leagueID uuid.UUID, seasonEndYear int) ([]models.DraftPick, error) {
	rows, err := r.queries.ListDraftPicksBySeason(ctx, db.ListDraftPicksBySeasonParams{
		LeagueID:      leagueID,
		SeasonEndYear: int32(seasonEndYear),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list draft picks: %w", err)
	}

	picks := make([]models.DraftPick, len(rows))
	for i, row := range rows {
		picks[i] = *dbDraftPickToModel(row)
	}
	return picks, nil
}

// UpdateDraftPickOwner reassigns an unused pick from one team to another.
// The update only matches while from still owns the pick.
func (r *Repository) UpdateDraftPickOwner(ctx context.Context, id int64, from, to uuid.UUID) (*models.DraftPick, error) {
	row, err := r.queries.UpdateDraftPickOwner(ctx, db.UpdateDraftPickOwnerParams{
		ID:                  id,
		CurrentOwnerTeamID:  to,
		PreviousOwnerTeamID: from,
	})
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, apperr.Conflict(apperr.CodeStaleTradeReference, nil, "draft pick %d is no longer an unused pick of team %s", id, from)
		}
		return nil, fmt.Errorf("failed to update draft pick owner: %w", err)
	}
	return dbDraftPickToModel(row), nil
}

// MarkDraftPickUsed stamps used_at. The update only matches an unused pick.
func (r *Repository) MarkDraftPickUsed(ctx context.Context, id int64, usedAt time.Time) (*models.DraftPick, error) {
	row, err := r.queries.MarkDraftPickUsed(ctx, id, usedAt)
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, apperr.Validation(apperr.CodeInvalidState, "draft pick %d does not exist or was already used", id)
		}
		return nil, fmt.Errorf("failed to mark draft pick used: %w", err)
	}
	return dbDraftPickToModel(row), nil
}

// InsertDraftPickOption attaches a clause to a pick
func (r *Repository) InsertDraftPickOption(ctx context.Context, o models.DraftPickOption) (*models.DraftPickOption, error) {
	row, err := r.queries.InsertDraftPickOption(ctx, db.InsertDraftPickOptionParams{
		DraftPickID: o.DraftPickID,
		Clause:      o.Clause,
		Status:      string(o.Status),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert draft pick option: %w", err)
	}
	return dbDraftPickOptionToModel(row), nil
}

// GetDraftPickOption retrieves a draft pick option by ID
func (r *Repository) GetDraftPickOption(ctx context.Context, id int64) (*models.DraftPickOption, error) {
	row, err := r.queries.GetDraftPickOption(ctx, id)
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, apperr.NotFound("draft pick option", id)
		}
		return nil, fmt.Errorf("failed to get draft pick option: %w", err)
	}
	return dbDraftPickOptionToModel(row), nil
}

// UpdateDraftPickOptionStatus writes a new status. Callers check the edge first.
func (r *Repository) UpdateDraftPickOptionStatus(ctx context.Context, id int64, status models.DraftPickOptionStatus) (*models.DraftPickOption, error) {
	row, err := r.queries.UpdateDraftPickOptionStatus(ctx, db.UpdateDraftPickOptionStatusParams{
		ID:     id,
		Status: string(status),
	})
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, apperr.NotFound("draft pick option", id)
		}
		return nil, fmt.Errorf("failed to update draft pick option status: %w", err)
	}
	return dbDraftPickOptionToModel(row), nil
}

// ListDraftPickOptionsByPick lists every option ever attached to a pick
func (r *Repository) ListDraftPickOptionsByPick(ctx context.Context, draftPickID int64) ([]models.DraftPickOption, error) {
	rows, err := r.queries.ListDraftPickOptionsByPick(ctx, draftPickID)
	if err != nil {
		return nil, fmt.Errorf("failed to list draft pick options: %w", err)
	}

	options := make([]models.DraftPickOption, len(rows))
	for i, row := range rows {
		options[i] = *dbDraftPickOptionToModel(row)
	}
	return options, nil
}

func dbDraftPickToModel(p db.DraftPick) *models.DraftPick {
	return &models.DraftPick{
		ID:                  p.ID,
		LeagueID:            p.LeagueID,
		SeasonEndYear:       int(p.SeasonEndYear),
		Round:               int(p.Round),
		OriginalOwnerTeamID: p.OriginalOwnerTeamID,
		CurrentOwnerTeamID:  p.CurrentOwnerTeamID,
		UsedAt:              sqlutil.FromSqlTime(p.UsedAt),
		CreatedAt:           p.CreatedAt,
	}
}

func dbDraftPickOptionToModel(o db.DraftPickOption) *models.DraftPickOption {
	return &models.DraftPickOption{
		ID:          o.ID,
		DraftPickID: o.DraftPickID,
		Clause:      o.Clause,
		Status:      models.DraftPickOptionStatus(o.Status),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}
