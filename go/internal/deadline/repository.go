package deadline

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
	InsertDeadline(ctx context.Context, arg db.InsertDeadlineParams) (db.Deadline, error)
	GetDeadline(ctx context.Context, id int64) (db.Deadline, error)
	GetDeadlineByType(ctx context.Context, arg db.GetDeadlineByTypeParams) (db.Deadline, error)
	NextDeadlineOnOrAfter(ctx context.Context, arg db.NextDeadlineOnOrAfterParams) (db.Deadline, error)
	ListDeadlines(ctx context.Context, arg db.ListDeadlinesParams) ([]db.Deadline, error)
	GetDeadlineUnit(ctx context.Context, deadlineID int64, unitKey string) (db.DeadlineUnit, error)
	UpsertDeadlineUnit(ctx context.Context, arg db.UpsertDeadlineUnitParams) (db.DeadlineUnit, error)
	ListDeadlineUnits(ctx context.Context, deadlineID int64) ([]db.DeadlineUnit, error)
}

// Repository implements the deadline and deadline_unit tables
type Repository struct {
	queries Querier
}

// NewRepository creates a new deadline repository
func NewRepository(querier Querier) *Repository {
	return &Repository{
		queries: querier,
	}
}

// InsertDeadline schedules a deadline. A season has at most one deadline per type.
func (r *Repository) InsertDeadline(ctx context.Context, d models.Deadline) (*models.Deadline, error) {
	row, err := r.queries.InsertDeadline(ctx, db.InsertDeadlineParams{
		LeagueID:      d.LeagueID,
		SeasonEndYear: int32(d.SeasonEndYear),
		Type:          string(d.Type),
		Datetime:      d.Datetime,
	})
	if err != nil {
		if _, ok := sqlutil.IsUniqueViolation(err); ok {
			return nil, apperr.Validation(apperr.CodeInvalidState, "season %d already has a %s deadline", d.SeasonEndYear, d.Type)
		}
		return nil, fmt.Errorf("failed to insert deadline: %w", err)
	}
	return dbDeadlineToModel(row), nil
}

// GetDeadline retrieves a deadline by ID
func (r *Repository) GetDeadline(ctx context.Context, id int64) (*models.Deadline, error) {
	row, err := r.queries.GetDeadline(ctx, id)
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, apperr.NotFound("deadline", id)
		}
		return nil, fmt.Errorf("failed to get deadline: %w", err)
	}
	return dbDeadlineToModel(row), nil
}

// GetDeadlineByType retrieves the season's deadline of type t
func (r *Repository) GetDeadlineByType(ctx context.Context, leagueID uuid.UUID, seasonEndYear int, t models.DeadlineType) (*models.Deadline, error) {
	row, err := r.queries.GetDeadlineByType(ctx, db.GetDeadlineByTypeParams{
		LeagueID:      leagueID,
		SeasonEndYear: int32(seasonEndYear),
		Type:          string(t),
	})
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, apperr.NotFound(string(t)+" deadline", seasonEndYear)
		}
		return nil, fmt.Errorf("failed to get deadline by type: %w", err)
	}
	return dbDeadlineToModel(row), nil
}

// NextDeadlineOnOrAfter returns the first deadline of the season at or after at, or nil when there is none.
func (r *Repository) NextDeadlineOnOrAfter(ctx context.Context, leagueID uuid.UUID, seasonEndYear int, at time.Time) (*models.Deadline, error) {
	row, err := r.queries.NextDeadlineOnOrAfter(ctx, db.NextDeadlineOnOrAfterParams{
		LeagueID:      leagueID,
		SeasonEndYear: int32(seasonEndYear),
		At:            at,
	})
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get next deadline: %w", err)
	}
	return dbDeadlineToModel(row), nil
}

// ListDeadlines returns a season's deadlines in date order
func (r *Repository) ListDeadlines(ctx context.Context, leagueID uuid.UUID, seasonEndYear int) ([]models.Deadline, error) {
	rows, err := r.queries.ListDeadlines(ctx, db.ListDeadlinesParams{
		LeagueID:      leagueID,
		SeasonEndYear: int32(seasonEndYear),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list deadlines: %w", err)
	}
	out := make([]models.Deadline, len(rows))
	for i, row := range rows {
		out[i] = *dbDeadlineToModel(row)
	}
	return out, nil
}

// GetDeadlineUnit locks and returns a unit of deadline work, or nil when it has never run.
func (r *Repository) GetDeadlineUnit(ctx context.Context, deadlineID int64, unitKey string) (*models.DeadlineUnit, error) {
	row, err := r.queries.GetDeadlineUnit(ctx, deadlineID, unitKey)
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get deadline unit: %w", err)
	}
	return dbDeadlineUnitToModel(row), nil
}

// UpsertDeadlineUnit records the outcome of a unit
func (r *Repository) UpsertDeadlineUnit(ctx context.Context, u models.DeadlineUnit) (*models.DeadlineUnit, error) {
	row, err := r.queries.UpsertDeadlineUnit(ctx, db.UpsertDeadlineUnitParams{
		DeadlineID: u.DeadlineID,
		UnitKey:    u.UnitKey,
		Status:     string(u.Status),
		Attempts:   int32(u.Attempts),
		LastError:  sqlutil.ToSqlString(u.LastError),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert deadline unit: %w", err)
	}
	return dbDeadlineUnitToModel(row), nil
}

// ListDeadlineUnits returns every recorded unit of a deadline
func (r *Repository) ListDeadlineUnits(ctx context.Context, deadlineID int64) ([]models.DeadlineUnit, error) {
	rows, err := r.queries.ListDeadlineUnits(ctx, deadlineID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deadline units: %w", err)
	}
	out := make([]models.DeadlineUnit, len(rows))
	for i, row := range rows {
		out[i] = *dbDeadlineUnitToModel(row)
	}
	return out, nil
}

func dbDeadlineToModel(d db.Deadline) *models.Deadline {
	return &models.Deadline{
		ID:            d.ID,
		LeagueID:      d.LeagueID,
		SeasonEndYear: int(d.SeasonEndYear),
		Type:          models.DeadlineType(d.Type),
		Datetime:      d.Datetime,
		CreatedAt:     d.CreatedAt,
	}
}

func dbDeadlineUnitToModel(u db.DeadlineUnit) *models.DeadlineUnit {
	return &models.DeadlineUnit{
		DeadlineID: u.DeadlineID,
		UnitKey:    u.UnitKey,
		Status:     models.DeadlineUnitStatus(u.Status),
		Attempts:   int(u.Attempts),
		LastError:  sqlutil.FromSqlStringPtr(u.LastError),
		UpdatedAt:  u.UpdatedAt,
	}
}
