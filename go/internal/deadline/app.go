package deadline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/leagues"
	"github.com/mcdev12/capspace/go/internal/models"
	"github.com/mcdev12/capspace/go/internal/sqlutil"
	"github.com/rs/zerolog/log"
)

// DeadlineRepository defines the deadline table operations
type DeadlineRepository interface {
	InsertDeadline(ctx context.Context, d models.Deadline) (*models.Deadline, error)
	GetDeadline(ctx context.Context, id int64) (*models.Deadline, error)
	GetDeadlineByType(ctx context.Context, leagueID uuid.UUID, seasonEndYear int, t models.DeadlineType) (*models.Deadline, error)
	NextDeadlineOnOrAfter(ctx context.Context, leagueID uuid.UUID, seasonEndYear int, at time.Time) (*models.Deadline, error)
	ListDeadlines(ctx context.Context, leagueID uuid.UUID, seasonEndYear int) ([]models.Deadline, error)
}

// UnitRepository defines the deadline_unit table operations
type UnitRepository interface {
	GetDeadlineUnit(ctx context.Context, deadlineID int64, unitKey string) (*models.DeadlineUnit, error)
	UpsertDeadlineUnit(ctx context.Context, u models.DeadlineUnit) (*models.DeadlineUnit, error)
	ListDeadlineUnits(ctx context.Context, deadlineID int64) ([]models.DeadlineUnit, error)
}

// ServiceRepository is what the lookup service reads
type ServiceRepository interface {
	DeadlineRepository
	UnitRepository
	leagues.LeagueRepository
}

// Service schedules deadlines and answers deadline lookups
type Service struct {
	tx sqlutil.Transactor[ServiceRepository]
}

// NewService creates a new deadline Service
func NewService(tx sqlutil.Transactor[ServiceRepository]) *Service {
	return &Service{tx: tx}
}

// Create schedules a deadline. The keeper deadline must precede the regular season deadline.
func (s *Service) Create(ctx context.Context, req CreateDeadlineRequest) (*models.Deadline, error) {
	if !slices.Contains(models.DeadlineTypes, req.Type) {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "unknown deadline type %q", req.Type)
	}
	if req.Datetime.IsZero() {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "deadline datetime is required")
	}

	var out *models.Deadline
	err := s.tx.InTx(ctx, func(repo ServiceRepository) error {
		if _, err := repo.GetLeague(ctx, req.LeagueID); err != nil {
			return err
		}
		existing, err := repo.ListDeadlines(ctx, req.LeagueID, req.SeasonEndYear)
		if err != nil {
			return err
		}
		for _, d := range existing {
			if err := checkOrder(req.Type, req.Datetime, d); err != nil {
				return err
			}
		}
		out, err = repo.InsertDeadline(ctx, models.Deadline{
			LeagueID:      req.LeagueID,
			SeasonEndYear: req.SeasonEndYear,
			Type:          req.Type,
			Datetime:      req.Datetime.UTC(),
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create deadline: %w", err)
	}

	log.Info().
		Str("league_id", out.LeagueID.String()).
		Int("season_end_year", out.SeasonEndYear).
		Str("type", string(out.Type)).
		Time("datetime", out.Datetime).
		Msg("created deadline")
	return out, nil
}

// checkOrder keeps a season's deadlines in the order their types are declared.
func checkOrder(t models.DeadlineType, at time.Time, other models.Deadline) error {
	mine, theirs := slices.Index(models.DeadlineTypes, t), slices.Index(models.DeadlineTypes, other.Type)
	switch {
	case mine < theirs && !at.Before(other.Datetime):
		return apperr.Validation(apperr.CodeInvalidInput, "%s deadline must fall before the %s deadline", t, other.Type)
	case mine > theirs && !at.After(other.Datetime):
		return apperr.Validation(apperr.CodeInvalidInput, "%s deadline must fall after the %s deadline", t, other.Type)
	}
	return nil
}

// Get retrieves a deadline by ID
func (s *Service) Get(ctx context.Context, id int64) (*models.Deadline, error) {
	var out *models.Deadline
	err := s.tx.InTx(ctx, func(repo ServiceRepository) error {
		var err error
		out, err = repo.GetDeadline(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get deadline: %w", err)
	}
	return out, nil
}

// GetByType retrieves the season's deadline of one type
func (s *Service) GetByType(ctx context.Context, leagueID uuid.UUID, seasonEndYear int, t models.DeadlineType) (*models.Deadline, error) {
	var out *models.Deadline
	err := s.tx.InTx(ctx, func(repo ServiceRepository) error {
		var err error
		out, err = repo.GetDeadlineByType(ctx, leagueID, seasonEndYear, t)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get deadline by type: %w", err)
	}
	return out, nil
}

// NextOnOrAfter returns the season's first deadline at or after at, or nil
func (s *Service) NextOnOrAfter(ctx context.Context, leagueID uuid.UUID, seasonEndYear int, at time.Time) (*models.Deadline, error) {
	var out *models.Deadline
	err := s.tx.InTx(ctx, func(repo ServiceRepository) error {
		var err error
		out, err = repo.NextDeadlineOnOrAfter(ctx, leagueID, seasonEndYear, at)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get next deadline: %w", err)
	}
	return out, nil
}

// List returns a season's deadlines in date order
func (s *Service) List(ctx context.Context, leagueID uuid.UUID, seasonEndYear int) ([]models.Deadline, error) {
	var out []models.Deadline
	err := s.tx.InTx(ctx, func(repo ServiceRepository) error {
		var err error
		out, err = repo.ListDeadlines(ctx, leagueID, seasonEndYear)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list deadlines: %w", err)
	}
	return out, nil
}

// Units returns the recorded units of a deadline run
func (s *Service) Units(ctx context.Context, deadlineID int64) ([]models.DeadlineUnit, error) {
	var out []models.DeadlineUnit
	err := s.tx.InTx(ctx, func(repo ServiceRepository) error {
		var err error
		out, err = repo.ListDeadlineUnits(ctx, deadlineID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list deadline units: %w", err)
	}
	return out, nil
}
