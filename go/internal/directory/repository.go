package directory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/db"
	"github.com/mcdev12/capspace/go/internal/models"
	"github.com/mcdev12/capspace/go/internal/sqlutil"
)

type Querier interface {
	GetFantasyTeam(ctx context.Context, id uuid.UUID) (db.FantasyTeam, error)
	ListFantasyTeamsByLeague(ctx context.Context, leagueID uuid.UUID) ([]db.FantasyTeam, error)
	IsTeamMember(ctx context.Context, arg db.IsTeamMemberParams) (bool, error)
	GetPlayer(ctx context.Context, id uuid.UUID) (db.Player, error)
	GetLeaguePlayer(ctx context.Context, id uuid.UUID) (db.LeaguePlayer, error)
}

// Repository reads teams, memberships and players from Postgres.
type Repository struct {
	queries Querier
}

func NewRepository(querier Querier) *Repository {
	return &Repository{
		queries: querier,
	}
}

func (r *Repository) GetFantasyTeam(ctx context.Context, id uuid.UUID) (*models.FantasyTeam, error) {
	team, err := r.queries.GetFantasyTeam(ctx, id)
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, apperr.NotFound("fantasy team", id)
		}
		return nil, fmt.Errorf("failed to get fantasy team: %w", err)
	}

	return dbFantasyTeamToModel(team), nil
}

func (r *Repository) ListFantasyTeamsByLeague(ctx context.Context, leagueID uuid.UUID) ([]models.FantasyTeam, error) {
	teams, err := r.queries.ListFantasyTeamsByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fantasy teams by league: %w", err)
	}

	result := make([]models.FantasyTeam, len(teams))
	for i, team := range teams {
		result[i] = *dbFantasyTeamToModel(team)
	}
	return result, nil
}

func (r *Repository) IsTeamMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	ok, err := r.queries.IsTeamMember(ctx, db.IsTeamMemberParams{TeamID: teamID, UserID: userID})
	if err != nil {
		return false, fmt.Errorf("failed to check team membership: %w", err)
	}
	return ok, nil
}

func (r *Repository) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	p, err := r.queries.GetPlayer(ctx, id)
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, apperr.NotFound("player", id)
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return &models.Player{
		ID:         p.ID,
		ExternalID: p.ExternalID,
		FullName:   p.FullName,
		Position:   p.Position,
		CreatedAt:  p.CreatedAt,
	}, nil
}

func (r *Repository) GetLeaguePlayer(ctx context.Context, id uuid.UUID) (*models.LeaguePlayer, error) {
	p, err := r.queries.GetLeaguePlayer(ctx, id)
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, apperr.NotFound("league player", id)
		}
		return nil, fmt.Errorf("failed to get league player: %w", err)
	}

	return &models.LeaguePlayer{
		ID:        p.ID,
		LeagueID:  p.LeagueID,
		FullName:  p.FullName,
		Position:  p.Position,
		CreatedAt: p.CreatedAt,
	}, nil
}

func dbFantasyTeamToModel(dbTeam db.FantasyTeam) *models.FantasyTeam {
	return &models.FantasyTeam{
		ID:           dbTeam.ID,
		LeagueID:     dbTeam.LeagueID,
		Name:         dbTeam.Name,
		Abbreviation: dbTeam.Abbreviation,
		CreatedAt:    dbTeam.CreatedAt,
	}
}
