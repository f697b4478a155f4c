// Package directory is the read-only view of leagues' teams, team members and
// players that the engine validates against and copies display names from.
package directory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/models"
)

// DirectoryRepository defines the directory lookups.
type DirectoryRepository interface {
	GetFantasyTeam(ctx context.Context, id uuid.UUID) (*models.FantasyTeam, error)
	ListFantasyTeamsByLeague(ctx context.Context, leagueID uuid.UUID) ([]models.FantasyTeam, error)
	IsTeamMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error)
	GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error)
	GetLeaguePlayer(ctx context.Context, id uuid.UUID) (*models.LeaguePlayer, error)
}

// Authorize checks that the acting user belongs to the team and the team plays in leagueID.
func Authorize(ctx context.Context, repo DirectoryRepository, leagueID uuid.UUID, actor models.TeamUser) (*models.FantasyTeam, error) {
	team, err := repo.GetFantasyTeam(ctx, actor.TeamID)
	if err != nil {
		return nil, err
	}
	if team.LeagueID != leagueID {
		return nil, apperr.Validation(apperr.CodeNotAuthorized, "team %s is not in league %s", team.ID, leagueID)
	}

	member, err := repo.IsTeamMember(ctx, actor.TeamID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperr.Validation(apperr.CodeNotAuthorized, "user %s cannot act for team %s", actor.UserID, actor.TeamID)
	}
	return team, nil
}

// PlayerName returns the display name of the player a contract is for.
// A contract pointing at a missing player is a consistency error.
func PlayerName(ctx context.Context, repo DirectoryRepository, c models.Contract) (string, error) {
	switch {
	case c.PlayerID != nil:
		p, err := repo.GetPlayer(ctx, *c.PlayerID)
		if err != nil {
			if apperr.HasCode(err, apperr.CodeNotFound) {
				return "", apperr.Consistency(apperr.CodeMissingRelation, err, "contract %d has no player", c.ID)
			}
			return "", err
		}
		return p.FullName, nil
	case c.LeaguePlayerID != nil:
		p, err := repo.GetLeaguePlayer(ctx, *c.LeaguePlayerID)
		if err != nil {
			if apperr.HasCode(err, apperr.CodeNotFound) {
				return "", apperr.Consistency(apperr.CodeMissingRelation, err, "contract %d has no league player", c.ID)
			}
			return "", err
		}
		return p.FullName, nil
	}
	return "", apperr.Consistency(apperr.CodeMissingRelation, nil, "contract %d has neither player nor league player", c.ID)
}

// RequireTeamInLeague fails unless teamID is a team of leagueID.
func RequireTeamInLeague(ctx context.Context, repo DirectoryRepository, leagueID, teamID uuid.UUID) (*models.FantasyTeam, error) {
	team, err := repo.GetFantasyTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	if team.LeagueID != leagueID {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "team %s is not in league %s", teamID, leagueID)
	}
	return team, nil
}
