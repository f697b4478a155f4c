package memstore

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/models"
)

func (tx *Tx) GetLeague(_ context.Context, id uuid.UUID) (*models.League, error) {
	l, ok := tx.st.leagues[id]
	if !ok {
		return nil, apperr.NotFound("league", id)
	}
	l.Settings = cloneRaw(l.Settings)
	return &l, nil
}

func (tx *Tx) UpdateLeagueSettings(_ context.Context, id uuid.UUID, settings json.RawMessage) (*models.League, error) {
	l, ok := tx.st.leagues[id]
	if !ok {
		return nil, apperr.NotFound("league", id)
	}
	l.Settings = cloneRaw(settings)
	l.UpdatedAt = tx.clock.Now()
	tx.st.leagues[id] = l
	return &l, nil
}

func (tx *Tx) GetFantasyTeam(_ context.Context, id uuid.UUID) (*models.FantasyTeam, error) {
	t, ok := tx.st.teams[id]
	if !ok {
		return nil, apperr.NotFound("fantasy team", id)
	}
	return &t, nil
}

func (tx *Tx) ListFantasyTeamsByLeague(_ context.Context, leagueID uuid.UUID) ([]models.FantasyTeam, error) {
	return sortedValues(tx.st.teams,
		func(t models.FantasyTeam) bool { return t.LeagueID == leagueID },
		func(a, b models.FantasyTeam) int { return strings.Compare(a.Name, b.Name) },
	), nil
}

func (tx *Tx) IsTeamMember(_ context.Context, teamID, userID uuid.UUID) (bool, error) {
	return tx.st.members[models.TeamMember{TeamID: teamID, UserID: userID}], nil
}

func (tx *Tx) GetPlayer(_ context.Context, id uuid.UUID) (*models.Player, error) {
	p, ok := tx.st.players[id]
	if !ok {
		return nil, apperr.NotFound("player", id)
	}
	return &p, nil
}

func (tx *Tx) GetLeaguePlayer(_ context.Context, id uuid.UUID) (*models.LeaguePlayer, error) {
	p, ok := tx.st.leaguePlayers[id]
	if !ok {
		return nil, apperr.NotFound("league player", id)
	}
	return &p, nil
}
