package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

const getLeague = `-- name: GetLeague :one
SELECT id, name, commissioner_id, settings, status, current_season_end_year, created_at, updated_at
FROM leagues
WHERE id = $1
`

func (q *Queries) GetLeague(ctx context.Context, id uuid.UUID) (League, error) {
	row := q.db.QueryRowContext(ctx, getLeague, id)
	var i League
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.CommissionerID,
		&i.Settings,
		&i.Status,
		&i.CurrentSeasonEndYear,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateLeagueSettings = `-- name: UpdateLeagueSettings :one
UPDATE leagues
SET settings = $2, updated_at = now()
WHERE id = $1
RETURNING id, name, commissioner_id, settings, status, current_season_end_year, created_at, updated_at
`

type UpdateLeagueSettingsParams struct {
	ID       uuid.UUID
	Settings pqtype.NullRawMessage
}

func (q *Queries) UpdateLeagueSettings(ctx context.Context, arg UpdateLeagueSettingsParams) (League, error) {
	row := q.db.QueryRowContext(ctx, updateLeagueSettings, arg.ID, arg.Settings)
	var i League
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.CommissionerID,
		&i.Settings,
		&i.Status,
		&i.CurrentSeasonEndYear,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getFantasyTeam = `-- name: GetFantasyTeam :one
SELECT id, league_id, name, abbreviation, created_at
FROM fantasy_teams
WHERE id = $1
`

func (q *Queries) GetFantasyTeam(ctx context.Context, id uuid.UUID) (FantasyTeam, error) {
	row := q.db.QueryRowContext(ctx, getFantasyTeam, id)
	var i FantasyTeam
	err := row.Scan(&i.ID, &i.LeagueID, &i.Name, &i.Abbreviation, &i.CreatedAt)
	return i, err
}

const listFantasyTeamsByLeague = `-- name: ListFantasyTeamsByLeague :many
SELECT id, league_id, name, abbreviation, created_at
FROM fantasy_teams
WHERE league_id = $1
ORDER BY name
`

func (q *Queries) ListFantasyTeamsByLeague(ctx context.Context, leagueID uuid.UUID) ([]FantasyTeam, error) {
	rows, err := q.db.QueryContext(ctx, listFantasyTeamsByLeague, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []FantasyTeam
	for rows.Next() {
		var i FantasyTeam
		if err := rows.Scan(&i.ID, &i.LeagueID, &i.Name, &i.Abbreviation, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const isTeamMember = `-- name: IsTeamMember :one
SELECT EXISTS (
    SELECT 1 FROM fantasy_team_members WHERE team_id = $1 AND user_id = $2
)
`

type IsTeamMemberParams struct {
	TeamID uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) IsTeamMember(ctx context.Context, arg IsTeamMemberParams) (bool, error) {
	row := q.db.QueryRowContext(ctx, isTeamMember, arg.TeamID, arg.UserID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const getPlayer = `-- name: GetPlayer :one
SELECT id, external_id, full_name, position, created_at
FROM players
WHERE id = $1
`

func (q *Queries) GetPlayer(ctx context.Context, id uuid.UUID) (Player, error) {
	row := q.db.QueryRowContext(ctx, getPlayer, id)
	var i Player
	err := row.Scan(&i.ID, &i.ExternalID, &i.FullName, &i.Position, &i.CreatedAt)
	return i, err
}

const getLeaguePlayer = `-- name: GetLeaguePlayer :one
SELECT id, league_id, full_name, position, created_at
FROM league_players
WHERE id = $1
`

func (q *Queries) GetLeaguePlayer(ctx context.Context, id uuid.UUID) (LeaguePlayer, error) {
	row := q.db.QueryRowContext(ctx, getLeaguePlayer, id)
	var i LeaguePlayer
	err := row.Scan(&i.ID, &i.LeagueID, &i.FullName, &i.Position, &i.CreatedAt)
	return i, err
}
