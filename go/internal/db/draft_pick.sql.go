package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const draftPickColumns = `id, league_id, season_end_year, round, original_owner_team_id, current_owner_team_id, used_at, created_at`

func scanDraftPick(row interface{ Scan(...interface{}) error }) (DraftPick, error) {
	var i DraftPick
	err := row.Scan(
		&i.ID,
		&i.LeagueID,
		&i.SeasonEndYear,
		&i.Round,
		&i.OriginalOwnerTeamID,
		&i.CurrentOwnerTeamID,
		&i.UsedAt,
		&i.CreatedAt,
	)
	return i, err
}

const insertDraftPick = `-- name: InsertDraftPick :one
INSERT INTO draft_pick (league_id, season_end_year, round, original_owner_team_id, current_owner_team_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + draftPickColumns

type InsertDraftPickParams struct {
	LeagueID            uuid.UUID
	SeasonEndYear       int32
	Round               int32
	OriginalOwnerTeamID uuid.UUID
	CurrentOwnerTeamID  uuid.UUID
}

func (q *Queries) InsertDraftPick(ctx context.Context, arg InsertDraftPickParams) (DraftPick, error) {
	return scanDraftPick(q.db.QueryRowContext(ctx, insertDraftPick,
		arg.LeagueID,
		arg.SeasonEndYear,
		arg.Round,
		arg.OriginalOwnerTeamID,
		arg.CurrentOwnerTeamID,
	))
}

const getDraftPick = `-- name: GetDraftPick :one
SELECT ` + draftPickColumns + `
FROM draft_pick
WHERE id = $1
`

func (q *Queries) GetDraftPick(ctx context.Context, id int64) (DraftPick, error) {
	return scanDraftPick(q.db.QueryRowContext(ctx, getDraftPick, id))
}

const listDraftPicksBySeason = `-- name: ListDraftPicksBySeason :many
SELECT ` + draftPickColumns + `
FROM draft_pick
WHERE league_id = $1 AND season_end_year = $2
ORDER BY round, id
`

type ListDraftPicksBySeasonParams struct {
	LeagueID      uuid.UUID
	SeasonEndYear int32
}

func (q *Queries) ListDraftPicksBySeason(ctx context.Context, arg ListDraftPicksBySeasonParams) ([]DraftPick, error) {
	rows, err := q.db.QueryContext(ctx, listDraftPicksBySeason, arg.LeagueID, arg.SeasonEndYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DraftPick
	for rows.Next() {
		i, err := scanDraftPick(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateDraftPickOwner = `-- name: UpdateDraftPickOwner :one
UPDATE draft_pick
SET current_owner_team_id = $2
WHERE id = $1 AND current_owner_team_id = $3 AND used_at IS NULL
RETURNING ` + draftPickColumns

type UpdateDraftPickOwnerParams struct {
	ID                  int64
	CurrentOwnerTeamID  uuid.UUID
	PreviousOwnerTeamID uuid.UUID
}

func (q *Queries) UpdateDraftPickOwner(ctx context.Context, arg UpdateDraftPickOwnerParams) (DraftPick, error) {
	return scanDraftPick(q.db.QueryRowContext(ctx, updateDraftPickOwner, arg.ID, arg.CurrentOwnerTeamID, arg.PreviousOwnerTeamID))
}

const markDraftPickUsed = `-- name: MarkDraftPickUsed :one
UPDATE draft_pick
SET used_at = $2
WHERE id = $1 AND used_at IS NULL
RETURNING ` + draftPickColumns

func (q *Queries) MarkDraftPickUsed(ctx context.Context, id int64, usedAt time.Time) (DraftPick, error) {
	return scanDraftPick(q.db.QueryRowContext(ctx, markDraftPickUsed, id, usedAt))
}

const draftPickOptionColumns = `id, draft_pick_id, clause, status, created_at, updated_at`

func scanDraftPickOption(row interface{ Scan(...interface{}) error }) (DraftPickOption, error) {
	var i DraftPickOption
	err := row.Scan(&i.ID, &i.DraftPickID, &i.Clause, &i.Status, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const insertDraftPickOption = `-- name: InsertDraftPickOption :one
INSERT INTO draft_pick_option (draft_pick_id, clause, status)
VALUES ($1, $2, $3)
RETURNING ` + draftPickOptionColumns

type InsertDraftPickOptionParams struct {
	DraftPickID int64
	Clause      string
	Status      string
}

func (q *Queries) InsertDraftPickOption(ctx context.Context, arg InsertDraftPickOptionParams) (DraftPickOption, error) {
	return scanDraftPickOption(q.db.QueryRowContext(ctx, insertDraftPickOption, arg.DraftPickID, arg.Clause, arg.Status))
}

const getDraftPickOption = `-- name: GetDraftPickOption :one
SELECT ` + draftPickOptionColumns + `
FROM draft_pick_option
WHERE id = $1
`

func (q *Queries) GetDraftPickOption(ctx context.Context, id int64) (DraftPickOption, error) {
	return scanDraftPickOption(q.db.QueryRowContext(ctx, getDraftPickOption, id))
}

const updateDraftPickOptionStatus = `-- name: UpdateDraftPickOptionStatus :one
UPDATE draft_pick_option
SET status = $2, updated_at = now()
WHERE id = $1
RETURNING ` + draftPickOptionColumns

type UpdateDraftPickOptionStatusParams struct {
	ID     int64
	Status string
}

func (q *Queries) UpdateDraftPickOptionStatus(ctx context.Context, arg UpdateDraftPickOptionStatusParams) (DraftPickOption, error) {
	return scanDraftPickOption(q.db.QueryRowContext(ctx, updateDraftPickOptionStatus, arg.ID, arg.Status))
}

const listDraftPickOptionsByPick = `-- name: ListDraftPickOptionsByPick :many
SELECT ` + draftPickOptionColumns + `
FROM draft_pick_option
WHERE draft_pick_id = $1
ORDER BY id
`

func (q *Queries) ListDraftPickOptionsByPick(ctx context.Context, draftPickID int64) ([]DraftPickOption, error) {
	rows, err := q.db.QueryContext(ctx, listDraftPickOptionsByPick, draftPickID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DraftPickOption
	for rows.Next() {
		i, err := scanDraftPickOption(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
