package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const deadlineColumns = `id, league_id, season_end_year, type, datetime, created_at`

func scanDeadline(row interface{ Scan(...interface{}) error }) (Deadline, error) {
	var i Deadline
	err := row.Scan(&i.ID, &i.LeagueID, &i.SeasonEndYear, &i.Type, &i.Datetime, &i.CreatedAt)
	return i, err
}

const insertDeadline = `-- name: InsertDeadline :one
INSERT INTO deadline (league_id, season_end_year, type, datetime)
VALUES ($1, $2, $3, $4)
RETURNING ` + deadlineColumns

type InsertDeadlineParams struct {
	LeagueID      uuid.UUID
	SeasonEndYear int32
	Type          string
	Datetime      time.Time
}

func (q *Queries) InsertDeadline(ctx context.Context, arg InsertDeadlineParams) (Deadline, error) {
	return scanDeadline(q.db.QueryRowContext(ctx, insertDeadline, arg.LeagueID, arg.SeasonEndYear, arg.Type, arg.Datetime))
}

const getDeadline = `-- name: GetDeadline :one
SELECT ` + deadlineColumns + `
FROM deadline
WHERE id = $1
`

func (q *Queries) GetDeadline(ctx context.Context, id int64) (Deadline, error) {
	return scanDeadline(q.db.QueryRowContext(ctx, getDeadline, id))
}

const getDeadlineByType = `-- name: GetDeadlineByType :one
SELECT ` + deadlineColumns + `
FROM deadline
WHERE league_id = $1 AND season_end_year = $2 AND type = $3
`

type GetDeadlineByTypeParams struct {
	LeagueID      uuid.UUID
	SeasonEndYear int32
	Type          string
}

func (q *Queries) GetDeadlineByType(ctx context.Context, arg GetDeadlineByTypeParams) (Deadline, error) {
	return scanDeadline(q.db.QueryRowContext(ctx, getDeadlineByType, arg.LeagueID, arg.SeasonEndYear, arg.Type))
}

const nextDeadlineOnOrAfter = `-- name: NextDeadlineOnOrAfter :one
SELECT ` + deadlineColumns + `
FROM deadline
WHERE league_id = $1 AND season_end_year = $2 AND datetime >= $3
ORDER BY datetime, id
LIMIT 1
`

type NextDeadlineOnOrAfterParams struct {
	LeagueID      uuid.UUID
	SeasonEndYear int32
	At            time.Time
}

func (q *Queries) NextDeadlineOnOrAfter(ctx context.Context, arg NextDeadlineOnOrAfterParams) (Deadline, error) {
	return scanDeadline(q.db.QueryRowContext(ctx, nextDeadlineOnOrAfter, arg.LeagueID, arg.SeasonEndYear, arg.At))
}

const listDeadlines = `-- name: ListDeadlines :many
SELECT ` + deadlineColumns + `
FROM deadline
WHERE league_id = $1 AND season_end_year = $2
ORDER BY datetime, id
`

type ListDeadlinesParams struct {
	LeagueID      uuid.UUID
	SeasonEndYear int32
}

func (q *Queries) ListDeadlines(ctx context.Context, arg ListDeadlinesParams) ([]Deadline, error) {
	rows, err := q.db.QueryContext(ctx, listDeadlines, arg.LeagueID, arg.SeasonEndYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Deadline
	for rows.Next() {
		i, err := scanDeadline(rows)
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

const deadlineUnitColumns = `deadline_id, unit_key, status, attempts, last_error, updated_at`

func scanDeadlineUnit(row interface{ Scan(...interface{}) error }) (DeadlineUnit, error) {
	var i DeadlineUnit
	err := row.Scan(&i.DeadlineID, &i.UnitKey, &i.Status, &i.Attempts, &i.LastError, &i.UpdatedAt)
	return i, err
}

const getDeadlineUnit = `-- name: GetDeadlineUnit :one
SELECT ` + deadlineUnitColumns + `
FROM deadline_unit
WHERE deadline_id = $1 AND unit_key = $2
FOR UPDATE
`

func (q *Queries) GetDeadlineUnit(ctx context.Context, deadlineID int64, unitKey string) (DeadlineUnit, error) {
	return scanDeadlineUnit(q.db.QueryRowContext(ctx, getDeadlineUnit, deadlineID, unitKey))
}

const upsertDeadlineUnit = `-- name: UpsertDeadlineUnit :one
INSERT INTO deadline_unit (deadline_id, unit_key, status, attempts, last_error, updated_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (deadline_id, unit_key) DO UPDATE
SET status = EXCLUDED.status,
    attempts = EXCLUDED.attempts,
    last_error = EXCLUDED.last_error,
    updated_at = now()
RETURNING ` + deadlineUnitColumns

type UpsertDeadlineUnitParams struct {
	DeadlineID int64
	UnitKey    string
	Status     string
	Attempts   int32
	LastError  sql.NullString
}

func (q *Queries) UpsertDeadlineUnit(ctx context.Context, arg UpsertDeadlineUnitParams) (DeadlineUnit, error) {
	return scanDeadlineUnit(q.db.QueryRowContext(ctx, upsertDeadlineUnit,
		arg.DeadlineID,
		arg.UnitKey,
		arg.Status,
		arg.Attempts,
		arg.LastError,
	))
}

const listDeadlineUnits = `-- name: ListDeadlineUnits :many
SELECT ` + deadlineUnitColumns + `
FROM deadline_unit
WHERE deadline_id = $1
ORDER BY unit_key
`

func (q *Queries) ListDeadlineUnits(ctx context.Context, deadlineID int64) ([]DeadlineUnit, error) {
	rows, err := q.db.QueryContext(ctx, listDeadlineUnits, deadlineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DeadlineUnit
	for rows.Next() {
		i, err := scanDeadlineUnit(rows)
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
