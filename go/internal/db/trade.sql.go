package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const tradeColumns = `id, league_id, season_end_year, status, previous_trade_id, original_trade_id, created_at, updated_at`

func scanTrade(row interface{ Scan(...interface{}) error }) (Trade, error) {
	var i Trade
	err := row.Scan(
		&i.ID,
		&i.LeagueID,
		&i.SeasonEndYear,
		&i.Status,
		&i.PreviousTradeID,
		&i.OriginalTradeID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const insertTrade = `-- name: InsertTrade :one
INSERT INTO trade (league_id, season_end_year, status, previous_trade_id, original_trade_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + tradeColumns

type InsertTradeParams struct {
	LeagueID        uuid.UUID
	SeasonEndYear   int32
	Status          string
	PreviousTradeID sql.NullInt64
	OriginalTradeID sql.NullInt64
}

func (q *Queries) InsertTrade(ctx context.Context, arg InsertTradeParams) (Trade, error) {
	return scanTrade(q.db.QueryRowContext(ctx, insertTrade,
		arg.LeagueID,
		arg.SeasonEndYear,
		arg.Status,
		arg.PreviousTradeID,
		arg.OriginalTradeID,
	))
}

const setTradeRoot = `-- name: SetTradeRoot :one
UPDATE trade
SET original_trade_id = id
WHERE id = $1 AND original_trade_id IS NULL
RETURNING ` + tradeColumns

func (q *Queries) SetTradeRoot(ctx context.Context, id int64) (Trade, error) {
	return scanTrade(q.db.QueryRowContext(ctx, setTradeRoot, id))
}

const getTrade = `-- name: GetTrade :one
SELECT ` + tradeColumns + `
FROM trade
WHERE id = $1
`

func (q *Queries) GetTrade(ctx context.Context, id int64) (Trade, error) {
	return scanTrade(q.db.QueryRowContext(ctx, getTrade, id))
}

const getTradeForUpdate = `-- name: GetTradeForUpdate :one
SELECT ` + tradeColumns + `
FROM trade
WHERE id = $1
FOR UPDATE
`

func (q *Queries) GetTradeForUpdate(ctx context.Context, id int64) (Trade, error) {
	return scanTrade(q.db.QueryRowContext(ctx, getTradeForUpdate, id))
}

const getLatestTradeInChain = `-- name: GetLatestTradeInChain :one
SELECT ` + tradeColumns + `
FROM trade
WHERE original_trade_id = $1
ORDER BY id DESC
LIMIT 1
`

func (q *Queries) GetLatestTradeInChain(ctx context.Context, originalTradeID int64) (Trade, error) {
	return scanTrade(q.db.QueryRowContext(ctx, getLatestTradeInChain, originalTradeID))
}

const updateTradeStatus = `-- name: UpdateTradeStatus :one
UPDATE trade
SET status = $2, updated_at = now()
WHERE id = $1
RETURNING ` + tradeColumns

type UpdateTradeStatusParams struct {
	ID     int64
	Status string
}

func (q *Queries) UpdateTradeStatus(ctx context.Context, arg UpdateTradeStatusParams) (Trade, error) {
	return scanTrade(q.db.QueryRowContext(ctx, updateTradeStatus, arg.ID, arg.Status))
}

const insertTradeTeam = `-- name: InsertTradeTeam :exec
INSERT INTO trade_team (trade_id, team_id) VALUES ($1, $2)
ON CONFLICT DO NOTHING
`

func (q *Queries) InsertTradeTeam(ctx context.Context, tradeID int64, teamID uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, insertTradeTeam, tradeID, teamID)
	return err
}

const listTradeTeams = `-- name: ListTradeTeams :many
SELECT team_id FROM trade_team WHERE trade_id = $1 ORDER BY team_id
`

func (q *Queries) ListTradeTeams(ctx context.Context, tradeID int64) ([]uuid.UUID, error) {
	rows, err := q.db.QueryContext(ctx, listTradeTeams, tradeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []uuid.UUID
	for rows.Next() {
		var teamID uuid.UUID
		if err := rows.Scan(&teamID); err != nil {
			return nil, err
		}
		items = append(items, teamID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertTradeAction = `-- name: InsertTradeAction :one
INSERT INTO trade_action (trade_id, team_id, user_id, action)
VALUES ($1, $2, $3, $4)
RETURNING id, trade_id, team_id, user_id, action, created_at
`

type InsertTradeActionParams struct {
	TradeID int64
	TeamID  uuid.UUID
	UserID  uuid.UUID
	Action  string
}

func (q *Queries) InsertTradeAction(ctx context.Context, arg InsertTradeActionParams) (TradeAction, error) {
	row := q.db.QueryRowContext(ctx, insertTradeAction, arg.TradeID, arg.TeamID, arg.UserID, arg.Action)
	var i TradeAction
	err := row.Scan(&i.ID, &i.TradeID, &i.TeamID, &i.UserID, &i.Action, &i.CreatedAt)
	return i, err
}

const listTradeActions = `-- name: ListTradeActions :many
SELECT id, trade_id, team_id, user_id, action, created_at
FROM trade_action
WHERE trade_id = $1
ORDER BY id
`

func (q *Queries) ListTradeActions(ctx context.Context, tradeID int64) ([]TradeAction, error) {
	rows, err := q.db.QueryContext(ctx, listTradeActions, tradeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TradeAction
	for rows.Next() {
		var i TradeAction
		if err := rows.Scan(&i.ID, &i.TradeID, &i.TeamID, &i.UserID, &i.Action, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const tradeAssetColumns = `id, trade_id, asset_type, contract_id, draft_pick_id, draft_pick_option_id, from_team_id, to_team_id`

func scanTradeAsset(row interface{ Scan(...interface{}) error }) (TradeAsset, error) {
	var i TradeAsset
	err := row.Scan(
		&i.ID,
		&i.TradeID,
		&i.AssetType,
		&i.ContractID,
		&i.DraftPickID,
		&i.DraftPickOptionID,
		&i.FromTeamID,
		&i.ToTeamID,
	)
	return i, err
}

const insertTradeAsset = `-- name: InsertTradeAsset :one
INSERT INTO trade_asset (trade_id, asset_type, contract_id, draft_pick_id, draft_pick_option_id, from_team_id, to_team_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + tradeAssetColumns

type InsertTradeAssetParams struct {
	TradeID           int64
	AssetType         string
	ContractID        sql.NullInt64
	DraftPickID       sql.NullInt64
	DraftPickOptionID sql.NullInt64
	FromTeamID        uuid.UUID
	ToTeamID          uuid.UUID
}

func (q *Queries) InsertTradeAsset(ctx context.Context, arg InsertTradeAssetParams) (TradeAsset, error) {
	return scanTradeAsset(q.db.QueryRowContext(ctx, insertTradeAsset,
		arg.TradeID,
		arg.AssetType,
		arg.ContractID,
		arg.DraftPickID,
		arg.DraftPickOptionID,
		arg.FromTeamID,
		arg.ToTeamID,
	))
}

const listTradeAssets = `-- name: ListTradeAssets :many
SELECT ` + tradeAssetColumns + `
FROM trade_asset
WHERE trade_id = $1
ORDER BY id
`

func (q *Queries) ListTradeAssets(ctx context.Context, tradeID int64) ([]TradeAsset, error) {
	rows, err := q.db.QueryContext(ctx, listTradeAssets, tradeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TradeAsset
	for rows.Next() {
		i, err := scanTradeAsset(rows)
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

const listOpenTradesReferencing = `-- name: ListOpenTradesReferencing :many
SELECT DISTINCT t.id, t.league_id, t.season_end_year, t.status, t.previous_trade_id, t.original_trade_id, t.created_at, t.updated_at
FROM trade t
JOIN trade_asset ta ON ta.trade_id = t.id
LEFT JOIN contract c ON c.id = ta.contract_id
LEFT JOIN draft_pick_option o ON o.id = ta.draft_pick_option_id
WHERE t.league_id = $1
  AND t.season_end_year = $2
  AND t.status IN ('PROPOSED', 'COUNTEROFFERED')
  AND t.original_trade_id <> $5
  AND (
       c.original_contract_id = ANY($3::bigint[])
    OR ta.draft_pick_id = ANY($4::bigint[])
    OR o.draft_pick_id = ANY($4::bigint[])
  )
ORDER BY t.id
`

type ListOpenTradesReferencingParams struct {
	LeagueID          uuid.UUID
	SeasonEndYear     int32
	ContractRootIDs   []int64
	DraftPickIDs      []int64
	ExcludeOriginalID int64
}

func (q *Queries) ListOpenTradesReferencing(ctx context.Context, arg ListOpenTradesReferencingParams) ([]Trade, error) {
	rows, err := q.db.QueryContext(ctx, listOpenTradesReferencing,
		arg.LeagueID,
		arg.SeasonEndYear,
		pq.Array(arg.ContractRootIDs),
		pq.Array(arg.DraftPickIDs),
		arg.ExcludeOriginalID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Trade
	for rows.Next() {
		i, err := scanTrade(rows)
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
