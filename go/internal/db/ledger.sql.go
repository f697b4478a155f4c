package db

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
)

const transactionColumns = `id, league_id, season_end_year, type, deadline_id, team_id, contract_id, trade_id, auction_id, created_at`

func scanTransaction(row interface{ Scan(...interface{}) error }) (Transaction, error) {
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.LeagueID,
		&i.SeasonEndYear,
		&i.Type,
		&i.DeadlineID,
		&i.TeamID,
		&i.ContractID,
		&i.TradeID,
		&i.AuctionID,
		&i.CreatedAt,
	)
	return i, err
}

const insertTransaction = `-- name: InsertTransaction :one
INSERT INTO transaction (league_id, season_end_year, type, deadline_id, team_id, contract_id, trade_id, auction_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + transactionColumns

type InsertTransactionParams struct {
	LeagueID      uuid.UUID
	SeasonEndYear int32
	Type          string
	DeadlineID    sql.NullInt64
	TeamID        uuid.NullUUID
	ContractID    sql.NullInt64
	TradeID       sql.NullInt64
	AuctionID     sql.NullInt64
}

func (q *Queries) InsertTransaction(ctx context.Context, arg InsertTransactionParams) (Transaction, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, insertTransaction,
		arg.LeagueID,
		arg.SeasonEndYear,
		arg.Type,
		arg.DeadlineID,
		arg.TeamID,
		arg.ContractID,
		arg.TradeID,
		arg.AuctionID,
	))
}

const findTeamTransaction = `-- name: FindTeamTransaction :one
SELECT ` + transactionColumns + `
FROM transaction
WHERE team_id = $1 AND type = $2 AND deadline_id = $3
ORDER BY id DESC
LIMIT 1
`

type FindTeamTransactionParams struct {
	TeamID     uuid.UUID
	Type       string
	DeadlineID int64
}

func (q *Queries) FindTeamTransaction(ctx context.Context, arg FindTeamTransactionParams) (Transaction, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, findTeamTransaction, arg.TeamID, arg.Type, arg.DeadlineID))
}

const listTransactions = `-- name: ListTransactions :many
SELECT ` + transactionColumns + `
FROM transaction
WHERE league_id = $1 AND season_end_year = $2
ORDER BY id
`

type ListTransactionsParams struct {
	LeagueID      uuid.UUID
	SeasonEndYear int32
}

func (q *Queries) ListTransactions(ctx context.Context, arg ListTransactionsParams) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions, arg.LeagueID, arg.SeasonEndYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		i, err := scanTransaction(rows)
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

const listInSeasonDroppedContracts = `-- name: ListInSeasonDroppedContracts :many
SELECT c.id, c.league_id, c.season_end_year, c.player_id, c.league_player_id, c.team_id, c.contract_year,
    c.contract_type, c.is_ir, c.salary, c.status, c.previous_contract_id, c.original_contract_id, c.created_at
FROM transaction t
JOIN deadline d ON d.id = t.deadline_id
JOIN contract c ON c.id = t.contract_id
WHERE t.league_id = $1
  AND t.season_end_year = $2
  AND t.team_id = $3
  AND t.type = 'DROP'
  AND d.type IN ('REGULAR_SEASON', 'POST_SEASON')
ORDER BY t.id
`

type ListInSeasonDroppedContractsParams struct {
	LeagueID      uuid.UUID
	SeasonEndYear int32
	TeamID        uuid.UUID
}

func (q *Queries) ListInSeasonDroppedContracts(ctx context.Context, arg ListInSeasonDroppedContractsParams) ([]Contract, error) {
	rows, err := q.db.QueryContext(ctx, listInSeasonDroppedContracts, arg.LeagueID, arg.SeasonEndYear, arg.TeamID)
	if err != nil {
		return nil, err
	}
	return scanContracts(rows)
}

const insertTeamUpdate = `-- name: InsertTeamUpdate :one
INSERT INTO team_update (transaction_id, team_id, data)
VALUES ($1, $2, $3)
RETURNING id, transaction_id, team_id, data, created_at
`

type InsertTeamUpdateParams struct {
	TransactionID int64
	TeamID        uuid.UUID
	Data          json.RawMessage
}

func (q *Queries) InsertTeamUpdate(ctx context.Context, arg InsertTeamUpdateParams) (TeamUpdate, error) {
	row := q.db.QueryRowContext(ctx, insertTeamUpdate, arg.TransactionID, arg.TeamID, arg.Data)
	var i TeamUpdate
	err := row.Scan(&i.ID, &i.TransactionID, &i.TeamID, &i.Data, &i.CreatedAt)
	return i, err
}

const listTeamUpdates = `-- name: ListTeamUpdates :many
SELECT id, transaction_id, team_id, data, created_at
FROM team_update
WHERE transaction_id = $1
ORDER BY id
`

func (q *Queries) ListTeamUpdates(ctx context.Context, transactionID int64) ([]TeamUpdate, error) {
	rows, err := q.db.QueryContext(ctx, listTeamUpdates, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TeamUpdate
	for rows.Next() {
		var i TeamUpdate
		if err := rows.Scan(&i.ID, &i.TransactionID, &i.TeamID, &i.Data, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
