package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

const contractColumns = `id, league_id, season_end_year, player_id, league_player_id, team_id, contract_year,
    contract_type, is_ir, salary, status, previous_contract_id, original_contract_id, created_at`

func scanContract(row interface{ Scan(...interface{}) error }) (Contract, error) {
	var i Contract
	err := row.Scan(
		&i.ID,
		&i.LeagueID,
		&i.SeasonEndYear,
		&i.PlayerID,
		&i.LeaguePlayerID,
		&i.TeamID,
		&i.ContractYear,
		&i.ContractType,
		&i.IsIr,
		&i.Salary,
		&i.Status,
		&i.PreviousContractID,
		&i.OriginalContractID,
		&i.CreatedAt,
	)
	return i, err
}

func scanContracts(rows *sql.Rows) ([]Contract, error) {
	defer rows.Close()
	var items []Contract
	for rows.Next() {
		i, err := scanContract(rows)
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

const getContract = `-- name: GetContract :one
SELECT ` + contractColumns + `
FROM contract
WHERE id = $1
`

func (q *Queries) GetContract(ctx context.Context, id int64) (Contract, error) {
	return scanContract(q.db.QueryRowContext(ctx, getContract, id))
}

const insertContract = `-- name: InsertContract :one
INSERT INTO contract (
    league_id, season_end_year, player_id, league_player_id, team_id, contract_year,
    contract_type, is_ir, salary, status, previous_contract_id, original_contract_id
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + contractColumns

type InsertContractParams struct {
	LeagueID           uuid.UUID
	SeasonEndYear      int32
	PlayerID           uuid.NullUUID
	LeaguePlayerID     uuid.NullUUID
	TeamID             uuid.NullUUID
	ContractYear       int32
	ContractType       string
	IsIr               bool
	Salary             int32
	Status             string
	PreviousContractID sql.NullInt64
	OriginalContractID sql.NullInt64
}

func (q *Queries) InsertContract(ctx context.Context, arg InsertContractParams) (Contract, error) {
	return scanContract(q.db.QueryRowContext(ctx, insertContract,
		arg.LeagueID,
		arg.SeasonEndYear,
		arg.PlayerID,
		arg.LeaguePlayerID,
		arg.TeamID,
		arg.ContractYear,
		arg.ContractType,
		arg.IsIr,
		arg.Salary,
		arg.Status,
		arg.PreviousContractID,
		arg.OriginalContractID,
	))
}

const setContractRoot = `-- name: SetContractRoot :one
UPDATE contract
SET original_contract_id = id
WHERE id = $1 AND original_contract_id IS NULL
RETURNING ` + contractColumns

func (q *Queries) SetContractRoot(ctx context.Context, id int64) (Contract, error) {
	return scanContract(q.db.QueryRowContext(ctx, setContractRoot, id))
}

const markContractReplaced = `-- name: MarkContractReplaced :execrows
UPDATE contract
SET status = 'REPLACED'
WHERE id = $1 AND status = 'ACTIVE'
`

func (q *Queries) MarkContractReplaced(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, markContractReplaced, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getLatestContractInChain = `-- name: GetLatestContractInChain :one
SELECT ` + contractColumns + `
FROM contract
WHERE original_contract_id = $1
ORDER BY id DESC
LIMIT 1
`

func (q *Queries) GetLatestContractInChain(ctx context.Context, originalContractID int64) (Contract, error) {
	return scanContract(q.db.QueryRowContext(ctx, getLatestContractInChain, originalContractID))
}

const listContractChain = `-- name: ListContractChain :many
SELECT ` + contractColumns + `
FROM contract
WHERE original_contract_id = $1
ORDER BY id
`

func (q *Queries) ListContractChain(ctx context.Context, originalContractID int64) ([]Contract, error) {
	rows, err := q.db.QueryContext(ctx, listContractChain, originalContractID)
	if err != nil {
		return nil, err
	}
	return scanContracts(rows)
}

const listActiveContractsByTeam = `-- name: ListActiveContractsByTeam :many
SELECT ` + contractColumns + `
FROM contract
WHERE league_id = $1 AND season_end_year = $2 AND team_id = $3 AND status = 'ACTIVE'
ORDER BY id
`

type ListActiveContractsByTeamParams struct {
	LeagueID      uuid.UUID
	SeasonEndYear int32
	TeamID        uuid.UUID
}

func (q *Queries) ListActiveContractsByTeam(ctx context.Context, arg ListActiveContractsByTeamParams) ([]Contract, error) {
	rows, err := q.db.QueryContext(ctx, listActiveContractsByTeam, arg.LeagueID, arg.SeasonEndYear, arg.TeamID)
	if err != nil {
		return nil, err
	}
	return scanContracts(rows)
}

const listActiveContractsByLeague = `-- name: ListActiveContractsByLeague :many
SELECT ` + contractColumns + `
FROM contract
WHERE league_id = $1 AND season_end_year = $2 AND status = 'ACTIVE'
ORDER BY id
`

type ListActiveContractsByLeagueParams struct {
	LeagueID      uuid.UUID
	SeasonEndYear int32
}

func (q *Queries) ListActiveContractsByLeague(ctx context.Context, arg ListActiveContractsByLeagueParams) ([]Contract, error) {
	rows, err := q.db.QueryContext(ctx, listActiveContractsByLeague, arg.LeagueID, arg.SeasonEndYear)
	if err != nil {
		return nil, err
	}
	return scanContracts(rows)
}
