package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const auctionColumns = `id, league_id, season_end_year, contract_id, minimum_bid_amount, start_timestamp,
    soft_end_timestamp, fixed_end_timestamp, closed_at, result_contract_id, created_at`

func scanAuction(row interface{ Scan(...interface{}) error }) (Auction, error) {
	var i Auction
	err := row.Scan(
		&i.ID,
		&i.LeagueID,
		&i.SeasonEndYear,
		&i.ContractID,
		&i.MinimumBidAmount,
		&i.StartTimestamp,
		&i.SoftEndTimestamp,
		&i.FixedEndTimestamp,
		&i.ClosedAt,
		&i.ResultContractID,
		&i.CreatedAt,
	)
	return i, err
}

const insertAuction = `-- name: InsertAuction :one
INSERT INTO auction (
    league_id, season_end_year, contract_id, minimum_bid_amount,
    start_timestamp, soft_end_timestamp, fixed_end_timestamp
) VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + auctionColumns

type InsertAuctionParams struct {
	LeagueID          uuid.UUID
	SeasonEndYear     int32
	ContractID        int64
	MinimumBidAmount  int32
	StartTimestamp    time.Time
	SoftEndTimestamp  time.Time
	FixedEndTimestamp time.Time
}

func (q *Queries) InsertAuction(ctx context.Context, arg InsertAuctionParams) (Auction, error) {
	return scanAuction(q.db.QueryRowContext(ctx, insertAuction,
		arg.LeagueID,
		arg.SeasonEndYear,
		arg.ContractID,
		arg.MinimumBidAmount,
		arg.StartTimestamp,
		arg.SoftEndTimestamp,
		arg.FixedEndTimestamp,
	))
}

const getAuction = `-- name: GetAuction :one
SELECT ` + auctionColumns + `
FROM auction
WHERE id = $1
`

func (q *Queries) GetAuction(ctx context.Context, id int64) (Auction, error) {
	return scanAuction(q.db.QueryRowContext(ctx, getAuction, id))
}

const getAuctionForUpdate = `-- name: GetAuctionForUpdate :one
SELECT ` + auctionColumns + `
FROM auction
WHERE id = $1
FOR UPDATE
`

func (q *Queries) GetAuctionForUpdate(ctx context.Context, id int64) (Auction, error) {
	return scanAuction(q.db.QueryRowContext(ctx, getAuctionForUpdate, id))
}

const getOpenAuctionByContract = `-- name: GetOpenAuctionByContract :one
SELECT ` + auctionColumns + `
FROM auction
WHERE contract_id = $1 AND closed_at IS NULL
`

func (q *Queries) GetOpenAuctionByContract(ctx context.Context, contractID int64) (Auction, error) {
	return scanAuction(q.db.QueryRowContext(ctx, getOpenAuctionByContract, contractID))
}

const listDueAuctions = `-- name: ListDueAuctions :many
SELECT ` + auctionColumns + `
FROM auction
WHERE league_id = $1 AND season_end_year = $2 AND closed_at IS NULL AND fixed_end_timestamp <= $3
ORDER BY fixed_end_timestamp, id
`

type ListDueAuctionsParams struct {
	LeagueID      uuid.UUID
	SeasonEndYear int32
	DueBy         time.Time
}

func (q *Queries) ListDueAuctions(ctx context.Context, arg ListDueAuctionsParams) ([]Auction, error) {
	rows, err := q.db.QueryContext(ctx, listDueAuctions, arg.LeagueID, arg.SeasonEndYear, arg.DueBy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Auction
	for rows.Next() {
		i, err := scanAuction(rows)
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

const closeAuction = `-- name: CloseAuction :one
UPDATE auction
SET closed_at = $2, result_contract_id = $3
WHERE id = $1 AND closed_at IS NULL
RETURNING ` + auctionColumns

type CloseAuctionParams struct {
	ID               int64
	ClosedAt         time.Time
	ResultContractID sql.NullInt64
}

func (q *Queries) CloseAuction(ctx context.Context, arg CloseAuctionParams) (Auction, error) {
	return scanAuction(q.db.QueryRowContext(ctx, closeAuction, arg.ID, arg.ClosedAt, arg.ResultContractID))
}

const auctionBidColumns = `id, auction_id, team_id, user_id, amount, created_at`

func scanAuctionBid(row interface{ Scan(...interface{}) error }) (AuctionBid, error) {
	var i AuctionBid
	err := row.Scan(&i.ID, &i.AuctionID, &i.TeamID, &i.UserID, &i.Amount, &i.CreatedAt)
	return i, err
}

const insertAuctionBid = `-- name: InsertAuctionBid :one
INSERT INTO auction_bid (auction_id, team_id, user_id, amount, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + auctionBidColumns

type InsertAuctionBidParams struct {
	AuctionID int64
	TeamID    uuid.UUID
	UserID    uuid.UUID
	Amount    int32
	CreatedAt time.Time
}

func (q *Queries) InsertAuctionBid(ctx context.Context, arg InsertAuctionBidParams) (AuctionBid, error) {
	return scanAuctionBid(q.db.QueryRowContext(ctx, insertAuctionBid,
		arg.AuctionID,
		arg.TeamID,
		arg.UserID,
		arg.Amount,
		arg.CreatedAt,
	))
}

const getHighestBid = `-- name: GetHighestBid :one
SELECT ` + auctionBidColumns + `
FROM auction_bid
WHERE auction_id = $1
ORDER BY amount DESC, id DESC
LIMIT 1
`

func (q *Queries) GetHighestBid(ctx context.Context, auctionID int64) (AuctionBid, error) {
	return scanAuctionBid(q.db.QueryRowContext(ctx, getHighestBid, auctionID))
}

const listAuctionBids = `-- name: ListAuctionBids :many
SELECT ` + auctionBidColumns + `
FROM auction_bid
WHERE auction_id = $1
ORDER BY id
`

func (q *Queries) ListAuctionBids(ctx context.Context, auctionID int64) ([]AuctionBid, error) {
	rows, err := q.db.QueryContext(ctx, listAuctionBids, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AuctionBid
	for rows.Next() {
		i, err := scanAuctionBid(rows)
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
