package auction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/db"
	"github.com/mcdev12/capspace/go/internal/models"
	"github.com/mcdev12/capspace/go/internal/sqlutil"
)

// Querier defines what the repository needs from the database layer
type Querier interface {
	InsertAuction(ctx context.Context, arg db.InsertAuctionParams) (db.Auction, error)
	GetAuction(ctx context.Context, id int64) (db.Auction, error)
	GetAuctionForUpdate(ctx context.Context, id int64) (db.Auction, error)
	GetOpenAuctionByContract(ctx context.Context, contractID int64) (db.Auction, error)
	ListDueAuctions(ctx context.Context, arg db.ListDueAuctionsParams) ([]db.Auction, error)
	CloseAuction(ctx context.Context, arg db.CloseAuctionParams) (db.Auction, error)
	InsertAuctionBid(ctx context.Context, arg db.InsertAuctionBidParams) (db.AuctionBid, error)
	GetHighestBid(ctx context.Context, auctionID int64) (db.AuctionBid, error)
	ListAuctionBids(ctx context.Context, auctionID int64) ([]db.AuctionBid, error)
}

// Repository implements the auction and auction_bid tables
type Repository struct {
	queries Querier
}

// NewRepository creates a new auction repository
func NewRepository(querier Querier) *Repository {
	return &Repository{
		queries: querier,
	}
}

// InsertAuction opens an auction. A contract has at most one open auction.
func (r *Repository) InsertAuction(ctx context.Context, a models.Auction) (*models.Auction, error) {
	row, err := r.queries.InsertAuction(ctx, db.InsertAuctionParams{
		LeagueID:          a.LeagueID,
		SeasonEndYear:     int32(a.SeasonEndYear),
		ContractID:        a.ContractID,
		MinimumBidAmount:  int32(a.MinimumBidAmount),
		StartTimestamp:    a.StartTimestamp,
		SoftEndTimestamp:  a.SoftEndTimestamp,
		FixedEndTimestamp: a.FixedEndTimestamp,
	})
	if err != nil {
		if _, ok := sqlutil.IsUniqueViolation(err); ok {
			return nil, apperr.Validation(apperr.CodeInvalidState, "contract %d already has an open auction", a.ContractID)
		}
		return nil, fmt.Errorf("failed to insert auction: %w", err)
	}
	return dbAuctionToModel(row), nil
}

// GetAuction retrieves an auction by ID
func (r *Repository) GetAuction(ctx context.Context, id int64) (*models.Auction, error) {
	row, err := r.queries.GetAuction(ctx, id)
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, apperr.NotFound("auction", id)
		}
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	return dbAuctionToModel(row), nil
}

// GetAuctionForUpdate retrieves an auction and locks its row until the transaction ends.
// Bids and resolution take this lock so they are serialized per auction.
func (r *Repository) GetAuctionForUpdate(ctx context.Context, id int64) (*models.Auction, error) {
	row, err := r.queries.GetAuctionForUpdate(ctx, id)
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, apperr.NotFound("auction", id)
		}
		return nil, fmt.Errorf("failed to lock auction: %w", err)
	}
	return dbAuctionToModel(row), nil
}

// GetOpenAuctionByContract returns the contract's open auction, or nil if there is none
func (r *Repository) GetOpenAuctionByContract(ctx context.Context, contractID int64) (*models.Auction, error) {
	row, err := r.queries.GetOpenAuctionByContract(ctx, contractID)
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get open auction: %w", err)
	}
	return dbAuctionToModel(row), nil
}

// ListDueAuctions lists open auctions whose fixed end is at or before dueBy
func (r *Repository) ListDueAuctions(ctx context.Context, leagueID uuid.UUID, seasonEndYear int, dueBy time.Time) ([]models.Auction, error) {
	rows, err := r.queries.ListDueAuctions(ctx, db.ListDueAuctionsParams{
		LeagueID:      leagueID,
		SeasonEndYear: int32(seasonEndYear),
		DueBy:         dueBy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list due auctions: %w", err)
	}

	auctions := make([]models.Auction, len(rows))
	for i, row := range rows {
		auctions[i] = *dbAuctionToModel(row)
	}
	return auctions, nil
}

// CloseAuction records the resolution. Closing twice is a conflict.
func (r *Repository) CloseAuction(ctx context.Context, id int64, closedAt time.Time, resultContractID *int64) (*models.Auction, error) {
	row, err := r.queries.CloseAuction(ctx, db.CloseAuctionParams{
		ID:               id,
		ClosedAt:         closedAt,
		ResultContractID: sqlutil.ToNullInt64(resultContractID),
	})
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, apperr.Conflict(apperr.CodeInvalidState, nil, "auction %d is already closed", id)
		}
		return nil, fmt.Errorf("failed to close auction: %w", err)
	}
	return dbAuctionToModel(row), nil
}

// InsertAuctionBid stores an accepted bid
func (r *Repository) InsertAuctionBid(ctx context.Context, b models.AuctionBid) (*models.AuctionBid, error) {
	row, err := r.queries.InsertAuctionBid(ctx, db.InsertAuctionBidParams{
		AuctionID: b.AuctionID,
		TeamID:    b.TeamID,
		UserID:    b.UserID,
		Amount:    int32(b.Amount),
		CreatedAt: b.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert auction bid: %w", err)
	}
	return dbAuctionBidToModel(row), nil
}

// GetHighestBid returns the leading bid, or nil if nobody has bid
func (r *Repository) GetHighestBid(ctx context.Context, auctionID int64) (*models.AuctionBid, error) {
	row, err := r.queries.GetHighestBid(ctx, auctionID)
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get highest bid: %w", err)
	}
	return dbAuctionBidToModel(row), nil
}

// ListAuctionBids lists an auction's bids in the order they were accepted
func (r *Repository) ListAuctionBids(ctx context.Context, auctionID int64) ([]models.AuctionBid, error) {
	rows, err := r.queries.ListAuctionBids(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list auction bids: %w", err)
	}

	bids := make([]models.AuctionBid, len(rows))
	for i, row := range rows {
		bids[i] = *dbAuctionBidToModel(row)
	}
	return bids, nil
}

func dbAuctionToModel(a db.Auction) *models.Auction {
	return &models.Auction{
		ID:                a.ID,
		LeagueID:          a.LeagueID,
		SeasonEndYear:     int(a.SeasonEndYear),
		ContractID:        a.ContractID,
		MinimumBidAmount:  int(a.MinimumBidAmount),
		StartTimestamp:    a.StartTimestamp,
		SoftEndTimestamp:  a.SoftEndTimestamp,
		FixedEndTimestamp: a.FixedEndTimestamp,
		ClosedAt:          sqlutil.FromSqlTime(a.ClosedAt),
		ResultContractID:  sqlutil.FromNullInt64(a.ResultContractID),
		CreatedAt:         a.CreatedAt,
	}
}

func dbAuctionBidToModel(b db.AuctionBid) *models.AuctionBid {
	return &models.AuctionBid{
		ID:        b.ID,
		AuctionID: b.AuctionID,
		TeamID:    b.TeamID,
		UserID:    b.UserID,
		Amount:    int(b.Amount),
		CreatedAt: b.CreatedAt,
	}
}
