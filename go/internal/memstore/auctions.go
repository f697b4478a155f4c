package memstore

import (
	"cmp"
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/models"
)

func (tx *Tx) InsertAuction(_ context.Context, a models.Auction) (*models.Auction, error) {
	for _, o := range tx.st.auctions {
		if o.ContractID == a.ContractID && o.ClosedAt == nil {
			return nil, apperr.Validation(apperr.CodeInvalidState, "contract %d already has open auction %d", a.ContractID, o.ID)
		}
	}
	a.ID = tx.st.id()
	a.CreatedAt = tx.clock.Now()
	tx.st.auctions[a.ID] = a
	return &a, nil
}

func (tx *Tx) GetAuction(_ context.Context, id int64) (*models.Auction, error) {
	a, ok := tx.st.auctions[id]
	if !ok {
		return nil, apperr.NotFound("auction", id)
	}
	return &a, nil
}

func (tx *Tx) GetAuctionForUpdate(ctx context.Context, id int64) (*models.Auction, error) {
	return tx.GetAuction(ctx, id)
}

func (tx *Tx) GetOpenAuctionByContract(_ context.Context, contractID int64) (*models.Auction, error) {
	for _, a := range tx.st.auctions {
		if a.ContractID == contractID && a.ClosedAt == nil {
			return &a, nil
		}
	}
	return nil, nil
}

func (tx *Tx) ListDueAuctions(_ context.Context, leagueID uuid.UUID, seasonEndYear int, dueBy time.Time) ([]models.Auction, error) {
	return sortedValues(tx.st.auctions,
		func(a models.Auction) bool {
			return a.LeagueID == leagueID && a.SeasonEndYear == seasonEndYear && a.ClosedAt == nil &&
				!a.FixedEndTimestamp.After(dueBy)
		},
		func(a, b models.Auction) int {
			return cmp.Or(a.FixedEndTimestamp.Compare(b.FixedEndTimestamp), cmp.Compare(a.ID, b.ID))
		},
	), nil
}

func (tx *Tx) CloseAuction(_ context.Context, id int64, closedAt time.Time, resultContractID *int64) (*models.Auction, error) {
	a, ok := tx.st.auctions[id]
	if !ok {
		return nil, apperr.NotFound("auction", id)
	}
	if a.ClosedAt != nil {
		return nil, apperr.Conflict(apperr.CodeInvalidState, nil, "auction %d is already closed", id)
	}
	a.ClosedAt = &closedAt
	a.ResultContractID = resultContractID
	tx.st.auctions[id] = a
	return &a, nil
}

func (tx *Tx) InsertAuctionBid(_ context.Context, b models.AuctionBid) (*models.AuctionBid, error) {
	if _, ok := tx.st.auctions[b.AuctionID]; !ok {
		return nil, apperr.NotFound("auction", b.AuctionID)
	}
	b.ID = tx.st.id()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = tx.clock.Now()
	}
	tx.st.bids[b.ID] = b
	return &b, nil
}

// GetHighestBid returns the latest bid, which is the highest since bids only ever increase.
func (tx *Tx) GetHighestBid(_ context.Context, auctionID int64) (*models.AuctionBid, error) {
	var best *models.AuctionBid
	for _, b := range tx.st.bids {
		if b.AuctionID != auctionID {
			continue
		}
		if best == nil || b.Amount > best.Amount || (b.Amount == best.Amount && b.ID < best.ID) {
			b := b
			best = &b
		}
	}
	return best, nil
}

func (tx *Tx) ListAuctionBids(_ context.Context, auctionID int64) ([]models.AuctionBid, error) {
	return sortedValues(tx.st.bids,
		func(b models.AuctionBid) bool { return b.AuctionID == auctionID },
		func(a, b models.AuctionBid) int { return cmp.Compare(a.ID, b.ID) },
	), nil
}
