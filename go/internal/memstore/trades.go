package memstore

import (
	"cmp"
	"context"
	"maps"
	"slices"

	"github.com/google/uuid"
	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/models"
)

func (tx *Tx) InsertTrade(_ context.Context, t models.Trade) (*models.Trade, error) {
	t.ID = tx.st.id()
	if t.OriginalTradeID == nil {
		root := t.ID
		t.OriginalTradeID = &root
	}
	t.TeamIDs = slices.Clone(t.TeamIDs)
	slices.SortFunc(t.TeamIDs, func(a, b uuid.UUID) int { return cmp.Compare(a.String(), b.String()) })
	t.TeamIDs = slices.Compact(t.TeamIDs)
	t.CreatedAt, t.UpdatedAt = tx.clock.Now(), tx.clock.Now()
	tx.st.trades[t.ID] = t
	out := t
	out.TeamIDs = slices.Clone(t.TeamIDs)
	return &out, nil
}

func (tx *Tx) GetTrade(_ context.Context, id int64) (*models.Trade, error) {
	t, ok := tx.st.trades[id]
	if !ok {
		return nil, apperr.NotFound("trade", id)
	}
	t.TeamIDs = slices.Clone(t.TeamIDs)
	return &t, nil
}

// GetTradeForUpdate is GetTrade; transactions are already serialized.
func (tx *Tx) GetTradeForUpdate(ctx context.Context, id int64) (*models.Trade, error) {
	return tx.GetTrade(ctx, id)
}

func (tx *Tx) GetLatestTradeInChain(ctx context.Context, originalTradeID int64) (*models.Trade, error) {
	var latest int64
	for _, t := range tx.st.trades {
		if t.OriginalTradeID != nil && *t.OriginalTradeID == originalTradeID && t.ID > latest {
			latest = t.ID
		}
	}
	if latest == 0 {
		return nil, apperr.NotFound("trade chain", originalTradeID)
	}
	return tx.GetTrade(ctx, latest)
}

func (tx *Tx) UpdateTradeStatus(ctx context.Context, id int64, status models.TradeStatus) (*models.Trade, error) {
	t, ok := tx.st.trades[id]
	if !ok {
		return nil, apperr.NotFound("trade", id)
	}
	t.Status = status
	t.UpdatedAt = tx.clock.Now()
	tx.st.trades[id] = t
	return tx.GetTrade(ctx, id)
}

func (tx *Tx) InsertTradeAction(_ context.Context, a models.TradeAction) (*models.TradeAction, error) {
	if _, ok := tx.st.trades[a.TradeID]; !ok {
		return nil, apperr.NotFound("trade", a.TradeID)
	}
	a.ID = tx.st.id()
	a.CreatedAt = tx.clock.Now()
	tx.st.tradeActions[a.ID] = a
	return &a, nil
}

func (tx *Tx) ListTradeActions(_ context.Context, tradeID int64) ([]models.TradeAction, error) {
	return sortedValues(tx.st.tradeActions,
		func(a models.TradeAction) bool { return a.TradeID == tradeID },
		func(a, b models.TradeAction) int { return cmp.Compare(a.ID, b.ID) },
	), nil
}

func (tx *Tx) InsertTradeAsset(_ context.Context, a models.TradeAsset) (*models.TradeAsset, error) {
	if _, ok := tx.st.trades[a.TradeID]; !ok {
		return nil, apperr.NotFound("trade", a.TradeID)
	}
	a.ID = tx.st.id()
	tx.st.tradeAssets[a.ID] = a
	return &a, nil
}

func (tx *Tx) ListTradeAssets(_ context.Context, tradeID int64) ([]models.TradeAsset, error) {
	return sortedValues(tx.st.tradeAssets,
		func(a models.TradeAsset) bool { return a.TradeID == tradeID },
		func(a, b models.TradeAsset) int { return cmp.Compare(a.ID, b.ID) },
	), nil
}

func (tx *Tx) ListOpenTradesReferencing(ctx context.Context, leagueID uuid.UUID, seasonEndYear int, contractRootIDs, draftPickIDs []int64, excludeOriginalID int64) ([]models.Trade, error) {
	matches := map[int64]bool{}
	for _, a := range tx.st.tradeAssets {
		t := tx.st.trades[a.TradeID]
		if t.LeagueID != leagueID || t.SeasonEndYear != seasonEndYear || t.RootID() == excludeOriginalID {
			continue
		}
		if t.Status != models.TradeStatusProposed && t.Status != models.TradeStatusCounteroffered {
			continue
		}
		switch {
		case a.ContractID != nil:
			if c, ok := tx.st.contracts[*a.ContractID]; ok && slices.Contains(contractRootIDs, c.RootID()) {
				matches[t.ID] = true
			}
		case a.DraftPickID != nil:
			if slices.Contains(draftPickIDs, *a.DraftPickID) {
				matches[t.ID] = true
			}
		case a.DraftPickOptionID != nil:
			if o, ok := tx.st.options[*a.DraftPickOptionID]; ok && slices.Contains(draftPickIDs, o.DraftPickID) {
				matches[t.ID] = true
			}
		}
	}

	ids := slices.Sorted(maps.Keys(matches))
	out := make([]models.Trade, 0, len(ids))
	for _, id := range ids {
		t, err := tx.GetTrade(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, nil
}
