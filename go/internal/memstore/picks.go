package memstore

import (
	"cmp"
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/models"
)

func (tx *Tx) InsertDraftPick(_ context.Context, p models.DraftPick) (*models.DraftPick, error) {
	for _, o := range tx.st.picks {
		if o.LeagueID == p.LeagueID && o.SeasonEndYear == p.SeasonEndYear && o.Round == p.Round &&
			o.OriginalOwnerTeamID == p.OriginalOwnerTeamID {
			return nil, apperr.Validation(apperr.CodeInvalidState, "draft pick for round %d of season %d already exists", p.Round, p.SeasonEndYear)
		}
	}
	p.ID = tx.st.id()
	p.CreatedAt = tx.clock.Now()
	tx.st.picks[p.ID] = p
	return &p, nil
}

func (tx *Tx) GetDraftPick(_ context.Context, id int64) (*models.DraftPick, error) {
	p, ok := tx.st.picks[id]
	if !ok {
		return nil, apperr.NotFound("draft pick", id)
	}
	return &p, nil
}

func (tx *Tx) ListDraftPicksBySeason(_ context.Context, leagueID uuid.UUID, seasonEndYear int) ([]models.DraftPick, error) {
	return sortedValues(tx.st.picks,
		func(p models.DraftPick) bool { return p.LeagueID == leagueID && p.SeasonEndYear == seasonEndYear },
		func(a, b models.DraftPick) int {
			return cmp.Or(cmp.Compare(a.Round, b.Round), cmp.Compare(a.ID, b.ID))
		},
	), nil
}

func (tx *Tx) UpdateDraftPickOwner(_ context.Context, id int64, from, to uuid.UUID) (*models.DraftPick, error) {
	p, ok := tx.st.picks[id]
	if !ok || p.CurrentOwnerTeamID != from || p.UsedAt != nil {
		return nil, apperr.Conflict(apperr.CodeStaleTradeReference, nil, "draft pick %d is no longer an unused pick of team %s", id, from)
	}
	p.CurrentOwnerTeamID = to
	tx.st.picks[id] = p
	return &p, nil
}

func (tx *Tx) MarkDraftPickUsed(_ context.Context, id int64, usedAt time.Time) (*models.DraftPick, error) {
	p, ok := tx.st.picks[id]
	if !ok {
		return nil, apperr.NotFound("draft pick", id)
	}
	if p.UsedAt != nil {
		return nil, apperr.Validation(apperr.CodeInvalidState, "draft pick %d was already used", id)
	}
	p.UsedAt = &usedAt
	tx.st.picks[id] = p
	return &p, nil
}

func (tx *Tx) InsertDraftPickOption(_ context.Context, o models.DraftPickOption) (*models.DraftPickOption, error) {
	if _, ok := tx.st.picks[o.DraftPickID]; !ok {
		return nil, apperr.NotFound("draft pick", o.DraftPickID)
	}
	o.ID = tx.st.id()
	o.CreatedAt, o.UpdatedAt = tx.clock.Now(), tx.clock.Now()
	tx.st.options[o.ID] = o
	return &o, nil
}

func (tx *Tx) GetDraftPickOption(_ context.Context, id int64) (*models.DraftPickOption, error) {
	o, ok := tx.st.options[id]
	if !ok {
		return nil, apperr.NotFound("draft pick option", id)
	}
	return &o, nil
}

func (tx *Tx) UpdateDraftPickOptionStatus(_ context.Context, id int64, status models.DraftPickOptionStatus) (*models.DraftPickOption, error) {
	o, ok := tx.st.options[id]
	if !ok {
		return nil, apperr.NotFound("draft pick option", id)
	}
	o.Status = status
	o.UpdatedAt = tx.clock.Now()
	tx.st.options[id] = o
	return &o, nil
}

func (tx *Tx) ListDraftPickOptionsByPick(_ context.Context, draftPickID int64) ([]models.DraftPickOption, error) {
	return sortedValues(tx.st.options,
		func(o models.DraftPickOption) bool { return o.DraftPickID == draftPickID },
		func(a, b models.DraftPickOption) int { return cmp.Compare(a.ID, b.ID) },
	), nil
}
