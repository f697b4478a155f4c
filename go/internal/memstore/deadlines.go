package memstore

import (
	"cmp"
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/models"
)

func byDatetime(a, b models.Deadline) int {
	return cmp.Or(a.Datetime.Compare(b.Datetime), cmp.Compare(a.ID, b.ID))
}

func (tx *Tx) InsertDeadline(_ context.Context, d models.Deadline) (*models.Deadline, error) {
	for _, o := range tx.st.deadlines {
		if o.LeagueID == d.LeagueID && o.SeasonEndYear == d.SeasonEndYear && o.Type == d.Type {
			return nil, apperr.Validation(apperr.CodeInvalidState, "season %d already has a %s deadline", d.SeasonEndYear, d.Type)
		}
	}
	d.ID = tx.st.id()
	d.CreatedAt = tx.clock.Now()
	tx.st.deadlines[d.ID] = d
	return &d, nil
}

func (tx *Tx) GetDeadline(_ context.Context, id int64) (*models.Deadline, error) {
	d, ok := tx.st.deadlines[id]
	if !ok {
		return nil, apperr.NotFound("deadline", id)
	}
	return &d, nil
}

func (tx *Tx) GetDeadlineByType(_ context.Context, leagueID uuid.UUID, seasonEndYear int, t models.DeadlineType) (*models.Deadline, error) {
	for _, d := range tx.st.deadlines {
		if d.LeagueID == leagueID && d.SeasonEndYear == seasonEndYear && d.Type == t {
			return &d, nil
		}
	}
	return nil, apperr.NotFound("deadline", t)
}

func (tx *Tx) NextDeadlineOnOrAfter(_ context.Context, leagueID uuid.UUID, seasonEndYear int, at time.Time) (*models.Deadline, error) {
	upcoming := sortedValues(tx.st.deadlines,
		func(d models.Deadline) bool {
			return d.LeagueID == leagueID && d.SeasonEndYear == seasonEndYear && !d.Datetime.Before(at)
		},
		byDatetime,
	)
	if len(upcoming) == 0 {
		return nil, nil
	}
	return &upcoming[0], nil
}

func (tx *Tx) ListDeadlines(_ context.Context, leagueID uuid.UUID, seasonEndYear int) ([]models.Deadline, error) {
	return sortedValues(tx.st.deadlines,
		func(d models.Deadline) bool { return d.LeagueID == leagueID && d.SeasonEndYear == seasonEndYear },
		byDatetime,
	), nil
}

func (tx *Tx) GetDeadlineUnit(_ context.Context, deadlineID int64, unitKey string) (*models.DeadlineUnit, error) {
	u, ok := tx.st.units[deadlineUnitID{deadlineID: deadlineID, key: unitKey}]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (tx *Tx) UpsertDeadlineUnit(_ context.Context, u models.DeadlineUnit) (*models.DeadlineUnit, error) {
	if _, ok := tx.st.deadlines[u.DeadlineID]; !ok {
		return nil, apperr.NotFound("deadline", u.DeadlineID)
	}
	u.UpdatedAt = tx.clock.Now()
	tx.st.units[deadlineUnitID{deadlineID: u.DeadlineID, key: u.UnitKey}] = u
	return &u, nil
}

func (tx *Tx) ListDeadlineUnits(_ context.Context, deadlineID int64) ([]models.DeadlineUnit, error) {
	return sortedValues(tx.st.units,
		func(u models.DeadlineUnit) bool { return u.DeadlineID == deadlineID },
		func(a, b models.DeadlineUnit) int { return cmp.Compare(a.UnitKey, b.UnitKey) },
	), nil
}
