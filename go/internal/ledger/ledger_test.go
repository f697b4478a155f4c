package ledger

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/capspace/go/internal/memstore"
	"github.com/mcdev12/capspace/go/internal/models"
	"github.com/mcdev12/capspace/go/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *memstore.Store
	league   models.League
	home     models.FantasyTeam
	away     models.FantasyTeam
	player   models.Player
	deadline models.Deadline
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC)
	store := memstore.New(clockwork.NewFakeClockAt(now))

	f := &fixture{store: store, now: now}
	f.league = store.AddLeague(models.League{Name: "Capspace", CurrentSeasonEndYear: 2026})
	f.home = store.AddTeam(models.FantasyTeam{LeagueID: f.league.ID, Name: "Sonics", Abbreviation: "SEA"})
	f.away = store.AddTeam(models.FantasyTeam{LeagueID: f.league.ID, Name: "Bullets", Abbreviation: "WSB"})
	f.player = store.AddPlayer(models.Player{FullName: "Gary Payton", Position: "PG"})

	require.NoError(t, store.InTx(context.Background(), func(tx *memstore.Tx) error {
		d, err := tx.InsertDeadline(context.Background(), models.Deadline{
			LeagueID:      f.league.ID,
			SeasonEndYear: 2026,
			Type:          models.DeadlineTypeRegularSeason,
			Datetime:      now.Add(48 * time.Hour),
		})
		if err != nil {
			return err
		}
		f.deadline = *d
		return nil
	}))
	return f
}

func (f *fixture) contract(teamID uuid.UUID, salary int) models.Contract {
	return models.Contract{
		LeagueID:      f.league.ID,
		SeasonEndYear: 2026,
		PlayerID:      &f.player.ID,
		TeamID:        &teamID,
		ContractYear:  1,
		ContractType:  models.ContractTypeVeteran,
		Salary:        salary,
		Status:        models.ContractStatusActive,
	}
}

func TestBuilder_RecordsBeforeAndAfterFigures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var (
		txn     *models.Transaction
		updates []models.TeamUpdate
	)
	err := f.store.InTx(ctx, func(tx *memstore.Tx) error {
		current, err := tx.InsertContractRoot(ctx, f.contract(f.home.ID, 25))
		if err != nil {
			return err
		}

		b, err := Begin(ctx, tx, rules.Default(), models.Transaction{
			LeagueID:      f.league.ID,
			SeasonEndYear: 2026,
			Type:          models.TransactionTypeTradeCompletion,
		}, f.now)
		if err != nil {
			return err
		}
		require.NoError(t, b.Track(ctx, f.home.ID))
		require.NoError(t, b.Track(ctx, f.away.ID))

		next := *current
		next.TeamID = &f.away.ID
		next.PreviousContractID = &current.ID
		moved, err := tx.ReplaceContract(ctx, current.ID, next)
		if err != nil {
			return err
		}
		b.Contract(f.home.ID, UpdateTradedAway, *moved, &f.away.ID)
		b.Contract(f.away.ID, UpdateAddViaTrade, *moved, &f.home.ID)

		txn, updates, err = b.Record(ctx)
		return err
	})
	require.NoError(t, err)

	require.NotNil(t, txn.DeadlineID)
	assert.Equal(t, f.deadline.ID, *txn.DeadlineID)
	require.Len(t, updates, 2)

	home, err := Decode(updates[0])
	require.NoError(t, err)
	assert.Equal(t, "SEA", home.Team.Abbreviation)
	assert.Equal(t, 25, home.SalaryBefore)
	assert.Equal(t, 0, home.SalaryAfter)
	require.NotNil(t, home.CapBefore)
	assert.Equal(t, 210, *home.CapBefore)
	require.Len(t, home.Assets, 1)
	require.Len(t, home.Assets[0].Contracts, 1)
	entry := home.Assets[0].Contracts[0]
	assert.Equal(t, UpdateTradedAway, entry.UpdateType)
	assert.Equal(t, "Gary Payton", entry.PlayerName)
	require.NotNil(t, entry.Counterparty)
	assert.Equal(t, "Bullets", entry.Counterparty.Name)

	away, err := Decode(updates[1])
	require.NoError(t, err)
	assert.Equal(t, 0, away.SalaryBefore)
	assert.Equal(t, 25, away.SalaryAfter)
}

func TestBuilder_UntrackedTeamFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	err := f.store.InTx(ctx, func(tx *memstore.Tx) error {
		b := NewBuilder(tx, rules.Default(), models.Transaction{
			LeagueID:      f.league.ID,
			SeasonEndYear: 2026,
			Type:          models.TransactionTypeDrop,
		}, nil)
		b.Contract(f.home.ID, UpdateDrop, f.contract(f.home.ID, 3), nil)
		_, _, err := b.Record(ctx)
		return err
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "never tracked")
}

func TestBuilder_NoDeadlineLeavesCapUnset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var updates []models.TeamUpdate
	err := f.store.InTx(ctx, func(tx *memstore.Tx) error {
		b, err := Begin(ctx, tx, rules.Default(), models.Transaction{
			LeagueID:      f.league.ID,
			SeasonEndYear: 2026,
			Type:          models.TransactionTypeIRMove,
		}, f.now.Add(72*time.Hour))
		if err != nil {
			return err
		}
		assert.Nil(t, b.Deadline())
		if err := b.Track(ctx, f.home.ID); err != nil {
			return err
		}
		_, updates, err = b.Record(ctx)
		return err
	})
	require.NoError(t, err)
	require.Len(t, updates, 1)

	data, err := Decode(updates[0])
	require.NoError(t, err)
	assert.Nil(t, data.CapBefore)
	assert.Nil(t, data.CapAfter)
}

func TestBuilder_MeasureSeasonReportsSuccessorSeason(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var updates []models.TeamUpdate
	err := f.store.InTx(ctx, func(tx *memstore.Tx) error {
		if _, err := tx.InsertContractRoot(ctx, f.contract(f.home.ID, 40)); err != nil {
			return err
		}
		b := NewBuilder(tx, rules.Default(), models.Transaction{
			LeagueID:      f.league.ID,
			SeasonEndYear: 2026,
			Type:          models.TransactionTypeContractAdvance,
		}, &f.deadline)
		b.MeasureSeason(2027)
		if err := b.Track(ctx, f.home.ID); err != nil {
			return err
		}

		next := f.contract(f.home.ID, 44)
		next.SeasonEndYear = 2027
		saved, err := tx.InsertContractRoot(ctx, next)
		if err != nil {
			return err
		}
		b.Contract(f.home.ID, UpdateContractAdvanced, *saved, nil)
		_, updates, err = b.Record(ctx)
		return err
	})
	require.NoError(t, err)
	require.Len(t, updates, 1)

	data, err := Decode(updates[0])
	require.NoError(t, err)
	assert.Equal(t, 0, data.SalaryBefore)
	assert.Equal(t, 44, data.SalaryAfter)
	assert.Nil(t, data.CapBefore)
	assert.Nil(t, data.CapAfter)
}

func TestRecordSettings_OneUpdatePerTeam(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	changed := json.RawMessage(`{"caps":{"post_season":240}}`)

	var updates []models.TeamUpdate
	err := f.store.InTx(ctx, func(tx *memstore.Tx) error {
		var err error
		_, updates, err = RecordSettings(ctx, tx, models.Transaction{
			LeagueID:      f.league.ID,
			SeasonEndYear: 2026,
			Type:          models.TransactionTypeSettingsChange,
		}, changed)
		return err
	})
	require.NoError(t, err)
	require.Len(t, updates, 2)

	for _, u := range updates {
		data, err := Decode(u)
		require.NoError(t, err)
		require.NotNil(t, data.Settings)
		assert.JSONEq(t, string(changed), string(data.Settings.Changed))
	}
}
