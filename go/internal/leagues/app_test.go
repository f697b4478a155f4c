package leagues

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/ledger"
	"github.com/mcdev12/capspace/go/internal/memstore"
	"github.com/mcdev12/capspace/go/internal/models"
	"github.com/mcdev12/capspace/go/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) (*App, *memstore.Store, models.League) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))
	store := memstore.New(clock)
	league := store.AddLeague(models.League{Name: "Capspace", CurrentSeasonEndYear: 2026})
	store.AddTeam(models.FantasyTeam{LeagueID: league.ID, Name: "Sonics", Abbreviation: "SEA"})
	store.AddTeam(models.FantasyTeam{LeagueID: league.ID, Name: "Bullets", Abbreviation: "WSB"})

	runner := memstore.Bind(store, func(tx *memstore.Tx) SettingsRepository { return tx })
	return NewApp(runner, rules.Default(), clock), store, league
}

func TestApp_RulesForAppliesOverrides(t *testing.T) {
	ctx := context.Background()
	app, _, league := newApp(t)

	_, err := app.UpdateSettings(ctx, league.ID, json.RawMessage(`{"caps":{"keeper":90},"rookie_scale":[4,2]}`))
	require.NoError(t, err)

	r, err := app.RulesFor(ctx, league.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, r.Caps.Keeper)
	assert.Equal(t, 210, r.Caps.RegularSeason)
	assert.Equal(t, 2, r.DraftRounds())
}

func TestApp_UpdateSettingsRecordsTransaction(t *testing.T) {
	ctx := context.Background()
	app, store, league := newApp(t)
	changed := json.RawMessage(`{"caps":{"post_season":240}}`)

	_, err := app.UpdateSettings(ctx, league.ID, changed)
	require.NoError(t, err)

	require.NoError(t, store.InTx(ctx, func(tx *memstore.Tx) error {
		txns, err := tx.ListTransactions(ctx, league.ID, 2026)
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, models.TransactionTypeSettingsChange, txns[0].Type)

		updates, err := tx.ListTeamUpdates(ctx, txns[0].ID)
		require.NoError(t, err)
		require.Len(t, updates, 2)
		data, err := ledger.Decode(updates[0])
		require.NoError(t, err)
		assert.Equal(t, "settings", data.Kind())
		return nil
	}))
}

func TestApp_UpdateSettingsRejectsInvalidRules(t *testing.T) {
	ctx := context.Background()
	app, store, league := newApp(t)

	_, err := app.UpdateSettings(ctx, league.ID, json.RawMessage(`{"caps":{"keeper":-5}}`))
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidInput))

	require.NoError(t, store.InTx(ctx, func(tx *memstore.Tx) error {
		l, err := tx.GetLeague(ctx, league.ID)
		require.NoError(t, err)
		assert.Empty(t, l.Settings)
		return nil
	}))
}

func TestResolve_UnknownLeague(t *testing.T) {
	ctx := context.Background()
	app, _, _ := newApp(t)

	_, err := app.RulesFor(ctx, uuid.New())
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}
