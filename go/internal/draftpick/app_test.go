package draftpick

import (
	"context"
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

type pickFixture struct {
	app    *App
	store  *memstore.Store
	league models.League
	home   models.FantasyTeam
	away   models.FantasyTeam
	owner  models.TeamUser
	rival  models.TeamUser
	player models.Player
}

func newPickFixture(t *testing.T) *pickFixture {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 20, 19, 0, 0, 0, time.UTC))
	store := memstore.New(clock)

	f := &pickFixture{store: store}
	f.league = store.AddLeague(models.League{Name: "Capspace", CurrentSeasonEndYear: 2026})
	homeUser, awayUser := uuid.New(), uuid.New()
	f.home = store.AddTeam(models.FantasyTeam{LeagueID: f.league.ID, Name: "Sonics", Abbreviation: "SEA"}, homeUser)
	f.away = store.AddTeam(models.FantasyTeam{LeagueID: f.league.ID, Name: "Bullets", Abbreviation: "WSB"}, awayUser)
	f.owner = models.TeamUser{UserID: homeUser, TeamID: f.home.ID}
	f.rival = models.TeamUser{UserID: awayUser, TeamID: f.away.ID}
	f.player = store.AddPlayer(models.Player{FullName: "Shawn Kemp", Position: "PF"})

	runner := memstore.Bind(store, func(tx *memstore.Tx) DraftPickRepository { return tx })
	f.app = NewApp(runner, rules.Default(), DefaultOptionGraph(), clock)
	return f
}

// firstRoundPick returns the home team's first round pick of 2026.
func (f *pickFixture) firstRoundPick(t *testing.T, picks []models.DraftPick) models.DraftPick {
	t.Helper()
	for _, p := range picks {
		if p.Round == 1 && p.OriginalOwnerTeamID == f.home.ID {
			return p
		}
	}
	t.Fatal("home team has no first round pick")
	return models.DraftPick{}
}

func (f *pickFixture) addOption(t *testing.T, pickID int64, clause string, status models.DraftPickOptionStatus) models.DraftPickOption {
	t.Helper()
	var out *models.DraftPickOption
	require.NoError(t, f.store.InTx(context.Background(), func(tx *memstore.Tx) error {
		var err error
		out, err = tx.InsertDraftPickOption(context.Background(), models.DraftPickOption{
			DraftPickID: pickID,
			Clause:      clause,
			Status:      status,
		})
		return err
	}))
	return *out
}

func TestCreateSeasonPicks(t *testing.T) {
	f := newPickFixture(t)
	ctx := context.Background()

	picks, err := f.app.CreateSeasonPicks(ctx, f.league.ID, 2026)
	require.NoError(t, err)
	// Three rounds on the default rookie scale, two teams.
	require.Len(t, picks, 6)
	for _, p := range picks {
		assert.Equal(t, p.OriginalOwnerTeamID, p.CurrentOwnerTeamID)
		assert.Nil(t, p.UsedAt)
	}

	listed, err := f.app.ListPicks(ctx, f.league.ID, 2026)
	require.NoError(t, err)
	assert.Len(t, listed, 6)

	_, err = f.app.CreateSeasonPicks(ctx, f.league.ID, 2026)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidState))
}

func TestSignRookie(t *testing.T) {
	f := newPickFixture(t)
	ctx := context.Background()

	picks, err := f.app.CreateSeasonPicks(ctx, f.league.ID, 2026)
	require.NoError(t, err)
	pick := f.firstRoundPick(t, picks)
	active := f.addOption(t, pick.ID, "top-3 protected", models.DraftPickOptionStatusActive)
	proposed := f.addOption(t, pick.ID, "swap rights", models.DraftPickOptionStatusProposed)

	signed, err := f.app.SignRookie(ctx, f.owner, SignRookieRequest{DraftPickID: pick.ID, PlayerID: &f.player.ID})
	require.NoError(t, err)
	assert.Equal(t, models.ContractTypeRookieDevelopment, signed.ContractType)
	assert.Equal(t, 1, signed.ContractYear)
	assert.Equal(t, 3, signed.Salary)
	assert.Equal(t, signed.ID, signed.RootID())
	assert.True(t, signed.OwnedBy(f.home.ID))

	require.NoError(t, f.store.InTx(ctx, func(tx *memstore.Tx) error {
		used, err := tx.GetDraftPick(ctx, pick.ID)
		require.NoError(t, err)
		assert.NotNil(t, used.UsedAt)

		o, err := tx.GetDraftPickOption(ctx, active.ID)
		require.NoError(t, err)
		assert.Equal(t, models.DraftPickOptionStatusUsed, o.Status)
		o, err = tx.GetDraftPickOption(ctx, proposed.ID)
		require.NoError(t, err)
		assert.Equal(t, models.DraftPickOptionStatusProposed, o.Status)

		txns, err := tx.ListTransactions(ctx, f.league.ID, 2026)
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, models.TransactionTypeRookieDraft, txns[0].Type)
		assert.Equal(t, signed.ID, *txns[0].ContractID)

		updates, err := tx.ListTeamUpdates(ctx, txns[0].ID)
		require.NoError(t, err)
		require.Len(t, updates, 1)
		data, err := ledger.Decode(updates[0])
		require.NoError(t, err)
		require.Len(t, data.Assets, 1)
		require.Len(t, data.Assets[0].Contracts, 1)
		assert.Equal(t, "Shawn Kemp", data.Assets[0].Contracts[0].PlayerName)
		require.Len(t, data.Assets[0].DraftPicks, 1)
		assert.Equal(t, []string{"top-3 protected"}, data.Assets[0].DraftPicks[0].Options)
		// Rookie development salary does not count against the cap.
		assert.Equal(t, 0, data.SalaryBefore)
		assert.Equal(t, 0, data.SalaryAfter)
		return nil
	}))

	_, err = f.app.SignRookie(ctx, f.owner, SignRookieRequest{DraftPickID: pick.ID, PlayerID: &f.player.ID})
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidState))
}

func TestSignRookieInternational(t *testing.T) {
	f := newPickFixture(t)
	ctx := context.Background()

	picks, err := f.app.CreateSeasonPicks(ctx, f.league.ID, 2026)
	require.NoError(t, err)
	var third models.DraftPick
	for _, p := range picks {
		if p.Round == 3 && p.OriginalOwnerTeamID == f.home.ID {
			third = p
		}
	}

	signed, err := f.app.SignRookie(ctx, f.owner, SignRookieRequest{DraftPickID: third.ID, PlayerID: &f.player.ID, International: true})
	require.NoError(t, err)
	assert.Equal(t, models.ContractTypeRookieDevelopmentInternational, signed.ContractType)
	assert.Equal(t, 1, signed.Salary)
}

func TestSignRookieRejections(t *testing.T) {
	f := newPickFixture(t)
	ctx := context.Background()

	picks, err := f.app.CreateSeasonPicks(ctx, f.league.ID, 2026)
	require.NoError(t, err)
	pick := f.firstRoundPick(t, picks)

	_, err = f.app.SignRookie(ctx, f.rival, SignRookieRequest{DraftPickID: pick.ID, PlayerID: &f.player.ID})
	assert.True(t, apperr.HasCode(err, apperr.CodeAssetNotOwned))

	stranger := models.TeamUser{UserID: uuid.New(), TeamID: f.home.ID}
	_, err = f.app.SignRookie(ctx, stranger, SignRookieRequest{DraftPickID: pick.ID, PlayerID: &f.player.ID})
	assert.True(t, apperr.HasCode(err, apperr.CodeNotAuthorized))

	_, err = f.app.SignRookie(ctx, f.owner, SignRookieRequest{DraftPickID: pick.ID})
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidInput))

	missing := uuid.New()
	_, err = f.app.SignRookie(ctx, f.owner, SignRookieRequest{DraftPickID: pick.ID, PlayerID: &missing})
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	// Nothing above committed: the pick is still usable.
	_, err = f.app.SignRookie(ctx, f.owner, SignRookieRequest{DraftPickID: pick.ID, PlayerID: &f.player.ID})
	require.NoError(t, err)
}

func TestAmendOption(t *testing.T) {
	f := newPickFixture(t)
	ctx := context.Background()

	picks, err := f.app.CreateSeasonPicks(ctx, f.league.ID, 2026)
	require.NoError(t, err)
	pick := f.firstRoundPick(t, picks)
	active := f.addOption(t, pick.ID, "top-3 protected", models.DraftPickOptionStatusActive)
	proposed := f.addOption(t, pick.ID, "swap rights", models.DraftPickOptionStatusProposed)

	_, err = f.app.AmendOption(ctx, f.rival, AmendOptionRequest{OptionID: active.ID, Clause: "top-5 protected"})
	assert.True(t, apperr.HasCode(err, apperr.CodeAssetNotOwned))

	_, err = f.app.AmendOption(ctx, f.owner, AmendOptionRequest{OptionID: proposed.ID, Clause: "no swap"})
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidTransition))

	_, err = f.app.AmendOption(ctx, f.owner, AmendOptionRequest{OptionID: active.ID, Clause: "  "})
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidInput))

	amended, err := f.app.AmendOption(ctx, f.owner, AmendOptionRequest{OptionID: active.ID, Clause: "top-5 protected"})
	require.NoError(t, err)
	assert.Equal(t, models.DraftPickOptionStatusActive, amended.Status)
	assert.Equal(t, "top-5 protected", amended.Clause)

	options, err := f.app.ListOptions(ctx, pick.ID)
	require.NoError(t, err)
	require.Len(t, options, 3)
	assert.Equal(t, models.DraftPickOptionStatusCancelledViaDraftPickOptionAmendment, options[0].Status)
	assert.Equal(t, models.DraftPickOptionStatusProposed, options[1].Status)
	assert.Equal(t, amended.ID, options[2].ID)

	// A cancelled option is terminal.
	_, err = f.app.AmendOption(ctx, f.owner, AmendOptionRequest{OptionID: active.ID, Clause: "again"})
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidTransition))
}

func TestTransfer(t *testing.T) {
	f := newPickFixture(t)
	ctx := context.Background()

	picks, err := f.app.CreateSeasonPicks(ctx, f.league.ID, 2026)
	require.NoError(t, err)
	pick := f.firstRoundPick(t, picks)

	require.NoError(t, f.store.InTx(ctx, func(tx *memstore.Tx) error {
		moved, err := Transfer(ctx, tx, pick.ID, f.home.ID, f.away.ID)
		require.NoError(t, err)
		assert.Equal(t, f.away.ID, moved.CurrentOwnerTeamID)
		assert.Equal(t, f.home.ID, moved.OriginalOwnerTeamID)

		_, err = Transfer(ctx, tx, pick.ID, f.home.ID, f.away.ID)
		assert.True(t, apperr.HasCode(err, apperr.CodeStaleTradeReference))
		assert.False(t, apperr.IsValidation(err))

		// The owner update itself refuses a stale sender.
		_, err = tx.UpdateDraftPickOwner(ctx, pick.ID, f.home.ID, f.home.ID)
		assert.True(t, apperr.HasCode(err, apperr.CodeStaleTradeReference))
		assert.True(t, apperr.IsRetryable(err))

		p, err := tx.GetDraftPick(ctx, pick.ID)
		require.NoError(t, err)
		assert.Equal(t, f.away.ID, p.CurrentOwnerTeamID)
		return nil
	}))
}
