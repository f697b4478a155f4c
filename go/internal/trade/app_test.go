package trade

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/contract"
	"github.com/mcdev12/capspace/go/internal/draftpick"
	"github.com/mcdev12/capspace/go/internal/ledger"
	"github.com/mcdev12/capspace/go/internal/memstore"
	"github.com/mcdev12/capspace/go/internal/models"
	"github.com/mcdev12/capspace/go/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	transactions int
	invalidated  int
}

func (r *countingRecorder) RecordTransaction(string)                         { r.transactions++ }
func (r *countingRecorder) RecordBidRejected(string)                         {}
func (r *countingRecorder) RecordTradesInvalidated(n int)                    { r.invalidated += n }
func (r *countingRecorder) RecordDeadlineUnit(string, string, time.Duration) {}

type tradeFixture struct {
	app      *App
	store    *memstore.Store
	recorder *countingRecorder
	league   models.League
	home     models.FantasyTeam
	away     models.FantasyTeam
	third    models.FantasyTeam
	homeUser models.TeamUser
	awayUser models.TeamUser
	thirdUsr models.TeamUser
}

func newTradeFixture(t *testing.T) *tradeFixture {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 11, 3, 18, 0, 0, 0, time.UTC))
	store := memstore.New(clock)

	f := &tradeFixture{store: store, recorder: &countingRecorder{}}
	f.league = store.AddLeague(models.League{Name: "Capspace", CurrentSeasonEndYear: 2026})
	homeID, awayID, thirdID := uuid.New(), uuid.New(), uuid.New()
	f.home = store.AddTeam(models.FantasyTeam{LeagueID: f.league.ID, Name: "Sonics", Abbreviation: "SEA"}, homeID)
	f.away = store.AddTeam(models.FantasyTeam{LeagueID: f.league.ID, Name: "Bullets", Abbreviation: "WSB"}, awayID)
	f.third = store.AddTeam(models.FantasyTeam{LeagueID: f.league.ID, Name: "Celtics", Abbreviation: "BOS"}, thirdID)
	f.homeUser = models.TeamUser{UserID: homeID, TeamID: f.home.ID}
	f.awayUser = models.TeamUser{UserID: awayID, TeamID: f.away.ID}
	f.thirdUsr = models.TeamUser{UserID: thirdID, TeamID: f.third.ID}

	runner := memstore.Bind(store, func(tx *memstore.Tx) TradeRepository { return tx })
	f.app = NewApp(runner, rules.Default(), contract.DefaultTransitions(), draftpick.DefaultOptionGraph(), clock, f.recorder)
	return f
}

func (f *tradeFixture) sign(t *testing.T, name string, team uuid.UUID, salary int) models.Contract {
	t.Helper()
	player := f.store.AddPlayer(models.Player{FullName: name, Position: "G"})
	var out *models.Contract
	require.NoError(t, f.store.InTx(context.Background(), func(tx *memstore.Tx) error {
		var err error
		out, err = contract.InsertRoot(context.Background(), tx, contract.NewRoot(contract.Signing{
			LeagueID:      f.league.ID,
			SeasonEndYear: 2026,
			PlayerID:      &player.ID,
			TeamID:        &team,
			ContractType:  models.ContractTypeVeteran,
			ContractYear:  1,
			Salary:        salary,
		}))
		return err
	}))
	return *out
}

func (f *tradeFixture) pick(t *testing.T, team uuid.UUID, round int) models.DraftPick {
	t.Helper()
	var out *models.DraftPick
	require.NoError(t, f.store.InTx(context.Background(), func(tx *memstore.Tx) error {
		var err error
		out, err = tx.InsertDraftPick(context.Background(), models.DraftPick{
			LeagueID:            f.league.ID,
			SeasonEndYear:       2026,
			Round:               round,
			OriginalOwnerTeamID: team,
			CurrentOwnerTeamID:  team,
		})
		return err
	}))
	return *out
}

func (f *tradeFixture) read(t *testing.T, fn func(tx *memstore.Tx)) {
	t.Helper()
	require.NoError(t, f.store.InTx(context.Background(), func(tx *memstore.Tx) error {
		fn(tx)
		return nil
	}))
}

func (f *tradeFixture) propose(t *testing.T, actor models.TeamUser, to []uuid.UUID, assets ...AssetInput) *models.Trade {
	t.Helper()
	tr, err := f.app.Propose(context.Background(), actor, ProposeRequest{
		LeagueID:      f.league.ID,
		SeasonEndYear: 2026,
		ToTeamIDs:     to,
		Assets:        assets,
	})
	require.NoError(t, err)
	return tr
}

func contractAsset(c models.Contract, from, to uuid.UUID) AssetInput {
	return AssetInput{Type: models.TradeAssetContract, ContractID: &c.ID, FromTeamID: from, ToTeamID: to}
}

func pickAsset(p models.DraftPick, from, to uuid.UUID) AssetInput {
	return AssetInput{Type: models.TradeAssetDraftPick, DraftPickID: &p.ID, FromTeamID: from, ToTeamID: to}
}

func optionAsset(p models.DraftPick, clause string, from, to uuid.UUID) AssetInput {
	return AssetInput{Type: models.TradeAssetDraftPickOption, DraftPickID: &p.ID, Clause: clause, FromTeamID: from, ToTeamID: to}
}

func optionID(t *testing.T, d *Details) int64 {
	t.Helper()
	for _, a := range d.Assets {
		if a.AssetType == models.TradeAssetDraftPickOption {
			return *a.DraftPickOptionID
		}
	}
	t.Fatal("trade has no option asset")
	return 0
}

func TestAcceptCompletesTradeAndInvalidatesCompetingOffers(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	kemp := f.sign(t, "Shawn Kemp", f.home.ID, 30)
	first := f.pick(t, f.home.ID, 1)
	second := f.pick(t, f.home.ID, 2)

	a := f.propose(t, f.homeUser, []uuid.UUID{f.away.ID},
		contractAsset(kemp, f.home.ID, f.away.ID),
		pickAsset(first, f.home.ID, f.away.ID),
		optionAsset(second, "swap rights", f.home.ID, f.away.ID),
	)
	b := f.propose(t, f.homeUser, []uuid.UUID{f.third.ID},
		contractAsset(kemp, f.home.ID, f.third.ID),
		optionAsset(second, "top 3 protected", f.home.ID, f.third.ID),
	)
	bDetails, err := f.app.Get(ctx, b.ID)
	require.NoError(t, err)

	done, err := f.app.Accept(ctx, f.awayUser, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TradeStatusCompleted, done.Status)
	assert.Equal(t, 1, f.recorder.transactions)
	assert.Equal(t, 1, f.recorder.invalidated)

	aDetails, err := f.app.Get(ctx, a.ID)
	require.NoError(t, err)
	f.read(t, func(tx *memstore.Tx) {
		head, err := tx.GetLatestInChain(ctx, kemp.ID)
		require.NoError(t, err)
		assert.True(t, head.OwnedBy(f.away.ID))
		assert.Equal(t, 30, head.Salary)
		assert.Equal(t, models.ContractStatusActive, head.Status)
		assert.Equal(t, kemp.ID, *head.PreviousContractID)

		p, err := tx.GetDraftPick(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, f.away.ID, p.CurrentOwnerTeamID)
		assert.Equal(t, f.home.ID, p.OriginalOwnerTeamID)

		o, err := tx.GetDraftPickOption(ctx, optionID(t, aDetails))
		require.NoError(t, err)
		assert.Equal(t, models.DraftPickOptionStatusActive, o.Status)

		other, err := tx.GetTrade(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, models.TradeStatusInvalidatedByExternalTrade, other.Status)

		o, err = tx.GetDraftPickOption(ctx, optionID(t, bDetails))
		require.NoError(t, err)
		assert.Equal(t, models.DraftPickOptionStatusInvalidatedByExternalTrade, o.Status)

		txns, err := tx.ListTransactions(ctx, f.league.ID, 2026)
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, models.TransactionTypeTradeCompletion, txns[0].Type)
		assert.Equal(t, a.ID, *txns[0].TradeID)

		updates, err := tx.ListTeamUpdates(ctx, txns[0].ID)
		require.NoError(t, err)
		require.Len(t, updates, 2)
		for _, u := range updates {
			d, err := ledger.Decode(u)
			require.NoError(t, err)
			contracts := d.Assets[0].Contracts
			require.Len(t, contracts, 1)
			require.NotNil(t, contracts[0].Counterparty)
			switch d.Team.ID {
			case f.home.ID:
				assert.Equal(t, ledger.UpdateTradedAway, contracts[0].UpdateType)
				assert.Equal(t, 30, d.SalaryBefore)
				assert.Equal(t, 0, d.SalaryAfter)
				assert.Equal(t, f.away.ID, contracts[0].Counterparty.ID)
			case f.away.ID:
				assert.Equal(t, ledger.UpdateAddViaTrade, contracts[0].UpdateType)
				assert.Equal(t, 0, d.SalaryBefore)
				assert.Equal(t, 30, d.SalaryAfter)
				assert.Equal(t, f.home.ID, contracts[0].Counterparty.ID)
				assert.Len(t, d.Assets[0].DraftPicks, 2)
			default:
				t.Fatalf("unexpected team update for %s", d.Team.ID)
			}
		}
	})

	_, err = f.app.Accept(ctx, f.thirdUsr, b.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidTransition))
}

func TestAcceptIsAllOrNothingWhenAnAssetMoved(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	kemp := f.sign(t, "Shawn Kemp", f.home.ID, 30)
	first := f.pick(t, f.home.ID, 1)

	a := f.propose(t, f.homeUser, []uuid.UUID{f.away.ID},
		pickAsset(first, f.home.ID, f.away.ID),
		contractAsset(kemp, f.home.ID, f.away.ID),
	)

	// The contract changes hands outside any trade.
	require.NoError(t, f.store.InTx(ctx, func(tx *memstore.Tx) error {
		m := contract.NewModel(contract.DefaultTransitions(), rules.Default())
		_, err := contract.ReplaceInChain(ctx, tx, kemp, m.TradeToTeam(kemp, f.third.ID))
		return err
	}))

	_, err := f.app.Accept(ctx, f.awayUser, a.ID)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeStaleTradeReference))
	assert.True(t, apperr.IsRetryable(err))

	d, err := f.app.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TradeStatusProposed, d.Trade.Status)
	assert.Len(t, d.Actions, 1)
	f.read(t, func(tx *memstore.Tx) {
		p, err := tx.GetDraftPick(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, f.home.ID, p.CurrentOwnerTeamID)

		txns, err := tx.ListTransactions(ctx, f.league.ID, 2026)
		require.NoError(t, err)
		assert.Empty(t, txns)
	})
	assert.Zero(t, f.recorder.transactions)
}

func TestContractsUpForAuctionCannotBeTraded(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	kemp := f.sign(t, "Shawn Kemp", f.home.ID, 30)
	price := f.sign(t, "Mark Price", f.home.ID, 12)

	a := f.propose(t, f.homeUser, []uuid.UUID{f.away.ID}, contractAsset(kemp, f.home.ID, f.away.ID))

	require.NoError(t, f.store.InTx(ctx, func(tx *memstore.Tx) error {
		now := time.Date(2025, 11, 3, 18, 0, 0, 0, time.UTC)
		for _, c := range []models.Contract{kemp, price} {
			if _, err := tx.InsertAuction(ctx, models.Auction{
				LeagueID:          f.league.ID,
				SeasonEndYear:     2026,
				ContractID:        c.ID,
				MinimumBidAmount:  1,
				StartTimestamp:    now,
				SoftEndTimestamp:  now.Add(24 * time.Hour),
				FixedEndTimestamp: now.Add(48 * time.Hour),
			}); err != nil {
				return err
			}
		}
		return nil
	}))

	_, err := f.app.Propose(ctx, f.homeUser, ProposeRequest{
		LeagueID:      f.league.ID,
		SeasonEndYear: 2026,
		ToTeamIDs:     []uuid.UUID{f.away.ID},
		Assets:        []AssetInput{contractAsset(price, f.home.ID, f.away.ID)},
	})
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidState))
	assert.False(t, apperr.IsRetryable(err))

	_, err = f.app.Accept(ctx, f.awayUser, a.ID)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidState))
	assert.True(t, apperr.IsRetryable(err))

	d, err := f.app.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TradeStatusProposed, d.Trade.Status)
	assert.Zero(t, f.recorder.transactions)
}

func TestMultiTeamTradeWaitsForEveryTeam(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	kemp := f.sign(t, "Shawn Kemp", f.home.ID, 30)
	bird := f.sign(t, "Larry Bird", f.third.ID, 25)

	a := f.propose(t, f.homeUser, []uuid.UUID{f.away.ID, f.third.ID},
		contractAsset(kemp, f.home.ID, f.away.ID),
		contractAsset(bird, f.third.ID, f.home.ID),
	)

	partial, err := f.app.Accept(ctx, f.awayUser, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TradeStatusProposed, partial.Status)

	done, err := f.app.Accept(ctx, f.thirdUsr, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TradeStatusCompleted, done.Status)

	f.read(t, func(tx *memstore.Tx) {
		head, err := tx.GetLatestInChain(ctx, bird.ID)
		require.NoError(t, err)
		assert.True(t, head.OwnedBy(f.home.ID))

		txns, err := tx.ListTransactions(ctx, f.league.ID, 2026)
		require.NoError(t, err)
		require.Len(t, txns, 1)
		updates, err := tx.ListTeamUpdates(ctx, txns[0].ID)
		require.NoError(t, err)
		assert.Len(t, updates, 3)
	})
}

func TestCounterofferExtendsTheChain(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	kemp := f.sign(t, "Shawn Kemp", f.home.ID, 30)
	webber := f.sign(t, "Chris Webber", f.away.ID, 28)
	second := f.pick(t, f.home.ID, 2)

	a := f.propose(t, f.homeUser, []uuid.UUID{f.away.ID},
		contractAsset(kemp, f.home.ID, f.away.ID),
		optionAsset(second, "lottery protected", f.home.ID, f.away.ID),
	)
	aDetails, err := f.app.Get(ctx, a.ID)
	require.NoError(t, err)

	_, err = f.app.Counteroffer(ctx, f.homeUser, a.ID, []AssetInput{contractAsset(kemp, f.home.ID, f.away.ID)})
	assert.True(t, apperr.HasCode(err, apperr.CodeNotAuthorized))

	b, err := f.app.Counteroffer(ctx, f.awayUser, a.ID, []AssetInput{
		contractAsset(kemp, f.home.ID, f.away.ID),
		contractAsset(webber, f.away.ID, f.home.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, models.TradeStatusProposed, b.Status)
	assert.Equal(t, a.ID, *b.PreviousTradeID)
	assert.Equal(t, a.ID, *b.OriginalTradeID)
	assert.ElementsMatch(t, a.TeamIDs, b.TeamIDs)

	f.read(t, func(tx *memstore.Tx) {
		old, err := tx.GetTrade(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, models.TradeStatusCounteroffered, old.Status)
		o, err := tx.GetDraftPickOption(ctx, optionID(t, aDetails))
		require.NoError(t, err)
		assert.Equal(t, models.DraftPickOptionStatusCancelledViaTradeRejection, o.Status)
	})

	_, err = f.app.Accept(ctx, f.awayUser, a.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeStaleTradeReference))

	c, err := f.app.Counteroffer(ctx, f.homeUser, b.ID, []AssetInput{contractAsset(webber, f.away.ID, f.home.ID)})
	require.NoError(t, err)
	assert.Equal(t, b.ID, *c.PreviousTradeID)
	assert.Equal(t, a.ID, *c.OriginalTradeID)

	history, err := f.app.History(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []int64{a.ID, b.ID, c.ID}, []int64{history[0].ID, history[1].ID, history[2].ID})

	done, err := f.app.Accept(ctx, f.awayUser, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TradeStatusCompleted, done.Status)
	f.read(t, func(tx *memstore.Tx) {
		head, err := tx.GetLatestInChain(ctx, webber.ID)
		require.NoError(t, err)
		assert.True(t, head.OwnedBy(f.home.ID))
		head, err = tx.GetLatestInChain(ctx, kemp.ID)
		require.NoError(t, err)
		assert.True(t, head.OwnedBy(f.home.ID))
	})
}

func TestRejectAndCancel(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	second := f.pick(t, f.home.ID, 2)
	kemp := f.sign(t, "Shawn Kemp", f.home.ID, 30)

	a := f.propose(t, f.homeUser, []uuid.UUID{f.away.ID}, optionAsset(second, "unprotected", f.home.ID, f.away.ID))
	aDetails, err := f.app.Get(ctx, a.ID)
	require.NoError(t, err)

	_, err = f.app.Reject(ctx, f.homeUser, a.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotAuthorized))
	_, err = f.app.Reject(ctx, f.thirdUsr, a.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotAuthorized))

	rejected, err := f.app.Reject(ctx, f.awayUser, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TradeStatusRejected, rejected.Status)
	f.read(t, func(tx *memstore.Tx) {
		o, err := tx.GetDraftPickOption(ctx, optionID(t, aDetails))
		require.NoError(t, err)
		assert.Equal(t, models.DraftPickOptionStatusCancelledViaTradeRejection, o.Status)
	})

	b := f.propose(t, f.homeUser, []uuid.UUID{f.away.ID}, contractAsset(kemp, f.home.ID, f.away.ID))
	_, err = f.app.Cancel(ctx, f.awayUser, b.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotAuthorized))
	canceled, err := f.app.Cancel(ctx, f.homeUser, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TradeStatusCanceled, canceled.Status)

	d, err := f.app.Get(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, d.Actions, 2)
	assert.Equal(t, models.TradeActionCancel, d.Actions[1].Action)

	_, err = f.app.Accept(ctx, f.awayUser, b.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidTransition))
}

func TestProposeRejectsBadOffers(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	kemp := f.sign(t, "Shawn Kemp", f.home.ID, 30)
	awayPick := f.pick(t, f.away.ID, 1)

	cases := []struct {
		name  string
		actor models.TeamUser
		to    []uuid.UUID
		asset []AssetInput
		code  apperr.Code
	}{
		{"contract held by another team", f.awayUser, []uuid.UUID{f.third.ID}, []AssetInput{contractAsset(kemp, f.away.ID, f.third.ID)}, apperr.CodeAssetNotOwned},
		{"pick owned by another team", f.homeUser, []uuid.UUID{f.third.ID}, []AssetInput{pickAsset(awayPick, f.home.ID, f.third.ID)}, apperr.CodeAssetNotOwned},
		{"option on another team's pick", f.homeUser, []uuid.UUID{f.away.ID}, []AssetInput{optionAsset(awayPick, "swap", f.home.ID, f.away.ID)}, apperr.CodeAssetNotOwned},
		{"no assets", f.homeUser, []uuid.UUID{f.away.ID}, nil, apperr.CodeInvalidInput},
		{"no partner", f.homeUser, nil, []AssetInput{contractAsset(kemp, f.home.ID, f.away.ID)}, apperr.CodeInvalidInput},
		{"trade with itself", f.homeUser, []uuid.UUID{f.home.ID}, []AssetInput{contractAsset(kemp, f.home.ID, f.away.ID)}, apperr.CodeInvalidInput},
		{"asset leaves the trade", f.homeUser, []uuid.UUID{f.away.ID}, []AssetInput{contractAsset(kemp, f.home.ID, f.third.ID)}, apperr.CodeInvalidInput},
		{"duplicate asset", f.homeUser, []uuid.UUID{f.away.ID}, []AssetInput{contractAsset(kemp, f.home.ID, f.away.ID), contractAsset(kemp, f.home.ID, f.away.ID)}, apperr.CodeInvalidInput},
		{"user acting for another team", models.TeamUser{UserID: f.awayUser.UserID, TeamID: f.home.ID}, []uuid.UUID{f.away.ID}, []AssetInput{contractAsset(kemp, f.home.ID, f.away.ID)}, apperr.CodeNotAuthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.app.Propose(ctx, tc.actor, ProposeRequest{
				LeagueID:      f.league.ID,
				SeasonEndYear: 2026,
				ToTeamIDs:     tc.to,
				Assets:        tc.asset,
			})
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err))
			assert.True(t, apperr.HasCode(err, tc.code), "got %v", err)
		})
	}
}

func TestProcessSkipsAcceptances(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	kemp := f.sign(t, "Shawn Kemp", f.home.ID, 30)
	a := f.propose(t, f.homeUser, []uuid.UUID{f.away.ID}, contractAsset(kemp, f.home.ID, f.away.ID))

	done, err := f.app.Process(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TradeStatusCompleted, done.Status)

	_, err = f.app.Process(ctx, a.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidTransition))
}

func TestAllAgreed(t *testing.T) {
	home, away := uuid.New(), uuid.New()
	tr := models.Trade{TeamIDs: []uuid.UUID{home, away}}

	assert.False(t, allAgreed(tr, []models.TradeAction{{TeamID: home, Action: models.TradeActionPropose}}))
	assert.True(t, allAgreed(tr, []models.TradeAction{
		{TeamID: home, Action: models.TradeActionPropose},
		{TeamID: away, Action: models.TradeActionAccept},
	}))
	assert.False(t, allAgreed(tr, []models.TradeAction{
		{TeamID: home, Action: models.TradeActionPropose},
		{TeamID: away, Action: models.TradeActionAccept},
		{TeamID: away, Action: models.TradeActionReject},
	}))
}
