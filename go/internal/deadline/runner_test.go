package deadline

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/auction"
	"github.com/mcdev12/capspace/go/internal/contract"
	"github.com/mcdev12/capspace/go/internal/memstore"
	"github.com/mcdev12/capspace/go/internal/models"
	"github.com/mcdev12/capspace/go/internal/roster"
	"github.com/mcdev12/capspace/go/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runnerFixture struct {
	runner    *Runner
	contracts *contract.App
	auctions  *auction.App
	store     *memstore.Store
	clock     *clockwork.FakeClock
	league    models.League
	home      models.FantasyTeam
	away      models.FantasyTeam
	homeUser  models.TeamUser
	awayUser  models.TeamUser
	keeper    models.Deadline
	regular   models.Deadline
	end       models.Deadline
}

func newRunnerFixture(t *testing.T) *runnerFixture {
	t.Helper()
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC))
	store := memstore.New(clock)

	f := &runnerFixture{store: store, clock: clock}
	f.league = store.AddLeague(models.League{Name: "Capspace", CurrentSeasonEndYear: 2026})
	homeID, awayID := uuid.New(), uuid.New()
	f.home = store.AddTeam(models.FantasyTeam{LeagueID: f.league.ID, Name: "Sonics", Abbreviation: "SEA"}, homeID)
	f.away = store.AddTeam(models.FantasyTeam{LeagueID: f.league.ID, Name: "Bullets", Abbreviation: "WSB"}, awayID)
	f.homeUser = models.TeamUser{UserID: homeID, TeamID: f.home.ID}
	f.awayUser = models.TeamUser{UserID: awayID, TeamID: f.away.ID}

	days := func(n int) time.Time { return clock.Now().Add(time.Duration(n) * 24 * time.Hour) }
	require.NoError(t, store.InTx(ctx, func(tx *memstore.Tx) error {
		for _, d := range []struct {
			typ models.DeadlineType
			at  time.Time
			out *models.Deadline
		}{
			{models.DeadlineTypeKeeper, days(7), &f.keeper},
			{models.DeadlineTypeRegularSeason, days(60), &f.regular},
			{models.DeadlineTypeEndOfSeason, days(250), &f.end},
		} {
			got, err := tx.InsertDeadline(ctx, models.Deadline{LeagueID: f.league.ID, SeasonEndYear: 2026, Type: d.typ, Datetime: d.at})
			if err != nil {
				return err
			}
			*d.out = *got
		}
		return nil
	}))

	base, transitions := rules.Default(), contract.DefaultTransitions()
	f.contracts = contract.NewApp(memstore.Bind(store, func(tx *memstore.Tx) contract.ContractRepository { return tx }), base, transitions, clock)
	f.auctions = auction.NewApp(memstore.Bind(store, func(tx *memstore.Tx) auction.AuctionRepository { return tx }), base, transitions, clock, nil)
	rosters := roster.NewApp(memstore.Bind(store, func(tx *memstore.Tx) roster.RosterRepository { return tx }), base, transitions, clock, nil)
	f.runner = NewRunner(memstore.Bind(store, func(tx *memstore.Tx) RunRepository { return tx }), f.contracts, f.auctions, rosters, clock, nil, WithWorkers(2))
	return f
}

func (f *runnerFixture) sign(t *testing.T, name string, team *uuid.UUID, ct models.ContractType, year, salary int) models.Contract {
	t.Helper()
	player := f.store.AddPlayer(models.Player{FullName: name, Position: "F"})
	var out *models.Contract
	require.NoError(t, f.store.InTx(context.Background(), func(tx *memstore.Tx) error {
		var err error
		out, err = contract.InsertRoot(context.Background(), tx, contract.NewRoot(contract.Signing{
			LeagueID:      f.league.ID,
			SeasonEndYear: 2026,
			PlayerID:      &player.ID,
			TeamID:        team,
			ContractType:  ct,
			ContractYear:  year,
			Salary:        salary,
		}))
		return err
	}))
	return *out
}

func (f *runnerFixture) units(t *testing.T, deadlineID int64) map[string]models.DeadlineUnit {
	t.Helper()
	out := map[string]models.DeadlineUnit{}
	require.NoError(t, f.store.InTx(context.Background(), func(tx *memstore.Tx) error {
		units, err := tx.ListDeadlineUnits(context.Background(), deadlineID)
		for _, u := range units {
			out[u.UnitKey] = u
		}
		return err
	}))
	return out
}

func (f *runnerFixture) countTransactions(t *testing.T, typ models.TransactionType) int {
	t.Helper()
	n := 0
	require.NoError(t, f.store.InTx(context.Background(), func(tx *memstore.Tx) error {
		txns, err := tx.ListTransactions(context.Background(), f.league.ID, 2026)
		for _, txn := range txns {
			if txn.Type == typ {
				n++
			}
		}
		return err
	}))
	return n
}

func lockKey(team models.FantasyTeam) string {
	return "lock:team:" + team.ID.String()
}

func TestRunResolvesDueAuctionsAndLocksEveryRoster(t *testing.T) {
	f := newRunnerFixture(t)
	ctx := context.Background()
	f.sign(t, "Shawn Kemp", &f.home.ID, models.ContractTypeVeteran, 1, 150)
	fa := f.sign(t, "Gary Payton", nil, models.ContractTypeFreeAgent, 1, 1)

	auc, err := f.auctions.Create(ctx, auction.CreateAuctionRequest{ContractID: fa.ID, MinimumBidAmount: 5})
	require.NoError(t, err)
	_, err = f.auctions.PlaceBid(ctx, f.awayUser, auc.ID, 10)
	require.NoError(t, err)

	f.clock.Advance(60 * 24 * time.Hour)
	sum, err := f.runner.Run(ctx, f.regular.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Done)
	assert.Empty(t, sum.Failed)

	closed, err := f.auctions.Get(ctx, auc.ID)
	require.NoError(t, err)
	assert.NotNil(t, closed.ClosedAt)

	won, err := f.contracts.GetLatestInChain(ctx, fa.ID)
	require.NoError(t, err)
	require.NotNil(t, won.TeamID)
	assert.Equal(t, f.away.ID, *won.TeamID)

	units := f.units(t, f.regular.ID)
	require.Len(t, units, 3)
	for key, u := range units {
		assert.Equal(t, models.DeadlineUnitDone, u.Status, key)
		assert.Equal(t, 1, u.Attempts, key)
	}
	assert.Equal(t, 2, f.countTransactions(t, models.TransactionTypeRosterLock))

	again, err := f.runner.Run(ctx, f.regular.ID)
	require.NoError(t, err)
	assert.Zero(t, again.Done)
	assert.Equal(t, 2, again.Skipped)
	assert.Equal(t, 2, f.countTransactions(t, models.TransactionTypeRosterLock))
}

func TestRunRecordsFailedUnitsAndRetriesOnlyThem(t *testing.T) {
	f := newRunnerFixture(t)
	ctx := context.Background()
	f.sign(t, "Shawn Kemp", &f.home.ID, models.ContractTypeVeteran, 1, 150)
	perkins := f.sign(t, "Sam Perkins", &f.home.ID, models.ContractTypeVeteran, 1, 61)
	f.sign(t, "Chris Webber", &f.away.ID, models.ContractTypeVeteran, 1, 100)

	sum, err := f.runner.Run(ctx, f.regular.ID)
	require.Error(t, err)
	assert.Equal(t, 1, sum.Done)
	assert.Equal(t, []string{lockKey(f.home)}, sum.Failed)

	units := f.units(t, f.regular.ID)
	failed := units[lockKey(f.home)]
	assert.Equal(t, models.DeadlineUnitFailed, failed.Status)
	assert.Equal(t, 1, failed.Attempts)
	require.NotNil(t, failed.LastError)
	assert.Contains(t, *failed.LastError, string(apperr.CodeCapExceeded))
	assert.Equal(t, models.DeadlineUnitDone, units[lockKey(f.away)].Status)
	assert.Equal(t, 1, f.countTransactions(t, models.TransactionTypeRosterLock))

	// Dropped before the keeper deadline, so no in-season penalty applies.
	_, err = f.contracts.Drop(ctx, f.homeUser, perkins.ID)
	require.NoError(t, err)

	sum, err = f.runner.Run(ctx, f.regular.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Done)
	assert.Equal(t, 1, sum.Skipped)

	units = f.units(t, f.regular.ID)
	retried := units[lockKey(f.home)]
	assert.Equal(t, models.DeadlineUnitDone, retried.Status)
	assert.Equal(t, 2, retried.Attempts)
	assert.Equal(t, 1, units[lockKey(f.away)].Attempts)
	assert.Equal(t, 2, f.countTransactions(t, models.TransactionTypeRosterLock))
}

func TestRunRollsContractsOverAtEndOfSeason(t *testing.T) {
	f := newRunnerFixture(t)
	ctx := context.Background()
	kemp := f.sign(t, "Shawn Kemp", &f.home.ID, models.ContractTypeVeteran, 1, 100)
	rfa := f.sign(t, "Nate McMillan", &f.home.ID, models.ContractTypeRestrictedFreeAgent, 1, 5)

	sum, err := f.runner.Run(ctx, f.end.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Done)

	next, err := f.contracts.GetLatestInChain(ctx, kemp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusActive, next.Status)
	assert.Equal(t, 2027, next.SeasonEndYear)
	assert.Equal(t, 2, next.ContractYear)
	assert.Greater(t, next.Salary, 100)

	gone, err := f.contracts.GetLatestInChain(ctx, rfa.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusExpired, gone.Status)
	assert.Nil(t, gone.TeamID)

	assert.Zero(t, f.countTransactions(t, models.TransactionTypeRosterLock))
	assert.Len(t, f.units(t, f.end.ID), 2)

	again, err := f.runner.Run(ctx, f.end.ID)
	require.NoError(t, err)
	assert.Zero(t, again.Done)

	after, err := f.contracts.GetLatestInChain(ctx, kemp.ID)
	require.NoError(t, err)
	assert.Equal(t, next.ID, after.ID)
}

func TestRunUnknownDeadline(t *testing.T) {
	f := newRunnerFixture(t)

	sum, err := f.runner.Run(context.Background(), 999)
	require.Error(t, err)
	assert.Nil(t, sum)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}
