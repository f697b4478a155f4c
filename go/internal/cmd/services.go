package main

import (
	"database/sql"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/capspace/go/internal/auction"
	"github.com/mcdev12/capspace/go/internal/contract"
	"github.com/mcdev12/capspace/go/internal/deadline"
	"github.com/mcdev12/capspace/go/internal/draftpick"
	"github.com/mcdev12/capspace/go/internal/leagues"
	"github.com/mcdev12/capspace/go/internal/metrics"
	"github.com/mcdev12/capspace/go/internal/roster"
	"github.com/mcdev12/capspace/go/internal/rules"
	"github.com/mcdev12/capspace/go/internal/store"
	"github.com/mcdev12/capspace/go/internal/trade"
)

type Services struct {
	Leagues   *leagues.App
	Picks     *draftpick.App
	Auctions  *auction.App
	Trades    *trade.App
	Rosters   *roster.App
	Deadlines *deadline.Service
	Runner    *deadline.Runner
}

func setupServices(database *sql.DB, base rules.Rules, recorder metrics.Recorder, workers int) *Services {
	// Wire up dependency injection chain
	// Database → composite Repository → Transactor per app → App
	clock := clockwork.NewRealClock()
	transitions := contract.DefaultTransitions()
	options := draftpick.DefaultOptionGraph()

	contracts := contract.NewApp(store.Transactor(database, func(r *store.Repository) contract.ContractRepository { return r }), base, transitions, clock)
	auctions := auction.NewApp(store.Transactor(database, func(r *store.Repository) auction.AuctionRepository { return r }), base, transitions, clock, recorder)
	trades := trade.NewApp(store.Transactor(database, func(r *store.Repository) trade.TradeRepository { return r }), base, transitions, options, clock, recorder)
	rosters := roster.NewApp(store.Transactor(database, func(r *store.Repository) roster.RosterRepository { return r }), base, transitions, clock, recorder)

	deadlines := deadline.NewService(store.Transactor(database, func(r *store.Repository) deadline.ServiceRepository { return r }))
	runner := deadline.NewRunner(
		store.Transactor(database, func(r *store.Repository) deadline.RunRepository { return r }),
		contracts, auctions, rosters, clock, recorder,
		deadline.WithWorkers(workers),
	)

	return &Services{
		Leagues:   leagues.NewApp(store.Transactor(database, func(r *store.Repository) leagues.SettingsRepository { return r }), base, clock),
		Picks:     draftpick.NewApp(store.Transactor(database, func(r *store.Repository) draftpick.DraftPickRepository { return r }), base, options, clock),
		Auctions:  auctions,
		Trades:    trades,
		Rosters:   rosters,
		Deadlines: deadlines,
		Runner:    runner,
	}
}
