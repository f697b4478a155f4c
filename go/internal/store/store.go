// Package store binds every domain repository to one set of db queries, so a
// single Postgres transaction can serve any app's repository interface.
package store

import (
	"database/sql"

	"github.com/mcdev12/capspace/go/internal/auction"
	"github.com/mcdev12/capspace/go/internal/contract"
	"github.com/mcdev12/capspace/go/internal/db"
	"github.com/mcdev12/capspace/go/internal/deadline"
	"github.com/mcdev12/capspace/go/internal/directory"
	"github.com/mcdev12/capspace/go/internal/draftpick"
	"github.com/mcdev12/capspace/go/internal/leagues"
	"github.com/mcdev12/capspace/go/internal/ledger"
	"github.com/mcdev12/capspace/go/internal/roster"
	"github.com/mcdev12/capspace/go/internal/sqlutil"
	"github.com/mcdev12/capspace/go/internal/trade"
)

type (
	contractRepo  = contract.Repository
	ledgerRepo    = ledger.Repository
	leagueRepo    = leagues.Repository
	directoryRepo = directory.Repository
	pickRepo      = draftpick.Repository
	auctionRepo   = auction.Repository
	tradeRepo     = trade.Repository
	deadlineRepo  = deadline.Repository
)

// Repository implements every repository interface of the engine
type Repository struct {
	*contractRepo
	*ledgerRepo
	*leagueRepo
	*directoryRepo
	*pickRepo
	*auctionRepo
	*tradeRepo
	*deadlineRepo
}

var (
	_ contract.ContractRepository       = (*Repository)(nil)
	_ contract.KeeperDeadlineRepository = (*Repository)(nil)
	_ auction.AuctionRepository         = (*Repository)(nil)
	_ trade.TradeRepository             = (*Repository)(nil)
	_ roster.RosterRepository           = (*Repository)(nil)
	_ draftpick.DraftPickRepository     = (*Repository)(nil)
	_ leagues.SettingsRepository        = (*Repository)(nil)
	_ deadline.RunRepository            = (*Repository)(nil)
	_ deadline.ServiceRepository        = (*Repository)(nil)
)

// New builds a Repository over q
func New(q *db.Queries) *Repository {
	return &Repository{
		contractRepo:  contract.NewRepository(q),
		ledgerRepo:    ledger.NewRepository(q),
		leagueRepo:    leagues.NewRepository(q),
		directoryRepo: directory.NewRepository(q),
		pickRepo:      draftpick.NewRepository(q),
		auctionRepo:   auction.NewRepository(q),
		tradeRepo:     trade.NewRepository(q),
		deadlineRepo:  deadline.NewRepository(q),
	}
}

// Transactor returns a Postgres Transactor handing each transaction's Repository to fn as R
func Transactor[R any](conn *sql.DB, as func(*Repository) R) sqlutil.Transactor[R] {
	return sqlutil.NewTxRunner(conn, func(tx *sql.Tx) R {
		return as(New(db.New(tx)))
	})
}
