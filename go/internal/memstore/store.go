// Package memstore keeps every engine table in memory behind the same
// repository methods the Postgres repositories expose. A transaction works on
// a copy of the state and publishes it on commit, so a failed operation leaves
// nothing behind. Transactions are serialized by one mutex.
package memstore

import (
	"context"
	"encoding/json"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/capspace/go/internal/models"
)

type state struct {
	leagues       map[uuid.UUID]models.League
	teams         map[uuid.UUID]models.FantasyTeam
	members       map[models.TeamMember]bool
	players       map[uuid.UUID]models.Player
	leaguePlayers map[uuid.UUID]models.LeaguePlayer

	contracts    map[int64]models.Contract
	picks        map[int64]models.DraftPick
	options      map[int64]models.DraftPickOption
	trades       map[int64]models.Trade
	tradeActions map[int64]models.TradeAction
	tradeAssets  map[int64]models.TradeAsset
	auctions     map[int64]models.Auction
	bids         map[int64]models.AuctionBid
	deadlines    map[int64]models.Deadline
	units        map[deadlineUnitID]models.DeadlineUnit
	transactions map[int64]models.Transaction
	teamUpdates  map[int64]models.TeamUpdate

	nextID int64
}

type deadlineUnitID struct {
	deadlineID int64
	key        string
}

func newState() *state {
	return &state{
		leagues:       map[uuid.UUID]models.League{},
		teams:         map[uuid.UUID]models.FantasyTeam{},
		members:       map[models.TeamMember]bool{},
		players:       map[uuid.UUID]models.Player{},
		leaguePlayers: map[uuid.UUID]models.LeaguePlayer{},
		contracts:     map[int64]models.Contract{},
		picks:         map[int64]models.DraftPick{},
		options:       map[int64]models.DraftPickOption{},
		trades:        map[int64]models.Trade{},
		tradeActions:  map[int64]models.TradeAction{},
		tradeAssets:   map[int64]models.TradeAsset{},
		auctions:      map[int64]models.Auction{},
		bids:          map[int64]models.AuctionBid{},
		deadlines:     map[int64]models.Deadline{},
		units:         map[deadlineUnitID]models.DeadlineUnit{},
		transactions:  map[int64]models.Transaction{},
		teamUpdates:   map[int64]models.TeamUpdate{},
	}
}

// clone copies every table. Rows are values; the few slice and raw JSON fields are copied on write, never mutated in place.
func (s *state) clone() *state {
	return &state{
		leagues:       maps.Clone(s.leagues),
		teams:         maps.Clone(s.teams),
		members:       maps.Clone(s.members),
		players:       maps.Clone(s.players),
		leaguePlayers: maps.Clone(s.leaguePlayers),
		contracts:     maps.Clone(s.contracts),
		picks:         maps.Clone(s.picks),
		options:       maps.Clone(s.options),
		trades:        maps.Clone(s.trades),
		tradeActions:  maps.Clone(s.tradeActions),
		tradeAssets:   maps.Clone(s.tradeAssets),
		auctions:      maps.Clone(s.auctions),
		bids:          maps.Clone(s.bids),
		deadlines:     maps.Clone(s.deadlines),
		units:         maps.Clone(s.units),
		transactions:  maps.Clone(s.transactions),
		teamUpdates:   maps.Clone(s.teamUpdates),
		nextID:        s.nextID,
	}
}

func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

// Store is an in-memory database.
type Store struct {
	mu    sync.Mutex
	st    *state
	clock clockwork.Clock
}

func New(clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{st: newState(), clock: clock}
}

// InTx runs fn against a private copy of the state and publishes the copy if fn succeeds.
func (s *Store) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &Tx{st: s.st.clone(), clock: s.clock}
	if err := fn(tx); err != nil {
		return err
	}
	s.st = tx.st
	return nil
}

// Runner adapts a Store to a repository interface R.
type Runner[R any] struct {
	store *Store
	bind  func(*Tx) R
}

// Bind returns a transaction runner handing fn the Tx as R.
func Bind[R any](store *Store, bind func(*Tx) R) *Runner[R] {
	return &Runner[R]{store: store, bind: bind}
}

func (r *Runner[R]) InTx(ctx context.Context, fn func(repo R) error) error {
	return r.store.InTx(ctx, func(tx *Tx) error {
		return fn(r.bind(tx))
	})
}

// Tx is one in-memory transaction. It implements every repository interface of the engine.
type Tx struct {
	st    *state
	clock clockwork.Clock
}

// AddLeague seeds a league.
func (s *Store) AddLeague(l models.League) models.League {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Status == "" {
		l.Status = models.LeagueStatusActive
	}
	l.CreatedAt, l.UpdatedAt = s.clock.Now(), s.clock.Now()
	s.st.leagues[l.ID] = l
	return l
}

// AddTeam seeds a fantasy team and its members.
func (s *Store) AddTeam(t models.FantasyTeam, members ...uuid.UUID) models.FantasyTeam {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = s.clock.Now()
	s.st.teams[t.ID] = t
	for _, userID := range members {
		s.st.members[models.TeamMember{TeamID: t.ID, UserID: userID}] = true
	}
	return t
}

// AddPlayer seeds a player.
func (s *Store) AddPlayer(p models.Player) models.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = s.clock.Now()
	s.st.players[p.ID] = p
	return p
}

// AddLeaguePlayer seeds a league-only player.
func (s *Store) AddLeaguePlayer(p models.LeaguePlayer) models.LeaguePlayer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = s.clock.Now()
	s.st.leaguePlayers[p.ID] = p
	return p
}

func sortedValues[K comparable, V any](m map[K]V, keep func(V) bool, less func(a, b V) int) []V {
	var out []V
	for _, v := range m {
		if keep(v) {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, less)
	return out
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return slices.Clone(raw)
}
