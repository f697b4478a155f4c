// Package ledger writes the append-only audit trail: one Transaction per
// committed operation and one TeamUpdate per team the operation touched.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/capspace/go/internal/directory"
	"github.com/mcdev12/capspace/go/internal/models"
	"github.com/mcdev12/capspace/go/internal/rules"
	"github.com/rs/zerolog/log"
)

// LedgerRepository defines what the ledger needs to write records and to
// compute the salary and cap figures shown in them.
type LedgerRepository interface {
	directory.DirectoryRepository

	InsertTransaction(ctx context.Context, t models.Transaction) (*models.Transaction, error)
	InsertTeamUpdate(ctx context.Context, u models.TeamUpdate) (*models.TeamUpdate, error)
	ListActiveContractsByTeam(ctx context.Context, leagueID uuid.UUID, seasonEndYear int, teamID uuid.UUID) ([]models.Contract, error)
	ListInSeasonDroppedContracts(ctx context.Context, leagueID uuid.UUID, seasonEndYear int, teamID uuid.UUID) ([]models.Contract, error)
	GetDeadline(ctx context.Context, id int64) (*models.Deadline, error)
	NextDeadlineOnOrAfter(ctx context.Context, leagueID uuid.UUID, seasonEndYear int, at time.Time) (*models.Deadline, error)
}

type pendingContract struct {
	updateType   UpdateType
	contract     models.Contract
	counterparty *uuid.UUID
}

type pendingPick struct {
	updateType   UpdateType
	pick         models.DraftPick
	options      []string
	counterparty *uuid.UUID
}

type teamEntries struct {
	tracked      bool
	salaryBefore int
	capBefore    *int
	contracts    []pendingContract
	picks        []pendingPick
}

// Builder collects the per-team changes of one operation and writes them as
// a Transaction with its TeamUpdates. Teams must be tracked before any of
// their contracts change so the salary and cap before the change can be read.
type Builder struct {
	repo     LedgerRepository
	rules    rules.Rules
	txn      models.Transaction
	deadline *models.Deadline
	season   int
	teams    map[uuid.UUID]*teamEntries
	order    []uuid.UUID
}

// NewBuilder returns a builder for txn evaluated against deadline, which may be nil.
func NewBuilder(repo LedgerRepository, r rules.Rules, txn models.Transaction, deadline *models.Deadline) *Builder {
	if deadline != nil {
		id := deadline.ID
		txn.DeadlineID = &id
	}
	return &Builder{
		repo:     repo,
		rules:    r,
		txn:      txn,
		deadline: deadline,
		season:   txn.SeasonEndYear,
		teams:    map[uuid.UUID]*teamEntries{},
	}
}

// Begin returns a builder for txn. When txn names no deadline, the next
// deadline of the season on or after now is linked.
func Begin(ctx context.Context, repo LedgerRepository, r rules.Rules, txn models.Transaction, now time.Time) (*Builder, error) {
	var (
		deadline *models.Deadline
		err      error
	)
	if txn.DeadlineID != nil {
		deadline, err = repo.GetDeadline(ctx, *txn.DeadlineID)
	} else {
		deadline, err = repo.NextDeadlineOnOrAfter(ctx, txn.LeagueID, txn.SeasonEndYear, now)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve deadline: %w", err)
	}
	return NewBuilder(repo, r, txn, deadline), nil
}

// SetContractID links the transaction to the contract row it is about.
func (b *Builder) SetContractID(id int64) {
	b.txn.ContractID = &id
}

// Deadline returns the deadline the transaction is linked to, or nil.
func (b *Builder) Deadline() *models.Deadline {
	return b.deadline
}

// MeasureSeason reports salary figures for seasonEndYear instead of the transaction's season.
// Call it before Track. Cap figures are left unset for another season, since the linked
// deadline belongs to the transaction's season.
func (b *Builder) MeasureSeason(seasonEndYear int) {
	b.season = seasonEndYear
}

func (b *Builder) entries(teamID uuid.UUID) *teamEntries {
	e, ok := b.teams[teamID]
	if !ok {
		e = &teamEntries{}
		b.teams[teamID] = e
		b.order = append(b.order, teamID)
	}
	return e
}

// Track snapshots the team's salary and cap before the operation changes anything.
func (b *Builder) Track(ctx context.Context, teamID uuid.UUID) error {
	e := b.entries(teamID)
	if e.tracked {
		return nil
	}
	salary, ceiling, err := b.figures(ctx, teamID)
	if err != nil {
		return err
	}
	e.tracked, e.salaryBefore, e.capBefore = true, salary, ceiling
	return nil
}

// Contract adds a contract entry for teamID. counterparty is the other team of a trade or signing, if any.
func (b *Builder) Contract(teamID uuid.UUID, updateType UpdateType, c models.Contract, counterparty *uuid.UUID) {
	e := b.entries(teamID)
	e.contracts = append(e.contracts, pendingContract{updateType: updateType, contract: c, counterparty: counterparty})
}

// DraftPick adds a draft pick entry for teamID along with the clauses of the options attached to it.
func (b *Builder) DraftPick(teamID uuid.UUID, updateType UpdateType, p models.DraftPick, options []string, counterparty *uuid.UUID) {
	e := b.entries(teamID)
	e.picks = append(e.picks, pendingPick{updateType: updateType, pick: p, options: options, counterparty: counterparty})
}

func (b *Builder) figures(ctx context.Context, teamID uuid.UUID) (int, *int, error) {
	contracts, err := b.repo.ListActiveContractsByTeam(ctx, b.txn.LeagueID, b.season, teamID)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to list team contracts: %w", err)
	}
	salary := models.CountableSalary(contracts)

	if b.deadline == nil || b.season != b.txn.SeasonEndYear {
		return salary, nil, nil
	}
	dropped, err := b.repo.ListInSeasonDroppedContracts(ctx, b.txn.LeagueID, b.txn.SeasonEndYear, teamID)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to list dropped contracts: %w", err)
	}
	ceiling, ok := b.rules.AdjustedCap(b.deadline.Type, dropped)
	if !ok {
		return salary, nil, nil
	}
	return salary, &ceiling, nil
}

// Record inserts the transaction and one TeamUpdate per team, in the order teams were first touched.
func (b *Builder) Record(ctx context.Context) (*models.Transaction, []models.TeamUpdate, error) {
	for _, teamID := range b.order {
		if !b.teams[teamID].tracked {
			return nil, nil, fmt.Errorf("team %s has ledger entries but was never tracked", teamID)
		}
	}

	txn, err := b.repo.InsertTransaction(ctx, b.txn)
	if err != nil {
		return nil, nil, err
	}

	names := newNameCache(b.repo)
	updates := make([]models.TeamUpdate, 0, len(b.order))
	for _, teamID := range b.order {
		e := b.teams[teamID]
		data, err := b.teamData(ctx, names, teamID, e)
		if err != nil {
			return nil, nil, err
		}
		u, err := insertUpdate(ctx, b.repo, txn.ID, teamID, data)
		if err != nil {
			return nil, nil, err
		}
		updates = append(updates, *u)
	}

	log.Debug().
		Int64("transaction_id", txn.ID).
		Str("type", string(txn.Type)).
		Int("team_updates", len(updates)).
		Msg("recorded transaction")
	return txn, updates, nil
}

func (b *Builder) teamData(ctx context.Context, names *nameCache, teamID uuid.UUID, e *teamEntries) (Data, error) {
	team, err := names.team(ctx, teamID)
	if err != nil {
		return Data{}, err
	}
	salaryAfter, capAfter, err := b.figures(ctx, teamID)
	if err != nil {
		return Data{}, err
	}

	assets := Assets{Contracts: []ContractEntry{}, DraftPicks: []DraftPickEntry{}}
	for _, pc := range e.contracts {
		name, err := directory.PlayerName(ctx, b.repo, pc.contract)
		if err != nil {
			return Data{}, err
		}
		counterparty, err := names.ref(ctx, pc.counterparty)
		if err != nil {
			return Data{}, err
		}
		assets.Contracts = append(assets.Contracts, ContractEntry{
			UpdateType:   pc.updateType,
			ContractID:   pc.contract.ID,
			PlayerName:   name,
			ContractType: pc.contract.ContractType,
			ContractYear: pc.contract.ContractYear,
			Salary:       pc.contract.Salary,
			IsIR:         pc.contract.IsIR,
			Counterparty: counterparty,
		})
	}
	for _, pp := range e.picks {
		original, err := names.team(ctx, pp.pick.OriginalOwnerTeamID)
		if err != nil {
			return Data{}, err
		}
		counterparty, err := names.ref(ctx, pp.counterparty)
		if err != nil {
			return Data{}, err
		}
		assets.DraftPicks = append(assets.DraftPicks, DraftPickEntry{
			UpdateType:    pp.updateType,
			DraftPickID:   pp.pick.ID,
			SeasonEndYear: pp.pick.SeasonEndYear,
			Round:         pp.pick.Round,
			OriginalOwner: original,
			Options:       pp.options,
			Counterparty:  counterparty,
		})
	}

	return Data{
		Team:         team,
		Assets:       []Assets{assets},
		SalaryBefore: e.salaryBefore,
		SalaryAfter:  salaryAfter,
		CapBefore:    e.capBefore,
		CapAfter:     capAfter,
	}, nil
}

// RecordSettings writes a settings-change transaction with one TeamUpdate per team of the league.
func RecordSettings(ctx context.Context, repo LedgerRepository, txn models.Transaction, changed json.RawMessage) (*models.Transaction, []models.TeamUpdate, error) {
	teams, err := repo.ListFantasyTeamsByLeague(ctx, txn.LeagueID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list league teams: %w", err)
	}

	recorded, err := repo.InsertTransaction(ctx, txn)
	if err != nil {
		return nil, nil, err
	}

	updates := make([]models.TeamUpdate, 0, len(teams))
	for _, team := range teams {
		data := Data{Team: teamRef(&team), Settings: &Settings{Changed: changed}}
		u, err := insertUpdate(ctx, repo, recorded.ID, team.ID, data)
		if err != nil {
			return nil, nil, err
		}
		updates = append(updates, *u)
	}
	return recorded, updates, nil
}

func insertUpdate(ctx context.Context, repo LedgerRepository, transactionID int64, teamID uuid.UUID, data Data) (*models.TeamUpdate, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode team update: %w", err)
	}
	u, err := repo.InsertTeamUpdate(ctx, models.TeamUpdate{
		TransactionID: transactionID,
		TeamID:        teamID,
		Data:          raw,
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// nameCache resolves team display fields once per Record.
type nameCache struct {
	repo  directory.DirectoryRepository
	teams map[uuid.UUID]TeamRef
}

func newNameCache(repo directory.DirectoryRepository) *nameCache {
	return &nameCache{repo: repo, teams: map[uuid.UUID]TeamRef{}}
}

func (n *nameCache) team(ctx context.Context, id uuid.UUID) (TeamRef, error) {
	if ref, ok := n.teams[id]; ok {
		return ref, nil
	}
	t, err := n.repo.GetFantasyTeam(ctx, id)
	if err != nil {
		return TeamRef{}, fmt.Errorf("failed to get team for ledger: %w", err)
	}
	ref := teamRef(t)
	n.teams[id] = ref
	return ref, nil
}

func (n *nameCache) ref(ctx context.Context, id *uuid.UUID) (*TeamRef, error) {
	if id == nil {
		return nil, nil
	}
	ref, err := n.team(ctx, *id)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}
