package roster

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/contract"
	"github.com/mcdev12/capspace/go/internal/directory"
	"github.com/mcdev12/capspace/go/internal/leagues"
	"github.com/mcdev12/capspace/go/internal/ledger"
	"github.com/mcdev12/capspace/go/internal/metrics"
	"github.com/mcdev12/capspace/go/internal/models"
	"github.com/mcdev12/capspace/go/internal/rules"
	"github.com/mcdev12/capspace/go/internal/sqlutil"
	"github.com/rs/zerolog/log"
)

// RosterRepository defines what the app layer needs inside one transaction
type RosterRepository interface {
	contract.ContractRepository

	FindTeamTransaction(ctx context.Context, teamID uuid.UUID, txType models.TransactionType, deadlineID int64) (*models.Transaction, error)
}

// App validates rosters and commits roster locks and keeper selections
type App struct {
	tx          sqlutil.Transactor[RosterRepository]
	base        rules.Rules
	transitions contract.Transitions
	clock       clockwork.Clock
	metrics     metrics.Recorder
}

// NewApp creates a new roster App
func NewApp(tx sqlutil.Transactor[RosterRepository], base rules.Rules, transitions contract.Transitions, clock clockwork.Clock, recorder metrics.Recorder) *App {
	if recorder == nil {
		recorder = metrics.NoOp{}
	}
	return &App{
		tx:          tx,
		base:        base,
		transitions: transitions,
		clock:       clock,
		metrics:     recorder,
	}
}

func (a *App) input(ctx context.Context, repo RosterRepository, teamID uuid.UUID, d models.Deadline) (Input, rules.Rules, error) {
	if _, err := directory.RequireTeamInLeague(ctx, repo, d.LeagueID, teamID); err != nil {
		return Input{}, rules.Rules{}, err
	}
	_, r, err := leagues.Resolve(ctx, repo, a.base, d.LeagueID)
	if err != nil {
		return Input{}, rules.Rules{}, err
	}
	contracts, err := repo.ListActiveContractsByTeam(ctx, d.LeagueID, d.SeasonEndYear, teamID)
	if err != nil {
		return Input{}, rules.Rules{}, fmt.Errorf("failed to list team contracts: %w", err)
	}
	dropped, err := repo.ListInSeasonDroppedContracts(ctx, d.LeagueID, d.SeasonEndYear, teamID)
	if err != nil {
		return Input{}, rules.Rules{}, fmt.Errorf("failed to list dropped contracts: %w", err)
	}
	return Input{DeadlineType: d.Type, Contracts: contracts, Dropped: dropped}, r, nil
}

// ValidateTeam reports how a team's current roster fares against a deadline. Nothing is written.
func (a *App) ValidateTeam(ctx context.Context, teamID uuid.UUID, deadlineID int64) (*Report, error) {
	var rep Report
	err := a.tx.InTx(ctx, func(repo RosterRepository) error {
		d, err := repo.GetDeadline(ctx, deadlineID)
		if err != nil {
			return err
		}
		in, r, err := a.input(ctx, repo, teamID, *d)
		if err != nil {
			return err
		}
		rep = NewValidator(r).Check(in)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to validate roster: %w", err)
	}
	return &rep, nil
}

// LockRoster validates a team's roster at a deadline and records the ROSTER_LOCK transaction.
// Locking an already locked roster returns the existing transaction.
func (a *App) LockRoster(ctx context.Context, teamID uuid.UUID, deadlineID int64) (*models.Transaction, error) {
	var (
		txn     *models.Transaction
		existed bool
	)
	err := a.tx.InTx(ctx, func(repo RosterRepository) error {
		d, err := repo.GetDeadline(ctx, deadlineID)
		if err != nil {
			return err
		}
		txn, existed, err = a.LockRosterInTx(ctx, repo, teamID, *d)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to lock roster: %w", err)
	}

	if !existed {
		log.Info().
			Str("team_id", teamID.String()).
			Int64("deadline_id", deadlineID).
			Int64("transaction_id", txn.ID).
			Msg("locked roster")
	}
	return txn, nil
}

// LockRosterInTx locks a roster inside the caller's transaction. The bool reports whether the
// roster was already locked for this deadline.
func (a *App) LockRosterInTx(ctx context.Context, repo RosterRepository, teamID uuid.UUID, d models.Deadline) (*models.Transaction, bool, error) {
	if !d.Type.LocksRosters() {
		return nil, false, apperr.Validation(apperr.CodeInvalidState, "%s deadlines do not lock rosters", d.Type)
	}
	existing, err := repo.FindTeamTransaction(ctx, teamID, models.TransactionTypeRosterLock, d.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to find roster lock: %w", err)
	}
	if existing != nil {
		return existing, true, nil
	}

	in, r, err := a.input(ctx, repo, teamID, d)
	if err != nil {
		return nil, false, err
	}
	if err := NewValidator(r).Validate(in); err != nil {
		return nil, false, err
	}

	deadlineID := d.ID
	b := ledger.NewBuilder(repo, r, models.Transaction{
		LeagueID:      d.LeagueID,
		SeasonEndYear: d.SeasonEndYear,
		Type:          models.TransactionTypeRosterLock,
		DeadlineID:    &deadlineID,
		TeamID:        &teamID,
	}, &d)
	if err := b.Track(ctx, teamID); err != nil {
		return nil, false, err
	}
	txn, _, err := b.Record(ctx)
	if err != nil {
		return nil, false, err
	}
	a.metrics.RecordTransaction(string(models.TransactionTypeRosterLock))
	return txn, false, nil
}

// SaveKeepers keeps the listed contracts and drops every other roster contract of the acting team.
// It is only allowed before the season's keeper deadline and only once.
func (a *App) SaveKeepers(ctx context.Context, actor models.TeamUser, req SaveKeepersRequest) (*models.Transaction, error) {
	var (
		txn   *models.Transaction
		drops int
	)
	err := a.tx.InTx(ctx, func(repo RosterRepository) error {
		var err error
		txn, drops, err = a.saveKeepersInTx(ctx, repo, actor, req)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save keepers: %w", err)
	}

	log.Info().
		Str("league_id", req.LeagueID.String()).
		Str("team_id", actor.TeamID.String()).
		Int("kept", len(req.ContractIDs)).
		Int("dropped", drops).
		Msg("saved keepers")
	return txn, nil
}

func (a *App) saveKeepersInTx(ctx context.Context, repo RosterRepository, actor models.TeamUser, req SaveKeepersRequest) (*models.Transaction, int, error) {
	if _, err := directory.Authorize(ctx, repo, req.LeagueID, actor); err != nil {
		return nil, 0, err
	}
	d, err := repo.GetDeadlineByType(ctx, req.LeagueID, req.SeasonEndYear, models.DeadlineTypeKeeper)
	if err != nil {
		return nil, 0, err
	}
	if !a.clock.Now().Before(d.Datetime) {
		return nil, 0, apperr.Validation(apperr.CodeInvalidState, "the keeper deadline has passed")
	}
	existing, err := repo.FindTeamTransaction(ctx, actor.TeamID, models.TransactionTypeKeeperSave, d.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find keeper save: %w", err)
	}
	if existing != nil {
		return nil, 0, apperr.Validation(apperr.CodeInvalidState, "keepers were already saved")
	}

	_, r, err := leagues.Resolve(ctx, repo, a.base, req.LeagueID)
	if err != nil {
		return nil, 0, err
	}
	active, err := repo.ListActiveContractsByTeam(ctx, req.LeagueID, req.SeasonEndYear, actor.TeamID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list team contracts: %w", err)
	}

	var keepers, release []models.Contract
	for _, c := range active {
		if slices.Contains(req.ContractIDs, c.ID) {
			keepers = append(keepers, c)
		} else if c.ContractType.OnRoster() {
			release = append(release, c)
		}
	}
	if len(keepers) != len(slices.Compact(slices.Sorted(slices.Values(req.ContractIDs)))) {
		return nil, 0, apperr.Validation(apperr.CodeAssetNotOwned, "every keeper must be an active contract of team %s", actor.TeamID)
	}
	if err := NewValidator(r).ValidateKeepers(keepers); err != nil {
		return nil, 0, err
	}

	deadlineID := d.ID
	team := actor.TeamID
	b := ledger.NewBuilder(repo, r, models.Transaction{
		LeagueID:      req.LeagueID,
		SeasonEndYear: req.SeasonEndYear,
		Type:          models.TransactionTypeKeeperSave,
		DeadlineID:    &deadlineID,
		TeamID:        &team,
	}, d)
	if err := b.Track(ctx, team); err != nil {
		return nil, 0, err
	}

	m := contract.NewModel(a.transitions, r)
	for _, c := range release {
		next, err := m.Drop(c, true)
		if err != nil {
			return nil, 0, err
		}
		if _, err := contract.ReplaceInChain(ctx, repo, c, next); err != nil {
			return nil, 0, err
		}
		gone := c
		gone.Status = models.ContractStatusReplaced
		b.Contract(team, ledger.UpdateDrop, gone, nil)
	}
	for _, c := range keepers {
		b.Contract(team, ledger.UpdateKeeper, c, nil)
	}

	txn, _, err := b.Record(ctx)
	if err != nil {
		return nil, 0, err
	}
	a.metrics.RecordTransaction(string(models.TransactionTypeKeeperSave))
	return txn, len(release), nil
}
