package contract

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/directory"
	"github.com/mcdev12/capspace/go/internal/leagues"
	"github.com/mcdev12/capspace/go/internal/ledger"
	"github.com/mcdev12/capspace/go/internal/models"
	"github.com/mcdev12/capspace/go/internal/rules"
	"github.com/mcdev12/capspace/go/internal/sqlutil"
	"github.com/rs/zerolog/log"
)

// ContractRepository defines what the app layer needs inside one transaction
type ContractRepository interface {
	ChainRepository
	ledger.LedgerRepository
	leagues.LeagueRepository

	GetDeadlineByType(ctx context.Context, leagueID uuid.UUID, seasonEndYear int, t models.DeadlineType) (*models.Deadline, error)
	GetOpenAuctionByContract(ctx context.Context, contractID int64) (*models.Auction, error)
}

// App handles contract lifecycle operations
type App struct {
	tx          sqlutil.Transactor[ContractRepository]
	base        rules.Rules
	transitions Transitions
	clock       clockwork.Clock
}

// NewApp creates a new contract App
func NewApp(tx sqlutil.Transactor[ContractRepository], base rules.Rules, transitions Transitions, clock clockwork.Clock) *App {
	return &App{
		tx:          tx,
		base:        base,
		transitions: transitions,
		clock:       clock,
	}
}

// change describes one lifecycle event applied to the head of a chain.
type change struct {
	txType       models.TransactionType
	updateType   func(current models.Contract) ledger.UpdateType
	actor        *models.TeamUser
	requireOwner bool
	deadlineID   *int64
	// linkReplaced records the replaced row on the transaction instead of its successor.
	linkReplaced bool
	apply        func(ctx context.Context, repo ContractRepository, m Model, current models.Contract) (models.Contract, error)
}

func always(ut ledger.UpdateType) func(models.Contract) ledger.UpdateType {
	return func(models.Contract) ledger.UpdateType { return ut }
}

func (a *App) applyInTx(ctx context.Context, repo ContractRepository, contractID int64, ch change) (*models.Contract, error) {
	current, err := repo.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	_, r, err := leagues.Resolve(ctx, repo, a.base, current.LeagueID)
	if err != nil {
		return nil, err
	}

	if ch.actor != nil {
		if _, err := directory.Authorize(ctx, repo, current.LeagueID, *ch.actor); err != nil {
			return nil, err
		}
		if ch.requireOwner && !current.OwnedBy(ch.actor.TeamID) {
			return nil, apperr.Validation(apperr.CodeAssetNotOwned, "contract %d is not held by team %s", current.ID, ch.actor.TeamID)
		}
		open, err := repo.GetOpenAuctionByContract(ctx, current.ID)
		if err != nil {
			return nil, err
		}
		if open != nil {
			return nil, apperr.Validation(apperr.CodeInvalidState, "contract %d is up for auction %d", current.ID, open.ID)
		}
	}

	next, err := ch.apply(ctx, repo, NewModel(a.transitions, r), *current)
	if err != nil {
		return nil, err
	}

	team := current.TeamID
	if team == nil {
		team = next.TeamID
	}
	b, err := ledger.Begin(ctx, repo, r, models.Transaction{
		LeagueID:      current.LeagueID,
		SeasonEndYear: current.SeasonEndYear,
		Type:          ch.txType,
		DeadlineID:    ch.deadlineID,
		TeamID:        team,
	}, a.clock.Now())
	if err != nil {
		return nil, err
	}
	if next.SeasonEndYear != current.SeasonEndYear {
		b.MeasureSeason(next.SeasonEndYear)
	}
	if team != nil {
		if err := b.Track(ctx, *team); err != nil {
			return nil, err
		}
	}

	saved, err := ReplaceInChain(ctx, repo, *current, next)
	if err != nil {
		return nil, err
	}

	entry := *saved
	b.SetContractID(saved.ID)
	if ch.linkReplaced {
		entry = *current
		entry.Status = models.ContractStatusReplaced
		b.SetContractID(current.ID)
	}
	if team != nil {
		b.Contract(*team, ch.updateType(*current), entry, nil)
	}
	if _, _, err := b.Record(ctx); err != nil {
		return nil, err
	}
	return saved, nil
}

func (a *App) run(ctx context.Context, contractID int64, ch change, msg string) (*models.Contract, error) {
	var out *models.Contract
	err := a.tx.InTx(ctx, func(repo ContractRepository) error {
		var err error
		out, err = a.applyInTx(ctx, repo, contractID, ch)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("league_id", out.LeagueID.String()).
		Int64("contract_id", out.ID).
		Int64("previous_contract_id", *out.PreviousContractID).
		Str("contract_type", string(out.ContractType)).
		Int("salary", out.Salary).
		Msg(msg)
	return out, nil
}

// Advance moves one contract into next season
func (a *App) Advance(ctx context.Context, contractID int64) (*models.Contract, error) {
	c, err := a.run(ctx, contractID, a.advanceChange(nil), "advanced contract")
	if err != nil {
		return nil, fmt.Errorf("failed to advance contract: %w", err)
	}
	return c, nil
}

// AdvanceInTx advances a contract inside the caller's transaction, linking the ledger record to deadlineID.
func (a *App) AdvanceInTx(ctx context.Context, repo ContractRepository, contractID int64, deadlineID *int64) (*models.Contract, error) {
	return a.applyInTx(ctx, repo, contractID, a.advanceChange(deadlineID))
}

func (a *App) advanceChange(deadlineID *int64) change {
	return change{
		txType:     models.TransactionTypeContractAdvance,
		updateType: always(ledger.UpdateContractAdvanced),
		deadlineID: deadlineID,
		apply: func(_ context.Context, _ ContractRepository, m Model, c models.Contract) (models.Contract, error) {
			return m.Advance(c)
		},
	}
}

// RollOverInTx carries a contract past the end of its season: it advances when the transition table
// has a next year for it and expires otherwise.
func (a *App) RollOverInTx(ctx context.Context, repo ContractRepository, contractID int64, deadlineID *int64) (*models.Contract, error) {
	c, err := repo.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if _, ok := a.transitions.Next(c.ContractType, c.ContractYear); ok {
		return a.AdvanceInTx(ctx, repo, contractID, deadlineID)
	}
	return a.ExpireInTx(ctx, repo, contractID, deadlineID)
}

// Expire ends a contract and returns its player to the pool
func (a *App) Expire(ctx context.Context, contractID int64) (*models.Contract, error) {
	c, err := a.run(ctx, contractID, expireChange(nil), "expired contract")
	if err != nil {
		return nil, fmt.Errorf("failed to expire contract: %w", err)
	}
	return c, nil
}

// ExpireInTx expires a contract inside the caller's transaction.
func (a *App) ExpireInTx(ctx context.Context, repo ContractRepository, contractID int64, deadlineID *int64) (*models.Contract, error) {
	return a.applyInTx(ctx, repo, contractID, expireChange(deadlineID))
}

func expireChange(deadlineID *int64) change {
	return change{
		txType: models.TransactionTypeContractExpire,
		updateType: func(c models.Contract) ledger.UpdateType {
			if c.ContractType.IsFreeAgency() {
				return ledger.UpdateLostViaFreeAgency
			}
			return ledger.UpdateDrop
		},
		deadlineID: deadlineID,
		apply: func(_ context.Context, _ ContractRepository, m Model, c models.Contract) (models.Contract, error) {
			return m.Expire(c)
		},
	}
}

// Drop releases a team's contract. Drops before the keeper deadline write the salary off;
// later drops of anything but rookie development contracts reduce the team's in-season cap.
func (a *App) Drop(ctx context.Context, actor models.TeamUser, contractID int64) (*models.Contract, error) {
	c, err := a.run(ctx, contractID, change{
		txType:       models.TransactionTypeDrop,
		updateType:   always(ledger.UpdateDrop),
		actor:        &actor,
		requireOwner: true,
		linkReplaced: true,
		apply: func(ctx context.Context, repo ContractRepository, m Model, c models.Contract) (models.Contract, error) {
			before, err := BeforeKeeperDeadline(ctx, repo, c.LeagueID, c.SeasonEndYear, a.clock.Now())
			if err != nil {
				return models.Contract{}, err
			}
			return m.Drop(c, before)
		},
	}, "dropped contract")
	if err != nil {
		return nil, fmt.Errorf("failed to drop contract: %w", err)
	}
	return c, nil
}

// ActivateRookie promotes a team's rookie development contract
func (a *App) ActivateRookie(ctx context.Context, actor models.TeamUser, contractID int64) (*models.Contract, error) {
	c, err := a.run(ctx, contractID, change{
		txType:       models.TransactionTypeActivateRookie,
		updateType:   always(ledger.UpdateActivateRookie),
		actor:        &actor,
		requireOwner: true,
		apply: func(_ context.Context, _ ContractRepository, m Model, c models.Contract) (models.Contract, error) {
			return m.ActivateRookie(c)
		},
	}, "activated rookie")
	if err != nil {
		return nil, fmt.Errorf("failed to activate rookie: %w", err)
	}
	return c, nil
}

// MoveToIR places a team's contract on injured reserve
func (a *App) MoveToIR(ctx context.Context, actor models.TeamUser, contractID int64) (*models.Contract, error) {
	c, err := a.run(ctx, contractID, change{
		txType:       models.TransactionTypeIRMove,
		updateType:   always(ledger.UpdateToIR),
		actor:        &actor,
		requireOwner: true,
		apply: func(_ context.Context, _ ContractRepository, m Model, c models.Contract) (models.Contract, error) {
			return m.MoveToIR(c)
		},
	}, "moved contract to ir")
	if err != nil {
		return nil, fmt.Errorf("failed to move contract to IR: %w", err)
	}
	return c, nil
}

// MoveFromIR returns a team's contract from injured reserve
func (a *App) MoveFromIR(ctx context.Context, actor models.TeamUser, contractID int64) (*models.Contract, error) {
	c, err := a.run(ctx, contractID, change{
		txType:       models.TransactionTypeIRMove,
		updateType:   always(ledger.UpdateFromIR),
		actor:        &actor,
		requireOwner: true,
		apply: func(_ context.Context, _ ContractRepository, m Model, c models.Contract) (models.Contract, error) {
			return m.MoveFromIR(c)
		},
	}, "moved contract from ir")
	if err != nil {
		return nil, fmt.Errorf("failed to move contract from IR: %w", err)
	}
	return c, nil
}

// SignFreeAgent signs an unowned free agent contract to the acting team during the season
func (a *App) SignFreeAgent(ctx context.Context, actor models.TeamUser, contractID int64, salary int) (*models.Contract, error) {
	c, err := a.run(ctx, contractID, change{
		txType:     models.TransactionTypeFreeAgentSigning,
		updateType: always(ledger.UpdateAddViaFreeAgency),
		actor:      &actor,
		apply: func(_ context.Context, _ ContractRepository, m Model, c models.Contract) (models.Contract, error) {
			if c.ContractType != models.ContractTypeFreeAgent || c.TeamID != nil {
				return models.Contract{}, apperr.Validation(apperr.CodeInvalidState, "contract %d is not an unsigned free agent", c.ID)
			}
			return m.SignVeteranOrFreeAgent(c, actor.TeamID, salary)
		},
	}, "signed free agent")
	if err != nil {
		return nil, fmt.Errorf("failed to sign free agent: %w", err)
	}
	return c, nil
}

// CreateFreeAgentContract puts a player without an active contract into the free agent pool
// for the league's current season. Exactly one of playerID and leaguePlayerID must be set.
func (a *App) CreateFreeAgentContract(ctx context.Context, leagueID uuid.UUID, playerID, leaguePlayerID *uuid.UUID) (*models.Contract, error) {
	var out *models.Contract
	err := a.tx.InTx(ctx, func(repo ContractRepository) error {
		league, err := repo.GetLeague(ctx, leagueID)
		if err != nil {
			return err
		}

		// Verify the player exists
		switch {
		case playerID != nil && leaguePlayerID == nil:
			if _, err := repo.GetPlayer(ctx, *playerID); err != nil {
				return err
			}
		case leaguePlayerID != nil && playerID == nil:
			p, err := repo.GetLeaguePlayer(ctx, *leaguePlayerID)
			if err != nil {
				return err
			}
			if p.LeagueID != leagueID {
				return apperr.Validation(apperr.CodeInvalidInput, "league player %s belongs to another league", p.ID)
			}
		default:
			return apperr.Validation(apperr.CodeInvalidInput, "exactly one of player and league player is required")
		}

		out, err = InsertRoot(ctx, repo, NewRoot(Signing{
			LeagueID:       leagueID,
			SeasonEndYear:  league.CurrentSeasonEndYear,
			PlayerID:       playerID,
			LeaguePlayerID: leaguePlayerID,
			ContractType:   models.ContractTypeFreeAgent,
			ContractYear:   1,
			Salary:         1,
		}))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create free agent contract: %w", err)
	}

	log.Info().
		Str("league_id", leagueID.String()).
		Int64("contract_id", out.ID).
		Msg("created free agent contract")
	return out, nil
}

// GetLatestInChain returns the current head of a contract chain
func (a *App) GetLatestInChain(ctx context.Context, originalContractID int64) (*models.Contract, error) {
	var out *models.Contract
	err := a.tx.InTx(ctx, func(repo ContractRepository) error {
		var err error
		out, err = repo.GetLatestInChain(ctx, originalContractID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get latest contract in chain: %w", err)
	}
	return out, nil
}

// History returns every record of a contract chain, root first
func (a *App) History(ctx context.Context, originalContractID int64) ([]models.Contract, error) {
	var out []models.Contract
	err := a.tx.InTx(ctx, func(repo ContractRepository) error {
		var err error
		out, err = repo.ListContractChain(ctx, originalContractID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list contract chain: %w", err)
	}
	return out, nil
}

// KeeperDeadlineRepository looks up a season's keeper deadline
type KeeperDeadlineRepository interface {
	GetDeadlineByType(ctx context.Context, leagueID uuid.UUID, seasonEndYear int, t models.DeadlineType) (*models.Deadline, error)
}

// BeforeKeeperDeadline reports whether now precedes the season's keeper deadline.
// A season without a keeper deadline is treated as past it.
func BeforeKeeperDeadline(ctx context.Context, repo KeeperDeadlineRepository, leagueID uuid.UUID, seasonEndYear int, now time.Time) (bool, error) {
	d, err := repo.GetDeadlineByType(ctx, leagueID, seasonEndYear, models.DeadlineTypeKeeper)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get keeper deadline: %w", err)
	}
	return now.Before(d.Datetime), nil
}
