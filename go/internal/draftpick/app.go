package draftpick

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/contract"
	"github.com/mcdev12/capspace/go/internal/directory"
	"github.com/mcdev12/capspace/go/internal/leagues"
	"github.com/mcdev12/capspace/go/internal/ledger"
	"github.com/mcdev12/capspace/go/internal/models"
	"github.com/mcdev12/capspace/go/internal/rules"
	"github.com/mcdev12/capspace/go/internal/sqlutil"
	"github.com/rs/zerolog/log"
)

// PickRepository defines what the pick app layer needs from the pick repository
type PickRepository interface {
	OptionRepository

	InsertDraftPick(ctx context.Context, p models.DraftPick) (*models.DraftPick, error)
	GetDraftPick(ctx context.Context, id int64) (*models.DraftPick, error)
	ListDraftPicksBySeason(ctx context.Context, leagueID uuid.UUID, seasonEndYear int) ([]models.DraftPick, error)
	UpdateDraftPickOwner(ctx context.Context, id int64, from, to uuid.UUID) (*models.DraftPick, error)
	MarkDraftPickUsed(ctx context.Context, id int64, usedAt time.Time) (*models.DraftPick, error)
	InsertDraftPickOption(ctx context.Context, o models.DraftPickOption) (*models.DraftPickOption, error)
}

// DraftPickRepository is everything a pick operation touches inside one transaction
type DraftPickRepository interface {
	PickRepository
	contract.ContractRepository
}

// App handles draft pick business logic
type App struct {
	tx      sqlutil.Transactor[DraftPickRepository]
	base    rules.Rules
	options OptionGraph
	clock   clockwork.Clock
}

// NewApp creates a new pick App
func NewApp(tx sqlutil.Transactor[DraftPickRepository], base rules.Rules, options OptionGraph, clock clockwork.Clock) *App {
	return &App{
		tx:      tx,
		base:    base,
		options: options,
		clock:   clock,
	}
}

// CreateSeasonPicks creates one pick per team per rookie draft round for a season
func (a *App) CreateSeasonPicks(ctx context.Context, leagueID uuid.UUID, seasonEndYear int) ([]models.DraftPick, error) {
	var picks []models.DraftPick
	err := a.tx.InTx(ctx, func(repo DraftPickRepository) error {
		_, r, err := leagues.Resolve(ctx, repo, a.base, leagueID)
		if err != nil {
			return err
		}

		// Check if picks already exist
		existing, err := repo.ListDraftPicksBySeason(ctx, leagueID, seasonEndYear)
		if err != nil {
			return fmt.Errorf("failed to check existing picks: %w", err)
		}
		if len(existing) > 0 {
			return apperr.Validation(apperr.CodeInvalidState, "draft picks already exist for season %d (%d picks found)", seasonEndYear, len(existing))
		}

		teams, err := repo.ListFantasyTeamsByLeague(ctx, leagueID)
		if err != nil {
			return fmt.Errorf("failed to list teams: %w", err)
		}
		if len(teams) == 0 {
			return apperr.Validation(apperr.CodeInvalidState, "league %s has no teams", leagueID)
		}

		for round := 1; round <= r.DraftRounds(); round++ {
			for _, team := range teams {
				p, err := repo.InsertDraftPick(ctx, models.DraftPick{
					LeagueID:            leagueID,
					SeasonEndYear:       seasonEndYear,
					Round:               round,
					OriginalOwnerTeamID: team.ID,
					CurrentOwnerTeamID:  team.ID,
				})
				if err != nil {
					return err
				}
				picks = append(picks, *p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create draft picks: %w", err)
	}

	log.Info().
		Str("league_id", leagueID.String()).
		Int("season_end_year", seasonEndYear).
		Int("picks", len(picks)).
		Msg("created season draft picks")
	return picks, nil
}

// ListPicks retrieves a league's draft picks for a season
func (a *App) ListPicks(ctx context.Context, leagueID uuid.UUID, seasonEndYear int) ([]models.DraftPick, error) {
	var picks []models.DraftPick
	err := a.tx.InTx(ctx, func(repo DraftPickRepository) error {
		var err error
		picks, err = repo.ListDraftPicksBySeason(ctx, leagueID, seasonEndYear)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list draft picks: %w", err)
	}
	return picks, nil
}

// ListOptions retrieves every option attached to a pick
func (a *App) ListOptions(ctx context.Context, pickID int64) ([]models.DraftPickOption, error) {
	var options []models.DraftPickOption
	err := a.tx.InTx(ctx, func(repo DraftPickRepository) error {
		var err error
		options, err = repo.ListDraftPickOptionsByPick(ctx, pickID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list draft pick options: %w", err)
	}
	return options, nil
}

// AmendOption cancels an active option and attaches its replacement clause to the same pick.
// Only the pick's current owner may amend.
func (a *App) AmendOption(ctx context.Context, actor models.TeamUser, req AmendOptionRequest) (*models.DraftPickOption, error) {
	clause := strings.TrimSpace(req.Clause)
	if clause == "" {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "clause is required")
	}

	var amended *models.DraftPickOption
	err := a.tx.InTx(ctx, func(repo DraftPickRepository) error {
		current, err := repo.GetDraftPickOption(ctx, req.OptionID)
		if err != nil {
			return err
		}
		pick, err := repo.GetDraftPick(ctx, current.DraftPickID)
		if err != nil {
			return err
		}
		if _, err := directory.Authorize(ctx, repo, pick.LeagueID, actor); err != nil {
			return err
		}
		if pick.CurrentOwnerTeamID != actor.TeamID {
			return apperr.Validation(apperr.CodeAssetNotOwned, "draft pick %d is not owned by team %s", pick.ID, actor.TeamID)
		}

		if _, err := a.options.TransitionOption(ctx, repo, current.ID, models.DraftPickOptionStatusCancelledViaDraftPickOptionAmendment); err != nil {
			return err
		}
		amended, err = repo.InsertDraftPickOption(ctx, models.DraftPickOption{
			DraftPickID: pick.ID,
			Clause:      clause,
			Status:      models.DraftPickOptionStatusActive,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to amend draft pick option: %w", err)
	}

	log.Info().
		Int64("draft_pick_id", amended.DraftPickID).
		Int64("replaced_option_id", req.OptionID).
		Int64("option_id", amended.ID).
		Msg("amended draft pick option")
	return amended, nil
}

// SignRookie uses a pick at the rookie draft: it signs a rookie development contract at the
// round's rookie scale salary, marks the pick and its active options used and records the signing.
func (a *App) SignRookie(ctx context.Context, actor models.TeamUser, req SignRookieRequest) (*models.Contract, error) {
	var signed *models.Contract
	err := a.tx.InTx(ctx, func(repo DraftPickRepository) error {
		var err error
		signed, err = a.signRookieInTx(ctx, repo, actor, req)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign rookie: %w", err)
	}

	log.Info().
		Str("league_id", signed.LeagueID.String()).
		Str("team_id", actor.TeamID.String()).
		Int64("draft_pick_id", req.DraftPickID).
		Int64("contract_id", signed.ID).
		Str("contract_type", string(signed.ContractType)).
		Int("salary", signed.Salary).
		Msg("signed rookie from draft pick")
	return signed, nil
}

func (a *App) signRookieInTx(ctx context.Context, repo DraftPickRepository, actor models.TeamUser, req SignRookieRequest) (*models.Contract, error) {
	pick, err := repo.GetDraftPick(ctx, req.DraftPickID)
	if err != nil {
		return nil, err
	}
	_, r, err := leagues.Resolve(ctx, repo, a.base, pick.LeagueID)
	if err != nil {
		return nil, err
	}
	if _, err := directory.Authorize(ctx, repo, pick.LeagueID, actor); err != nil {
		return nil, err
	}
	if pick.CurrentOwnerTeamID != actor.TeamID {
		return nil, apperr.Validation(apperr.CodeAssetNotOwned, "draft pick %d is not owned by team %s", pick.ID, actor.TeamID)
	}
	if pick.UsedAt != nil {
		return nil, apperr.Validation(apperr.CodeInvalidState, "draft pick %d was already used", pick.ID)
	}
	salary, ok := r.RookieSalary(pick.Round)
	if !ok {
		return nil, apperr.Validation(apperr.CodeInvalidState, "round %d has no rookie scale salary", pick.Round)
	}
	if err := checkDraftee(ctx, repo, pick.LeagueID, req); err != nil {
		return nil, err
	}

	contractType := models.ContractTypeRookieDevelopment
	if req.International {
		contractType = models.ContractTypeRookieDevelopmentInternational
	}

	team := actor.TeamID
	now := a.clock.Now()
	b, err := ledger.Begin(ctx, repo, r, models.Transaction{
		LeagueID:      pick.LeagueID,
		SeasonEndYear: pick.SeasonEndYear,
		Type:          models.TransactionTypeRookieDraft,
		TeamID:        &team,
	}, now)
	if err != nil {
		return nil, err
	}
	if err := b.Track(ctx, team); err != nil {
		return nil, err
	}

	signed, err := contract.InsertRoot(ctx, repo, contract.NewRoot(contract.Signing{
		LeagueID:       pick.LeagueID,
		SeasonEndYear:  pick.SeasonEndYear,
		PlayerID:       req.PlayerID,
		LeaguePlayerID: req.LeaguePlayerID,
		TeamID:         &team,
		ContractType:   contractType,
		ContractYear:   1,
		Salary:         salary,
	}))
	if err != nil {
		return nil, err
	}

	used, err := repo.MarkDraftPickUsed(ctx, pick.ID, now)
	if err != nil {
		return nil, err
	}
	options, err := a.options.TransitionPickOptions(ctx, repo, pick.ID, models.DraftPickOptionStatusActive, models.DraftPickOptionStatusUsed)
	if err != nil {
		return nil, err
	}

	b.SetContractID(signed.ID)
	b.Contract(team, ledger.UpdateAddViaRookieDraft, *signed, nil)
	b.DraftPick(team, ledger.UpdateAddViaRookieDraft, *used, Clauses(options), nil)
	if _, _, err := b.Record(ctx); err != nil {
		return nil, err
	}
	return signed, nil
}

// checkDraftee verifies the drafted player exists and, for a league player, belongs to the league.
func checkDraftee(ctx context.Context, repo directory.DirectoryRepository, leagueID uuid.UUID, req SignRookieRequest) error {
	switch {
	case req.PlayerID != nil && req.LeaguePlayerID == nil:
		_, err := repo.GetPlayer(ctx, *req.PlayerID)
		return err
	case req.LeaguePlayerID != nil && req.PlayerID == nil:
		p, err := repo.GetLeaguePlayer(ctx, *req.LeaguePlayerID)
		if err != nil {
			return err
		}
		if p.LeagueID != leagueID {
			return apperr.Validation(apperr.CodeInvalidInput, "league player %s belongs to another league", p.ID)
		}
		return nil
	}
	return apperr.Validation(apperr.CodeInvalidInput, "exactly one of player and league player is required")
}

// Transfer moves a pick from one team to another as part of a trade.
// A pick that left the sending team or was used since the trade was proposed is a stale reference.
func Transfer(ctx context.Context, repo PickRepository, pickID int64, from, to uuid.UUID) (*models.DraftPick, error) {
	p, err := repo.GetDraftPick(ctx, pickID)
	if err != nil {
		return nil, err
	}
	if p.CurrentOwnerTeamID != from {
		return nil, apperr.Conflict(apperr.CodeStaleTradeReference, nil, "draft pick %d is no longer owned by team %s", pickID, from)
	}
	if p.UsedAt != nil {
		return nil, apperr.Conflict(apperr.CodeStaleTradeReference, nil, "draft pick %d was used", pickID)
	}
	moved, err := repo.UpdateDraftPickOwner(ctx, pickID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to transfer draft pick: %w", err)
	}
	return moved, nil
}
