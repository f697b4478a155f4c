// Package leagues resolves the rules in force for a league and applies
// commissioner changes to its rule overrides.
package leagues

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/ledger"
	"github.com/mcdev12/capspace/go/internal/models"
	"github.com/mcdev12/capspace/go/internal/rules"
	"github.com/mcdev12/capspace/go/internal/sqlutil"
	"github.com/rs/zerolog/log"
)

// LeagueRepository defines the league lookups every engine operation needs
type LeagueRepository interface {
	GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error)
}

// SettingsRepository defines what a settings change needs inside its transaction
type SettingsRepository interface {
	LeagueRepository
	ledger.LedgerRepository

	UpdateLeagueSettings(ctx context.Context, id uuid.UUID, settings json.RawMessage) (*models.League, error)
}

// Resolve loads a league and the rules in force for it: base with the league's overrides applied.
func Resolve(ctx context.Context, repo LeagueRepository, base rules.Rules, leagueID uuid.UUID) (*models.League, rules.Rules, error) {
	league, err := repo.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, rules.Rules{}, fmt.Errorf("failed to get league: %w", err)
	}
	r, err := base.WithOverrides(league.Settings)
	if err != nil {
		return nil, rules.Rules{}, apperr.Consistency(apperr.CodeInvalidState, err, "league %s has unusable settings", leagueID)
	}
	return league, r, nil
}

// App handles league settings
type App struct {
	tx    sqlutil.Transactor[SettingsRepository]
	base  rules.Rules
	clock clockwork.Clock
}

// NewApp creates a new leagues App
func NewApp(tx sqlutil.Transactor[SettingsRepository], base rules.Rules, clock clockwork.Clock) *App {
	return &App{
		tx:    tx,
		base:  base,
		clock: clock,
	}
}

// RulesFor returns the rules in force for a league
func (a *App) RulesFor(ctx context.Context, leagueID uuid.UUID) (rules.Rules, error) {
	var out rules.Rules
	err := a.tx.InTx(ctx, func(repo SettingsRepository) error {
		_, r, err := Resolve(ctx, repo, a.base, leagueID)
		out = r
		return err
	})
	return out, err
}

// UpdateSettings replaces the league's overrides and records the change for every team
func (a *App) UpdateSettings(ctx context.Context, leagueID uuid.UUID, settings json.RawMessage) (*models.League, error) {
	if len(settings) > 0 && !json.Valid(settings) {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "league settings must be a JSON document")
	}
	// Overrides are validated against the base rules before anything is written
	if _, err := a.base.WithOverrides(settings); err != nil {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "invalid league settings: %v", err)
	}

	var league *models.League
	err := a.tx.InTx(ctx, func(repo SettingsRepository) error {
		current, err := repo.GetLeague(ctx, leagueID)
		if err != nil {
			return fmt.Errorf("league not found: %w", err)
		}

		league, err = repo.UpdateLeagueSettings(ctx, leagueID, settings)
		if err != nil {
			return err
		}

		_, _, err = ledger.RecordSettings(ctx, repo, models.Transaction{
			LeagueID:      leagueID,
			SeasonEndYear: current.CurrentSeasonEndYear,
			Type:          models.TransactionTypeSettingsChange,
		}, settings)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update league settings: %w", err)
	}

	log.Info().
		Str("league_id", leagueID.String()).
		Msg("updated league settings")
	return league, nil
}
