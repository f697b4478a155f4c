package trade

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/contract"
	"github.com/mcdev12/capspace/go/internal/directory"
	"github.com/mcdev12/capspace/go/internal/draftpick"
	"github.com/mcdev12/capspace/go/internal/leagues"
	"github.com/mcdev12/capspace/go/internal/ledger"
	"github.com/mcdev12/capspace/go/internal/metrics"
	"github.com/mcdev12/capspace/go/internal/models"
	"github.com/mcdev12/capspace/go/internal/rules"
	"github.com/mcdev12/capspace/go/internal/sqlutil"
	"github.com/rs/zerolog/log"
)

// NegotiationRepository defines the trade table operations
type NegotiationRepository interface {
	InsertTrade(ctx context.Context, t models.Trade) (*models.Trade, error)
	GetTrade(ctx context.Context, id int64) (*models.Trade, error)
	GetTradeForUpdate(ctx context.Context, id int64) (*models.Trade, error)
	GetLatestTradeInChain(ctx context.Context, originalTradeID int64) (*models.Trade, error)
	UpdateTradeStatus(ctx context.Context, id int64, status models.TradeStatus) (*models.Trade, error)
	InsertTradeAction(ctx context.Context, a models.TradeAction) (*models.TradeAction, error)
	ListTradeActions(ctx context.Context, tradeID int64) ([]models.TradeAction, error)
	InsertTradeAsset(ctx context.Context, a models.TradeAsset) (*models.TradeAsset, error)
	ListTradeAssets(ctx context.Context, tradeID int64) ([]models.TradeAsset, error)
	ListOpenTradesReferencing(ctx context.Context, leagueID uuid.UUID, seasonEndYear int, contractRootIDs, draftPickIDs []int64, excludeOriginalID int64) ([]models.Trade, error)
}

// TradeRepository is everything a trade operation touches inside one transaction
type TradeRepository interface {
	NegotiationRepository
	draftpick.PickRepository
	contract.ContractRepository
}

// App handles trade negotiation and processing
type App struct {
	tx          sqlutil.Transactor[TradeRepository]
	base        rules.Rules
	transitions contract.Transitions
	options     draftpick.OptionGraph
	clock       clockwork.Clock
	metrics     metrics.Recorder
}

// NewApp creates a new trade App
func NewApp(tx sqlutil.Transactor[TradeRepository], base rules.Rules, transitions contract.Transitions, options draftpick.OptionGraph, clock clockwork.Clock, recorder metrics.Recorder) *App {
	if recorder == nil {
		recorder = metrics.NoOp{}
	}
	return &App{
		tx:          tx,
		base:        base,
		transitions: transitions,
		options:     options,
		clock:       clock,
		metrics:     recorder,
	}
}

// Propose creates the root of a new trade chain with its teams, assets and the proposer's action
func (a *App) Propose(ctx context.Context, actor models.TeamUser, req ProposeRequest) (*models.Trade, error) {
	var created *models.Trade
	err := a.tx.InTx(ctx, func(repo TradeRepository) error {
		if _, err := directory.Authorize(ctx, repo, req.LeagueID, actor); err != nil {
			return err
		}
		teams := []uuid.UUID{actor.TeamID}
		for _, id := range req.ToTeamIDs {
			if id == actor.TeamID {
				return apperr.Validation(apperr.CodeInvalidInput, "a team cannot trade with itself")
			}
			if _, err := directory.RequireTeamInLeague(ctx, repo, req.LeagueID, id); err != nil {
				return err
			}
			teams = append(teams, id)
		}
		if len(req.ToTeamIDs) == 0 {
			return apperr.Validation(apperr.CodeInvalidInput, "a trade needs at least one other team")
		}

		var err error
		created, err = a.insertOffer(ctx, repo, actor, models.Trade{
			LeagueID:      req.LeagueID,
			SeasonEndYear: req.SeasonEndYear,
			TeamIDs:       teams,
		}, req.Assets)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to propose trade: %w", err)
	}

	log.Info().
		Str("league_id", created.LeagueID.String()).
		Int64("trade_id", created.ID).
		Str("team_id", actor.TeamID.String()).
		Int("teams", len(created.TeamIDs)).
		Msg("proposed trade")
	return created, nil
}

// insertOffer writes a PROPOSED trade, its assets and a Propose action by actor.
func (a *App) insertOffer(ctx context.Context, repo TradeRepository, actor models.TeamUser, t models.Trade, inputs []AssetInput) (*models.Trade, error) {
	assets, err := prepareAssets(ctx, repo, t.LeagueID, t.SeasonEndYear, t.TeamIDs, inputs)
	if err != nil {
		return nil, err
	}

	t.Status = models.TradeStatusProposed
	created, err := repo.InsertTrade(ctx, t)
	if err != nil {
		return nil, err
	}
	for _, asset := range assets {
		asset.TradeID = created.ID
		if _, err := repo.InsertTradeAsset(ctx, asset); err != nil {
			return nil, err
		}
	}
	if _, err := repo.InsertTradeAction(ctx, models.TradeAction{
		TradeID: created.ID,
		TeamID:  actor.TeamID,
		UserID:  actor.UserID,
		Action:  models.TradeActionPropose,
	}); err != nil {
		return nil, err
	}
	return created, nil
}

// Get retrieves a trade with its assets and actions
func (a *App) Get(ctx context.Context, tradeID int64) (*Details, error) {
	var out *Details
	err := a.tx.InTx(ctx, func(repo TradeRepository) error {
		t, err := repo.GetTrade(ctx, tradeID)
		if err != nil {
			return err
		}
		assets, err := repo.ListTradeAssets(ctx, tradeID)
		if err != nil {
			return err
		}
		actions, err := repo.ListTradeActions(ctx, tradeID)
		if err != nil {
			return err
		}
		out = &Details{Trade: *t, Assets: assets, Actions: actions}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}
	return out, nil
}

// act locks a trade and checks that actor may take a new action on it:
// the team plays in the trade and the trade is the PROPOSED head of its chain.
func (a *App) act(ctx context.Context, repo TradeRepository, actor models.TeamUser, tradeID int64) (*models.Trade, []models.TradeAction, error) {
	t, err := repo.GetTradeForUpdate(ctx, tradeID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := directory.Authorize(ctx, repo, t.LeagueID, actor); err != nil {
		return nil, nil, err
	}
	if !t.Involves(actor.TeamID) {
		return nil, nil, apperr.Validation(apperr.CodeNotAuthorized, "team %s is not part of trade %d", actor.TeamID, t.ID)
	}
	if err := requireLatest(ctx, repo, t); err != nil {
		return nil, nil, err
	}
	actions, err := repo.ListTradeActions(ctx, t.ID)
	if err != nil {
		return nil, nil, err
	}
	return t, actions, nil
}

func requireLatest(ctx context.Context, repo NegotiationRepository, t *models.Trade) error {
	latest, err := repo.GetLatestTradeInChain(ctx, t.RootID())
	if err != nil {
		return err
	}
	if latest.ID != t.ID {
		return apperr.Validation(apperr.CodeStaleTradeReference, "trade %d was superseded by trade %d", t.ID, latest.ID)
	}
	if t.Status.Terminal() {
		return apperr.Validation(apperr.CodeInvalidTransition, "trade %d is %s", t.ID, t.Status)
	}
	return nil
}

// proposer returns the team that proposed a trade.
func proposer(actions []models.TradeAction) (uuid.UUID, bool) {
	for _, act := range actions {
		if act.Action == models.TradeActionPropose {
			return act.TeamID, true
		}
	}
	return uuid.Nil, false
}

// allAgreed reports whether every team's most recent action is Propose or Accept.
func allAgreed(t models.Trade, actions []models.TradeAction) bool {
	latest := map[uuid.UUID]models.TradeActionType{}
	for _, act := range actions {
		latest[act.TeamID] = act.Action
	}
	for _, team := range t.TeamIDs {
		switch latest[team] {
		case models.TradeActionPropose, models.TradeActionAccept:
		default:
			return false
		}
	}
	return true
}

// Accept records the acting team's acceptance. Once every team has agreed the trade is validated,
// processed and conflicting trades invalidated, all in the same transaction as the acceptance.
func (a *App) Accept(ctx context.Context, actor models.TeamUser, tradeID int64) (*models.Trade, error) {
	var (
		out         *models.Trade
		invalidated []models.Trade
	)
	err := a.tx.InTx(ctx, func(repo TradeRepository) error {
		t, actions, err := a.act(ctx, repo, actor, tradeID)
		if err != nil {
			return err
		}
		accept, err := repo.InsertTradeAction(ctx, models.TradeAction{
			TradeID: t.ID,
			TeamID:  actor.TeamID,
			UserID:  actor.UserID,
			Action:  models.TradeActionAccept,
		})
		if err != nil {
			return err
		}

		if !allAgreed(*t, append(actions, *accept)) {
			out = t
			return nil
		}
		out, invalidated, err = a.processInTx(ctx, repo, t)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to accept trade: %w", err)
	}

	a.logOutcome(out, invalidated, actor.TeamID, "accepted trade")
	return out, nil
}

// Process completes a PROPOSED trade without waiting for further acceptances.
func (a *App) Process(ctx context.Context, tradeID int64) (*models.Trade, error) {
	var (
		out         *models.Trade
		invalidated []models.Trade
	)
	err := a.tx.InTx(ctx, func(repo TradeRepository) error {
		t, err := repo.GetTradeForUpdate(ctx, tradeID)
		if err != nil {
			return err
		}
		if err := requireLatest(ctx, repo, t); err != nil {
			return err
		}
		out, invalidated, err = a.processInTx(ctx, repo, t)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to process trade: %w", err)
	}

	a.logOutcome(out, invalidated, uuid.Nil, "processed trade")
	return out, nil
}

func (a *App) logOutcome(t *models.Trade, invalidated []models.Trade, teamID uuid.UUID, msg string) {
	ev := log.Info().
		Str("league_id", t.LeagueID.String()).
		Int64("trade_id", t.ID).
		Str("status", string(t.Status))
	if teamID != uuid.Nil {
		ev = ev.Str("team_id", teamID.String())
	}
	ev.Msg(msg)

	for _, other := range invalidated {
		log.Warn().
			Int64("trade_id", other.ID).
			Int64("completed_trade_id", t.ID).
			Msg("invalidated trade by external trade")
	}
}

// processInTx validates the assets, moves them, records the ledger entry, completes the trade
// and invalidates every other open trade that referenced a moved asset.
func (a *App) processInTx(ctx context.Context, repo TradeRepository, t *models.Trade) (*models.Trade, []models.Trade, error) {
	assets, err := repo.ListTradeAssets(ctx, t.ID)
	if err != nil {
		return nil, nil, err
	}
	if err := ValidateTradeAssets(ctx, repo, assets); err != nil {
		return nil, nil, err
	}
	roots, picks, err := referencedAssets(ctx, repo, assets)
	if err != nil {
		return nil, nil, err
	}

	_, r, err := leagues.Resolve(ctx, repo, a.base, t.LeagueID)
	if err != nil {
		return nil, nil, err
	}
	tradeRef := t.ID
	b, err := ledger.Begin(ctx, repo, r, models.Transaction{
		LeagueID:      t.LeagueID,
		SeasonEndYear: t.SeasonEndYear,
		Type:          models.TransactionTypeTradeCompletion,
		TradeID:       &tradeRef,
	}, a.clock.Now())
	if err != nil {
		return nil, nil, err
	}
	for _, team := range t.TeamIDs {
		if err := b.Track(ctx, team); err != nil {
			return nil, nil, err
		}
	}

	m := contract.NewModel(a.transitions, r)
	for _, asset := range assets {
		if err := a.moveAsset(ctx, repo, m, b, asset); err != nil {
			return nil, nil, err
		}
	}

	completed, err := repo.UpdateTradeStatus(ctx, t.ID, models.TradeStatusCompleted)
	if err != nil {
		return nil, nil, err
	}
	if _, _, err := b.Record(ctx); err != nil {
		return nil, nil, err
	}

	invalidated, err := a.InvalidateExternalTrades(ctx, repo, *completed, roots, picks)
	if err != nil {
		return nil, nil, err
	}
	a.metrics.RecordTransaction(string(models.TransactionTypeTradeCompletion))
	a.metrics.RecordTradesInvalidated(len(invalidated))
	return completed, invalidated, nil
}

func (a *App) moveAsset(ctx context.Context, repo TradeRepository, m contract.Model, b *ledger.Builder, asset models.TradeAsset) error {
	from, to := asset.FromTeamID, asset.ToTeamID
	switch asset.AssetType {
	case models.TradeAssetContract:
		current, err := repo.GetContract(ctx, *asset.ContractID)
		if err != nil {
			return err
		}
		saved, err := contract.ReplaceInChain(ctx, repo, *current, m.TradeToTeam(*current, to))
		if err != nil {
			return err
		}
		gone := *current
		gone.Status = models.ContractStatusReplaced
		b.Contract(from, ledger.UpdateTradedAway, gone, &to)
		b.Contract(to, ledger.UpdateAddViaTrade, *saved, &from)

	case models.TradeAssetDraftPick:
		moved, err := draftpick.Transfer(ctx, repo, *asset.DraftPickID, from, to)
		if err != nil {
			return err
		}
		options, err := repo.ListDraftPickOptionsByPick(ctx, moved.ID)
		if err != nil {
			return err
		}
		options = slices.DeleteFunc(options, func(o models.DraftPickOption) bool {
			return o.Status != models.DraftPickOptionStatusActive
		})
		b.DraftPick(from, ledger.UpdateTradedAway, *moved, draftpick.Clauses(options), &to)
		b.DraftPick(to, ledger.UpdateAddViaTrade, *moved, draftpick.Clauses(options), &from)

	case models.TradeAssetDraftPickOption:
		o, err := a.options.TransitionOption(ctx, repo, *asset.DraftPickOptionID, models.DraftPickOptionStatusActive)
		if err != nil {
			return err
		}
		p, err := repo.GetDraftPick(ctx, o.DraftPickID)
		if err != nil {
			return err
		}
		b.DraftPick(from, ledger.UpdateTradedAway, *p, []string{o.Clause}, &to)
		b.DraftPick(to, ledger.UpdateAddViaTrade, *p, []string{o.Clause}, &from)
	}
	return nil
}

// InvalidateExternalTrades marks every other open trade that references one of the given contract
// chains or picks as invalidated, along with its still-proposed options. Trades in the completed
// trade's own chain are left alone.
func (a *App) InvalidateExternalTrades(ctx context.Context, repo TradeRepository, completed models.Trade, contractRootIDs, draftPickIDs []int64) ([]models.Trade, error) {
	if len(contractRootIDs) == 0 && len(draftPickIDs) == 0 {
		return nil, nil
	}
	open, err := repo.ListOpenTradesReferencing(ctx, completed.LeagueID, completed.SeasonEndYear, contractRootIDs, draftPickIDs, completed.RootID())
	if err != nil {
		return nil, err
	}

	invalidated := make([]models.Trade, 0, len(open))
	for _, t := range open {
		updated, err := repo.UpdateTradeStatus(ctx, t.ID, models.TradeStatusInvalidatedByExternalTrade)
		if err != nil {
			return nil, err
		}
		if err := a.moveProposedOptions(ctx, repo, t.ID, models.DraftPickOptionStatusInvalidatedByExternalTrade); err != nil {
			return nil, err
		}
		invalidated = append(invalidated, *updated)
	}
	return invalidated, nil
}

// moveProposedOptions moves a trade's PROPOSED option assets to status.
func (a *App) moveProposedOptions(ctx context.Context, repo TradeRepository, tradeID int64, status models.DraftPickOptionStatus) error {
	assets, err := repo.ListTradeAssets(ctx, tradeID)
	if err != nil {
		return err
	}
	for _, asset := range assets {
		if asset.AssetType != models.TradeAssetDraftPickOption {
			continue
		}
		o, err := repo.GetDraftPickOption(ctx, *asset.DraftPickOptionID)
		if err != nil {
			return err
		}
		if o.Status != models.DraftPickOptionStatusProposed {
			continue
		}
		if _, err := a.options.TransitionOption(ctx, repo, o.ID, status); err != nil {
			return err
		}
	}
	return nil
}

// Reject ends a trade on behalf of a team that did not propose it
func (a *App) Reject(ctx context.Context, actor models.TeamUser, tradeID int64) (*models.Trade, error) {
	out, err := a.close(ctx, actor, tradeID, models.TradeActionReject, models.TradeStatusRejected, false)
	if err != nil {
		return nil, fmt.Errorf("failed to reject trade: %w", err)
	}
	return out, nil
}

// Cancel withdraws a trade on behalf of the team that proposed it
func (a *App) Cancel(ctx context.Context, actor models.TeamUser, tradeID int64) (*models.Trade, error) {
	out, err := a.close(ctx, actor, tradeID, models.TradeActionCancel, models.TradeStatusCanceled, true)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel trade: %w", err)
	}
	return out, nil
}

func (a *App) close(ctx context.Context, actor models.TeamUser, tradeID int64, action models.TradeActionType, status models.TradeStatus, byProposer bool) (*models.Trade, error) {
	var out *models.Trade
	err := a.tx.InTx(ctx, func(repo TradeRepository) error {
		t, actions, err := a.act(ctx, repo, actor, tradeID)
		if err != nil {
			return err
		}
		if err := checkProposer(actions, actor.TeamID, byProposer, action); err != nil {
			return err
		}
		out, err = a.closeInTx(ctx, repo, actor, t, action, status)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("trade_id", out.ID).
		Str("team_id", actor.TeamID.String()).
		Str("status", string(out.Status)).
		Msg("closed trade")
	return out, nil
}

func checkProposer(actions []models.TradeAction, teamID uuid.UUID, wantProposer bool, action models.TradeActionType) error {
	p, ok := proposer(actions)
	if !ok {
		return apperr.Consistency(apperr.CodeMissingRelation, nil, "trade has no propose action")
	}
	if (p == teamID) != wantProposer {
		return apperr.Validation(apperr.CodeNotAuthorized, "team %s cannot %s this trade", teamID, action)
	}
	return nil
}

func (a *App) closeInTx(ctx context.Context, repo TradeRepository, actor models.TeamUser, t *models.Trade, action models.TradeActionType, status models.TradeStatus) (*models.Trade, error) {
	if _, err := repo.InsertTradeAction(ctx, models.TradeAction{
		TradeID: t.ID,
		TeamID:  actor.TeamID,
		UserID:  actor.UserID,
		Action:  action,
	}); err != nil {
		return nil, err
	}
	if err := a.moveProposedOptions(ctx, repo, t.ID, models.DraftPickOptionStatusCancelledViaTradeRejection); err != nil {
		return nil, err
	}
	return repo.UpdateTradeStatus(ctx, t.ID, status)
}

// Counteroffer closes a trade as COUNTEROFFERED and proposes new terms between the same teams
// as the next trade in its chain.
func (a *App) Counteroffer(ctx context.Context, actor models.TeamUser, tradeID int64, assets []AssetInput) (*models.Trade, error) {
	var counter *models.Trade
	err := a.tx.InTx(ctx, func(repo TradeRepository) error {
		t, actions, err := a.act(ctx, repo, actor, tradeID)
		if err != nil {
			return err
		}
		if err := checkProposer(actions, actor.TeamID, false, models.TradeActionCounteroffer); err != nil {
			return err
		}
		if _, err := a.closeInTx(ctx, repo, actor, t, models.TradeActionCounteroffer, models.TradeStatusCounteroffered); err != nil {
			return err
		}

		prev, root := t.ID, t.RootID()
		counter, err = a.insertOffer(ctx, repo, actor, models.Trade{
			LeagueID:        t.LeagueID,
			SeasonEndYear:   t.SeasonEndYear,
			PreviousTradeID: &prev,
			OriginalTradeID: &root,
			TeamIDs:         t.TeamIDs,
		}, assets)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to counteroffer trade: %w", err)
	}

	log.Info().
		Int64("trade_id", counter.ID).
		Int64("previous_trade_id", *counter.PreviousTradeID).
		Int64("original_trade_id", *counter.OriginalTradeID).
		Str("team_id", actor.TeamID.String()).
		Msg("counteroffered trade")
	return counter, nil
}

// History returns every trade of a chain, root first
func (a *App) History(ctx context.Context, originalTradeID int64) ([]models.Trade, error) {
	var out []models.Trade
	err := a.tx.InTx(ctx, func(repo TradeRepository) error {
		latest, err := repo.GetLatestTradeInChain(ctx, originalTradeID)
		if err != nil {
			return err
		}
		for t := latest; ; {
			out = append(out, *t)
			if t.PreviousTradeID == nil {
				break
			}
			if t, err = repo.GetTrade(ctx, *t.PreviousTradeID); err != nil {
				return err
			}
		}
		slices.Reverse(out)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get trade history: %w", err)
	}
	return out, nil
}
