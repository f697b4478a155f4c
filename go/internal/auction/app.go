package auction

import (
	"context"
	"fmt"
	"time"

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

// BidRepository defines the auction table operations
type BidRepository interface {
	InsertAuction(ctx context.Context, a models.Auction) (*models.Auction, error)
	GetAuction(ctx context.Context, id int64) (*models.Auction, error)
	GetAuctionForUpdate(ctx context.Context, id int64) (*models.Auction, error)
	GetOpenAuctionByContract(ctx context.Context, contractID int64) (*models.Auction, error)
	ListDueAuctions(ctx context.Context, leagueID uuid.UUID, seasonEndYear int, dueBy time.Time) ([]models.Auction, error)
	CloseAuction(ctx context.Context, id int64, closedAt time.Time, resultContractID *int64) (*models.Auction, error)
	InsertAuctionBid(ctx context.Context, b models.AuctionBid) (*models.AuctionBid, error)
	GetHighestBid(ctx context.Context, auctionID int64) (*models.AuctionBid, error)
	ListAuctionBids(ctx context.Context, auctionID int64) ([]models.AuctionBid, error)
}

// AuctionRepository is everything an auction operation touches inside one transaction
type AuctionRepository interface {
	BidRepository
	contract.ContractRepository
}

// App handles auction business logic
type App struct {
	tx          sqlutil.Transactor[AuctionRepository]
	base        rules.Rules
	transitions contract.Transitions
	clock       clockwork.Clock
	metrics     metrics.Recorder
}

// NewApp creates a new auction App
func NewApp(tx sqlutil.Transactor[AuctionRepository], base rules.Rules, transitions contract.Transitions, clock clockwork.Clock, recorder metrics.Recorder) *App {
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

// Auctionable reports whether contracts of type t may be put up for auction.
func Auctionable(t models.ContractType) bool {
	switch t {
	case models.ContractTypeRestrictedFreeAgent, models.ContractTypeUFAOriginalTeam, models.ContractTypeUFAVeteran,
		models.ContractTypeFreeAgent, models.ContractTypeVeteran:
		return true
	}
	return false
}

// Create opens an auction on an active free agency, free agent or veteran contract.
// The soft and fixed ends come from the league's auction windows.
func (a *App) Create(ctx context.Context, req CreateAuctionRequest) (*models.Auction, error) {
	if req.MinimumBidAmount < 1 {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "minimum bid must be at least 1, got %d", req.MinimumBidAmount)
	}

	var created *models.Auction
	err := a.tx.InTx(ctx, func(repo AuctionRepository) error {
		c, err := repo.GetContract(ctx, req.ContractID)
		if err != nil {
			return err
		}
		if c.Status != models.ContractStatusActive {
			return apperr.Validation(apperr.CodeInvalidState, "contract %d is %s", c.ID, c.Status)
		}
		if !Auctionable(c.ContractType) {
			return apperr.Validation(apperr.CodeInvalidState, "%s contracts cannot be auctioned", c.ContractType)
		}
		_, r, err := leagues.Resolve(ctx, repo, a.base, c.LeagueID)
		if err != nil {
			return err
		}

		start := a.clock.Now()
		if req.StartTimestamp != nil {
			start = *req.StartTimestamp
		}
		created, err = repo.InsertAuction(ctx, models.Auction{
			LeagueID:          c.LeagueID,
			SeasonEndYear:     c.SeasonEndYear,
			ContractID:        c.ID,
			MinimumBidAmount:  req.MinimumBidAmount,
			StartTimestamp:    start,
			SoftEndTimestamp:  start.Add(r.Auction.SoftEnd()),
			FixedEndTimestamp: start.Add(r.Auction.FixedEnd()),
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create auction: %w", err)
	}

	log.Info().
		Str("league_id", created.LeagueID.String()).
		Int64("auction_id", created.ID).
		Int64("contract_id", created.ContractID).
		Int("minimum_bid", created.MinimumBidAmount).
		Time("fixed_end", created.FixedEndTimestamp).
		Msg("created auction")
	return created, nil
}

// Get retrieves an auction by ID
func (a *App) Get(ctx context.Context, id int64) (*models.Auction, error) {
	var out *models.Auction
	err := a.tx.InTx(ctx, func(repo AuctionRepository) error {
		var err error
		out, err = repo.GetAuction(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	return out, nil
}

// ListBids retrieves an auction's accepted bids, oldest first
func (a *App) ListBids(ctx context.Context, auctionID int64) ([]models.AuctionBid, error) {
	var out []models.AuctionBid
	err := a.tx.InTx(ctx, func(repo AuctionRepository) error {
		var err error
		out, err = repo.ListAuctionBids(ctx, auctionID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list auction bids: %w", err)
	}
	return out, nil
}

// PlaceBid accepts a bid only if it beats both the minimum bid and the current high bid.
// The auction row stays locked from the comparison until the insert commits.
func (a *App) PlaceBid(ctx context.Context, actor models.TeamUser, auctionID int64, amount int) (*models.AuctionBid, error) {
	var bid *models.AuctionBid
	err := a.tx.InTx(ctx, func(repo AuctionRepository) error {
		auc, err := repo.GetAuctionForUpdate(ctx, auctionID)
		if err != nil {
			return err
		}
		if _, err := directory.Authorize(ctx, repo, auc.LeagueID, actor); err != nil {
			return err
		}

		now := a.clock.Now()
		if !auc.Open(now) {
			return apperr.Validation(apperr.CodeAuctionClosed, "auction %d is not accepting bids", auc.ID)
		}
		if _, moved, err := auctionedContract(ctx, repo, *auc); err != nil {
			return err
		} else if moved {
			return apperr.Validation(apperr.CodeAuctionClosed, "contract %d of auction %d has moved", auc.ContractID, auc.ID)
		}

		floor := auc.MinimumBidAmount
		highest, err := repo.GetHighestBid(ctx, auc.ID)
		if err != nil {
			return err
		}
		if highest != nil {
			floor = max(floor, highest.Amount)
		}
		if amount <= floor {
			return apperr.Validation(apperr.CodeBidTooLow, "bid %d must exceed %d", amount, floor)
		}

		bid, err = repo.InsertAuctionBid(ctx, models.AuctionBid{
			AuctionID: auc.ID,
			TeamID:    actor.TeamID,
			UserID:    actor.UserID,
			Amount:    amount,
			CreatedAt: now,
		})
		return err
	})
	if err != nil {
		if e, ok := apperr.As(err); ok && e.Kind == apperr.KindValidation {
			a.metrics.RecordBidRejected(string(e.Code))
			log.Warn().
				Int64("auction_id", auctionID).
				Str("team_id", actor.TeamID.String()).
				Int("amount", amount).
				Str("reason", string(e.Code)).
				Msg("rejected bid")
		}
		return nil, fmt.Errorf("failed to place bid: %w", err)
	}

	log.Info().
		Int64("auction_id", auctionID).
		Str("team_id", actor.TeamID.String()).
		Int("amount", amount).
		Msg("placed bid")
	return bid, nil
}

// Resolve closes an auction once its fixed end has passed. Without bids the contract expires;
// otherwise the highest bidder signs it. Resolving a closed auction is a no-op.
func (a *App) Resolve(ctx context.Context, auctionID int64) (*Result, error) {
	var res *Result
	err := a.tx.InTx(ctx, func(repo AuctionRepository) error {
		var err error
		res, err = a.ResolveInTx(ctx, repo, auctionID, nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve auction: %w", err)
	}

	ev := log.Info().
		Str("league_id", res.Auction.LeagueID.String()).
		Int64("auction_id", res.Auction.ID).
		Bool("already_resolved", res.AlreadyResolved).
		Bool("voided", res.Voided)
	if res.WinningBid != nil {
		ev = ev.Str("winning_team_id", res.WinningBid.TeamID.String()).Int("winning_bid", res.WinningBid.Amount)
	}
	ev.Msg("resolved auction")
	return res, nil
}

// ResolveInTx resolves an auction inside the caller's transaction, linking the ledger record to deadlineID.
func (a *App) ResolveInTx(ctx context.Context, repo AuctionRepository, auctionID int64, deadlineID *int64) (*Result, error) {
	auc, err := repo.GetAuctionForUpdate(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if auc.ClosedAt != nil {
		return &Result{Auction: *auc, AlreadyResolved: true}, nil
	}
	now := a.clock.Now()
	if now.Before(auc.FixedEndTimestamp) {
		return nil, apperr.Validation(apperr.CodeAuctionStillOpen, "auction %d is open until %s", auc.ID, auc.FixedEndTimestamp.Format(time.RFC3339))
	}

	current, moved, err := auctionedContract(ctx, repo, *auc)
	if err != nil {
		return nil, err
	}
	if moved {
		closed, err := repo.CloseAuction(ctx, auc.ID, now, nil)
		if err != nil {
			return nil, err
		}
		log.Warn().
			Int64("auction_id", auc.ID).
			Int64("contract_id", auc.ContractID).
			Msg("voided auction on moved contract")
		return &Result{Auction: *closed, Voided: true}, nil
	}
	_, r, err := leagues.Resolve(ctx, repo, a.base, auc.LeagueID)
	if err != nil {
		return nil, err
	}
	m := contract.NewModel(a.transitions, r)

	highest, err := repo.GetHighestBid(ctx, auc.ID)
	if err != nil {
		return nil, err
	}

	var next models.Contract
	switch {
	case highest == nil:
		next, err = m.Expire(*current)
	case current.ContractType.IsFreeAgency():
		next, err = m.SignFreeAgentExtension(*current, highest.TeamID, highest.Amount)
	default:
		next, err = m.SignVeteranOrFreeAgent(*current, highest.TeamID, highest.Amount)
	}
	if err != nil {
		return nil, err
	}

	holder := current.TeamID
	var winner *uuid.UUID
	if highest != nil {
		winner = &highest.TeamID
	}
	txTeam := winner
	if txTeam == nil {
		txTeam = holder
	}

	auctionRef := auc.ID
	b, err := ledger.Begin(ctx, repo, r, models.Transaction{
		LeagueID:      auc.LeagueID,
		SeasonEndYear: current.SeasonEndYear,
		Type:          models.TransactionTypeAuctionClose,
		DeadlineID:    deadlineID,
		TeamID:        txTeam,
		AuctionID:     &auctionRef,
	}, now)
	if err != nil {
		return nil, err
	}
	if winner != nil {
		if err := b.Track(ctx, *winner); err != nil {
			return nil, err
		}
	}
	lost := holder != nil && (winner == nil || *holder != *winner)
	if lost {
		if err := b.Track(ctx, *holder); err != nil {
			return nil, err
		}
	}

	saved, err := contract.ReplaceInChain(ctx, repo, *current, next)
	if err != nil {
		return nil, err
	}
	b.SetContractID(saved.ID)

	if winner != nil {
		b.Contract(*winner, ledger.UpdateAddViaAuction, *saved, holder)
	}
	if lost {
		gone := *current
		gone.Status = models.ContractStatusReplaced
		updateType := ledger.UpdateDrop
		if current.ContractType.IsFreeAgency() {
			updateType = ledger.UpdateLostViaFreeAgency
		}
		b.Contract(*holder, updateType, gone, winner)
	}

	closed, err := repo.CloseAuction(ctx, auc.ID, now, &saved.ID)
	if err != nil {
		return nil, err
	}
	if _, _, err := b.Record(ctx); err != nil {
		return nil, err
	}
	a.metrics.RecordTransaction(string(models.TransactionTypeAuctionClose))

	return &Result{Auction: *closed, Contract: saved, WinningBid: highest}, nil
}

// auctionedContract loads the auction's contract and reports whether it stopped being the active
// head of its chain after the auction opened.
func auctionedContract(ctx context.Context, repo AuctionRepository, auc models.Auction) (*models.Contract, bool, error) {
	c, err := repo.GetContract(ctx, auc.ContractID)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, false, apperr.Consistency(apperr.CodeMissingRelation, err, "auction %d has no contract", auc.ID)
		}
		return nil, false, err
	}
	head, err := repo.GetLatestInChain(ctx, c.RootID())
	if err != nil {
		return nil, false, err
	}
	return c, head.ID != c.ID || c.Status != models.ContractStatusActive, nil
}
