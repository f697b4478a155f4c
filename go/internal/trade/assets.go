package trade

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/contract"
	"github.com/mcdev12/capspace/go/internal/draftpick"
	"github.com/mcdev12/capspace/go/internal/models"
)

// AssetRepository is what asset checks read
type AssetRepository interface {
	contract.ChainRepository
	draftpick.PickRepository

	GetOpenAuctionByContract(ctx context.Context, contractID int64) (*models.Auction, error)
}

// prepareAssets checks a proposal's assets against current ownership and returns the rows to insert.
// Options given as a clause are created PROPOSED on their pick.
func prepareAssets(ctx context.Context, repo AssetRepository, leagueID uuid.UUID, seasonEndYear int, teams []uuid.UUID, inputs []AssetInput) ([]models.TradeAsset, error) {
	if len(inputs) == 0 {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "a trade must move at least one asset")
	}

	seen := map[string]bool{}
	assets := make([]models.TradeAsset, 0, len(inputs))
	for _, in := range inputs {
		if in.FromTeamID == in.ToTeamID {
			return nil, apperr.Validation(apperr.CodeInvalidInput, "asset cannot move from team %s to itself", in.FromTeamID)
		}
		if !slices.Contains(teams, in.FromTeamID) || !slices.Contains(teams, in.ToTeamID) {
			return nil, apperr.Validation(apperr.CodeInvalidInput, "asset moves between teams outside the trade")
		}

		asset := models.TradeAsset{AssetType: in.Type, FromTeamID: in.FromTeamID, ToTeamID: in.ToTeamID}
		var key string
		switch in.Type {
		case models.TradeAssetContract:
			if in.ContractID == nil {
				return nil, apperr.Validation(apperr.CodeInvalidInput, "contract asset needs a contract id")
			}
			c, err := repo.GetContract(ctx, *in.ContractID)
			if err != nil {
				return nil, err
			}
			if c.LeagueID != leagueID || c.SeasonEndYear != seasonEndYear {
				return nil, apperr.Validation(apperr.CodeInvalidInput, "contract %d is not in this league season", c.ID)
			}
			if err := checkContract(ctx, repo, *c, in.FromTeamID, apperr.Validation); err != nil {
				return nil, err
			}
			asset.ContractID = &c.ID
			key = fmt.Sprintf("contract:%d", c.RootID())

		case models.TradeAssetDraftPick:
			if in.DraftPickID == nil {
				return nil, apperr.Validation(apperr.CodeInvalidInput, "draft pick asset needs a draft pick id")
			}
			p, err := pickInLeague(ctx, repo, *in.DraftPickID, leagueID)
			if err != nil {
				return nil, err
			}
			if err := checkPick(*p, in.FromTeamID, apperr.Validation); err != nil {
				return nil, err
			}
			asset.DraftPickID = &p.ID
			key = fmt.Sprintf("pick:%d", p.ID)

		case models.TradeAssetDraftPickOption:
			o, err := proposedOption(ctx, repo, leagueID, in)
			if err != nil {
				return nil, err
			}
			asset.DraftPickOptionID = &o.ID
			key = fmt.Sprintf("option:%d", o.ID)

		default:
			return nil, apperr.Validation(apperr.CodeInvalidInput, "unknown trade asset type %q", in.Type)
		}

		if seen[key] {
			return nil, apperr.Validation(apperr.CodeInvalidInput, "asset %s appears twice", key)
		}
		seen[key] = true
		assets = append(assets, asset)
	}
	return assets, nil
}

func pickInLeague(ctx context.Context, repo AssetRepository, id int64, leagueID uuid.UUID) (*models.DraftPick, error) {
	p, err := repo.GetDraftPick(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.LeagueID != leagueID {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "draft pick %d is not in this league", p.ID)
	}
	return p, nil
}

// proposedOption resolves an option asset, creating the option when only a clause is given.
// The option's pick must belong to the granting team.
func proposedOption(ctx context.Context, repo AssetRepository, leagueID uuid.UUID, in AssetInput) (*models.DraftPickOption, error) {
	if in.DraftPickOptionID != nil {
		o, err := repo.GetDraftPickOption(ctx, *in.DraftPickOptionID)
		if err != nil {
			return nil, err
		}
		p, err := pickInLeague(ctx, repo, o.DraftPickID, leagueID)
		if err != nil {
			return nil, err
		}
		if err := checkPick(*p, in.FromTeamID, apperr.Validation); err != nil {
			return nil, err
		}
		if o.Status != models.DraftPickOptionStatusProposed {
			return nil, apperr.Validation(apperr.CodeInvalidState, "draft pick option %d is %s", o.ID, o.Status)
		}
		return o, nil
	}

	clause := strings.TrimSpace(in.Clause)
	if in.DraftPickID == nil || clause == "" {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "option asset needs an option id or a draft pick id and clause")
	}
	p, err := pickInLeague(ctx, repo, *in.DraftPickID, leagueID)
	if err != nil {
		return nil, err
	}
	if err := checkPick(*p, in.FromTeamID, apperr.Validation); err != nil {
		return nil, err
	}
	return repo.InsertDraftPickOption(ctx, models.DraftPickOption{
		DraftPickID: p.ID,
		Clause:      clause,
		Status:      models.DraftPickOptionStatusProposed,
	})
}

type failFunc func(code apperr.Code, format string, args ...any) *apperr.Error

func conflict(code apperr.Code, format string, args ...any) *apperr.Error {
	return apperr.Conflict(code, nil, format, args...)
}

// checkContract fails unless c is the active head of its chain, held by from and not up for auction.
func checkContract(ctx context.Context, repo AssetRepository, c models.Contract, from uuid.UUID, fail failFunc) error {
	latest, err := repo.GetLatestInChain(ctx, c.RootID())
	if err != nil {
		return err
	}
	if latest.ID != c.ID || c.Status != models.ContractStatusActive {
		return fail(apperr.CodeStaleTradeReference, "contract %d is no longer the active head of its chain", c.ID)
	}
	if !c.OwnedBy(from) {
		return fail(apperr.CodeAssetNotOwned, "contract %d is not held by team %s", c.ID, from)
	}
	open, err := repo.GetOpenAuctionByContract(ctx, c.ID)
	if err != nil {
		return err
	}
	if open != nil {
		return fail(apperr.CodeInvalidState, "contract %d is up for auction %d", c.ID, open.ID)
	}
	return nil
}

func checkPick(p models.DraftPick, from uuid.UUID, fail failFunc) error {
	if p.UsedAt != nil {
		return fail(apperr.CodeStaleTradeReference, "draft pick %d was used", p.ID)
	}
	if p.CurrentOwnerTeamID != from {
		return fail(apperr.CodeAssetNotOwned, "draft pick %d is not owned by team %s", p.ID, from)
	}
	return nil
}

// ValidateTradeAssets re-checks every asset of a trade against current state before it is processed.
// Contracts must still head their chain under the sending team, picks must still belong to the
// sending team and options must still be PROPOSED. Anything that moved or went up for auction is a
// retryable conflict.
func ValidateTradeAssets(ctx context.Context, repo AssetRepository, assets []models.TradeAsset) error {
	for _, a := range assets {
		switch a.AssetType {
		case models.TradeAssetContract:
			c, err := repo.GetContract(ctx, *a.ContractID)
			if err != nil {
				return err
			}
			if err := checkContract(ctx, repo, *c, a.FromTeamID, conflict); err != nil {
				return err
			}
		case models.TradeAssetDraftPick:
			p, err := repo.GetDraftPick(ctx, *a.DraftPickID)
			if err != nil {
				return err
			}
			if err := checkPick(*p, a.FromTeamID, conflict); err != nil {
				return err
			}
		case models.TradeAssetDraftPickOption:
			o, err := repo.GetDraftPickOption(ctx, *a.DraftPickOptionID)
			if err != nil {
				return err
			}
			if o.Status != models.DraftPickOptionStatusProposed {
				return conflict(apperr.CodeStaleTradeReference, "draft pick option %d is %s", o.ID, o.Status)
			}
		default:
			return apperr.Consistency(apperr.CodeInvalidState, nil, "trade asset %d has unknown type %q", a.ID, a.AssetType)
		}
	}
	return nil
}

// referencedAssets returns the contract chain roots and draft pick ids a trade touches.
// Options count as a reference to their pick.
func referencedAssets(ctx context.Context, repo AssetRepository, assets []models.TradeAsset) ([]int64, []int64, error) {
	var roots, picks []int64
	for _, a := range assets {
		switch a.AssetType {
		case models.TradeAssetContract:
			c, err := repo.GetContract(ctx, *a.ContractID)
			if err != nil {
				return nil, nil, err
			}
			roots = append(roots, c.RootID())
		case models.TradeAssetDraftPick:
			picks = append(picks, *a.DraftPickID)
		case models.TradeAssetDraftPickOption:
			o, err := repo.GetDraftPickOption(ctx, *a.DraftPickOptionID)
			if err != nil {
				return nil, nil, err
			}
			picks = append(picks, o.DraftPickID)
		}
	}
	return roots, picks, nil
}
