package draftpick

import (
	"context"
	"fmt"
	"slices"

	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/models"
)

// OptionGraph is an immutable draft pick option status graph. Statuses with no outgoing edges are terminal.
type OptionGraph struct {
	edges map[models.DraftPickOptionStatus][]models.DraftPickOptionStatus
}

// NewOptionGraph copies edges into a graph.
func NewOptionGraph(edges map[models.DraftPickOptionStatus][]models.DraftPickOptionStatus) OptionGraph {
	g := OptionGraph{edges: make(map[models.DraftPickOptionStatus][]models.DraftPickOptionStatus, len(edges))}
	for from, to := range edges {
		g.edges[from] = slices.Clone(to)
	}
	return g
}

// DefaultOptionGraph is the league's standard option lifecycle.
func DefaultOptionGraph() OptionGraph {
	return NewOptionGraph(map[models.DraftPickOptionStatus][]models.DraftPickOptionStatus{
		models.DraftPickOptionStatusProposed: {
			models.DraftPickOptionStatusActive,
			models.DraftPickOptionStatusCancelledViaTradeRejection,
			models.DraftPickOptionStatusInvalidatedByExternalTrade,
		},
		models.DraftPickOptionStatusActive: {
			models.DraftPickOptionStatusUsed,
			models.DraftPickOptionStatusCancelledViaDraftPickOptionAmendment,
		},
	})
}

// CanTransition reports whether an option may move from one status to another.
func (g OptionGraph) CanTransition(from, to models.DraftPickOptionStatus) bool {
	return slices.Contains(g.edges[from], to)
}

// OptionRepository is the option subset of PickRepository
type OptionRepository interface {
	GetDraftPickOption(ctx context.Context, id int64) (*models.DraftPickOption, error)
	UpdateDraftPickOptionStatus(ctx context.Context, id int64, status models.DraftPickOptionStatus) (*models.DraftPickOption, error)
	ListDraftPickOptionsByPick(ctx context.Context, draftPickID int64) ([]models.DraftPickOption, error)
}

// TransitionOption moves an option along the status graph.
func (g OptionGraph) TransitionOption(ctx context.Context, repo OptionRepository, id int64, to models.DraftPickOptionStatus) (*models.DraftPickOption, error) {
	o, err := repo.GetDraftPickOption(ctx, id)
	if err != nil {
		return nil, err
	}
	if !g.CanTransition(o.Status, to) {
		return nil, apperr.Validation(apperr.CodeInvalidTransition, "draft pick option %d cannot move from %s to %s", id, o.Status, to)
	}
	updated, err := repo.UpdateDraftPickOptionStatus(ctx, id, to)
	if err != nil {
		return nil, fmt.Errorf("failed to update draft pick option: %w", err)
	}
	return updated, nil
}

// TransitionPickOptions moves every option of a pick currently in status from to status to.
// Options in other statuses are left alone. The moved options are returned.
func (g OptionGraph) TransitionPickOptions(ctx context.Context, repo OptionRepository, pickID int64, from, to models.DraftPickOptionStatus) ([]models.DraftPickOption, error) {
	options, err := repo.ListDraftPickOptionsByPick(ctx, pickID)
	if err != nil {
		return nil, err
	}

	var moved []models.DraftPickOption
	for _, o := range options {
		if o.Status != from {
			continue
		}
		updated, err := g.TransitionOption(ctx, repo, o.ID, to)
		if err != nil {
			return nil, err
		}
		moved = append(moved, *updated)
	}
	return moved, nil
}

// Clauses returns the clause text of options.
func Clauses(options []models.DraftPickOption) []string {
	if len(options) == 0 {
		return nil
	}
	out := make([]string, len(options))
	for i, o := range options {
		out[i] = o.Clause
	}
	return out
}
