package deadline

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/mcdev12/capspace/go/internal/auction"
	"github.com/mcdev12/capspace/go/internal/contract"
	"github.com/mcdev12/capspace/go/internal/metrics"
	"github.com/mcdev12/capspace/go/internal/models"
	"github.com/mcdev12/capspace/go/internal/roster"
	"github.com/mcdev12/capspace/go/internal/sqlutil"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	defaultWorkers = 4

	statusSkipped = "SKIPPED"
)

// RunRepository is everything a unit of deadline work touches inside one transaction
type RunRepository interface {
	auction.AuctionRepository
	roster.RosterRepository
	UnitRepository
}

// unit is one independently committed piece of a deadline run. Its key is stable across re-runs.
type unit struct {
	key string
	run func(ctx context.Context, repo RunRepository) error
}

// Runner executes the batch work of a deadline: due auctions, season roll over and roster locks.
// Every unit commits on its own together with its DONE mark, so a re-run only does what is left.
type Runner struct {
	tx        sqlutil.Transactor[RunRepository]
	contracts *contract.App
	auctions  *auction.App
	rosters   *roster.App
	clock     clockwork.Clock
	metrics   metrics.Recorder
	workers   int
	backoff   func() backoff.BackOff
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithWorkers bounds how many units of one stage run at once
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithBackOff sets the retry policy for units that hit a concurrency conflict
func WithBackOff(policy func() backoff.BackOff) RunnerOption {
	return func(r *Runner) {
		r.backoff = policy
	}
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = 10 * time.Second
	return backoff.WithMaxRetries(b, 5)
}

// NewRunner creates a new deadline Runner
func NewRunner(tx sqlutil.Transactor[RunRepository], contracts *contract.App, auctions *auction.App, rosters *roster.App, clock clockwork.Clock, recorder metrics.Recorder, opts ...RunnerOption) *Runner {
	if recorder == nil {
		recorder = metrics.NoOp{}
	}
	r := &Runner{
		tx:        tx,
		contracts: contracts,
		auctions:  auctions,
		rosters:   rosters,
		clock:     clock,
		metrics:   recorder,
		workers:   defaultWorkers,
		backoff:   defaultBackOff,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every outstanding unit of a deadline. Failed units are recorded and reported;
// the units that succeeded stay committed and a later run retries only the rest.
func (r *Runner) Run(ctx context.Context, deadlineID int64) (*Summary, error) {
	var d *models.Deadline
	err := r.tx.InTx(ctx, func(repo RunRepository) error {
		var err error
		d, err = repo.GetDeadline(ctx, deadlineID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get deadline: %w", err)
	}

	log.Info().
		Str("league_id", d.LeagueID.String()).
		Int64("deadline_id", d.ID).
		Str("type", string(d.Type)).
		Msg("running deadline")

	sum := &Summary{DeadlineID: d.ID}
	stages := []func(context.Context, RunRepository, models.Deadline) ([]unit, error){
		r.auctionUnits,
		r.rollOverUnits,
		r.lockUnits,
	}
	for _, plan := range stages {
		var units []unit
		err := r.tx.InTx(ctx, func(repo RunRepository) error {
			var err error
			units, err = plan(ctx, repo, *d)
			return err
		})
		if err != nil {
			return sum, fmt.Errorf("failed to plan deadline units: %w", err)
		}
		if err := r.runStage(ctx, *d, units, sum); err != nil {
			return sum, err
		}
	}

	log.Info().
		Int64("deadline_id", d.ID).
		Int("done", sum.Done).
		Int("skipped", sum.Skipped).
		Int("failed", len(sum.Failed)).
		Msg("finished deadline")
	if len(sum.Failed) > 0 {
		return sum, fmt.Errorf("%d of %d deadline units failed", len(sum.Failed), sum.Done+sum.Skipped+len(sum.Failed))
	}
	return sum, nil
}

func (r *Runner) runStage(ctx context.Context, d models.Deadline, units []unit, sum *Summary) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	var mu sync.Mutex
	for _, u := range units {
		g.Go(func() error {
			skipped, err := r.runUnit(gctx, d, u)
			if ctxErr := gctx.Err(); ctxErr != nil {
				return ctxErr
			}

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				sum.Failed = append(sum.Failed, u.key)
			case skipped:
				sum.Skipped++
			default:
				sum.Done++
			}
			return nil
		})
	}
	return g.Wait()
}

// runUnit commits one unit with its DONE mark, retrying concurrency conflicts. A unit already
// DONE is skipped. Any other failure is recorded as FAILED in a transaction of its own.
func (r *Runner) runUnit(ctx context.Context, d models.Deadline, u unit) (bool, error) {
	start := r.clock.Now()
	skipped := false

	op := func() error {
		err := r.tx.InTx(ctx, func(repo RunRepository) error {
			prev, err := repo.GetDeadlineUnit(ctx, d.ID, u.key)
			if err != nil {
				return err
			}
			if prev != nil && prev.Status == models.DeadlineUnitDone {
				skipped = true
				return nil
			}
			if err := u.run(ctx, repo); err != nil {
				return err
			}
			_, err = repo.UpsertDeadlineUnit(ctx, models.DeadlineUnit{
				DeadlineID: d.ID,
				UnitKey:    u.key,
				Status:     models.DeadlineUnitDone,
				Attempts:   attempts(prev) + 1,
			})
			return err
		})
		if err != nil && !apperr.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	err := backoff.RetryNotify(op, backoff.WithContext(r.backoff(), ctx), func(err error, wait time.Duration) {
		log.Warn().
			Err(err).
			Int64("deadline_id", d.ID).
			Str("unit", u.key).
			Dur("wait", wait).
			Msg("retrying deadline unit")
	})

	status := string(models.DeadlineUnitDone)
	switch {
	case err != nil:
		status = string(models.DeadlineUnitFailed)
		r.markFailed(d, u.key, err)
	case skipped:
		status = statusSkipped
	}
	r.metrics.RecordDeadlineUnit(string(d.Type), status, r.clock.Since(start))
	return skipped, err
}

func (r *Runner) markFailed(d models.Deadline, key string, cause error) {
	log.Error().
		Err(cause).
		Int64("deadline_id", d.ID).
		Str("unit", key).
		Msg("deadline unit failed")

	// The run context may be what failed the unit; the FAILED mark is still written.
	ctx := context.Background()
	msg := cause.Error()
	err := r.tx.InTx(ctx, func(repo RunRepository) error {
		prev, err := repo.GetDeadlineUnit(ctx, d.ID, key)
		if err != nil {
			return err
		}
		_, err = repo.UpsertDeadlineUnit(ctx, models.DeadlineUnit{
			DeadlineID: d.ID,
			UnitKey:    key,
			Status:     models.DeadlineUnitFailed,
			Attempts:   attempts(prev) + 1,
			LastError:  &msg,
		})
		return err
	})
	if err != nil {
		log.Error().Err(err).Int64("deadline_id", d.ID).Str("unit", key).Msg("failed to record deadline unit failure")
	}
}

func attempts(u *models.DeadlineUnit) int {
	if u == nil {
		return 0
	}
	return u.Attempts
}

// auctionUnits resolves every open auction whose fixed end is at or before the deadline.
func (r *Runner) auctionUnits(ctx context.Context, repo RunRepository, d models.Deadline) ([]unit, error) {
	due, err := repo.ListDueAuctions(ctx, d.LeagueID, d.SeasonEndYear, d.Datetime)
	if err != nil {
		return nil, err
	}
	deadlineID := d.ID
	units := make([]unit, 0, len(due))
	for _, a := range due {
		auctionID := a.ID
		units = append(units, unit{
			key: "auction:" + strconv.FormatInt(auctionID, 10),
			run: func(ctx context.Context, repo RunRepository) error {
				_, err := r.auctions.ResolveInTx(ctx, repo, auctionID, &deadlineID)
				return err
			},
		})
	}
	return units, nil
}

// rollOverUnits carries every active contract of the season into the next one at END_OF_SEASON.
// Units are keyed by chain so a contract advanced by an earlier run is left alone.
func (r *Runner) rollOverUnits(ctx context.Context, repo RunRepository, d models.Deadline) ([]unit, error) {
	if d.Type != models.DeadlineTypeEndOfSeason {
		return nil, nil
	}
	active, err := repo.ListActiveContractsByLeague(ctx, d.LeagueID, d.SeasonEndYear)
	if err != nil {
		return nil, err
	}
	deadlineID := d.ID
	units := make([]unit, 0, len(active))
	for _, c := range active {
		root := c.RootID()
		units = append(units, unit{
			key: "rollover:contract:" + strconv.FormatInt(root, 10),
			run: func(ctx context.Context, repo RunRepository) error {
				head, err := repo.GetLatestInChain(ctx, root)
				if err != nil {
					return err
				}
				if head.Status != models.ContractStatusActive || head.SeasonEndYear != d.SeasonEndYear {
					return nil
				}
				_, err = r.contracts.RollOverInTx(ctx, repo, head.ID, &deadlineID)
				return err
			},
		})
	}
	return units, nil
}

// lockUnits validates and locks every team's roster at deadlines that lock rosters.
func (r *Runner) lockUnits(ctx context.Context, repo RunRepository, d models.Deadline) ([]unit, error) {
	if !d.Type.LocksRosters() {
		return nil, nil
	}
	teams, err := repo.ListFantasyTeamsByLeague(ctx, d.LeagueID)
	if err != nil {
		return nil, err
	}
	units := make([]unit, 0, len(teams))
	for _, t := range teams {
		teamID := t.ID
		units = append(units, unit{
			key: "lock:team:" + teamID.String(),
			run: func(ctx context.Context, repo RunRepository) error {
				_, _, err := r.rosters.LockRosterInTx(ctx, repo, teamID, d)
				return err
			},
		})
	}
	return units, nil
}
