// Package sim runs tournament simulations in parallel batches and merges
// their outcome counts.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/albapepper/scoracle-sim/internal/predictor"
	"github.com/albapepper/scoracle-sim/internal/refdata"
	"github.com/albapepper/scoracle-sim/internal/summary"
	"github.com/albapepper/scoracle-sim/internal/tournament"
)

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// PredictorFactory builds an independent predictor for one batch.
type PredictorFactory func(seed uint64) (tournament.Predictor, error)

// PoissonFactory returns a factory for the rating-based Poisson predictor.
func PoissonFactory(d *refdata.Dataset, params predictor.Params) PredictorFactory {
	ratings := d.Ratings()
	return func(seed uint64) (tournament.Predictor, error) {
		return predictor.NewPoisson(ratings, params, seed)
	}
}

// Request describes one simulation run.
type Request struct {
	Samples int
	Workers int
	Seed    uint64 // 0 picks a seed from the clock
	Policy  tournament.StandingsPolicy
	// Results are applied on top of the dataset's known results.
	Results []refdata.Result
}

// Result is the merged outcome of a run.
type Result struct {
	Summary  *summary.Summary
	Seed     uint64
	Batches  int
	Duration time.Duration
}

// Text returns a one-line description of the run.
func (r *Result) Text() string {
	return fmt.Sprintf("samples=%d batches=%d seed=%d dur=%s",
		r.Summary.Samples, r.Batches, r.Seed, r.Duration.Round(time.Millisecond))
}

// Runner simulates one dataset.
type Runner struct {
	mu           sync.RWMutex
	dataset      *refdata.Dataset
	newPredictor PredictorFactory
	logger       *slog.Logger
}

// NewRunner creates a runner for d.
func NewRunner(d *refdata.Dataset, factory PredictorFactory, logger *slog.Logger) *Runner {
	return &Runner{dataset: d, newPredictor: factory, logger: logger}
}

// Dataset returns the reference data the runner simulates.
func (r *Runner) Dataset() *refdata.Dataset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dataset
}

// Swap replaces the dataset and predictor factory. Runs already in
// progress finish on the old ones.
func (r *Runner) Swap(d *refdata.Dataset, factory PredictorFactory) {
	r.mu.Lock()
	r.dataset, r.newPredictor = d, factory
	r.mu.Unlock()
}

func (r *Runner) snapshot() (*refdata.Dataset, PredictorFactory) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dataset, r.newPredictor
}

// --------------------------------------------------------------------------
// Running
// --------------------------------------------------------------------------

// Run splits the samples across workers, each playing its own tournament
// with its own seed, and merges the summaries in batch order.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	dataset, factory := r.snapshot()
	if req.Samples < 1 {
		return nil, tournament.ErrInvalidSamples
	}
	seed := req.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	workers := req.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > req.Samples {
		workers = req.Samples
	}

	sizes := make([]int, workers)
	for i := range sizes {
		sizes[i] = req.Samples / workers
		if i < req.Samples%workers {
			sizes[i]++
		}
	}

	r.logger.Info("Simulation started",
		"dataset", dataset.Name, "samples", req.Samples, "workers", workers,
		"seed", seed, "policy", req.Policy.String())

	summaries := make([]*summary.Summary, workers)
	g, gctx := errgroup.WithContext(ctx)
	for i := range sizes {
		batchSeed := seed + uint64(i)
		g.Go(func() error {
			t, err := play(gctx, dataset, factory, sizes[i], batchSeed, req.Policy, req.Results)
			if err != nil {
				return fmt.Errorf("batch %d: %w", i, err)
			}
			s, err := summary.FromTournament(t)
			if err != nil {
				return fmt.Errorf("batch %d: %w", i, err)
			}
			summaries[i] = s
			r.logger.Debug("Batch complete", "batch", i, "samples", sizes[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.logger.Error("Simulation failed", "error", err)
		return nil, err
	}

	merged := summaries[0]
	for _, s := range summaries[1:] {
		if err := merged.Merge(s); err != nil {
			return nil, err
		}
	}

	res := &Result{Summary: merged, Seed: seed, Batches: workers, Duration: time.Since(start)}
	r.logger.Info("Simulation complete", "summary", res.Text())
	return res, nil
}

// Play builds and plays one tournament of samples.
func (r *Runner) Play(ctx context.Context, samples int, seed uint64, policy tournament.StandingsPolicy, extra []refdata.Result) (*tournament.Tournament, error) {
	dataset, factory := r.snapshot()
	return play(ctx, dataset, factory, samples, seed, policy, extra)
}

func play(ctx context.Context, dataset *refdata.Dataset, factory PredictorFactory, samples int, seed uint64, policy tournament.StandingsPolicy, extra []refdata.Result) (*tournament.Tournament, error) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	t, err := tournament.New(dataset.Entries(), dataset.TournamentFixtures(), samples, rng)
	if err != nil {
		return nil, err
	}
	if err := dataset.ApplyResults(t); err != nil {
		return nil, err
	}
	if len(extra) > 0 {
		overlay := refdata.Dataset{Results: extra}
		if err := overlay.ApplyResults(t); err != nil {
			return nil, err
		}
	}

	p, err := factory(seed)
	if err != nil {
		return nil, fmt.Errorf("build predictor: %w", err)
	}
	if err := t.PlayGroupStage(ctx, p, policy); err != nil {
		return nil, err
	}
	if err := t.PlayKnockoutStages(ctx, p); err != nil {
		return nil, err
	}
	return t, nil
}
