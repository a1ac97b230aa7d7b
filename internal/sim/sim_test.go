package sim

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/albapepper/scoracle-sim/internal/predictor"
	"github.com/albapepper/scoracle-sim/internal/refdata"
	"github.com/albapepper/scoracle-sim/internal/tournament"
)

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	d, err := refdata.Default()
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRunner(d, PoissonFactory(d, predictor.DefaultParams), logger)
}

func TestRun_SplitsAndMerges(t *testing.T) {
	r := newTestRunner(t)
	res, err := r.Run(context.Background(), Request{Samples: 301, Workers: 4, Seed: 9})
	if err != nil {
		t.Fatal(err)
	}
	if res.Summary.Samples != 301 || res.Batches != 4 || res.Seed != 9 {
		t.Fatalf("unexpected result: %s", res.Text())
	}
	for _, ts := range res.Summary.Teams() {
		if ts.Samples != 301 {
			t.Fatalf("%s counted over %d samples", ts.Team, ts.Samples)
		}
	}
}

func TestRun_Deterministic(t *testing.T) {
	r := newTestRunner(t)
	req := Request{Samples: 200, Workers: 3, Seed: 5, Policy: tournament.PolicyHeadToHead}
	a, err := r.Run(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Run(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	for _, ta := range a.Summary.Teams() {
		tb, _ := b.Summary.Team(ta.Team)
		for p, n := range ta.Progress {
			if tb.Progress[p] != n {
				t.Fatalf("%s %s: %d v %d", ta.Team, p, n, tb.Progress[p])
			}
		}
	}
}

func TestRun_ExtraResults(t *testing.T) {
	r := newTestRunner(t)
	res, err := r.Run(context.Background(), Request{
		Samples: 100,
		Workers: 2,
		Seed:    1,
		Results: []refdata.Result{
			{Stage: "Group", Team1: "Qatar", Team2: "Ecuador", Score1: 10, Score2: 0},
			{Stage: "Group", Team1: "Senegal", Team2: "Qatar", Score1: 0, Score2: 10},
			{Stage: "Group", Team1: "Qatar", Team2: "Netherlands", Score1: 10, Score2: 0},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	qatar, _ := res.Summary.Team("Qatar")
	if qatar.PositionProbability(0) != 1 {
		t.Fatalf("Qatar top of group in %.2f of samples", qatar.PositionProbability(0))
	}
}

func TestRun_Errors(t *testing.T) {
	r := newTestRunner(t)
	if _, err := r.Run(context.Background(), Request{Samples: 0}); !errors.Is(err, tournament.ErrInvalidSamples) {
		t.Errorf("zero samples: got %v", err)
	}

	broken := errors.New("no model")
	r.newPredictor = func(uint64) (tournament.Predictor, error) { return nil, broken }
	if _, err := r.Run(context.Background(), Request{Samples: 10, Workers: 2, Seed: 1}); !errors.Is(err, broken) {
		t.Errorf("factory error: got %v", err)
	}

	r = newTestRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Run(ctx, Request{Samples: 10, Seed: 1}); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled: got %v", err)
	}

	bad := []refdata.Result{{Stage: "Group", Team1: "Qatar", Team2: "Brazil", Score1: 1}}
	if _, err := r.Run(context.Background(), Request{Samples: 10, Seed: 1, Results: bad}); !errors.Is(err, tournament.ErrFixtureNotFound) {
		t.Errorf("bad extra result: got %v", err)
	}
}

func TestSwap(t *testing.T) {
	r := newTestRunner(t)
	next, err := refdata.Default()
	if err != nil {
		t.Fatal(err)
	}
	next.MergeResults([]refdata.Result{
		{Stage: "Group", Team1: "Qatar", Team2: "Ecuador", Score1: 5, Score2: 0},
		{Stage: "Group", Team1: "Qatar", Team2: "Senegal", Score1: 5, Score2: 0},
		{Stage: "Group", Team1: "Netherlands", Team2: "Qatar", Score1: 0, Score2: 5},
	})
	r.Swap(next, PoissonFactory(next, predictor.DefaultParams))
	if r.Dataset() != next {
		t.Fatal("Dataset() should return the swapped dataset")
	}

	res, err := r.Run(context.Background(), Request{Samples: 50, Workers: 2, Seed: 3})
	if err != nil {
		t.Fatal(err)
	}
	qatar, _ := res.Summary.Team("Qatar")
	if got := qatar.PositionProbability(0); got != 1 {
		t.Errorf("Qatar top of group in %.2f of samples, want 1", got)
	}
}
