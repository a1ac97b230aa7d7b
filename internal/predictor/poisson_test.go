package predictor

import (
	"errors"
	"math"
	"slices"
	"testing"
)

var ratings = map[string]float64{"Strong": 2000, "Weak": 1600, "Even": 1600}

func TestNewPoisson_RejectsBadParams(t *testing.T) {
	if _, err := NewPoisson(ratings, Params{BaseGoals: 0, EloScale: 400}, 1); err == nil {
		t.Error("expected error for zero base goals")
	}
	if _, err := NewPoisson(ratings, Params{BaseGoals: 1, EloScale: 0}, 1); err == nil {
		t.Error("expected error for zero scale")
	}
}

func TestExpectedGoals(t *testing.T) {
	p, _ := NewPoisson(ratings, DefaultParams, 1)
	lh, la, err := p.ExpectedGoals("Weak", "Even")
	if err != nil {
		t.Fatal(err)
	}
	if lh != DefaultParams.BaseGoals || la != DefaultParams.BaseGoals {
		t.Errorf("equal ratings: got %v/%v", lh, la)
	}
	lh, la, _ = p.ExpectedGoals("Strong", "Weak")
	if lh <= la {
		t.Errorf("stronger side should score more: %v v %v", lh, la)
	}
	if math.Abs(lh*la-DefaultParams.BaseGoals*DefaultParams.BaseGoals) > 1e-9 {
		t.Errorf("rates should keep their product: %v", lh*la)
	}
	if _, _, err := p.ExpectedGoals("Strong", "Nobody"); !errors.Is(err, ErrUnknownTeam) {
		t.Errorf("unknown team: got %v", err)
	}
}

func TestSimulateScores_MeanAndShape(t *testing.T) {
	const samples = 20000
	p, _ := NewPoisson(ratings, DefaultParams, 42)
	res, err := p.SimulateScores([]string{"Weak", "Strong"}, []string{"Even", "Weak"}, samples)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 2 || len(res[0].HomeScore) != samples || len(res[1].AwayScore) != samples {
		t.Fatal("unexpected result shape")
	}
	sum := 0
	for _, g := range res[0].HomeScore {
		if g < 0 {
			t.Fatalf("negative goals %d", g)
		}
		sum += g
	}
	mean := float64(sum) / samples
	if math.Abs(mean-DefaultParams.BaseGoals) > 0.05 {
		t.Errorf("mean goals %.3f, want about %.2f", mean, DefaultParams.BaseGoals)
	}
}

func TestSimulateOutcome(t *testing.T) {
	const samples = 5000
	home := slices.Repeat([]string{"Strong"}, samples)
	away := slices.Repeat([]string{"Weak"}, samples)

	p, _ := NewPoisson(ratings, DefaultParams, 7)
	winners, err := p.SimulateOutcome(home, away)
	if err != nil {
		t.Fatal(err)
	}
	strong := 0
	for _, w := range winners {
		if w != "Strong" && w != "Weak" {
			t.Fatalf("winner %q is not in the tie", w)
		}
		if w == "Strong" {
			strong++
		}
	}
	if strong < samples*7/10 {
		t.Errorf("Strong won %d of %d ties", strong, samples)
	}

	again, _ := NewPoisson(ratings, DefaultParams, 7)
	replay, _ := again.SimulateOutcome(home, away)
	if !slices.Equal(winners, replay) {
		t.Error("same seed produced different outcomes")
	}
}

func TestSimulateScores_HighRate(t *testing.T) {
	const samples = 20000
	params := Params{BaseGoals: 15, EloScale: 400}
	p, _ := NewPoisson(ratings, params, 3)
	res, err := p.SimulateScores([]string{"Weak"}, []string{"Even"}, samples)
	if err != nil {
		t.Fatal(err)
	}
	var sum, sq float64
	for _, g := range res[0].HomeScore {
		sum += float64(g)
		sq += float64(g * g)
	}
	mean := sum / samples
	variance := sq/samples - mean*mean
	if math.Abs(mean-params.BaseGoals) > 0.2 {
		t.Errorf("mean goals %.3f, want about %.0f", mean, params.BaseGoals)
	}
	if math.Abs(variance-params.BaseGoals) > 1 {
		t.Errorf("variance %.3f, want about %.0f", variance, params.BaseGoals)
	}
}
