// Package predictor provides match predictors for the tournament simulator.
package predictor

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/albapepper/scoracle-sim/internal/tournament"
)

// ErrUnknownTeam is returned for a team without a rating.
var ErrUnknownTeam = errors.New("no rating for team")

// Params tunes the Poisson model.
type Params struct {
	// BaseGoals is the expected goals per team when ratings are equal.
	BaseGoals float64
	// EloScale is the Elo scale. A gap of EloScale gives 10:1 win odds and
	// a gap of twice EloScale a 10:1 ratio of expected goals.
	EloScale float64
	// HomeAdvantage is added to the home team's rating.
	HomeAdvantage float64
}

// DefaultParams fit a neutral-venue tournament.
var DefaultParams = Params{BaseGoals: 1.35, EloScale: 400}

// Poisson draws independent Poisson scores for each side with rates set by
// the rating gap. It is not safe for concurrent use.
type Poisson struct {
	ratings map[string]float64
	params  Params
	rng     *rand.Rand
}

var _ tournament.Predictor = (*Poisson)(nil)

// NewPoisson builds a seeded predictor.
func NewPoisson(ratings map[string]float64, params Params, seed uint64) (*Poisson, error) {
	if params.BaseGoals <= 0 {
		return nil, fmt.Errorf("base goals must be positive, got %v", params.BaseGoals)
	}
	if params.EloScale <= 0 {
		return nil, fmt.Errorf("elo scale must be positive, got %v", params.EloScale)
	}
	return &Poisson{
		ratings: ratings,
		params:  params,
		rng:     rand.New(rand.NewPCG(seed, seed^0x5bd1e995)),
	}, nil
}

// ExpectedGoals returns the scoring rate of each side.
func (p *Poisson) ExpectedGoals(home, away string) (float64, float64, error) {
	diff, err := p.ratingDiff(home, away)
	if err != nil {
		return 0, 0, err
	}
	shift := math.Pow(10, diff/(4*p.params.EloScale))
	return p.params.BaseGoals * shift, p.params.BaseGoals / shift, nil
}

// WinProbability is the Elo expectation that home beats away.
func (p *Poisson) WinProbability(home, away string) (float64, error) {
	diff, err := p.ratingDiff(home, away)
	if err != nil {
		return 0, err
	}
	return 1 / (1 + math.Pow(10, -diff/p.params.EloScale)), nil
}

func (p *Poisson) ratingDiff(home, away string) (float64, error) {
	rh, ok := p.ratings[home]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTeam, home)
	}
	ra, ok := p.ratings[away]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTeam, away)
	}
	return rh + p.params.HomeAdvantage - ra, nil
}

// SimulateScores draws samples scores for every fixture.
func (p *Poisson) SimulateScores(home, away []string, samples int) ([]tournament.MatchResult, error) {
	if len(home) != len(away) {
		return nil, fmt.Errorf("got %d home teams and %d away teams", len(home), len(away))
	}
	out := make([]tournament.MatchResult, len(home))
	for i := range home {
		lh, la, err := p.ExpectedGoals(home[i], away[i])
		if err != nil {
			return nil, err
		}
		m := tournament.MatchResult{
			HomeTeam:  home[i],
			AwayTeam:  away[i],
			HomeScore: make([]int, samples),
			AwayScore: make([]int, samples),
		}
		for s := 0; s < samples; s++ {
			m.HomeScore[s] = p.goals(lh)
			m.AwayScore[s] = p.goals(la)
		}
		out[i] = m
	}
	return out, nil
}

// SimulateOutcome plays one knockout tie per sample. A level score goes to
// a shootout won with the Elo expectation.
func (p *Poisson) SimulateOutcome(home, away []string) ([]string, error) {
	if len(home) != len(away) {
		return nil, fmt.Errorf("got %d home teams and %d away teams", len(home), len(away))
	}
	out := make([]string, len(home))
	for s := range home {
		lh, la, err := p.ExpectedGoals(home[s], away[s])
		if err != nil {
			return nil, err
		}
		hs, as := p.goals(lh), p.goals(la)
		switch {
		case hs > as:
			out[s] = home[s]
		case as > hs:
			out[s] = away[s]
		default:
			pw, _ := p.WinProbability(home[s], away[s])
			if p.rng.Float64() < pw {
				out[s] = home[s]
			} else {
				out[s] = away[s]
			}
		}
	}
	return out, nil
}

func (p *Poisson) goals(lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	return int(distuv.Poisson{Lambda: lambda, Src: p.rng}.Rand())
}
