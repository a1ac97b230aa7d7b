// Package tournament simulates a group stage followed by knockout rounds
// across many independent samples at once. Every per-match and per-team
// quantity is a vector indexed by sample.
package tournament

import (
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Stages and progress
// --------------------------------------------------------------------------

// Stage is a fixture stage token as it appears in reference data.
type Stage string

const (
	StageGroup Stage = "Group"
	StageR16   Stage = "R16"
	StageQF    Stage = "QF"
	StageSF    Stage = "SF"
	StageFinal Stage = "F"
)

// KnockoutStages lists the knockout rounds in the order they are played.
var KnockoutStages = []Stage{StageR16, StageQF, StageSF, StageFinal}

// ParseStage validates a stage token.
func ParseStage(s string) (Stage, error) {
	switch st := Stage(strings.TrimSpace(s)); st {
	case StageGroup, StageR16, StageQF, StageSF, StageFinal:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStage, s)
}

// IsKnockout reports whether the stage is played as a single-winner tie.
func (s Stage) IsKnockout() bool {
	return s == StageR16 || s == StageQF || s == StageSF || s == StageFinal
}

// Progress is how far a team got in one sample.
type Progress string

const (
	ProgressGroup    Progress = "G"
	ProgressR16      Progress = "R16"
	ProgressQF       Progress = "QF"
	ProgressSF       Progress = "SF"
	ProgressRunnerUp Progress = "RU"
	ProgressWinner   Progress = "W"
)

// ProgressOrder lists progress values from shallowest to deepest.
var ProgressOrder = []Progress{
	ProgressGroup, ProgressR16, ProgressQF, ProgressSF, ProgressRunnerUp, ProgressWinner,
}

// Rank returns the depth of p, or -1 if p is not a known value.
func (p Progress) Rank() int {
	for i, v := range ProgressOrder {
		if v == p {
			return i
		}
	}
	return -1
}

// entryProgress is the progress recorded for a team that takes part in a
// knockout stage.
func entryProgress(s Stage) Progress {
	switch s {
	case StageR16:
		return ProgressR16
	case StageQF:
		return ProgressQF
	case StageSF:
		return ProgressSF
	case StageFinal:
		return ProgressRunnerUp
	}
	return ProgressGroup
}

// LegacyProgressForKeyLength maps an alias key length to the stage a team
// in that column was knocked out at, for brackets keyed with one-character
// group names: "1A" (2) lost in the R16, "1A2B" (4) in the QF and so on.
func LegacyProgressForKeyLength(n int) (Progress, bool) {
	switch n {
	case 2:
		return ProgressR16, true
	case 4:
		return ProgressQF, true
	case 8:
		return ProgressSF, true
	case 16:
		return ProgressRunnerUp, true
	}
	return "", false
}

// --------------------------------------------------------------------------
// Reference data
// --------------------------------------------------------------------------

// Entry places a team in a group.
type Entry struct {
	Team  string
	Group string
}

// Fixture is one scheduled match. Group fixtures name teams; knockout
// fixtures name alias slots such as "1A" or "1A2B".
type Fixture struct {
	Stage Stage
	Team1 string
	Team2 string
}

// Key is the alias under which the winner of a knockout fixture is stored.
func (f Fixture) Key() string {
	return f.Team1 + f.Team2
}

// --------------------------------------------------------------------------
// Results
// --------------------------------------------------------------------------

// MatchResult holds one fixture's scores for every sample.
type MatchResult struct {
	HomeTeam  string
	AwayTeam  string
	HomeScore []int
	AwayScore []int
}

// NewFixedResult repeats a single known score across all samples.
func NewFixedResult(home, away string, homeScore, awayScore, samples int) MatchResult {
	r := MatchResult{
		HomeTeam:  home,
		AwayTeam:  away,
		HomeScore: make([]int, samples),
		AwayScore: make([]int, samples),
	}
	for i := 0; i < samples; i++ {
		r.HomeScore[i] = homeScore
		r.AwayScore[i] = awayScore
	}
	return r
}

// Validate checks the vector lengths and that scores are non-negative.
func (r MatchResult) Validate(samples int) error {
	if len(r.HomeScore) != samples || len(r.AwayScore) != samples {
		return fmt.Errorf("%w: %s v %s has %d/%d scores, want %d",
			ErrMalformedResult, r.HomeTeam, r.AwayTeam, len(r.HomeScore), len(r.AwayScore), samples)
	}
	for i := 0; i < samples; i++ {
		if r.HomeScore[i] < 0 || r.AwayScore[i] < 0 {
			return fmt.Errorf("%w: %s v %s has a negative score in sample %d",
				ErrMalformedResult, r.HomeTeam, r.AwayTeam, i)
		}
	}
	return nil
}

// involves reports whether the result is between a and b in either order.
func (r MatchResult) involves(a, b string) bool {
	return (r.HomeTeam == a && r.AwayTeam == b) || (r.HomeTeam == b && r.AwayTeam == a)
}

// --------------------------------------------------------------------------
// Collaborators
// --------------------------------------------------------------------------

// ScorePredictor simulates scores for a batch of fixtures. It returns one
// MatchResult per fixture, in input order, each with vectors of length
// samples.
type ScorePredictor interface {
	SimulateScores(home, away []string, samples int) ([]MatchResult, error)
}

// OutcomePredictor picks a winner for one knockout fixture in every sample.
// home[i] and away[i] are the teams meeting in sample i; the result must
// name one of them for every i.
type OutcomePredictor interface {
	SimulateOutcome(home, away []string) ([]string, error)
}

// Predictor is the full collaborator needed to play a tournament.
type Predictor interface {
	ScorePredictor
	OutcomePredictor
}

// RandomSource breaks ties that no metric resolves. *math/rand/v2.Rand
// satisfies it.
type RandomSource interface {
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}
