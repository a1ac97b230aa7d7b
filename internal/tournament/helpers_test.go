package tournament

import (
	"math/rand/v2"
	"testing"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// score is one fixed match score.
type score struct{ home, away int }

// fixedScores returns the same score for a pair in every sample; fixtures
// without an entry end 0-0.
type fixedScores map[string]score

func (f fixedScores) SimulateScores(home, away []string, samples int) ([]MatchResult, error) {
	out := make([]MatchResult, len(home))
	for i := range home {
		sc := f[home[i]+"-"+away[i]]
		out[i] = NewFixedResult(home[i], away[i], sc.home, sc.away, samples)
	}
	return out, nil
}

// randomScores draws independent scores in 0..4 from a seeded source.
type randomScores struct{ rng *rand.Rand }

func (r randomScores) SimulateScores(home, away []string, samples int) ([]MatchResult, error) {
	out := make([]MatchResult, len(home))
	for i := range home {
		m := MatchResult{
			HomeTeam:  home[i],
			AwayTeam:  away[i],
			HomeScore: make([]int, samples),
			AwayScore: make([]int, samples),
		}
		for s := 0; s < samples; s++ {
			m.HomeScore[s] = r.rng.IntN(5)
			m.AwayScore[s] = r.rng.IntN(5)
		}
		out[i] = m
	}
	return out, nil
}

// coinFlips picks knockout winners at random from a seeded source.
type coinFlips struct{ rng *rand.Rand }

func (c coinFlips) SimulateOutcome(home, away []string) ([]string, error) {
	out := make([]string, len(home))
	for i := range home {
		if c.rng.Float64() < 0.5 {
			out[i] = home[i]
		} else {
			out[i] = away[i]
		}
	}
	return out, nil
}

// ranked always advances the team listed earlier in order.
type ranked []string

func (r ranked) SimulateOutcome(home, away []string) ([]string, error) {
	pos := make(map[string]int, len(r))
	for i, t := range r {
		pos[t] = i
	}
	out := make([]string, len(home))
	for i := range home {
		out[i] = home[i]
		if pos[away[i]] < pos[home[i]] {
			out[i] = away[i]
		}
	}
	return out, nil
}

// badOutcome returns a team that is not in the fixture.
type badOutcome struct{}

func (badOutcome) SimulateOutcome(home, away []string) ([]string, error) {
	out := make([]string, len(home))
	for i := range out {
		out[i] = "Nobody"
	}
	return out, nil
}

// roundRobin lists the six fixtures of a four-team group.
func roundRobin(teams []string) []Fixture {
	pairs := [][2]int{{0, 1}, {2, 3}, {0, 2}, {3, 1}, {3, 0}, {1, 2}}
	out := make([]Fixture, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, Fixture{Stage: StageGroup, Team1: teams[p[0]], Team2: teams[p[1]]})
	}
	return out
}

// groupTeams names four teams for group name, e.g. A1..A4.
func groupTeams(name string) []string {
	return []string{name + "1", name + "2", name + "3", name + "4"}
}

// semiFinalBracket builds two groups feeding semi-finals and a final.
func semiFinalBracket() ([]Entry, []Fixture) {
	var entries []Entry
	var fixtures []Fixture
	for _, g := range []string{"A", "B"} {
		teams := groupTeams(g)
		for _, t := range teams {
			entries = append(entries, Entry{Team: t, Group: g})
		}
		fixtures = append(fixtures, roundRobin(teams)...)
	}
	fixtures = append(fixtures,
		Fixture{Stage: StageSF, Team1: "1A", Team2: "2B"},
		Fixture{Stage: StageSF, Team1: "1B", Team2: "2A"},
		Fixture{Stage: StageFinal, Team1: "1A2B", Team2: "1B2A"},
	)
	return entries, fixtures
}

// worldCupBracket builds eight groups feeding a round of 16.
func worldCupBracket() ([]Entry, []Fixture) {
	var entries []Entry
	var fixtures []Fixture
	for _, g := range []string{"A", "B", "C", "D", "E", "F", "G", "H"} {
		teams := groupTeams(g)
		for _, t := range teams {
			entries = append(entries, Entry{Team: t, Group: g})
		}
		fixtures = append(fixtures, roundRobin(teams)...)
	}
	r16 := [][2]string{
		{"1A", "2B"}, {"1C", "2D"}, {"1D", "2C"}, {"1B", "2A"},
		{"1E", "2F"}, {"1G", "2H"}, {"1F", "2E"}, {"1H", "2G"},
	}
	var winners []string
	for _, p := range r16 {
		fixtures = append(fixtures, Fixture{Stage: StageR16, Team1: p[0], Team2: p[1]})
		winners = append(winners, p[0]+p[1])
	}
	var qf []string
	for i := 0; i < len(winners); i += 2 {
		fixtures = append(fixtures, Fixture{Stage: StageQF, Team1: winners[i], Team2: winners[i+1]})
		qf = append(qf, winners[i]+winners[i+1])
	}
	fixtures = append(fixtures,
		Fixture{Stage: StageSF, Team1: qf[0], Team2: qf[1]},
		Fixture{Stage: StageSF, Team1: qf[2], Team2: qf[3]},
		Fixture{Stage: StageFinal, Team1: qf[0] + qf[1], Team2: qf[2] + qf[3]},
	)
	return entries, fixtures
}

// played is one fixed result used to build a test group.
type played struct {
	home, away string
	hs, as     int
}

// newTestGroup builds a group and loads fixed results into it.
func newTestGroup(t *testing.T, teams []string, samples int, results ...played) *Group {
	t.Helper()
	g, err := NewGroup("T", teams, samples, newRand(7))
	if err != nil {
		t.Fatalf("NewGroup: %v", err)
	}
	all := make([]MatchResult, 0, len(results))
	for _, r := range results {
		all = append(all, NewFixedResult(r.home, r.away, r.hs, r.as, samples))
	}
	if err := g.AddResults(all); err != nil {
		t.Fatalf("AddResults: %v", err)
	}
	if err := g.CalcTable(); err != nil {
		t.Fatalf("CalcTable: %v", err)
	}
	return g
}
