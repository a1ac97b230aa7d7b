package tournament

import (
	"context"
	"fmt"
	"slices"
	"sort"
)

// forcedWinner is a manually entered knockout result. It overrides the
// predictor in every sample where the two teams meet in that stage.
type forcedWinner struct {
	teamA, teamB string
	winner       string
}

// Tournament runs one simulation of the group stage and knockout rounds
// over a fixed number of samples.
type Tournament struct {
	samples  int
	rng      RandomSource
	fixtures []Fixture

	groups     map[string]*Group
	groupNames []string
	teamGroup  map[string]string

	manualGroup    map[string]MatchResult // keyed by pairKey
	manualKnockout map[Stage][]forcedWinner

	aliases          *AliasTable
	groupStagePlayed bool
	complete         bool
	winner           []string
}

// New builds a tournament from rosters and fixtures. rng breaks ties in
// group standings.
func New(entries []Entry, fixtures []Fixture, samples int, rng RandomSource) (*Tournament, error) {
	if samples < 1 {
		return nil, ErrInvalidSamples
	}
	if rng == nil {
		return nil, fmt.Errorf("tournament needs a random source")
	}

	teamGroup := make(map[string]string, len(entries))
	members := make(map[string][]string)
	for _, e := range entries {
		if prev, dup := teamGroup[e.Team]; dup {
			return nil, fmt.Errorf("team %s is in groups %s and %s", e.Team, prev, e.Group)
		}
		teamGroup[e.Team] = e.Group
		members[e.Group] = append(members[e.Group], e.Team)
	}

	t := &Tournament{
		samples:        samples,
		rng:            rng,
		groups:         make(map[string]*Group, len(members)),
		teamGroup:      teamGroup,
		manualGroup:    make(map[string]MatchResult),
		manualKnockout: make(map[Stage][]forcedWinner),
		aliases:        newAliasTable(samples),
	}
	for name, teams := range members {
		g, err := NewGroup(name, teams, samples, rng)
		if err != nil {
			return nil, err
		}
		t.groups[name] = g
		t.groupNames = append(t.groupNames, name)
	}
	sort.Strings(t.groupNames)

	for _, f := range fixtures {
		if _, err := ParseStage(string(f.Stage)); err != nil {
			return nil, err
		}
		if f.Stage == StageGroup {
			g1, ok1 := teamGroup[f.Team1]
			g2, ok2 := teamGroup[f.Team2]
			if !ok1 || !ok2 {
				return nil, fmt.Errorf("%w: group fixture %s v %s", ErrUnknownTeam, f.Team1, f.Team2)
			}
			if g1 != g2 {
				return nil, fmt.Errorf("group fixture %s v %s spans groups %s and %s", f.Team1, f.Team2, g1, g2)
			}
			if f.Team1 == f.Team2 {
				return nil, fmt.Errorf("%w: group fixture %s v %s", ErrSelfFixture, f.Team1, f.Team2)
			}
		}
		t.fixtures = append(t.fixtures, f)
	}
	return t, nil
}

// Samples returns the number of simulated samples.
func (t *Tournament) Samples() int { return t.samples }

// GroupNames returns the group names in sorted order.
func (t *Tournament) GroupNames() []string { return slices.Clone(t.groupNames) }

// Group returns a group by name.
func (t *Tournament) Group(name string) (*Group, bool) {
	g, ok := t.groups[name]
	return g, ok
}

// GroupOf returns the group a team was drawn in.
func (t *Tournament) GroupOf(team string) (string, bool) {
	g, ok := t.teamGroup[team]
	return g, ok
}

// Teams returns every team, ordered by group then roster order.
func (t *Tournament) Teams() []string {
	var out []string
	for _, name := range t.groupNames {
		out = append(out, t.groups[name].teams...)
	}
	return out
}

// Aliases returns the bracket alias table.
func (t *Tournament) Aliases() *AliasTable { return t.aliases }

// IsComplete reports whether the final has been played.
func (t *Tournament) IsComplete() bool { return t.complete }

// Winner returns the tournament winner for every sample.
func (t *Tournament) Winner() ([]string, error) {
	if !t.complete {
		return nil, ErrNotComplete
	}
	return slices.Clone(t.winner), nil
}

func (t *Tournament) fixturesFor(stage Stage) []Fixture {
	var out []Fixture
	for _, f := range t.fixtures {
		if f.Stage == stage {
			out = append(out, f)
		}
	}
	return out
}

func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "\x00" + b
}

// --------------------------------------------------------------------------
// Manual results
// --------------------------------------------------------------------------

// AddResult enters a known result. A group result replaces the simulated
// score of the matching fixture in every sample; a knockout result decides
// the tie in every sample where the two teams meet in that stage.
func (t *Tournament) AddResult(team1, team2 string, score1, score2 int, stage Stage) error {
	if score1 < 0 || score2 < 0 {
		return fmt.Errorf("%w: %s %d-%d %s", ErrMalformedResult, team1, score1, score2, team2)
	}
	if _, err := ParseStage(string(stage)); err != nil {
		return err
	}

	if stage == StageGroup {
		if t.groupStagePlayed {
			return fmt.Errorf("%w: %s", ErrStagePlayed, stage)
		}
		for _, f := range t.fixturesFor(StageGroup) {
			if pairKey(f.Team1, f.Team2) != pairKey(team1, team2) {
				continue
			}
			home, away := score1, score2
			if f.Team1 != team1 {
				home, away = score2, score1
			}
			t.manualGroup[pairKey(team1, team2)] = NewFixedResult(f.Team1, f.Team2, home, away, t.samples)
			return nil
		}
		return fmt.Errorf("%w: %s v %s in %s", ErrFixtureNotFound, team1, team2, stage)
	}

	if t.complete {
		return fmt.Errorf("%w: %s", ErrStagePlayed, stage)
	}
	if score1 == score2 {
		return fmt.Errorf("%w: %s %d-%d %s", ErrDrawInKnockout, team1, score1, score2, team2)
	}
	_, ok1 := t.teamGroup[team1]
	_, ok2 := t.teamGroup[team2]
	if !ok1 || !ok2 || len(t.fixturesFor(stage)) == 0 {
		return fmt.Errorf("%w: %s v %s in %s", ErrFixtureNotFound, team1, team2, stage)
	}
	winner := team1
	if score2 > score1 {
		winner = team2
	}
	t.manualKnockout[stage] = append(t.manualKnockout[stage], forcedWinner{teamA: team1, teamB: team2, winner: winner})
	return nil
}

// --------------------------------------------------------------------------
// Group stage
// --------------------------------------------------------------------------

// PlayGroupStage simulates every group fixture without a manual result in
// one predictor call, then rebuilds each group's table and standings.
func (t *Tournament) PlayGroupStage(ctx context.Context, p ScorePredictor, policy StandingsPolicy) error {
	if t.groupStagePlayed {
		return fmt.Errorf("%w: %s", ErrStagePlayed, StageGroup)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var home, away []string
	var results []MatchResult
	for _, f := range t.fixturesFor(StageGroup) {
		if fixed, ok := t.manualGroup[pairKey(f.Team1, f.Team2)]; ok {
			results = append(results, fixed)
			continue
		}
		home = append(home, f.Team1)
		away = append(away, f.Team2)
	}

	if len(home) > 0 {
		simulated, err := p.SimulateScores(home, away, t.samples)
		if err != nil {
			return fmt.Errorf("simulate group scores: %w", err)
		}
		if len(simulated) != len(home) {
			return fmt.Errorf("%w: %d results for %d fixtures", ErrMalformedResult, len(simulated), len(home))
		}
		for i, r := range simulated {
			if r.HomeTeam != home[i] || r.AwayTeam != away[i] {
				return fmt.Errorf("%w: result %d is %s v %s, want %s v %s",
					ErrMalformedResult, i, r.HomeTeam, r.AwayTeam, home[i], away[i])
			}
			if err := r.Validate(t.samples); err != nil {
				return err
			}
		}
		results = append(results, simulated...)
	}

	for _, name := range t.groupNames {
		g := t.groups[name]
		if err := g.AddResults(results); err != nil {
			return fmt.Errorf("group %s: %w", name, err)
		}
		if err := g.CalcTable(); err != nil {
			return fmt.Errorf("group %s: %w", name, err)
		}
		if err := g.CalcStandings(policy); err != nil {
			return err
		}
	}
	t.groupStagePlayed = true
	return nil
}
