package tournament

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"
)

// Group owns one group's teams, results, table and standings.
type Group struct {
	name    string
	teams   []string
	index   map[string]int
	samples int
	rng     RandomSource
	metrics []Metric

	results   []MatchResult
	table     *Table
	standings *Standings
}

// NewGroup creates a group of teams simulated over samples.
func NewGroup(name string, teams []string, samples int, rng RandomSource) (*Group, error) {
	if samples < 1 {
		return nil, ErrInvalidSamples
	}
	if len(teams) == 0 {
		return nil, fmt.Errorf("group %s has no teams", name)
	}
	index := make(map[string]int, len(teams))
	for i, t := range teams {
		if _, dup := index[t]; dup {
			return nil, fmt.Errorf("group %s lists %s twice", name, t)
		}
		index[t] = i
	}
	return &Group{
		name:    name,
		teams:   slices.Clone(teams),
		index:   index,
		samples: samples,
		rng:     rng,
		metrics: slices.Clone(DefaultMetrics),
	}, nil
}

// Name returns the group name.
func (g *Group) Name() string { return g.name }

// Teams returns the group's teams in roster order.
func (g *Group) Teams() []string { return slices.Clone(g.teams) }

// Has reports whether team is in the group.
func (g *Group) Has(team string) bool {
	_, ok := g.index[team]
	return ok
}

// Results returns the stored results.
func (g *Group) Results() []MatchResult { return g.results }

// Table returns the last computed table, or nil.
func (g *Group) Table() *Table { return g.table }

// Standings returns the last computed standings, or nil.
func (g *Group) Standings() *Standings { return g.standings }

// SetMetrics replaces the tie-break order used by PolicyHeadToHead. The
// list must end with MetricRandom so every tie is eventually broken.
func (g *Group) SetMetrics(metrics []Metric) error {
	if len(metrics) == 0 || metrics[len(metrics)-1] != MetricRandom {
		return ErrInvalidMetrics
	}
	g.metrics = slices.Clone(metrics)
	g.standings = nil
	return nil
}

// AddResults keeps the results whose home team belongs to this group. It
// replaces any previously stored results and drops the table and standings.
func (g *Group) AddResults(all []MatchResult) error {
	var kept []MatchResult
	for _, r := range all {
		if !g.Has(r.HomeTeam) {
			continue
		}
		if err := r.Validate(g.samples); err != nil {
			return err
		}
		kept = append(kept, r)
	}
	g.results = kept
	g.table = nil
	g.standings = nil
	return nil
}

// CheckIfResultExists reports whether a stored result covers the pair.
func (g *Group) CheckIfResultExists(team1, team2 string) bool {
	for _, r := range g.results {
		if r.involves(team1, team2) {
			return true
		}
	}
	return false
}

// CalcStandings ranks the table with the given policy, building the table
// first if there is none.
func (g *Group) CalcStandings(policy StandingsPolicy) error {
	if g.table == nil {
		if err := g.CalcTable(); err != nil {
			return err
		}
	}

	var (
		st  *Standings
		err error
	)
	switch policy {
	case PolicyDefault:
		st, err = g.defaultStandings()
	case PolicyHeadToHead:
		st, err = g.headToHeadStandings()
	default:
		return fmt.Errorf("unknown standings policy %d", int(policy))
	}
	if err != nil {
		return err
	}
	if err := st.verify(); err != nil {
		return fmt.Errorf("group %s: %w", g.name, err)
	}
	g.standings = st
	return nil
}

// Qualifiers returns the teams ranked first and second in every sample.
func (g *Group) Qualifiers() (first, second []string, err error) {
	if len(g.teams) < 2 {
		return nil, nil, fmt.Errorf("group %s needs two teams to produce qualifiers", g.name)
	}
	if g.standings == nil {
		if err := g.CalcStandings(PolicyDefault); err != nil {
			return nil, nil, err
		}
	}
	return g.standings.TeamsAt(0), g.standings.TeamsAt(1), nil
}

// Render prints the standings and table for one sample.
func (g *Group) Render(sample int) string {
	if g.standings == nil || sample < 0 || sample >= g.samples {
		return fmt.Sprintf("Group %s: no standings\n", g.name)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Group %s\n", g.name)
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Position\tTeam\tPoints\tGF\tGA\tGD")
	for pos := 0; pos < g.standings.Positions(); pos++ {
		team := g.standings.Team(pos, sample)
		row, _ := g.table.Row(team)
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%+d\n", PositionLabel(pos), team,
			row.Points[sample], row.GoalsFor[sample], row.GoalsAgainst[sample], row.GoalDifference[sample])
	}
	w.Flush()
	return b.String()
}

func (g *Group) String() string {
	return g.Render(0)
}
