package tournament

import "fmt"

// Points awarded per match outcome.
const (
	pointsWin  = 3
	pointsDraw = 1
)

// TeamRecord is one team's aggregated group record, one entry per sample.
type TeamRecord struct {
	Points         []int
	GoalsFor       []int
	GoalsAgainst   []int
	GoalDifference []int
}

func newTeamRecord(samples int) TeamRecord {
	return TeamRecord{
		Points:         make([]int, samples),
		GoalsFor:       make([]int, samples),
		GoalsAgainst:   make([]int, samples),
		GoalDifference: make([]int, samples),
	}
}

// Table is a group's result table. Rows are aligned with the group's team
// order.
type Table struct {
	teams []string
	rows  []TeamRecord
}

// Row returns the record for team.
func (t *Table) Row(team string) (TeamRecord, bool) {
	for i, name := range t.teams {
		if name == team {
			return t.rows[i], true
		}
	}
	return TeamRecord{}, false
}

// value returns a table metric for the team at idx in one sample.
func (t *Table) value(m Metric, idx, sample int) int {
	row := t.rows[idx]
	switch m {
	case MetricPoints:
		return row.Points[sample]
	case MetricGoalDifference:
		return row.GoalDifference[sample]
	case MetricGoalsFor:
		return row.GoalsFor[sample]
	}
	panic(fmt.Sprintf("tournament: metric %s is not a table column", m))
}

// CalcTable rebuilds the table from the stored results. It must be called
// again after AddResults.
func (g *Group) CalcTable() error {
	rows := make([]TeamRecord, len(g.teams))
	for i := range rows {
		rows[i] = newTeamRecord(g.samples)
	}

	for _, r := range g.results {
		if err := r.Validate(g.samples); err != nil {
			return err
		}
		hi, homeOK := g.index[r.HomeTeam]
		ai, awayOK := g.index[r.AwayTeam]
		if !homeOK {
			return fmt.Errorf("%w: %s is not in group %s", ErrUnknownTeam, r.HomeTeam, g.name)
		}
		if !awayOK {
			return fmt.Errorf("%w: %s is not in group %s", ErrUnknownTeam, r.AwayTeam, g.name)
		}

		home, away := rows[hi], rows[ai]
		for s := 0; s < g.samples; s++ {
			hs, as := r.HomeScore[s], r.AwayScore[s]
			switch {
			case hs > as:
				home.Points[s] += pointsWin
			case hs < as:
				away.Points[s] += pointsWin
			default:
				home.Points[s] += pointsDraw
				away.Points[s] += pointsDraw
			}
			home.GoalsFor[s] += hs
			home.GoalsAgainst[s] += as
			away.GoalsFor[s] += as
			away.GoalsAgainst[s] += hs
		}
	}

	for _, row := range rows {
		for s := 0; s < g.samples; s++ {
			row.GoalDifference[s] = row.GoalsFor[s] - row.GoalsAgainst[s]
		}
	}

	g.table = &Table{teams: g.teams, rows: rows}
	return nil
}
