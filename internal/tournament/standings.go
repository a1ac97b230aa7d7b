package tournament

import (
	"cmp"
	"fmt"
	"slices"
)

// Metric is one criterion in the group tie-break cascade.
type Metric int

const (
	MetricPoints Metric = iota
	MetricGoalDifference
	MetricGoalsFor
	MetricHeadToHead
	MetricRandom
)

func (m Metric) String() string {
	switch m {
	case MetricPoints:
		return "points"
	case MetricGoalDifference:
		return "goal_difference"
	case MetricGoalsFor:
		return "goals_for"
	case MetricHeadToHead:
		return "head-to-head"
	case MetricRandom:
		return "random"
	}
	return fmt.Sprintf("metric(%d)", int(m))
}

// DefaultMetrics is the order in which group ties are broken.
var DefaultMetrics = []Metric{
	MetricPoints,
	MetricGoalDifference,
	MetricGoalsFor,
	MetricHeadToHead,
	MetricRandom,
}

// StandingsPolicy selects how a group table is turned into standings.
type StandingsPolicy int

const (
	// PolicyDefault sorts by points, goal difference, goals for and then a
	// random key, independently per sample.
	PolicyDefault StandingsPolicy = iota
	// PolicyHeadToHead walks the metric cascade, consulting the result
	// between two teams still level after goals for.
	PolicyHeadToHead
)

func (p StandingsPolicy) String() string {
	if p == PolicyHeadToHead {
		return "head-to-head"
	}
	return "default"
}

// PositionLabel returns the ordinal label for a zero-based position.
func PositionLabel(pos int) string {
	n := pos + 1
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// --------------------------------------------------------------------------
// Standings
// --------------------------------------------------------------------------

const emptySlot = -1

// Standings maps each position to a team index for every sample.
type Standings struct {
	teams []string
	slots [][]int // [position][sample]
}

func newStandings(teams []string, samples int) *Standings {
	slots := make([][]int, len(teams))
	for pos := range slots {
		slots[pos] = make([]int, samples)
		for s := range slots[pos] {
			slots[pos][s] = emptySlot
		}
	}
	return &Standings{teams: teams, slots: slots}
}

// fill places a team in a position for one sample. A position can only be
// filled once.
func (st *Standings) fill(pos, sample, team int) error {
	if st.slots[pos][sample] != emptySlot {
		return fmt.Errorf("%w: %s in sample %d holds %s, cannot place %s",
			ErrPositionFilled, PositionLabel(pos), sample,
			st.teams[st.slots[pos][sample]], st.teams[team])
	}
	st.slots[pos][sample] = team
	return nil
}

// Positions returns the number of positions.
func (st *Standings) Positions() int {
	return len(st.slots)
}

// Team returns the team holding pos in sample, or "" if the slot is empty.
func (st *Standings) Team(pos, sample int) string {
	idx := st.slots[pos][sample]
	if idx == emptySlot {
		return ""
	}
	return st.teams[idx]
}

// TeamsAt returns the team holding pos in every sample.
func (st *Standings) TeamsAt(pos int) []string {
	out := make([]string, len(st.slots[pos]))
	for s := range out {
		out[s] = st.Team(pos, s)
	}
	return out
}

// PositionOf returns team's zero-based position in sample, or -1.
func (st *Standings) PositionOf(team string, sample int) int {
	for pos := range st.slots {
		if st.Team(pos, sample) == team {
			return pos
		}
	}
	return -1
}

// verify checks every sample holds a bijection between positions and teams.
func (st *Standings) verify() error {
	if len(st.slots) == 0 {
		return nil
	}
	for s := range st.slots[0] {
		seen := make([]bool, len(st.teams))
		for pos := range st.slots {
			idx := st.slots[pos][s]
			if idx == emptySlot {
				return fmt.Errorf("%w: %s empty in sample %d", ErrPositionMismatch, PositionLabel(pos), s)
			}
			if seen[idx] {
				return fmt.Errorf("%w: %s placed twice in sample %d", ErrPositionFilled, st.teams[idx], s)
			}
			seen[idx] = true
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Default policy
// --------------------------------------------------------------------------

// defaultStandings ranks every sample by points, goal difference, goals for
// and a uniform random key, all descending.
func (g *Group) defaultStandings() (*Standings, error) {
	samples := g.samples
	st := newStandings(g.teams, samples)
	order := make([]int, len(g.teams))
	keys := make([]float64, len(g.teams))

	for s := 0; s < samples; s++ {
		for i := range order {
			order[i] = i
			keys[i] = g.rng.Float64()
		}
		slices.SortStableFunc(order, func(a, b int) int {
			for _, m := range []Metric{MetricPoints, MetricGoalDifference, MetricGoalsFor} {
				if c := cmp.Compare(g.table.value(m, b, s), g.table.value(m, a, s)); c != 0 {
					return c
				}
			}
			return cmp.Compare(keys[b], keys[a])
		})
		for pos, idx := range order {
			if err := st.fill(pos, s, idx); err != nil {
				return nil, err
			}
		}
	}
	return st, nil
}
