package tournament

import (
	"cmp"
	"fmt"
	"slices"
)

// tiePattern describes a metric-sorted subset: bit i is set when entries i
// and i+1 are level on the metric.
type tiePattern uint8

// segment is a half-open run [start, end) of a sorted subset. A run of one
// team is settled; a longer run moves on to the next metric.
type segment struct{ start, end int }

// tiePatterns maps subset size and equality pattern to the runs it splits
// into. Four teams give the eight cases of a four-team group.
var tiePatterns = map[int]map[tiePattern][]segment{
	2: {
		0b0: {{0, 1}, {1, 2}},
		0b1: {{0, 2}},
	},
	3: {
		0b00: {{0, 1}, {1, 2}, {2, 3}},
		0b01: {{0, 2}, {2, 3}},
		0b10: {{0, 1}, {1, 3}},
		0b11: {{0, 3}},
	},
	4: {
		0b000: {{0, 1}, {1, 2}, {2, 3}, {3, 4}}, // all in order
		0b001: {{0, 2}, {2, 3}, {3, 4}},         // first two level
		0b010: {{0, 1}, {1, 3}, {3, 4}},         // middle two level
		0b100: {{0, 1}, {1, 2}, {2, 4}},         // last two level
		0b011: {{0, 3}, {3, 4}},                 // all level except last
		0b110: {{0, 1}, {1, 4}},                 // all level except first
		0b101: {{0, 2}, {2, 4}},                 // two level pairs
		0b111: {{0, 4}},                         // all level
	},
}

// patternOf computes the equality pattern of values sorted descending.
func patternOf(values []int) tiePattern {
	var p tiePattern
	for i := 0; i+1 < len(values); i++ {
		if values[i] == values[i+1] {
			p |= 1 << i
		}
	}
	return p
}

// cascade resolves one sample's standings with the head-to-head policy.
type cascade struct {
	g       *Group
	st      *Standings
	sample  int
	metrics []Metric
}

// headToHeadStandings runs the cascade for every sample.
func (g *Group) headToHeadStandings() (*Standings, error) {
	st := newStandings(g.teams, g.samples)
	teams := make([]int, len(g.teams))
	positions := make([]int, len(g.teams))
	for i := range teams {
		teams[i] = i
		positions[i] = i
	}
	for s := 0; s < g.samples; s++ {
		c := &cascade{g: g, st: st, sample: s, metrics: g.metrics}
		if err := c.setPositions(teams, positions, 0); err != nil {
			return nil, fmt.Errorf("group %s sample %d: %w", g.name, s, err)
		}
	}
	return st, nil
}

// setPositions assigns positions to teams using metrics[mi], recursing on
// any subset still level with the next metric. Every recursive call has
// either fewer teams or a later metric, and random never recurses.
func (c *cascade) setPositions(teams, positions []int, mi int) error {
	if len(teams) != len(positions) {
		return fmt.Errorf("%w: %d teams for %d positions", ErrPositionMismatch, len(teams), len(positions))
	}
	if mi >= len(c.metrics) {
		return ErrInvalidMetrics
	}

	switch metric := c.metrics[mi]; metric {
	case MetricRandom:
		return c.random(teams, positions)
	case MetricHeadToHead:
		if len(teams) != 2 {
			return c.random(teams, positions)
		}
		first, second, ok := c.g.headToHeadWinner(teams[0], teams[1], c.sample)
		if !ok {
			return c.random(teams, positions)
		}
		return c.fillAll([]int{first, second}, positions)
	default:
		return c.byTableMetric(metric, teams, positions, mi)
	}
}

func (c *cascade) byTableMetric(metric Metric, teams, positions []int, mi int) error {
	if len(teams) == 1 {
		return c.st.fill(positions[0], c.sample, teams[0])
	}
	table, ok := tiePatterns[len(teams)]
	if !ok {
		return fmt.Errorf("%w: %d teams level", ErrUnsupportedGroupSize, len(teams))
	}

	sorted := slices.Clone(teams)
	slices.SortStableFunc(sorted, func(a, b int) int {
		return cmp.Compare(c.g.table.value(metric, b, c.sample), c.g.table.value(metric, a, c.sample))
	})
	values := make([]int, len(sorted))
	for i, idx := range sorted {
		values[i] = c.g.table.value(metric, idx, c.sample)
	}

	for _, seg := range table[patternOf(values)] {
		if seg.end-seg.start == 1 {
			if err := c.st.fill(positions[seg.start], c.sample, sorted[seg.start]); err != nil {
				return err
			}
			continue
		}
		if err := c.setPositions(sorted[seg.start:seg.end], positions[seg.start:seg.end], mi+1); err != nil {
			return err
		}
	}
	return nil
}

func (c *cascade) random(teams, positions []int) error {
	shuffled := slices.Clone(teams)
	c.g.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return c.fillAll(shuffled, positions)
}

func (c *cascade) fillAll(teams, positions []int) error {
	for i, pos := range positions {
		if err := c.st.fill(pos, c.sample, teams[i]); err != nil {
			return err
		}
	}
	return nil
}

// headToHeadWinner looks up the first stored result between teams a and b
// and returns them winner first. ok is false when they have not met or
// drew in this sample.
func (g *Group) headToHeadWinner(a, b, sample int) (first, second int, ok bool) {
	for _, r := range g.results {
		if !r.involves(g.teams[a], g.teams[b]) {
			continue
		}
		scoreA, scoreB := r.HomeScore[sample], r.AwayScore[sample]
		if r.HomeTeam != g.teams[a] {
			scoreA, scoreB = scoreB, scoreA
		}
		switch {
		case scoreA > scoreB:
			return a, b, true
		case scoreB > scoreA:
			return b, a, true
		}
		return 0, 0, false
	}
	return 0, 0, false
}
