// Package summary aggregates simulated tournaments into per-team odds.
package summary

import (
	"fmt"
	"sort"

	"github.com/albapepper/scoracle-sim/internal/tournament"
)

// TeamSummary counts outcomes for one team across samples.
type TeamSummary struct {
	Team      string
	Group     string
	Samples   int
	Positions []int                       // samples finishing at each group position
	Progress  map[tournament.Progress]int // samples ending at each stage
}

// Summary holds every team's counts.
type Summary struct {
	Samples int
	teams   map[string]*TeamSummary
	order   []string
}

// FromTournament counts group positions and furthest progress for every
// team of a completed tournament.
func FromTournament(t *tournament.Tournament) (*Summary, error) {
	if !t.IsComplete() {
		return nil, tournament.ErrNotComplete
	}
	s := &Summary{Samples: t.Samples(), teams: make(map[string]*TeamSummary)}
	for _, name := range t.GroupNames() {
		g, _ := t.Group(name)
		st := g.Standings()
		if st == nil {
			return nil, fmt.Errorf("group %s has no standings", name)
		}
		for _, team := range g.Teams() {
			ts := &TeamSummary{
				Team:      team,
				Group:     name,
				Samples:   t.Samples(),
				Positions: make([]int, st.Positions()),
				Progress:  make(map[tournament.Progress]int),
			}
			for sample := 0; sample < t.Samples(); sample++ {
				if pos := st.PositionOf(team, sample); pos >= 0 {
					ts.Positions[pos]++
				}
			}
			furthest, err := t.FurthestPosition(team)
			if err != nil {
				return nil, err
			}
			for _, p := range furthest {
				ts.Progress[p]++
			}
			s.teams[team] = ts
			s.order = append(s.order, team)
		}
	}
	return s, nil
}

// Merge adds the counts of other, which must cover the same teams.
func (s *Summary) Merge(other *Summary) error {
	if len(other.teams) != len(s.teams) {
		return fmt.Errorf("cannot merge summaries of %d and %d teams", len(s.teams), len(other.teams))
	}
	for name, o := range other.teams {
		ts, ok := s.teams[name]
		if !ok {
			return fmt.Errorf("cannot merge: %s missing", name)
		}
		if len(o.Positions) != len(ts.Positions) {
			return fmt.Errorf("cannot merge: group size of %s differs", name)
		}
		for i, n := range o.Positions {
			ts.Positions[i] += n
		}
		for p, n := range o.Progress {
			ts.Progress[p] += n
		}
		ts.Samples += o.Samples
	}
	s.Samples += other.Samples
	return nil
}

// Team returns one team's counts.
func (s *Summary) Team(name string) (*TeamSummary, bool) {
	ts, ok := s.teams[name]
	return ts, ok
}

// Teams returns every team in group order.
func (s *Summary) Teams() []*TeamSummary {
	out := make([]*TeamSummary, len(s.order))
	for i, name := range s.order {
		out[i] = s.teams[name]
	}
	return out
}

// Ranked returns teams by descending win probability, then by deepest
// average progress, then by name.
func (s *Summary) Ranked() []*TeamSummary {
	out := s.Teams()
	sort.SliceStable(out, func(i, j int) bool {
		wi, wj := out[i].Probability(tournament.ProgressWinner), out[j].Probability(tournament.ProgressWinner)
		if wi != wj {
			return wi > wj
		}
		di, dj := out[i].meanDepth(), out[j].meanDepth()
		if di != dj {
			return di > dj
		}
		return out[i].Team < out[j].Team
	})
	return out
}

// Probability is the share of samples in which the team finished at p.
func (ts *TeamSummary) Probability(p tournament.Progress) float64 {
	if ts.Samples == 0 {
		return 0
	}
	return float64(ts.Progress[p]) / float64(ts.Samples)
}

// AtLeast is the share of samples in which the team reached p or beyond.
func (ts *TeamSummary) AtLeast(p tournament.Progress) float64 {
	if ts.Samples == 0 {
		return 0
	}
	n := 0
	for q, c := range ts.Progress {
		if q.Rank() >= p.Rank() {
			n += c
		}
	}
	return float64(n) / float64(ts.Samples)
}

// PositionProbability is the share of samples in which the team finished
// its group at pos.
func (ts *TeamSummary) PositionProbability(pos int) float64 {
	if ts.Samples == 0 || pos < 0 || pos >= len(ts.Positions) {
		return 0
	}
	return float64(ts.Positions[pos]) / float64(ts.Samples)
}

// Qualify is the share of samples in which the team finished in the top two.
func (ts *TeamSummary) Qualify() float64 {
	return ts.PositionProbability(0) + ts.PositionProbability(1)
}

func (ts *TeamSummary) meanDepth() float64 {
	if ts.Samples == 0 {
		return 0
	}
	total := 0
	for p, c := range ts.Progress {
		total += p.Rank() * c
	}
	return float64(total) / float64(ts.Samples)
}

// --------------------------------------------------------------------------
// Reports
// --------------------------------------------------------------------------

// TeamOdds is the serialized view of one team.
type TeamOdds struct {
	Team      string             `json:"team"`
	Group     string             `json:"group"`
	Positions []float64          `json:"group_positions"`
	Qualify   float64            `json:"qualify"`
	Reached   map[string]float64 `json:"reached"`
	Furthest  map[string]float64 `json:"furthest"`
	Win       float64            `json:"win"`
}

// Report is the serialized view of a summary, ranked by win probability.
type Report struct {
	Samples int        `json:"samples"`
	Teams   []TeamOdds `json:"teams"`
}

// Odds converts one team's counts to probabilities.
func (ts *TeamSummary) Odds() TeamOdds {
	o := TeamOdds{
		Team:      ts.Team,
		Group:     ts.Group,
		Positions: make([]float64, len(ts.Positions)),
		Qualify:   ts.Qualify(),
		Reached:   make(map[string]float64, len(tournament.ProgressOrder)),
		Furthest:  make(map[string]float64, len(tournament.ProgressOrder)),
		Win:       ts.Probability(tournament.ProgressWinner),
	}
	for i := range ts.Positions {
		o.Positions[i] = ts.PositionProbability(i)
	}
	for _, p := range tournament.ProgressOrder {
		o.Furthest[string(p)] = ts.Probability(p)
		if p != tournament.ProgressGroup {
			o.Reached[string(p)] = ts.AtLeast(p)
		}
	}
	return o
}

// Report builds the ranked serialized view.
func (s *Summary) Report() Report {
	r := Report{Samples: s.Samples}
	for _, ts := range s.Ranked() {
		r.Teams = append(r.Teams, ts.Odds())
	}
	return r
}
