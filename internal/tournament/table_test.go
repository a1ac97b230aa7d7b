package tournament

import "testing"

func TestCalcTable_Points(t *testing.T) {
	teams := []string{"A", "B", "C", "D"}
	g := newTestGroup(t, teams, 3,
		played{"A", "B", 2, 1},
		played{"C", "D", 0, 0},
		played{"A", "C", 1, 3},
	)

	want := map[string]struct{ pts, gf, ga, gd int }{
		"A": {3, 3, 4, -1},
		"B": {0, 1, 2, -1},
		"C": {4, 3, 1, 2},
		"D": {1, 0, 0, 0},
	}
	for team, w := range want {
		row, ok := g.Table().Row(team)
		if !ok {
			t.Fatalf("no table row for %s", team)
		}
		for s := 0; s < 3; s++ {
			if row.Points[s] != w.pts || row.GoalsFor[s] != w.gf ||
				row.GoalsAgainst[s] != w.ga || row.GoalDifference[s] != w.gd {
				t.Errorf("%s sample %d: got pts=%d gf=%d ga=%d gd=%d, want %+v",
					team, s, row.Points[s], row.GoalsFor[s], row.GoalsAgainst[s], row.GoalDifference[s], w)
			}
		}
	}
}

func TestCalcTable_GoalDifferenceIdentity(t *testing.T) {
	const samples = 200
	teams := []string{"A", "B", "C", "D"}
	var home, away []string
	for _, f := range roundRobin(teams) {
		home = append(home, f.Team1)
		away = append(away, f.Team2)
	}
	results, err := randomScores{rng: newRand(3)}.SimulateScores(home, away, samples)
	if err != nil {
		t.Fatal(err)
	}

	g, err := NewGroup("A", teams, samples, newRand(1))
	if err != nil {
		t.Fatal(err)
	}
	if err := g.AddResults(results); err != nil {
		t.Fatal(err)
	}
	if err := g.CalcTable(); err != nil {
		t.Fatal(err)
	}

	for s := 0; s < samples; s++ {
		totalPoints, draws := 0, 0
		for _, r := range results {
			if r.HomeScore[s] == r.AwayScore[s] {
				draws++
			}
		}
		for _, team := range teams {
			row, _ := g.Table().Row(team)
			if row.GoalDifference[s] != row.GoalsFor[s]-row.GoalsAgainst[s] {
				t.Fatalf("%s sample %d: gd %d != %d-%d", team, s,
					row.GoalDifference[s], row.GoalsFor[s], row.GoalsAgainst[s])
			}
			totalPoints += row.Points[s]
		}
		// each decisive match hands out 3 points, each draw 2
		if want := 3*(len(results)-draws) + 2*draws; totalPoints != want {
			t.Fatalf("sample %d: total points %d, want %d", s, totalPoints, want)
		}
	}
}

func TestCalcTable_Idempotent(t *testing.T) {
	g := newTestGroup(t, []string{"A", "B"}, 2, played{"A", "B", 4, 2})
	first, _ := g.Table().Row("A")
	if err := g.CalcTable(); err != nil {
		t.Fatal(err)
	}
	second, _ := g.Table().Row("A")
	for s := 0; s < 2; s++ {
		if first.Points[s] != second.Points[s] || first.GoalsFor[s] != second.GoalsFor[s] {
			t.Fatalf("sample %d: table changed between identical recalculations", s)
		}
	}
}

func TestCalcTable_RejectsShortVectors(t *testing.T) {
	g, err := NewGroup("A", []string{"A", "B"}, 3, newRand(1))
	if err != nil {
		t.Fatal(err)
	}
	bad := MatchResult{HomeTeam: "A", AwayTeam: "B", HomeScore: []int{1}, AwayScore: []int{0}}
	if err := g.AddResults([]MatchResult{bad}); err == nil {
		t.Fatal("expected malformed result error")
	}
}
