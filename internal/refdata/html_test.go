package refdata

import (
	"strings"
	"testing"
)

const resultsPage = `<html><body>
<table>
  <tr><th>Stage</th><th>Home</th><th>Score</th><th>Away</th></tr>
  <tr><td>Group</td><td> Qatar </td><td>0-2</td><td>Ecuador</td></tr>
  <tr><td>Group</td><td>England</td><td>6 : 2</td><td>Iran</td></tr>
  <tr><td colspan="4">Matchday 2</td></tr>
  <tr><td>R16</td><td>Netherlands</td><td>3–1</td><td>USA</td></tr>
</table>
</body></html>`

func TestParseResultsHTML(t *testing.T) {
	results, err := ParseResultsHTML(strings.NewReader(resultsPage))
	if err != nil {
		t.Fatalf("ParseResultsHTML: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	want := Result{Stage: "Group", Team1: "Qatar", Team2: "Ecuador", Score1: 0, Score2: 2}
	if results[0] != want {
		t.Errorf("results[0] = %+v, want %+v", results[0], want)
	}
	if results[1].Score1 != 6 || results[1].Score2 != 2 {
		t.Errorf("results[1] = %+v", results[1])
	}
	if results[2].Stage != "R16" || results[2].Score1 != 3 {
		t.Errorf("results[2] = %+v", results[2])
	}
}

func TestParseResultsHTML_BadScore(t *testing.T) {
	tests := []struct {
		name  string
		score string
	}{
		{"text", "postponed"},
		{"negative", "-1-2"},
		{"overflow", "99999999999999999999-0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := `<table><tr><td>Group</td><td>Qatar</td><td>` + tt.score + `</td><td>Ecuador</td></tr></table>`
			results, err := ParseResultsHTML(strings.NewReader(page))
			if err == nil {
				t.Fatalf("expected error for score %q, got %+v", tt.score, results)
			}
		})
	}
}
