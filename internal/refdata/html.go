package refdata

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/albapepper/scoracle-sim/internal/tournament"
)

var scoreRegex = regexp.MustCompile(`^\s*(\d+)\s*[-:–]\s*(\d+)\s*$`)

// ParseResultsHTML reads played matches from an HTML page. Each result is a
// table row with four cells: stage, first team, score ("2-1" or "2:1") and
// second team. Rows that do not look like results, such as headers, are
// skipped.
func ParseResultsHTML(r io.Reader) ([]Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse results HTML: %w", err)
	}

	var (
		results []Result
		rowErr  error
	)
	doc.Find("table tr").EachWithBreak(func(i int, s *goquery.Selection) bool {
		cells := s.Find("td")
		if cells.Length() < 4 {
			return true
		}
		stage, err := tournament.ParseStage(cells.Eq(0).Text())
		if err != nil {
			return true
		}
		team1 := strings.TrimSpace(cells.Eq(1).Text())
		team2 := strings.TrimSpace(cells.Eq(3).Text())
		m := scoreRegex.FindStringSubmatch(cells.Eq(2).Text())
		if m == nil || team1 == "" || team2 == "" {
			rowErr = fmt.Errorf("row %d: cannot read %s result %q v %q", i, stage, team1, team2)
			return false
		}
		s1, err := strconv.Atoi(m[1])
		if err != nil {
			rowErr = fmt.Errorf("row %d: score for %s: %w", i, team1, err)
			return false
		}
		s2, err := strconv.Atoi(m[2])
		if err != nil {
			rowErr = fmt.Errorf("row %d: score for %s: %w", i, team2, err)
			return false
		}
		results = append(results, Result{
			Stage:  string(stage),
			Team1:  team1,
			Team2:  team2,
			Score1: s1,
			Score2: s2,
		})
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return results, nil
}
