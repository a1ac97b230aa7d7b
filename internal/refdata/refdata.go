// Package refdata loads tournament reference data: the teams in each group,
// the fixture list for every stage, and any results already known.
package refdata

import (
	"fmt"
	"sort"
	"strings"

	"github.com/albapepper/scoracle-sim/internal/tournament"
)

// DefaultRating is used for teams listed without a rating.
const DefaultRating = 1500

// Team is one entry in the draw.
type Team struct {
	Name   string  `yaml:"name" json:"name"`
	Group  string  `yaml:"group" json:"group"`
	Rating float64 `yaml:"rating,omitempty" json:"rating,omitempty"`
}

// Fixture is one scheduled match. Knockout fixtures name bracket slots.
type Fixture struct {
	Stage string `yaml:"stage" json:"stage"`
	Team1 string `yaml:"team_1" json:"team_1"`
	Team2 string `yaml:"team_2" json:"team_2"`
}

// Result is a match that has already been played.
type Result struct {
	Stage  string `yaml:"stage" json:"stage"`
	Team1  string `yaml:"team_1" json:"team_1"`
	Team2  string `yaml:"team_2" json:"team_2"`
	Score1 int    `yaml:"score_1" json:"score_1"`
	Score2 int    `yaml:"score_2" json:"score_2"`
}

// Dataset is everything needed to build a tournament.
type Dataset struct {
	Name     string    `yaml:"name" json:"name"`
	Teams    []Team    `yaml:"teams" json:"teams"`
	Fixtures []Fixture `yaml:"fixtures" json:"fixtures"`
	Results  []Result  `yaml:"results,omitempty" json:"results,omitempty"`
}

// --------------------------------------------------------------------------
// Validation
// --------------------------------------------------------------------------

// ValidationError is one problem found in a dataset.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in a dataset.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (e ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}
	messages := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// Validate checks that teams are unique, group fixtures stay inside a group,
// every knockout slot refers to a qualifier or an earlier winner, and the
// bracket ends in a single final. Known results must name real fixtures.
func (d *Dataset) Validate() error {
	var errs []ValidationError
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if len(d.Teams) == 0 {
		add("teams", "no teams listed")
	}
	teamGroup := make(map[string]string, len(d.Teams))
	for i, t := range d.Teams {
		field := fmt.Sprintf("teams[%d]", i)
		switch {
		case strings.TrimSpace(t.Name) == "":
			add(field, "missing name")
		case strings.TrimSpace(t.Group) == "":
			add(field, "%s has no group", t.Name)
		case t.Rating < 0:
			add(field, "%s has a negative rating", t.Name)
		}
		if _, dup := teamGroup[t.Name]; dup {
			add(field, "%s listed twice", t.Name)
		}
		teamGroup[t.Name] = t.Group
	}

	// Slots available to the first knockout stage.
	slots := make(map[string]bool)
	for _, g := range d.Groups() {
		slots["1"+g] = true
		slots["2"+g] = true
	}

	byStage := make(map[tournament.Stage][]int)
	for i, f := range d.Fixtures {
		field := fmt.Sprintf("fixtures[%d]", i)
		stage, err := tournament.ParseStage(f.Stage)
		if err != nil {
			add(field, "%v", err)
			continue
		}
		byStage[stage] = append(byStage[stage], i)
		if stage != tournament.StageGroup {
			continue
		}
		g1, ok1 := teamGroup[f.Team1]
		g2, ok2 := teamGroup[f.Team2]
		switch {
		case !ok1 || !ok2:
			add(field, "unknown team in %s v %s", f.Team1, f.Team2)
		case g1 != g2:
			add(field, "%s v %s spans groups %s and %s", f.Team1, f.Team2, g1, g2)
		case f.Team1 == f.Team2:
			add(field, "%s plays itself", f.Team1)
		}
	}

	knockout := 0
	for _, stage := range tournament.KnockoutStages {
		idx := byStage[stage]
		knockout += len(idx)
		for _, i := range idx {
			f := d.Fixtures[i]
			for _, slot := range []string{f.Team1, f.Team2} {
				if !slots[slot] {
					add(fmt.Sprintf("fixtures[%d]", i), "%s slot %q is not a qualifier or an earlier winner", stage, slot)
				}
			}
		}
		for _, i := range idx {
			slots[d.Fixtures[i].Team1+d.Fixtures[i].Team2] = true
		}
	}
	if knockout > 0 && len(byStage[tournament.StageFinal]) != 1 {
		add("fixtures", "want exactly one final, found %d", len(byStage[tournament.StageFinal]))
	}

	errs = append(errs, d.resultErrors(d.Results, teamGroup)...)

	if len(errs) > 0 {
		return ValidationErrors{Errors: errs}
	}
	return nil
}

// CheckResults validates results that are not part of the dataset, such
// as those supplied with a simulation request.
func (d *Dataset) CheckResults(results []Result) error {
	teamGroup := make(map[string]string, len(d.Teams))
	for _, t := range d.Teams {
		teamGroup[t.Name] = t.Group
	}
	if errs := d.resultErrors(results, teamGroup); len(errs) > 0 {
		return ValidationErrors{Errors: errs}
	}
	return nil
}

func (d *Dataset) resultErrors(results []Result, teamGroup map[string]string) []ValidationError {
	var errs []ValidationError
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}
	for i, r := range results {
		field := fmt.Sprintf("results[%d]", i)
		stage, err := tournament.ParseStage(r.Stage)
		if err != nil {
			add(field, "%v", err)
			continue
		}
		_, ok1 := teamGroup[r.Team1]
		_, ok2 := teamGroup[r.Team2]
		switch {
		case !ok1 || !ok2:
			add(field, "unknown team in %s v %s", r.Team1, r.Team2)
		case r.Score1 < 0 || r.Score2 < 0:
			add(field, "negative score %d-%d", r.Score1, r.Score2)
		case stage.IsKnockout() && r.Score1 == r.Score2:
			add(field, "%s result %s v %s cannot be a draw", stage, r.Team1, r.Team2)
		case stage == tournament.StageGroup && !d.hasGroupFixture(r.Team1, r.Team2):
			add(field, "no group fixture %s v %s", r.Team1, r.Team2)
		}
	}
	return errs
}

func (d *Dataset) hasGroupFixture(a, b string) bool {
	for _, f := range d.Fixtures {
		if f.Stage != string(tournament.StageGroup) {
			continue
		}
		if (f.Team1 == a && f.Team2 == b) || (f.Team1 == b && f.Team2 == a) {
			return true
		}
	}
	return false
}

// --------------------------------------------------------------------------
// Conversions
// --------------------------------------------------------------------------

// Groups returns the sorted group names.
func (d *Dataset) Groups() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range d.Teams {
		if t.Group != "" && !seen[t.Group] {
			seen[t.Group] = true
			out = append(out, t.Group)
		}
	}
	sort.Strings(out)
	return out
}

// TeamsIn returns the teams of one group in listed order.
func (d *Dataset) TeamsIn(group string) []Team {
	var out []Team
	for _, t := range d.Teams {
		if t.Group == group {
			out = append(out, t)
		}
	}
	return out
}

// Entries converts the team list for tournament.New.
func (d *Dataset) Entries() []tournament.Entry {
	out := make([]tournament.Entry, len(d.Teams))
	for i, t := range d.Teams {
		out[i] = tournament.Entry{Team: t.Name, Group: t.Group}
	}
	return out
}

// TournamentFixtures converts the fixture list for tournament.New.
func (d *Dataset) TournamentFixtures() []tournament.Fixture {
	out := make([]tournament.Fixture, len(d.Fixtures))
	for i, f := range d.Fixtures {
		out[i] = tournament.Fixture{Stage: tournament.Stage(strings.TrimSpace(f.Stage)), Team1: f.Team1, Team2: f.Team2}
	}
	return out
}

// Ratings maps each team to its rating, filling in DefaultRating.
func (d *Dataset) Ratings() map[string]float64 {
	out := make(map[string]float64, len(d.Teams))
	for _, t := range d.Teams {
		r := t.Rating
		if r == 0 {
			r = DefaultRating
		}
		out[t.Name] = r
	}
	return out
}

// HasTeam reports whether the dataset lists team.
func (d *Dataset) HasTeam(team string) bool {
	for _, t := range d.Teams {
		if t.Name == team {
			return true
		}
	}
	return false
}

// ApplyResults enters every known result into t.
func (d *Dataset) ApplyResults(t *tournament.Tournament) error {
	for _, r := range d.Results {
		stage, err := tournament.ParseStage(r.Stage)
		if err != nil {
			return err
		}
		if err := t.AddResult(r.Team1, r.Team2, r.Score1, r.Score2, stage); err != nil {
			return fmt.Errorf("apply result %s v %s: %w", r.Team1, r.Team2, err)
		}
	}
	return nil
}

// MergeResults adds results, replacing any earlier result for the same
// stage and pair of teams. It returns how many results were new.
func (d *Dataset) MergeResults(results []Result) int {
	added := 0
	for _, r := range results {
		replaced := false
		for i, old := range d.Results {
			if old.Stage != r.Stage {
				continue
			}
			if (old.Team1 == r.Team1 && old.Team2 == r.Team2) || (old.Team1 == r.Team2 && old.Team2 == r.Team1) {
				d.Results[i] = r
				replaced = true
				break
			}
		}
		if !replaced {
			d.Results = append(d.Results, r)
			added++
		}
	}
	return added
}
