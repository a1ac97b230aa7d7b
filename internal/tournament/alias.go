package tournament

import "fmt"

// aliasColumn is one slot resolved to a team per sample. reached is the
// progress of every team recorded in it.
type aliasColumn struct {
	key     string
	reached Progress
	teams   []string
}

// AliasTable maps bracket slot names to teams, per sample. Columns are only
// ever appended.
type AliasTable struct {
	samples int
	columns []aliasColumn
	index   map[string]int
}

func newAliasTable(samples int) *AliasTable {
	return &AliasTable{samples: samples, index: make(map[string]int)}
}

// set records a new column.
func (a *AliasTable) set(key string, reached Progress, teams []string) error {
	if _, exists := a.index[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAlias, key)
	}
	if len(teams) != a.samples {
		return fmt.Errorf("%w: alias %s has %d teams, want %d",
			ErrMalformedPrediction, key, len(teams), a.samples)
	}
	a.index[key] = len(a.columns)
	a.columns = append(a.columns, aliasColumn{key: key, reached: reached, teams: teams})
	return nil
}

// Resolve returns the team held by key in every sample.
func (a *AliasTable) Resolve(key string) ([]string, bool) {
	i, ok := a.index[key]
	if !ok {
		return nil, false
	}
	return a.columns[i].teams, true
}

// Keys returns the alias names in the order they were recorded.
func (a *AliasTable) Keys() []string {
	keys := make([]string, len(a.columns))
	for i, c := range a.columns {
		keys[i] = c.key
	}
	return keys
}

// Reached returns the progress tag of a column.
func (a *AliasTable) Reached(key string) (Progress, bool) {
	i, ok := a.index[key]
	if !ok {
		return "", false
	}
	return a.columns[i].reached, true
}

// Contains reports whether team appears in any column for sample.
func (a *AliasTable) Contains(team string, sample int) bool {
	for _, c := range a.columns {
		if c.teams[sample] == team {
			return true
		}
	}
	return false
}

// Deepest returns the deepest progress tag of the columns holding team in
// sample.
func (a *AliasTable) Deepest(team string, sample int) (Progress, bool) {
	best, found := Progress(""), false
	for _, c := range a.columns {
		if c.teams[sample] != team {
			continue
		}
		if !found || c.reached.Rank() > best.Rank() {
			best, found = c.reached, true
		}
	}
	return best, found
}
