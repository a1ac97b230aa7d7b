// Package seed writes reference datasets into Postgres.
package seed

import "fmt"

// ChangeEvent is the JSON payload sent on config.ResultsChannel.
type ChangeEvent struct {
	Dataset   string `json:"dataset"`
	Timestamp int64  `json:"ts"`
}

// SeedResult tracks counts and errors from a seeding operation.
type SeedResult struct {
	Dataset         string
	TeamsUpserted   int
	FixturesWritten int
	ResultsWritten  int
	ResultsImported int
	Errors          []string
}

// Add merges another SeedResult into this one.
func (r *SeedResult) Add(other SeedResult) {
	r.TeamsUpserted += other.TeamsUpserted
	r.FixturesWritten += other.FixturesWritten
	r.ResultsWritten += other.ResultsWritten
	r.ResultsImported += other.ResultsImported
	r.Errors = append(r.Errors, other.Errors...)
}

// AddErrorf records a formatted error message.
func (r *SeedResult) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the seed operation.
func (r *SeedResult) Summary() string {
	return fmt.Sprintf(
		"dataset=%s teams=%d fixtures=%d results=%d imported=%d errors=%d",
		r.Dataset, r.TeamsUpserted, r.FixturesWritten,
		r.ResultsWritten, r.ResultsImported, len(r.Errors),
	)
}
