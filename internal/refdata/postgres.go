package refdata

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/scoracle-sim/internal/db"
)

// PostgresSource reads one named dataset from the sim_* tables using the
// statements prepared by db.New.
type PostgresSource struct {
	Pool    *pgxpool.Pool
	Dataset string
}

// Load reads teams, fixtures and results, then validates them.
func (s PostgresSource) Load(ctx context.Context) (*Dataset, error) {
	d := &Dataset{Name: s.Dataset}

	rows, err := s.Pool.Query(ctx, db.StmtDatasetTeams, s.Dataset)
	if err != nil {
		return nil, fmt.Errorf("query teams: %w", err)
	}
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.Name, &t.Group, &t.Rating); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan team: %w", err)
		}
		d.Teams = append(d.Teams, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read teams: %w", err)
	}
	if len(d.Teams) == 0 {
		return nil, fmt.Errorf("dataset %q has no teams", s.Dataset)
	}

	rows, err = s.Pool.Query(ctx, db.StmtDatasetFixtures, s.Dataset)
	if err != nil {
		return nil, fmt.Errorf("query fixtures: %w", err)
	}
	for rows.Next() {
		var f Fixture
		if err := rows.Scan(&f.Stage, &f.Team1, &f.Team2); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan fixture: %w", err)
		}
		d.Fixtures = append(d.Fixtures, f)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}

	rows, err = s.Pool.Query(ctx, db.StmtDatasetResults, s.Dataset)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.Stage, &r.Team1, &r.Team2, &r.Score1, &r.Score2); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		d.Results = append(d.Results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}
