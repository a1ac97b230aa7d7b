package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/scoracle-sim/internal/config"
	"github.com/albapepper/scoracle-sim/internal/refdata"
)

// UpsertDataset writes d in one transaction. Teams are upserted; fixtures
// and results are replaced so their order matches the dataset.
func UpsertDataset(ctx context.Context, pool *pgxpool.Pool, d *refdata.Dataset) (SeedResult, error) {
	result := SeedResult{Dataset: d.Name}
	if err := d.Validate(); err != nil {
		return result, err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return result, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, t := range d.Teams {
		if err := upsertTeam(ctx, tx, d.Name, i, t); err != nil {
			return result, fmt.Errorf("upsert team %s: %w", t.Name, err)
		}
		result.TeamsUpserted++
	}

	if _, err := tx.Exec(ctx, `DELETE FROM `+config.FixturesTable+` WHERE dataset = $1`, d.Name); err != nil {
		return result, fmt.Errorf("clear fixtures: %w", err)
	}
	for i, f := range d.Fixtures {
		_, err := tx.Exec(ctx, `
			INSERT INTO `+config.FixturesTable+` (dataset, seq, stage, team_1, team_2)
			VALUES ($1,$2,$3,$4,$5)`,
			d.Name, i, f.Stage, f.Team1, f.Team2,
		)
		if err != nil {
			return result, fmt.Errorf("insert fixture %d: %w", i, err)
		}
		result.FixturesWritten++
	}

	n, err := writeResults(ctx, tx, d.Name, d.Results)
	result.ResultsWritten = n
	if err != nil {
		return result, err
	}
	if err := notifyChanged(ctx, tx, d.Name); err != nil {
		return result, err
	}

	if err := tx.Commit(ctx); err != nil {
		return result, fmt.Errorf("commit: %w", err)
	}
	return result, nil
}

// ReplaceResults overwrites the stored results of one dataset.
func ReplaceResults(ctx context.Context, pool *pgxpool.Pool, dataset string, results []refdata.Result) (SeedResult, error) {
	result := SeedResult{Dataset: dataset}
	tx, err := pool.Begin(ctx)
	if err != nil {
		return result, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	n, err := writeResults(ctx, tx, dataset, results)
	result.ResultsWritten = n
	if err != nil {
		return result, err
	}
	if err := notifyChanged(ctx, tx, dataset); err != nil {
		return result, err
	}
	if err := tx.Commit(ctx); err != nil {
		return result, fmt.Errorf("commit: %w", err)
	}
	return result, nil
}

func upsertTeam(ctx context.Context, tx pgx.Tx, dataset string, seed int, t refdata.Team) error {
	rating := t.Rating
	if rating == 0 {
		rating = refdata.DefaultRating
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO `+config.TeamsTable+` (dataset, name, group_name, seed, rating)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (dataset, name) DO UPDATE SET
			group_name = EXCLUDED.group_name,
			seed = EXCLUDED.seed,
			rating = EXCLUDED.rating,
			updated_at = NOW()`,
		dataset, t.Name, t.Group, seed, rating,
	)
	return err
}

func writeResults(ctx context.Context, tx pgx.Tx, dataset string, results []refdata.Result) (int, error) {
	if _, err := tx.Exec(ctx, `DELETE FROM `+config.ResultsTable+` WHERE dataset = $1`, dataset); err != nil {
		return 0, fmt.Errorf("clear results: %w", err)
	}
	written := 0
	for i, r := range results {
		_, err := tx.Exec(ctx, `
			INSERT INTO `+config.ResultsTable+` (dataset, seq, stage, team_1, team_2, score_1, score_2)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			dataset, i, r.Stage, r.Team1, r.Team2, r.Score1, r.Score2,
		)
		if err != nil {
			return written, fmt.Errorf("insert result %d: %w", i, err)
		}
		written++
	}
	return written, nil
}

// notifyChanged queues a notification that is delivered when tx commits.
func notifyChanged(ctx context.Context, tx pgx.Tx, dataset string) error {
	payload, err := json.Marshal(ChangeEvent{Dataset: dataset, Timestamp: time.Now().Unix()})
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, config.ResultsChannel, string(payload)); err != nil {
		return fmt.Errorf("notify %s: %w", config.ResultsChannel, err)
	}
	return nil
}
