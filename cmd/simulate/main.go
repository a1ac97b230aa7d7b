// Command simulate is the Scoracle tournament simulation CLI.
//
// Usage:
//
//	scoracle-sim run --samples 10000 --workers 4
//	scoracle-sim team Brazil --samples 5000 --seed 7
//	scoracle-sim groups --seed 3 --sample 0
//	scoracle-sim seed --file data/wc2022.yaml
//	scoracle-sim import-results --html results.html --out data/wc2022.yaml
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/scoracle-sim/internal/config"
	"github.com/albapepper/scoracle-sim/internal/db"
	"github.com/albapepper/scoracle-sim/internal/predictor"
	"github.com/albapepper/scoracle-sim/internal/refdata"
	"github.com/albapepper/scoracle-sim/internal/seed"
	"github.com/albapepper/scoracle-sim/internal/sim"
	"github.com/albapepper/scoracle-sim/internal/tournament"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:          "scoracle-sim",
		Short:        "Scoracle tournament simulation CLI",
		SilenceUsage: true,
	}

	root.AddCommand(runCmd())
	root.AddCommand(teamCmd())
	root.AddCommand(groupsCmd())
	root.AddCommand(seedCmd())
	root.AddCommand(importResultsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// simFlags are shared by every command that runs a simulation.
type simFlags struct {
	samples    int
	workers    int
	seed       uint64
	headToHead bool
}

func (f *simFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.samples, "samples", 0, "Samples to simulate (default SIM_SAMPLES)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Concurrent batches (default SIM_WORKERS)")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "Random seed (default SIM_SEED, 0 = clock)")
	cmd.Flags().BoolVar(&f.headToHead, "head-to-head", false, "Break group ties with the head-to-head cascade")
}

func (f *simFlags) request(cfg *config.Config) sim.Request {
	req := sim.Request{
		Samples: cfg.Samples,
		Workers: cfg.Workers,
		Seed:    cfg.Seed,
		Policy:  tournament.PolicyDefault,
	}
	if f.samples > 0 {
		req.Samples = f.samples
	}
	if f.workers > 0 {
		req.Workers = f.workers
	}
	if f.seed != 0 {
		req.Seed = f.seed
	}
	if f.headToHead || cfg.HeadToHead {
		req.Policy = tournament.PolicyHeadToHead
	}
	return req
}

// --------------------------------------------------------------------------
// run command
// --------------------------------------------------------------------------

func runCmd() *cobra.Command {
	var (
		flags simFlags
		top   int
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate the tournament and print every team's odds",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(func(ctx context.Context, cfg *config.Config, runner *sim.Runner) error {
				res, err := runner.Run(ctx, flags.request(cfg))
				if err != nil {
					return err
				}
				teams := res.Summary.Ranked()
				if top > 0 && top < len(teams) {
					teams = teams[:top]
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
				fmt.Fprintln(w, "Team\tGroup\tQualify\tR16\tQF\tSF\tFinal\tWin\t")
				for _, ts := range teams {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
						ts.Team, ts.Group, pct(ts.Qualify()),
						pct(ts.AtLeast(tournament.ProgressR16)),
						pct(ts.AtLeast(tournament.ProgressQF)),
						pct(ts.AtLeast(tournament.ProgressSF)),
						pct(ts.AtLeast(tournament.ProgressRunnerUp)),
						pct(ts.Probability(tournament.ProgressWinner)))
				}
				if err := w.Flush(); err != nil {
					return err
				}
				logger.Info("Run finished", "summary", res.Text())
				return nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&top, "top", 0, "Only print the N most likely winners (0 = all)")
	return cmd
}

// --------------------------------------------------------------------------
// team command
// --------------------------------------------------------------------------

func teamCmd() *cobra.Command {
	var flags simFlags
	cmd := &cobra.Command{
		Use:   "team NAME",
		Short: "Simulate the tournament and print one team's odds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return withRunner(func(ctx context.Context, cfg *config.Config, runner *sim.Runner) error {
				if !runner.Dataset().HasTeam(name) {
					return fmt.Errorf("%w: %s", tournament.ErrUnknownTeam, name)
				}
				res, err := runner.Run(ctx, flags.request(cfg))
				if err != nil {
					return err
				}
				ts, _ := res.Summary.Team(name)

				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "%s (group %s), %d samples, seed %d\n", ts.Team, ts.Group, ts.Samples, res.Seed)
				for pos := range ts.Positions {
					fmt.Fprintf(w, "%s in group\t%s\n", tournament.PositionLabel(pos), pct(ts.PositionProbability(pos)))
				}
				for _, p := range tournament.ProgressOrder {
					fmt.Fprintf(w, "Out at %s\t%s\n", p, pct(ts.Probability(p)))
				}
				return w.Flush()
			})
		},
	}
	flags.register(cmd)
	return cmd
}

// --------------------------------------------------------------------------
// groups command
// --------------------------------------------------------------------------

func groupsCmd() *cobra.Command {
	var (
		flags  simFlags
		sample int
	)
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Play the tournament and print each group table for one sample",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(func(ctx context.Context, cfg *config.Config, runner *sim.Runner) error {
				req := flags.request(cfg)
				if sample < 0 || sample >= req.Samples {
					return fmt.Errorf("--sample must be between 0 and %d", req.Samples-1)
				}
				t, err := runner.Play(ctx, req.Samples, req.Seed, req.Policy, nil)
				if err != nil {
					return err
				}
				for _, name := range t.GroupNames() {
					g, _ := t.Group(name)
					fmt.Println(g.Render(sample))
				}
				winner, err := t.Winner()
				if err != nil {
					return err
				}
				fmt.Printf("Winner in sample %d: %s\n", sample, winner[sample])
				return nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&sample, "sample", 0, "Sample index to print")
	return cmd
}

// --------------------------------------------------------------------------
// seed command
// --------------------------------------------------------------------------

func seedCmd() *cobra.Command {
	var (
		file   string
		schema bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a dataset file into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				if schema {
					if err := pool.ApplySchema(ctx); err != nil {
						return err
					}
					logger.Info("Schema applied")
				}
				d, err := refdata.FileSource{Path: file}.Load(ctx)
				if err != nil {
					return err
				}
				result, err := seed.UpsertDataset(ctx, pool.Pool, d)
				if err != nil {
					return err
				}
				logger.Info("Seed finished", "summary", result.Summary())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Dataset file (default: bundled 2022 World Cup)")
	cmd.Flags().BoolVar(&schema, "schema", true, "Create tables before seeding")
	return cmd
}

// --------------------------------------------------------------------------
// import-results command
// --------------------------------------------------------------------------

func importResultsCmd() *cobra.Command {
	var (
		htmlFile string
		out      string
	)
	cmd := &cobra.Command{
		Use:   "import-results",
		Short: "Read played matches from an HTML results table",
		Long: "Reads played matches from an HTML results table and merges them into the dataset. " +
			"With --out the merged dataset is written to a file; otherwise the results are stored in Postgres.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if htmlFile == "" {
				return fmt.Errorf("--html is required")
			}
			f, err := os.Open(htmlFile)
			if err != nil {
				return err
			}
			defer f.Close()
			results, err := refdata.ParseResultsHTML(f)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			if out != "" {
				d, err := refdata.FileSource{Path: cfg.DataFile}.Load(ctx)
				if err != nil {
					return err
				}
				added := d.MergeResults(results)
				if err := d.Validate(); err != nil {
					return err
				}
				raw, err := refdata.Encode(d, filepath.Ext(out))
				if err != nil {
					return err
				}
				if err := os.WriteFile(out, raw, 0o644); err != nil {
					return err
				}
				logger.Info("Results imported", "parsed", len(results), "new", added, "out", out)
				return nil
			}

			return withDB(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				d, err := refdata.PostgresSource{Pool: pool.Pool, Dataset: cfg.Dataset}.Load(ctx)
				if err != nil {
					return err
				}
				added := d.MergeResults(results)
				if err := d.Validate(); err != nil {
					return err
				}
				result, err := seed.ReplaceResults(ctx, pool.Pool, d.Name, d.Results)
				if err != nil {
					return err
				}
				result.ResultsImported = added
				logger.Info("Results imported", "parsed", len(results), "summary", result.Summary())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&htmlFile, "html", "", "HTML file with a results table")
	cmd.Flags().StringVar(&out, "out", "", "Write the merged dataset here instead of Postgres")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// withDB handles config loading, DB connection, and context cancellation.
func withDB(fn func(ctx context.Context, cfg *config.Config, pool *db.Pool) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}

// withRunner loads the configured dataset and builds a runner.
func withRunner(fn func(ctx context.Context, cfg *config.Config, runner *sim.Runner) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var source refdata.Source = refdata.FileSource{Path: cfg.DataFile}
	if cfg.DataSource == config.DataSourcePostgres {
		pool, err := db.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()
		source = refdata.PostgresSource{Pool: pool.Pool, Dataset: cfg.Dataset}
	}
	d, err := source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	params := predictor.Params{BaseGoals: cfg.BaseGoals, EloScale: cfg.EloScale}
	runner := sim.NewRunner(d, sim.PoissonFactory(d, params), logger)
	return fn(ctx, cfg, runner)
}

func pct(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}
