// Package mcptools exposes simulations as Model Context Protocol tools.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/semaphore"

	"github.com/albapepper/scoracle-sim/internal/config"
	"github.com/albapepper/scoracle-sim/internal/sim"
	"github.com/albapepper/scoracle-sim/internal/summary"
	"github.com/albapepper/scoracle-sim/internal/tournament"
)

type ListGroupsArgs struct{}

type SimulateArgs struct {
	Samples    int    `json:"samples,omitempty" jsonschema:"Number of simulated tournaments (default from SIM_SAMPLES)"`
	Seed       uint64 `json:"seed,omitempty" jsonschema:"Random seed (0 = random)"`
	HeadToHead bool   `json:"head_to_head,omitempty" jsonschema:"Break group ties with the head-to-head cascade"`
	Top        int    `json:"top,omitempty" jsonschema:"Only return the N most likely winners (0 = all)"`
}

type TeamProgressArgs struct {
	Team    string `json:"team" jsonschema:"Team name (required)"`
	Samples int    `json:"samples,omitempty" jsonschema:"Number of simulated tournaments (default from SIM_SAMPLES)"`
	Seed    uint64 `json:"seed,omitempty" jsonschema:"Random seed (0 = random)"`
}

type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Tools holds what the tool handlers need.
type Tools struct {
	runner   *sim.Runner
	cfg      *config.Config
	sims     *semaphore.Weighted
	registry []toolInfo
}

// NewServer registers every tool on a new MCP server. Simulations wait on
// sims, the limiter the HTTP handlers use.
func NewServer(runner *sim.Runner, cfg *config.Config, sims *semaphore.Weighted) (*mcp.Server, *Tools) {
	server := mcp.NewServer(&mcp.Implementation{Name: "scoracle-sim", Version: "1.0.0"}, nil)
	t := &Tools{runner: runner, cfg: cfg, sims: sims}

	addTool(server, &t.registry, &mcp.Tool{
		Name:        "list_groups",
		Description: "Groups of the loaded tournament with their teams and ratings",
	}, t.ListGroups)

	addTool(server, &t.registry, &mcp.Tool{
		Name:        "simulate_tournament",
		Description: "Simulate the tournament and return each team's odds, ranked by win probability",
	}, t.Simulate)

	addTool(server, &t.registry, &mcp.Tool{
		Name:        "team_progress",
		Description: "Simulate the tournament and return one team's group position, stage and win odds",
	}, t.TeamProgress)

	return server, t
}

// Handler serves the MCP server over streamable HTTP with JSON responses.
func Handler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})
}

// Names returns the registered tool names in order.
func (t *Tools) Names() []string {
	out := make([]string, len(t.registry))
	for i, ti := range t.registry {
		out[i] = ti.Name
	}
	return out
}

func addTool[T any](server *mcp.Server, registry *[]toolInfo, tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, T) (*mcp.CallToolResult, any, error)) {
	*registry = append(*registry, toolInfo{Name: tool.Name, Description: tool.Description})
	mcp.AddTool(server, tool, handler)
}

// --------------------------------------------------------------------------
// Tools
// --------------------------------------------------------------------------

// ListGroups returns the groups in draw order.
func (t *Tools) ListGroups(ctx context.Context, req *mcp.CallToolRequest, args ListGroupsArgs) (*mcp.CallToolResult, any, error) {
	d := t.runner.Dataset()
	ratings := d.Ratings()
	groups := make(map[string][]map[string]any)
	for _, team := range d.Teams {
		groups[team.Group] = append(groups[team.Group], map[string]any{
			"team":   team.Name,
			"rating": ratings[team.Name],
		})
	}
	return toolJSON(json.Marshal(map[string]any{"dataset": d.Name, "groups": groups}))
}

// Simulate runs a full simulation.
func (t *Tools) Simulate(ctx context.Context, req *mcp.CallToolRequest, args SimulateArgs) (*mcp.CallToolResult, any, error) {
	res, err := t.run(ctx, args.Samples, args.Seed, args.HeadToHead)
	if err != nil {
		return toolError(err), nil, nil
	}
	report := res.Summary.Report()
	if args.Top > 0 && args.Top < len(report.Teams) {
		report.Teams = report.Teams[:args.Top]
	}
	return toolJSON(json.Marshal(map[string]any{"seed": res.Seed, "report": report}))
}

// TeamProgress runs a simulation and reports one team.
func (t *Tools) TeamProgress(ctx context.Context, req *mcp.CallToolRequest, args TeamProgressArgs) (*mcp.CallToolResult, any, error) {
	if args.Team == "" {
		return toolError(fmt.Errorf("team is required")), nil, nil
	}
	if !t.runner.Dataset().HasTeam(args.Team) {
		return toolError(fmt.Errorf("%w: %s (known: %s)", tournament.ErrUnknownTeam, args.Team, knownTeams(t.runner))), nil, nil
	}
	res, err := t.run(ctx, args.Samples, args.Seed, t.cfg.HeadToHead)
	if err != nil {
		return toolError(err), nil, nil
	}
	ts, _ := res.Summary.Team(args.Team)
	return toolJSON(json.Marshal(struct {
		Seed uint64           `json:"seed"`
		Odds summary.TeamOdds `json:"odds"`
	}{res.Seed, ts.Odds()}))
}

func (t *Tools) run(ctx context.Context, samples int, seed uint64, headToHead bool) (*sim.Result, error) {
	if samples <= 0 {
		samples = t.cfg.Samples
	}
	if samples > t.cfg.MaxSamples {
		return nil, fmt.Errorf("samples must be at most %d", t.cfg.MaxSamples)
	}
	policy := tournament.PolicyDefault
	if headToHead {
		policy = tournament.PolicyHeadToHead
	}
	if err := t.sims.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for a simulation slot: %w", err)
	}
	defer t.sims.Release(1)
	return t.runner.Run(ctx, sim.Request{
		Samples: samples,
		Workers: t.cfg.Workers,
		Seed:    seed,
		Policy:  policy,
	})
}

func knownTeams(r *sim.Runner) string {
	names := make([]string, 0, len(r.Dataset().Teams))
	for _, team := range r.Dataset().Teams {
		names = append(names, team.Name)
	}
	sort.Strings(names)
	b, _ := json.Marshal(names)
	return string(b)
}

// --------------------------------------------------------------------------
// Results
// --------------------------------------------------------------------------

func toolJSON(res []byte, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		return toolError(err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(res)},
		},
	}, nil, nil
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
