package mcptools

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/semaphore"

	"github.com/albapepper/scoracle-sim/internal/config"
	"github.com/albapepper/scoracle-sim/internal/predictor"
	"github.com/albapepper/scoracle-sim/internal/refdata"
	"github.com/albapepper/scoracle-sim/internal/sim"
)

func newTools(t *testing.T) *Tools {
	t.Helper()
	return newLimitedTools(t, semaphore.NewWeighted(2))
}

func newLimitedTools(t *testing.T, sims *semaphore.Weighted) *Tools {
	t.Helper()
	d, err := refdata.Default()
	if err != nil {
		t.Fatal(err)
	}
	runner := sim.NewRunner(d, sim.PoissonFactory(d, predictor.DefaultParams), slog.New(slog.NewTextHandler(io.Discard, nil)))
	cfg := &config.Config{Samples: 50, MaxSamples: 500, Workers: 2}
	_, tools := NewServer(runner, cfg, sims)
	return tools
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("got %d content items", len(res.Content))
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T", res.Content[0])
	}
	return tc.Text
}

func TestRegistry(t *testing.T) {
	tools := newTools(t)
	want := []string{"list_groups", "simulate_tournament", "team_progress"}
	if got := tools.Names(); !slices.Equal(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
}

func TestSimulateTool(t *testing.T) {
	tools := newTools(t)
	res, _, err := tools.Simulate(context.Background(), nil, SimulateArgs{Samples: 60, Seed: 4, Top: 5})
	if err != nil || res.IsError {
		t.Fatalf("Simulate: %v %s", err, text(t, res))
	}
	var out struct {
		Seed   uint64 `json:"seed"`
		Report struct {
			Samples int `json:"samples"`
			Teams   []struct {
				Team string  `json:"team"`
				Win  float64 `json:"win"`
			} `json:"teams"`
		} `json:"report"`
	}
	if err := json.Unmarshal([]byte(text(t, res)), &out); err != nil {
		t.Fatal(err)
	}
	if out.Seed != 4 || out.Report.Samples != 60 || len(out.Report.Teams) != 5 {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestTeamProgressTool(t *testing.T) {
	tools := newTools(t)
	res, _, _ := tools.TeamProgress(context.Background(), nil, TeamProgressArgs{Team: "Brazil", Seed: 2})
	if res.IsError {
		t.Fatalf("TeamProgress: %s", text(t, res))
	}
	if !strings.Contains(text(t, res), `"team":"Brazil"`) {
		t.Errorf("output missing team: %s", text(t, res))
	}

	res, _, _ = tools.TeamProgress(context.Background(), nil, TeamProgressArgs{Team: "Atlantis"})
	if !res.IsError || !strings.Contains(text(t, res), "Atlantis") {
		t.Errorf("unknown team should be a tool error: %s", text(t, res))
	}

	res, _, _ = tools.Simulate(context.Background(), nil, SimulateArgs{Samples: 10000})
	if !res.IsError {
		t.Error("samples above the cap should be a tool error")
	}
}

func TestListGroupsTool(t *testing.T) {
	tools := newTools(t)
	res, _, _ := tools.ListGroups(context.Background(), nil, ListGroupsArgs{})
	var out struct {
		Groups map[string][]map[string]any `json:"groups"`
	}
	if err := json.Unmarshal([]byte(text(t, res)), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Groups) != 8 || len(out.Groups["A"]) != 4 {
		t.Fatalf("unexpected groups: %v", out.Groups)
	}
}

func TestSimulateTool_WaitsForSlot(t *testing.T) {
	sims := semaphore.NewWeighted(1)
	tools := newLimitedTools(t, sims)
	if !sims.TryAcquire(1) {
		t.Fatal("slot already taken")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	res, _, err := tools.Simulate(ctx, nil, SimulateArgs{Samples: 20, Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError || !strings.Contains(text(t, res), "simulation slot") {
		t.Fatalf("expected a slot error while saturated, got %s", text(t, res))
	}

	sims.Release(1)
	res, _, _ = tools.Simulate(context.Background(), nil, SimulateArgs{Samples: 20, Seed: 1})
	if res.IsError {
		t.Fatalf("Simulate after release: %s", text(t, res))
	}
	if !sims.TryAcquire(1) {
		t.Error("slot not released after the run")
	}
}
