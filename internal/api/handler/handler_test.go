package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/semaphore"

	"github.com/albapepper/scoracle-sim/internal/cache"
	"github.com/albapepper/scoracle-sim/internal/config"
	"github.com/albapepper/scoracle-sim/internal/predictor"
	"github.com/albapepper/scoracle-sim/internal/refdata"
	"github.com/albapepper/scoracle-sim/internal/sim"
)

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()
	d, err := refdata.Default()
	if err != nil {
		t.Fatal(err)
	}
	runner := sim.NewRunner(d, sim.PoissonFactory(d, predictor.DefaultParams), slog.New(slog.NewTextHandler(io.Discard, nil)))
	cfg := &config.Config{
		DataSource: config.DataSourceFile,
		Samples:    40,
		MaxSamples: 400,
		Workers:    2,
		CacheTTL:   cache.TTLDefault,
	}
	h := New(runner, nil, cache.New(true), cfg, semaphore.NewWeighted(2))

	r := chi.NewRouter()
	r.Get("/", h.Root)
	r.Get("/health/db", h.HealthCheckDB)
	r.Get("/health/cache", h.HealthCheckCache)
	r.Get("/teams", h.ListTeams)
	r.Get("/groups", h.ListGroups)
	r.Get("/teams/{team}/progress", h.GetTeamProgress)
	r.Post("/simulations", h.RunSimulation)
	return r
}

func do(r http.Handler, method, target string, body []byte, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestListTeams_ETag(t *testing.T) {
	r := newTestRouter(t)

	first := do(r, http.MethodGet, "/teams", nil, nil)
	if first.Code != http.StatusOK {
		t.Fatalf("status = %d", first.Code)
	}
	if got := first.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("first X-Cache = %q, want MISS", got)
	}
	var teams []refdata.Team
	if err := json.Unmarshal(first.Body.Bytes(), &teams); err != nil {
		t.Fatal(err)
	}
	if len(teams) != 32 {
		t.Errorf("got %d teams, want 32", len(teams))
	}

	etag := first.Header().Get("ETag")
	second := do(r, http.MethodGet, "/teams", nil, http.Header{"If-None-Match": {etag}})
	if second.Code != http.StatusNotModified {
		t.Errorf("conditional status = %d, want 304", second.Code)
	}
}

func TestListGroups(t *testing.T) {
	r := newTestRouter(t)
	rec := do(r, http.MethodGet, "/groups", nil, nil)
	var groups []GroupView
	if err := json.Unmarshal(rec.Body.Bytes(), &groups); err != nil {
		t.Fatal(err)
	}
	if len(groups) != 8 {
		t.Fatalf("got %d groups, want 8", len(groups))
	}
	for _, g := range groups {
		if len(g.Teams) != 4 || len(g.Fixtures) != 6 {
			t.Errorf("group %s: %d teams, %d fixtures", g.Name, len(g.Teams), len(g.Fixtures))
		}
	}
}

func TestGetTeamProgress(t *testing.T) {
	r := newTestRouter(t)

	rec := do(r, http.MethodGet, "/teams/Brazil/progress?samples=30&seed=9", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var resp TeamProgressResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Samples != 30 || resp.Seed != 9 || resp.Odds.Team != "Brazil" {
		t.Errorf("unexpected response: %+v", resp)
	}

	again := do(r, http.MethodGet, "/teams/Brazil/progress?samples=30&seed=9", nil, nil)
	if got := again.Header().Get("X-Cache"); got != "HIT" {
		t.Errorf("seeded repeat X-Cache = %q, want HIT", got)
	}

	spaced := do(r, http.MethodGet, "/teams/Saudi%20Arabia/progress?samples=10", nil, nil)
	if spaced.Code != http.StatusOK {
		t.Errorf("escaped team status = %d", spaced.Code)
	}
}

func TestGetTeamProgress_Errors(t *testing.T) {
	r := newTestRouter(t)
	tests := []struct {
		target string
		status int
		code   string
	}{
		{"/teams/Atlantis/progress", http.StatusNotFound, "UNKNOWN_TEAM"},
		{"/teams/Brazil/progress?samples=abc", http.StatusBadRequest, "INVALID_SAMPLES"},
		{"/teams/Brazil/progress?samples=-1", http.StatusBadRequest, "INVALID_SAMPLES"},
		{"/teams/Brazil/progress?samples=401", http.StatusBadRequest, "INVALID_SAMPLES"},
		{"/teams/Brazil/progress?seed=x", http.StatusBadRequest, "INVALID_SEED"},
	}
	for _, tt := range tests {
		rec := do(r, http.MethodGet, tt.target, nil, nil)
		if rec.Code != tt.status {
			t.Errorf("%s: status = %d, want %d", tt.target, rec.Code, tt.status)
		}
		if !strings.Contains(rec.Body.String(), tt.code) {
			t.Errorf("%s: body %s missing %s", tt.target, rec.Body, tt.code)
		}
	}
}

func TestRunSimulation(t *testing.T) {
	r := newTestRouter(t)

	body := []byte(`{"samples": 50, "seed": 21, "head_to_head": true}`)
	rec := do(r, http.MethodPost, "/simulations", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var resp SimulationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Seed != 21 || resp.Policy != "head-to-head" || resp.Report.Samples != 50 {
		t.Errorf("unexpected response header fields: %+v", resp)
	}
	if len(resp.Report.Teams) != 32 {
		t.Errorf("report has %d teams", len(resp.Report.Teams))
	}
	var total float64
	for _, odds := range resp.Report.Teams {
		total += odds.Win
	}
	if total < 0.999 || total > 1.001 {
		t.Errorf("win probabilities sum to %f", total)
	}

	again := do(r, http.MethodPost, "/simulations", body, nil)
	if again.Header().Get("X-Cache") != "HIT" {
		t.Error("seeded simulation should be served from cache")
	}
	if !bytes.Equal(again.Body.Bytes(), rec.Body.Bytes()) {
		t.Error("cached body differs")
	}
}

func TestRunSimulation_DefaultsAndErrors(t *testing.T) {
	r := newTestRouter(t)

	rec := do(r, http.MethodPost, "/simulations", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("empty body status = %d: %s", rec.Code, rec.Body)
	}
	if rec.Header().Get("X-Cache") != "" {
		t.Error("unseeded simulation should not be cached")
	}

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"bad json", `{"samples":`, http.StatusBadRequest, "INVALID_BODY"},
		{"too many samples", `{"samples": 1000}`, http.StatusBadRequest, "INVALID_SAMPLES"},
		{"result without fixture", `{"results": [{"stage": "Group", "team_1": "Qatar", "team_2": "Brazil", "score_1": 1, "score_2": 0}]}`, http.StatusBadRequest, "INVALID_RESULT"},
		{"unknown team", `{"results": [{"stage": "R16", "team_1": "Atlantis", "team_2": "Brazil", "score_1": 1, "score_2": 0}]}`, http.StatusBadRequest, `"field":"results[0]"`},
		{"knockout draw", `{"results": [{"stage": "QF", "team_1": "Japan", "team_2": "Brazil", "score_1": 1, "score_2": 1}]}`, http.StatusBadRequest, "cannot be a draw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(r, http.MethodPost, "/simulations", []byte(tt.body), nil)
			if rec.Code != tt.status || !strings.Contains(rec.Body.String(), tt.code) {
				t.Errorf("got %d %s, want %d %s", rec.Code, rec.Body, tt.status, tt.code)
			}
		})
	}
}

func TestHealthCheckDB_NotConfigured(t *testing.T) {
	r := newTestRouter(t)
	rec := do(r, http.MethodGet, "/health/db", nil, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "not configured") {
		t.Errorf("got %d %s", rec.Code, rec.Body)
	}
}

func TestSimulationKey(t *testing.T) {
	base := sim.Request{Samples: 100, Seed: 7}
	withResults := base
	withResults.Results = []refdata.Result{{Stage: "Group", Team1: "Qatar", Team2: "Ecuador", Score1: 0, Score2: 2}}
	otherScore := base
	otherScore.Results = []refdata.Result{{Stage: "Group", Team1: "Qatar", Team2: "Ecuador", Score1: 1, Score2: 2}}

	keys := make(map[string]bool)
	for _, req := range []sim.Request{base, withResults, otherScore} {
		key, err := simulationKey(req)
		if err != nil {
			t.Fatalf("simulationKey: %v", err)
		}
		again, _ := simulationKey(req)
		if key != again {
			t.Errorf("key not stable: %q v %q", key, again)
		}
		keys[key] = true
	}
	if len(keys) != 3 {
		t.Errorf("got %d distinct keys, want 3", len(keys))
	}
}
