package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/albapepper/scoracle-sim/internal/api/respond"
	"github.com/albapepper/scoracle-sim/internal/cache"
	"github.com/albapepper/scoracle-sim/internal/refdata"
	"github.com/albapepper/scoracle-sim/internal/sim"
	"github.com/albapepper/scoracle-sim/internal/summary"
	"github.com/albapepper/scoracle-sim/internal/tournament"
)

// GroupView is one group with its teams and group fixtures.
type GroupView struct {
	Name     string            `json:"name"`
	Teams    []refdata.Team    `json:"teams"`
	Fixtures []refdata.Fixture `json:"fixtures"`
}

// TeamProgressResponse is one team's odds from a simulation.
type TeamProgressResponse struct {
	Dataset string           `json:"dataset"`
	Samples int              `json:"samples"`
	Seed    uint64           `json:"seed"`
	Odds    summary.TeamOdds `json:"odds"`
}

// ListTeams returns every team in the loaded dataset.
// @Summary List teams
// @Description Returns every team with its group and rating.
// @Tags reference
// @Produce json
// @Success 200 {array} refdata.Team
// @Router /teams [get]
func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, "teams", cache.TTLReference, func() (any, error) {
		return h.runner.Dataset().Teams, nil
	})
}

// ListGroups returns every group with its teams and fixtures.
// @Summary List groups
// @Description Returns each group's teams in draw order and its group-stage fixtures.
// @Tags reference
// @Produce json
// @Success 200 {array} GroupView
// @Router /groups [get]
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, "groups", cache.TTLReference, func() (any, error) {
		return Groups(h.runner.Dataset()), nil
	})
}

// Groups builds the group views of a dataset.
func Groups(d *refdata.Dataset) []GroupView {
	var out []GroupView
	for _, name := range d.Groups() {
		g := GroupView{Name: name, Teams: d.TeamsIn(name)}
		members := make(map[string]bool, len(g.Teams))
		for _, t := range g.Teams {
			members[t.Name] = true
		}
		for _, f := range d.Fixtures {
			if f.Stage == string(tournament.StageGroup) && members[f.Team1] {
				g.Fixtures = append(g.Fixtures, f)
			}
		}
		out = append(out, g)
	}
	return out
}

// GetTeamProgress simulates the tournament and returns one team's odds.
// @Summary Team progress odds
// @Description Simulates the tournament and returns the team's group position, stage and win probabilities.
// @Tags simulations
// @Produce json
// @Param team path string true "Team name"
// @Param samples query int false "Number of samples (default SIM_SAMPLES)"
// @Param seed query int false "Seed; responses are cached when set"
// @Param head_to_head query bool false "Use the head-to-head tie-break cascade"
// @Success 200 {object} TeamProgressResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /teams/{team}/progress [get]
func (h *Handler) GetTeamProgress(w http.ResponseWriter, r *http.Request) {
	team, err := url.PathUnescape(chi.URLParam(r, "team"))
	if err != nil || !h.runner.Dataset().HasTeam(team) {
		respond.WriteError(w, http.StatusNotFound, "UNKNOWN_TEAM", "No team named "+chi.URLParam(r, "team"))
		return
	}
	n, err := queryInt(r, "samples")
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_SAMPLES", "samples must be an integer")
		return
	}
	samples, ok := h.checkSamples(n)
	if !ok {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_SAMPLES", "samples must be between 1 and "+strconv.Itoa(h.cfg.MaxSamples))
		return
	}
	seed, err := strconv.ParseUint(r.URL.Query().Get("seed"), 10, 64)
	if err != nil && r.URL.Query().Get("seed") != "" {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_SEED", "seed must be a non-negative integer")
		return
	}
	req := sim.Request{
		Samples: samples,
		Workers: h.cfg.Workers,
		Seed:    seed,
		Policy:  policyFor(queryBool(r, "head_to_head", h.cfg.HeadToHead)),
	}

	build := func() (any, error) {
		res, err := h.simulate(r.Context(), req)
		if err != nil {
			return nil, err
		}
		ts, _ := res.Summary.Team(team)
		return TeamProgressResponse{
			Dataset: h.runner.Dataset().Name,
			Samples: res.Summary.Samples,
			Seed:    res.Seed,
			Odds:    ts.Odds(),
		}, nil
	}
	if seed == 0 {
		h.serveFresh(w, build)
		return
	}
	key := cache.Key("progress", map[string]string{
		"team":    team,
		"samples": strconv.Itoa(samples),
		"seed":    strconv.FormatUint(seed, 10),
		"policy":  req.Policy.String(),
	})
	h.serveCached(w, r, key, h.cfg.CacheTTL, build)
}

// --------------------------------------------------------------------------
// Cached responses
// --------------------------------------------------------------------------

// serveCached answers from the cache, honoring If-None-Match, or builds,
// stores and writes the response.
func (h *Handler) serveCached(w http.ResponseWriter, r *http.Request, key string, ttl time.Duration, build func() (any, error)) {
	if data, etag, ok := h.cache.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	v, err := build()
	if err != nil {
		writeSimError(w, err)
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODE_FAILED", "Could not encode response")
		return
	}
	etag := h.cache.Set(key, data, ttl)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, ttl, false)
}

// serveFresh builds and writes a response that must not be cached.
func (h *Handler) serveFresh(w http.ResponseWriter, build func() (any, error)) {
	v, err := build()
	if err != nil {
		writeSimError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, v)
}
