// Package handler provides HTTP handlers for all API endpoints. Reference
// data responses are cached with ETags; simulations are cached only when
// the request pins a seed, since only then is the output reproducible.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/albapepper/scoracle-sim/internal/api/respond"
	"github.com/albapepper/scoracle-sim/internal/cache"
	"github.com/albapepper/scoracle-sim/internal/config"
	"github.com/albapepper/scoracle-sim/internal/db"
	"github.com/albapepper/scoracle-sim/internal/sim"
	"github.com/albapepper/scoracle-sim/internal/tournament"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	runner *sim.Runner
	pool   *db.Pool // nil when reference data comes from a file
	cache  *cache.Cache
	cfg    *config.Config
	sims   *semaphore.Weighted
}

// New creates a Handler with shared dependencies. sims limits concurrent
// simulations and is shared with the MCP tools.
func New(runner *sim.Runner, pool *db.Pool, c *cache.Cache, cfg *config.Config, sims *semaphore.Weighted) *Handler {
	return &Handler{
		runner: runner,
		pool:   pool,
		cache:  c,
		cfg:    cfg,
		sims:   sims,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, status, and the loaded dataset.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":        "Scoracle Simulation API",
		"version":     "1.0.0",
		"status":      "running",
		"docs":        "/docs",
		"mcp":         "/mcp",
		"dataset":     h.runner.Dataset().Name,
		"data_source": h.cfg.DataSource,
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity when reference data is read from Postgres.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if h.pool == nil {
		respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"database":  "not configured",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	if err := h.pool.HealthCheck(r.Context()); err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns in-memory cache statistics (active keys, expired keys, hits, misses).
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// simulate runs one request under the concurrency limit.
func (h *Handler) simulate(ctx context.Context, req sim.Request) (*sim.Result, error) {
	if err := h.sims.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer h.sims.Release(1)
	return h.runner.Run(ctx, req)
}

// checkSamples applies the default and the configured ceiling.
func (h *Handler) checkSamples(n int) (int, bool) {
	if n == 0 {
		return h.cfg.Samples, true
	}
	return n, n > 0 && n <= h.cfg.MaxSamples
}

// writeSimError maps simulation failures to HTTP errors.
func writeSimError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tournament.ErrFixtureNotFound),
		errors.Is(err, tournament.ErrDrawInKnockout),
		errors.Is(err, tournament.ErrMalformedResult),
		errors.Is(err, tournament.ErrUnknownStage),
		errors.Is(err, tournament.ErrUnknownTeam):
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_RESULT", "A supplied result does not fit the fixture list", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.WriteError(w, http.StatusServiceUnavailable, "CANCELLED", "Simulation was cancelled")
	default:
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "SIMULATION_FAILED", "Simulation failed", err.Error())
	}
}

func queryInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

func queryBool(r *http.Request, key string, fallback bool) bool {
	if b, err := strconv.ParseBool(r.URL.Query().Get(key)); err == nil {
		return b
	}
	return fallback
}

func policyFor(headToHead bool) tournament.StandingsPolicy {
	if headToHead {
		return tournament.PolicyHeadToHead
	}
	return tournament.PolicyDefault
}
