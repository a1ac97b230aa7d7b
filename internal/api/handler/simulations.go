package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/albapepper/scoracle-sim/internal/api/respond"
	"github.com/albapepper/scoracle-sim/internal/cache"
	"github.com/albapepper/scoracle-sim/internal/refdata"
	"github.com/albapepper/scoracle-sim/internal/sim"
	"github.com/albapepper/scoracle-sim/internal/summary"
)

// SimulationRequest is the body of POST /simulations.
type SimulationRequest struct {
	Samples    int              `json:"samples"`
	Seed       uint64           `json:"seed"`
	HeadToHead *bool            `json:"head_to_head,omitempty"`
	Results    []refdata.Result `json:"results,omitempty"`
}

// SimulationResponse is a full simulation report.
type SimulationResponse struct {
	Dataset    string         `json:"dataset"`
	Seed       uint64         `json:"seed"`
	Policy     string         `json:"policy"`
	DurationMS int64          `json:"duration_ms"`
	Report     summary.Report `json:"report"`
}

// RunSimulation simulates the tournament and returns every team's odds.
// @Summary Run a simulation
// @Description Simulates the remaining tournament. Supplied results are treated as already played, on top of the dataset's known results. Responses are cached when a seed is given.
// @Tags simulations
// @Accept json
// @Produce json
// @Param request body SimulationRequest true "Simulation parameters"
// @Success 200 {object} SimulationResponse
// @Failure 400 {object} respond.ErrorResponse
// @Router /simulations [post]
func (h *Handler) RunSimulation(w http.ResponseWriter, r *http.Request) {
	var body SimulationRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be JSON", err.Error())
			return
		}
	}
	samples, ok := h.checkSamples(body.Samples)
	if !ok {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_SAMPLES", "samples must be between 1 and "+strconv.Itoa(h.cfg.MaxSamples))
		return
	}
	if err := h.runner.Dataset().CheckResults(body.Results); err != nil {
		writeResultErrors(w, err)
		return
	}
	headToHead := h.cfg.HeadToHead
	if body.HeadToHead != nil {
		headToHead = *body.HeadToHead
	}

	req := sim.Request{
		Samples: samples,
		Workers: h.cfg.Workers,
		Seed:    body.Seed,
		Policy:  policyFor(headToHead),
		Results: body.Results,
	}
	build := func() (any, error) {
		res, err := h.simulate(r.Context(), req)
		if err != nil {
			return nil, err
		}
		return SimulationResponse{
			Dataset:    h.runner.Dataset().Name,
			Seed:       res.Seed,
			Policy:     req.Policy.String(),
			DurationMS: res.Duration.Milliseconds(),
			Report:     res.Summary.Report(),
		}, nil
	}

	if body.Seed == 0 {
		h.serveFresh(w, build)
		return
	}
	key, err := simulationKey(req)
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "ENCODE_FAILED", "Could not encode request", err.Error())
		return
	}
	h.serveCached(w, r, key, h.cfg.CacheTTL, build)
}

// simulationKey identifies a seeded request. Supplied results are folded
// in as a hash of their JSON encoding.
func simulationKey(req sim.Request) (string, error) {
	params := map[string]string{
		"samples": strconv.Itoa(req.Samples),
		"seed":    strconv.FormatUint(req.Seed, 10),
		"policy":  req.Policy.String(),
	}
	if len(req.Results) > 0 {
		raw, err := json.Marshal(req.Results)
		if err != nil {
			return "", fmt.Errorf("encode results: %w", err)
		}
		params["results"] = cache.ComputeETag(raw)
	}
	return cache.Key("simulation", params), nil
}

func writeResultErrors(w http.ResponseWriter, err error) {
	var verrs refdata.ValidationErrors
	if !errors.As(err, &verrs) {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_RESULT", "Supplied results are invalid", err.Error())
		return
	}
	fields := make([]respond.FieldError, len(verrs.Errors))
	for i, e := range verrs.Errors {
		fields[i] = respond.FieldError{Field: e.Field, Message: e.Message}
	}
	respond.WriteFieldErrors(w, http.StatusBadRequest, "INVALID_RESULT", "Supplied results are invalid", fields)
}
