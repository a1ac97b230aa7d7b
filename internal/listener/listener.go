// Package listener keeps a running server's dataset current. It holds a
// dedicated pgx connection (not from the pool) listening on
// config.ResultsChannel and reloads the dataset when a change for it
// arrives.
package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/albapepper/scoracle-sim/internal/cache"
	"github.com/albapepper/scoracle-sim/internal/config"
	"github.com/albapepper/scoracle-sim/internal/predictor"
	"github.com/albapepper/scoracle-sim/internal/refdata"
	"github.com/albapepper/scoracle-sim/internal/seed"
	"github.com/albapepper/scoracle-sim/internal/sim"
)

const (
	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
)

// --------------------------------------------------------------------------
// Reloading
// --------------------------------------------------------------------------

// Reloader re-reads the dataset and, when it changed, swaps it into the
// runner and drops cached responses.
type Reloader struct {
	Source refdata.Source
	Runner *sim.Runner
	Cache  *cache.Cache
	Params predictor.Params
	Logger *slog.Logger

	mu sync.Mutex
}

// Reload loads the dataset. It reports whether anything changed.
func (r *Reloader) Reload(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, err := r.Source.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("reload dataset: %w", err)
	}
	if reflect.DeepEqual(d, r.Runner.Dataset()) {
		return false, nil
	}
	r.Runner.Swap(d, sim.PoissonFactory(d, r.Params))
	flushed := r.Cache.Flush()
	r.Logger.Info("Dataset reloaded",
		"name", d.Name,
		"teams", len(d.Teams),
		"results", len(d.Results),
		"cache_entries_dropped", flushed)
	return true, nil
}

// --------------------------------------------------------------------------
// LISTEN/NOTIFY
// --------------------------------------------------------------------------

// Start opens a dedicated connection and listens for result changes to
// dataset. It reconnects automatically on connection loss. Blocks until ctx
// is cancelled. Intended to be called with `go`.
func Start(ctx context.Context, dbURL, dataset string, r *Reloader, logger *slog.Logger) {
	backoff := reconnectBackoff

	for {
		err := listenLoop(ctx, dbURL, dataset, r, logger)
		if ctx.Err() != nil {
			logger.Info("Results listener stopped (context cancelled)")
			return
		}

		logger.Error("Results listener disconnected, reconnecting...",
			"error", err, "backoff", backoff)

		select {
		case <-time.After(backoff):
			backoff = min(backoff*2, maxReconnect)
		case <-ctx.Done():
			return
		}
	}
}

// listenLoop runs a single listen session. Returns when the connection drops
// or the context is cancelled.
func listenLoop(ctx context.Context, dbURL, dataset string, r *Reloader, logger *slog.Logger) error {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+config.ResultsChannel); err != nil {
		return fmt.Errorf("LISTEN %s: %w", config.ResultsChannel, err)
	}
	logger.Info("Results listener connected", "channel", config.ResultsChannel, "dataset", dataset)

	// Changes committed while disconnected.
	if _, err := r.Reload(ctx); err != nil {
		logger.Warn("Reload after connect failed", "error", err)
	}

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}
		handleNotification(ctx, notification.Payload, dataset, r, logger)
	}
}

func handleNotification(ctx context.Context, payload, dataset string, r *Reloader, logger *slog.Logger) {
	var event seed.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		logger.Warn("Failed to parse results event", "payload", payload, "error", err)
		return
	}
	if event.Dataset != dataset {
		return
	}
	logger.Info("Results event received", "dataset", event.Dataset, "ts", event.Timestamp)
	if _, err := r.Reload(ctx); err != nil {
		logger.Warn("Reload failed", "dataset", dataset, "error", err)
	}
}
