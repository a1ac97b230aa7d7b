// Package maintenance runs periodic background tasks as Go tickers.
package maintenance

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Task is one periodic job. A zero Interval disables it.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Start launches a ticker per enabled task. Blocks until ctx is cancelled
// and every task has returned. Intended to be called with `go`.
func Start(ctx context.Context, tasks []Task, logger *slog.Logger) {
	var wg sync.WaitGroup
	started := 0
	for _, task := range tasks {
		if task.Interval <= 0 || task.Run == nil {
			continue
		}
		started++
		t := time.NewTicker(task.Interval)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer t.Stop()
			runLoop(ctx, t.C, task, logger)
		}()
		logger.Info("Maintenance ticker started", "task", task.Name, "interval", task.Interval)
	}
	if started == 0 {
		return
	}

	<-ctx.Done()
	wg.Wait()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, task Task, logger *slog.Logger) {
	for {
		select {
		case <-ch:
			start := time.Now()
			if err := task.Run(ctx); err != nil {
				logger.Warn("Maintenance task failed", "task", task.Name, "error", err)
				continue
			}
			logger.Debug("Maintenance task done", "task", task.Name, "duration", time.Since(start).Round(time.Millisecond))
		case <-ctx.Done():
			return
		}
	}
}
