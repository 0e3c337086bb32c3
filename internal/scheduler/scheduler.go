package scheduler

import (
	"context"
	"log/slog"
	"time"
)

type Task func(ctx context.Context) error

// Every runs task immediately and then again interval after each run
// finishes, so runs never overlap. Task errors are logged and do not stop
// the loop; it returns when ctx is done.
func Every(ctx context.Context, interval time.Duration, name string, task Task, log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("task", name)

	for {
		started := time.Now()
		if err := task(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("run failed", "err", err)
		}
		log.Info("run finished", "took", time.Since(started).Round(time.Millisecond), "next_in", interval)

		t := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}
