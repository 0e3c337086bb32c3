package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"jobhunt-scout/internal/scheduler"
)

func TestEveryRunsSequentiallyUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs, active, overlap atomic.Int32
	done := make(chan struct{})
	go func() {
		scheduler.Every(ctx, time.Millisecond, "test", func(context.Context) error {
			if active.Add(1) > 1 {
				overlap.Add(1)
			}
			defer active.Add(-1)
			time.Sleep(2 * time.Millisecond)
			if runs.Add(1) == 3 {
				cancel()
			}
			return errors.New("keeps going")
		}, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Equal(t, int32(3), runs.Load())
	assert.Zero(t, overlap.Load())
}
