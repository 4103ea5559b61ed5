package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsEnqueuedJobs(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []int64
		done = make(chan struct{}, 3)
	)

	pool := NewPool(8, 2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx, func(_ context.Context, jobID int64) {
		mu.Lock()
		seen = append(seen, jobID)
		mu.Unlock()
		done <- struct{}{}
	})

	require.NoError(t, pool.Enqueue(1))
	require.NoError(t, pool.Enqueue(2))
	require.NoError(t, pool.Enqueue(3))

	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for jobs to run")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []int64{1, 2, 3}, seen)
}

func TestPoolEnqueueFullQueue(t *testing.T) {
	pool := NewPool(1, 1)
	// Workers not started, so the single slot fills immediately.
	require.NoError(t, pool.Enqueue(1))
	require.ErrorIs(t, pool.Enqueue(2), ErrQueueFull)
}

func TestPoolStopsOnContextCancel(t *testing.T) {
	pool := NewPool(4, 2)
	ctx, cancel := context.WithCancel(context.Background())

	pool.Start(ctx, func(_ context.Context, _ int64) {})
	cancel()

	stopped := make(chan struct{})
	go func() {
		pool.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not stop after cancel")
	}
}
