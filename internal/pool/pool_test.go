package pool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRun_AllTasksComplete(t *testing.T) {
	t.Parallel()

	tasks := make([]Task[int], 20)
	for i := range tasks {
		i := i
		tasks[i] = func(context.Context) int { return i }
	}

	seen := map[int]bool{}
	for v := range Run(context.Background(), tasks, 4) {
		seen[v] = true
	}
	require.Len(t, seen, 20)
}

// TestRun_ConcurrencyBound checks that no more than W tasks are ever running
// at once for a batch of K > W tasks.
func TestRun_ConcurrencyBound(t *testing.T) {
	t.Parallel()

	const workers = 3
	var running, peak atomic.Int32
	tasks := make([]Task[struct{}], 12)
	for i := range tasks {
		tasks[i] = func(context.Context) struct{} {
			cur := running.Add(1)
			for {
				old := peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
			return struct{}{}
		}
	}

	count := 0
	for range Run(context.Background(), tasks, workers) {
		count++
	}
	require.Equal(t, 12, count)
	require.LessOrEqual(t, peak.Load(), int32(workers))
}

// TestRun_FailureIsolation verifies a failed task outcome never prevents the
// rest of the batch from completing.
func TestRun_FailureIsolation(t *testing.T) {
	t.Parallel()

	type outcome struct {
		id  int
		err error
	}
	tasks := make([]Task[outcome], 5)
	for i := range tasks {
		i := i
		tasks[i] = func(context.Context) outcome {
			if i == 2 {
				return outcome{id: i, err: errors.New("task failed")}
			}
			return outcome{id: i}
		}
	}

	var failed, succeeded int
	for o := range Run(context.Background(), tasks, 2) {
		if o.err != nil {
			failed++
		} else {
			succeeded++
		}
	}
	require.Equal(t, 1, failed)
	require.Equal(t, 4, succeeded)
}

// TestRun_CompletionOrder confirms results surface as they finish, not in
// submission order.
func TestRun_CompletionOrder(t *testing.T) {
	t.Parallel()

	slowDone := make(chan struct{})
	tasks := []Task[string]{
		func(context.Context) string {
			<-slowDone
			return "slow"
		},
		func(context.Context) string {
			defer close(slowDone)
			return "fast"
		},
	}

	out := Run(context.Background(), tasks, 2)
	require.Equal(t, "fast", <-out)
	require.Equal(t, "slow", <-out)
	_, open := <-out
	require.False(t, open)
}

// TestRun_CancelAbandonsPending ensures canceled batches stop starting new
// tasks and still close the completion channel.
func TestRun_CancelAbandonsPending(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var started atomic.Int32
	tasks := make([]Task[int], 10)
	for i := range tasks {
		i := i
		tasks[i] = func(context.Context) int {
			started.Add(1)
			if i == 0 {
				cancel()
			}
			return i
		}
	}

	drained := 0
	for range Run(ctx, tasks, 1) {
		drained++
	}
	require.Less(t, int(started.Load()), 10)
	require.Equal(t, int(started.Load()), drained)
}

func TestRun_EmptyBatch(t *testing.T) {
	t.Parallel()

	out := Run[int](context.Background(), nil, 5)
	select {
	case _, open := <-out:
		require.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("completion channel never closed")
	}
}
