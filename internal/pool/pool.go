// Package pool executes a bounded batch of tasks and surfaces completions as
// they finish.
package pool

import (
	"context"
	"sync"
)

// Task is one unit of work. Tasks must be total: any failure is encoded in
// the returned value, never raised past the task boundary.
type Task[T any] func(ctx context.Context) T

// Run executes tasks with at most workers running concurrently and returns a
// channel carrying each result in completion order, not submission order. The
// channel closes once every task has been drained. When ctx is canceled,
// tasks not yet started are abandoned and produce no result; tasks already
// running finish and are still surfaced.
func Run[T any](ctx context.Context, tasks []Task[T], workers int) <-chan T {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(tasks) {
		workers = len(tasks)
	}

	pending := make(chan Task[T], len(tasks))
	for _, task := range tasks {
		pending <- task
	}
	close(pending)

	out := make(chan T, len(tasks))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range pending {
				if ctx.Err() != nil {
					return
				}
				out <- task(ctx)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
