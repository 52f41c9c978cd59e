// Package jobs runs independent units of work with bounded fan-out.
package jobs

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Job is one unit of work producing a T.
type Job[T any] func(ctx context.Context) (T, error)

// Run executes jobs with at most limit running at once and returns their
// results in input order, or the first error observed.
//
// A failure does not interrupt jobs already running; they drain normally.
// Jobs that have not started when a failure is observed are never started.
func Run[T any](ctx context.Context, limit int, jobs []Job[T]) ([]T, error) {
	if limit < 1 {
		limit = 1
	}

	results := make([]T, len(jobs))
	var failed atomic.Bool

	var g errgroup.Group
	g.SetLimit(limit)

	for i, job := range jobs {
		if failed.Load() {
			break
		}
		g.Go(func() error {
			if failed.Load() {
				return nil
			}
			res, err := job(ctx)
			if err != nil {
				failed.Store(true)
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Counter is the shared done/total counter jobs report progress through.
type Counter struct {
	mu    sync.Mutex
	done  int
	total int
}

// NewCounter creates a counter expecting total increments.
func NewCounter(total int) *Counter {
	return &Counter{total: total}
}

// Next increments the counter and returns the new value. Values returned to
// concurrent callers are unique and increase monotonically.
func (c *Counter) Next() (done, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done++
	return c.done, c.total
}

// Done returns the current count.
func (c *Counter) Done() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}
