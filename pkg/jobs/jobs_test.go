package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunKeepsInputOrder(t *testing.T) {
	var jobs []Job[int]
	for i := 0; i < 20; i++ {
		jobs = append(jobs, func(ctx context.Context) (int, error) {
			// later jobs finish first
			time.Sleep(time.Duration(20-i) * time.Millisecond)
			return i * i, nil
		})
	}

	results, err := Run(context.Background(), 8, jobs)
	require.NoError(t, err)
	require.Len(t, results, 20)
	for i, r := range results {
		assert.Equal(t, i*i, r)
	}
}

func TestRunRespectsLimit(t *testing.T) {
	var running, peak atomic.Int32
	var jobs []Job[struct{}]
	for i := 0; i < 30; i++ {
		jobs = append(jobs, func(ctx context.Context) (struct{}, error) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return struct{}{}, nil
		})
	}

	_, err := Run(context.Background(), 3, jobs)
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.Greater(t, peak.Load(), int32(0))
}

func TestRunStopsSchedulingAfterFailure(t *testing.T) {
	boom := errors.New("boom")
	var started atomic.Int32

	var jobs []Job[int]
	jobs = append(jobs, func(ctx context.Context) (int, error) {
		started.Add(1)
		return 0, boom
	})
	for i := 0; i < 50; i++ {
		jobs = append(jobs, func(ctx context.Context) (int, error) {
			started.Add(1)
			time.Sleep(time.Millisecond)
			return i, nil
		})
	}

	results, err := Run(context.Background(), 1, jobs)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, results)
	// with a single worker the failing job runs first; at most one more may
	// have been handed to the group before the failure was observed
	assert.LessOrEqual(t, started.Load(), int32(2))
}

func TestRunDrainsInFlightJobs(t *testing.T) {
	boom := errors.New("boom")
	var finished atomic.Bool
	release := make(chan struct{})

	jobs := []Job[int]{
		func(ctx context.Context) (int, error) {
			<-release
			time.Sleep(10 * time.Millisecond)
			finished.Store(true)
			return 1, nil
		},
		func(ctx context.Context) (int, error) {
			close(release)
			return 0, boom
		},
	}

	_, err := Run(context.Background(), 2, jobs)
	assert.ErrorIs(t, err, boom)
	assert.True(t, finished.Load(), "in-flight sibling should run to completion")
}

func TestRunEmptyAndZeroLimit(t *testing.T) {
	results, err := Run[int](context.Background(), 0, nil)
	require.NoError(t, err)
	assert.Empty(t, results)

	strResults, err := Run(context.Background(), 0, []Job[string]{
		func(ctx context.Context) (string, error) { return "ok", nil },
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, strResults)
}

func TestCounterIsMonotonic(t *testing.T) {
	c := NewCounter(100)
	seen := make([]int, 0, 100)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			done, total := c.Next()
			assert.Equal(t, 100, total)
			mu.Lock()
			seen = append(seen, done)
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, c.Done())
	unique := map[int]bool{}
	for _, v := range seen {
		unique[v] = true
	}
	assert.Len(t, unique, 100)
}
