package worker

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubResult struct {
	id  int
	err error
}

func (r stubResult) GetError() error { return r.err }

type stubJob struct {
	id   int
	fail bool
}

func (j stubJob) Execute(context.Context) Result {
	if j.fail {
		return stubResult{id: j.id, err: errors.New("job failed")}
	}
	return stubResult{id: j.id}
}

// run submits jobs with a collector draining concurrently and returns
// all results.
func run(pool *Pool, jobs ...Job) []Result {
	pool.Start()
	collector := NewResultCollector()
	done := pool.Collect(collector)
	for _, j := range jobs {
		pool.Submit(j)
	}
	pool.Wait()
	<-done
	return collector.Results()
}

func TestPool(t *testing.T) {
	pool := NewPool(context.Background(), 3)
	jobs := make([]Job, 10)
	for i := range jobs {
		jobs[i] = stubJob{id: i}
	}
	results := run(pool, jobs...)

	if len(results) != 10 {
		t.Fatalf("Expected 10 results, got %d", len(results))
	}
	seen := make(map[int]bool)
	for _, r := range results {
		if r.GetError() != nil {
			t.Errorf("Unexpected error: %v", r.GetError())
		}
		seen[r.(stubResult).id] = true
	}
	if len(seen) != 10 {
		t.Errorf("Expected every job to run exactly once, got %d distinct ids", len(seen))
	}
}

func TestPool_MoreJobsThanBuffers(t *testing.T) {
	// A single worker buffers 2 jobs and 2 results. Submitting far more
	// must not block: the collector drains results while jobs queue up.
	pool := NewPool(context.Background(), 1)
	jobs := make([]Job, 50)
	for i := range jobs {
		jobs[i] = stubJob{id: i}
	}

	finished := make(chan []Result, 1)
	go func() { finished <- run(pool, jobs...) }()

	select {
	case results := <-finished:
		if len(results) != 50 {
			t.Fatalf("Expected 50 results, got %d", len(results))
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Pool deadlocked with more jobs than channel buffers")
	}
}

func TestPool_ErrorsPassThrough(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	results := run(pool, stubJob{id: 1}, stubJob{id: 2, fail: true})

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	failures := 0
	for _, r := range results {
		if r.GetError() != nil {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("Expected 1 failed job, got %d", failures)
	}
}

func TestPool_ZeroWorkers(t *testing.T) {
	pool := NewPool(context.Background(), 0)
	results := run(pool, stubJob{id: 1})
	if len(results) != 1 {
		t.Fatalf("Expected a single worker fallback, got %d results", len(results))
	}
}

func TestPool_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pool := NewPool(ctx, 2)
	jobs := make([]Job, 20)
	for i := range jobs {
		jobs[i] = stubJob{id: i}
	}

	finished := make(chan []Result, 1)
	go func() { finished <- run(pool, jobs...) }()

	select {
	case results := <-finished:
		if len(results) > 20 {
			t.Errorf("Expected at most the submitted jobs, got %d results", len(results))
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Pool did not stop on cancelled context")
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewPool(context.Background(), 1)
	pool.Start()
	pool.Shutdown()
	// Must not block or panic.
	pool.Submit(stubJob{id: 1})
}
