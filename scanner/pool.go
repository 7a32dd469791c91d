package scanner

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// PooledDispatcher runs Phase 1 with one goroutine per claimed candidate,
// bounded by a weighted semaphore of size Window. Handles are resolved by
// blocking inside each goroutine instead of being polled.
type PooledDispatcher struct {
	client Client
	opts   DispatchOptions
}

// NewPooledDispatcher creates a semaphore-bounded dispatcher.
func NewPooledDispatcher(client Client, opts DispatchOptions) *PooledDispatcher {
	return &PooledDispatcher{client: client, opts: opts}
}

// Probe issues one request per candidate and returns the confirmed targets.
func (p *PooledDispatcher) Probe(candidates []Target) Phase1Result {
	total := len(candidates)
	sem := semaphore.NewWeighted(int64(p.opts.window()))
	t := newTally(p.opts, total)

	var (
		next atomic.Int64
		wg   sync.WaitGroup
		mu   sync.Mutex // guards t
	)
	ctx := context.Background()
	issued := 0

	for {
		index, ok := claim(&next, total)
		if !ok {
			break
		}
		// Acquire cannot fail on a context that is never cancelled.
		_ = sem.Acquire(ctx, 1)
		issued++

		wg.Add(1)
		go func(target Target) {
			defer wg.Done()
			defer sem.Release(1)

			resp := p.client.Get(target.URL(p.opts.Signature.Path), p.opts.Timeout).Resolve()

			mu.Lock()
			t.observe(target, resp)
			mu.Unlock()
		}(candidates[index])
	}

	wg.Wait()
	t.stats.Issued = issued
	return t.result()
}
