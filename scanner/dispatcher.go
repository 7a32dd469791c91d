package scanner

import (
	"sync/atomic"
	"time"
)

// Phase1Result is what a Prober hands to the interrogation phase.
type Phase1Result struct {
	Confirmed []Target `json:"confirmed"` // sorted, unique
	Stats     Stats    `json:"stats"`
}

// Prober runs Phase 1 over a candidate list. Implementations issue exactly one
// probe per candidate and return only after every probe has been harvested.
type Prober interface {
	Probe(candidates []Target) Phase1Result
}

// DispatchOptions configures a Phase 1 run.
type DispatchOptions struct {
	Window        int           // max probes in flight, at least 1
	Timeout       time.Duration // per probe
	Signature     Signature
	ProgressEvery int           // emit progress every N completions (and on the last)
	IdleWait      time.Duration // sleep when nothing is ready and the window cannot grow
	YieldWait     time.Duration // sleep when nothing is ready but the window can grow

	// OnProgress and OnMatch are never invoked concurrently with themselves
	// or each other.
	OnProgress func(Progress)
	OnMatch    func(Target)
}

func (o DispatchOptions) window() int {
	return max(o.Window, 1)
}

// inFlight is a probe between issue and harvest.
type inFlight struct {
	target Target
	handle Handle
}

// Dispatcher drives Phase 1 from a single control loop: it keeps up to Window
// probes in flight, polls their handles without blocking, and harvests
// whichever completes first.
type Dispatcher struct {
	client Client
	opts   DispatchOptions
}

// NewDispatcher creates a polling dispatcher issuing probes through client.
func NewDispatcher(client Client, opts DispatchOptions) *Dispatcher {
	return &Dispatcher{client: client, opts: opts}
}

// Probe issues one request per candidate and returns the confirmed targets.
func (d *Dispatcher) Probe(candidates []Target) Phase1Result {
	total := len(candidates)
	window := d.opts.window()
	t := newTally(d.opts, total)

	var next atomic.Int64
	active := make([]inFlight, 0, min(window, total))

	for t.stats.Completed < total {
		for len(active) < window {
			index, ok := claim(&next, total)
			if !ok {
				break
			}
			target := candidates[index]
			active = append(active, inFlight{
				target: target,
				handle: d.client.Get(target.URL(d.opts.Signature.Path), d.opts.Timeout),
			})
			t.stats.Issued++
		}

		harvested := 0
		for i := 0; i < len(active); {
			if !active[i].handle.Ready() {
				i++
				continue
			}
			probe := active[i]
			last := len(active) - 1
			active[i] = active[last]
			active[last] = inFlight{}
			active = active[:last]

			t.observe(probe.target, probe.handle.Resolve())
			harvested++
		}
		if harvested > 0 {
			continue
		}

		if len(active) >= window || int(next.Load()) >= total {
			time.Sleep(d.opts.IdleWait)
		} else {
			time.Sleep(d.opts.YieldWait)
		}
	}

	return t.result()
}

// claim atomically takes the next unclaimed candidate index.
func claim(next *atomic.Int64, total int) (int, bool) {
	index := int(next.Add(1) - 1)
	if index >= total {
		return 0, false
	}
	return index, true
}

// tally accumulates harvest results. Callers serialize observe.
type tally struct {
	opts      DispatchOptions
	total     int
	start     time.Time
	stats     Stats
	confirmed ConfirmedSet
}

func newTally(opts DispatchOptions, total int) *tally {
	return &tally{opts: opts, total: total, start: time.Now()}
}

func (t *tally) observe(target Target, resp Response) {
	outcome := t.opts.Signature.Classify(resp)
	t.stats.record(outcome)

	if outcome == OutcomeMatch {
		t.confirmed.Add(target)
		if t.opts.OnMatch != nil {
			t.opts.OnMatch(target)
		}
	}

	every := t.opts.ProgressEvery
	done := t.stats.Completed
	if t.opts.OnProgress != nil && ((every > 0 && done%every == 0) || done == t.total) {
		elapsed := time.Since(t.start)
		t.opts.OnProgress(Progress{
			Completed: done,
			Total:     t.total,
			Matches:   t.confirmed.Len(),
			Elapsed:   elapsed,
			Rate:      Throughput(done, elapsed),
		})
	}
}

func (t *tally) result() Phase1Result {
	t.stats.Elapsed = time.Since(t.start)
	return Phase1Result{Confirmed: t.confirmed.Unique(), Stats: t.stats}
}
