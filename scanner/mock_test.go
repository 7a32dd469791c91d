package scanner

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

// fakeClient records every request and answers after a per-request delay.
type fakeClient struct {
	respond func(url string) Response
	delay   func(url string) time.Duration

	mu    sync.Mutex
	calls map[string]int
	order []string

	outstanding    atomic.Int64
	maxOutstanding atomic.Int64
}

func newFakeClient(respond func(string) Response) *fakeClient {
	return &fakeClient{respond: respond, calls: make(map[string]int)}
}

// withRandomDelay makes completions arrive out of submission order.
func (c *fakeClient) withRandomDelay(seed int64, maxDelay time.Duration) *fakeClient {
	rng := rand.New(rand.NewSource(seed))
	var mu sync.Mutex
	c.delay = func(string) time.Duration {
		mu.Lock()
		defer mu.Unlock()
		return time.Duration(rng.Int63n(int64(maxDelay) + 1))
	}
	return c
}

func (c *fakeClient) Get(url string, _ time.Duration) Handle {
	c.mu.Lock()
	c.calls[url]++
	c.order = append(c.order, url)
	c.mu.Unlock()

	n := c.outstanding.Add(1)
	for {
		prev := c.maxOutstanding.Load()
		if n <= prev || c.maxOutstanding.CompareAndSwap(prev, n) {
			break
		}
	}

	h := &fakeHandle{client: c, done: make(chan struct{}), resp: c.respond(url)}
	var d time.Duration
	if c.delay != nil {
		d = c.delay(url)
	}
	if d == 0 {
		close(h.done)
	} else {
		time.AfterFunc(d, func() { close(h.done) })
	}
	return h
}

func (c *fakeClient) callCount(url string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[url]
}

func (c *fakeClient) totalCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

type fakeHandle struct {
	client   *fakeClient
	done     chan struct{}
	resp     Response
	resolved atomic.Bool
}

func (h *fakeHandle) Ready() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

func (h *fakeHandle) Done() <-chan struct{} { return h.done }

func (h *fakeHandle) Resolve() Response {
	<-h.done
	if h.resolved.CompareAndSwap(false, true) {
		h.client.outstanding.Add(-1)
	}
	return h.resp
}
