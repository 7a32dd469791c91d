package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// maxBodyBytes caps how much of a response body is kept.
const maxBodyBytes = 4 << 20

// Response is the outcome of one GET request.
type Response struct {
	StatusCode int
	Body       []byte
	Err        error
}

// OK reports whether the request completed without a transport error and returned 200.
func (r Response) OK() bool {
	return r.Err == nil && r.StatusCode == http.StatusOK
}

// TimedOut reports whether the request failed because its deadline passed.
func (r Response) TimedOut() bool {
	if r.Err == nil {
		return false
	}
	if errors.Is(r.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(r.Err, &netErr) && netErr.Timeout()
}

// Describe summarizes a failed response as "status=<n>, error=<msg>".
func (r Response) Describe() string {
	msg := ""
	if r.Err != nil {
		msg = r.Err.Error()
	}
	return fmt.Sprintf("status=%d, error=%s", r.StatusCode, msg)
}

// Handle is an in-flight request.
type Handle interface {
	// Ready reports, without blocking, whether Resolve would return immediately.
	Ready() bool
	// Done is closed once the outcome is available.
	Done() <-chan struct{}
	// Resolve blocks until the outcome is available and returns it.
	Resolve() Response
}

// Client issues GET requests without blocking the caller.
type Client interface {
	Get(url string, timeout time.Duration) Handle
}

// HTTPClient implements Client on top of net/http, one goroutine per request.
type HTTPClient struct {
	http *http.Client
}

// NewHTTPClient creates a client suited to sweeping many distinct hosts.
// Keep-alives are disabled since each host is typically contacted once.
func NewHTTPClient() *HTTPClient {
	transport := &http.Transport{
		DialContext:       (&net.Dialer{KeepAlive: -1}).DialContext,
		DisableKeepAlives: true,
	}
	return &HTTPClient{http: &http.Client{
		Transport: transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

// Get starts the request in the background and returns its handle.
func (c *HTTPClient) Get(url string, timeout time.Duration) Handle {
	h := &asyncResponse{done: make(chan struct{})}
	go func() {
		h.resp = c.do(url, timeout)
		close(h.done)
	}()
	return h
}

func (c *HTTPClient) do(url string, timeout time.Duration) Response {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Response{Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	return Response{StatusCode: resp.StatusCode, Body: body, Err: err}
}

type asyncResponse struct {
	done chan struct{}
	resp Response
}

func (h *asyncResponse) Ready() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

func (h *asyncResponse) Done() <-chan struct{} { return h.done }

func (h *asyncResponse) Resolve() Response {
	<-h.done
	return h.resp
}
