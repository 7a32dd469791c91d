package scanner

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[]}`))
		case "/slow":
			time.Sleep(300 * time.Millisecond)
			_, _ = w.Write([]byte("late"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewHTTPClient()

	resp := client.Get(srv.URL+"/api/tags", time.Second).Resolve()
	if !resp.OK() || string(resp.Body) != `{"models":[]}` {
		t.Fatalf("tags response = %+v", resp)
	}

	resp = client.Get(srv.URL+"/missing", time.Second).Resolve()
	if resp.OK() || resp.StatusCode != http.StatusNotFound || resp.Err != nil {
		t.Fatalf("missing response = %+v", resp)
	}

	h := client.Get(srv.URL+"/slow", 50*time.Millisecond)
	resp = h.Resolve()
	if !resp.TimedOut() {
		t.Fatalf("slow response did not time out: %+v", resp)
	}
	if !h.Ready() {
		t.Fatal("Ready() = false after Resolve")
	}
}

func TestHTTPClient_ReadyIsNonBlocking(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()
	defer close(release)

	h := NewHTTPClient().Get(srv.URL, 5*time.Second)
	if h.Ready() {
		t.Fatal("Ready() = true before the server answered")
	}
	release <- struct{}{}
	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("request never completed")
	}
	if resp := h.Resolve(); !resp.OK() {
		t.Fatalf("response = %+v", resp)
	}
}

func TestHTTPClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	resp := NewHTTPClient().Get(addr, time.Second).Resolve()
	if resp.Err == nil || resp.OK() {
		t.Fatalf("expected transport error, got %+v", resp)
	}
}
