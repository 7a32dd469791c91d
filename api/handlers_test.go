package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"ollamascout/config"
	"ollamascout/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(store TaskStore, apiKey string) *gin.Engine {
	cfg := config.Default()
	cfg.APIKey = apiKey
	return NewRouter(store, cfg, logging.Discard())
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateScanQueuesTask(t *testing.T) {
	store := NewMemoryStore(4)
	router := newTestRouter(store, "")

	body := map[string]any{
		"targets":        []map[string]any{{"address": "10.0.0.1", "port": 11434}},
		"grepable":       "Host: 10.0.0.2 () Ports: 11434/open/tcp//\n",
		"max_concurrent": 8,
		"dispatch":       "pool",
	}
	rec := doJSON(t, router, http.MethodPost, "/api/v1/scans", body, nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var accepted ScanAcceptedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &accepted); err != nil {
		t.Fatal(err)
	}
	if accepted.Status != StatusPending || accepted.Candidates != 2 {
		t.Fatalf("accepted = %+v", accepted)
	}
	if !uuidV4Pattern.MatchString(accepted.ID) {
		t.Fatalf("id %q is not a v4 uuid", accepted.ID)
	}

	task, err := store.GetTask(context.Background(), accepted.ID)
	if err != nil {
		t.Fatal(err)
	}
	if task.MaxConcurrent != 8 || task.Dispatch != "pool" {
		t.Fatalf("overrides not stored: %+v", task)
	}
	if len(task.Targets) != 2 || task.Targets[0].Address != "10.0.0.1" || task.Targets[1].Address != "10.0.0.2" {
		t.Fatalf("targets = %+v", task.Targets)
	}

	select {
	case id := <-store.queue:
		if id != accepted.ID {
			t.Fatalf("queued %q, want %q", id, accepted.ID)
		}
	default:
		t.Fatal("task was not queued")
	}
}

func TestCreateScanRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{name: "no candidates", body: map[string]any{}},
		{name: "hostname target", body: map[string]any{"targets": []map[string]any{{"address": "example.com", "port": 80}}}},
		{name: "port out of range", body: map[string]any{"targets": []map[string]any{{"address": "10.0.0.1", "port": 70000}}}},
		{name: "unknown dispatch", body: map[string]any{"grepable": "Host: 10.0.0.1 () Ports: 80/open/tcp//", "dispatch": "fanout"}},
		{name: "negative window", body: map[string]any{"grepable": "Host: 10.0.0.1 () Ports: 80/open/tcp//", "max_concurrent": -3}},
		{name: "grepable without hosts", body: map[string]any{"grepable": "# masscan\n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore(1)
			rec := doJSON(t, newTestRouter(store, ""), http.MethodPost, "/api/v1/scans", tt.body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			if len(store.tasks) != 0 {
				t.Fatal("rejected request must not create a task")
			}
		})
	}
}

type failingQueueStore struct {
	*MemoryStore
}

func (failingQueueStore) PushToQueue(context.Context, string) error {
	return errors.New("redis down")
}

func TestCreateScanQueueFailureMarksTaskFailed(t *testing.T) {
	store := failingQueueStore{NewMemoryStore(1)}
	body := map[string]any{"targets": []map[string]any{{"address": "10.0.0.1", "port": 11434}}}
	rec := doJSON(t, newTestRouter(store, ""), http.MethodPost, "/api/v1/scans", body, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(store.tasks) != 1 {
		t.Fatalf("tasks = %d, want 1", len(store.tasks))
	}
	for _, task := range store.tasks {
		if task.Status != StatusFailed || task.CompletedAt == nil {
			t.Fatalf("task = %+v", task)
		}
	}
}

func TestGetScan(t *testing.T) {
	store := NewMemoryStore(1)
	router := newTestRouter(store, "")
	id := "a3f5c62e-1234-4f72-a84a-1c2d3e4f5678"
	if err := store.CreateTask(context.Background(), &ScanTask{ID: id, Status: StatusRunning}); err != nil {
		t.Fatal(err)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/v1/scans/"+id, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var task ScanTask
	if err := json.Unmarshal(rec.Body.Bytes(), &task); err != nil {
		t.Fatal(err)
	}
	if task.ID != id || task.Status != StatusRunning {
		t.Fatalf("task = %+v", task)
	}

	if rec := doJSON(t, router, http.MethodGet, "/api/v1/scans/not-a-uuid", nil, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed id status = %d", rec.Code)
	}
	missing := "b3f5c62e-1234-4f72-a84a-1c2d3e4f5678"
	if rec := doJSON(t, router, http.MethodGet, "/api/v1/scans/"+missing, nil, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing id status = %d", rec.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	store := NewMemoryStore(1)
	router := newTestRouter(store, "s3cret")
	body := map[string]any{"targets": []map[string]any{{"address": "10.0.0.1", "port": 11434}}}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic s3cret", want: http.StatusUnauthorized},
		{name: "wrong key", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "valid", header: "Bearer s3cret", want: http.StatusAccepted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.header != "" {
				header.Set("Authorization", tt.header)
			}
			rec := doJSON(t, router, http.MethodPost, "/api/v1/scans", body, header)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHealthAndSecurityHeaders(t *testing.T) {
	router := newTestRouter(NewMemoryStore(1), "s3cret")
	rec := doJSON(t, router, http.MethodGet, healthPath, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("X-Frame-Options = %q", got)
	}
}

func TestRequestLogNamesTask(t *testing.T) {
	var logs bytes.Buffer
	store := NewMemoryStore(1)
	router := NewRouter(store, config.Default(), logging.New(&logs, slog.LevelDebug))

	body := map[string]any{"targets": []map[string]any{{"address": "10.0.0.1", "port": 11434}}}
	rec := doJSON(t, router, http.MethodPost, "/api/v1/scans", body, nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rec.Code)
	}
	var accepted ScanAcceptedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &accepted); err != nil {
		t.Fatal(err)
	}
	doJSON(t, router, http.MethodGet, "/api/v1/scans/"+accepted.ID, nil, nil)

	var requests []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(logs.Bytes()), []byte("\n")) {
		var record map[string]any
		if err := json.Unmarshal(line, &record); err != nil {
			t.Fatalf("log line %q: %v", line, err)
		}
		if record["msg"] == "api request" {
			requests = append(requests, record)
		}
	}
	if len(requests) != 2 {
		t.Fatalf("request records = %d, want 2", len(requests))
	}
	for _, record := range requests {
		if record["task_id"] != accepted.ID {
			t.Errorf("%v %v task_id = %v, want %s", record["method"], record["path"], record["task_id"], accepted.ID)
		}
	}
	if requests[0]["candidates"] != float64(1) {
		t.Errorf("create candidates = %v, want 1", requests[0]["candidates"])
	}
	if _, ok := requests[1]["candidates"]; ok {
		t.Error("get request must not carry a candidate count")
	}
}
