package api

import (
	"time"

	"ollamascout/scanner"
)

// Task lifecycle states.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ScanTask represents a discovery run managed by the API service.
type ScanTask struct {
	// ID is the immutable identifier of the scan task (UUID v4).
	ID string `json:"id" format:"uuid" example:"a3f5c62e-1234-4f72-a84a-1c2d3e4f5678"`
	// Status reflects the asynchronous lifecycle state of the task.
	Status string `json:"status" enums:"pending,running,completed,failed" example:"pending"`
	// Targets lists every candidate that Phase 1 probes, in submission order.
	Targets []scanner.Target `json:"targets"`
	// MaxConcurrent is the Phase 1 window; zero means the server default.
	MaxConcurrent int `json:"max_concurrent,omitempty" example:"500"`
	// Dispatch selects the Phase 1 dispatcher.
	Dispatch string `json:"dispatch,omitempty" enums:"poll,pool" example:"poll"`
	// Progress is the latest Phase 1 snapshot while the task runs.
	Progress *scanner.Progress `json:"progress,omitempty"`
	// Result is attached once the task completes.
	Result *scanner.Discovery `json:"result,omitempty"`
	// CreatedAt records when the task was accepted.
	CreatedAt time.Time `json:"created_at" format:"date-time" example:"2024-01-02T15:04:05Z"`
	// CompletedAt is set once the task reaches a terminal state.
	CompletedAt *time.Time `json:"completed_at,omitempty" format:"date-time"`
	// Error explains why a task failed.
	Error string `json:"error,omitempty" example:"no valid candidates"`
}

// CreateScanRequest is the payload for creating new scan tasks. At least one
// of Targets or Grepable must yield a candidate.
type CreateScanRequest struct {
	// Targets are explicit address/port candidates.
	Targets []scanner.Target `json:"targets"`
	// Grepable is raw masscan -oG output, parsed like the CLI input file.
	Grepable string `json:"grepable" example:"Host: 10.0.0.1 () Ports: 11434/open/tcp//"`
	// MaxConcurrent overrides the Phase 1 window.
	MaxConcurrent int `json:"max_concurrent" binding:"omitempty,min=1,max=20000" example:"500"`
	// Dispatch overrides the Phase 1 dispatcher.
	Dispatch string `json:"dispatch" binding:"omitempty,oneof=poll pool" enums:"poll,pool" example:"poll"`
}

// ScanAcceptedResponse is returned after a task is queued.
type ScanAcceptedResponse struct {
	ID         string `json:"id" format:"uuid"`
	Status     string `json:"status" enums:"pending" example:"pending"`
	Candidates int    `json:"candidates" example:"1"`
}

// ErrorResponse provides a consistent structure for API error payloads.
type ErrorResponse struct {
	Error string `json:"error" example:"task not found"`
}
