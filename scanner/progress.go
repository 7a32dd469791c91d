package scanner

import (
	"sync"
	"time"
)

// Progress is a snapshot emitted on harvest milestones.
type Progress struct {
	Completed int           `json:"completed"`
	Total     int           `json:"total"`
	Matches   int           `json:"matches"`
	Elapsed   time.Duration `json:"elapsed"`
	Rate      float64       `json:"rate"` // completions per second
}

// Throughput returns completed*1000/elapsed_ms, or 0 when elapsed rounds to 0ms.
func Throughput(completed int, elapsed time.Duration) float64 {
	ms := elapsed.Milliseconds()
	if ms <= 0 {
		return 0
	}
	return float64(completed) * 1000 / float64(ms)
}

// Stats aggregates a finished Phase 1 run.
type Stats struct {
	Issued          int           `json:"issued"`
	Completed       int           `json:"completed"`
	Matches         int           `json:"matches"`
	Timeouts        int           `json:"timeouts"`
	TransportErrors int           `json:"transport_errors"`
	BadStatus       int           `json:"bad_status"`
	NoSignature     int           `json:"no_signature"`
	Elapsed         time.Duration `json:"elapsed"`
}

func (s *Stats) record(o Outcome) {
	s.Completed++
	switch o {
	case OutcomeMatch:
		s.Matches++
	case OutcomeTimeout:
		s.Timeouts++
	case OutcomeTransportError:
		s.TransportErrors++
	case OutcomeBadStatus:
		s.BadStatus++
	case OutcomeNoSignature:
		s.NoSignature++
	}
}

// ConfirmedSet collects matched targets from concurrent producers.
type ConfirmedSet struct {
	mu      sync.Mutex
	targets []Target
}

// Add records a match. Safe for concurrent use.
func (c *ConfirmedSet) Add(t Target) {
	c.mu.Lock()
	c.targets = append(c.targets, t)
	c.mu.Unlock()
}

// Len returns the number of recorded matches, duplicates included.
func (c *ConfirmedSet) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.targets)
}

// Unique returns the recorded targets sorted and deduplicated.
func (c *ConfirmedSet) Unique() []Target {
	c.mu.Lock()
	defer c.mu.Unlock()
	return SortUnique(c.targets)
}
