package config

import (
	"testing"
	"time"

	"ollamascout/logging"
)

func mapEnv(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv(mapEnv(nil), logging.Discard())
	if cfg != Default() {
		t.Fatalf("FromEnv(empty) = %+v, want defaults", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() on defaults: %v", err)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg := FromEnv(mapEnv(map[string]string{
		"PROBE_TIMEOUT":  "750ms",
		"MAX_CONCURRENT": "64",
		"DISPATCH_MODE":  "POOL",
		"RUNNING_PATH":   "/v2/ps",
	}), logging.Discard())

	if cfg.ProbeTimeout != 750*time.Millisecond {
		t.Errorf("ProbeTimeout = %s, want 750ms", cfg.ProbeTimeout)
	}
	if cfg.MaxConcurrent != 64 {
		t.Errorf("MaxConcurrent = %d, want 64", cfg.MaxConcurrent)
	}
	if cfg.DispatchMode != DispatchPool {
		t.Errorf("DispatchMode = %q, want %q", cfg.DispatchMode, DispatchPool)
	}
	if cfg.RunningPath != "/v2/ps" {
		t.Errorf("RunningPath = %q", cfg.RunningPath)
	}
}

func TestFromEnv_InvalidFallsBack(t *testing.T) {
	cfg := FromEnv(mapEnv(map[string]string{
		"PROBE_TIMEOUT":  "soon",
		"MAX_CONCURRENT": "-3",
		"TASK_TTL":       "0s",
	}), logging.Discard())

	def := Default()
	if cfg.ProbeTimeout != def.ProbeTimeout {
		t.Errorf("ProbeTimeout = %s, want %s", cfg.ProbeTimeout, def.ProbeTimeout)
	}
	if cfg.MaxConcurrent != def.MaxConcurrent {
		t.Errorf("MaxConcurrent = %d, want %d", cfg.MaxConcurrent, def.MaxConcurrent)
	}
	if cfg.TaskTTL != def.TaskTTL {
		t.Errorf("TaskTTL = %s, want %s", cfg.TaskTTL, def.TaskTTL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero probe timeout", func(c *Config) { c.ProbeTimeout = 0 }},
		{"zero concurrency", func(c *Config) { c.MaxConcurrent = 0 }},
		{"empty signature", func(c *Config) { c.ProbeSignature = "" }},
		{"unknown mode", func(c *Config) { c.DispatchMode = "threads" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("Validate() = nil, want error")
			}
		})
	}
}
