package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Dispatch modes understood by DISPATCH_MODE.
const (
	DispatchPoll = "poll"
	DispatchPool = "pool"
)

// Config holds every tunable of a discovery run and of the API service.
type Config struct {
	// Phase 1.
	ProbePath      string
	ProbeSignature string
	ProbeTimeout   time.Duration
	MaxConcurrent  int
	ProgressEvery  int
	IdleWait       time.Duration
	YieldWait      time.Duration
	DispatchMode   string

	// Phase 2.
	DetailTimeout time.Duration
	CatalogPath   string
	RunningPath   string

	DefaultInput string
	LogLevel     string

	// API service.
	RedisAddr  string
	ListenAddr string
	APIKey     string
	APIWorkers int
	TaskTTL    time.Duration
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ProbePath:      "/api/tags",
		ProbeSignature: `"models"`,
		ProbeTimeout:   2 * time.Second,
		MaxConcurrent:  500,
		ProgressEvery:  100,
		IdleWait:       10 * time.Millisecond,
		YieldWait:      5 * time.Millisecond,
		DispatchMode:   DispatchPoll,
		DetailTimeout:  5 * time.Second,
		CatalogPath:    "/api/tags",
		RunningPath:    "/api/ps",
		DefaultInput:   "res.txt",
		LogLevel:       "info",
		RedisAddr:      "localhost:6379",
		ListenAddr:     ":8080",
		APIWorkers:     2,
		TaskTTL:        time.Hour,
	}
}

// Load reads an optional .env file and overlays environment variables on the defaults.
// Malformed values are reported through logger and the default is kept.
func Load(logger *slog.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv(os.Getenv, logger), nil
}

// FromEnv builds a Config from a lookup function such as os.Getenv.
func FromEnv(getenv func(string) string, logger *slog.Logger) Config {
	cfg := Default()
	e := env{get: getenv, logger: logger}

	cfg.ProbePath = e.str("PROBE_PATH", cfg.ProbePath)
	cfg.ProbeSignature = e.str("PROBE_SIGNATURE", cfg.ProbeSignature)
	cfg.ProbeTimeout = e.duration("PROBE_TIMEOUT", cfg.ProbeTimeout)
	cfg.MaxConcurrent = e.integer("MAX_CONCURRENT", cfg.MaxConcurrent)
	cfg.ProgressEvery = e.integer("PROGRESS_EVERY", cfg.ProgressEvery)
	cfg.IdleWait = e.duration("IDLE_WAIT", cfg.IdleWait)
	cfg.YieldWait = e.duration("YIELD_WAIT", cfg.YieldWait)
	cfg.DispatchMode = strings.ToLower(e.str("DISPATCH_MODE", cfg.DispatchMode))
	cfg.DetailTimeout = e.duration("DETAIL_TIMEOUT", cfg.DetailTimeout)
	cfg.CatalogPath = e.str("CATALOG_PATH", cfg.CatalogPath)
	cfg.RunningPath = e.str("RUNNING_PATH", cfg.RunningPath)
	cfg.DefaultInput = e.str("DEFAULT_INPUT", cfg.DefaultInput)
	cfg.LogLevel = e.str("LOG_LEVEL", cfg.LogLevel)
	cfg.RedisAddr = e.str("REDIS_ADDR", cfg.RedisAddr)
	cfg.ListenAddr = e.str("LISTEN_ADDR", cfg.ListenAddr)
	cfg.APIKey = e.str("API_KEY", cfg.APIKey)
	cfg.APIWorkers = e.integer("API_WORKERS", cfg.APIWorkers)
	cfg.TaskTTL = e.duration("TASK_TTL", cfg.TaskTTL)

	return cfg
}

// Validate reports settings that would make a run meaningless.
func (c Config) Validate() error {
	if c.ProbeTimeout <= 0 || c.DetailTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive (probe=%s, detail=%s)", c.ProbeTimeout, c.DetailTimeout)
	}
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("max concurrent must be at least 1, got %d", c.MaxConcurrent)
	}
	if c.ProbeSignature == "" {
		return errors.New("probe signature must not be empty")
	}
	switch c.DispatchMode {
	case DispatchPoll, DispatchPool:
	default:
		return fmt.Errorf("unknown dispatch mode %q (want %s or %s)", c.DispatchMode, DispatchPoll, DispatchPool)
	}
	return nil
}

type env struct {
	get    func(string) string
	logger *slog.Logger
}

func (e env) str(key, fallback string) string {
	if value := e.get(key); value != "" {
		return value
	}
	return fallback
}

func (e env) integer(key string, fallback int) int {
	raw := e.get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		e.warn(key, raw, fallback)
		return fallback
	}
	return n
}

func (e env) duration(key string, fallback time.Duration) time.Duration {
	raw := e.get(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || d <= 0 {
		e.warn(key, raw, fallback)
		return fallback
	}
	return d
}

func (e env) warn(key, raw string, fallback any) {
	if e.logger == nil {
		return
	}
	e.logger.Warn("invalid config value, using default", "key", key, "value", raw, "default", fallback)
}
