package api

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"ollamascout/config"
	"ollamascout/scanner"
)

// Runner executes the discovery pipeline for one task.
type Runner interface {
	Execute(task *ScanTask, onProgress func(scanner.Progress)) scanner.Discovery
}

// PipelineRunner runs tasks through the two-phase scanner pipeline.
type PipelineRunner struct {
	cfg    config.Config
	client scanner.Client
}

// NewPipelineRunner creates a runner using cfg defaults and client for all requests.
func NewPipelineRunner(cfg config.Config, client scanner.Client) *PipelineRunner {
	return &PipelineRunner{cfg: cfg, client: client}
}

// Execute applies the task's overrides to the base config and runs both phases.
func (r *PipelineRunner) Execute(task *ScanTask, onProgress func(scanner.Progress)) scanner.Discovery {
	cfg := r.cfg
	if task.MaxConcurrent > 0 {
		cfg.MaxConcurrent = task.MaxConcurrent
	}
	if task.Dispatch != "" {
		cfg.DispatchMode = task.Dispatch
	}

	opts := scanner.DispatchOptionsFromConfig(cfg)
	opts.OnProgress = onProgress
	pipeline := scanner.NewPipeline(
		scanner.NewProber(cfg.DispatchMode, r.client, opts),
		scanner.NewInterrogatorFromConfig(cfg, r.client),
		scanner.Hooks{},
	)
	return pipeline.Run(task.Targets)
}

// StartWorkers launches background goroutines that process scan tasks until
// ctx is cancelled. The returned WaitGroup completes once every worker exited.
func StartWorkers(ctx context.Context, store TaskStore, runner Runner, numWorkers int, logger *slog.Logger) *sync.WaitGroup {
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			workerLoop(ctx, store, runner, logger.With("worker", id))
		}(i)
	}
	return &wg
}

func workerLoop(ctx context.Context, store TaskStore, runner Runner, logger *slog.Logger) {
	for ctx.Err() == nil {
		taskID, err := store.PopFromQueue(ctx)
		if err != nil {
			if errors.Is(err, ErrQueueEmpty) || ctx.Err() != nil {
				continue
			}
			logger.Error("worker failed to pop task", "error", err)
			sleep(ctx, time.Second)
			continue
		}

		task, err := store.GetTask(ctx, taskID)
		if err != nil {
			if errors.Is(err, ErrTaskNotFound) {
				logger.Warn("worker task disappeared", "task_id", taskID)
				continue
			}
			logger.Error("worker failed to load task", "task_id", taskID, "error", err)
			continue
		}

		processTask(ctx, store, runner, task, logger)
	}
}

func processTask(ctx context.Context, store TaskStore, runner Runner, task *ScanTask, logger *slog.Logger) {
	task.Status = StatusRunning
	task.Error = ""
	task.Result = nil
	task.Progress = nil
	task.CompletedAt = nil
	if err := store.UpdateTask(ctx, task); err != nil {
		logger.Error("worker failed to mark task running", "task_id", task.ID, "error", err)
		return
	}

	if len(task.Targets) == 0 {
		failTask(ctx, task, store, scanner.ErrNoCandidates, logger)
		return
	}

	logger.Info("task started", "task_id", task.ID, "candidates", len(task.Targets))
	discovery := runner.Execute(task, func(p scanner.Progress) {
		task.Progress = &p
		if err := store.UpdateProgress(ctx, task.ID, p); err != nil {
			logger.Warn("worker failed to record progress", "task_id", task.ID, "error", err)
		}
	})

	task.Status = StatusCompleted
	task.Result = &discovery
	now := time.Now().UTC()
	task.CompletedAt = &now

	if err := store.UpdateTask(ctx, task); err != nil {
		logger.Error("worker failed to update task", "task_id", task.ID, "error", err)
		return
	}
	logger.Info("task completed",
		"task_id", task.ID,
		"matches", discovery.Phase1.Stats.Matches,
		"instances", len(discovery.Instances),
		"elapsed_ms", discovery.Elapsed.Milliseconds(),
	)
}

func failTask(ctx context.Context, task *ScanTask, store TaskStore, err error, logger *slog.Logger) {
	logger.Error("worker task failed", "task_id", task.ID, "error", err)
	task.Status = StatusFailed
	task.Error = err.Error()
	task.Result = nil
	now := time.Now().UTC()
	task.CompletedAt = &now
	if updateErr := store.UpdateTask(ctx, task); updateErr != nil {
		logger.Error("worker failed to persist failed task", "task_id", task.ID, "error", updateErr)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
