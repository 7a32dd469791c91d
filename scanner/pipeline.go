package scanner

import (
	"time"

	"ollamascout/config"
)

// Discovery is the complete result of a two-phase run.
type Discovery struct {
	Candidates int                `json:"candidates"`
	Phase1     Phase1Result       `json:"phase1"`
	Instances  []VerifiedInstance `json:"instances"`
	Elapsed    time.Duration      `json:"elapsed"`
}

// Hooks observe a pipeline run. Any of them may be nil.
type Hooks struct {
	Phase1Done    func(Phase1Result)
	Phase2Start   func(targets []Target)
	Interrogating func(Target)
	Interrogated  func(done, total int, inst VerifiedInstance)
	Phase2Done    func([]VerifiedInstance)
}

// Pipeline chains Phase 1 probing and Phase 2 interrogation.
type Pipeline struct {
	prober       Prober
	interrogator *Interrogator
	hooks        Hooks
}

// NewPipeline creates a pipeline.
func NewPipeline(prober Prober, interrogator *Interrogator, hooks Hooks) *Pipeline {
	return &Pipeline{prober: prober, interrogator: interrogator, hooks: hooks}
}

// Run probes every candidate, then interrogates each unique confirmed target.
func (p *Pipeline) Run(candidates []Target) Discovery {
	start := time.Now()

	phase1 := p.prober.Probe(candidates)
	if p.hooks.Phase1Done != nil {
		p.hooks.Phase1Done(phase1)
	}

	instances := []VerifiedInstance{}
	if len(phase1.Confirmed) > 0 {
		targets := SortUnique(phase1.Confirmed)
		if p.hooks.Phase2Start != nil {
			p.hooks.Phase2Start(targets)
		}
		var after func(int, VerifiedInstance)
		if p.hooks.Interrogated != nil {
			after = func(done int, inst VerifiedInstance) { p.hooks.Interrogated(done, len(targets), inst) }
		}
		instances = p.interrogator.Interrogate(targets, p.hooks.Interrogating, after)
		if p.hooks.Phase2Done != nil {
			p.hooks.Phase2Done(instances)
		}
	}

	return Discovery{
		Candidates: len(candidates),
		Phase1:     phase1,
		Instances:  instances,
		Elapsed:    time.Since(start),
	}
}

// DispatchOptionsFromConfig maps cfg onto Phase 1 options. The probe path and
// signature marker come from cfg; callbacks are left for the caller.
func DispatchOptionsFromConfig(cfg config.Config) DispatchOptions {
	return DispatchOptions{
		Window:        cfg.MaxConcurrent,
		Timeout:       cfg.ProbeTimeout,
		Signature:     NewSignature("Ollama", cfg.ProbePath, cfg.ProbeSignature),
		ProgressEvery: cfg.ProgressEvery,
		IdleWait:      cfg.IdleWait,
		YieldWait:     cfg.YieldWait,
	}
}

// NewProber returns the dispatcher selected by mode (config.DispatchPoll or config.DispatchPool).
func NewProber(mode string, client Client, opts DispatchOptions) Prober {
	if mode == config.DispatchPool {
		return NewPooledDispatcher(client, opts)
	}
	return NewDispatcher(client, opts)
}

// NewInterrogatorFromConfig builds the Phase 2 interrogator described by cfg.
func NewInterrogatorFromConfig(cfg config.Config, client Client) *Interrogator {
	return NewInterrogator(client, cfg.DetailTimeout, cfg.CatalogPath, cfg.RunningPath)
}
