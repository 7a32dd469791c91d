package scanner

import (
	"fmt"
	"time"
)

// Result holds either a parsed listing or a description of why it is missing.
type Result struct {
	Data  Document `json:"data"`
	Error string   `json:"error,omitempty"`
}

// OK reports whether the fetch produced a document.
func (r Result) OK() bool { return r.Error == "" }

// VerifiedInstance is the Phase 2 record of one confirmed target.
type VerifiedInstance struct {
	Target       Target `json:"target"`
	Tags         Result `json:"tags"`
	Running      Result `json:"running"`
	AnySucceeded bool   `json:"any_succeeded"`
}

// Interrogator fetches the catalog and running-models listings of confirmed targets.
type Interrogator struct {
	client      Client
	timeout     time.Duration
	catalogPath string
	runningPath string
}

// NewInterrogator creates an Interrogator fetching catalogPath and runningPath.
func NewInterrogator(client Client, timeout time.Duration, catalogPath, runningPath string) *Interrogator {
	return &Interrogator{client: client, timeout: timeout, catalogPath: catalogPath, runningPath: runningPath}
}

// Interrogate visits targets one at a time, in order. Every target yields
// exactly one record, even when both fetches fail. before and after may be
// nil; after receives the 1-based position of the target just finished.
func (in *Interrogator) Interrogate(targets []Target, before func(Target), after func(done int, inst VerifiedInstance)) []VerifiedInstance {
	out := make([]VerifiedInstance, 0, len(targets))
	for i, target := range targets {
		if before != nil {
			before(target)
		}
		inst := in.Inspect(target)
		out = append(out, inst)
		if after != nil {
			after(i+1, inst)
		}
	}
	return out
}

// Inspect issues both fetches at once and waits for both.
func (in *Interrogator) Inspect(target Target) VerifiedInstance {
	tags := in.client.Get(target.URL(in.catalogPath), in.timeout)
	running := in.client.Get(target.URL(in.runningPath), in.timeout)

	inst := VerifiedInstance{
		Target:  target,
		Tags:    decodeListing("Tags", tags.Resolve()),
		Running: decodeListing("PS", running.Resolve()),
	}
	inst.AnySucceeded = inst.Tags.OK() || inst.Running.OK()
	return inst
}

func decodeListing(label string, resp Response) Result {
	if !resp.OK() {
		return Result{Error: fmt.Sprintf("%s Request Failed: %s", label, resp.Describe())}
	}
	doc, err := ParseDocument(resp.Body)
	if err != nil {
		return Result{Error: fmt.Sprintf("%s JSON Parse Error: %v", label, err)}
	}
	return Result{Data: doc}
}
