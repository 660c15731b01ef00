// Package runner implements the execution runner: the operation that walks
// a scheduled graph level by level, dispatching each node to its executor
// and threading outputs through a shared, lock-guarded output map.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/graphrun/graphrun/internal/domain/execution"
	"github.com/graphrun/graphrun/internal/domain/graphrun"
	"github.com/graphrun/graphrun/internal/infrastructure/cache"
	"github.com/graphrun/graphrun/internal/infrastructure/monitoring"
	"github.com/graphrun/graphrun/internal/infrastructure/scheduler"
	"github.com/graphrun/graphrun/internal/pkg/errors"
	"github.com/graphrun/graphrun/internal/pkg/eventbus"
)

// OutputStore persists and retrieves node outputs across runs. Load is used
// by partial re-execution when the caller doesn't supply cached_outputs
// inline; Save is called after every node completes so later runs can reuse
// its output as a cached input.
type OutputStore interface {
	Load(ctx context.Context, runID, nodeID string) (graphrun.NodeOutput, bool, error)
	Save(ctx context.Context, runID, nodeID string, out graphrun.NodeOutput) error
}

// Request carries everything run_execution needs: the graph, the caller's
// chosen default provider, and optional partial re-execution parameters.
type Request struct {
	RunID         string
	UserID        string
	FlowID        string
	Nodes         []graphrun.Node
	Edges         []graphrun.Edge
	ProviderID    string
	TriggerNodeID string
	CachedOutputs map[string]graphrun.NodeOutput
}

// Runner executes graphs against a process-wide executor registry, emitting
// lifecycle events onto a shared event bus.
type Runner struct {
	Executors execution.Registry
	Events    *eventbus.EventBus

	// ModelCache, if set, short-circuits ResolveModel's per-type-default
	// branch through a Redis-backed cache. Nil disables caching.
	ModelCache *cache.ModelCache

	// Outputs, if set, is consulted for upstream nodes a partial
	// re-execution needs but the caller didn't supply inline via
	// CachedOutputs, and is written to after every node completes. Nil
	// means inline CachedOutputs is the only source and nothing persists.
	Outputs OutputStore
}

// New creates a Runner bound to the given executor registry and event bus.
// ModelCache and Outputs are left nil; set them on the returned Runner to
// opt into caching and persisted-output loading.
func New(executors execution.Registry, events *eventbus.EventBus) *Runner {
	return &Runner{Executors: executors, Events: events}
}

// outputMap is the run's single shared mutable structure. Reads and writes
// are serialized by mu; because dependencies always live in strictly
// earlier levels, a dispatched node only ever reads slots already settled
// before the level it belongs to began.
type outputMap struct {
	mu   sync.Mutex
	data map[string]graphrun.NodeOutput
}

func newOutputMap() *outputMap {
	return &outputMap{data: make(map[string]graphrun.NodeOutput)}
}

func (m *outputMap) get(id string) (graphrun.NodeOutput, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out, ok := m.data[id]
	return out, ok
}

func (m *outputMap) set(id string, out graphrun.NodeOutput) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[id] = out
}

func (m *outputMap) snapshot() map[string]graphrun.NodeOutput {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := make(map[string]graphrun.NodeOutput, len(m.data))
	for k, v := range m.data {
		snap[k] = v
	}
	return snap
}

// Run executes req.Nodes/req.Edges to completion (or partial completion, if
// TriggerNodeID is set) and returns the final output map.
func (r *Runner) Run(ctx context.Context, req Request) map[string]graphrun.NodeOutput {
	runStart := time.Now()
	ctx, span := monitoring.StartRunSpan(ctx, req.RunID, req.FlowID)
	defer func() { monitoring.EndSpan(span, runStart, nil) }()

	nodesByID := make(map[string]graphrun.Node, len(req.Nodes))
	for _, n := range req.Nodes {
		if _, exists := nodesByID[n.ID]; exists {
			continue
		}
		nodesByID[n.ID] = n
	}

	steps, err := scheduler.Schedule(req.Nodes, req.Edges)
	if err != nil {
		r.Events.Emit(ctx, execution.ExecutionFailed{
			RunID:      req.RunID,
			Error:      err.Error(),
			OccurredAt: time.Now(),
		})
		return map[string]graphrun.NodeOutput{}
	}

	outputs := newOutputMap()

	if req.TriggerNodeID != "" {
		steps = r.restrictToExecutionSet(ctx, req, steps, outputs)
	}

	levels := scheduler.Levels(steps)

	for _, level := range levels {
		for _, step := range level {
			if _, alreadySet := outputs.get(step.NodeID); alreadySet {
				continue
			}
			r.Events.Emit(ctx, execution.NodePending{
				RunID:      req.RunID,
				NodeID:     step.NodeID,
				NodeType:   step.NodeType,
				OccurredAt: time.Now(),
			})
		}
	}

	for _, level := range levels {
		var wg sync.WaitGroup
		for _, step := range level {
			step := step
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() {
					if rec := recover(); rec != nil {
						msg := fmt.Sprintf("panic: %v", rec)
						outputs.set(step.NodeID, graphrun.NodeOutput{Error: msg})
						r.Events.Emit(ctx, execution.NodeFailed{
							RunID:      req.RunID,
							NodeID:     step.NodeID,
							NodeType:   step.NodeType,
							Error:      msg,
							OccurredAt: time.Now(),
						})
					}
				}()
				r.executeNode(ctx, req, nodesByID, step, outputs)
			}()
		}
		wg.Wait()
	}

	final := outputs.snapshot()
	r.Events.Emit(ctx, execution.ExecutionCompleted{
		RunID:      req.RunID,
		Outputs:    serializeOutputs(final),
		OccurredAt: time.Now(),
	})
	return final
}

// restrictToExecutionSet implements partial re-execution: the trigger node
// and everything downstream of it always run; for everything upstream,
// a cached output is loaded in place of re-running it, otherwise it is
// added to the execution set too.
func (r *Runner) restrictToExecutionSet(ctx context.Context, req Request, steps []graphrun.ExecutionStep, outputs *outputMap) []graphrun.ExecutionStep {
	downstream := scheduler.Descendants(req.TriggerNodeID, req.Edges)
	upstream := scheduler.Ancestors(req.TriggerNodeID, req.Edges)

	executionSet := map[string]struct{}{req.TriggerNodeID: {}}
	for id := range downstream {
		executionSet[id] = struct{}{}
	}

	for id := range upstream {
		if cached, ok := req.CachedOutputs[id]; ok {
			outputs.set(id, cached)
			continue
		}
		if r.Outputs != nil {
			if cached, ok, err := r.Outputs.Load(ctx, req.RunID, id); err == nil && ok {
				outputs.set(id, cached)
				continue
			}
		}
		executionSet[id] = struct{}{}
	}

	restricted := make([]graphrun.ExecutionStep, 0, len(executionSet))
	for _, s := range steps {
		if _, ok := executionSet[s.NodeID]; ok {
			restricted = append(restricted, s)
		}
	}
	return restricted
}

// executeNode implements _execute_node: pre-cache/cached-output short
// circuits, upstream-error cascade, executor resolution, model resolution,
// and the running/completed/failed/skipped event sequence.
func (r *Runner) executeNode(ctx context.Context, req Request, nodesByID map[string]graphrun.Node, step graphrun.ExecutionStep, outputs *outputMap) {
	if _, ok := outputs.get(step.NodeID); ok {
		return
	}

	if cached, ok := req.CachedOutputs[step.NodeID]; ok {
		outputs.set(step.NodeID, cached)
		r.Events.Emit(ctx, execution.NodeCompleted{
			RunID:      req.RunID,
			NodeID:     step.NodeID,
			NodeType:   step.NodeType,
			Output:     cached.Fields(),
			DurationMs: cached.DurationMs,
			OccurredAt: time.Now(),
		})
		return
	}

	textInputs, adapterInputs := r.gatherInputs(step, outputs)

	for _, dep := range append(append([]string{}, step.InputNodeIDs...), step.AdapterNodeIDs...) {
		depOut, ok := outputs.get(dep)
		if ok && depOut.HasError() {
			reason := fmt.Sprintf("Upstream node %s failed", dep)
			outputs.set(step.NodeID, graphrun.NodeOutput{Error: reason})
			r.Events.Emit(ctx, execution.NodeSkipped{
				RunID:      req.RunID,
				NodeID:     step.NodeID,
				NodeType:   step.NodeType,
				Reason:     reason,
				OccurredAt: time.Now(),
			})
			return
		}
	}

	executor, ok := r.Executors.Get(step.NodeType)
	if !ok {
		domainErr := errors.ExecutorMissing(step.NodeType)
		outputs.set(step.NodeID, graphrun.NodeOutput{Error: domainErr.Message})
		r.Events.Emit(ctx, execution.NodeSkipped{
			RunID:      req.RunID,
			NodeID:     step.NodeID,
			NodeType:   step.NodeType,
			Reason:     domainErr.Message,
			OccurredAt: time.Now(),
		})
		return
	}

	node := nodesByID[step.NodeID]
	resolved := ResolveModelCached(ctx, r.ModelCache, node, req.ProviderID)

	nctx := graphrun.NodeExecutionContext{
		NodeID:        step.NodeID,
		NodeType:      step.NodeType,
		NodeData:      node.Data,
		TextInputs:    textInputs,
		AdapterInputs: adapterInputs,
		ProviderID:    resolved.ProviderID,
		Model:         resolved.Model,
		Temperature:   resolved.Temperature,
		RunID:         req.RunID,
		UserID:        req.UserID,
	}

	r.Events.Emit(ctx, execution.NodeRunning{
		RunID:      req.RunID,
		NodeID:     step.NodeID,
		NodeType:   step.NodeType,
		OccurredAt: time.Now(),
	})

	start := time.Now()
	nodeCtx, nodeSpan := monitoring.StartNodeSpan(ctx, step.NodeID, step.NodeType)
	out, err := executor(nodeCtx, nctx)
	monitoring.EndSpan(nodeSpan, start, err)
	if err != nil {
		outputs.set(step.NodeID, graphrun.NodeOutput{Error: err.Error()})
		r.Events.Emit(ctx, execution.NodeFailed{
			RunID:      req.RunID,
			NodeID:     step.NodeID,
			NodeType:   step.NodeType,
			Error:      err.Error(),
			OccurredAt: time.Now(),
		})
		return
	}

	if out.DurationMs == 0 {
		out.DurationMs = time.Since(start).Milliseconds()
	}
	outputs.set(step.NodeID, out)

	if r.Outputs != nil {
		_ = r.Outputs.Save(ctx, req.RunID, step.NodeID, out)
	}

	r.Events.Emit(ctx, execution.NodeCompleted{
		RunID:      req.RunID,
		NodeID:     step.NodeID,
		NodeType:   step.NodeType,
		Output:     out.Fields(),
		DurationMs: out.DurationMs,
		OccurredAt: time.Now(),
	})
}

// gatherInputs collects already-computed dependency outputs from the output
// map, in the order the schedule listed them. Dependencies not yet present
// (e.g. a filtered-out group node) are simply omitted.
func (r *Runner) gatherInputs(step graphrun.ExecutionStep, outputs *outputMap) (textInputs, adapterInputs []graphrun.NodeOutput) {
	for _, id := range step.InputNodeIDs {
		if out, ok := outputs.get(id); ok {
			textInputs = append(textInputs, out)
		}
	}
	for _, id := range step.AdapterNodeIDs {
		if out, ok := outputs.get(id); ok {
			adapterInputs = append(adapterInputs, out)
		}
	}
	return textInputs, adapterInputs
}

func serializeOutputs(outputs map[string]graphrun.NodeOutput) map[string]map[string]interface{} {
	serialized := make(map[string]map[string]interface{}, len(outputs))
	for id, out := range outputs {
		serialized[id] = out.Fields()
	}
	return serialized
}
