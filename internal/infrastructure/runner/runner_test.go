package runner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/graphrun/graphrun/internal/domain/execution"
	"github.com/graphrun/graphrun/internal/domain/graphrun"
	"github.com/graphrun/graphrun/internal/infrastructure/executors"
	"github.com/graphrun/graphrun/internal/pkg/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingCollector gathers every event emitted during a run, keyed by
// type, so tests can assert on the exact lifecycle sequence without racing
// the eventbus's own fire-and-forget goroutines.
type recordingCollector struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func newRecordingBus() (*eventbus.EventBus, *recordingCollector) {
	bus := eventbus.New()
	rec := &recordingCollector{}
	for _, t := range []string{
		execution.EventTypeExecutionStarted,
		execution.EventTypeExecutionCompleted,
		execution.EventTypeExecutionFailed,
		execution.EventTypeNodePending,
		execution.EventTypeNodeRunning,
		execution.EventTypeNodeCompleted,
		execution.EventTypeNodeFailed,
		execution.EventTypeNodeSkipped,
	} {
		bus.On(t, func(ctx context.Context, e eventbus.Event) {
			rec.mu.Lock()
			defer rec.mu.Unlock()
			rec.events = append(rec.events, e)
		})
	}
	return bus, rec
}

func (r *recordingCollector) byType(eventType string) []eventbus.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []eventbus.Event
	for _, e := range r.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

func echoExecutor() execution.ExecutorFn {
	return func(ctx context.Context, nctx graphrun.NodeExecutionContext) (graphrun.NodeOutput, error) {
		text := nctx.DataString("text")
		for _, in := range nctx.TextInputs {
			text += in.Text
		}
		return graphrun.NodeOutput{Text: text}, nil
	}
}

func failingExecutor(msg string) execution.ExecutorFn {
	return func(ctx context.Context, nctx graphrun.NodeExecutionContext) (graphrun.NodeOutput, error) {
		return graphrun.NodeOutput{}, errors.New(msg)
	}
}

func newTestRunner(t *testing.T, registrations map[string]execution.ExecutorFn) (*Runner, *recordingCollector) {
	t.Helper()
	registry := executors.NewMapRegistry()
	for nodeType, fn := range registrations {
		registry.Register(nodeType, fn)
	}
	bus, rec := newRecordingBus()
	return New(registry, bus), rec
}

func TestRunner_LinearPipelineCompletes(t *testing.T) {
	r, rec := newTestRunner(t, map[string]execution.ExecutorFn{
		"echo": echoExecutor(),
	})

	req := Request{
		RunID: "run-1", FlowID: "flow-1", ProviderID: "anthropic",
		Nodes: []graphrun.Node{
			{ID: "a", Type: "echo", Data: map[string]interface{}{"text": "hello "}},
			{ID: "b", Type: "echo"},
		},
		Edges: []graphrun.Edge{{Source: "a", Target: "b"}},
	}

	final := r.Run(context.Background(), req)
	require.Contains(t, final, "b")
	assert.Equal(t, "hello ", final["b"].Text)

	waitForEvent(t, rec, execution.EventTypeExecutionCompleted, 1)
	assert.Len(t, rec.byType(execution.EventTypeNodeCompleted), 2)
}

func TestRunner_CycleEmitsExecutionFailed(t *testing.T) {
	r, rec := newTestRunner(t, map[string]execution.ExecutorFn{"echo": echoExecutor()})

	req := Request{
		RunID: "run-cycle", FlowID: "flow-1", ProviderID: "anthropic",
		Nodes: []graphrun.Node{
			{ID: "a", Type: "echo"},
			{ID: "b", Type: "echo"},
		},
		Edges: []graphrun.Edge{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "a"},
		},
	}

	final := r.Run(context.Background(), req)
	assert.Empty(t, final)
	waitForEvent(t, rec, execution.EventTypeExecutionFailed, 1)
}

func TestRunner_FailedNodeCascadesSkipToDownstream(t *testing.T) {
	r, rec := newTestRunner(t, map[string]execution.ExecutorFn{
		"fail": failingExecutor("boom"),
		"echo": echoExecutor(),
	})

	req := Request{
		RunID: "run-fail", FlowID: "flow-1", ProviderID: "anthropic",
		Nodes: []graphrun.Node{
			{ID: "a", Type: "fail"},
			{ID: "b", Type: "echo"},
		},
		Edges: []graphrun.Edge{{Source: "a", Target: "b"}},
	}

	final := r.Run(context.Background(), req)
	require.True(t, final["a"].HasError())
	require.True(t, final["b"].HasError())
	assert.Contains(t, final["b"].Error, "Upstream node a failed")

	waitForEvent(t, rec, execution.EventTypeNodeFailed, 1)
	waitForEvent(t, rec, execution.EventTypeNodeSkipped, 1)
}

func TestRunner_RecoverableExecutorErrorEmitsCompletedNotFailed(t *testing.T) {
	recoverable := func() execution.ExecutorFn {
		return func(ctx context.Context, nctx graphrun.NodeExecutionContext) (graphrun.NodeOutput, error) {
			return graphrun.NodeOutput{Error: "No image provided"}, nil
		}
	}
	r, rec := newTestRunner(t, map[string]execution.ExecutorFn{"describer": recoverable()})

	req := Request{
		RunID: "run-recoverable", FlowID: "flow-1", ProviderID: "anthropic",
		Nodes: []graphrun.Node{{ID: "a", Type: "describer"}},
	}

	final := r.Run(context.Background(), req)
	require.True(t, final["a"].HasError())

	waitForEvent(t, rec, execution.EventTypeExecutionCompleted, 1)
	assert.Len(t, rec.byType(execution.EventTypeNodeCompleted), 1, "a non-exception executor return is always NODE_COMPLETED, even when output.error is set")
	assert.Empty(t, rec.byType(execution.EventTypeNodeFailed))
}

func TestRunner_MissingExecutorSkipsNode(t *testing.T) {
	r, rec := newTestRunner(t, map[string]execution.ExecutorFn{})

	req := Request{
		RunID: "run-missing", FlowID: "flow-1", ProviderID: "anthropic",
		Nodes: []graphrun.Node{{ID: "a", Type: "nonexistent"}},
	}

	final := r.Run(context.Background(), req)
	require.True(t, final["a"].HasError())
	waitForEvent(t, rec, execution.EventTypeNodeSkipped, 1)
}

func TestRunner_PartialReExecutionUsesCachedUpstream(t *testing.T) {
	var bCalls int
	var mu sync.Mutex
	countingEcho := func() execution.ExecutorFn {
		return func(ctx context.Context, nctx graphrun.NodeExecutionContext) (graphrun.NodeOutput, error) {
			mu.Lock()
			bCalls++
			mu.Unlock()
			text := nctx.DataString("text")
			for _, in := range nctx.TextInputs {
				text += in.Text
			}
			return graphrun.NodeOutput{Text: text}, nil
		}
	}

	r, _ := newTestRunner(t, map[string]execution.ExecutorFn{"echo": countingEcho()})

	req := Request{
		RunID: "run-partial", FlowID: "flow-1", ProviderID: "anthropic",
		Nodes: []graphrun.Node{
			{ID: "a", Type: "echo", Data: map[string]interface{}{"text": "should not rerun"}},
			{ID: "b", Type: "echo"},
		},
		Edges:         []graphrun.Edge{{Source: "a", Target: "b"}},
		TriggerNodeID: "b",
		CachedOutputs: map[string]graphrun.NodeOutput{
			"a": {Text: "cached upstream"},
		},
	}

	final := r.Run(context.Background(), req)
	assert.Equal(t, "cached upstream", final["b"].Text)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, bCalls, "only the trigger node's executor should run; the cached upstream node must not")
}

func waitForEvent(t *testing.T, rec *recordingCollector, eventType string, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(rec.byType(eventType)) >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.Fail(t, "timed out waiting for event", "type=%s want=%d got=%d", eventType, want, len(rec.byType(eventType)))
}
