package runner

import (
	"context"
	"testing"
	"time"

	"github.com/graphrun/graphrun/internal/domain/execution"
	"github.com/graphrun/graphrun/internal/domain/graphrun"
	"github.com/graphrun/graphrun/internal/infrastructure/executors"
	"github.com/graphrun/graphrun/internal/pkg/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_StartReturnsRunIDImmediatelyAndEmitsExecutionStarted(t *testing.T) {
	registry := executors.NewMapRegistry()
	registry.Register("echo", echoExecutor())

	bus, rec := newRecordingBus()
	manager := NewManager(New(registry, bus), bus)

	runID := manager.Start(Submission{
		UserID: "user-1", FlowID: "flow-1", ProviderID: "anthropic",
		Nodes: []graphrun.Node{{ID: "a", Type: "echo"}},
	})
	require.NotEmpty(t, runID)

	waitForEvent(t, rec, execution.EventTypeExecutionStarted, 1)
	started := rec.byType(execution.EventTypeExecutionStarted)[0].(execution.ExecutionStarted)
	assert.Equal(t, runID, started.RunID)
	assert.Equal(t, "user-1", started.UserID)

	waitForEvent(t, rec, execution.EventTypeExecutionCompleted, 1)
}

func TestManager_ActiveRunsTracksInFlightRuns(t *testing.T) {
	registry := executors.NewMapRegistry()
	block := make(chan struct{})
	registry.Register("blocking", func(ctx context.Context, nctx graphrun.NodeExecutionContext) (graphrun.NodeOutput, error) {
		<-block
		return graphrun.NodeOutput{}, nil
	})

	bus := eventbus.New()
	manager := NewManager(New(registry, bus), bus)

	count, oldest := manager.ActiveRuns()
	assert.Equal(t, 0, count)
	assert.True(t, oldest.IsZero())

	runID := manager.Start(Submission{
		FlowID: "flow-1", ProviderID: "anthropic",
		Nodes: []graphrun.Node{{ID: "a", Type: "blocking"}},
	})
	require.NotEmpty(t, runID)

	require.Eventually(t, func() bool {
		count, _ := manager.ActiveRuns()
		return count == 1
	}, time.Second, 5*time.Millisecond)

	close(block)

	require.Eventually(t, func() bool {
		count, _ := manager.ActiveRuns()
		return count == 0
	}, time.Second, 5*time.Millisecond)
}
