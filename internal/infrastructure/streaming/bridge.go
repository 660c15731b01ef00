package streaming

import (
	"context"
	"fmt"
	"log"

	"github.com/graphrun/graphrun/internal/domain/execution"
	"github.com/graphrun/graphrun/internal/infrastructure/messaging/nats"
	"github.com/graphrun/graphrun/internal/pkg/eventbus"
)

// Bridge subscribes to the in-process event bus at startup and relays each
// domain event onto NATS as one outbound {type, data} message, in the shape
// the client channel speaks. It depends only on the event bus — nothing
// about the runner or scheduler.
type Bridge struct {
	events    *eventbus.EventBus
	publisher *nats.Publisher
}

// NewBridge creates a bridge that will publish through publisher once
// Start is called.
func NewBridge(events *eventbus.EventBus, publisher *nats.Publisher) *Bridge {
	return &Bridge{events: events, publisher: publisher}
}

// Start subscribes every domain event type the bridge understands.
// Unsubscribed event types are simply never relayed.
func (b *Bridge) Start() {
	b.events.On(execution.EventTypeExecutionStarted, b.handleExecutionStarted)
	b.events.On(execution.EventTypeExecutionCompleted, b.handleExecutionCompleted)
	b.events.On(execution.EventTypeExecutionFailed, b.handleExecutionFailed)
	b.events.On(execution.EventTypeNodePending, b.handleNodeStatus("pending"))
	b.events.On(execution.EventTypeNodeRunning, b.handleNodeStatus("running"))
	b.events.On(execution.EventTypeNodeSkipped, b.handleNodeSkipped)
	b.events.On(execution.EventTypeNodeCompleted, b.handleNodeCompleted)
	b.events.On(execution.EventTypeNodeFailed, b.handleNodeFailed)
}

func (b *Bridge) handleExecutionStarted(ctx context.Context, event eventbus.Event) {
	e, ok := event.(execution.ExecutionStarted)
	if !ok {
		return
	}
	b.publish(ctx, e.RunID, "execution.started", map[string]interface{}{
		"run_id": e.RunID,
	})
}

func (b *Bridge) handleExecutionCompleted(ctx context.Context, event eventbus.Event) {
	e, ok := event.(execution.ExecutionCompleted)
	if !ok {
		return
	}
	b.publish(ctx, e.RunID, "execution.completed", map[string]interface{}{
		"run_id":  e.RunID,
		"outputs": e.Outputs,
	})
}

func (b *Bridge) handleExecutionFailed(ctx context.Context, event eventbus.Event) {
	e, ok := event.(execution.ExecutionFailed)
	if !ok {
		return
	}
	b.publish(ctx, e.RunID, "execution.failed", map[string]interface{}{
		"run_id": e.RunID,
		"error":  e.Error,
	})
}

// handleNodeStatus returns a handler relaying NodePending/NodeRunning
// events as execution.node.status with a fixed status string — both share
// the same outbound shape, differing only in that value.
func (b *Bridge) handleNodeStatus(status string) eventbus.Handler {
	return func(ctx context.Context, event eventbus.Event) {
		var runID, nodeID string
		switch e := event.(type) {
		case execution.NodePending:
			runID, nodeID = e.RunID, e.NodeID
		case execution.NodeRunning:
			runID, nodeID = e.RunID, e.NodeID
		default:
			return
		}
		b.publish(ctx, runID, "execution.node.status", map[string]interface{}{
			"run_id":  runID,
			"node_id": nodeID,
			"status":  status,
		})
	}
}

func (b *Bridge) handleNodeSkipped(ctx context.Context, event eventbus.Event) {
	e, ok := event.(execution.NodeSkipped)
	if !ok {
		return
	}
	b.publish(ctx, e.RunID, "execution.node.status", map[string]interface{}{
		"run_id":  e.RunID,
		"node_id": e.NodeID,
		"status":  "skipped",
		"error":   e.Reason,
	})
}

func (b *Bridge) handleNodeCompleted(ctx context.Context, event eventbus.Event) {
	e, ok := event.(execution.NodeCompleted)
	if !ok {
		return
	}
	b.publish(ctx, e.RunID, "execution.node.completed", map[string]interface{}{
		"run_id":  e.RunID,
		"node_id": e.NodeID,
		"output":  e.Output,
	})
}

func (b *Bridge) handleNodeFailed(ctx context.Context, event eventbus.Event) {
	e, ok := event.(execution.NodeFailed)
	if !ok {
		return
	}
	b.publish(ctx, e.RunID, "execution.node.failed", map[string]interface{}{
		"run_id":  e.RunID,
		"node_id": e.NodeID,
		"error":   e.Error,
	})
}

// publish wraps payload in the channel's {type, data} envelope and sends it
// on the run's NATS subject. A downstream subscriber (the SSE handler)
// demultiplexes subjects to connected users.
func (b *Bridge) publish(ctx context.Context, runID, msgType string, data map[string]interface{}) {
	subject := fmt.Sprintf("graphrun.runs.%s", runID)
	envelope := OutboundMessage{Type: msgType, Data: data}

	if err := b.publisher.Publish(ctx, subject, envelope); err != nil {
		log.Printf("[streaming] publish failed for run %s type %s: %v", runID, msgType, err)
	}
}
