package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/graphrun/graphrun/internal/domain/execution"
	"github.com/graphrun/graphrun/internal/domain/graphrun"
	"github.com/graphrun/graphrun/internal/pkg/eventbus"
	"github.com/graphrun/graphrun/internal/pkg/uuid"
)

// Manager implements run(...): it mints a run id, announces the run, spawns
// the runner detached, and returns immediately. It also tracks in-flight
// runs so monitoring.Sweeper can gauge staleness.
type Manager struct {
	runner *Runner
	events *eventbus.EventBus

	mu     sync.Mutex
	active map[string]time.Time
}

// NewManager creates a Manager around runner, announcing and reporting run
// lifecycle on events.
func NewManager(r *Runner, events *eventbus.EventBus) *Manager {
	return &Manager{runner: r, events: events, active: make(map[string]time.Time)}
}

// Submission is the caller-supplied portion of a run request: everything
// except the generated run id.
type Submission struct {
	UserID        string
	FlowID        string
	Nodes         []graphrun.Node
	Edges         []graphrun.Edge
	ProviderID    string
	TriggerNodeID string
	CachedOutputs map[string]graphrun.NodeOutput
}

// Start generates a run id, emits ExecutionStarted, and spawns the runner
// as a detached goroutine, returning the run id immediately. Any panic
// escaping the runner is caught and reported as ExecutionFailed.
func (m *Manager) Start(sub Submission) string {
	runID := uuid.New()
	startedAt := time.Now()

	m.mu.Lock()
	m.active[runID] = startedAt
	m.mu.Unlock()

	m.events.Emit(context.Background(), execution.ExecutionStarted{
		RunID:      runID,
		UserID:     sub.UserID,
		FlowID:     sub.FlowID,
		OccurredAt: startedAt,
	})

	go func() {
		ctx := context.Background()
		defer func() {
			m.mu.Lock()
			delete(m.active, runID)
			m.mu.Unlock()

			if rec := recover(); rec != nil {
				m.events.Emit(ctx, execution.ExecutionFailed{
					RunID:      runID,
					Error:      fmt.Sprintf("panic: %v", rec),
					OccurredAt: time.Now(),
				})
			}
		}()

		m.runner.Run(ctx, Request{
			RunID:         runID,
			UserID:        sub.UserID,
			FlowID:        sub.FlowID,
			Nodes:         sub.Nodes,
			Edges:         sub.Edges,
			ProviderID:    sub.ProviderID,
			TriggerNodeID: sub.TriggerNodeID,
			CachedOutputs: sub.CachedOutputs,
		})
	}()

	return runID
}

// ActiveRuns implements monitoring.RunTracker: the number of runs currently
// in flight and the start time of the oldest one.
func (m *Manager) ActiveRuns() (count int, oldestStart time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, startedAt := range m.active {
		count++
		if oldestStart.IsZero() || startedAt.Before(oldestStart) {
			oldestStart = startedAt
		}
	}
	return count, oldestStart
}
