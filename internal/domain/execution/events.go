package execution

import "time"

// Domain event type tags. These are internal to the engine; the transport
// bridge (internal/infrastructure/streaming) maps them onto the external
// message shapes the client channel actually speaks.
const (
	EventTypeExecutionStarted   = "execution.started"
	EventTypeExecutionCompleted = "execution.completed"
	EventTypeExecutionFailed    = "execution.failed"
	EventTypeNodePending        = "node.pending"
	EventTypeNodeRunning        = "node.running"
	EventTypeNodeCompleted      = "node.completed"
	EventTypeNodeFailed         = "node.failed"
	EventTypeNodeSkipped        = "node.skipped"
)

// ExecutionStarted is emitted once by the run manager before the runner
// dispatches any node. It is guaranteed to precede every node event of the
// same run.
type ExecutionStarted struct {
	RunID      string    `json:"run_id"`
	UserID     string    `json:"user_id"`
	FlowID     string    `json:"flow_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e ExecutionStarted) EventType() string     { return EventTypeExecutionStarted }
func (e ExecutionStarted) AggregateID() string   { return e.RunID }
func (e ExecutionStarted) AggregateType() string { return "run" }

// ExecutionCompleted is emitted after every dispatched task in the run has
// settled, carrying the serialized non-null fields of every produced output.
type ExecutionCompleted struct {
	RunID      string                            `json:"run_id"`
	Outputs    map[string]map[string]interface{} `json:"outputs"`
	OccurredAt time.Time                         `json:"occurred_at"`
}

func (e ExecutionCompleted) EventType() string     { return EventTypeExecutionCompleted }
func (e ExecutionCompleted) AggregateID() string   { return e.RunID }
func (e ExecutionCompleted) AggregateType() string { return "run" }

// ExecutionFailed is emitted when scheduling fails (a cycle) or when a panic
// escapes the runner's goroutine.
type ExecutionFailed struct {
	RunID      string    `json:"run_id"`
	Error      string    `json:"error"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e ExecutionFailed) EventType() string     { return EventTypeExecutionFailed }
func (e ExecutionFailed) AggregateID() string   { return e.RunID }
func (e ExecutionFailed) AggregateType() string { return "run" }

// NodePending announces a node has been scheduled for this run but has not
// yet started. Several may be emitted as a batch before any node runs.
type NodePending struct {
	RunID      string    `json:"run_id"`
	NodeID     string    `json:"node_id"`
	NodeType   string    `json:"node_type"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e NodePending) EventType() string     { return EventTypeNodePending }
func (e NodePending) AggregateID() string   { return e.RunID }
func (e NodePending) AggregateType() string { return "run" }

// NodeRunning announces a node's executor has just been invoked.
type NodeRunning struct {
	RunID      string    `json:"run_id"`
	NodeID     string    `json:"node_id"`
	NodeType   string    `json:"node_type"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e NodeRunning) EventType() string     { return EventTypeNodeRunning }
func (e NodeRunning) AggregateID() string   { return e.RunID }
func (e NodeRunning) AggregateType() string { return "run" }

// NodeCompleted announces a node's executor returned without error, or that
// a caller-supplied cached output was loaded for the node instead.
type NodeCompleted struct {
	RunID      string                 `json:"run_id"`
	NodeID     string                 `json:"node_id"`
	NodeType   string                 `json:"node_type"`
	Output     map[string]interface{} `json:"output,omitempty"`
	DurationMs int64                  `json:"duration_ms"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func (e NodeCompleted) EventType() string     { return EventTypeNodeCompleted }
func (e NodeCompleted) AggregateID() string   { return e.RunID }
func (e NodeCompleted) AggregateType() string { return "run" }

// NodeFailed announces a node's executor threw. Distinct from NodeSkipped:
// this node itself failed, rather than being starved by an upstream error
// or a missing executor.
type NodeFailed struct {
	RunID      string    `json:"run_id"`
	NodeID     string    `json:"node_id"`
	NodeType   string    `json:"node_type"`
	Error      string    `json:"error"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e NodeFailed) EventType() string     { return EventTypeNodeFailed }
func (e NodeFailed) AggregateID() string   { return e.RunID }
func (e NodeFailed) AggregateType() string { return "run" }

// NodeSkipped announces a node was never dispatched to its executor: an
// upstream dependency failed, or no executor is registered for its type.
type NodeSkipped struct {
	RunID      string    `json:"run_id"`
	NodeID     string    `json:"node_id"`
	NodeType   string    `json:"node_type"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e NodeSkipped) EventType() string     { return EventTypeNodeSkipped }
func (e NodeSkipped) AggregateID() string   { return e.RunID }
func (e NodeSkipped) AggregateType() string { return "run" }
