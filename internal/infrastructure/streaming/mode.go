package streaming

// Outbound message types the channel speaks (server -> client). All share
// the {type, data} envelope shape.
const (
	TypeConnectionReady     = "connection.ready"
	TypeExecutionStarted    = "execution.started"
	TypeExecutionCompleted  = "execution.completed"
	TypeExecutionFailed     = "execution.failed"
	TypeExecutionNodeStatus = "execution.node.status"
	TypeExecutionNodeDone   = "execution.node.completed"
	TypeExecutionNodeFailed = "execution.node.failed"
	TypePong                = "pong"
)

// Inbound message types the channel must handle (client -> server).
const (
	TypePing           = "ping"
	TypeExecutionStart = "execution.start"
)

// OutboundMessage is the envelope every server-origin channel message
// shares: {type, data}.
type OutboundMessage struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

// InboundMessage is the envelope every client-origin channel message
// shares. Data is left as raw key/value pairs since its shape depends on
// Type. No code in this repository reads inbound messages; the SSE stream
// handler only writes server-origin messages.
type InboundMessage struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}
