// Package graphrun holds the pure data types of the graph execution engine:
// nodes, edges, the scheduler's execution steps, and the per-node I/O shapes
// that flow through a run. Nothing here performs I/O or scheduling — it is
// the vocabulary the scheduler, runner and executors share.
package graphrun

// GroupNodeType is excluded from execution planning entirely: it
// contributes no dependencies and receives no events.
const GroupNodeType = "group"

// Node is a single unit of work in a submitted graph.
type Node struct {
	ID   string                 `json:"id"`
	Type string                 `json:"type,omitempty"`
	Data map[string]interface{} `json:"data,omitempty"`
}

// ResolvedType returns the node's type, preferring the top-level Type field
// over data.type when both are present (the scheduler's documented
// tie-break), and normalizing an absent type to "".
func (n Node) ResolvedType() string {
	if n.Type != "" {
		return n.Type
	}
	if t, ok := n.Data["type"].(string); ok {
		return t
	}
	return ""
}

// DataString reads a string field from the node's data bag, returning "" if
// absent or not a string.
func (n Node) DataString(key string) string {
	if v, ok := n.Data[key].(string); ok {
		return v
	}
	return ""
}

// DataFloat reads a numeric field from the node's data bag. JSON-decoded
// numbers arrive as float64; this also accepts int for values built in Go.
func (n Node) DataFloat(key string) (float64, bool) {
	switch v := n.Data[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// AdapterHandlePrefix marks a targetHandle as carrying structured adapter
// input rather than the primary text stream.
const AdapterHandlePrefix = "adapter-"

// Edge is a directed dependency from a source node's output to a target
// node's input handle.
type Edge struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// IsAdapter reports whether this edge carries adapter (structured) input.
func (e Edge) IsAdapter() bool {
	return len(e.TargetHandle) >= len(AdapterHandlePrefix) && e.TargetHandle[:len(AdapterHandlePrefix)] == AdapterHandlePrefix
}

// ExecutionStep is one scheduled unit of work, built once per run by the
// scheduler.
type ExecutionStep struct {
	NodeID         string
	NodeType       string
	InputNodeIDs   []string // text dependencies, edge order preserved
	AdapterNodeIDs []string // adapter dependencies, edge order preserved
}

// NodeOutput is the result of one executor call. Every field is optional;
// absence means "not produced". At most one NodeOutput exists per node id
// per run.
type NodeOutput struct {
	Text                string `json:"text,omitempty"`
	Image               string `json:"image,omitempty"`
	PersonaName         string `json:"persona_name,omitempty"`
	PersonaDescription  string `json:"persona_description,omitempty"`
	ReplacePrompt       string `json:"replace_prompt,omitempty"`
	InjectedPrompt      string `json:"injected_prompt,omitempty"`
	Error               string `json:"error,omitempty"`
	DurationMs          int64  `json:"duration_ms,omitempty"`
}

// HasError reports whether this output carries a terminal error.
func (o NodeOutput) HasError() bool {
	return o.Error != ""
}

// Fields returns the non-empty fields of the output as a plain map, the
// shape the spec requires for event payloads and the final outputs map.
func (o NodeOutput) Fields() map[string]interface{} {
	m := make(map[string]interface{})
	if o.Text != "" {
		m["text"] = o.Text
	}
	if o.Image != "" {
		m["image"] = o.Image
	}
	if o.PersonaName != "" {
		m["persona_name"] = o.PersonaName
	}
	if o.PersonaDescription != "" {
		m["persona_description"] = o.PersonaDescription
	}
	if o.ReplacePrompt != "" {
		m["replace_prompt"] = o.ReplacePrompt
	}
	if o.InjectedPrompt != "" {
		m["injected_prompt"] = o.InjectedPrompt
	}
	if o.Error != "" {
		m["error"] = o.Error
	}
	if o.DurationMs != 0 {
		m["duration_ms"] = o.DurationMs
	}
	return m
}

// ResolvedModel is the (provider, model, temperature) triple derived for one
// node by the model resolver. Ephemeral — computed fresh per node dispatch.
type ResolvedModel struct {
	ProviderID  string
	Model       string
	Temperature float64
}

// NodeExecutionContext is built per node immediately before its executor is
// invoked and discarded afterward.
type NodeExecutionContext struct {
	NodeID        string
	NodeType      string
	NodeData      map[string]interface{}
	TextInputs    []NodeOutput
	AdapterInputs []NodeOutput
	ProviderID    string
	Model         string
	Temperature   float64
	RunID         string
	UserID        string
}

// DataString reads a string field from the node's data bag.
func (c NodeExecutionContext) DataString(key string) string {
	if v, ok := c.NodeData[key].(string); ok {
		return v
	}
	return ""
}

// DataFloat reads a numeric field from the node's data bag.
func (c NodeExecutionContext) DataFloat(key string) (float64, bool) {
	switch v := c.NodeData[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}
