// Package dto holds the wire-level request/response shapes for the HTTP
// transport, kept separate from the domain types they're built from.
package dto

import "github.com/graphrun/graphrun/internal/domain/graphrun"

// ErrorResponse is the body returned for any non-2xx HTTP response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// RunSubmissionRequest is the body of a run-submission POST.
type RunSubmissionRequest struct {
	FlowID        string                         `json:"flow_id"`
	Nodes         []graphrun.Node                `json:"nodes"`
	Edges         []graphrun.Edge                `json:"edges"`
	ProviderID    string                         `json:"provider_id"`
	TriggerNodeID string                         `json:"trigger_node_id,omitempty"`
	CachedOutputs map[string]graphrun.NodeOutput `json:"cached_outputs,omitempty"`
}

// RunSubmissionResponse is returned immediately after a run is accepted,
// before any node work begins.
type RunSubmissionResponse struct {
	RunID string `json:"run_id"`
}
