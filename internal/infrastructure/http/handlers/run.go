package handlers

import (
	"net/http"

	"github.com/graphrun/graphrun/internal/infrastructure/http/dto"
	"github.com/graphrun/graphrun/internal/infrastructure/runner"
	"github.com/labstack/echo/v4"
)

// RunHandler handles run submission over HTTP.
type RunHandler struct {
	manager *runner.Manager
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(manager *runner.Manager) *RunHandler {
	return &RunHandler{manager: manager}
}

// Submit handles POST /runs: it validates the submitted graph, starts the
// run asynchronously, and returns the run id so the caller can open the
// event stream immediately.
func (h *RunHandler) Submit(c echo.Context) error {
	var req dto.RunSubmissionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
	}

	if req.FlowID == "" {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: "flow_id is required",
		})
	}
	if len(req.Nodes) == 0 {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: "nodes must not be empty",
		})
	}
	if req.ProviderID == "" {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: "provider_id is required",
		})
	}

	userID, _ := c.Get("user_id").(string)

	runID := h.manager.Start(runner.Submission{
		UserID:        userID,
		FlowID:        req.FlowID,
		Nodes:         req.Nodes,
		Edges:         req.Edges,
		ProviderID:    req.ProviderID,
		TriggerNodeID: req.TriggerNodeID,
		CachedOutputs: req.CachedOutputs,
	})

	return c.JSON(http.StatusAccepted, dto.RunSubmissionResponse{RunID: runID})
}
