package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/graphrun/graphrun/internal/infrastructure/http/dto"
	"github.com/graphrun/graphrun/internal/infrastructure/messaging/nats"
	"github.com/graphrun/graphrun/internal/infrastructure/streaming"
	"github.com/labstack/echo/v4"
)

// StreamHandler serves the run event channel over SSE.
type StreamHandler struct {
	subscriber *nats.Subscriber
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(subscriber *nats.Subscriber) *StreamHandler {
	return &StreamHandler{
		subscriber: subscriber,
	}
}

// Stream handles GET /runs/:run_id/stream. It subscribes to the run's NATS
// subject and forwards every message to the client as an SSE frame, closing
// the connection once the run reaches a terminal state.
func (h *StreamHandler) Stream(c echo.Context) error {
	runID := c.Param("run_id")
	if runID == "" {
		runID = c.QueryParam("run_id")
	}
	if runID == "" {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: "run_id is required",
		})
	}

	topic := fmt.Sprintf("graphrun.runs.%s", runID)
	messages, err := h.subscriber.Subscribe(topic)
	if err != nil {
		return err
	}

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	ready, _ := streaming.FormatSSE(streaming.OutboundMessage{
		Type: streaming.TypeConnectionReady,
		Data: map[string]interface{}{"run_id": runID},
	})
	c.Response().Write(ready)
	c.Response().Flush()

	ctx := c.Request().Context()
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			pong, _ := streaming.FormatSSE(streaming.OutboundMessage{Type: streaming.TypePong})
			if _, err := c.Response().Write(pong); err != nil {
				return nil
			}
			c.Response().Flush()

		case msg, ok := <-messages:
			if !ok {
				return nil
			}

			var out streaming.OutboundMessage
			if err := json.Unmarshal(msg.Payload, &out); err != nil {
				msg.Ack()
				continue
			}

			data, err := streaming.FormatSSE(out)
			if err != nil {
				msg.Ack()
				continue
			}
			if _, err := c.Response().Write(data); err != nil {
				return nil
			}
			c.Response().Flush()
			msg.Ack()

			if out.Type == streaming.TypeExecutionCompleted || out.Type == streaming.TypeExecutionFailed {
				return nil
			}
		}
	}
}
