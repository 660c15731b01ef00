package streaming

import (
	"encoding/json"
	"fmt"
)

// FormatSSE renders one OutboundMessage as a single Server-Sent Events
// frame, using the message's own Type as the SSE event name.
func FormatSSE(msg OutboundMessage) ([]byte, error) {
	jsonData, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", msg.Type, jsonData)), nil
}
