package observability

// EventEnvelope wraps websocket lifecycle payloads published to the broker.
// EventType groups the stream ("ws_events"); EventName is the specific
// occurrence (ws_open, ws_close, ws_error).
type EventEnvelope struct {
	EventType string      `json:"event_type"`
	EventName string      `json:"event_name"`
	Payload   interface{} `json:"payload"`
}

// BuildHeaders assembles the correlation headers attached to published
// events. Empty values are omitted entirely.
func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
