package ws

import "time"

// ConnInfo records the identity and trace metadata captured at handshake
// time, reported with ws lifecycle and error events.
type ConnInfo struct {
	ConnID      string
	UserID      int
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
