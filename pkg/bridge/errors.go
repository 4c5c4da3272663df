package bridge

import "fmt"

// ProtocolError reports a frame that violated the wire contract on one of the
// relay's sockets. Sessions log these and drop the frame; they are never
// fatal on their own.
type ProtocolError struct {
	Side   string // "carrier" or "agent"
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s protocol error: %s", e.Side, e.Reason)
}
