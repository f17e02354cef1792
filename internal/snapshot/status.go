package snapshot

import "encoding/json"

// ConnectionState is the coarse connectivity state of the sync engine.
type ConnectionState int

const (
	StateNotConnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateFailed
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	default:
		return "not_connected"
	}
}

// MarshalJSON renders the state as its string name.
func (s ConnectionState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// ConnectionStatus reflects the last completed connectivity probe or sync
// attempt. Reason is set only for StateFailed.
type ConnectionStatus struct {
	State  ConnectionState `json:"state"`
	Reason string          `json:"reason,omitempty"`
}

// Failed builds a failed status with a human-readable reason.
func Failed(reason string) ConnectionStatus {
	return ConnectionStatus{State: StateFailed, Reason: reason}
}
