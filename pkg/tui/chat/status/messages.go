package status

import "time"

// ProcessState represents what the current turn is waiting for
type ProcessState string

const (
	StateIdle      ProcessState = ""
	StateSending   ProcessState = "sending"
	StateReceiving ProcessState = "receiving"
)

// GetIcon returns the arrow shown next to the state
func (s ProcessState) GetIcon() string {
	switch s {
	case StateSending:
		return "↑"
	case StateReceiving:
		return "↓"
	default:
		return ""
	}
}

func (s ProcessState) GetDisplayName() string {
	switch s {
	case StateSending:
		return "Sending"
	case StateReceiving:
		return "Receiving"
	default:
		return ""
	}
}

// StartStreamingMsg indicates a turn has started
type StartStreamingMsg struct {
	State ProcessState
}

// StopStreamingMsg indicates the turn has ended
type StopStreamingMsg struct{}

// SetProcessStateMsg sets the current process state and icon
type SetProcessStateMsg struct {
	State ProcessState
}

// UpdateCountsMsg reports the size of the answer so far
type UpdateCountsMsg struct {
	Messages int
	Words    int
}

// TickMsg updates the timer
type TickMsg time.Time
