package chatsocket

// Status is the connection status of a client.
type Status int

const (
	StatusConnecting Status = iota
	StatusOpen
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusOpen:
		return "open"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// lifecycleEvent is an input to the connection state machine.
type lifecycleEvent int

const (
	evOpened lifecycleEvent = iota
	evDialFailed
	evRemoteClosed
	evTransportError
	evTeardown
)

func (e lifecycleEvent) String() string {
	switch e {
	case evOpened:
		return "opened"
	case evDialFailed:
		return "dial_failed"
	case evRemoteClosed:
		return "remote_closed"
	case evTransportError:
		return "transport_error"
	case evTeardown:
		return "teardown"
	default:
		return "unknown"
	}
}

// transition returns the status reached from "from" on ev. The second
// result is false when ev does not apply in that status; the status is then
// unchanged.
func transition(from Status, ev lifecycleEvent) (Status, bool) {
	switch from {
	case StatusConnecting:
		switch ev {
		case evOpened:
			return StatusOpen, true
		case evDialFailed, evRemoteClosed, evTransportError, evTeardown:
			return StatusClosed, true
		}
	case StatusOpen:
		switch ev {
		case evRemoteClosed, evTransportError, evTeardown:
			return StatusClosed, true
		}
	}
	return from, false
}
