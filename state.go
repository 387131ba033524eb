package rws

// ConnState is the ready state of a Transport.
type ConnState int

const (
	Connecting ConnState = iota
	Open
	Closing
	Closed
)

func (s ConnState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closing:
		return "closing"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}
