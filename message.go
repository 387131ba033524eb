package rws

import "github.com/gorilla/websocket"

// EventKind names the events a Transport emits.
type EventKind string

const (
	EventOpen    EventKind = "open"
	EventMessage EventKind = "message"
	EventError   EventKind = "error"
	EventClose   EventKind = "close"
)

// MessageType is the frame type of a message sent or received on a Transport.
type MessageType int

const (
	TextMessage   MessageType = websocket.TextMessage
	BinaryMessage MessageType = websocket.BinaryMessage
)

func (t MessageType) String() string {
	switch t {
	case TextMessage:
		return "text"
	case BinaryMessage:
		return "binary"
	default:
		return "unknown"
	}
}

// Event is delivered to every Handler registered for its Kind.
//
// Type and Data are set for message events, Err for error events, and Code,
// Reason and WasClean for close events.
type Event struct {
	Kind     EventKind
	Type     MessageType
	Data     []byte
	Err      error
	Code     int
	Reason   string
	WasClean bool
}

// Handler is called with every event of the kind it was registered for.
type Handler func(ev Event)

// ListenerOptions tune a single listener registration.
type ListenerOptions struct {
	// Once removes the listener after its first call.
	Once bool
}
