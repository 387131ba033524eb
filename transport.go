package rws

// Transport is a persistent, message-oriented duplex connection. A Transport
// is never reused: once Closed it stays Closed, and a new one is opened in
// its place.
//
// Implementations must deliver EventClose exactly once, when the transport
// transitions to Closed, and must not hold internal locks while calling
// handlers.
type Transport interface {
	State() ConnState
	AddEventListener(kind EventKind, handler Handler, opts ListenerOptions) Ref
	RemoveEventListener(ref Ref)
	Send(t MessageType, data []byte) error
	Close() error
}

// Factory opens a new Transport to an endpoint. Open must not block: the
// returned transport reports Connecting until the connection is established.
type Factory interface {
	Open(endpoint string) Transport
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(endpoint string) Transport

func (f FactoryFunc) Open(endpoint string) Transport {
	return f(endpoint)
}
