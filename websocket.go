package rws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WebsocketFactory opens Websocket transports. Fields may be changed until the
// factory is first used.
type WebsocketFactory struct {
	Dialer *websocket.Dialer
	Header http.Header
	Logger Logger

	// PingInterval enables a ping heartbeat when positive
	PingInterval time.Duration

	// CloseGracePeriod is how long Close waits for the server to answer the
	// close frame before dropping the connection
	CloseGracePeriod time.Duration

	// WriteTimeout bounds every write; zero disables it
	WriteTimeout time.Duration
}

// NewWebsocketFactory returns a factory dialing with dialer, or with a copy of
// websocket.DefaultDialer when dialer is nil.
func NewWebsocketFactory(dialer *websocket.Dialer) *WebsocketFactory {
	if dialer == nil {
		d := *websocket.DefaultDialer
		d.HandshakeTimeout = defaultHandshakeTimeout
		dialer = &d
	}
	return &WebsocketFactory{
		Dialer:           dialer,
		Logger:           NewNoopLogger(),
		CloseGracePeriod: defaultCloseGracePeriod,
		WriteTimeout:     defaultWriteTimeout,
	}
}

// Open starts dialing endPoint in the background and returns the transport in
// the Connecting state.
func (f *WebsocketFactory) Open(endPoint string) Transport {
	w := newWebsocket(f, endPoint)
	go w.connect()
	return w
}

// Websocket is a Transport over a gorilla/websocket connection.
type Websocket struct {
	ID string

	endPoint     string
	dialer       *websocket.Dialer
	header       http.Header
	logger       Logger
	pingInterval time.Duration
	closeGrace   time.Duration
	writeTimeout time.Duration

	listeners Listeners
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
	writeMu   sync.Mutex

	mu    sync.RWMutex
	state ConnState
	conn  *websocket.Conn
}

func newWebsocket(f *WebsocketFactory, endPoint string) *Websocket {
	logger := f.Logger
	if logger == nil {
		logger = NewNoopLogger()
	}
	dialer := f.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Websocket{
		ID:           uuid.NewString(),
		endPoint:     endPoint,
		dialer:       dialer,
		header:       f.Header,
		logger:       logger,
		pingInterval: f.PingInterval,
		closeGrace:   f.CloseGracePeriod,
		writeTimeout: f.WriteTimeout,
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
		state:        Connecting,
	}
}

func (w *Websocket) State() ConnState {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.state
}

func (w *Websocket) AddEventListener(kind EventKind, handler Handler, opts ListenerOptions) Ref {
	return w.listeners.Add(kind, handler, opts)
}

func (w *Websocket) RemoveEventListener(ref Ref) {
	w.listeners.Remove(ref)
}

// Send writes a single message. It fails with ErrNotOpen unless the
// connection is open.
func (w *Websocket) Send(t MessageType, data []byte) error {
	w.mu.RLock()
	state, conn := w.state, w.conn
	w.mu.RUnlock()

	if state != Open || conn == nil {
		return fmt.Errorf("%w: %s", ErrNotOpen, state)
	}

	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	_ = conn.SetWriteDeadline(w.writeDeadline())
	return conn.WriteMessage(int(t), data)
}

// Close starts the closing handshake. A connection still being dialed is
// abandoned. EventClose follows once the connection is gone.
func (w *Websocket) Close() error {
	w.mu.Lock()
	switch w.state {
	case Connecting:
		w.state = Closing
		w.mu.Unlock()
		w.cancel()
		return nil

	case Open:
		w.state = Closing
		conn := w.conn
		w.mu.Unlock()

		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := conn.WriteControl(websocket.CloseMessage, msg, w.writeDeadline()); err != nil {
			_ = conn.Close()
			return err
		}
		// the reader finishes when the server echoes the close frame
		time.AfterFunc(w.closeGrace, func() {
			_ = conn.Close()
		})
		return nil

	default:
		w.mu.Unlock()
		return nil
	}
}

func (w *Websocket) writeDeadline() time.Time {
	if w.writeTimeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(w.writeTimeout)
}

func (w *Websocket) connect() {
	defer w.cancel()

	w.logger.Printf(LogDebug, "websocket", "[%s] Connecting to %s", w.ID, w.endPoint)
	conn, _, err := w.dialer.DialContext(w.ctx, w.endPoint, w.header)
	if err != nil {
		if w.State() != Closing {
			w.logger.Printf(LogError, "websocket", "[%s] Connection error: %s", w.ID, err)
			w.listeners.Dispatch(Event{Kind: EventError, Err: err})
		}
		w.finish(websocket.CloseAbnormalClosure, "", false)
		return
	}

	w.mu.Lock()
	if w.state != Connecting {
		// closed while the handshake was in flight
		w.mu.Unlock()
		_ = conn.Close()
		w.finish(websocket.CloseNormalClosure, "", false)
		return
	}
	w.conn = conn
	w.state = Open
	w.mu.Unlock()

	w.logger.Printf(LogInfo, "websocket", "[%s] Connected to %s", w.ID, w.endPoint)
	w.listeners.Dispatch(Event{Kind: EventOpen})

	if w.pingInterval > 0 {
		go w.heartbeat(conn)
	}
	w.reader(conn)
}

func (w *Websocket) reader(conn *websocket.Conn) {
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				w.finish(ce.Code, ce.Text, true)
				return
			}
			if w.State() != Closing {
				w.logger.Printf(LogWarning, "websocket", "[%s] Read error: %s", w.ID, err)
			}
			w.finish(websocket.CloseAbnormalClosure, "", false)
			return
		}

		w.listeners.Dispatch(Event{Kind: EventMessage, Type: MessageType(mt), Data: data})
	}
}

func (w *Websocket) heartbeat(conn *websocket.Conn) {
	ticker := time.NewTicker(w.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, w.writeDeadline()); err != nil {
				w.logger.Printf(LogDebug, "websocket", "[%s] Heartbeat failed: %s", w.ID, err)
				return
			}
		}
	}
}

// finish moves the transport to Closed and emits EventClose, once.
func (w *Websocket) finish(code int, reason string, clean bool) {
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.state = Closed
		conn := w.conn
		w.conn = nil
		w.mu.Unlock()

		if conn != nil {
			_ = conn.Close()
		}
		close(w.done)

		w.logger.Printf(LogInfo, "websocket", "[%s] Disconnected from %s (code %d)", w.ID, w.endPoint, code)
		w.listeners.Dispatch(Event{Kind: EventClose, Code: code, Reason: reason, WasClean: clean})
	})
}
