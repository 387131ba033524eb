package rws

import "time"

// Option configures a Socket.
type Option func(s *Socket)

// WithRetryInterval sets the time between reconnect attempts. Default 3s.
func WithRetryInterval(d time.Duration) Option {
	return func(s *Socket) {
		s.retryInterval = d
	}
}

// WithGiveUpAfter sets the budget of a retry episode. A zero or negative
// value disables the budget, retrying forever. Default one hour.
func WithGiveUpAfter(d time.Duration) Option {
	return func(s *Socket) {
		s.giveUpAfter = d
	}
}

func WithLogger(logger Logger) Option {
	return func(s *Socket) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Socket) {
		s.metrics = m
	}
}

// WithFactory sets how transports are opened. The default is a
// WebsocketFactory using websocket.DefaultDialer.
func WithFactory(f Factory) Option {
	return func(s *Socket) {
		s.factory = f
	}
}

// WithOnReconnect sets a function called each time the socket is connected
// again after a disconnect, once listeners have been restored. attempts is
// the number of reconnect attempts it took. It is not called for the first
// connection.
func WithOnReconnect(fn func(attempts int)) Option {
	return func(s *Socket) {
		s.onReconnect = fn
	}
}

func withClock(c clock) Option {
	return func(s *Socket) {
		s.clock = c
	}
}
