package rws

import "time"

const (
	// Day and Hour are the symbolic durations accepted by ParseDuration.
	Day  = 24 * time.Hour
	Hour = time.Hour

	// defaultRetryInterval is the default time between reconnect attempts
	defaultRetryInterval = 3000 * time.Millisecond

	// defaultGiveUpAfter is the default budget for a single retry episode
	defaultGiveUpAfter = Hour

	// defaultHandshakeTimeout is the default websocket handshake timeout
	defaultHandshakeTimeout = 10 * time.Second

	// defaultCloseGracePeriod is how long Close waits for the peer's close frame
	defaultCloseGracePeriod = 250 * time.Millisecond

	// defaultWriteTimeout bounds every websocket write
	defaultWriteTimeout = 10 * time.Second
)
