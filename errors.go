package rws

import "errors"

var (
	// ErrInvalidEndpoint is returned by NewSocket for an empty or unparsable endpoint.
	ErrInvalidEndpoint = errors.New("invalid endpoint")

	// ErrInvalidRetryInterval is returned by NewSocket when the retry interval is not positive.
	ErrInvalidRetryInterval = errors.New("retry interval must be positive")

	// ErrInvalidDuration is returned by ParseDuration for values it cannot interpret.
	ErrInvalidDuration = errors.New("invalid duration")

	// ErrNotOpen is returned when sending on a transport that is not open.
	ErrNotOpen = errors.New("connection is not open")
)
