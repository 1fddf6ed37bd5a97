package jsonp

import (
	"errors"
)

// Sentinel error kinds for bridge calls.
var (
	// ErrTransport means the resource could not be loaded or never invoked the callback.
	ErrTransport = errors.New("bridge transport failed")
	// ErrTimeout means no payload arrived within the timeout window.
	ErrTimeout = errors.New("bridge request timed out")
)
