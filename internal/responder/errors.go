package responder

import "errors"

// Sentinel kinds for responder errors.
var (
	ErrInvalidRefreshInterval = errors.New("refresh interval must not be negative")
	ErrConfigSerialization    = errors.New("config serialization failed")
	ErrRejected               = errors.New("task rejected by executor")
	ErrTaskPanicked           = errors.New("responder task panicked")
	ErrNoGateway              = errors.New("no control-plane gateway available")
)
