package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrNoPaths         = errors.New("responder declares no paths")
	ErrResponderFailed = errors.New("responder failed")
)
