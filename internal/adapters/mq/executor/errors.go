package executor

import "errors"

// Sentinel kinds for executor errors.
var (
	ErrQueueFull = errors.New("executor queue full")
	ErrStopped   = errors.New("executor stopped")
)
