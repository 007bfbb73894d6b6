// Package gateway describes the control-plane handle passed to responders.
package gateway

import (
	"context"
	"time"
)

// Gateway is the responders' view of the cluster's control-plane leader.
type Gateway interface {
	ClusterOverview(ctx context.Context) (Overview, error)
}

// Overview summarizes the state of the running control plane.
type Overview struct {
	StartedAt       time.Time `json:"started-at"`
	UptimeMillis    int64     `json:"uptime"`
	ExecutorWorkers int       `json:"executor-workers"`
	ExecutorQueued  int       `json:"executor-queued"`
	Goroutines      int       `json:"goroutines"`
}
