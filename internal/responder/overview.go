package responder

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/okian/jobdash/internal/gateway"
)

// OverviewPath is the path served by OverviewResponder.
const OverviewPath = "/overview"

// OverviewResponder asks the control plane for a cluster overview on every
// request. The gateway call runs on the executor.
type OverviewResponder struct {
	exec Executor
}

// NewOverviewResponder creates an OverviewResponder.
func NewOverviewResponder(exec Executor) *OverviewResponder {
	return &OverviewResponder{exec: exec}
}

// Paths implements JSONResponder.
func (r *OverviewResponder) Paths() []string {
	return []string{OverviewPath}
}

// Handle implements JSONResponder.
func (r *OverviewResponder) Handle(ctx context.Context, _, _ map[string]string, gw gateway.Gateway) *Future[string] {
	if gw == nil {
		return Failed[string](ErrNoGateway)
	}
	return Async(ctx, r.exec, func(ctx context.Context) (string, error) {
		ov, err := gw.ClusterOverview(ctx)
		if err != nil {
			return "", fmt.Errorf("cluster overview: %w", err)
		}
		b, err := json.Marshal(ov)
		if err != nil {
			return "", fmt.Errorf("encode overview: %w", err)
		}
		return string(b), nil
	})
}
