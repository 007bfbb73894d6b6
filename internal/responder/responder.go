// Package responder defines the contract between the dashboard router and
// the handlers that produce JSON documents, and hosts the built-in
// responders.
//
// A responder declares the paths it serves and answers each request with a
// Future. Work that blocks goes through the Executor the responder was
// built with; responders whose answer is known up front return an already
// completed Future.
package responder

import (
	"context"

	"github.com/okian/jobdash/internal/gateway"
)

// JSONResponder maps one or more URL paths to a JSON document.
type JSONResponder interface {
	// Paths returns the path patterns served. Non-empty and fixed for the
	// lifetime of the responder. Segments written as {name} are path
	// parameters.
	Paths() []string

	// Handle answers a request. The returned Future may still be pending
	// when Handle returns. Implementations must not mutate shared state.
	Handle(ctx context.Context, pathParams, queryParams map[string]string, gw gateway.Gateway) *Future[string]
}

// Executor runs tasks off the calling goroutine.
type Executor interface {
	Submit(ctx context.Context, task func(context.Context)) error
}

// DirectExecutor runs every task on the submitting goroutine.
type DirectExecutor struct{}

// Submit runs task immediately.
func (DirectExecutor) Submit(ctx context.Context, task func(context.Context)) error {
	task(ctx)
	return nil
}
