// Package api routes dashboard HTTP requests to JSON responders.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/okian/jobdash/internal/gateway"
	"github.com/okian/jobdash/internal/responder"
	"github.com/okian/jobdash/pkg/logger"
	"github.com/okian/jobdash/pkg/metrics"
)

const defaultRequestTimeout = 10 * time.Second

var pathParamPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)(?:\.\.\.)?\}`)

// Router wires responders, health and dashboard routes onto a ServeMux.
type Router struct {
	gateway        gateway.Gateway
	responders     []responder.JSONResponder
	requestTimeout time.Duration
	logger         logger.Logger

	healthHandler    *HealthHandler
	dashboardHandler *dashboardHandler
}

// RouterOption applies a configuration option to the Router.
type RouterOption func(*Router)

// WithRequestTimeout bounds how long a request waits on its responder.
func WithRequestTimeout(d time.Duration) RouterOption {
	return func(rt *Router) {
		if d > 0 {
			rt.requestTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the router.
func WithLogger(l logger.Logger) RouterOption {
	return func(rt *Router) {
		if l != nil {
			rt.logger = l
		}
	}
}

// NewRouter creates a router that hands gw to every responder. gw may be
// nil when no control plane is reachable.
func NewRouter(gw gateway.Gateway, opts ...RouterOption) *Router {
	rt := &Router{
		gateway:          gw,
		requestTimeout:   defaultRequestTimeout,
		healthHandler:    NewHealthHandler(),
		dashboardHandler: newDashboardHandler(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Add queues responders for registration.
func (rt *Router) Add(rs ...responder.JSONResponder) {
	rt.responders = append(rt.responders, rs...)
}

// Register attaches every route to mux. Responders must be fully
// constructed before this is called.
func (rt *Router) Register(ctx context.Context, mux *http.ServeMux) error {
	if rt.logger == nil {
		rt.logger = logger.Named("api")
	}

	for _, res := range rt.responders {
		paths := res.Paths()
		if len(paths) == 0 {
			return fmt.Errorf("%w: %T", ErrNoPaths, res)
		}
		for _, p := range paths {
			endpoint := endpointName(p)
			h := rt.serve(res, p, pathParamNames(p))
			mux.HandleFunc("GET "+p, RequestIDMiddleware(MetricsMiddleware(h, endpoint)))
			rt.logger.Debug(ctx, "registered responder", logger.String("path", p), logger.String("endpoint", endpoint))
		}
	}

	mux.HandleFunc("GET /healthz", MetricsMiddleware(rt.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /dashboard", rt.dashboardHandler.HandleDashboard)
	return nil
}

func (rt *Router) serve(res responder.JSONResponder, pattern string, params []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pathParams := make(map[string]string, len(params))
		for _, name := range params {
			pathParams[name] = r.PathValue(name)
		}
		queryParams := make(map[string]string)
		for k, v := range r.URL.Query() {
			if len(v) > 0 {
				queryParams[k] = v[0]
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), rt.requestTimeout)
		defer cancel()

		body, err := res.Handle(ctx, pathParams, queryParams, rt.gateway).Await(ctx)
		switch {
		case err == nil:
			metrics.RecordResponderResult(pattern, "ok")
			writeBody(w, http.StatusOK, body)
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			metrics.RecordResponderResult(pattern, "timeout")
			writeError(w, http.StatusServiceUnavailable, "unavailable", err)
		default:
			metrics.RecordResponderResult(pattern, "error")
			rt.logger.Error(ctx, "responder failed",
				logger.String("path", pattern),
				logger.String("request_id", RequestID(r.Context())),
				logger.Error(err),
			)
			writeError(w, http.StatusInternalServerError, "internal", fmt.Errorf("%w: %w", ErrResponderFailed, err))
		}
	}
}

// pathParamNames extracts {name} segments from a ServeMux pattern.
func pathParamNames(pattern string) []string {
	var names []string
	for _, m := range pathParamPattern.FindAllStringSubmatch(pattern, -1) {
		names = append(names, m[1])
	}
	return names
}

// endpointName turns "/jobs/{jobid}/config" into "jobs_jobid_config" for
// metric labels.
func endpointName(pattern string) string {
	r := strings.NewReplacer("{", "", "}", "", "...", "", "/", "_")
	name := strings.Trim(r.Replace(pattern), "_")
	if name == "" {
		return "root"
	}
	return name
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeBody(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
