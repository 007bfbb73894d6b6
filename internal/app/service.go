// Package service wires the executor and responders of the dashboard web
// server and acts as its control-plane gateway.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/jobdash/internal/adapters/mq/executor"
	"github.com/okian/jobdash/internal/gateway"
	"github.com/okian/jobdash/internal/responder"
	"github.com/okian/jobdash/pkg/logger"
	"github.com/okian/jobdash/pkg/metrics"
)

const (
	defaultRefreshIntervalMS = 3000
	defaultQueueSize         = 1024
)

// Service owns the executor lifecycle and builds the responders.
type Service struct {
	mu sync.RWMutex

	executor *executor.Pool

	// Configuration
	workerCount       int
	queueSize         int
	refreshIntervalMS int64
	configOpts        []responder.ConfigOption

	// State
	started   bool
	startedAt time.Time
	now       func() time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of executor goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the executor queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithRefreshInterval sets the refresh interval, in milliseconds, advertised
// by the config responder. Negative values are passed through so that
// responder construction rejects them.
func WithRefreshInterval(ms int64) Option {
	return func(s *Service) {
		s.refreshIntervalMS = ms
	}
}

// WithConfigOptions forwards options to the config responder.
func WithConfigOptions(opts ...responder.ConfigOption) Option {
	return func(s *Service) {
		s.configOpts = append(s.configOpts, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:       runtime.NumCPU(),
		queueSize:         defaultQueueSize,
		refreshIntervalMS: defaultRefreshIntervalMS,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates and starts the executor.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}

	s.executor = executor.New(
		executor.WithWorkers(s.workerCount),
		executor.WithCapacity(s.queueSize),
		executor.WithLogger(s.logger.Named("executor")),
	)
	s.executor.Start(ctx)

	s.started = true
	s.startedAt = s.now()
	s.logger.Info(ctx, "dashboard service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
	)
	return nil
}

// Stop drains the executor, giving up when ctx ends.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	pool := s.executor
	s.mu.Unlock()

	// Queued tasks may call back into ClusterOverview; drain without the lock.
	if err := pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "executor did not drain", logger.Error(err))
		return err
	}
	s.logger.Info(ctx, "dashboard service stopped")
	return nil
}

// Responders builds every responder the dashboard serves. Each call
// constructs new instances, so callers should call it once at startup. A
// construction error means the server must not start.
func (s *Service) Responders(ctx context.Context) ([]responder.JSONResponder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, ErrNotStarted
	}

	cfg, err := responder.NewConfigResponder(s.executor, s.refreshIntervalMS, s.configOpts...)
	if err != nil {
		return nil, fmt.Errorf("config responder: %w", err)
	}
	s.logger.Debug(ctx, "config responder ready", logger.String("payload", cfg.JSON()))

	return []responder.JSONResponder{
		cfg,
		responder.NewOverviewResponder(s.executor),
	}, nil
}

// ClusterOverview implements gateway.Gateway.
func (s *Service) ClusterOverview(ctx context.Context) (gateway.Overview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return gateway.Overview{}, err
	}
	if !s.started {
		return gateway.Overview{}, ErrNotStarted
	}

	return gateway.Overview{
		StartedAt:       s.startedAt,
		UptimeMillis:    s.now().Sub(s.startedAt).Milliseconds(),
		ExecutorWorkers: s.executor.Workers(),
		ExecutorQueued:  s.executor.Len(),
		Goroutines:      runtime.NumGoroutine(),
	}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":           s.started,
		"workerCount":       s.workerCount,
		"queueSize":         s.queueSize,
		"refreshIntervalMs": s.refreshIntervalMS,
	}
	if s.started {
		queued := s.executor.Len()
		stats["queueLength"] = queued
		metrics.UpdateExecutorQueueSize(queued)
	}
	return stats
}
