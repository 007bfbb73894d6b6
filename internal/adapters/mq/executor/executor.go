// Package executor runs responder work on a bounded pool of goroutines.
//
// Submissions never block: a full queue is reported to the caller, who is
// expected to fail the request rather than wait.
package executor

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/jobdash/pkg/logger"
	"github.com/okian/jobdash/pkg/metrics"
)

const (
	defaultCapacity = 1024
)

// Task is a unit of work. The context is the one given to Start.
type Task func(ctx context.Context)

// Pool is a fixed set of workers draining a bounded task queue.
type Pool struct {
	tasks    chan Task
	workers  int
	capacity int

	mu      sync.RWMutex
	started bool
	closed  bool
	wg      sync.WaitGroup

	logger logger.Logger
}

// New creates a pool. Workers do not run until Start.
func New(opts ...Option) *Pool {
	p := &Pool{
		workers:  runtime.NumCPU(),
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.tasks = make(chan Task, p.capacity)

	metrics.UpdateExecutorQueueCapacity(p.capacity)
	metrics.UpdateExecutorQueueSize(0)
	metrics.UpdateExecutorWorkers(0)
	return p
}

// Start launches the workers. Calling Start more than once is a no-op.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true
	if p.logger == nil {
		p.logger = logger.Named("executor")
	}

	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go p.runWorker(ctx)
	}
	metrics.UpdateExecutorWorkers(p.workers)
	p.logger.Info(ctx, "executor started",
		logger.Int("workers", p.workers),
		logger.Int("capacity", p.capacity),
	)
}

// Submit queues task. It returns ErrQueueFull when the queue is at
// capacity, ErrStopped after Shutdown, or ctx.Err() if ctx is done.
func (p *Pool) Submit(ctx context.Context, task func(context.Context)) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		metrics.RecordExecutorTask("rejected")
		metrics.RecordErrorByComponent("executor", "stopped")
		return ErrStopped
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordExecutorTask("rejected")
		metrics.RecordErrorByComponent("executor", "context_cancelled")
		return err
	}

	select {
	case p.tasks <- task:
		metrics.RecordExecutorTask("submitted")
		metrics.UpdateExecutorQueueSize(len(p.tasks))
		return nil
	default:
		metrics.RecordExecutorTask("rejected")
		metrics.RecordErrorByComponent("executor", "queue_full")
		return ErrQueueFull
	}
}

// Shutdown stops accepting tasks and waits for queued ones to finish or
// for ctx to end.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.tasks)
	started := p.started
	p.mu.Unlock()

	if !started {
		return nil
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		metrics.UpdateExecutorWorkers(0)
		p.logger.Info(ctx, "executor stopped")
		return nil
	case <-ctx.Done():
		p.logger.Warn(ctx, "executor shutdown timed out", logger.Int("queued", len(p.tasks)))
		return fmt.Errorf("executor shutdown: %w", ctx.Err())
	}
}

// Len returns the number of queued tasks.
func (p *Pool) Len() int {
	return len(p.tasks)
}

// Workers returns the configured worker count.
func (p *Pool) Workers() int {
	return p.workers
}

// Capacity returns the queue capacity.
func (p *Pool) Capacity() int {
	return p.capacity
}

func (p *Pool) runWorker(ctx context.Context) {
	defer p.wg.Done()
	for task := range p.tasks {
		metrics.UpdateExecutorQueueSize(len(p.tasks))
		p.run(ctx, task)
	}
}

func (p *Pool) run(ctx context.Context, task Task) {
	start := time.Now()
	defer func() {
		metrics.RecordExecutorTaskLatency(float64(time.Since(start).Milliseconds()))
		if r := recover(); r != nil {
			metrics.RecordExecutorTask("panicked")
			metrics.RecordErrorByComponent("executor", "panic")
			p.logger.Error(ctx, "executor task panicked", logger.Any("panic", r))
			return
		}
		metrics.RecordExecutorTask("completed")
	}()
	task(ctx)
}
