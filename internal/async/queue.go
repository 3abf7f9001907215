package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one file to process.
type Job struct {
	Path        string
	SubmittedAt time.Time
	TraceID     string
}

// Result pairs a job with its outcome.
type Result[T any] struct {
	Job   Job
	Value T
	Err   error
}

// HandlerFunc processes one job.
type HandlerFunc[T any] func(ctx context.Context, job Job) (T, error)

// Queue runs jobs on a fixed set of workers and collects their results.
type Queue[T any] struct {
	handle  HandlerFunc[T]
	logger  *slog.Logger
	base    context.Context
	workers int
	timeout time.Duration
	size    int

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu      sync.Mutex
	closed  bool
	quit    chan struct{} // closed by Shutdown; wakes blocked senders
	senders sync.WaitGroup

	resMu   sync.Mutex
	results []Result[T]
}

type config struct {
	workers int
	size    int
	timeout time.Duration
}

type Option func(*config)

func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.size = n
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewQueue starts the workers. Per-job contexts derive from ctx.
func NewQueue[T any](ctx context.Context, handle HandlerFunc[T], logger *slog.Logger, opts ...Option) *Queue[T] {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := config{workers: 4, size: 256, timeout: 3 * time.Minute}
	for _, o := range opts {
		o(&cfg)
	}
	q := &Queue[T]{
		handle:  handle,
		logger:  logger,
		base:    ctx,
		workers: cfg.workers,
		timeout: cfg.timeout,
		size:    cfg.size,
		ch:      make(chan Job, cfg.size),
		quit:    make(chan struct{}),
	}
	q.start()
	return q
}

func (q *Queue[T]) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("async.worker.started", "worker_id", workerID)

				for job := range q.ch {
					q.run(workerID, job)
				}

				q.logger.Debug("async.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *Queue[T]) run(workerID int, job Job) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(q.base, q.timeout)
	v, err := q.handle(ctx, job)
	cancel()

	if err != nil {
		q.logger.Error("async.job.failed", "worker_id", workerID, "trace_id", job.TraceID, "path", job.Path, "error", err)
	} else {
		q.logger.Info("async.job.ok", "worker_id", workerID, "trace_id", job.TraceID, "path", job.Path,
			"elapsed_ms", time.Since(start).Milliseconds())
	}

	q.resMu.Lock()
	q.results = append(q.results, Result[T]{Job: job, Value: v, Err: err})
	q.resMu.Unlock()
}

// Enqueue submits job, blocking while the queue is full. A blocked call returns
// ErrQueueClosed as soon as Shutdown starts.
func (q *Queue[T]) Enqueue(ctx context.Context, job Job) error {
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	if job.TraceID == "" {
		job.TraceID = uuid.NewString()
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("async.enqueue.closed", "path", job.Path)
		return ErrQueueClosed
	}
	q.senders.Add(1)
	q.mu.Unlock()
	defer q.senders.Done()

	if len(q.ch) == q.size {
		q.logger.Warn("async.enqueue.backpressure", "path", job.Path)
	}
	select {
	case q.ch <- job:
		q.logger.Debug("async.enqueue.ok", "path", job.Path, "trace_id", job.TraceID)
		return nil
	case <-q.quit:
		q.logger.Warn("async.enqueue.closed", "path", job.Path)
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs, waits for the workers to drain the queue or for ctx,
// and returns the results collected so far.
func (q *Queue[T]) Shutdown(ctx context.Context) []Result[T] {
	q.mu.Lock()
	first := !q.closed
	if first {
		q.closed = true
		close(q.quit)
	}
	q.mu.Unlock()

	if first {
		// ch is closed only after every in-flight sender has returned.
		q.senders.Wait()
		close(q.ch)
	}

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("async.shutdown.interrupted")
	case <-done:
		q.logger.Debug("async.shutdown.drained")
	}

	q.resMu.Lock()
	defer q.resMu.Unlock()
	out := make([]Result[T], len(q.results))
	copy(out, q.results)
	return out
}
