package async

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is one document path awaiting processing.
type Job struct {
	Path        string
	SubmittedAt time.Time
}

// ProcessFunc ingests and processes one file end to end.
type ProcessFunc func(ctx context.Context, path string) error

// Queue serializes watch-mode processing behind a bounded channel. The
// default is a single worker: OCR and extraction are the bottleneck and
// the store is a single-writer database.
type Queue struct {
	process ProcessFunc
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	done chan struct{}
	wg   sync.WaitGroup

	startOnce sync.Once
	stopOnce  sync.Once
}

type Option func(*Queue)

func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithJobTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewQueue(process ProcessFunc, logger *slog.Logger, opts ...Option) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		process: process,
		logger:  logger,
		workers: 1,
		timeout: 5 * time.Minute,
		ch:      make(chan Job, 256),
		done:    make(chan struct{}),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *Queue) start() {
	q.startOnce.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go q.runWorker(i + 1)
		}
	})
}

func (q *Queue) runWorker(workerID int) {
	defer q.wg.Done()
	q.logger.Info("async.worker.started", "worker_id", workerID)

	for {
		select {
		case job := <-q.ch:
			q.runJob(workerID, job)
		case <-q.done:
			// intake closed: drain what is already queued, then stop
			for {
				select {
				case job := <-q.ch:
					q.runJob(workerID, job)
				default:
					q.logger.Info("async.worker.stopped", "worker_id", workerID)
					return
				}
			}
		}
	}
}

func (q *Queue) runJob(workerID int, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	err := q.process(ctx, job.Path)
	cancel()

	if err != nil {
		q.logger.Error("async.job.failed", "worker_id", workerID, "path", job.Path, "error", err)
	} else {
		q.logger.Info("async.job.ok", "worker_id", workerID, "path", job.Path)
	}
}

// Enqueue blocks when the queue is full; a full inbox applies
// backpressure to the watcher instead of dropping files. The blocking
// send holds no lock and gives up once Shutdown closes intake.
func (q *Queue) Enqueue(job Job) {
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}

	select {
	case <-q.done:
		q.logger.Warn("async.enqueue.rejected", "path", job.Path)
		return
	default:
	}

	select {
	case q.ch <- job:
		return
	default:
	}

	q.logger.Warn("async.queue.full", "path", job.Path)
	select {
	case q.ch <- job:
	case <-q.done:
		q.logger.Warn("async.enqueue.rejected", "path", job.Path)
	}
}

// Shutdown closes intake and waits for in-flight jobs, bounded by ctx.
func (q *Queue) Shutdown(ctx context.Context) {
	q.stopOnce.Do(func() { close(q.done) })

	finished := make(chan struct{})
	go func() { defer close(finished); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("async.shutdown.interrupted")
	case <-finished:
		q.logger.Info("async.shutdown.complete")
	}
}
