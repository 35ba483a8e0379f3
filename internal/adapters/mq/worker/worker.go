// Package worker drains sync jobs off the queue and runs attribution for
// each one.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/opskitchen/shiftboard/internal/domain/attribution"
	"github.com/opskitchen/shiftboard/internal/domain/dedupe"
	"github.com/opskitchen/shiftboard/internal/domain/model"
	"github.com/opskitchen/shiftboard/pkg/logger"
	"github.com/opskitchen/shiftboard/pkg/metrics"
)

const (
	defaultWorkerCount    = 2
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Job is what workers read off the queue.
type Job = model.SyncJob

// Attributor runs attribution for one sync job.
type Attributor interface {
	Attribute(ctx context.Context, job model.SyncJob, identities []model.Identity) (attribution.Result, error)
}

// IdentitySource supplies the internal accounts attribution matches
// against.
type IdentitySource interface {
	Identities(ctx context.Context) ([]model.Identity, error)
}

// Saver persists attributed orders.
type Saver interface {
	SaveAll(ctx context.Context, orders []model.AttributedOrder) (int, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// SyncWorker processes sync jobs: attribute, dedupe, persist.
type SyncWorker struct {
	queue      Queue
	attributor Attributor
	identities IdentitySource
	saver      Saver
	guard      dedupe.Guard
	name       string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewSyncWorker creates a worker with configuration options.
func NewSyncWorker(queue Queue, attributor Attributor, identities IdentitySource, saver Saver, guard dedupe.Guard, opts ...Option) *SyncWorker {
	w := &SyncWorker{
		queue:      queue,
		attributor: attributor,
		identities: identities,
		saver:      saver,
		guard:      guard,
		name:       "worker",
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop until ctx is canceled, the queue closes, or
// Shutdown is called.
func (w *SyncWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error(ctx, "sync job failed",
					logger.String("jobID", job.ID),
					logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *SyncWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob runs attribution for one job and persists the results.
func (w *SyncWorker) processJob(ctx context.Context, job Job) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerDuration(time.Since(start).Seconds())
	}()

	identities, err := w.identities.Identities(ctx)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordSyncRun("error")
		return fmt.Errorf("loading identities: %w", err)
	}

	result, err := w.attributor.Attribute(ctx, job, identities)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordSyncRun("error")
		return fmt.Errorf("attributing %s: %w", job.ID, err)
	}

	fresh := w.filterSeen(ctx, result.Attributed)
	if len(fresh) > 0 {
		if _, err := w.saver.SaveAll(ctx, fresh); err != nil {
			// Let a retry see these transactions again.
			for _, order := range fresh {
				w.guard.Forget(ctx, order.ID)
			}
			metrics.RecordWorkerError()
			metrics.RecordSyncRun("error")
			return fmt.Errorf("persisting %s: %w", job.ID, err)
		}
	}

	metrics.RecordSyncRun("ok")
	metrics.RecordSyncDuration(time.Since(start).Seconds())
	w.logger.Info(ctx, "sync job completed",
		logger.String("jobID", job.ID),
		logger.Int("attributed", len(result.Attributed)),
		logger.Int("persisted", len(fresh)),
		logger.Int("skippedDays", result.SkippedDays()))
	return nil
}

// filterSeen drops orders whose transactions were already persisted by an
// earlier or overlapping run.
func (w *SyncWorker) filterSeen(ctx context.Context, orders []model.AttributedOrder) []model.AttributedOrder {
	if w.guard == nil {
		return orders
	}
	fresh := make([]model.AttributedOrder, 0, len(orders))
	for _, order := range orders {
		if w.guard.SeenAndRecord(ctx, order.ID) {
			continue
		}
		fresh = append(fresh, order)
	}
	return fresh
}

// Pool manages a fixed set of sync workers.
type Pool struct {
	workers []*SyncWorker
	queue   Queue

	shutdown chan struct{}

	logger logger.Logger
}

// NewPool creates a pool of workerCount sync workers.
func NewPool(workerCount int, queue Queue, attributor Attributor, identities IdentitySource, saver Saver, guard dedupe.Guard) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers:  make([]*SyncWorker, workerCount),
		queue:    queue,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := range workerCount {
		pool.workers[i] = NewSyncWorker(
			queue, attributor, identities, saver, guard,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// Shutdown closes the queue and waits for the workers to drain.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	close(p.shutdown)

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}
