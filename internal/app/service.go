// Package service composes the attribution pipeline behind the HTTP API:
// POS client, sync queue and workers, attribution store, and the
// leaderboard aggregator.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	syncqueue "github.com/opskitchen/shiftboard/internal/adapters/mq/queue"
	workerpool "github.com/opskitchen/shiftboard/internal/adapters/mq/worker"
	"github.com/opskitchen/shiftboard/internal/adapters/repository"
	"github.com/opskitchen/shiftboard/internal/domain/attribution"
	"github.com/opskitchen/shiftboard/internal/domain/dedupe"
	"github.com/opskitchen/shiftboard/internal/domain/leaderboard"
	"github.com/opskitchen/shiftboard/internal/domain/model"
	"github.com/opskitchen/shiftboard/pkg/logger"
	"github.com/opskitchen/shiftboard/pkg/metrics"
)

// OpsData supplies the operational platform's records the engine reads:
// internal accounts, checklist submissions, templates, and reviews.
type OpsData interface {
	Identities(ctx context.Context) ([]model.Identity, error)
	Submissions(ctx context.Context) ([]model.Submission, error)
	Templates(ctx context.Context) ([]model.Template, error)
	Reviews(ctx context.Context) ([]model.Review, error)
}

// Service implements the API dependencies for the attribution system.
type Service struct {
	mu sync.RWMutex

	engine     *attribution.Engine
	aggregator *leaderboard.Aggregator
	store      repository.Store
	data       OpsData
	guard      dedupe.Guard
	queue      syncqueue.Queue
	pool       *workerpool.Pool

	workerCount  int
	queueSize    int
	dedupeSize   int
	lookbackDays int
	now          func() time.Time

	started bool

	logger logger.Logger
}

// New constructs a Service. The attribution engine, aggregator, store,
// and data source are required; everything else has defaults.
func New(engine *attribution.Engine, aggregator *leaderboard.Aggregator, store repository.Store, data OpsData, opts ...Option) *Service {
	s := &Service{
		engine:       engine,
		aggregator:   aggregator,
		store:        store,
		data:         data,
		workerCount:  2,
		queueSize:    64,
		dedupeSize:   100_000,
		lookbackDays: 30,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the queue, dedupe guard and worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.guard = dedupe.NewMemoryGuard(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = syncqueue.NewInMemoryQueue(syncqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.engine, identitySource{s.data}, s.store, s.guard)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "attribution service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
	)
	return nil
}

// Stop drains the queue and stops the workers.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(ctx, "stopping attribution service...")
	if s.pool != nil {
		_ = s.pool.Shutdown(ctx)
	}
	s.started = false
	s.logger.Info(ctx, "attribution service stopped")
}

// identitySource adapts OpsData to the worker's narrower dependency.
type identitySource struct {
	data OpsData
}

func (i identitySource) Identities(ctx context.Context) ([]model.Identity, error) {
	return i.data.Identities(ctx)
}

// SyncOrderAttributions runs a synchronous attribution pass over the date
// range and persists the results. Returns the run outcome.
func (s *Service) SyncOrderAttributions(ctx context.Context, locationID, storeID string, startDate, endDate time.Time) (attribution.Result, error) {
	start := s.now()

	identities, err := s.data.Identities(ctx)
	if err != nil {
		metrics.RecordSyncRun("error")
		return attribution.Result{}, err
	}

	job := model.SyncJob{
		ID:         uuid.NewString(),
		LocationID: locationID,
		StoreID:    storeID,
		StartDate:  startDate,
		EndDate:    endDate,
		EnqueuedAt: start,
	}

	result, err := s.engine.Attribute(ctx, job, identities)
	if err != nil {
		metrics.RecordSyncRun("error")
		return attribution.Result{}, err
	}

	if len(result.Attributed) > 0 {
		if _, err := s.store.SaveAll(ctx, result.Attributed); err != nil {
			metrics.RecordSyncRun("error")
			return attribution.Result{}, err
		}
	}

	metrics.RecordSyncRun("ok")
	metrics.RecordSyncDuration(s.now().Sub(start).Seconds())
	return result, nil
}

// EnqueueSync submits a sync job for asynchronous processing. Returns the
// job id, or false when the queue is full and the caller should back off.
func (s *Service) EnqueueSync(ctx context.Context, locationID, storeID string, startDate, endDate time.Time) (string, bool) {
	s.mu.RLock()
	queue := s.queue
	s.mu.RUnlock()

	if queue == nil {
		return "", false
	}

	job := model.SyncJob{
		ID:         uuid.NewString(),
		LocationID: locationID,
		StoreID:    storeID,
		StartDate:  startDate,
		EndDate:    endDate,
		EnqueuedAt: s.now(),
	}

	if !queue.Enqueue(ctx, job) {
		return "", false
	}
	return job.ID, true
}

// CalculateLeaderboard builds the ranked leadership leaderboard for a
// store over the service's lookback window.
func (s *Service) CalculateLeaderboard(ctx context.Context, storeID string) ([]model.LeaderboardEntry, error) {
	identities, err := s.data.Identities(ctx)
	if err != nil {
		return nil, err
	}
	submissions, err := s.data.Submissions(ctx)
	if err != nil {
		return nil, err
	}
	templates, err := s.data.Templates(ctx)
	if err != nil {
		return nil, err
	}
	reviews, err := s.data.Reviews(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	from := now.AddDate(0, 0, -s.lookbackDays)
	orders, err := s.store.ByWindow(ctx, storeID, from, now)
	if err != nil {
		return nil, err
	}

	return s.aggregator.Build(submissions, templates, identities, s.lookbackDays, reviews, orders), nil
}

// Stats reports an operational snapshot for monitoring.
func (s *Service) Stats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":      s.started,
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"lookbackDays": s.lookbackDays,
	}

	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["dedupeEntries"] = s.guard.Size()
	}
	if count, err := s.store.Count(ctx); err == nil {
		stats["storedOrders"] = count
	}

	return stats
}
