// Package service provides the core calculation service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/venuelab/stagecraft/internal/adapters/calc"
	jobqueue "github.com/venuelab/stagecraft/internal/adapters/mq/queue"
	workerpool "github.com/venuelab/stagecraft/internal/adapters/mq/worker"
	"github.com/venuelab/stagecraft/internal/adapters/repository"
	"github.com/venuelab/stagecraft/internal/domain/dedupe"
	"github.com/venuelab/stagecraft/pkg/logger"
	"github.com/venuelab/stagecraft/pkg/metrics"
)

const shutdownTimeout = 30 * time.Second

// Service owns the queue, the worker pool, the result store, and the
// calculation engine, and exposes the narrow surface the HTTP layer needs.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    *repository.ResultStore
	deduper  dedupe.Deduper
	jobQueue jobqueue.Queue
	engine   *calc.Engine
	pool     *workerpool.Pool

	// Configuration
	workerCount    int
	queueSize      int
	storeSize      int
	dedupeSize     int
	gridResolution float64
	earHeight      float64
	earlyWindowMS  float64

	// State
	started bool

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   10000,
		storeSize:   10000,
		dedupeSize:  50000,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting calculation service...")

	s.store = repository.NewResultStore(
		repository.WithMaxSize(s.storeSize),
	)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.jobQueue = jobqueue.NewInMemoryQueue(
		jobqueue.WithCapacity(s.queueSize),
		jobqueue.WithBufferSize(s.queueSize),
	)

	var engineOpts []calc.EngineOption
	if s.gridResolution > 0 {
		engineOpts = append(engineOpts, calc.WithGridResolution(s.gridResolution))
	}
	if s.earHeight > 0 {
		engineOpts = append(engineOpts, calc.WithEarHeight(s.earHeight))
	}
	if s.earlyWindowMS > 0 {
		engineOpts = append(engineOpts, calc.WithEarlyWindow(s.earlyWindowMS))
	}
	s.engine = calc.NewEngine(engineOpts...)

	s.pool = workerpool.NewPool(s.workerCount, s.jobQueue, s.engine, s.store)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "calculation service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("storeSize", s.storeSize),
	)

	return nil
}

// Stop gracefully shuts down the service: close the queue, drain the pool.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping calculation service...")

	if s.pool != nil {
		if err := s.pool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "calculation service stopped")
}

// SeenAndRecord atomically checks if a request id was seen and records it
// if not.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	return s.deduper.SeenAndRecord(ctx, id)
}

// Unrecord removes a request ID from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the number of tracked request ids.
func (s *Service) Size() int64 {
	return s.deduper.Size()
}

// Submit pushes a calculation into the queue. Returns false on
// backpressure.
func (s *Service) Submit(ctx context.Context, req calc.Request, reply chan<- calc.Response) bool {
	ok := s.jobQueue.Enqueue(ctx, jobqueue.Job{Request: req, Reply: reply})
	if !ok {
		s.logger.Warn(ctx, "queue rejected request",
			logger.String("id", req.ID),
			logger.String("kind", string(req.Type)),
		)
	}
	return ok
}

// Result returns a stored async response by request id.
func (s *Service) Result(ctx context.Context, id string) (calc.Response, error) {
	return s.store.Get(ctx, id)
}

// Execute runs one calculation inline, bypassing the queue. Used by the
// CLI and by callers that already live inside the process.
func (s *Service) Execute(ctx context.Context, req calc.Request) calc.Response {
	return s.engine.Execute(ctx, req)
}

// GetStats returns a point-in-time snapshot for the stats endpoint.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":      s.started,
		"workers":      s.workerCount,
		"queue_size":   0,
		"stored":       0,
		"deduped_ids":  int64(0),
		"goroutines":   runtime.NumGoroutine(),
		"memory_bytes": memoryUsage(),
	}
	if s.jobQueue != nil {
		stats["queue_size"] = s.jobQueue.Len(ctx)
	}
	if s.store != nil {
		stats["stored"] = s.store.Count(ctx)
	}
	if s.deduper != nil {
		stats["deduped_ids"] = s.deduper.Size()
	}
	return stats
}

// memoryUsage publishes the runtime gauges as a side effect so /healthz
// and /stats stay consistent.
func memoryUsage() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	return m.Alloc
}
