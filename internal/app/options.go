package service

import "github.com/venuelab/stagecraft/pkg/logger"

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithStoreSize sets how many async results are retained.
func WithStoreSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.storeSize = size
		}
	}
}

// WithDedupeSize sets the size of the idempotency window.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithEngineDefaults sets the engine's fallback grid resolution, listening
// height, and early reflection window.
func WithEngineDefaults(gridResolution, earHeight, earlyWindowMS float64) Option {
	return func(s *Service) {
		s.gridResolution = gridResolution
		s.earHeight = earHeight
		s.earlyWindowMS = earlyWindowMS
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
