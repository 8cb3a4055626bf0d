package calc

import "github.com/venuelab/stagecraft/pkg/logger"

// EngineOption applies a configuration option to the Engine.
type EngineOption func(*Engine)

// WithGridResolution sets the default coverage grid spacing in meters.
func WithGridResolution(meters float64) EngineOption {
	return func(e *Engine) {
		if meters > 0 {
			e.gridResolution = meters
		}
	}
}

// WithEarHeight sets the default listening plane height in meters.
func WithEarHeight(meters float64) EngineOption {
	return func(e *Engine) {
		if meters > 0 {
			e.earHeight = meters
		}
	}
}

// WithEarlyWindow sets the default early reflection window in milliseconds.
func WithEarlyWindow(ms float64) EngineOption {
	return func(e *Engine) {
		if ms > 0 {
			e.earlyWindowMS = ms
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}
