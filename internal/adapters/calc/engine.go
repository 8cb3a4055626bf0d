package calc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/venuelab/stagecraft/internal/domain/band"
	"github.com/venuelab/stagecraft/internal/domain/coverage"
	"github.com/venuelab/stagecraft/internal/domain/geo"
	"github.com/venuelab/stagecraft/internal/domain/model"
	"github.com/venuelab/stagecraft/internal/domain/occlusion"
	"github.com/venuelab/stagecraft/internal/domain/propagation"
	"github.com/venuelab/stagecraft/internal/domain/reflection"
	"github.com/venuelab/stagecraft/internal/domain/rigging"
	"github.com/venuelab/stagecraft/pkg/logger"
	"github.com/venuelab/stagecraft/pkg/metrics"
)

// Engine dispatches calculation requests to the domain packages. It is
// stateless apart from the defaults and safe for concurrent use.
type Engine struct {
	// Defaults applied when a payload leaves the field at zero.
	gridResolution float64
	earHeight      float64
	earlyWindowMS  float64

	logger logger.Logger
}

// NewEngine creates an engine with configuration options.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		gridResolution: 1.0,
		earHeight:      1.7,
		earlyWindowMS:  reflection.DefaultEarlyWindowMS,
		logger:         logger.Get().Named("calc"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TrussRecommendationRequest asks for the smallest adequate truss section.
type TrussRecommendationRequest struct {
	Material    rigging.Material `json:"material"`
	Span        float64          `json:"span"`
	UniformLoad float64          `json:"uniform_load"`
	PointLoad   float64          `json:"point_load"`
}

// AcousticRayRequest traces one source to one listener.
type AcousticRayRequest struct {
	Source    model.SourceSpec `json:"source"`
	Listener  geo.Vector       `json:"listener"`
	Obstacles []model.Obstacle `json:"obstacles,omitempty"`
}

// AcousticRayResult is the direct field plus the worst occlusion on the
// path, with the occlusion already folded into the band levels.
type AcousticRayResult struct {
	propagation.RayResult
	Occlusion occlusion.Result `json:"occlusion"`
}

// ReflectionsRequest finds early reflections for one source/listener pair.
type ReflectionsRequest struct {
	Source   geo.Vector                `json:"source"`
	Listener geo.Vector                `json:"listener"`
	Surfaces []model.ReflectionSurface `json:"surfaces"`

	// WindowMS bounds the early reflection window; 0 uses the default.
	WindowMS float64 `json:"window_ms,omitempty"`
}

// ReverbTimeRequest estimates RT60 for a room volume.
type ReverbTimeRequest struct {
	Volume   float64                  `json:"volume"`
	Surfaces []reflection.SurfaceArea `json:"surfaces"`
}

// ReverbTimeResult carries the Sabine estimate.
type ReverbTimeResult struct {
	Seconds float64 `json:"seconds"`
}

// Execute runs one request to completion and always returns a well-formed
// response: panics and malformed payloads become envelope errors, never
// crashes. A blank request id is assigned a fresh UUID.
func (e *Engine) Execute(ctx context.Context, req Request) (resp Response) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	resp = Response{ID: req.ID, Type: req.Type}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			resp.Result = nil
			resp.Error = fmt.Sprintf("calculation panic: %v", r)
			metrics.RecordCalculationError(string(req.Type))
			e.logger.Error(ctx, "calculation panicked",
				logger.String("id", req.ID),
				logger.String("kind", string(req.Type)),
				logger.Any("panic", r),
			)
		}
		metrics.RecordCalculationLatency(string(req.Type), float64(time.Since(start).Milliseconds()))
	}()

	metrics.RecordCalculation(string(req.Type))

	result, err := e.dispatch(ctx, req)
	if err != nil {
		resp.Error = err.Error()
		metrics.RecordCalculationError(string(req.Type))
		return resp
	}
	resp.Result = result
	return resp
}

func (e *Engine) dispatch(ctx context.Context, req Request) (any, error) {
	switch req.Type {
	case KindCatenary:
		var in rigging.CatenaryInput
		if err := decode(req.Payload, &in); err != nil {
			return nil, err
		}
		return rigging.SolveCatenary(in)

	case KindLoadDistribution:
		var in rigging.LoadDistributionInput
		if err := decode(req.Payload, &in); err != nil {
			return nil, err
		}
		return rigging.DistributeLoads(in), nil

	case KindBeamDeflection:
		var in rigging.DeflectionInput
		if err := decode(req.Payload, &in); err != nil {
			return nil, err
		}
		return rigging.SolveDeflection(in)

	case KindTrussRecommendation:
		var in TrussRecommendationRequest
		if err := decode(req.Payload, &in); err != nil {
			return nil, err
		}
		return rigging.RecommendTrussSize(in.Material, in.Span, in.UniformLoad, in.PointLoad)

	case KindCoverageGrid:
		var in coverage.GridRequest
		if err := decode(req.Payload, &in); err != nil {
			return nil, err
		}
		if in.Resolution <= 0 {
			in.Resolution = e.gridResolution
		}
		if in.Height == 0 {
			in.Height = e.earHeight
		}
		if in.Options.EarlyWindowMS <= 0 {
			in.Options.EarlyWindowMS = e.earlyWindowMS
		}
		grid, err := coverage.Generate(ctx, in)
		if err != nil {
			return nil, err
		}
		metrics.RecordGridPointsSampled(len(grid.Points))
		return grid, nil

	case KindAcousticRay:
		var in AcousticRayRequest
		if err := decode(req.Payload, &in); err != nil {
			return nil, err
		}
		return e.castRay(in), nil

	case KindReflections:
		var in ReflectionsRequest
		if err := decode(req.Payload, &in); err != nil {
			return nil, err
		}
		window := in.WindowMS
		if window <= 0 {
			window = e.earlyWindowMS
		}
		return reflection.All(in.Source, in.Listener, in.Surfaces, window), nil

	case KindReverbTime:
		var in ReverbTimeRequest
		if err := decode(req.Payload, &in); err != nil {
			return nil, err
		}
		return ReverbTimeResult{Seconds: reflection.EstimateReverbTime(in.Volume, in.Surfaces)}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, req.Type)
	}
}

// castRay runs the direct field and folds the path's worst occlusion into
// every band level.
func (e *Engine) castRay(in AcousticRayRequest) AcousticRayResult {
	ray := propagation.CastRay(in.Source, in.Listener)
	occ := occlusion.WorstOf(in.Source.Position, in.Listener, in.Obstacles, band.Reference)

	if occ.Occluded {
		attenuated := make(band.Levels, len(ray.PerBand))
		for f, level := range ray.PerBand {
			spl := level - occlusion.ForBand(occ.AttenuationDB, f)
			if spl > 0 {
				attenuated[f] = spl
			}
		}
		ray.PerBand = attenuated
		ray.Intensity = attenuated[band.Reference]
	}

	return AcousticRayResult{RayResult: ray, Occlusion: occ}
}

func decode(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return fmt.Errorf("%w: empty payload", ErrBadPayload)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadPayload, err)
	}
	return nil
}
