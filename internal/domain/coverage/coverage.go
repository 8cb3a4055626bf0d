// Package coverage combines multiple sources into per-band SPL at listening
// positions and samples rectangular coverage grids with quality
// classification.
package coverage

import (
	"math"

	"github.com/venuelab/stagecraft/internal/domain/band"
	"github.com/venuelab/stagecraft/internal/domain/directivity"
	"github.com/venuelab/stagecraft/internal/domain/geo"
	"github.com/venuelab/stagecraft/internal/domain/model"
	"github.com/venuelab/stagecraft/internal/domain/occlusion"
	"github.com/venuelab/stagecraft/internal/domain/propagation"
	"github.com/venuelab/stagecraft/internal/domain/reflection"
)

// Weighting selects how a band map collapses to the headline value.
type Weighting string

const (
	WeightingLinear    Weighting = "linear"
	WeightingAWeighted Weighting = "aweighted"
)

// Quality classifies a coverage point by composite SPL.
type Quality string

const (
	QualityPoor       Quality = "poor"
	QualityAcceptable Quality = "acceptable"
	QualityGood       Quality = "good"
	QualityExcellent  Quality = "excellent"
	QualityExcessive  Quality = "excessive"
)

// Quality thresholds in dB.
const (
	poorBelow       = 85.0
	acceptableBelow = 90.0
	goodBelow       = 100.0
	excellentBelow  = 105.0
)

// Classify maps a composite SPL to its quality band.
func Classify(spl float64) Quality {
	switch {
	case spl < poorBelow:
		return QualityPoor
	case spl < acceptableBelow:
		return QualityAcceptable
	case spl < goodBelow:
		return QualityGood
	case spl < excellentBelow:
		return QualityExcellent
	default:
		return QualityExcessive
	}
}

// Scene bundles the immutable inputs to a coverage calculation.
type Scene struct {
	Sources   []model.SourceSpec        `json:"sources"`
	Obstacles []model.Obstacle          `json:"obstacles,omitempty"`
	Surfaces  []model.ReflectionSurface `json:"surfaces,omitempty"`
}

// Options tunes a coverage calculation. The zero value enables the direct
// field only with A-weighted composites.
type Options struct {
	Weighting          Weighting `json:"weighting,omitempty"`
	IncludeOcclusion   bool      `json:"include_occlusion"`
	IncludeReflections bool      `json:"include_reflections"`
	PhaseHeuristic     bool      `json:"phase_heuristic"`
	EarlyWindowMS      float64   `json:"early_window_ms,omitempty"`
}

func (o Options) weighting() Weighting {
	if o.Weighting == WeightingLinear {
		return WeightingLinear
	}
	return WeightingAWeighted
}

// SourceContribution is the per-source breakdown at a point.
type SourceContribution struct {
	SourceID  string      `json:"source_id"`
	Distance  float64     `json:"distance"`
	PerBand   band.Levels `json:"per_band"`
	Composite float64     `json:"composite"`
	Occluded  bool        `json:"occluded"`
}

// PointSPL is the combined level at one listening position.
type PointSPL struct {
	Position geo.Vector  `json:"position"`
	PerBand  band.Levels `json:"per_band"`

	// SPL is the composite after cross-source combination, weighting, and
	// the phase correction.
	SPL     float64 `json:"spl"`
	Quality Quality `json:"quality"`

	// PhaseDB is the applied phase-interference correction, if any.
	PhaseDB float64 `json:"phase_db,omitempty"`

	BySource []SourceContribution `json:"by_source,omitempty"`
}

// sourceBands computes one source's per-band contribution at a point,
// including occlusion and early reflections when enabled.
func sourceBands(s model.SourceSpec, p geo.Vector, scene Scene, opts Options) SourceContribution {
	dist := geo.Distance(s.Position, p)

	var worst occlusion.Result
	if opts.IncludeOcclusion {
		worst = occlusion.WorstOf(s.Position, p, scene.Obstacles, band.Reference)
	}

	var reflections []reflection.Reflection
	if opts.IncludeReflections {
		reflections = reflection.All(s.Position, p, scene.Surfaces, opts.EarlyWindowMS)
	}

	levels := make(band.Levels, len(band.Centers))
	for _, f := range band.Centers {
		offAxis := propagation.OffAxisAt(s, p, f)
		coupling := directivity.LineArrayCoupling(s.ArrayCount, s.BoxHeight, f)
		spl := propagation.BandSPL(dist, s.BandLevel(f)+coupling, f, offAxis)

		if worst.Occluded {
			spl = math.Max(0, spl-occlusion.ForBand(worst.AttenuationDB, f))
		}

		if len(reflections) > 0 {
			reflected := make([]float64, 0, len(reflections))
			for _, r := range reflections {
				rs := propagation.BandSPL(r.ReflectedPath, s.BandLevel(f)+coupling, f, offAxis) - r.LossDB[f]
				if rs > 0 {
					reflected = append(reflected, rs)
				}
			}
			if len(reflected) > 0 {
				spl = reflection.CombineDirectAndReflected(spl, reflected)
			}
		}

		if spl > 0 {
			levels[f] = spl
		}
	}

	c := SourceContribution{
		SourceID: s.ID,
		Distance: dist,
		PerBand:  levels,
		Occluded: worst.Occluded,
	}
	if opts.weighting() == WeightingLinear {
		c.Composite = band.CompositeLinear(levels)
	} else {
		c.Composite = band.CompositeAWeighted(levels)
	}
	return c
}

// phaseAdjustment implements the documented interference heuristic: source
// arrival phases at the reference band are compared pairwise; a mean
// difference under 45 degrees counts as constructive (+0.5 dB), over 135
// degrees as destructive (-3 dB). This is a coarse approximation kept for
// compatibility, not a wave summation.
func phaseAdjustment(distances []float64) float64 {
	if len(distances) < 2 {
		return 0
	}
	lambda := geo.SpeedOfSound / band.Reference
	phases := make([]float64, len(distances))
	for i, d := range distances {
		phases[i] = math.Mod(d, lambda) / lambda * 360
	}

	var sum float64
	var pairs int
	for i := 0; i < len(phases); i++ {
		for j := i + 1; j < len(phases); j++ {
			diff := math.Abs(phases[i] - phases[j])
			if diff > 180 {
				diff = 360 - diff
			}
			sum += diff
			pairs++
		}
	}
	mean := sum / float64(pairs)

	switch {
	case mean < 45:
		return 0.5
	case mean > 135:
		return -3
	default:
		return 0
	}
}

// SPLAt combines every source in the scene at one listening position.
// Combination happens per band across sources first; weighting and the
// phase correction are applied to the merged result.
func SPLAt(p geo.Vector, scene Scene, opts Options) PointSPL {
	contributions := make([]SourceContribution, 0, len(scene.Sources))
	maps := make([]band.Levels, 0, len(scene.Sources))
	distances := make([]float64, 0, len(scene.Sources))

	for _, s := range scene.Sources {
		c := sourceBands(s, p, scene, opts)
		contributions = append(contributions, c)
		maps = append(maps, c.PerBand)
		distances = append(distances, c.Distance)
	}

	merged := band.Merge(maps...)

	var composite float64
	if opts.weighting() == WeightingLinear {
		composite = band.CompositeLinear(merged)
	} else {
		composite = band.CompositeAWeighted(merged)
	}

	var phase float64
	if opts.PhaseHeuristic && composite > 0 {
		phase = phaseAdjustment(distances)
		composite = math.Max(0, composite+phase)
	}

	return PointSPL{
		Position: p,
		PerBand:  merged,
		SPL:      composite,
		Quality:  Classify(composite),
		PhaseDB:  phase,
		BySource: contributions,
	}
}
