// Package model contains the value objects passed between layers: sources,
// obstacles, reflection surfaces, rigging points, and suspended loads.
//
// All entities are plain values with no back-references. The engine never
// mutates them; scene data is owned by the caller and rebuilt per
// calculation.
package model

import (
	"github.com/venuelab/stagecraft/internal/domain/band"
	"github.com/venuelab/stagecraft/internal/domain/directivity"
	"github.com/venuelab/stagecraft/internal/domain/geo"
)

// Dispersion is a speaker's nominal half-power coverage, degrees.
type Dispersion struct {
	Horizontal float64 `json:"horizontal"`
	Vertical   float64 `json:"vertical"`
}

// SourceSpec describes one speaker (or one hang of coupled speakers) for a
// calculation.
type SourceSpec struct {
	ID       string     `json:"id"`
	Position geo.Vector `json:"position"`

	// Aim is the on-axis direction. A zero vector means "toward -Z".
	Aim geo.Vector `json:"aim"`

	// MaxSPL is the rated output in dB at 1 m. BandSPL, when present,
	// overrides it per octave band.
	MaxSPL  float64     `json:"max_spl"`
	BandSPL band.Levels `json:"band_spl,omitempty"`

	Dispersion Dispersion `json:"dispersion"`

	// DirectivityByFreq optionally refines horizontal dispersion per
	// measurement frequency; absent tables fall back to the physics model.
	DirectivityByFreq directivity.Table `json:"directivity_by_freq,omitempty"`

	// ArrayCount and BoxHeight describe line-array hangs; ArrayCount <= 1
	// means a single point source.
	ArrayCount int     `json:"array_count,omitempty"`
	BoxHeight  float64 `json:"box_height,omitempty"`

	RatedPower float64 `json:"rated_power,omitempty"`
}

// AimDirection returns the source's unit aim, defaulting to -Z.
func (s SourceSpec) AimDirection() geo.Vector {
	if s.Aim.Length() == 0 {
		return geo.V(0, 0, -1)
	}
	return s.Aim.Normalize()
}

// BandLevel returns the 1 m SPL for the given band, falling back to the
// flat MaxSPL rating when no band table is present.
func (s SourceSpec) BandLevel(frequency float64) float64 {
	if l, ok := s.BandSPL[frequency]; ok {
		return l
	}
	return s.MaxSPL
}

// ObstacleCategory classifies scene objects that block sound.
type ObstacleCategory string

const (
	ObstacleStage   ObstacleCategory = "stage"
	ObstacleTruss   ObstacleCategory = "truss"
	ObstacleWall    ObstacleCategory = "wall"
	ObstacleScenery ObstacleCategory = "scenery"
)

// Obstacle is an axis-aligned blocker in the venue.
type Obstacle struct {
	ID         string           `json:"id"`
	Category   ObstacleCategory `json:"category"`
	Position   geo.Vector       `json:"position"`
	Dimensions geo.Vector       `json:"dimensions"`
}

// Bounds returns the obstacle's bounding box, always centered on Position.
func (o Obstacle) Bounds() geo.Box {
	return geo.NewBox(o.Position, o.Dimensions)
}

// ReflectionSurface is a room boundary that produces specular reflections.
type ReflectionSurface struct {
	ID       string    `json:"id"`
	Plane    geo.Plane `json:"plane"`
	Material string    `json:"material"`

	// Absorption maps octave band to absorption coefficient in [0,1].
	Absorption band.Levels `json:"absorption"`
}

// AbsorptionAt returns the clamped absorption coefficient for a band.
func (r ReflectionSurface) AbsorptionAt(frequency float64) float64 {
	a := r.Absorption[frequency]
	switch {
	case a < 0:
		return 0
	case a > 1:
		return 1
	default:
		return a
	}
}

// PointKind classifies rigging points.
type PointKind string

const (
	PointMotor PointKind = "motor"
	PointTruss PointKind = "truss"
	PointFixed PointKind = "fixed"
)

// RiggingPoint is an overhead attachment point.
type RiggingPoint struct {
	ID       string     `json:"id"`
	Position geo.Vector `json:"position"`
	Kind     PointKind  `json:"kind"`

	// Capacity is the working load limit in kg; 0 means unknown.
	Capacity float64 `json:"capacity,omitempty"`
}

// SuspendedLoad is equipment hung from one or more rigging points.
type SuspendedLoad struct {
	ID       string     `json:"id"`
	Weight   float64    `json:"weight"`
	Position geo.Vector `json:"position"`

	// PointIDs lists the attached rigging points. An empty list is a
	// modeling error reported as a warning, not a failure.
	PointIDs []string `json:"point_ids"`
}
