// Package occlusion classifies how scene obstacles shadow the direct sound
// path, using Fresnel-zone blockage to decide between full shadow, partial
// shadow, and diffraction-dominated edge cases.
package occlusion

import (
	"math"

	"github.com/venuelab/stagecraft/internal/domain/geo"
	"github.com/venuelab/stagecraft/internal/domain/model"
)

// Shadow classification thresholds on the blocked Fresnel fraction.
const (
	fullShadowFraction    = 0.9
	partialShadowFraction = 0.3

	fullShadowDB = 20.0

	// hitEpsilon keeps touching geometry from counting as occlusion.
	hitEpsilon = 1e-6
)

// Shadow describes the severity of an occlusion.
type Shadow string

const (
	ShadowNone    Shadow = "none"
	ShadowEdge    Shadow = "edge"
	ShadowPartial Shadow = "partial"
	ShadowFull    Shadow = "full"
)

// Result is the outcome of a single occlusion test.
type Result struct {
	Occluded            bool    `json:"occluded"`
	Shadow              Shadow  `json:"shadow"`
	ObstacleID          string  `json:"obstacle_id,omitempty"`
	BlockedFraction     float64 `json:"blocked_fraction"`
	AttenuationDB       float64 `json:"attenuation_db"`
	DiffractionPossible bool    `json:"diffraction_possible"`
}

// bandMultiplier scales a base occlusion attenuation per octave band; low
// frequencies diffract around obstacles, high frequencies shadow sharply.
// 1 kHz is the reference.
var bandMultiplier = map[float64]float64{
	125:  0.5,
	250:  0.7,
	500:  0.85,
	1000: 1.0,
	2000: 1.2,
	4000: 1.4,
	8000: 1.6,
}

// BandMultiplier returns the per-band scaling for occlusion attenuation,
// 1.0 for unknown frequencies.
func BandMultiplier(frequency float64) float64 {
	if m, ok := bandMultiplier[frequency]; ok {
		return m
	}
	return 1.0
}

// ForBand scales a base (1 kHz) attenuation to the given band.
func ForBand(baseDB, frequency float64) float64 {
	return baseDB * BandMultiplier(frequency)
}

// effectiveRadius approximates the obstacle's blocking cross-section as the
// mean half-dimension of its bounding box.
func effectiveRadius(o model.Obstacle) float64 {
	d := o.Dimensions
	return (d.X + d.Y + d.Z) / 6
}

// Check tests whether obstacle occludes the source -> listener path at the
// given frequency. The obstacle only counts when the ray hit lies strictly
// between the endpoints.
func Check(source, listener geo.Vector, obstacle model.Obstacle, frequency float64) Result {
	clear := Result{Shadow: ShadowNone}

	pathLength := geo.Distance(source, listener)
	if pathLength == 0 {
		return clear
	}

	hit, hitDist := obstacle.Bounds().RayIntersection(source, listener)
	if !hit || hitDist <= hitEpsilon || hitDist >= pathLength-hitEpsilon {
		return clear
	}

	hitPoint := source.Add(listener.Sub(source).Scale(hitDist / pathLength))
	fresnel := geo.FresnelRadius(source, listener, hitPoint, frequency)
	if fresnel == 0 {
		return clear
	}

	fraction := math.Min(1, effectiveRadius(obstacle)/fresnel)

	r := Result{
		Occluded:        true,
		ObstacleID:      obstacle.ID,
		BlockedFraction: fraction,
	}
	switch {
	case fraction > fullShadowFraction:
		r.Shadow = ShadowFull
		r.AttenuationDB = fullShadowDB
	case fraction > partialShadowFraction:
		r.Shadow = ShadowPartial
		r.AttenuationDB = 6 + 14*fraction
		r.DiffractionPossible = true
	default:
		r.Shadow = ShadowEdge
		r.AttenuationDB = 6 * fraction
		r.DiffractionPossible = true
	}
	return r
}

// WorstOf tests every obstacle and returns the single worst-case result.
// Multiple partial occluders are not compounded; the deepest shadow wins.
func WorstOf(source, listener geo.Vector, obstacles []model.Obstacle, frequency float64) Result {
	worst := Result{Shadow: ShadowNone}
	for _, o := range obstacles {
		r := Check(source, listener, o, frequency)
		if r.AttenuationDB > worst.AttenuationDB {
			worst = r
		}
	}
	return worst
}
