// Package reflection computes first-order specular reflections with the
// mirror-image method, material absorption losses, and a Sabine
// reverberation estimate.
package reflection

import (
	"math"
	"sort"

	"github.com/venuelab/stagecraft/internal/domain/band"
	"github.com/venuelab/stagecraft/internal/domain/geo"
	"github.com/venuelab/stagecraft/internal/domain/model"
)

const (
	// DefaultEarlyWindowMS is the early-reflection cutoff when the caller
	// does not supply one.
	DefaultEarlyWindowMS = 50.0

	// maxReverbSeconds caps the Sabine estimate; beyond this the venue is
	// effectively untreated and the number carries no planning value.
	maxReverbSeconds = 5.0

	// maxBandLossDB stands in for -10*log10(1-a) when a surface absorbs
	// fully; the reflection is effectively gone.
	maxBandLossDB = 60.0
)

// Reflection describes one first-order reflection path.
type Reflection struct {
	SurfaceID string     `json:"surface_id"`
	Point     geo.Vector `json:"point"`

	DirectPath    float64 `json:"direct_path"`
	ReflectedPath float64 `json:"reflected_path"`
	DelayMS       float64 `json:"delay_ms"`

	// LossDB is the material absorption loss per octave band.
	LossDB band.Levels `json:"loss_db"`
}

// BandLoss converts an absorption coefficient to a reflection loss in dB.
// Coefficients at or above 1 absorb the reflection entirely.
func BandLoss(alpha float64) float64 {
	if alpha <= 0 {
		return 0
	}
	if alpha >= 1 {
		return maxBandLossDB
	}
	return -10 * math.Log10(1-alpha)
}

// Find computes the specular reflection of source off surface as heard at
// listener. ok is false when no geometric reflection exists (listener and
// source on opposite sides, or the mirror ray parallel to the plane);
// callers treat that as zero contribution, not an error.
func Find(source, listener geo.Vector, surface model.ReflectionSurface) (Reflection, bool) {
	ds := surface.Plane.SignedDistance(source)
	dl := surface.Plane.SignedDistance(listener)
	// A specular bounce needs both endpoints on the same side of the wall.
	if ds == 0 || dl == 0 || (ds > 0) != (dl > 0) {
		return Reflection{}, false
	}

	mirror := surface.Plane.Reflect(source)
	point, ok := surface.Plane.IntersectSegment(mirror, listener)
	if !ok {
		return Reflection{}, false
	}

	direct := geo.Distance(source, listener)
	total := geo.Distance(source, point) + geo.Distance(point, listener)
	if total < direct {
		// Numerical noise; a reflected path can never be shorter.
		total = direct
	}

	loss := make(band.Levels, len(band.Centers))
	for _, f := range band.Centers {
		loss[f] = BandLoss(surface.AbsorptionAt(f))
	}

	return Reflection{
		SurfaceID:     surface.ID,
		Point:         point,
		DirectPath:    direct,
		ReflectedPath: total,
		DelayMS:       (total - direct) / geo.SpeedOfSound * 1000,
		LossDB:        loss,
	}, true
}

// All computes every first-order reflection whose delay falls inside the
// early window (milliseconds), sorted ascending by delay. A non-positive
// window uses DefaultEarlyWindowMS.
func All(source, listener geo.Vector, surfaces []model.ReflectionSurface, windowMS float64) []Reflection {
	if windowMS <= 0 {
		windowMS = DefaultEarlyWindowMS
	}
	out := make([]Reflection, 0, len(surfaces))
	for _, s := range surfaces {
		r, ok := Find(source, listener, s)
		if !ok || r.DelayMS > windowMS {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DelayMS < out[j].DelayMS })
	return out
}

// CombineDirectAndReflected logarithmically sums a direct SPL with the
// attenuated SPL of each reflection.
func CombineDirectAndReflected(directSPL float64, reflectedSPLs []float64) float64 {
	levels := append([]float64{directSPL}, reflectedSPLs...)
	return band.Sum(levels...)
}

// SurfaceArea pairs a boundary area with its mean absorption coefficient
// for reverberation estimates.
type SurfaceArea struct {
	Area  float64 `json:"area"`
	Alpha float64 `json:"alpha"`
}

// EstimateReverbTime applies the Sabine equation RT60 = 0.161*V/A to the
// given volume (m^3) and surfaces, capped at 5 s. A room with no absorption
// reports the cap.
func EstimateReverbTime(volume float64, surfaces []SurfaceArea) float64 {
	if volume <= 0 {
		return 0
	}
	absorption := 0.0
	for _, s := range surfaces {
		if s.Area <= 0 {
			continue
		}
		alpha := math.Max(0, math.Min(1, s.Alpha))
		absorption += s.Area * alpha
	}
	if absorption <= 0 {
		return maxReverbSeconds
	}
	rt := 0.161 * volume / absorption
	return math.Min(rt, maxReverbSeconds)
}
