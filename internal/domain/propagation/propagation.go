// Package propagation computes single-source sound pressure levels over
// distance: inverse-square spreading plus ISO 9613-style air absorption per
// octave band.
package propagation

import (
	"math"

	"github.com/venuelab/stagecraft/internal/domain/band"
	"github.com/venuelab/stagecraft/internal/domain/directivity"
	"github.com/venuelab/stagecraft/internal/domain/geo"
	"github.com/venuelab/stagecraft/internal/domain/model"
)

// minDistance clamps degenerate listener positions; a listener inside the
// grille is treated as 1 cm away rather than dividing by zero.
const minDistance = 0.01

// airAbsorption is the atmospheric attenuation coefficient per octave band
// in dB/m (20 C, 50% relative humidity, planning-grade values).
var airAbsorption = map[float64]float64{
	125:  0.0004,
	250:  0.0010,
	500:  0.0019,
	1000: 0.0037,
	2000: 0.0097,
	4000: 0.0328,
	8000: 0.1170,
}

// AirAbsorption returns the attenuation coefficient in dB/m for a band.
func AirAbsorption(frequency float64) float64 {
	return airAbsorption[frequency]
}

// BandSPL returns the SPL in dB at the given distance for one octave band:
// source level minus inverse-square spreading, air absorption, and the
// supplied off-axis attenuation. The result is floored at 0 dB.
func BandSPL(distance, sourceLevel, frequency, offAxisDB float64) float64 {
	if distance < minDistance {
		distance = minDistance
	}
	spl := sourceLevel - 20*math.Log10(distance) - AirAbsorption(frequency)*distance - offAxisDB
	return math.Max(0, spl)
}

// OffAxisAt returns the off-axis attenuation in dB from source toward the
// listener at the given band, combining the horizontal and vertical
// coverage of the source. Dispersion is interpolated per band from the
// source's directivity table when one exists.
func OffAxisAt(source model.SourceSpec, listener geo.Vector, frequency float64) float64 {
	to := listener.Sub(source.Position)
	if to.Length() == 0 {
		return 0
	}
	aim := source.AimDirection()

	// Horizontal plane: flatten Y.
	toH := geo.V(to.X, 0, to.Z)
	aimH := geo.V(aim.X, 0, aim.Z)
	hAngle := geo.AngleBetween(aimH, toH)

	// Vertical plane: elevation relative to the aim's elevation.
	vAngle := math.Abs(elevationDeg(to) - elevationDeg(aim))

	hDisp := directivity.Interpolated(frequency, source.DirectivityByFreq, source.Dispersion.Horizontal)
	vDisp := hDisp
	if source.Dispersion.Horizontal > 0 {
		// Scale the vertical coverage by the same per-band factor the
		// table applied to the horizontal nominal.
		vDisp = source.Dispersion.Vertical * hDisp / source.Dispersion.Horizontal
	} else if source.Dispersion.Vertical > 0 {
		vDisp = directivity.Interpolated(frequency, source.DirectivityByFreq, source.Dispersion.Vertical)
	}

	att := directivity.OffAxisAttenuation(hAngle, hDisp) + directivity.OffAxisAttenuation(vAngle, vDisp)
	return math.Min(att, 30)
}

func elevationDeg(v geo.Vector) float64 {
	h := math.Sqrt(v.X*v.X + v.Z*v.Z)
	return math.Atan2(v.Y, h) * 180 / math.Pi
}

// RayResult is the outcome of casting a single acoustic ray from a source
// to a listener with no obstacles or reflections considered.
type RayResult struct {
	Distance   float64     `json:"distance"`
	OffAxisDB  float64     `json:"off_axis_db"`
	CouplingDB float64     `json:"coupling_db"`
	PerBand    band.Levels `json:"per_band"`

	// Intensity is the SPL at the 1 kHz reference band.
	Intensity float64 `json:"intensity"`
}

// CastRay computes the direct-field SPL of one source at one listener for
// every octave band, including off-axis attenuation and line-array coupling.
func CastRay(source model.SourceSpec, listener geo.Vector) RayResult {
	dist := geo.Distance(source.Position, listener)

	levels := make(band.Levels, len(band.Centers))
	var refOffAxis, refCoupling float64
	for _, f := range band.Centers {
		offAxis := OffAxisAt(source, listener, f)
		coupling := directivity.LineArrayCoupling(source.ArrayCount, source.BoxHeight, f)
		spl := BandSPL(dist, source.BandLevel(f)+coupling, f, offAxis)
		if spl > 0 {
			levels[f] = spl
		}
		if f == band.Reference {
			refOffAxis = offAxis
			refCoupling = coupling
		}
	}

	return RayResult{
		Distance:   dist,
		OffAxisDB:  refOffAxis,
		CouplingDB: refCoupling,
		PerBand:    levels,
		Intensity:  levels[band.Reference],
	}
}
