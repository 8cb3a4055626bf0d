// Package directivity models how a speaker's angular coverage varies with
// frequency: dispersion lookup with log-frequency interpolation, off-axis
// attenuation, and line-array coupling gain.
package directivity

import (
	"math"
	"sort"
)

const (
	// maxDispersion caps the physics fallback; a box cannot radiate wider
	// than a half-space in this model.
	maxDispersion = 180.0

	// maxOffAxisDB caps off-axis attenuation; beyond this the floor and
	// diffuse field dominate anyway.
	maxOffAxisDB = 30.0

	speedOfSound = 343.0
)

// Table maps measurement frequency in Hz to dispersion (half-power coverage
// angle) in degrees. Tables exist for some catalog models and not others;
// an empty table means "use the physics fallback".
type Table map[float64]float64

// HasData reports whether the table carries any measurements.
func (t Table) HasData() bool { return len(t) > 0 }

// sortedKeys returns the measurement frequencies ascending.
func (t Table) sortedKeys() []float64 {
	keys := make([]float64, 0, len(t))
	for f := range t {
		keys = append(keys, f)
	}
	sort.Float64s(keys)
	return keys
}

// Interpolated returns the dispersion angle at freq.
//
// With a table: exact key match wins; between keys the value is
// interpolated linearly in log-frequency; outside the table range the
// nearest edge value is used. Without a table the nominal angle is widened
// at low frequency by sqrt(1000/freq), capped at 180 degrees.
func Interpolated(freq float64, table Table, nominal float64) float64 {
	if freq <= 0 {
		return nominal
	}
	if !table.HasData() {
		widened := nominal * math.Sqrt(1000/freq)
		return math.Min(widened, maxDispersion)
	}

	if v, ok := table[freq]; ok {
		return v
	}

	keys := table.sortedKeys()
	if freq <= keys[0] {
		return table[keys[0]]
	}
	if freq >= keys[len(keys)-1] {
		return table[keys[len(keys)-1]]
	}

	i := sort.SearchFloat64s(keys, freq)
	lo, hi := keys[i-1], keys[i]
	frac := (math.Log(freq) - math.Log(lo)) / (math.Log(hi) - math.Log(lo))
	return table[lo] + (table[hi]-table[lo])*frac
}

// OffAxisAttenuation returns the level drop in dB at the given off-axis
// angle for a speaker with the given nominal dispersion (full coverage
// angle, -6 dB at the edge). Growth is quadratic and capped at 30 dB.
func OffAxisAttenuation(angleDeg, nominalDispersion float64) float64 {
	if angleDeg <= 0 || nominalDispersion <= 0 {
		return 0
	}
	half := nominalDispersion / 2
	att := 6 * (angleDeg / half) * (angleDeg / half)
	return math.Min(att, maxOffAxisDB)
}

// LineArrayCoupling returns the coherent coupling gain in dB for n boxes of
// the given height at freq. Below the array transition frequency
// 343/(n*boxHeight) the boxes couple fully for 10*log10(n) dB of gain;
// above it the gain decays 3 dB per octave, reaching 0 at four times the
// transition frequency. Over the final octave the remaining gain ramps to
// zero, so large arrays whose 3 dB/octave line is still positive at the
// cutoff do not jump discontinuously.
func LineArrayCoupling(n int, boxHeight, freq float64) float64 {
	if n <= 1 || boxHeight <= 0 || freq <= 0 {
		return 0
	}
	transition := speedOfSound / (float64(n) * boxHeight)
	full := 10 * math.Log10(float64(n))
	if freq <= transition {
		return full
	}
	octavesAbove := math.Log2(freq / transition)
	gain := full - 3*octavesAbove
	if octavesAbove > 1 {
		gain = (full - 3) * (2 - octavesAbove)
	}
	return math.Max(0, gain)
}
