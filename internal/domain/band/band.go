// Package band defines the octave-band table, A-weighting, and the
// logarithmic (power) summation used to combine sound pressure levels.
package band

import "math"

// Centers are the octave-band center frequencies in Hz, ascending.
var Centers = []float64{125, 250, 500, 1000, 2000, 4000, 8000}

// Reference is the band all relative corrections are anchored to, Hz.
const Reference = 1000.0

// aWeighting holds the IEC 61672 corrections per octave band, dB.
var aWeighting = map[float64]float64{
	125:  -16.1,
	250:  -8.6,
	500:  -3.2,
	1000: 0,
	2000: 1.2,
	4000: 1.0,
	8000: -1.1,
}

// Levels maps octave-band center frequency to SPL in dB.
type Levels map[float64]float64

// AWeight returns the A-weighting correction for the given band, 0 for
// frequencies outside the table.
func AWeight(frequency float64) float64 {
	return aWeighting[frequency]
}

// IsCenter reports whether frequency is one of the standard band centers.
func IsCenter(frequency float64) bool {
	_, ok := aWeighting[frequency]
	return ok
}

// Sum combines SPL values by logarithmic (power) summation:
// 10*log10(sum(10^(L/10))). An empty input yields 0.
func Sum(levels ...float64) float64 {
	power := 0.0
	for _, l := range levels {
		power += math.Pow(10, l/10)
	}
	if power <= 0 {
		return 0
	}
	return 10 * math.Log10(power)
}

// CompositeLinear collapses a band map to a single unweighted value.
func CompositeLinear(levels Levels) float64 {
	return composite(levels, false)
}

// CompositeAWeighted collapses a band map to a single dB(A) value.
func CompositeAWeighted(levels Levels) float64 {
	return composite(levels, true)
}

func composite(levels Levels, weighted bool) float64 {
	power := 0.0
	for f, l := range levels {
		if weighted {
			l += AWeight(f)
		}
		if l <= 0 {
			continue
		}
		power += math.Pow(10, l/10)
	}
	if power <= 0 {
		return 0
	}
	return 10 * math.Log10(power)
}

// Merge sums several sources' band maps per band. Each band is combined
// independently; weighting is applied once afterwards by the composite
// functions, never per source.
func Merge(maps ...Levels) Levels {
	merged := make(Levels, len(Centers))
	for _, f := range Centers {
		power := 0.0
		for _, m := range maps {
			l, ok := m[f]
			if !ok || l <= 0 {
				continue
			}
			power += math.Pow(10, l/10)
		}
		if power > 0 {
			merged[f] = 10 * math.Log10(power)
		}
	}
	return merged
}
