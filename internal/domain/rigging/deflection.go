package rigging

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Span/deflection ratio thresholds.
const (
	ratioCritical   = 150.0
	ratioWarning    = 200.0
	ratioAcceptable = 300.0

	// recommendRatio is the target for truss size recommendations.
	recommendRatio = 250.0

	// visibleSagMeters flags deflection an audience can see.
	visibleSagMeters = 0.05
)

// ErrUnknownSection is returned for material/section pairs not in the table.
var ErrUnknownSection = errors.New("unknown truss section")

// Material is the truss chord material.
type Material string

const (
	MaterialAluminum Material = "aluminum"
	MaterialSteel    Material = "steel"
)

// Section is a standard truss cross-section.
type Section string

const (
	SectionF34 Section = "F34"
	SectionF44 Section = "F44"
	SectionF54 Section = "F54"
)

// youngsModulus in N/m^2.
var youngsModulus = map[Material]float64{
	MaterialAluminum: 6.9e10,
	MaterialSteel:    2.1e11,
}

// momentOfInertia in m^4, planning-grade values per section.
var momentOfInertia = map[Section]float64{
	SectionF34: 1.93e-5,
	SectionF44: 4.37e-5,
	SectionF54: 7.85e-5,
}

// sectionsAscending orders sections by stiffness for recommendations.
var sectionsAscending = []Section{SectionF34, SectionF44, SectionF54}

// DeflectionStatus classifies the span/deflection ratio.
type DeflectionStatus string

const (
	DeflectionCritical   DeflectionStatus = "critical"
	DeflectionWarning    DeflectionStatus = "warning"
	DeflectionAcceptable DeflectionStatus = "acceptable"
	DeflectionGood       DeflectionStatus = "good"
)

// DeflectionInput describes a simply supported truss span.
type DeflectionInput struct {
	Material Material `json:"material"`
	Section  Section  `json:"section"`

	// Span in meters.
	Span float64 `json:"span"`

	// UniformLoad in kg/m along the whole span (cabling, fixtures).
	UniformLoad float64 `json:"uniform_load"`

	// PointLoad in kg at mid-span.
	PointLoad float64 `json:"point_load"`
}

// DeflectionResult reports mid-span deflection and its safety evaluation.
type DeflectionResult struct {
	Deflection float64 `json:"deflection"`

	// Ratio is span divided by deflection; +Inf for a rigid result is
	// reported as 0 deflection with Ratio left at math.MaxFloat64.
	Ratio float64 `json:"ratio"`

	Status     DeflectionStatus `json:"status"`
	SafetyOk   bool             `json:"safety_ok"`
	VisibleSag bool             `json:"visible_sag"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// SolveDeflection evaluates a simply supported beam under a uniform load
// (5wL^4/384EI) plus a center point load (PL^3/48EI).
func SolveDeflection(in DeflectionInput) (DeflectionResult, error) {
	if in.Span <= 0 {
		return DeflectionResult{}, ErrInvalidSpan
	}
	e, okE := youngsModulus[in.Material]
	i, okI := momentOfInertia[in.Section]
	if !okE || !okI {
		return DeflectionResult{}, fmt.Errorf("%w: %s %s", ErrUnknownSection, in.Material, in.Section)
	}

	w := in.UniformLoad * gravity // N/m
	p := in.PointLoad * gravity   // N

	l := in.Span
	deflection := 5*w*math.Pow(l, 4)/(384*e*i) + p*math.Pow(l, 3)/(48*e*i)

	result := DeflectionResult{Deflection: deflection}

	if deflection <= 0 {
		result.Ratio = math.MaxFloat64
		result.Status = DeflectionGood
		result.SafetyOk = true
		return result, nil
	}

	result.Ratio = l / deflection
	result.VisibleSag = deflection > visibleSagMeters

	switch {
	case result.Ratio < ratioCritical:
		result.Status = DeflectionCritical
		result.Warnings = append(result.Warnings, warnf(WarnDeflection,
			"span/deflection ratio %.0f is below the critical %.0f limit", result.Ratio, ratioCritical))
	case result.Ratio < ratioWarning:
		result.Status = DeflectionWarning
		result.Warnings = append(result.Warnings, warnf(WarnDeflection,
			"span/deflection ratio %.0f is below the recommended %.0f", result.Ratio, ratioWarning))
	case result.Ratio < ratioAcceptable:
		result.Status = DeflectionAcceptable
	default:
		result.Status = DeflectionGood
	}

	result.SafetyOk = result.Ratio >= ratioWarning
	if result.VisibleSag {
		result.Warnings = append(result.Warnings, warnf(WarnVisibleSag,
			"mid-span deflection %.1f cm is visible to the audience", deflection*100))
	}

	return result, nil
}

// Recommendation is the outcome of a truss sizing query.
type Recommendation struct {
	Section Section          `json:"section"`
	Result  DeflectionResult `json:"result"`

	// Adequate is false when even the largest section misses the target
	// ratio; the section returned is then the largest with a caveat.
	Adequate bool      `json:"adequate"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// RecommendTrussSize walks the section table ascending and returns the
// first meeting a span/deflection ratio above 250, or the largest section
// with a caveat when none does.
func RecommendTrussSize(material Material, span, uniformLoad, pointLoad float64) (Recommendation, error) {
	sections := append([]Section(nil), sectionsAscending...)
	sort.SliceStable(sections, func(a, b int) bool {
		return momentOfInertia[sections[a]] < momentOfInertia[sections[b]]
	})

	var last Recommendation
	for _, s := range sections {
		res, err := SolveDeflection(DeflectionInput{
			Material:    material,
			Section:     s,
			Span:        span,
			UniformLoad: uniformLoad,
			PointLoad:   pointLoad,
		})
		if err != nil {
			return Recommendation{}, err
		}
		last = Recommendation{Section: s, Result: res}
		if res.Ratio > recommendRatio {
			last.Adequate = true
			return last, nil
		}
	}

	last.Warnings = append(last.Warnings, warnf(WarnUndersized,
		"no standard section reaches a span/deflection ratio of %.0f over %.1f m; %s is the stiffest available",
		recommendRatio, span, last.Section))
	return last, nil
}
