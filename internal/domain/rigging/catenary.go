package rigging

import (
	"errors"
	"math"

	"github.com/venuelab/stagecraft/internal/domain/geo"
)

// DefaultCurvePoints is the fixed discretization of the sag curve handed to
// the presentation layer.
const DefaultCurvePoints = 32

// Sentinel errors for catenary inputs.
var (
	ErrInvalidSpan   = errors.New("span must be positive")
	ErrInvalidWeight = errors.New("weights must not be negative")
)

// CatenaryInput describes a cable span with a distributed suspended weight.
type CatenaryInput struct {
	// Span is the horizontal distance between supports, meters.
	Span float64 `json:"span"`

	// SuspendedWeight is the total hung weight, kg.
	SuspendedWeight float64 `json:"suspended_weight"`

	// CableWeight is the cable's own weight per meter, kg/m.
	CableWeight float64 `json:"cable_weight"`

	// CurvePoints overrides the discretization; 0 uses the default.
	CurvePoints int `json:"curve_points,omitempty"`
}

// CatenaryResult carries the parabolic-sag solution.
type CatenaryResult struct {
	Sag               float64 `json:"sag"`
	CableLength       float64 `json:"cable_length"`
	HorizontalTension float64 `json:"horizontal_tension"`
	MaxTension        float64 `json:"max_tension"`
	MinTension        float64 `json:"min_tension"`

	// Curve is the sag profile from support to support, Y negative
	// downward from the support line.
	Curve []geo.Vector `json:"curve"`
}

// SolveCatenary computes sag, cable length, and tensions with the parabolic
// approximation: the distributed load is the cable weight plus the
// suspended weight spread over the span, and the horizontal tension is
// estimated as half the total weight force. Valid for the shallow sags
// typical of rigged spans; not a transcendental catenary solution.
func SolveCatenary(in CatenaryInput) (CatenaryResult, error) {
	if in.Span <= 0 {
		return CatenaryResult{}, ErrInvalidSpan
	}
	if in.SuspendedWeight < 0 || in.CableWeight < 0 {
		return CatenaryResult{}, ErrInvalidWeight
	}

	points := in.CurvePoints
	if points <= 0 {
		points = DefaultCurvePoints
	}

	// Distributed load in kg/m and total supported force in N.
	rho := in.CableWeight + in.SuspendedWeight/in.Span
	totalForce := (in.SuspendedWeight + in.CableWeight*in.Span) * gravity

	horizontal := totalForce / 2
	var sag float64
	if horizontal > 0 {
		sag = rho * gravity * in.Span * in.Span / (8 * horizontal)
	}

	// Parabolic arc length: L = span * (1 + 8/3 * (sag/span)^2).
	ratio := sag / in.Span
	length := in.Span * (1 + 8.0/3.0*ratio*ratio)

	vertical := totalForce / 2
	maxTension := math.Sqrt(horizontal*horizontal + vertical*vertical)

	curve := make([]geo.Vector, points)
	for i := 0; i < points; i++ {
		t := float64(i) / float64(points-1)
		x := t * in.Span
		y := -4 * sag * t * (1 - t)
		curve[i] = geo.V(x, y, 0)
	}

	return CatenaryResult{
		Sag:               sag,
		CableLength:       length,
		HorizontalTension: horizontal,
		MaxTension:        maxTension,
		MinTension:        horizontal,
		Curve:             curve,
	}, nil
}
