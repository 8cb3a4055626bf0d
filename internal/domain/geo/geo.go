// Package geo provides the 3D geometry kernel shared by the acoustic and
// rigging models: vectors, planes, and ray tests against axis-aligned boxes.
//
// Convention: Y is up. Coverage grids sample the XZ plane at a fixed height.
package geo

import "math"

// SpeedOfSound is the propagation speed used for all acoustic timing, m/s.
const SpeedOfSound = 343.0

const radToDeg = 180.0 / math.Pi

// Vector is a point or direction in meters.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// V is shorthand for constructing a Vector.
func V(x, y, z float64) Vector { return Vector{X: x, Y: y, Z: z} }

// Add returns a + b.
func (a Vector) Add(b Vector) Vector { return Vector{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }

// Sub returns a - b.
func (a Vector) Sub(b Vector) Vector { return Vector{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

// Scale returns a scaled by s.
func (a Vector) Scale(s float64) Vector { return Vector{a.X * s, a.Y * s, a.Z * s} }

// Dot returns the dot product of a and b.
func (a Vector) Dot(b Vector) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

// Length returns the Euclidean norm.
func (a Vector) Length() float64 { return math.Sqrt(a.Dot(a)) }

// Normalize returns a unit-length copy of a. The zero vector stays zero.
func (a Vector) Normalize() Vector {
	l := a.Length()
	if l == 0 {
		return a
	}
	return a.Scale(1 / l)
}

// Distance returns |b - a|.
func Distance(a, b Vector) float64 { return b.Sub(a).Length() }

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Vector) Vector { return a.Add(b).Scale(0.5) }

// HorizontalDistance returns the distance between a and b projected onto
// the ground (XZ) plane.
func HorizontalDistance(a, b Vector) float64 {
	dx := b.X - a.X
	dz := b.Z - a.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// AngleFromVertical returns the angle in degrees between the vertical axis
// and the vector a -> b. A purely vertical vector yields 0.
func AngleFromVertical(a, b Vector) float64 {
	h := HorizontalDistance(a, b)
	dy := math.Abs(b.Y - a.Y)
	if h == 0 {
		return 0
	}
	return math.Atan2(h, dy) * radToDeg
}

// AngleBetween returns the angle in degrees between directions u and v.
// Returns 0 when either direction is degenerate.
func AngleBetween(u, v Vector) float64 {
	lu := u.Length()
	lv := v.Length()
	if lu == 0 || lv == 0 {
		return 0
	}
	cos := u.Dot(v) / (lu * lv)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * radToDeg
}

// FresnelRadius returns the first Fresnel-zone radius in meters at
// obstaclePoint for the path source -> listener at the given frequency.
// Returns 0 for degenerate geometry (coincident points, non-positive
// frequency).
func FresnelRadius(source, listener, obstaclePoint Vector, frequency float64) float64 {
	if frequency <= 0 {
		return 0
	}
	d1 := Distance(source, obstaclePoint)
	d2 := Distance(obstaclePoint, listener)
	if d1+d2 == 0 {
		return 0
	}
	lambda := SpeedOfSound / frequency
	return math.Sqrt(lambda * d1 * d2 / (d1 + d2))
}
