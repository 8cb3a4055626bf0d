package geo

import "math"

const parallelEpsilon = 1e-9

// Plane is an infinite plane in Hessian normal form: all points p with
// Normal·p = Offset. Normal should be unit length.
type Plane struct {
	Normal Vector  `json:"normal"`
	Offset float64 `json:"offset"`
}

// PlaneFromPointNormal builds the plane through point with the given normal.
func PlaneFromPointNormal(point, normal Vector) Plane {
	n := normal.Normalize()
	return Plane{Normal: n, Offset: n.Dot(point)}
}

// SignedDistance returns the signed distance from p to the plane.
func (pl Plane) SignedDistance(p Vector) float64 {
	return pl.Normal.Dot(p) - pl.Offset
}

// Reflect mirrors p across the plane.
func (pl Plane) Reflect(p Vector) Vector {
	return p.Sub(pl.Normal.Scale(2 * pl.SignedDistance(p)))
}

// IntersectSegment returns the point where the segment a -> b crosses the
// plane. ok is false when the segment is parallel to the plane or does not
// reach it; callers treat that as "no reflection found", not an error.
func (pl Plane) IntersectSegment(a, b Vector) (point Vector, ok bool) {
	da := pl.SignedDistance(a)
	db := pl.SignedDistance(b)
	denom := da - db
	if math.Abs(denom) < parallelEpsilon {
		return Vector{}, false
	}
	t := da / denom
	if t < 0 || t > 1 {
		return Vector{}, false
	}
	return a.Add(b.Sub(a).Scale(t)), true
}
