package geo

import "github.com/fogleman/pt/pt"

// Box is an axis-aligned bounding box.
type Box struct {
	Min Vector `json:"min"`
	Max Vector `json:"max"`
}

// NewBox builds a box centered on position with the given edge dimensions.
func NewBox(position, dimensions Vector) Box {
	half := dimensions.Scale(0.5)
	return Box{
		Min: position.Sub(half),
		Max: position.Add(half),
	}
}

// Contains reports whether p lies inside or on the box.
func (b Box) Contains(p Vector) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Center returns the box center.
func (b Box) Center() Vector { return Midpoint(b.Min, b.Max) }

func toPt(v Vector) pt.Vector { return pt.Vector{X: v.X, Y: v.Y, Z: v.Z} }

// RayIntersection runs a slab test for the ray origin -> target against the
// box. It returns the entry distance along the ray on a hit. The caller
// decides whether the hit occludes; an obstacle only counts when the hit
// distance is smaller than the origin-target distance.
func (b Box) RayIntersection(origin, target Vector) (hit bool, distance float64) {
	dir := target.Sub(origin)
	length := dir.Length()
	if length == 0 {
		return false, 0
	}
	ray := pt.Ray{
		Origin:    toPt(origin),
		Direction: toPt(dir.Scale(1 / length)),
	}
	box := pt.Box{Min: toPt(b.Min), Max: toPt(b.Max)}
	tn, tf := box.Intersect(ray)
	if tn > tf || tf <= 0 {
		return false, 0
	}
	if tn < 0 {
		// Origin inside the box; the boundary is behind us.
		tn = 0
	}
	return true, tn
}
