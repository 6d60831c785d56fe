package geometry

import "math"

// Vec3 is a point or size in model space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

func (v Vec3) finite() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Box is an axis-aligned bounding box in model space.
type Box struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

// Size returns the box dimensions.
func (b Box) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the box center.
func (b Box) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Valid reports whether the box is computable: finite corners and
// non-negative extent on every axis.
func (b Box) Valid() bool {
	if !b.Min.finite() || !b.Max.finite() {
		return false
	}
	return b.Max.X >= b.Min.X && b.Max.Y >= b.Min.Y && b.Max.Z >= b.Min.Z
}

// Mesh is the geometric summary of one renderable primitive as delivered by
// the conversion pipeline's scene index. The full vertex data stays with the
// render layer; classification and pricing only need the bounds.
type Mesh struct {
	Name        string `json:"name,omitempty"`
	Bounds      *Box   `json:"bounds,omitempty"`
	CatalogSlug string `json:"catalogSlug,omitempty"`
}

// Scene is the traversable mesh list for one loaded model.
type Scene struct {
	Meshes []Mesh `json:"meshes"`
}
