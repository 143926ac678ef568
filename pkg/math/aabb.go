package math

// AABox is an axis-aligned bounding box described by two opposite corners.
// A well-formed box has Min <= Max on every axis, but degenerate boxes
// (including the zero box used for spawns without stored bounds) are valid
// values everywhere they appear.
type AABox struct {
	Min Vec3
	Max Vec3
}

// NewAABox builds a box from two corners, swapping per axis so that
// Min <= Max holds. Use this when the corners may come from negatively
// scaled geometry.
func NewAABox(a, b Vec3) AABox {
	box := AABox{Min: a, Max: b}
	if box.Min.X > box.Max.X {
		box.Min.X, box.Max.X = box.Max.X, box.Min.X
	}
	if box.Min.Y > box.Max.Y {
		box.Min.Y, box.Max.Y = box.Max.Y, box.Min.Y
	}
	if box.Min.Z > box.Max.Z {
		box.Min.Z, box.Max.Z = box.Max.Z, box.Min.Z
	}
	return box
}

// IsZero reports whether the box is the degenerate point box at the origin,
// the value synthesized for spawns serialized without bounds.
func (b AABox) IsZero() bool {
	return b.Min == (Vec3{}) && b.Max == (Vec3{})
}

// Center returns the midpoint of the box.
func (b AABox) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}
