// Package collision implements bounded-ray versus axis-aligned-box
// intersection using the slab method, for line-of-sight testing against
// decoded model spawns.
package collision

import (
	gomath "math"

	"github.com/duskhollow/vmapkit/pkg/math"
)

// FaceTolerance is the absolute distance within which a hit point is
// considered to lie on a box face when selecting the returned normal.
const FaceTolerance = 1e-4

// Ray is a bounded segment: points Origin + t*Direction for t in
// [0, MaxDistance]. Direction is normalized by RayBetween; a caller
// constructing a Ray directly may pass an unnormalized direction, in which
// case distances are in multiples of its length.
type Ray struct {
	Origin      math.Vec3
	Direction   math.Vec3
	MaxDistance float32
}

// RayHit is the result of a single ray/box test. On a miss, Hit is false
// and Distance is +Inf. Spawn attribution is layered on top of this by the
// query driver; the pure intersection test knows nothing about spawns.
type RayHit struct {
	Hit      bool
	Distance float32
	Point    math.Vec3
	Normal   math.Vec3
}

// RayBetween builds the ray from start toward end, with MaxDistance equal
// to their separation. Identical points yield a zero-length ray pointing
// +z, which cannot hit anything at positive distance.
func RayBetween(start, end math.Vec3) Ray {
	dir := end.Sub(start)
	dist := dir.Length()
	if dist == 0 {
		return Ray{Origin: start, Direction: math.Vec3{Z: 1}, MaxDistance: 0}
	}
	return Ray{Origin: start, Direction: dir.Normalize(), MaxDistance: dist}
}

func miss() RayHit {
	return RayHit{Distance: float32(gomath.Inf(1))}
}

// Intersect tests the ray against the box with the slab method and, on a
// hit, reports the entry distance, hit point, and outward face normal.
// Every input produces a well-defined result: a zero direction component
// degrades the axis to a containment check, and a degenerate point box
// either matches the ray's parametric point or misses.
func Intersect(r Ray, box math.AABox) RayHit {
	tmin := float32(0)
	tmax := r.MaxDistance

	// X slab
	if r.Direction.X == 0 {
		if r.Origin.X < box.Min.X || r.Origin.X > box.Max.X {
			return miss()
		}
	} else {
		t1 := (box.Min.X - r.Origin.X) / r.Direction.X
		t2 := (box.Max.X - r.Origin.X) / r.Direction.X
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return miss()
		}
	}

	// Y slab
	if r.Direction.Y == 0 {
		if r.Origin.Y < box.Min.Y || r.Origin.Y > box.Max.Y {
			return miss()
		}
	} else {
		t1 := (box.Min.Y - r.Origin.Y) / r.Direction.Y
		t2 := (box.Max.Y - r.Origin.Y) / r.Direction.Y
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return miss()
		}
	}

	// Z slab
	if r.Direction.Z == 0 {
		if r.Origin.Z < box.Min.Z || r.Origin.Z > box.Max.Z {
			return miss()
		}
	} else {
		t1 := (box.Min.Z - r.Origin.Z) / r.Direction.Z
		t2 := (box.Max.Z - r.Origin.Z) / r.Direction.Z
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return miss()
		}
	}

	point := r.Origin.Add(r.Direction.Scale(tmin))
	return RayHit{
		Hit:      true,
		Distance: tmin,
		Point:    point,
		Normal:   faceNormal(point, box),
	}
}

// faceNormal picks the outward normal of the face the hit point lies on.
// Candidates are checked in a fixed priority order so that the pick is
// deterministic at edges and corners where several faces are within
// tolerance; the final +z case is the fallback when none matched exactly.
func faceNormal(p math.Vec3, box math.AABox) math.Vec3 {
	faces := [...]struct {
		coord  float32
		plane  float32
		normal math.Vec3
	}{
		{p.X, box.Min.X, math.Vec3{X: -1}},
		{p.X, box.Max.X, math.Vec3{X: 1}},
		{p.Y, box.Min.Y, math.Vec3{Y: -1}},
		{p.Y, box.Max.Y, math.Vec3{Y: 1}},
		{p.Z, box.Min.Z, math.Vec3{Z: -1}},
	}
	for _, f := range faces {
		if abs(f.coord-f.plane) < FaceTolerance {
			return f.normal
		}
	}
	return math.Vec3{Z: 1}
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
