// Package geom provides axis aligned bounding boxes and bounding spheres.
//
// Boxes exist in three coordinate widths: AABB3ub (8-bit, cluster local),
// AABB3i (32-bit, world blocks) and AABB3f (float, world space). All share
// the generic AABB implementation.
package geom

import (
	gomath "math"

	"golang.org/x/exp/constraints"

	"github.com/Faultbox/clusterindex/pkg/math"
)

// Scalar is the set of coordinate types a box can be stored in.
type Scalar interface {
	~uint8 | ~int32 | constraints.Float
}

// AABB is an axis aligned bounding box. Min <= Max on every axis.
type AABB[T Scalar] struct {
	MinX, MaxX T
	MinY, MaxY T
	MinZ, MaxZ T
}

type (
	AABB3ub = AABB[uint8]
	AABB3i  = AABB[int32]
	AABB3f  = AABB[float32]
)

// BSphere is a bounding sphere. D is the diameter, not the radius.
type BSphere struct {
	X, Y, Z float32
	D       float32
}

// Radius returns half the diameter.
func (s BSphere) Radius() float32 {
	return s.D / 2
}

// Center returns the sphere center.
func (s BSphere) Center() math.Vec3 {
	return math.Vec3{X: s.X, Y: s.Y, Z: s.Z}
}

// Box builds an AABB from its two corners.
func Box[T Scalar](minX, minY, minZ, maxX, maxY, maxZ T) AABB[T] {
	return AABB[T]{
		MinX: minX, MaxX: maxX,
		MinY: minY, MaxY: maxY,
		MinZ: minZ, MaxZ: maxZ,
	}
}

// Valid reports whether min <= max holds on every axis.
func (b AABB[T]) Valid() bool {
	return b.MinX <= b.MaxX && b.MinY <= b.MaxY && b.MinZ <= b.MaxZ
}

// Contains reports whether the point lies inside the box. Bounds are inclusive.
func (b AABB[T]) Contains(x, y, z float32) bool {
	return x >= float32(b.MinX) && x <= float32(b.MaxX) &&
		y >= float32(b.MinY) && y <= float32(b.MaxY) &&
		z >= float32(b.MinZ) && z <= float32(b.MaxZ)
}

// Vertex returns corner i of the box, i in [0,8).
// Bit 2 selects max X, bit 1 max Y, bit 0 max Z:
//
//	0 (min,min,min)  1 (min,min,max)  2 (min,max,min)  3 (min,max,max)
//	4 (max,min,min)  5 (max,min,max)  6 (max,max,min)  7 (max,max,max)
func (b AABB[T]) Vertex(i int) math.Vec3 {
	v := math.Vec3{X: float32(b.MinX), Y: float32(b.MinY), Z: float32(b.MinZ)}
	if i&4 != 0 {
		v.X = float32(b.MaxX)
	}
	if i&2 != 0 {
		v.Y = float32(b.MaxY)
	}
	if i&1 != 0 {
		v.Z = float32(b.MaxZ)
	}
	return v
}

// Vertices returns all eight corners in Vertex order.
func (b AABB[T]) Vertices() [8]math.Vec3 {
	var out [8]math.Vec3
	for i := range out {
		out[i] = b.Vertex(i)
	}
	return out
}

// Size returns the box extent on each axis.
func (b AABB[T]) Size() math.Vec3 {
	return math.Vec3{
		X: float32(b.MaxX) - float32(b.MinX),
		Y: float32(b.MaxY) - float32(b.MinY),
		Z: float32(b.MaxZ) - float32(b.MinZ),
	}
}

// Sphere returns a sphere centered on the box whose diameter is the box
// diagonal. It always encloses the box but is not the tightest fit.
func (b AABB[T]) Sphere() BSphere {
	s := b.Size()
	return BSphere{
		X: s.X/2 + float32(b.MinX),
		Y: s.Y/2 + float32(b.MinY),
		Z: s.Z/2 + float32(b.MinZ),
		D: float32(gomath.Sqrt(float64(s.X*s.X + s.Y*s.Y + s.Z*s.Z))),
	}
}

// Float converts the box to float coordinates.
func (b AABB[T]) Float() AABB3f {
	return AABB3f{
		MinX: float32(b.MinX), MaxX: float32(b.MaxX),
		MinY: float32(b.MinY), MaxY: float32(b.MaxY),
		MinZ: float32(b.MinZ), MaxZ: float32(b.MaxZ),
	}
}

// Offset returns the box translated by d.
func (b AABB[T]) Offset(d math.Vec3) AABB3f {
	f := b.Float()
	f.MinX += d.X
	f.MaxX += d.X
	f.MinY += d.Y
	f.MaxY += d.Y
	f.MinZ += d.Z
	f.MaxZ += d.Z
	return f
}
