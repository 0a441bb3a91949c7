// Package frustum extracts view frustum planes from a camera transform and
// classifies points, spheres and boxes against them.
//
// Plane normals point into the view volume: a positive signed distance means
// the point is on the visible side.
package frustum

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/clusterindex/pkg/geom"
	"github.com/Faultbox/clusterindex/pkg/math"
)

// Plane is the equation a*x + b*y + c*z + d = 0.
type Plane [4]float32

// HalfSpace is the side of a plane a point lies on.
type HalfSpace uint8

const (
	Negative HalfSpace = iota
	Positive
	OnPlane
)

// Space is a frustum classification verdict.
type Space uint8

const (
	Outside Space = iota
	Inside
	Boundary

	// Intersect shares its value with Boundary: a point on a plane and a
	// volume straddling one are reported the same way.
	Intersect = Boundary
)

func (s Space) String() string {
	switch s {
	case Outside:
		return "outside"
	case Inside:
		return "inside"
	default:
		return "intersect"
	}
}

// Normalize divides the plane by the length of its normal.
// A zero normal yields NaN coefficients.
func (p Plane) Normalize() Plane {
	m := float32(gomath.Sqrt(float64(p[0]*p[0] + p[1]*p[1] + p[2]*p[2])))
	return Plane{p[0] / m, p[1] / m, p[2] / m, p[3] / m}
}

// Normal returns the (a, b, c) part of the plane.
func (p Plane) Normal() math.Vec3 {
	return math.Vec3{X: p[0], Y: p[1], Z: p[2]}
}

// Distance returns the signed distance of pt to a normalized plane.
func (p Plane) Distance(pt math.Vec3) float32 {
	return p[0]*pt.X + p[1]*pt.Y + p[2]*pt.Z + p[3]
}

// Classify reports which side of the plane pt lies on.
func (p Plane) Classify(pt math.Vec3) HalfSpace {
	d := p.Distance(pt)
	switch {
	case d > 0:
		return Positive
	case d < 0:
		return Negative
	default:
		return OnPlane
	}
}

// Frustum holds the six bounding planes of a view volume.
type Frustum struct {
	Left, Right Plane
	Top, Bottom Plane
	Far, Near   Plane
}

// Planes returns the planes in test order: left, right, top, bottom, far, near.
func (f Frustum) Planes() [6]Plane {
	return [6]Plane{f.Left, f.Right, f.Top, f.Bottom, f.Far, f.Near}
}

// Extract builds the frustum of a combined projection*view matrix.
func Extract(m math.Mat4) Frustum {
	r0, r1, r2, r3 := m.Row(0), m.Row(1), m.Row(2), m.Row(3)

	return Frustum{
		Left:   Plane(r3.Add(r0)).Normalize(),
		Right:  Plane(r3.Sub(r0)).Normalize(),
		Top:    Plane(r3.Sub(r1)).Normalize(),
		Bottom: Plane(r3.Add(r1)).Normalize(),
		Far:    Plane(r3.Sub(r2)).Normalize(),
		Near:   Plane(r3.Add(r2)).Normalize(),
	}
}

// ExtractMGL is Extract for matrices produced with go-gl/mathgl. Both
// libraries store matrices column-major.
func ExtractMGL(m mgl32.Mat4) Frustum {
	return Extract(math.Mat4(m))
}

// Translate returns the frustum of a camera moved by (dx, 0, dz) without
// rebuilding its matrices. Only the plane offsets change, so the result is
// exact only for axis aligned moves that keep the camera orientation.
func Translate(src Frustum, dx, dz float32) Frustum {
	dst := src
	dst.Left[3] += dx
	dst.Right[3] -= dx
	dst.Far[3] -= dz
	dst.Near[3] += dz

	dst.Left = dst.Left.Normalize()
	dst.Right = dst.Right.Normalize()
	dst.Top = dst.Top.Normalize()
	dst.Bottom = dst.Bottom.Normalize()
	dst.Far = dst.Far.Normalize()
	dst.Near = dst.Near.Normalize()
	return dst
}

// Point classifies a point. It is Outside as soon as one plane rejects it,
// Boundary if it lies on a plane while inside the others, Inside otherwise.
func (f Frustum) Point(pt math.Vec3) Space {
	result := Inside
	for _, p := range f.Planes() {
		switch p.Classify(pt) {
		case Negative:
			return Outside
		case OnPlane:
			result = Boundary
		}
	}
	return result
}

// Sphere classifies a bounding sphere. The first plane the sphere is fully
// behind yields Outside; the first plane it straddles yields Intersect.
func (f Frustum) Sphere(s geom.BSphere) Space {
	r := s.Radius()
	c := s.Center()
	for _, p := range f.Planes() {
		d := p.Distance(c)
		if d < -r {
			return Outside
		}
		if float32(gomath.Abs(float64(d))) < r {
			return Intersect
		}
	}
	return Inside
}

// Vertices classifies a box given by its eight corners.
//
// A box is Outside only when a single plane has all eight corners behind it.
// Boxes outside the frustum that no single plane separates (near the edges
// and corners of the volume) are reported as Intersect. Culling stays
// conservative: nothing visible is ever rejected.
func (f Frustum) Vertices(v [8]math.Vec3) Space {
	insiders := 0
	for _, p := range f.Planes() {
		behind := 0
		for _, pt := range v {
			if p.Classify(pt) == Negative {
				behind++
			}
		}
		if behind == len(v) {
			return Outside
		}
		if behind == 0 {
			insiders++
		}
	}

	if insiders == 6 {
		return Inside
	}
	return Intersect
}

// Box classifies a float box.
func (f Frustum) Box(b geom.AABB3f) Space {
	return f.Vertices(b.Vertices())
}

// BoxIn classifies a box of any coordinate width.
func BoxIn[T geom.Scalar](f Frustum, b geom.AABB[T]) Space {
	return f.Vertices(b.Vertices())
}
