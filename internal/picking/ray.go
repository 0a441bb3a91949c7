// Package picking casts rays from the camera into cluster indexes.
package picking

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/clusterindex/internal/bvh"
	"github.com/Faultbox/clusterindex/pkg/geom"
	"github.com/Faultbox/clusterindex/pkg/math"
)

// Ray is a half line starting at Origin.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // unit length
}

// NewRay builds a ray from origin through target.
func NewRay(origin, target math.Vec3) Ray {
	return Ray{Origin: origin, Direction: target.Sub(origin).Normalize()}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// ScreenToRay converts pixel coordinates to a world space ray through the
// view volume of viewProj.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, viewProj math.Mat4) Ray {
	inv := math.Mat4(mgl32.Mat4(viewProj).Inv())

	// Convert screen coords to normalized device coords (-1 to 1)
	ndcX := 2*screenX/viewportW - 1
	ndcY := 1 - 2*screenY/viewportH // Flip Y

	near := unproject(inv, math.Vec4{ndcX, ndcY, -1, 1})
	far := unproject(inv, math.Vec4{ndcX, ndcY, 1, 1})
	return NewRay(near, far)
}

func unproject(inv math.Mat4, ndc math.Vec4) math.Vec3 {
	p := inv.MulVec4(ndc)
	if p[3] != 0 {
		p[0] /= p[3]
		p[1] /= p[3]
		p[2] /= p[3]
	}
	return math.Vec3{X: p[0], Y: p[1], Z: p[2]}
}

// IntersectBox tests the ray against a box with the slab method. It returns
// the entry distance, or the exit distance if the ray starts inside.
func (r Ray) IntersectBox(box geom.AABB3f) (t float32, hit bool) {
	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)

	slabs := [3][3]float32{
		{r.Origin.X, r.Direction.X, 0},
		{r.Origin.Y, r.Direction.Y, 0},
		{r.Origin.Z, r.Direction.Z, 0},
	}
	bounds := [3][2]float32{
		{box.MinX, box.MaxX},
		{box.MinY, box.MaxY},
		{box.MinZ, box.MaxZ},
	}

	for i, s := range slabs {
		o, d := s[0], s[1]
		lo, hi := bounds[i][0], bounds[i][1]

		if d == 0 {
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}

		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// enter is IntersectBox with a distance of 0 when the ray starts inside.
func (r Ray) enter(box geom.AABB3f) (float32, bool) {
	t, hit := r.IntersectBox(box)
	if hit && box.Contains(r.Origin.X, r.Origin.Y, r.Origin.Z) {
		t = 0
	}
	return t, hit
}

// Pick returns the leaf of tree whose box the ray enters first. origin is
// the world position of the indexed cluster. Leaf boxes may contain air, so
// the hit is a candidate for a finer voxel test rather than a voxel.
func Pick[T any](tree *bvh.Tree[T], r Ray, origin math.Vec3) (bvh.NodeID, float32, bool) {
	best := bvh.NoNode
	bestT := float32(gomath.MaxFloat32)

	tree.Walk(func(id bvh.NodeID, n *bvh.Node[T], _ int) bool {
		t, hit := r.enter(n.Box.Offset(origin))
		if !hit || t > bestT {
			return false
		}
		if n.IsLeaf() && t < bestT {
			best, bestT = id, t
		}
		return true
	})

	if best == bvh.NoNode {
		return bvh.NoNode, 0, false
	}
	return best, bestT, true
}
