// Package culling walks a cluster index against a view frustum and
// collects the leaves a renderer has to draw.
package culling

import (
	"github.com/Faultbox/clusterindex/internal/bvh"
	"github.com/Faultbox/clusterindex/pkg/frustum"
	"github.com/Faultbox/clusterindex/pkg/geom"
	"github.com/Faultbox/clusterindex/pkg/math"
)

// Stats counts the work done by one culling pass.
type Stats struct {
	Tested   int // nodes classified against the frustum
	Culled   int // subtrees rejected as outside
	Accepted int // leaves returned
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Tested += other.Tested
	s.Culled += other.Culled
	s.Accepted += other.Accepted
}

// Visible returns the leaves of tree that may be visible through f, in
// depth first order. origin is the world position of the cluster the tree
// indexes.
//
// A subtree classified outside is skipped, a subtree classified inside is
// accepted without further tests and an intersecting node is descended
// into. With useSphere the cached node spheres are tested instead of the
// boxes; spheres are looser, so more leaves are accepted.
func Visible[T any](tree *bvh.Tree[T], f frustum.Frustum, origin math.Vec3, useSphere bool) ([]bvh.NodeID, Stats) {
	c := culler[T]{
		tree:      tree,
		frustum:   f,
		origin:    origin,
		useSphere: useSphere,
	}
	if root := tree.Root(); root != bvh.NoNode {
		c.visit(root)
	}
	instrumentCull(c.stats)
	return c.out, c.stats
}

type culler[T any] struct {
	tree      *bvh.Tree[T]
	frustum   frustum.Frustum
	origin    math.Vec3
	useSphere bool

	out   []bvh.NodeID
	stats Stats
}

func (c *culler[T]) visit(id bvh.NodeID) {
	n := c.tree.Node(id)

	c.stats.Tested++
	switch c.classify(&n) {
	case frustum.Outside:
		c.stats.Culled++
	case frustum.Inside:
		c.acceptAll(id)
	default:
		if n.IsLeaf() {
			c.accept(id)
			return
		}
		c.visit(n.Left)
		c.visit(n.Right)
	}
}

func (c *culler[T]) classify(n *bvh.Node[T]) frustum.Space {
	if c.useSphere {
		s := n.Sphere
		return c.frustum.Sphere(geom.BSphere{
			X: s.X + c.origin.X,
			Y: s.Y + c.origin.Y,
			Z: s.Z + c.origin.Z,
			D: s.D,
		})
	}
	return c.frustum.Box(n.Box.Offset(c.origin))
}

func (c *culler[T]) acceptAll(id bvh.NodeID) {
	c.tree.WalkSubtree(id, func(leaf bvh.NodeID, n *bvh.Node[T], _ int) bool {
		if n.IsLeaf() {
			c.accept(leaf)
		}
		return true
	})
}

func (c *culler[T]) accept(id bvh.NodeID) {
	c.out = append(c.out, id)
	c.stats.Accepted++
}
