package bvh

import (
	"fmt"

	"github.com/Faultbox/clusterindex/internal/voxel"
)

// maxStack caps DepthBound for any cluster of at most 255 voxels per axis
// and a leaf threshold of at least 1.
const maxStack = 32

// DepthBound returns the deepest level a leaf can reach when a cluster of
// dimensions d is built with the given leaf threshold (>= 1).
//
// An axis is split at most once every three levels and each split at least
// halves the box on that axis (rounding up). A node stops splitting as soon
// as the axis it tests spans no more than threshold voxels, so the bound is
// reached through whichever axis collapses first.
func DepthBound(d voxel.Dims, threshold int) int {
	best := -1
	for i, size := range [3]int{d.Y, d.Z, d.X} {
		splits := 0
		for s := size; s > threshold; s = (s + 1) / 2 {
			splits++
		}
		if depth := i + 3*splits; best < 0 || depth < best {
			best = depth
		}
	}
	return best
}

// Locate returns the leaf whose box contains the point, in cluster-local
// coordinates. Points outside the cluster, or in an air region no leaf
// covers, are reported as not found.
//
// Box bounds are inclusive. A point on the boundary shared by two siblings
// resolves to the left child, which holds the upper half of the split.
func (t *Tree[T]) Locate(x, y, z float32) (NodeID, bool) {
	if len(t.nodes) == 0 {
		return NoNode, false
	}
	if x < 0 || y < 0 || z < 0 ||
		x >= float32(t.dims.X) || y >= float32(t.dims.Y) || z >= float32(t.dims.Z) {
		return NoNode, false
	}

	var stack [maxStack]NodeID
	level := 0

	id := NodeID(0)
	for id != NoNode {
		n := &t.nodes[id]
		switch {
		case n.Box.Contains(x, y, z):
			if n.IsLeaf() {
				return id, true
			}
			if level == t.bound {
				panic(fmt.Sprintf("bvh: query stack exceeded depth bound %d", t.bound))
			}
			stack[level] = n.Right
			level++
			id = n.Left
		case level > 0:
			level--
			id = stack[level]
		default:
			id = NoNode
		}
	}
	return NoNode, false
}
