// Package bvh indexes the occupied volume of a voxel cluster with a binary
// bounding volume hierarchy.
//
// Nodes live in an arena owned by the Tree and refer to each other by
// NodeID. A tree is built once, never mutated afterwards (apart from leaf
// payloads) and torn down in one pass with Destroy. A finished tree may be
// queried from several goroutines at once.
package bvh

import (
	"github.com/Faultbox/clusterindex/pkg/geom"
)

// Axis is the split axis of an internal node, or Leaf.
type Axis uint8

const (
	SplitY Axis = iota
	SplitZ
	SplitX
	Leaf
)

// Next returns the axis the children of a node split on: Y, Z, X, Y, ...
func (a Axis) Next() Axis {
	return (a + 1) % 3
}

func (a Axis) String() string {
	switch a {
	case SplitY:
		return "Y"
	case SplitZ:
		return "Z"
	case SplitX:
		return "X"
	default:
		return "leaf"
	}
}

// NodeID addresses a node inside its tree.
type NodeID int32

// NoNode marks a missing parent or child.
const NoNode NodeID = -1

// Node is one entry of the hierarchy. A node is a leaf iff Axis is Leaf iff
// both children are NoNode.
type Node[T any] struct {
	Axis   Axis
	Parent NodeID
	Left   NodeID
	Right  NodeID

	Box    geom.AABB3ub // cluster-local; max is one past the last voxel
	Sphere geom.BSphere

	payload    T
	hasPayload bool
}

// IsLeaf reports whether the node has no children.
func (n *Node[T]) IsLeaf() bool {
	return n.Axis == Leaf
}

// Payload returns the caller data attached to the node, if any.
func (n *Node[T]) Payload() (T, bool) {
	return n.payload, n.hasPayload
}
