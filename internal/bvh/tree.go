package bvh

import (
	"errors"

	"github.com/Faultbox/clusterindex/internal/voxel"
)

// ErrNotLeaf is returned when a payload is attached to an internal node.
var ErrNotLeaf = errors.New("bvh payloads can only be attached to leaves")

// Tree is a built hierarchy. The root is always node 0.
type Tree[T any] struct {
	nodes []Node[T]
	alloc Allocator

	dims      voxel.Dims
	threshold int
	bound     int

	leaves   int
	maxDepth int
}

// Root returns the root node, or NoNode once the tree is destroyed.
func (t *Tree[T]) Root() NodeID {
	if len(t.nodes) == 0 {
		return NoNode
	}
	return 0
}

// Node returns a copy of node id.
func (t *Tree[T]) Node(id NodeID) Node[T] {
	return t.nodes[id]
}

// Len returns the number of nodes.
func (t *Tree[T]) Len() int {
	return len(t.nodes)
}

// LeafCount returns the number of leaves.
func (t *Tree[T]) LeafCount() int {
	return t.leaves
}

// MaxDepth returns the depth of the deepest leaf; the root is depth 0.
func (t *Tree[T]) MaxDepth() int {
	return t.maxDepth
}

// DepthBound returns the deepest a leaf can possibly be for the tree's
// cluster dimensions and leaf threshold.
func (t *Tree[T]) DepthBound() int {
	return t.bound
}

// Dims returns the dimensions of the indexed cluster.
func (t *Tree[T]) Dims() voxel.Dims {
	return t.dims
}

// LeafThreshold returns the occupied extent at or below which nodes stay leaves.
func (t *Tree[T]) LeafThreshold() int {
	return t.threshold
}

// Depth returns the number of edges between id and the root.
func (t *Tree[T]) Depth(id NodeID) int {
	d := 0
	for p := t.nodes[id].Parent; p != NoNode; p = t.nodes[p].Parent {
		d++
	}
	return d
}

// Walk visits nodes depth first, left child before right. Returning false
// from fn skips the children of that node.
func (t *Tree[T]) Walk(fn func(id NodeID, n *Node[T], depth int) bool) {
	if len(t.nodes) == 0 {
		return
	}
	t.walk(0, 0, fn)
}

// WalkSubtree is Walk starting at id. Depths are relative to id.
func (t *Tree[T]) WalkSubtree(id NodeID, fn func(id NodeID, n *Node[T], depth int) bool) {
	if int(id) < 0 || int(id) >= len(t.nodes) {
		return
	}
	t.walk(id, 0, fn)
}

func (t *Tree[T]) walk(id NodeID, depth int, fn func(NodeID, *Node[T], int) bool) {
	n := &t.nodes[id]
	if !fn(id, n, depth) || n.IsLeaf() {
		return
	}
	t.walk(n.Left, depth+1, fn)
	t.walk(n.Right, depth+1, fn)
}

// Leaves returns every leaf in Walk order.
func (t *Tree[T]) Leaves() []NodeID {
	out := make([]NodeID, 0, t.leaves)
	t.Walk(func(id NodeID, n *Node[T], _ int) bool {
		if n.IsLeaf() {
			out = append(out, id)
		}
		return true
	})
	return out
}

// SetPayload attaches caller data to a leaf. It must not race with queries.
func (t *Tree[T]) SetPayload(id NodeID, v T) error {
	n := &t.nodes[id]
	if !n.IsLeaf() {
		return ErrNotLeaf
	}
	n.payload = v
	n.hasPayload = true
	return nil
}

// Payload returns the data attached to node id, if any.
func (t *Tree[T]) Payload(id NodeID) (T, bool) {
	return t.nodes[id].Payload()
}

// Destroy tears the tree down in post order, handing every attached
// payload to free (which may be nil) and releasing all node slots.
// Destroying twice is a no-op.
func (t *Tree[T]) Destroy(free func(T)) {
	if len(t.nodes) == 0 {
		return
	}
	released := t.free(0, free)

	t.nodes = nil
	t.leaves = 0
	t.alloc.Release(released)
	instrumentNodesReleased(released)
}

func (t *Tree[T]) free(id NodeID, fn func(T)) int {
	n := &t.nodes[id]
	count := 1
	if !n.IsLeaf() {
		count += t.free(n.Left, fn)
		count += t.free(n.Right, fn)
	}
	if n.hasPayload && fn != nil {
		fn(n.payload)
	}
	var zero T
	n.payload, n.hasPayload = zero, false
	return count
}
