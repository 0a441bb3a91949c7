package bvh

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/clusterindex/internal/logger"
	"github.com/Faultbox/clusterindex/internal/voxel"
	"github.com/Faultbox/clusterindex/pkg/geom"
)

// DefaultLeafThreshold is the occupied extent at or below which a node is
// not split any further.
const DefaultLeafThreshold = 5

// ErrBadThreshold is returned for a leaf threshold below 1; a threshold of
// 0 would keep splitting single voxel slabs forever.
var ErrBadThreshold = errors.New("bvh leaf threshold must be at least 1")

type options struct {
	threshold int
	alloc     Allocator
}

// Option configures Build.
type Option func(*options)

// WithLeafThreshold overrides DefaultLeafThreshold.
func WithLeafThreshold(n int) Option {
	return func(o *options) {
		o.threshold = n
	}
}

// WithAllocator accounts node slots against a; by default every build gets
// its own unlimited Budget.
func WithAllocator(a Allocator) Option {
	return func(o *options) {
		o.alloc = a
	}
}

type builder[T any] struct {
	tree *Tree[T]
	grid *voxel.Grid
}

// Build indexes the occupied voxels of grid.
//
// The root box covers the whole cluster and is split along Y first. Every
// node rescans its whole box for the occupied extent on its split axis and
// becomes a leaf when that extent is empty or spans no more than the leaf
// threshold. Otherwise the occupied extent is cut in half: the right child
// takes [min, mid], the left child [mid, max], and both children split on
// the next axis.
//
// Build only fails when the allocator refuses a node. In that case no node
// stays acquired and the returned tree is nil.
func Build[T any](grid *voxel.Grid, opts ...Option) (*Tree[T], error) {
	o := options{threshold: DefaultLeafThreshold}
	for _, opt := range opts {
		opt(&o)
	}
	if o.threshold < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrBadThreshold, o.threshold)
	}
	if o.alloc == nil {
		o.alloc = NewBudget(0)
	}

	d := grid.Dims()
	b := &builder[T]{
		tree: &Tree[T]{
			alloc:     o.alloc,
			dims:      d,
			threshold: o.threshold,
			bound:     DepthBound(d, o.threshold),
		},
		grid: grid,
	}

	start := time.Now()
	err := b.build()
	took := time.Since(start)
	instrumentBuild(b.tree.Len(), took, err)

	log := logger.Named("bvh")
	if err != nil {
		log.Warn("cluster index build failed", zap.Error(err))
		return nil, err
	}

	log.Debug("cluster index built",
		zap.Int("nodes", b.tree.Len()),
		zap.Int("leaves", b.tree.leaves),
		zap.Int("depth", b.tree.maxDepth),
		zap.Duration("took", took),
	)
	return b.tree, nil
}

func (b *builder[T]) build() error {
	root, err := b.alloc(NoNode)
	if err != nil {
		return err
	}

	d := b.grid.Dims()
	n := &b.tree.nodes[root]
	n.Box = geom.Box[uint8](0, 0, 0, uint8(d.X), uint8(d.Y), uint8(d.Z))
	n.Sphere = n.Box.Sphere()

	if err := b.split(root, SplitY, 0); err != nil {
		b.rollback(0)
		return err
	}
	return nil
}

// alloc appends a fresh leaf under parent.
func (b *builder[T]) alloc(parent NodeID) (NodeID, error) {
	if err := b.tree.alloc.Acquire(); err != nil {
		return NoNode, err
	}
	b.tree.nodes = append(b.tree.nodes, Node[T]{
		Axis:   Leaf,
		Parent: parent,
		Left:   NoNode,
		Right:  NoNode,
	})
	return NodeID(len(b.tree.nodes) - 1), nil
}

// rollback drops every node allocated after mark. Nodes are appended depth
// first, so the nodes of a failed subtree always form the tail of the arena.
func (b *builder[T]) rollback(mark int) {
	dropped := len(b.tree.nodes) - mark
	if dropped == 0 {
		return
	}
	clear(b.tree.nodes[mark:])
	b.tree.nodes = b.tree.nodes[:mark]
	b.tree.alloc.Release(dropped)
}

func (b *builder[T]) split(id NodeID, axis Axis, depth int) error {
	t := b.tree

	lo, hi, ok := OccupiedExtent(b.grid, t.nodes[id].Box, axis)
	if !ok || hi-lo <= t.threshold {
		t.nodes[id].Axis = Leaf
		t.leaves++
		if depth > t.maxDepth {
			t.maxDepth = depth
		}
		return nil
	}

	mark := len(t.nodes)
	left, err := b.alloc(id)
	if err != nil {
		return err
	}
	right, err := b.alloc(id)
	if err != nil {
		b.rollback(mark)
		return err
	}

	n := &t.nodes[id]
	n.Axis = axis
	n.Left = left
	n.Right = right

	mid := lo + (hi-lo)/2
	leftBox, rightBox := n.Box, n.Box
	setRange(&rightBox, axis, uint8(lo), uint8(mid))
	setRange(&leftBox, axis, uint8(mid), uint8(hi))

	t.nodes[left].Box = leftBox
	t.nodes[left].Sphere = leftBox.Sphere()
	t.nodes[right].Box = rightBox
	t.nodes[right].Sphere = rightBox.Sphere()

	next := axis.Next()
	leaves := t.leaves
	if err = b.split(left, next, depth+1); err == nil {
		if err = b.split(right, next, depth+1); err == nil {
			return nil
		}
	}

	b.rollback(mark)
	t.leaves = leaves
	n = &t.nodes[id]
	n.Axis = Leaf
	n.Left = NoNode
	n.Right = NoNode
	return err
}

// OccupiedExtent scans every voxel inside box and returns the span
// [lo, hi) of non-air voxels along axis. ok is false when the box holds
// nothing but air.
func OccupiedExtent(g *voxel.Grid, box geom.AABB3ub, axis Axis) (lo, hi int, ok bool) {
	lo, hi = -1, -1
	for x := int(box.MinX); x < int(box.MaxX); x++ {
		for z := int(box.MinZ); z < int(box.MaxZ); z++ {
			for y := int(box.MinY); y < int(box.MaxY); y++ {
				if g.At(x, y, z) == voxel.Air {
					continue
				}

				var c int
				switch axis {
				case SplitX:
					c = x
				case SplitY:
					c = y
				default:
					c = z
				}

				if lo < 0 || c < lo {
					lo = c
				}
				if c > hi {
					hi = c
				}
			}
		}
	}

	if lo < 0 {
		return 0, 0, false
	}
	return lo, hi + 1, true
}

func setRange(b *geom.AABB3ub, axis Axis, lo, hi uint8) {
	switch axis {
	case SplitX:
		b.MinX, b.MaxX = lo, hi
	case SplitY:
		b.MinY, b.MaxY = lo, hi
	default:
		b.MinZ, b.MaxZ = lo, hi
	}
}
