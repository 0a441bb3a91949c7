// Package world keeps one cluster index per loaded world cluster and
// answers point and visibility queries in world coordinates.
package world

import (
	"errors"
	"fmt"
	gomath "math"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/clusterindex/internal/bvh"
	"github.com/Faultbox/clusterindex/internal/config"
	"github.com/Faultbox/clusterindex/internal/culling"
	"github.com/Faultbox/clusterindex/internal/logger"
	"github.com/Faultbox/clusterindex/internal/picking"
	"github.com/Faultbox/clusterindex/internal/voxel"
	"github.com/Faultbox/clusterindex/pkg/frustum"
	"github.com/Faultbox/clusterindex/pkg/math"
)

// ErrDimsMismatch is returned when a grid does not have the cluster size
// the index was configured with.
var ErrDimsMismatch = errors.New("grid dimensions do not match the world clusters")

// ErrClosed is returned by Add once the index is closed.
var ErrClosed = errors.New("world index is closed")

// Key is a cluster coordinate on the XZ plane.
type Key struct {
	CX, CZ int
}

// Origin returns the world position of the cluster's (0, 0, 0) voxel.
func (k Key) Origin(d voxel.Dims) math.Vec3 {
	return math.Vec3{X: float32(k.CX * d.X), Z: float32(k.CZ * d.Z)}
}

func (k Key) String() string {
	return fmt.Sprintf("(%d,%d)", k.CX, k.CZ)
}

// Hits are the visible leaves of one cluster.
type Hits struct {
	Key    Key
	Leaves []bvh.NodeID
}

// Index maps cluster coordinates to their trees. All methods are safe for
// concurrent use; each tree is built by the goroutine calling Add.
type Index[T any] struct {
	dims      voxel.Dims
	threshold int
	nodeLimit int
	free      func(T)
	log       *zap.Logger

	mu     sync.RWMutex
	trees  map[Key]*bvh.Tree[T]
	closed bool
}

// New creates an empty index. free, if not nil, is handed every leaf
// payload when a tree is dropped.
func New[T any](cfg config.ClusterConfig, free func(T)) *Index[T] {
	return &Index[T]{
		dims:      voxel.Dims{X: cfg.SizeX, Y: cfg.SizeY, Z: cfg.SizeZ},
		threshold: cfg.LeafThreshold,
		nodeLimit: cfg.NodeLimit,
		free:      free,
		log:       logger.Named("world"),
		trees:     make(map[Key]*bvh.Tree[T]),
	}
}

// Dims returns the size of every cluster.
func (w *Index[T]) Dims() voxel.Dims {
	return w.dims
}

// Add indexes grid as cluster (cx, cz), replacing and destroying any tree
// already held for it. On failure the previous tree is kept.
func (w *Index[T]) Add(cx, cz int, grid *voxel.Grid) error {
	if grid.Dims() != w.dims {
		return fmt.Errorf("%w: got %v, want %v", ErrDimsMismatch, grid.Dims(), w.dims)
	}

	key := Key{CX: cx, CZ: cz}
	tree, err := bvh.Build[T](grid,
		bvh.WithLeafThreshold(w.threshold),
		bvh.WithAllocator(bvh.NewBudget(w.nodeLimit)),
	)
	if err != nil {
		return fmt.Errorf("index cluster %v: %w", key, err)
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		tree.Destroy(w.free)
		return ErrClosed
	}
	old := w.trees[key]
	w.trees[key] = tree
	w.mu.Unlock()

	if old != nil {
		old.Destroy(w.free)
	}

	w.log.Debug("cluster indexed",
		zap.Stringer("cluster", key),
		zap.Int("nodes", tree.Len()),
		zap.Bool("replaced", old != nil),
	)
	return nil
}

// Remove drops cluster (cx, cz). It reports whether the cluster was loaded.
func (w *Index[T]) Remove(cx, cz int) bool {
	key := Key{CX: cx, CZ: cz}

	w.mu.Lock()
	tree, ok := w.trees[key]
	delete(w.trees, key)
	w.mu.Unlock()

	if ok {
		tree.Destroy(w.free)
		w.log.Debug("cluster removed", zap.Stringer("cluster", key))
	}
	return ok
}

// Tree returns the tree of cluster (cx, cz). The tree must not be used
// after the cluster is replaced or removed.
func (w *Index[T]) Tree(cx, cz int) (*bvh.Tree[T], bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	tree, ok := w.trees[Key{CX: cx, CZ: cz}]
	return tree, ok
}

// Len returns the number of loaded clusters.
func (w *Index[T]) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.trees)
}

// KeyAt returns the cluster holding the world point (x, z).
func (w *Index[T]) KeyAt(x, z float32) Key {
	return Key{
		CX: int(gomath.Floor(float64(x) / float64(w.dims.X))),
		CZ: int(gomath.Floor(float64(z) / float64(w.dims.Z))),
	}
}

// Locate finds the leaf enclosing a world point.
func (w *Index[T]) Locate(x, y, z float32) (Key, bvh.NodeID, bool) {
	key := w.KeyAt(x, z)
	origin := key.Origin(w.dims)

	w.mu.RLock()
	defer w.mu.RUnlock()

	tree, ok := w.trees[key]
	if !ok {
		return key, bvh.NoNode, false
	}
	id, found := tree.Locate(x-origin.X, y, z-origin.Z)
	return key, id, found
}

// Visible culls every loaded cluster against f. Clusters without a
// visible leaf are left out; the rest are ordered by key.
func (w *Index[T]) Visible(f frustum.Frustum, useSphere bool) ([]Hits, culling.Stats) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var (
		out   []Hits
		total culling.Stats
	)
	for key, tree := range w.trees {
		leaves, stats := culling.Visible(tree, f, key.Origin(w.dims), useSphere)
		total.Add(stats)
		if len(leaves) > 0 {
			out = append(out, Hits{Key: key, Leaves: leaves})
		}
	}

	slices.SortFunc(out, func(a, b Hits) int {
		if a.Key.CX != b.Key.CX {
			return a.Key.CX - b.Key.CX
		}
		return a.Key.CZ - b.Key.CZ
	})
	return out, total
}

// Pick returns the leaf the ray enters first over all loaded clusters.
func (w *Index[T]) Pick(r picking.Ray) (Key, bvh.NodeID, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var (
		bestKey Key
		bestID  = bvh.NoNode
		bestT   float32
	)
	for key, tree := range w.trees {
		id, t, ok := picking.Pick(tree, r, key.Origin(w.dims))
		if ok && (bestID == bvh.NoNode || t < bestT) {
			bestKey, bestID, bestT = key, id, t
		}
	}
	return bestKey, bestID, bestID != bvh.NoNode
}

// Close destroys every tree. Further Adds fail with ErrClosed.
func (w *Index[T]) Close() {
	w.mu.Lock()
	trees := w.trees
	w.trees = make(map[Key]*bvh.Tree[T])
	w.closed = true
	w.mu.Unlock()

	for _, tree := range trees {
		tree.Destroy(w.free)
	}
	w.log.Debug("world index closed", zap.Int("clusters", len(trees)))
}
