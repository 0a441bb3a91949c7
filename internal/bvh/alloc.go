package bvh

import (
	"errors"
	"sync/atomic"
)

// ErrNodeBudget is returned when an Allocator refuses a node.
var ErrNodeBudget = errors.New("bvh node budget exhausted")

// Allocator accounts for node slots. Build acquires one slot per node and
// every slot is released again, either by the rollback of a failed build
// or by Tree.Destroy.
type Allocator interface {
	Acquire() error
	Release(n int)
}

// Budget is an Allocator with an optional upper bound on live nodes.
// A Budget may be shared by builds running on different goroutines.
type Budget struct {
	Limit int64 // 0 = unlimited
	live  atomic.Int64
}

// NewBudget returns a budget capped at limit nodes (0 = unlimited).
func NewBudget(limit int) *Budget {
	return &Budget{Limit: int64(limit)}
}

// Acquire reserves one node slot.
func (b *Budget) Acquire() error {
	for {
		n := b.live.Load()
		if b.Limit > 0 && n >= b.Limit {
			return ErrNodeBudget
		}
		if b.live.CompareAndSwap(n, n+1) {
			return nil
		}
	}
}

// Release returns n node slots.
func (b *Budget) Release(n int) {
	if b.live.Add(-int64(n)) < 0 {
		panic("bvh: released more nodes than acquired")
	}
}

// Live returns the number of slots currently held.
func (b *Budget) Live() int {
	return int(b.live.Load())
}
