// Package voxel holds the dense voxel-ID grid of one world cluster.
package voxel

import (
	"errors"
	"fmt"
)

// Air is the empty voxel ID.
const Air byte = 0

// Grid errors.
var (
	ErrBadDims    = errors.New("cluster dimensions must be in 1..255")
	ErrOutOfRange = errors.New("voxel coordinate out of range")
)

// Dims is the size of a cluster in voxels. Y is the vertical axis.
type Dims struct {
	X, Y, Z int
}

// DefaultDims is the reference world cluster: 16 wide, 128 tall, 16 deep.
var DefaultDims = Dims{X: 16, Y: 128, Z: 16}

// Validate checks that every axis fits the 8-bit boxes the index stores.
func (d Dims) Validate() error {
	if d.X < 1 || d.X > 255 || d.Y < 1 || d.Y > 255 || d.Z < 1 || d.Z > 255 {
		return fmt.Errorf("%w: got %dx%dx%d", ErrBadDims, d.X, d.Y, d.Z)
	}
	return nil
}

// Volume returns the number of voxels.
func (d Dims) Volume() int {
	return d.X * d.Y * d.Z
}

// Grid is a dense cluster of voxel IDs stored in x, z, y order so that a
// vertical column is contiguous.
type Grid struct {
	dims Dims
	ids  []byte
}

// NewGrid returns an all-air grid.
func NewGrid(d Dims) (*Grid, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &Grid{dims: d, ids: make([]byte, d.Volume())}, nil
}

// MustGrid is NewGrid for dimensions known to be valid.
func MustGrid(d Dims) *Grid {
	g, err := NewGrid(d)
	if err != nil {
		panic(err)
	}
	return g
}

// Dims returns the grid dimensions.
func (g *Grid) Dims() Dims {
	return g.dims
}

func (g *Grid) offset(x, y, z int) int {
	return (x*g.dims.Z+z)*g.dims.Y + y
}

// In reports whether (x, y, z) addresses a voxel of the grid.
func (g *Grid) In(x, y, z int) bool {
	return x >= 0 && x < g.dims.X && y >= 0 && y < g.dims.Y && z >= 0 && z < g.dims.Z
}

// At returns the voxel ID at (x, y, z). The coordinate must be in range.
func (g *Grid) At(x, y, z int) byte {
	return g.ids[g.offset(x, y, z)]
}

// Set stores id at (x, y, z).
func (g *Grid) Set(x, y, z int, id byte) error {
	if !g.In(x, y, z) {
		return fmt.Errorf("%w: (%d,%d,%d)", ErrOutOfRange, x, y, z)
	}
	g.ids[g.offset(x, y, z)] = id
	return nil
}

// Fill sets every voxel of the half-open box [min, max) to id, clipped to the grid.
func (g *Grid) Fill(minX, minY, minZ, maxX, maxY, maxZ int, id byte) {
	minX, maxX = clamp(minX, g.dims.X), clamp(maxX, g.dims.X)
	minY, maxY = clamp(minY, g.dims.Y), clamp(maxY, g.dims.Y)
	minZ, maxZ = clamp(minZ, g.dims.Z), clamp(maxZ, g.dims.Z)

	for x := minX; x < maxX; x++ {
		for z := minZ; z < maxZ; z++ {
			for y := minY; y < maxY; y++ {
				g.ids[g.offset(x, y, z)] = id
			}
		}
	}
}

// Count returns the number of non-air voxels.
func (g *Grid) Count() int {
	n := 0
	for _, id := range g.ids {
		if id != Air {
			n++
		}
	}
	return n
}

func clamp(v, limit int) int {
	if v < 0 {
		return 0
	}
	if v > limit {
		return limit
	}
	return v
}
