package voxel

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Grid file errors.
var (
	ErrInvalidMagic       = errors.New("invalid grid magic: expected 'VXCL'")
	ErrUnsupportedVersion = errors.New("unsupported grid version")
	ErrTruncatedGrid      = errors.New("truncated grid data")
)

const (
	gridMagic   = "VXCL"
	gridVersion = 1
)

// gridHeader is the fixed 8 byte file header.
type gridHeader struct {
	Magic   [4]byte
	Version uint8
	X, Y, Z uint8
}

// ReadGrid decodes a grid file: the header followed by the voxel IDs in
// x, z, y order.
func ReadGrid(r io.Reader) (*Grid, error) {
	var h gridHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("reading header: %w", ErrTruncatedGrid)
	}
	if string(h.Magic[:]) != gridMagic {
		return nil, ErrInvalidMagic
	}
	if h.Version != gridVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}

	g, err := NewGrid(Dims{X: int(h.X), Y: int(h.Y), Z: int(h.Z)})
	if err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r, g.ids); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncatedGrid, err)
	}
	return g, nil
}

// WriteTo encodes the grid in the format ReadGrid expects.
func (g *Grid) WriteTo(w io.Writer) (int64, error) {
	h := gridHeader{
		Version: gridVersion,
		X:       uint8(g.dims.X),
		Y:       uint8(g.dims.Y),
		Z:       uint8(g.dims.Z),
	}
	copy(h.Magic[:], gridMagic)

	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return 0, err
	}
	n, err := w.Write(g.ids)
	return int64(n) + int64(binary.Size(h)), err
}

// LoadGrid reads a grid file from disk.
func LoadGrid(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := ReadGrid(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return g, nil
}

// SaveGrid writes a grid file to disk.
func SaveGrid(path string, g *Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	if _, err := g.WriteTo(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
