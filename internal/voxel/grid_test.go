package voxel

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDimsValidate(t *testing.T) {
	require.NoError(t, DefaultDims.Validate())
	require.NoError(t, Dims{X: 255, Y: 255, Z: 255}.Validate())
	require.ErrorIs(t, Dims{X: 0, Y: 1, Z: 1}.Validate(), ErrBadDims)
	require.ErrorIs(t, Dims{X: 16, Y: 256, Z: 16}.Validate(), ErrBadDims)
	require.Equal(t, 16*16*128, DefaultDims.Volume())
}

func TestGridSetAt(t *testing.T) {
	g := MustGrid(DefaultDims)

	require.Equal(t, 0, g.Count())
	require.NoError(t, g.Set(3, 3, 3, Stone))
	require.NoError(t, g.Set(15, 127, 15, Grass))
	require.Equal(t, Stone, g.At(3, 3, 3))
	require.Equal(t, Grass, g.At(15, 127, 15))
	require.Equal(t, Air, g.At(3, 4, 3))
	require.Equal(t, 2, g.Count())

	require.ErrorIs(t, g.Set(16, 0, 0, Stone), ErrOutOfRange)
	require.ErrorIs(t, g.Set(0, -1, 0, Stone), ErrOutOfRange)
}

func TestGridLayout(t *testing.T) {
	g := MustGrid(Dims{X: 2, Y: 4, Z: 3})
	require.NoError(t, g.Set(1, 2, 1, 7))

	// x, z, y order: offset = (x*Z + z)*Y + y
	require.Equal(t, byte(7), g.ids[(1*3+1)*4+2])
}

func TestGridFillClips(t *testing.T) {
	g := MustGrid(Dims{X: 4, Y: 4, Z: 4})
	g.Fill(-2, 2, -2, 10, 10, 10, Dirt)

	require.Equal(t, 4*2*4, g.Count())
	require.Equal(t, Air, g.At(0, 1, 0))
	require.Equal(t, Dirt, g.At(3, 3, 3))
}

func TestReadWriteGrid(t *testing.T) {
	g, err := GenerateTerrain(DefaultDims, DefaultTerrain)
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := g.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(8+DefaultDims.Volume()), n)

	got, err := ReadGrid(&buf)
	require.NoError(t, err)
	require.Equal(t, g.Dims(), got.Dims())
	require.Equal(t, g.ids, got.ids)
}

func TestReadGridErrors(t *testing.T) {
	_, err := ReadGrid(bytes.NewReader([]byte("VX")))
	require.ErrorIs(t, err, ErrTruncatedGrid)

	_, err = ReadGrid(bytes.NewReader([]byte("GRAT\x01\x10\x80\x10")))
	require.ErrorIs(t, err, ErrInvalidMagic)

	_, err = ReadGrid(bytes.NewReader([]byte("VXCL\x02\x10\x80\x10")))
	require.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = ReadGrid(bytes.NewReader([]byte("VXCL\x01\x00\x80\x10")))
	require.ErrorIs(t, err, ErrBadDims)

	_, err = ReadGrid(bytes.NewReader([]byte("VXCL\x01\x02\x02\x02abc")))
	require.ErrorIs(t, err, ErrTruncatedGrid)
}

func TestSaveLoadGrid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cluster.vxc")

	g := MustGrid(Dims{X: 4, Y: 8, Z: 4})
	require.NoError(t, g.Set(1, 2, 3, Stone))
	require.NoError(t, SaveGrid(path, g))

	got, err := LoadGrid(path)
	require.NoError(t, err)
	require.Equal(t, Stone, got.At(1, 2, 3))
	require.Equal(t, 1, got.Count())
}

func TestGenerateTerrainDeterministic(t *testing.T) {
	a, err := GenerateTerrain(DefaultDims, DefaultTerrain)
	require.NoError(t, err)
	b, err := GenerateTerrain(DefaultDims, DefaultTerrain)
	require.NoError(t, err)

	require.Equal(t, a.ids, b.ids)
	require.Positive(t, a.Count())
	require.Less(t, a.Count(), DefaultDims.Volume())

	// bedrock is solid, the sky is empty
	require.Equal(t, Stone, a.At(0, 0, 0))
	require.Equal(t, Air, a.At(0, DefaultDims.Y-1, 0))
}
