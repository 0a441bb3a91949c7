package voxel

import (
	"math"
	"math/rand"
)

// Block IDs used by the terrain generator.
const (
	Stone byte = 1
	Grass byte = 2
	Dirt  byte = 3
	Water byte = 9
)

// TerrainParams shapes GenerateTerrain.
type TerrainParams struct {
	Seed       int64
	BaseHeight int // mean surface height
	Amplitude  int // surface variation above and below BaseHeight
	WaterLevel int // columns below this are flooded; 0 disables water
}

// DefaultTerrain roughly matches a lowland cluster of the reference world.
var DefaultTerrain = TerrainParams{Seed: 1, BaseHeight: 48, Amplitude: 12, WaterLevel: 44}

// GenerateTerrain fills a grid with a deterministic rolling heightmap:
// stone core, dirt, grass cap and optional water.
func GenerateTerrain(d Dims, p TerrainParams) (*Grid, error) {
	g, err := NewGrid(d)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(p.Seed))
	phaseX := rng.Float64() * 2 * math.Pi
	phaseZ := rng.Float64() * 2 * math.Pi
	freq := 0.15 + rng.Float64()*0.2

	for x := 0; x < d.X; x++ {
		for z := 0; z < d.Z; z++ {
			wave := math.Sin(float64(x)*freq+phaseX) + math.Cos(float64(z)*freq+phaseZ)
			h := p.BaseHeight + int(wave*float64(p.Amplitude)/2)
			h = clamp(h, d.Y-1)

			g.Fill(x, 0, z, x+1, h-3, z+1, Stone)
			g.Fill(x, h-3, z, x+1, h, z+1, Dirt)
			if h < p.WaterLevel {
				g.Fill(x, h, z, x+1, p.WaterLevel, z+1, Water)
			} else {
				_ = g.Set(x, h, z, Grass)
			}
		}
	}
	return g, nil
}
