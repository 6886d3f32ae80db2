package world

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClimateAllUnderwaterIsSand(t *testing.T) {
	cfg := DefaultGenConfig()
	g := NewGrid(10, 10, cfg)
	require.NoError(t, ApplyClimate(context.Background(), g, 42, cfg))
	for i := range g.Cells {
		assert.Equal(t, BiomeSand, g.Cells[i].TerrainTypeIndex)
	}
}

func TestClimateMountainsAreSnow(t *testing.T) {
	cfg := DefaultGenConfig()
	g := NewGrid(5, 5, cfg)
	for i := range g.Cells {
		g.Cells[i].Elevation = cfg.MountainElevation
	}
	require.NoError(t, ApplyClimate(context.Background(), g, 42, cfg))
	for i := range g.Cells {
		assert.Equal(t, BiomeSnow, g.Cells[i].TerrainTypeIndex)
	}
}

func TestClassifyBiome(t *testing.T) {
	cfg := DefaultGenConfig()
	wl := cfg.WaterLevel
	cases := []struct {
		name      string
		elevation int
		moisture  float64
		want      Biome
	}{
		{"underwater dry", wl - 1, 0, BiomeSand},
		{"underwater wet", wl - 1, 1, BiomeSand},
		{"mountain dry", cfg.MountainElevation, 0, BiomeSnow},
		{"peak wet", cfg.MaxElevation, 1, BiomeSnow},
		{"hill dry", cfg.HillElevation, 0.1, BiomeStone},
		{"hill at forest max", cfg.HillElevation, cfg.ForestMoistureMax, BiomeStone},
		{"hill wet", cfg.HillElevation, cfg.ForestMoistureMax + 0.01, BiomeSnow},
		{"lowland desert", wl, cfg.DesertMoistureMax - 0.01, BiomeSand},
		{"lowland at desert max", wl, cfg.DesertMoistureMax, BiomeGrass},
		{"lowland temperate", wl, 0.5, BiomeGrass},
		{"lowland at forest max", wl, cfg.ForestMoistureMax, BiomeMud},
		{"lowland soaked", wl, 1, BiomeMud},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyBiome(tc.elevation, wl, tc.moisture, cfg))
		})
	}
}

func TestClimateMoistureRange(t *testing.T) {
	for _, backend := range []string{NoiseSimplex, NoisePerlin} {
		cfg := SmallTestConfig()
		cfg.MoistureNoise = backend
		g := raiseTestLand(t, 11, 20, 20, 0.5)
		require.NoError(t, ApplyClimate(context.Background(), g, 11, cfg))
		for i := range g.Cells {
			c := g.Cells[i]
			assert.GreaterOrEqual(t, c.Moisture, 0.0, backend)
			assert.LessOrEqual(t, c.Moisture, 1.0, backend)
			assert.Less(t, int(c.TerrainTypeIndex), BiomeCount, backend)
		}
	}
}

func TestClimateCoastalBoostClamped(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.CoastalMoistureBoost = 1
	g := NewGrid(10, 10, cfg)
	require.NoError(t, ApplyClimate(context.Background(), g, 3, cfg))
	for i := range g.Cells {
		assert.Equal(t, 1.0, g.Cells[i].Moisture)
	}
}

func TestClimateDeterministic(t *testing.T) {
	cfg := DefaultGenConfig()
	a := raiseTestLand(t, 8, 15, 15, 0.6)
	b := raiseTestLand(t, 8, 15, 15, 0.6)
	require.NoError(t, ApplyClimate(context.Background(), a, 8, cfg))
	require.NoError(t, ApplyClimate(context.Background(), b, 8, cfg))
	assert.Equal(t, a.Cells, b.Cells)
}

func TestClimateCanceledBeforeMutation(t *testing.T) {
	cfg := DefaultGenConfig()
	g := NewGrid(5, 5, cfg)
	for i := range g.Cells {
		g.Cells[i].Elevation = cfg.MountainElevation
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, ApplyClimate(ctx, g, 1, cfg), context.Canceled)
	for i := range g.Cells {
		assert.Zero(t, g.Cells[i].Moisture)
		assert.Equal(t, BiomeSand, g.Cells[i].TerrainTypeIndex)
	}
}

func TestClimateShapeMismatchPanics(t *testing.T) {
	cfg := DefaultGenConfig()
	g := &Grid{Width: 10, Height: 10, Cells: NewCells(5, 10, cfg)}
	assert.Panics(t, func() {
		_ = ApplyClimate(context.Background(), g, 1, cfg)
	})
}
