package world

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raiseTestLand(t *testing.T, seed int64, w, h int, pct float64) *Grid {
	t.Helper()
	cfg := DefaultGenConfig()
	g := NewGrid(w, h, cfg)
	_, err := RaiseLand(context.Background(), g, pct, rand.New(rand.NewSource(seed)), cfg)
	require.NoError(t, err)
	return g
}

func elevations(g *Grid) []int {
	out := make([]int, len(g.Cells))
	for i := range g.Cells {
		out[i] = g.Cells[i].Elevation
	}
	return out
}

func TestRaiseLandDeterministic(t *testing.T) {
	a := raiseTestLand(t, 1234, 20, 20, 0.5)
	b := raiseTestLand(t, 1234, 20, 20, 0.5)
	assert.Equal(t, elevations(a), elevations(b))
}

func TestRaiseLandSeedsDiverge(t *testing.T) {
	a := elevations(raiseTestLand(t, 1, 20, 20, 0.5))
	b := elevations(raiseTestLand(t, 2, 20, 20, 0.5))
	diff := 0
	for i := range a {
		if a[i] != b[i] {
			diff++
		}
	}
	assert.GreaterOrEqual(t, float64(diff)/float64(len(a)), 0.1)
}

func TestRaiseLandBudget(t *testing.T) {
	for _, seed := range []int64{7, 42, 99} {
		none := raiseTestLand(t, seed, 20, 20, 0)
		assert.Zero(t, none.LandCount(), "seed %d", seed)

		half := raiseTestLand(t, seed, 20, 20, 0.5).LandFraction()
		assert.GreaterOrEqual(t, half, 0.3, "seed %d", seed)
		assert.LessOrEqual(t, half, 0.7, "seed %d", seed)

		full := raiseTestLand(t, seed, 20, 20, 1).LandFraction()
		assert.Greater(t, full, 0.7, "seed %d", seed)
	}
}

func TestRaiseLandElevationBounds(t *testing.T) {
	cfg := DefaultGenConfig()
	g := raiseTestLand(t, 5, 30, 30, 0.8)
	for _, e := range elevations(g) {
		assert.GreaterOrEqual(t, e, cfg.MinElevation)
		assert.LessOrEqual(t, e, cfg.MaxElevation)
	}
}

func TestRaiseLandEmptyGrid(t *testing.T) {
	cfg := DefaultGenConfig()
	g := NewGrid(0, 0, cfg)
	stats, err := RaiseLand(context.Background(), g, 0.5, rand.New(rand.NewSource(1)), cfg)
	require.NoError(t, err)
	assert.Zero(t, stats.Budget)
	assert.Empty(t, g.Cells)
}

func TestRaiseLandCanceled(t *testing.T) {
	cfg := DefaultGenConfig()
	g := NewGrid(10, 10, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RaiseLand(ctx, g, 1, rand.New(rand.NewSource(1)), cfg)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, g.LandCount())
}

func TestErodeSinksIsolatedLand(t *testing.T) {
	cfg := DefaultGenConfig()
	g := NewGrid(5, 5, cfg)
	g.At(2, 2).Elevation = cfg.WaterLevel + 2

	eroded, filled := ErodeCoastlines(g, cfg)
	assert.Equal(t, 1, eroded)
	assert.Zero(t, filled)
	assert.Zero(t, g.LandCount())
	assert.Equal(t, cfg.WaterLevel-1, g.At(2, 2).Elevation)
}

func TestErodeFillsEnclosedWater(t *testing.T) {
	cfg := DefaultGenConfig()
	g := NewGrid(5, 5, cfg)
	for i := range g.Cells {
		g.Cells[i].Elevation = cfg.WaterLevel
	}
	g.At(2, 2).Elevation = cfg.MinElevation

	eroded, filled := ErodeCoastlines(g, cfg)
	assert.Zero(t, eroded)
	assert.Equal(t, 1, filled)
	assert.Equal(t, g.Len(), g.LandCount())
}

func TestErodeLeavesAllWaterAlone(t *testing.T) {
	cfg := DefaultGenConfig()
	g := NewGrid(6, 6, cfg)
	eroded, filled := ErodeCoastlines(g, cfg)
	assert.Zero(t, eroded)
	assert.Zero(t, filled)
}
