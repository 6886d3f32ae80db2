// Land growth: raises an all-underwater grid into continents by growing
// random chunks breadth-first, then smooths the coastline with erosion.

package world

import (
	"context"
	"math"
	"math/rand"

	"github.com/zyedidia/generic/mapset"
)

// minLandIterations keeps tiny grids from starving the chunk loop.
const minLandIterations = 64

// LandStats summarises one land pass.
type LandStats struct {
	Budget    int // Cells the budget asked for
	Raised    int // Water cells turned to land by chunk growth
	Chunks    int // Chunks grown
	Eroded    int // Land cells sunk by erosion
	Filled    int // Water cells raised by erosion
	LandCells int // Land cells after erosion
}

// RaiseLand converts roughly landPercentage of the grid to land. All
// randomness comes from rng, consumed in a fixed order, so identical inputs
// produce identical elevations.
func RaiseLand(ctx context.Context, g *Grid, landPercentage float64, rng *rand.Rand, cfg GenConfig) (LandStats, error) {
	var stats LandStats
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	g.checkShape()
	n := len(g.Cells)
	if n == 0 {
		return stats, nil
	}

	landPercentage = math.Max(0, math.Min(1, landPercentage))
	budget := int(math.Floor(float64(n) * landPercentage))
	stats.Budget = budget

	maxIterations := max(minLandIterations, n*cfg.LandIterationFactor)
	for iter := 0; budget > 0 && iter < maxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		raised := growChunk(g, rng.Intn(n), &budget, rng, cfg)
		stats.Raised += raised
		stats.Chunks++
	}

	for i := range g.Cells {
		g.Cells[i].Elevation = clampInt(g.Cells[i].Elevation, cfg.MinElevation, cfg.MaxElevation)
	}

	for pass := 0; pass < cfg.ErosionPasses; pass++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		eroded, filled := ErodeCoastlines(g, cfg)
		stats.Eroded += eroded
		stats.Filled += filled
		if eroded == 0 && filled == 0 {
			break
		}
	}

	stats.LandCells = g.LandCount()
	return stats, nil
}

// growChunk raises one chunk around start and returns how many water cells
// became land. Each wave out from start joins with a smaller probability.
func growChunk(g *Grid, start int, budget *int, rng *rand.Rand, cfg GenConfig) int {
	type frontier struct {
		index int
		depth int
	}

	size := cfg.ChunkSizeMin + rng.Intn(cfg.ChunkSizeMax-cfg.ChunkSizeMin+1)
	queued := mapset.New[int]()
	queued.Put(start)
	queue := []frontier{{index: start}}

	raised := 0
	processed := 0
	for len(queue) > 0 && processed < size && *budget > 0 {
		cur := queue[0]
		queue = queue[1:]
		processed++

		c := &g.Cells[cur.index]
		if c.Elevation < cfg.WaterLevel {
			c.Elevation = cfg.WaterLevel
			*budget--
			raised++
		}
		if rng.Float64() < cfg.ElevationBumpChance {
			c.Elevation++
		}

		chance := cfg.ChunkExpansionChance * math.Pow(cfg.ChunkExpansionDecay, float64(cur.depth))
		for _, nb := range g.Neighbors(cur.index) {
			if queued.Has(nb) {
				continue
			}
			if rng.Float64() < chance {
				queued.Put(nb)
				queue = append(queue, frontier{index: nb, depth: cur.depth + 1})
			}
		}
	}
	return raised
}

// ErodeCoastlines runs one erosion pass and returns how many land cells sank
// and how many water cells rose. Ratios are computed from the grid state
// before the pass, so cell order does not matter.
func ErodeCoastlines(g *Grid, cfg GenConfig) (eroded, filled int) {
	g.checkShape()
	land := make([]bool, len(g.Cells))
	for i := range g.Cells {
		land[i] = !g.Cells[i].IsUnderwater()
	}

	for i := range g.Cells {
		neighbors := g.Neighbors(i)
		if len(neighbors) == 0 {
			continue
		}
		landNeighbors := 0
		for _, nb := range neighbors {
			if land[nb] {
				landNeighbors++
			}
		}
		ratio := float64(landNeighbors) / float64(len(neighbors))

		c := &g.Cells[i]
		switch {
		case land[i] && ratio < cfg.ErosionLandThreshold:
			c.Elevation = cfg.WaterLevel - 1
			eroded++
		case !land[i] && ratio > cfg.ErosionWaterThreshold:
			c.Elevation = cfg.WaterLevel
			filled++
		}
	}
	return eroded, filled
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
