// Feature placement: density levels and special structures on dry land.

package world

import (
	"context"
	"math/rand"
)

// FeatureStats summarises one feature pass.
type FeatureStats struct {
	Eligible  int
	Decorated int // Cells with at least one density level
	Specials  [4]int
}

// PlaceFeatures decorates every eligible cell in index order. Ineligible
// cells are cleared and consume no randomness, so the result depends only on
// rng's seed and the upstream grid.
func PlaceFeatures(ctx context.Context, g *Grid, rng *rand.Rand, cfg GenConfig) (FeatureStats, error) {
	var stats FeatureStats
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	g.checkShape()

	for i := range g.Cells {
		c := &g.Cells[i]
		c.clearFeatures()
		if !c.CanPlaceFeature() {
			continue
		}
		stats.Eligible++

		if special := rollSpecial(c, rng, cfg); special != SpecialNone {
			c.SpecialIndex = special
			stats.Specials[special]++
			continue
		}

		if rng.Float64() >= cfg.FeaturePlacementChance {
			continue
		}
		assignDensity(c, rng, cfg)
		if c.HasDensityFeatures() {
			stats.Decorated++
		}
	}
	return stats, nil
}

// rollSpecial makes the single special-feature roll for c and returns the
// structure its biome allows, if the roll succeeds.
func rollSpecial(c *Cell, rng *rand.Rand, cfg GenConfig) Special {
	if rng.Float64() >= cfg.SpecialFeatureChance {
		return SpecialNone
	}
	switch c.TerrainTypeIndex {
	case BiomeGrass, BiomeStone:
		if c.Elevation >= cfg.CastleMinElevation {
			return SpecialCastle
		}
	case BiomeSand:
		return SpecialZiggurat
	case BiomeMud:
		if c.Moisture > cfg.MegafloraMinMoisture {
			return SpecialMegaflora
		}
	}
	return SpecialNone
}

// assignDensity applies the per-biome density table.
func assignDensity(c *Cell, rng *rand.Rand, cfg GenConfig) {
	switch c.TerrainTypeIndex {
	case BiomeSand:
		c.FarmLevel = uint8(rng.Intn(2))
		c.UrbanLevel = uint8(rng.Intn(2))
	case BiomeGrass:
		c.PlantLevel = grassPlantLevel(c.Moisture, cfg)
		c.FarmLevel = uint8(1 + rng.Intn(MaxFarmLevel))
		c.UrbanLevel = uint8(rng.Intn(MaxUrbanLevel + 1))
	case BiomeMud:
		c.PlantLevel = uint8(2 + rng.Intn(2))
		c.FarmLevel = uint8(rng.Intn(2))
	case BiomeStone:
		c.PlantLevel = uint8(rng.Intn(2))
		c.FarmLevel = uint8(rng.Intn(2))
		c.UrbanLevel = uint8(rng.Intn(2))
	case BiomeSnow:
		// Nothing grows or settles here.
	}
}

// grassPlantLevel scales plant density with moisture.
func grassPlantLevel(moisture float64, cfg GenConfig) uint8 {
	switch {
	case moisture < cfg.GrasslandMoistureMax:
		return 1
	case moisture < cfg.PlainsMoistureMax:
		return 2
	default:
		return MaxPlantLevel
	}
}
