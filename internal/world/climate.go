// Climate: moisture from coherent noise plus a coastal boost, then biome
// classification from elevation and moisture.

package world

import "context"

// ApplyClimate writes Moisture and TerrainTypeIndex for every cell. The
// noise is seeded with masterSeed + cfg.MoistureSeedOffset. A context that
// is already cancelled aborts before anything is written.
//
// len(g.Cells) must equal g.Width*g.Height; a mismatch panics.
func ApplyClimate(ctx context.Context, g *Grid, masterSeed int64, cfg GenConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.checkShape()

	noise := newNoiseField(cfg.MoistureNoise, masterSeed+cfg.MoistureSeedOffset)

	// Moisture first, reading only elevations, so the boost sees a stable map.
	for i := range g.Cells {
		c := &g.Cells[i]
		x, y := WorldPosition(c.X, c.Z)
		m := octaveNoise(noise, x, y, cfg.MoistureOctaves, cfg.MoistureNoiseScale, 0.5)
		if touchesWater(g, i) {
			m += cfg.CoastalMoistureBoost
		}
		c.Moisture = clamp01(m)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	for i := range g.Cells {
		c := &g.Cells[i]
		c.TerrainTypeIndex = ClassifyBiome(c.Elevation, c.WaterLevel, c.Moisture, cfg)
	}
	return nil
}

// ClassifyBiome maps elevation and moisture to a biome. Rules apply in order:
// underwater is Sand, mountains are Snow, hills are Stone unless wet (Snow),
// and lowland goes Sand, Grass or Mud as moisture rises.
func ClassifyBiome(elevation, waterLevel int, moisture float64, cfg GenConfig) Biome {
	switch {
	case elevation < waterLevel:
		return BiomeSand
	case elevation >= cfg.MountainElevation:
		return BiomeSnow
	case elevation >= cfg.HillElevation:
		if moisture <= cfg.ForestMoistureMax {
			return BiomeStone
		}
		return BiomeSnow
	case moisture < cfg.DesertMoistureMax:
		return BiomeSand
	case moisture >= cfg.ForestMoistureMax:
		return BiomeMud
	default:
		return BiomeGrass
	}
}

func touchesWater(g *Grid, i int) bool {
	for _, nb := range g.Neighbors(i) {
		if g.Cells[nb].IsUnderwater() {
			return true
		}
	}
	return false
}
