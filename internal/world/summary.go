package world

// Summary counts what a finished grid contains.
type Summary struct {
	Cells       int             `json:"cells"`
	Land        int             `json:"land"`
	Water       int             `json:"water"`
	RiverCells  int             `json:"river_cells"`
	RiverMouths int             `json:"river_mouths"`
	Biomes      [BiomeCount]int `json:"biomes"`
	Specials    map[string]int  `json:"specials"`
	Decorated   int             `json:"decorated"`
}

// BiomeCounts returns how many cells carry each biome.
func BiomeCounts(cells []Cell) [BiomeCount]int {
	var counts [BiomeCount]int
	for i := range cells {
		if b := cells[i].TerrainTypeIndex; b < BiomeCount {
			counts[b]++
		}
	}
	return counts
}

// Summarize tallies land, rivers, biomes and features of a grid.
func Summarize(g *Grid) Summary {
	s := Summary{
		Cells:    len(g.Cells),
		Biomes:   BiomeCounts(g.Cells),
		Specials: make(map[string]int),
	}
	for i := range g.Cells {
		c := &g.Cells[i]
		if c.IsUnderwater() {
			s.Water++
		} else {
			s.Land++
		}
		if c.HasRiver() {
			s.RiverCells++
			if c.HasIncomingRiver && !c.HasOutgoingRiver && c.IsUnderwater() {
				s.RiverMouths++
			}
		}
		if c.SpecialIndex != SpecialNone {
			s.Specials[c.SpecialIndex.String()]++
		}
		if c.HasDensityFeatures() {
			s.Decorated++
		}
	}
	return s
}
