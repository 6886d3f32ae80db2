package world

// Biome is the terrain classification of a cell.
type Biome uint8

const (
	BiomeSand  Biome = iota // Beaches, deserts and every underwater cell
	BiomeGrass              // Temperate lowland
	BiomeMud                // Wet lowland
	BiomeStone              // Dry hills
	BiomeSnow               // Mountains and wet hills
)

// BiomeCount is the number of biome classes.
const BiomeCount = 5

// String returns a human-readable name for a biome.
func (b Biome) String() string {
	switch b {
	case BiomeSand:
		return "Sand"
	case BiomeGrass:
		return "Grass"
	case BiomeMud:
		return "Mud"
	case BiomeStone:
		return "Stone"
	case BiomeSnow:
		return "Snow"
	default:
		return "Unknown"
	}
}

// Special is a mutually exclusive structure occupying a whole cell.
type Special uint8

const (
	SpecialNone Special = iota
	SpecialCastle
	SpecialZiggurat
	SpecialMegaflora
)

// String returns a human-readable name for a special feature.
func (s Special) String() string {
	switch s {
	case SpecialNone:
		return "None"
	case SpecialCastle:
		return "Castle"
	case SpecialZiggurat:
		return "Ziggurat"
	case SpecialMegaflora:
		return "Megaflora"
	default:
		return "Unknown"
	}
}

// Density feature caps.
const (
	MaxPlantLevel = 3
	MaxFarmLevel  = 2
	MaxUrbanLevel = 2
)

// Cell is the per-position record the generation stages read and write.
// X and Z are fixed at construction.
type Cell struct {
	X int `json:"x"`
	Z int `json:"z"`

	// Land iff Elevation >= WaterLevel. Written by the land stage only.
	Elevation  int `json:"elevation"`
	WaterLevel int `json:"water_level"`

	// Written once by the climate stage.
	Moisture         float64 `json:"moisture"`
	TerrainTypeIndex Biome   `json:"terrain"`

	// Written by the river stage. At most one edge each way.
	HasIncomingRiver       bool      `json:"has_incoming_river"`
	HasOutgoingRiver       bool      `json:"has_outgoing_river"`
	IncomingRiverDirection Direction `json:"incoming_river_direction"`
	OutgoingRiverDirection Direction `json:"outgoing_river_direction"`

	// Written by the feature stage.
	PlantLevel   uint8   `json:"plant_level"`
	FarmLevel    uint8   `json:"farm_level"`
	UrbanLevel   uint8   `json:"urban_level"`
	SpecialIndex Special `json:"special"`

	// Not touched by generation.
	Roads [DirectionCount]bool `json:"roads"`
}

// IsUnderwater reports whether the cell lies below sea level.
func (c *Cell) IsUnderwater() bool {
	return c.Elevation < c.WaterLevel
}

// HasRiver reports whether any river edge touches the cell.
func (c *Cell) HasRiver() bool {
	return c.HasIncomingRiver || c.HasOutgoingRiver
}

// CanPlaceFeature reports whether decorations may go on this cell: dry land
// without a river.
func (c *Cell) CanPlaceFeature() bool {
	return !c.IsUnderwater() && !c.HasRiver()
}

// HasDensityFeatures reports whether any plant, farm or urban level is set.
func (c *Cell) HasDensityFeatures() bool {
	return c.PlantLevel > 0 || c.FarmLevel > 0 || c.UrbanLevel > 0
}

func (c *Cell) clearFeatures() {
	c.PlantLevel = 0
	c.FarmLevel = 0
	c.UrbanLevel = 0
	c.SpecialIndex = SpecialNone
}
