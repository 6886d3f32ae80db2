package world

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is returned by GenConfig.Validate.
var ErrInvalidConfig = errors.New("invalid generation config")

// Noise backends for the moisture layer.
const (
	NoiseSimplex = "simplex"
	NoisePerlin  = "perlin"
)

// GenConfig holds every tuning constant of the generation pipeline.
type GenConfig struct {
	// Elevation bounds. A cell is land iff Elevation >= WaterLevel.
	MinElevation      int `yaml:"min_elevation" json:"min_elevation"`
	WaterLevel        int `yaml:"water_level" json:"water_level"`
	HillElevation     int `yaml:"hill_elevation" json:"hill_elevation"`
	MountainElevation int `yaml:"mountain_elevation" json:"mountain_elevation"`
	MaxElevation      int `yaml:"max_elevation" json:"max_elevation"`

	// Land growth.
	LandSeedOffset       int64   `yaml:"land_seed_offset" json:"land_seed_offset"`
	ChunkSizeMin         int     `yaml:"chunk_size_min" json:"chunk_size_min"`
	ChunkSizeMax         int     `yaml:"chunk_size_max" json:"chunk_size_max"`
	ChunkExpansionChance float64 `yaml:"chunk_expansion_chance" json:"chunk_expansion_chance"`
	ChunkExpansionDecay  float64 `yaml:"chunk_expansion_decay" json:"chunk_expansion_decay"` // Applied per wave
	ElevationBumpChance  float64 `yaml:"elevation_bump_chance" json:"elevation_bump_chance"`
	LandIterationFactor  int     `yaml:"land_iteration_factor" json:"land_iteration_factor"` // Chunk cap = cells * factor

	// Erosion. Land below the land threshold sinks, water above the water
	// threshold rises; the gap between them keeps passes from oscillating.
	ErosionPasses         int     `yaml:"erosion_passes" json:"erosion_passes"`
	ErosionLandThreshold  float64 `yaml:"erosion_land_threshold" json:"erosion_land_threshold"`
	ErosionWaterThreshold float64 `yaml:"erosion_water_threshold" json:"erosion_water_threshold"`

	// Climate.
	MoistureSeedOffset   int64   `yaml:"moisture_seed_offset" json:"moisture_seed_offset"`
	MoistureNoise        string  `yaml:"moisture_noise" json:"moisture_noise"`
	MoistureNoiseScale   float64 `yaml:"moisture_noise_scale" json:"moisture_noise_scale"`
	MoistureOctaves      int     `yaml:"moisture_octaves" json:"moisture_octaves"`
	CoastalMoistureBoost float64 `yaml:"coastal_moisture_boost" json:"coastal_moisture_boost"`
	DesertMoistureMax    float64 `yaml:"desert_moisture_max" json:"desert_moisture_max"`
	GrasslandMoistureMax float64 `yaml:"grassland_moisture_max" json:"grassland_moisture_max"`
	PlainsMoistureMax    float64 `yaml:"plains_moisture_max" json:"plains_moisture_max"`
	ForestMoistureMax    float64 `yaml:"forest_moisture_max" json:"forest_moisture_max"`

	// Rivers.
	RiverSeedOffset       int64   `yaml:"river_seed_offset" json:"river_seed_offset"`
	RiverPercentage       float64 `yaml:"river_percentage" json:"river_percentage"` // Share of land cells rivers may cover
	RiverSourceMinFitness float64 `yaml:"river_source_min_fitness" json:"river_source_min_fitness"`
	RiverHighFitness      float64 `yaml:"river_high_fitness" json:"river_high_fitness"`
	RiverMediumFitness    float64 `yaml:"river_medium_fitness" json:"river_medium_fitness"`
	WeightHighPriority    float64 `yaml:"weight_high_priority" json:"weight_high_priority"`
	WeightMediumPriority  float64 `yaml:"weight_medium_priority" json:"weight_medium_priority"`
	WeightLowPriority     float64 `yaml:"weight_low_priority" json:"weight_low_priority"`
	RiverSteepnessWeight  float64 `yaml:"river_steepness_weight" json:"river_steepness_weight"`
	RiverFlatFlowChance   float64 `yaml:"river_flat_flow_chance" json:"river_flat_flow_chance"`
	MaxRiverTraceSteps    int     `yaml:"max_river_trace_steps" json:"max_river_trace_steps"`
	MinRiverLength        int     `yaml:"min_river_length" json:"min_river_length"` // In cells, mouth included

	// Features.
	FeatureSeedOffset      int64   `yaml:"feature_seed_offset" json:"feature_seed_offset"`
	FeaturePlacementChance float64 `yaml:"feature_placement_chance" json:"feature_placement_chance"`
	SpecialFeatureChance   float64 `yaml:"special_feature_chance" json:"special_feature_chance"`
	CastleMinElevation     int     `yaml:"castle_min_elevation" json:"castle_min_elevation"`
	MegafloraMinMoisture   float64 `yaml:"megaflora_min_moisture" json:"megaflora_min_moisture"` // Strictly greater
}

// DefaultGenConfig returns the tuned production configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		MinElevation:      0,
		WaterLevel:        1,
		HillElevation:     3,
		MountainElevation: 5,
		MaxElevation:      6,

		LandSeedOffset:       0,
		ChunkSizeMin:         8,
		ChunkSizeMax:         40,
		ChunkExpansionChance: 0.75,
		ChunkExpansionDecay:  0.92,
		ElevationBumpChance:  0.25,
		LandIterationFactor:  10,

		ErosionPasses:         2,
		ErosionLandThreshold:  0.25,
		ErosionWaterThreshold: 0.75,

		MoistureSeedOffset:   1,
		MoistureNoise:        NoiseSimplex,
		MoistureNoiseScale:   0.08,
		MoistureOctaves:      3,
		CoastalMoistureBoost: 0.15,
		DesertMoistureMax:    0.25,
		GrasslandMoistureMax: 0.45,
		PlainsMoistureMax:    0.6,
		ForestMoistureMax:    0.75,

		RiverSeedOffset:       100,
		RiverPercentage:       0.1,
		RiverSourceMinFitness: 0.15,
		RiverHighFitness:      0.5,
		RiverMediumFitness:    0.3,
		WeightHighPriority:    4,
		WeightMediumPriority:  2,
		WeightLowPriority:     1,
		RiverSteepnessWeight:  1,
		RiverFlatFlowChance:   0.35,
		MaxRiverTraceSteps:    64,
		MinRiverLength:        3,

		FeatureSeedOffset:      200,
		FeaturePlacementChance: 0.7,
		SpecialFeatureChance:   0.02,
		CastleMinElevation:     2,
		MegafloraMinMoisture:   0.7,
	}
}

// SmallTestConfig returns the default tuning with smaller land chunks, for
// grids of a few hundred cells.
func SmallTestConfig() GenConfig {
	cfg := DefaultGenConfig()
	cfg.ChunkSizeMin = 3
	cfg.ChunkSizeMax = 12
	cfg.MoistureNoiseScale = 0.2
	return cfg
}

// Validate checks ranges and orderings the stages rely on.
func (c GenConfig) Validate() error {
	var problems []string
	check := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	check(c.MinElevation < c.WaterLevel, "min_elevation must be below water_level")
	check(c.WaterLevel <= c.HillElevation, "water_level must not exceed hill_elevation")
	check(c.HillElevation <= c.MountainElevation, "hill_elevation must not exceed mountain_elevation")
	check(c.MountainElevation <= c.MaxElevation, "mountain_elevation must not exceed max_elevation")
	check(c.MaxElevation > c.WaterLevel, "max_elevation must exceed water_level")

	check(c.ChunkSizeMin >= 1 && c.ChunkSizeMin <= c.ChunkSizeMax, "chunk sizes must satisfy 1 <= min <= max")
	check(unit(c.ChunkExpansionChance), "chunk_expansion_chance must be in [0,1]")
	check(unit(c.ChunkExpansionDecay), "chunk_expansion_decay must be in [0,1]")
	check(unit(c.ElevationBumpChance), "elevation_bump_chance must be in [0,1]")
	check(c.LandIterationFactor >= 1, "land_iteration_factor must be positive")

	check(c.ErosionPasses >= 0, "erosion_passes must not be negative")
	check(unit(c.ErosionLandThreshold) && unit(c.ErosionWaterThreshold), "erosion thresholds must be in [0,1]")
	check(c.ErosionLandThreshold < c.ErosionWaterThreshold, "erosion_land_threshold must be below erosion_water_threshold")

	check(c.MoistureNoise == NoiseSimplex || c.MoistureNoise == NoisePerlin, "moisture_noise must be simplex or perlin")
	check(c.MoistureNoiseScale > 0, "moisture_noise_scale must be positive")
	check(c.MoistureOctaves >= 1, "moisture_octaves must be positive")
	check(unit(c.CoastalMoistureBoost), "coastal_moisture_boost must be in [0,1]")
	check(unit(c.DesertMoistureMax) && unit(c.ForestMoistureMax), "moisture thresholds must be in [0,1]")
	check(c.DesertMoistureMax < c.GrasslandMoistureMax &&
		c.GrasslandMoistureMax < c.PlainsMoistureMax &&
		c.PlainsMoistureMax < c.ForestMoistureMax, "moisture thresholds must be strictly increasing")

	check(unit(c.RiverPercentage), "river_percentage must be in [0,1]")
	check(unit(c.RiverSourceMinFitness), "river_source_min_fitness must be in [0,1]")
	check(c.RiverMediumFitness <= c.RiverHighFitness, "river_medium_fitness must not exceed river_high_fitness")
	check(c.WeightHighPriority > c.WeightMediumPriority &&
		c.WeightMediumPriority > c.WeightLowPriority &&
		c.WeightLowPriority > 0, "river weights must satisfy high > medium > low > 0")
	check(c.RiverSteepnessWeight > 0, "river_steepness_weight must be positive")
	check(unit(c.RiverFlatFlowChance), "river_flat_flow_chance must be in [0,1]")
	check(c.MaxRiverTraceSteps >= 1, "max_river_trace_steps must be positive")
	check(c.MinRiverLength >= 2, "min_river_length must be at least 2")

	check(unit(c.FeaturePlacementChance), "feature_placement_chance must be in [0,1]")
	check(unit(c.SpecialFeatureChance), "special_feature_chance must be in [0,1]")
	check(unit(c.MegafloraMinMoisture), "megaflora_min_moisture must be in [0,1]")

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}
