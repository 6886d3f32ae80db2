// Package config loads generation jobs from YAML.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/talgya/hexgen/internal/world"
)

//go:embed schema.json
var schemaJSON string

var schema = jsonschema.MustCompileString("hexgen.schema.json", schemaJSON)

// MapConfig describes the map to generate.
type MapConfig struct {
	Name           string  `yaml:"name"`
	Seed           int64   `yaml:"seed"` // 0 picks a random seed
	Width          int     `yaml:"width"`
	Height         int     `yaml:"height"`
	LandPercentage float64 `yaml:"land_percentage"`
}

// OutputConfig says where results go. Empty paths are skipped.
type OutputConfig struct {
	Snapshot string `yaml:"snapshot"`
	Database string `yaml:"database"`
}

// Config is one generation job.
type Config struct {
	Map        MapConfig       `yaml:"map"`
	Generation world.GenConfig `yaml:"generation"`
	Output     OutputConfig    `yaml:"output"`
}

// Default returns a 64x48 job with the production tuning.
func Default() Config {
	return Config{
		Map: MapConfig{
			Name:           "untitled",
			Width:          64,
			Height:         48,
			LandPercentage: 0.5,
		},
		Generation: world.DefaultGenConfig(),
		Output: OutputConfig{
			Snapshot: "maps/untitled.hxrg.zst",
		},
	}
}

// Load reads a job file. Fields the file omits keep their Default values.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(raw)
}

// Parse validates a YAML job document and decodes it over Default.
func Parse(raw []byte) (Config, error) {
	cfg := Default()

	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return cfg, fmt.Errorf("job yaml: %w", err)
	}
	if doc != nil {
		if err := validateDocument(doc); err != nil {
			return cfg, err
		}
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("job yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the map section and the generation tuning.
func (c Config) Validate() error {
	if c.Map.Width < 1 || c.Map.Height < 1 {
		return fmt.Errorf("%w: map size %dx%d", world.ErrInvalidConfig, c.Map.Width, c.Map.Height)
	}
	if c.Map.LandPercentage < 0 || c.Map.LandPercentage > 1 {
		return fmt.Errorf("%w: land_percentage %v", world.ErrInvalidConfig, c.Map.LandPercentage)
	}
	return c.Generation.Validate()
}

// validateDocument checks the raw document against the embedded schema.
// The YAML tree is round-tripped through JSON so the validator sees JSON types.
func validateDocument(doc any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("job yaml: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("job yaml: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %w", world.ErrInvalidConfig, err)
	}
	return nil
}
