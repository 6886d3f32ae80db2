// Map generation pipeline: land, climate, rivers, features, in that order,
// over one cell arena. Each stage draws from its own generator seeded with
// the master seed plus a fixed offset.

package world

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

var (
	// ErrDimensionMismatch means the cell slice does not hold width*height cells.
	ErrDimensionMismatch = errors.New("cell count does not match grid dimensions")
	// ErrGenerationCanceled wraps the context error when a run is aborted.
	ErrGenerationCanceled = errors.New("map generation canceled")
)

// Report collects the statistics of one generation run.
type Report struct {
	Seed     int64         `json:"seed"`
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	Land     LandStats     `json:"land"`
	Rivers   RiverStats    `json:"rivers"`
	Features FeatureStats  `json:"features"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Generator runs the pipeline with a fixed configuration.
type Generator struct {
	cfg GenConfig
	log *slog.Logger
}

// NewGenerator returns a generator. A nil logger uses slog.Default().
func NewGenerator(cfg GenConfig, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{cfg: cfg, log: logger}
}

// Config returns the generator's tuning.
func (g *Generator) Config() GenConfig {
	return g.cfg
}

// Generate runs every stage over cells in place. cells must hold
// width*height records; whatever they contain is reset to the all-underwater
// starting state first. An empty grid is a no-op. On cancellation the returned error matches both
// ErrGenerationCanceled and the context error; stages that already finished
// are not rolled back.
func (g *Generator) Generate(ctx context.Context, cells []Cell, masterSeed int64, width, height int, landPercentage float64) (Report, error) {
	report := Report{Seed: masterSeed, Width: width, Height: height}
	if width < 0 || height < 0 || len(cells) != width*height {
		return report, fmt.Errorf("%w: %d cells for %dx%d", ErrDimensionMismatch, len(cells), width, height)
	}
	if err := g.cfg.Validate(); err != nil {
		return report, err
	}
	if len(cells) == 0 {
		return report, nil
	}

	start := time.Now()
	resetCells(cells, width, g.cfg)
	grid := &Grid{Width: width, Height: height, Cells: cells}

	stage := func(name string, fn func() error) error {
		if err := ctx.Err(); err != nil {
			return canceled(name, err)
		}
		t := time.Now()
		if err := fn(); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return canceled(name, err)
			}
			return fmt.Errorf("%s: %w", name, err)
		}
		g.log.Debug("generation stage done", "stage", name, "elapsed", time.Since(t))
		return nil
	}

	err := stage("land", func() error {
		rng := rand.New(rand.NewSource(masterSeed + g.cfg.LandSeedOffset))
		stats, err := RaiseLand(ctx, grid, landPercentage, rng, g.cfg)
		report.Land = stats
		return err
	})
	if err == nil {
		err = stage("climate", func() error {
			return ApplyClimate(ctx, grid, masterSeed, g.cfg)
		})
	}
	if err == nil {
		err = stage("rivers", func() error {
			rng := rand.New(rand.NewSource(masterSeed + g.cfg.RiverSeedOffset))
			stats, err := CarveRivers(ctx, grid, rng, g.cfg)
			report.Rivers = stats
			return err
		})
	}
	if err == nil {
		err = stage("features", func() error {
			rng := rand.New(rand.NewSource(masterSeed + g.cfg.FeatureSeedOffset))
			stats, err := PlaceFeatures(ctx, grid, rng, g.cfg)
			report.Features = stats
			return err
		})
	}
	report.Elapsed = time.Since(start)
	if err != nil {
		g.log.Warn("map generation aborted", "seed", masterSeed, "error", err)
		return report, err
	}

	g.log.Info("map generated",
		"seed", masterSeed,
		"width", width,
		"height", height,
		"land", report.Land.LandCells,
		"rivers", report.Rivers.Committed,
		"decorated", report.Features.Decorated,
		"elapsed", report.Elapsed,
	)
	return report, nil
}

// GenerateGrid allocates a grid of the given size and runs the pipeline on it.
func (g *Generator) GenerateGrid(ctx context.Context, masterSeed int64, width, height int, landPercentage float64) (*Grid, Report, error) {
	grid := NewGrid(width, height, g.cfg)
	report, err := g.Generate(ctx, grid.Cells, masterSeed, grid.Width, grid.Height, landPercentage)
	return grid, report, err
}

func canceled(stage string, err error) error {
	return fmt.Errorf("%w at %s stage: %w", ErrGenerationCanceled, stage, err)
}
