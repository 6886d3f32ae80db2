// Command hexgen generates hex maps and manages the results.
//
//	hexgen generate [-config job.yaml] [-seed N] [-width W] [-height H] ...
//	hexgen inspect  [-ascii] map.hxrg[.zst]
//	hexgen list     [-db maps.db]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/hexgen/internal/config"
	"github.com/talgya/hexgen/internal/entropy"
	"github.com/talgya/hexgen/internal/persistence"
	"github.com/talgya/hexgen/internal/region"
	"github.com/talgya/hexgen/internal/world"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "generate":
		generateCmd(os.Args[2:])
	case "inspect":
		inspectCmd(os.Args[2:])
	case "list":
		listCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: hexgen <generate|inspect|list> [flags]")
}

func generateCmd(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	configPath := fs.String("config", "", "job config path (yaml)")
	name := fs.String("name", "", "map name")
	seed := fs.Int64("seed", 0, "master seed (0 = random)")
	width := fs.Int("width", 0, "grid width in cells")
	height := fs.Int("height", 0, "grid height in cells")
	land := fs.Float64("land", 0, "land percentage in [0,1]")
	noise := fs.String("noise", "", "moisture noise backend: simplex or perlin")
	out := fs.String("out", "", "snapshot path (.zst suffix compresses)")
	dbPath := fs.String("db", "", "sqlite catalogue path (optional)")
	_ = fs.Parse(args)

	// ── Job ───────────────────────────────────────────────────────────
	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			slog.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			cfg.Map.Name = *name
		case "seed":
			cfg.Map.Seed = *seed
		case "width":
			cfg.Map.Width = *width
		case "height":
			cfg.Map.Height = *height
		case "land":
			cfg.Map.LandPercentage = *land
		case "noise":
			cfg.Generation.MoistureNoise = *noise
		case "out":
			cfg.Output.Snapshot = *out
		case "db":
			cfg.Output.Database = *dbPath
		}
	})
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid job", "error", err)
		os.Exit(2)
	}
	cfg.Map.Seed = entropy.SeedOr(cfg.Map.Seed)

	// ── Generation ────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen := world.NewGenerator(cfg.Generation, slog.Default())
	grid, report, err := gen.GenerateGrid(ctx, cfg.Map.Seed, cfg.Map.Width, cfg.Map.Height, cfg.Map.LandPercentage)
	if errors.Is(err, world.ErrGenerationCanceled) {
		slog.Warn("generation interrupted", "error", err)
		os.Exit(130)
	}
	if err != nil {
		slog.Error("generation failed", "error", err)
		os.Exit(1)
	}

	sum := world.Summarize(grid)
	slog.Info("map generated",
		"seed", cfg.Map.Seed,
		"size", fmt.Sprintf("%dx%d", grid.Width, grid.Height),
		"cells", humanize.Comma(int64(sum.Cells)),
		"land", humanize.Comma(int64(sum.Land)),
		"river_cells", humanize.Comma(int64(sum.RiverCells)),
		"rivers", report.Rivers.Committed,
		"decorated", humanize.Comma(int64(sum.Decorated)),
		"elapsed", report.Elapsed.Round(time.Millisecond),
	)

	r := region.New(cfg.Map.Name, cfg.Map.Seed, cfg.Map.LandPercentage, grid)

	// ── Snapshot ──────────────────────────────────────────────────────
	if cfg.Output.Snapshot != "" {
		size, err := region.WriteFile(cfg.Output.Snapshot, r)
		if err != nil {
			slog.Error("failed to write snapshot", "path", cfg.Output.Snapshot, "error", err)
			os.Exit(1)
		}
		slog.Info("snapshot written",
			"path", cfg.Output.Snapshot,
			"size", humanize.Bytes(uint64(size)),
			"compressed", region.Compressed(cfg.Output.Snapshot),
		)
	}

	// ── Database ──────────────────────────────────────────────────────
	if cfg.Output.Database != "" {
		if err := saveToCatalogue(cfg.Output.Database, r); err != nil {
			slog.Error("failed to save map", "path", cfg.Output.Database, "error", err)
			os.Exit(1)
		}
	}

	fmt.Println(r.ID)
}

func inspectCmd(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	ascii := fs.Bool("ascii", false, "print the map as text")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: hexgen inspect [-ascii] <snapshot>")
		os.Exit(2)
	}
	path := fs.Arg(0)

	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "stat:", err)
		os.Exit(1)
	}
	r, err := region.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}

	g := r.Grid
	sum := world.Summarize(g)
	fmt.Printf("id:         %s\n", r.ID)
	fmt.Printf("name:       %s\n", r.Name)
	fmt.Printf("seed:       %d\n", r.Seed)
	fmt.Printf("generated:  %s (%s)\n", r.GeneratedAt.Format(time.RFC3339), humanize.Time(r.GeneratedAt))
	fmt.Printf("size:       %dx%d, %s cells, %s on disk\n",
		g.Width, g.Height, humanize.Comma(int64(sum.Cells)), humanize.Bytes(uint64(info.Size())))
	fmt.Printf("land:       %s (%.1f%%, requested %.0f%%)\n",
		humanize.Comma(int64(sum.Land)), 100*g.LandFraction(), 100*r.LandPercentage)
	fmt.Printf("rivers:     %d cells, %d mouths\n", sum.RiverCells, sum.RiverMouths)
	fmt.Printf("decorated:  %d cells\n", sum.Decorated)
	for b := world.Biome(0); b < world.BiomeCount; b++ {
		fmt.Printf("  %-8s %d\n", b, sum.Biomes[b])
	}
	for _, s := range []world.Special{world.SpecialCastle, world.SpecialZiggurat, world.SpecialMegaflora} {
		if n := sum.Specials[s.String()]; n > 0 {
			fmt.Printf("  %-8s %d\n", s, n)
		}
	}
	for _, c := range r.Connections {
		fmt.Printf("connection: %s via %s\n", c.RegionID, c.Edge)
	}

	if *ascii {
		fmt.Print(render(g))
	}
}

// render draws one character per cell, odd rows indented half a cell.
func render(g *world.Grid) string {
	var b strings.Builder
	for z := g.Height - 1; z >= 0; z-- {
		if z&1 == 1 {
			b.WriteByte(' ')
		}
		for x := 0; x < g.Width; x++ {
			b.WriteByte(glyph(g.At(x, z)))
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func glyph(c *world.Cell) byte {
	switch {
	case c.IsUnderwater():
		return '~'
	case c.HasRiver():
		return '='
	case c.SpecialIndex != world.SpecialNone:
		return '*'
	}
	switch c.TerrainTypeIndex {
	case world.BiomeSand:
		return '.'
	case world.BiomeGrass:
		return ','
	case world.BiomeMud:
		return '%'
	case world.BiomeStone:
		return '^'
	case world.BiomeSnow:
		return 'A'
	}
	return '?'
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	dbPath := fs.String("db", "data/maps.db", "sqlite catalogue path")
	_ = fs.Parse(args)

	maps, err := listCatalogue(*dbPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list:", err)
		os.Exit(1)
	}
	for _, m := range maps {
		fmt.Printf("%s  %-20s seed=%-20d %dx%d land=%.2f  %s\n",
			m.ID, m.Name, m.Seed, m.Width, m.Height, m.LandPercentage, humanize.Time(m.GeneratedTime()))
	}
}

// saveToCatalogue stores r in the database at path and records it as the
// last generated map. The database is closed before returning.
func saveToCatalogue(path string, r *region.Region) (err error) {
	db, err := persistence.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); err == nil {
			err = cerr
		}
	}()

	if err := db.SaveRegion(r); err != nil {
		return err
	}
	if err := db.SaveMeta("last_map", r.ID.String()); err != nil {
		slog.Warn("failed to record last map", "error", err)
	}
	return nil
}

func listCatalogue(path string) (maps []persistence.MapInfo, err error) {
	db, err := persistence.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := db.Close(); err == nil {
			err = cerr
		}
	}()
	return db.ListMaps()
}
