package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hexgen/internal/persistence"
	"github.com/talgya/hexgen/internal/region"
	"github.com/talgya/hexgen/internal/world"
)

func TestRender(t *testing.T) {
	g := world.NewGrid(3, 2, world.DefaultGenConfig())
	g.At(1, 0).Elevation = 2
	g.At(1, 0).TerrainTypeIndex = world.BiomeGrass
	g.At(2, 1).Elevation = 5
	g.At(2, 1).TerrainTypeIndex = world.BiomeSnow

	lines := strings.Split(strings.TrimRight(render(g), "\n"), "\n")
	assert.Equal(t, []string{
		" ~ ~ A ",
		"~ , ~ ",
	}, lines)
}

func TestCatalogueRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maps.db")
	grid := world.NewGrid(4, 3, world.DefaultGenConfig())
	r := region.New("Tidewater", 12, 0.4, grid)

	require.NoError(t, saveToCatalogue(path, r))
	require.NoError(t, saveToCatalogue(path, r))

	maps, err := listCatalogue(path)
	require.NoError(t, err)
	require.Len(t, maps, 1)
	assert.Equal(t, r.ID.String(), maps[0].ID)

	// Every helper closed its handle, so the file can be reopened and read.
	db, err := persistence.Open(path)
	require.NoError(t, err)
	defer db.Close()
	last, err := db.GetMeta("last_map")
	require.NoError(t, err)
	assert.Equal(t, r.ID.String(), last)
}

func TestSaveToCatalogueRejectsMissingGrid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maps.db")
	r := region.New("empty", 1, 0.5, nil)
	require.Error(t, saveToCatalogue(path, r))

	maps, err := listCatalogue(path)
	require.NoError(t, err)
	assert.Empty(t, maps)
}
