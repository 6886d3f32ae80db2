package world

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// strip builds a one-row grid with the given elevations.
func strip(cfg GenConfig, elevations ...int) *Grid {
	g := NewGrid(len(elevations), 1, cfg)
	for i, e := range elevations {
		g.Cells[i].Elevation = e
		g.Cells[i].Moisture = 1
	}
	return g
}

func TestTraceRiverFollowsSlopeToWater(t *testing.T) {
	cfg := DefaultGenConfig()
	g := strip(cfg, 5, 4, 3, 2, 1, 0)
	path := TraceRiver(g, 0, rand.New(rand.NewSource(1)), cfg)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, path)
}

func TestTraceRiverFlatFlow(t *testing.T) {
	cfg := DefaultGenConfig()
	g := strip(cfg, 2, 2, 2, 0)

	cfg.RiverFlatFlowChance = 0
	assert.Equal(t, []int{0}, TraceRiver(g, 0, rand.New(rand.NewSource(1)), cfg))

	cfg.RiverFlatFlowChance = 1
	assert.Equal(t, []int{0, 1, 2, 3}, TraceRiver(g, 0, rand.New(rand.NewSource(1)), cfg))
}

func TestTraceRiverStopsBeforeExistingRiver(t *testing.T) {
	cfg := DefaultGenConfig()
	g := strip(cfg, 4, 3, 2, 1, 0)
	g.Cells[2].HasIncomingRiver = true
	assert.Equal(t, []int{0, 1}, TraceRiver(g, 0, rand.New(rand.NewSource(1)), cfg))
}

func TestTraceRiverStepCap(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.MaxRiverTraceSteps = 2
	g := strip(cfg, 5, 4, 3, 2, 1, 0)
	assert.Equal(t, []int{0, 1, 2}, TraceRiver(g, 0, rand.New(rand.NewSource(1)), cfg))
}

func TestTraceRiverNeverClimbs(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.RiverFlatFlowChance = 1
	g := strip(cfg, 3, 3, 4, 1, 0)
	assert.Equal(t, []int{0, 1}, TraceRiver(g, 0, rand.New(rand.NewSource(1)), cfg))
}

func TestCarveRiversCommitsStrip(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.RiverPercentage = 1
	cfg.RiverSourceMinFitness = 0.9 // only the top cell qualifies
	g := strip(cfg, 6, 5, 4, 3, 2, 1, 0)

	stats, err := CarveRivers(context.Background(), g, rand.New(rand.NewSource(9)), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Candidates)
	assert.Equal(t, 1, stats.Committed)
	assert.Equal(t, 6, stats.Cells)

	for i := 0; i < 6; i++ {
		c := g.Cells[i]
		assert.True(t, c.HasOutgoingRiver, "cell %d", i)
		assert.Equal(t, DirE, c.OutgoingRiverDirection, "cell %d", i)
	}
	for i := 1; i < 7; i++ {
		c := g.Cells[i]
		assert.True(t, c.HasIncomingRiver, "cell %d", i)
		assert.Equal(t, DirW, c.IncomingRiverDirection, "cell %d", i)
	}
	assert.False(t, g.Cells[0].HasIncomingRiver)
	assert.False(t, g.Cells[6].HasOutgoingRiver)
}

func TestCarveRiversDiscardsShortTraces(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.RiverPercentage = 1
	cfg.MinRiverLength = 10
	g := strip(cfg, 6, 5, 4, 3, 2, 1, 0)

	stats, err := CarveRivers(context.Background(), g, rand.New(rand.NewSource(9)), cfg)
	require.NoError(t, err)
	assert.Zero(t, stats.Committed)
	assert.Positive(t, stats.Discarded)
	for i := range g.Cells {
		assert.False(t, g.Cells[i].HasRiver(), "cell %d", i)
	}
}

func TestCarveRiversDiscardsInlandPit(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.RiverPercentage = 1
	cfg.MinRiverLength = 2
	cfg.RiverFlatFlowChance = 0

	// A raised centre on a flat 5x5 plateau: the trace steps off the peak
	// and stalls on interior dry land.
	g := NewGrid(5, 5, cfg)
	for i := range g.Cells {
		g.Cells[i].Elevation = 3
	}
	peak := g.Index(2, 2)
	g.Cells[peak].Elevation = 5
	g.Cells[peak].Moisture = 1

	stats, err := CarveRivers(context.Background(), g, rand.New(rand.NewSource(4)), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Candidates)
	assert.Equal(t, 1, stats.Traced)
	assert.Equal(t, 1, stats.Discarded)
	assert.Zero(t, stats.Committed)
	for i := range g.Cells {
		assert.False(t, g.Cells[i].HasRiver(), "cell %d", i)
	}
}

func TestCarveRiversKeepsRiverEndingAtExistingRiver(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.RiverPercentage = 1
	cfg.MinRiverLength = 2
	cfg.RiverFlatFlowChance = 0

	g := NewGrid(5, 5, cfg)
	for i := range g.Cells {
		g.Cells[i].Elevation = 3
	}
	peak := g.Index(2, 2)
	g.Cells[peak].Elevation = 5
	g.Cells[peak].Moisture = 1
	// Everything beyond the peak's neighbors already carries a river.
	ring := map[int]bool{peak: true}
	for _, nb := range g.Neighbors(peak) {
		ring[nb] = true
	}
	for i := range g.Cells {
		if !ring[i] {
			g.Cells[i].HasIncomingRiver = true
		}
	}

	stats, err := CarveRivers(context.Background(), g, rand.New(rand.NewSource(4)), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Committed)
	assert.True(t, g.Cells[peak].HasOutgoingRiver)
}

func TestCarveRiversZeroBudget(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.RiverPercentage = 0
	g := strip(cfg, 6, 5, 4, 3, 2, 1, 0)

	stats, err := CarveRivers(context.Background(), g, rand.New(rand.NewSource(9)), cfg)
	require.NoError(t, err)
	assert.Zero(t, stats.Traced)
	assert.Zero(t, stats.Committed)
}

func TestSourceFitness(t *testing.T) {
	cfg := DefaultGenConfig()
	c := Cell{Elevation: cfg.MaxElevation, WaterLevel: cfg.WaterLevel, Moisture: 0.5}
	assert.InDelta(t, 0.5, SourceFitness(&c, cfg), 1e-9)

	c.Elevation = cfg.WaterLevel
	assert.Zero(t, SourceFitness(&c, cfg))

	c.Elevation = cfg.MinElevation
	assert.Zero(t, SourceFitness(&c, cfg))
}

// checkRiverInvariants walks every river on g and fails on broken links,
// uphill flow or short rivers.
func checkRiverInvariants(t *testing.T, g *Grid, cfg GenConfig) int {
	t.Helper()
	rivers := 0
	for i := range g.Cells {
		c := &g.Cells[i]
		if c.HasOutgoingRiver {
			nb := g.Neighbor(i, c.OutgoingRiverDirection)
			require.NotEqual(t, NoNeighbor, nb, "cell %d flows off the map", i)
			next := &g.Cells[nb]
			assert.LessOrEqual(t, next.Elevation, c.Elevation, "cell %d flows uphill", i)
			assert.True(t, next.HasIncomingRiver, "cell %d target lacks incoming flag", i)
			assert.Equal(t, c.OutgoingRiverDirection.Opposite(), next.IncomingRiverDirection)
		}
		if c.HasIncomingRiver {
			nb := g.Neighbor(i, c.IncomingRiverDirection)
			require.NotEqual(t, NoNeighbor, nb)
			prev := &g.Cells[nb]
			assert.True(t, prev.HasOutgoingRiver)
			assert.Equal(t, c.IncomingRiverDirection.Opposite(), prev.OutgoingRiverDirection)
		}
		if c.HasOutgoingRiver && !c.HasIncomingRiver {
			rivers++
			length := 1
			cur := i
			for g.Cells[cur].HasOutgoingRiver && length <= len(g.Cells) {
				cur = g.Neighbor(cur, g.Cells[cur].OutgoingRiverDirection)
				length++
			}
			assert.GreaterOrEqual(t, length, cfg.MinRiverLength, "river from %d", i)
		}
		if c.HasIncomingRiver && !c.HasOutgoingRiver {
			assert.True(t, riverEndOK(g, i), "river ends inland at cell %d", i)
		}
	}
	return rivers
}

// riverEndOK reports whether the river ending at i reaches water, the map
// edge, or another river.
func riverEndOK(g *Grid, i int) bool {
	if g.Cells[i].IsUnderwater() {
		return true
	}
	neighbors := g.Neighbors(i)
	if len(neighbors) < DirectionCount {
		return true
	}
	upstream := g.Neighbor(i, g.Cells[i].IncomingRiverDirection)
	for _, nb := range neighbors {
		if nb != upstream && g.Cells[nb].HasRiver() {
			return true
		}
	}
	return false
}

func TestCarveRiversInvariantsOnGeneratedMaps(t *testing.T) {
	cfg := SmallTestConfig()
	total := 0
	for _, seed := range []int64{3, 17, 54321, 777, 2024} {
		g := NewGrid(25, 25, cfg)
		_, err := RaiseLand(context.Background(), g, 0.6, rand.New(rand.NewSource(seed)), cfg)
		require.NoError(t, err)
		require.NoError(t, ApplyClimate(context.Background(), g, seed, cfg))

		stats, err := CarveRivers(context.Background(), g, rand.New(rand.NewSource(seed+cfg.RiverSeedOffset)), cfg)
		require.NoError(t, err)
		assert.LessOrEqual(t, stats.Cells, stats.Budget)

		rivers := checkRiverInvariants(t, g, cfg)
		assert.Equal(t, stats.Committed, rivers, "seed %d", seed)
		total += rivers
	}
	assert.Positive(t, total, "no rivers carved on any seed")
}
