// Rivers: weighted source selection and randomized steepest-descent tracing.

package world

import (
	"context"
	"math"
	"math/rand"

	"github.com/zyedidia/generic/mapset"
)

// RiverStats summarises one river pass.
type RiverStats struct {
	Budget     int // Cells rivers were allowed to cover
	Candidates int // Cells that qualified as sources
	Traced     int // Traces attempted
	Committed  int // Rivers written to the grid
	Discarded  int // Traces too short, over budget or ending inland
	Cells      int // Land cells covered by committed rivers
}

// SourceFitness scores a cell as a river source: height above sea level
// (normalised to [0, 1]) times moisture.
func SourceFitness(c *Cell, cfg GenConfig) float64 {
	span := cfg.MaxElevation - c.WaterLevel
	if span <= 0 {
		return 0
	}
	elevationFactor := clamp01(float64(c.Elevation-c.WaterLevel) / float64(span))
	return elevationFactor * c.Moisture
}

// sourceWeight buckets a fitness into one of three sampling weights.
func sourceWeight(fitness float64, cfg GenConfig) float64 {
	switch {
	case fitness >= cfg.RiverHighFitness:
		return cfg.WeightHighPriority
	case fitness >= cfg.RiverMediumFitness:
		return cfg.WeightMediumPriority
	default:
		return cfg.WeightLowPriority
	}
}

type riverSource struct {
	index  int
	weight float64
}

// CarveRivers picks sources by weighted sampling and traces each one
// downhill. The budget counts land cells only; a river mouth in water is
// free. Rivers shorter than cfg.MinRiverLength, costing more than what is
// left of the budget, or ending in an inland pit are dropped without
// touching the grid.
func CarveRivers(ctx context.Context, g *Grid, rng *rand.Rand, cfg GenConfig) (RiverStats, error) {
	var stats RiverStats
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	g.checkShape()

	budget := int(math.Floor(cfg.RiverPercentage * float64(g.LandCount())))
	stats.Budget = budget

	var candidates []riverSource
	for i := range g.Cells {
		c := &g.Cells[i]
		if c.IsUnderwater() || c.HasRiver() {
			continue
		}
		f := SourceFitness(c, cfg)
		if f >= cfg.RiverSourceMinFitness && f > 0 {
			candidates = append(candidates, riverSource{index: i, weight: sourceWeight(f, cfg)})
		}
	}
	stats.Candidates = len(candidates)

	for budget > 0 && len(candidates) > 0 {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		pick := pickWeighted(candidates, rng)
		src := candidates[pick].index
		// Swap-remove keeps the remaining order deterministic.
		candidates[pick] = candidates[len(candidates)-1]
		candidates = candidates[:len(candidates)-1]

		if g.Cells[src].HasRiver() {
			continue
		}

		path := TraceRiver(g, src, rng, cfg)
		stats.Traced++
		cost := landCells(g, path)
		if len(path) < cfg.MinRiverLength || cost > budget || !riverTerminates(g, path) {
			stats.Discarded++
			continue
		}

		commitRiver(g, path)
		budget -= cost
		stats.Committed++
		stats.Cells += cost
	}
	return stats, nil
}

// pickWeighted returns an index into candidates with probability
// proportional to its weight.
func pickWeighted(candidates []riverSource, rng *rand.Rand) int {
	total := 0.0
	for _, c := range candidates {
		total += c.weight
	}
	target := rng.Float64() * total
	for i, c := range candidates {
		target -= c.weight
		if target < 0 {
			return i
		}
	}
	return len(candidates) - 1
}

type riverStep struct {
	index int
	dir   Direction
	drop  int
}

// TraceRiver walks downhill from start and returns the visited cell indices
// in flow order. Downhill neighbors are chosen with probability proportional
// to the drop; on flat ground the walk continues to a random equal-height
// neighbor with cfg.RiverFlatFlowChance. The walk ends on reaching water
// (the water cell is the last entry), at a dead end, after
// cfg.MaxRiverTraceSteps moves, or in front of a cell that already carries a
// river. No cell appears twice. The grid is not modified.
func TraceRiver(g *Grid, start int, rng *rand.Rand, cfg GenConfig) []int {
	visited := mapset.New[int]()
	visited.Put(start)
	path := []int{start}

	cur := start
	for step := 0; step < cfg.MaxRiverTraceSteps; step++ {
		c := &g.Cells[cur]
		if c.IsUnderwater() {
			break
		}

		var downhill, flat []riverStep
		for d := Direction(0); d < DirectionCount; d++ {
			nb := g.Neighbor(cur, d)
			if nb == NoNeighbor || visited.Has(nb) {
				continue
			}
			drop := c.Elevation - g.Cells[nb].Elevation
			switch {
			case drop > 0:
				downhill = append(downhill, riverStep{index: nb, dir: d, drop: drop})
			case drop == 0:
				flat = append(flat, riverStep{index: nb, dir: d})
			}
		}

		var next riverStep
		switch {
		case len(downhill) > 0:
			next = pickSteepest(downhill, rng, cfg)
		case len(flat) > 0 && rng.Float64() < cfg.RiverFlatFlowChance:
			next = flat[rng.Intn(len(flat))]
		default:
			return path
		}

		if g.Cells[next.index].HasRiver() {
			break
		}
		visited.Put(next.index)
		path = append(path, next.index)
		cur = next.index
	}
	return path
}

func pickSteepest(steps []riverStep, rng *rand.Rand, cfg GenConfig) riverStep {
	total := 0.0
	for _, s := range steps {
		total += cfg.RiverSteepnessWeight * float64(s.drop)
	}
	target := rng.Float64() * total
	for _, s := range steps {
		target -= cfg.RiverSteepnessWeight * float64(s.drop)
		if target < 0 {
			return s
		}
	}
	return steps[len(steps)-1]
}

// riverTerminates reports whether path ends in water, on the map edge, or
// next to a cell that already carries a river. Anything else is a pit or a
// trace cut off by the step cap.
func riverTerminates(g *Grid, path []int) bool {
	last := path[len(path)-1]
	if g.Cells[last].IsUnderwater() {
		return true
	}
	neighbors := g.Neighbors(last)
	if len(neighbors) < DirectionCount {
		return true
	}
	for _, nb := range neighbors {
		if g.Cells[nb].HasRiver() {
			return true
		}
	}
	return false
}

func landCells(g *Grid, path []int) int {
	n := 0
	for _, i := range path {
		if !g.Cells[i].IsUnderwater() {
			n++
		}
	}
	return n
}

// commitRiver links each consecutive pair of cells in path.
func commitRiver(g *Grid, path []int) {
	for i := 0; i+1 < len(path); i++ {
		from, to := path[i], path[i+1]
		dir, ok := directionTo(g, from, to)
		if !ok {
			panic("world: river path cells are not adjacent")
		}
		g.Cells[from].HasOutgoingRiver = true
		g.Cells[from].OutgoingRiverDirection = dir
		g.Cells[to].HasIncomingRiver = true
		g.Cells[to].IncomingRiverDirection = dir.Opposite()
	}
}

// directionTo returns the direction leading from cell a to adjacent cell b.
func directionTo(g *Grid, a, b int) (Direction, bool) {
	for d := Direction(0); d < DirectionCount; d++ {
		if g.Neighbor(a, d) == b {
			return d, true
		}
	}
	return 0, false
}
