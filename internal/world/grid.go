package world

import "fmt"

// Grid is a rectangular hex map stored as one contiguous slice of cells.
// Index i holds the cell at (i % Width, i / Width).
type Grid struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Cells  []Cell `json:"cells"`
}

// NewCells allocates width*height cells, all underwater, with coordinates
// and sea level set. Non-positive dimensions yield an empty slice.
func NewCells(width, height int, cfg GenConfig) []Cell {
	if width <= 0 || height <= 0 {
		return []Cell{}
	}
	cells := make([]Cell, width*height)
	resetCells(cells, width, cfg)
	return cells
}

// resetCells puts every cell back into the all-underwater starting state:
// coordinates from its index, sea level set, no rivers, features or roads.
func resetCells(cells []Cell, width int, cfg GenConfig) {
	for i := range cells {
		cells[i] = Cell{
			X:          i % width,
			Z:          i / width,
			Elevation:  cfg.MinElevation,
			WaterLevel: cfg.WaterLevel,
		}
	}
}

// NewGrid creates an all-underwater grid of the given size.
func NewGrid(width, height int, cfg GenConfig) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Grid{
		Width:  width,
		Height: height,
		Cells:  NewCells(width, height, cfg),
	}
}

// Len returns the number of cells.
func (g *Grid) Len() int {
	return len(g.Cells)
}

// Index returns the flat index of (x, z), or NoNeighbor when out of bounds.
func (g *Grid) Index(x, z int) int {
	if x < 0 || x >= g.Width || z < 0 || z >= g.Height {
		return NoNeighbor
	}
	return z*g.Width + x
}

// At returns the cell at (x, z), or nil if out of bounds.
func (g *Grid) At(x, z int) *Cell {
	i := g.Index(x, z)
	if i == NoNeighbor {
		return nil
	}
	return &g.Cells[i]
}

// Neighbors returns the valid neighbor indices of cell i.
func (g *Grid) Neighbors(i int) []int {
	return NeighborIndices(i, g.Width, g.Height)
}

// Neighbor returns the neighbor of cell i in direction d, or NoNeighbor.
func (g *Grid) Neighbor(i int, d Direction) int {
	return NeighborByDirection(i, d, g.Width, g.Height)
}

// LandCount returns the number of cells at or above sea level.
func (g *Grid) LandCount() int {
	n := 0
	for i := range g.Cells {
		if !g.Cells[i].IsUnderwater() {
			n++
		}
	}
	return n
}

// LandFraction returns LandCount divided by the cell count (0 when empty).
func (g *Grid) LandFraction() float64 {
	if len(g.Cells) == 0 {
		return 0
	}
	return float64(g.LandCount()) / float64(len(g.Cells))
}

// checkShape panics when the cell slice does not match the declared size.
// Stages index neighbors arithmetically, so a mismatch is a caller bug.
func (g *Grid) checkShape() {
	if len(g.Cells) != g.Width*g.Height {
		panic(fmt.Sprintf("world: grid has %d cells, want %dx%d", len(g.Cells), g.Width, g.Height))
	}
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%dx%d, cells=%d, land=%d)", g.Width, g.Height, g.Len(), g.LandCount())
}
