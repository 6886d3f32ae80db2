// Package world provides the hex grid, cell records and the map generation
// pipeline (land, climate, rivers, features).
// Cells live in a flat arena indexed in offset coordinates (x, z), with odd
// rows shifted half a cell towards +x. Axial coordinates are available for
// distance queries.
package world

import "math"

// Direction names one of the six hex edges.
type Direction uint8

const (
	DirNE Direction = iota
	DirE
	DirSE
	DirSW
	DirW
	DirNW
)

// DirectionCount is the number of hex edges.
const DirectionCount = 6

// NoNeighbor is returned when a neighbor does not exist.
const NoNeighbor = -1

// Opposite returns the direction pointing back across the same edge.
func (d Direction) Opposite() Direction {
	return (d + 3) % DirectionCount
}

// Valid reports whether d is one of the six edges.
func (d Direction) Valid() bool {
	return d < DirectionCount
}

// String returns the compass abbreviation for d.
func (d Direction) String() string {
	switch d {
	case DirNE:
		return "NE"
	case DirE:
		return "E"
	case DirSE:
		return "SE"
	case DirSW:
		return "SW"
	case DirW:
		return "W"
	case DirNW:
		return "NW"
	default:
		return "?"
	}
}

// Opposite returns the direction pointing back across the same edge.
func Opposite(d Direction) Direction {
	return d.Opposite()
}

// Offset steps per direction. Row parity selects the table.
var (
	evenRowOffsets = [DirectionCount][2]int{
		{0, 1},   // NE
		{1, 0},   // E
		{0, -1},  // SE
		{-1, -1}, // SW
		{-1, 0},  // W
		{-1, 1},  // NW
	}
	oddRowOffsets = [DirectionCount][2]int{
		{1, 1},  // NE
		{1, 0},  // E
		{1, -1}, // SE
		{0, -1}, // SW
		{-1, 0}, // W
		{0, 1},  // NW
	}
)

// NeighborByDirection returns the index of the neighbor of index in direction
// d, or NoNeighbor when it would fall off the grid. There is no wraparound.
func NeighborByDirection(index int, d Direction, width, height int) int {
	if width <= 0 || height <= 0 || index < 0 || index >= width*height || !d.Valid() {
		return NoNeighbor
	}
	x, z := index%width, index/width

	step := evenRowOffsets[d]
	if z&1 == 1 {
		step = oddRowOffsets[d]
	}
	nx, nz := x+step[0], z+step[1]
	if nx < 0 || nx >= width || nz < 0 || nz >= height {
		return NoNeighbor
	}
	return nz*width + nx
}

// NeighborIndices returns the valid neighbors of index, in direction order.
// Interior cells have six; edge and corner cells fewer.
func NeighborIndices(index, width, height int) []int {
	if width <= 0 || height <= 0 || index < 0 || index >= width*height {
		return nil
	}
	result := make([]int, 0, DirectionCount)
	for d := Direction(0); d < DirectionCount; d++ {
		if n := NeighborByDirection(index, d, width, height); n != NoNeighbor {
			result = append(result, n)
		}
	}
	return result
}

// HexCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// OffsetToAxial converts offset coordinates (odd rows shifted right) to axial.
func OffsetToAxial(x, z int) HexCoord {
	return HexCoord{Q: x - (z-(z&1))/2, R: z}
}

// AxialToOffset is the inverse of OffsetToAxial.
func AxialToOffset(h HexCoord) (x, z int) {
	return h.Q + (h.R-(h.R&1))/2, h.R
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b HexCoord) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	ds := abs(a.S() - b.S())
	// Max of the three absolute differences in cube coordinates.
	return max(dq, dr, ds)
}

// WorldPosition returns the centre of cell (x, z) in continuous space, one
// unit between horizontal neighbors.
func WorldPosition(x, z int) (float64, float64) {
	px := float64(x) + 0.5*float64(z&1)
	pz := float64(z) * math.Sqrt(3.0) / 2.0
	return px, pz
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
