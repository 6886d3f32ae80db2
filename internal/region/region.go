// Package region reads and writes generated maps in the HXRG region format:
// a fixed 32-byte header, variable metadata, then 16 bytes per cell.
// All integers are little-endian.
package region

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/hexgen/internal/world"
)

// Magic opens every region file.
const Magic = "HXRG"

// Version is the format revision written by Encode.
const Version uint16 = 1

// Layout sizes in bytes.
const (
	HeaderSize = 32
	CellSize   = 16
)

// MaxNameLength bounds the region name stored in metadata.
const MaxNameLength = 1<<16 - 1

// MaxCells bounds width*height in a region. Larger headers are rejected as
// corrupt before any cell memory is allocated.
const MaxCells = 1 << 22

var (
	ErrBadMagic           = errors.New("region: bad magic")
	ErrUnsupportedVersion = errors.New("region: unsupported version")
	ErrCorrupt            = errors.New("region: corrupt data")
)

// Connection links this region to a neighboring region across one edge.
type Connection struct {
	RegionID uuid.UUID       `json:"region_id"`
	Edge     world.Direction `json:"edge"`
}

// Region is a generated grid plus the metadata needed to identify and
// regenerate it.
type Region struct {
	ID             uuid.UUID    `json:"id"`
	Name           string       `json:"name"`
	Seed           int64        `json:"seed"`
	LandPercentage float64      `json:"land_percentage"`
	GeneratedAt    time.Time    `json:"generated_at"`
	Connections    []Connection `json:"connections,omitempty"`
	Grid           *world.Grid  `json:"grid"`
}

// New wraps a generated grid in a region with a fresh ID.
func New(name string, seed int64, landPercentage float64, grid *world.Grid) *Region {
	return &Region{
		ID:             uuid.New(),
		Name:           name,
		Seed:           seed,
		LandPercentage: landPercentage,
		GeneratedAt:    time.Now().UTC(),
		Grid:           grid,
	}
}

// Connect records a link to another region across edge.
func (r *Region) Connect(other uuid.UUID, edge world.Direction) {
	r.Connections = append(r.Connections, Connection{RegionID: other, Edge: edge})
}
