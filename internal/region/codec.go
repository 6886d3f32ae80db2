package region

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/x448/float16"

	"github.com/talgya/hexgen/internal/world"
)

// maxDimension is the largest width or height a cell's u16 coordinates hold.
const maxDimension = math.MaxUint16 + 1

// decodeChunk caps how many cells Decode allocates ahead of the bytes
// actually read.
const decodeChunk = 1 << 14

var le = binary.LittleEndian

// Encode writes r in region format.
func Encode(w io.Writer, r *Region) error {
	g := r.Grid
	if g == nil {
		return fmt.Errorf("%w: region has no grid", ErrCorrupt)
	}
	if g.Width > maxDimension || g.Height > maxDimension {
		return fmt.Errorf("%w: grid %dx%d exceeds %d", ErrCorrupt, g.Width, g.Height, maxDimension)
	}
	if g.Width*g.Height > MaxCells {
		return fmt.Errorf("%w: grid %dx%d exceeds %d cells", ErrCorrupt, g.Width, g.Height, MaxCells)
	}
	if len(g.Cells) != g.Width*g.Height {
		return fmt.Errorf("%w: %d cells for %dx%d grid", ErrCorrupt, len(g.Cells), g.Width, g.Height)
	}
	for i := range g.Cells {
		c := &g.Cells[i]
		if !fitsInt16(c.Elevation) || !fitsInt16(c.WaterLevel) {
			return fmt.Errorf("%w: cell %d elevation %d / water level %d out of int16 range",
				ErrCorrupt, i, c.Elevation, c.WaterLevel)
		}
	}
	if len(r.Name) > MaxNameLength {
		return fmt.Errorf("%w: name is %d bytes", ErrCorrupt, len(r.Name))
	}
	if len(r.Connections) > math.MaxUint16 {
		return fmt.Errorf("%w: %d connections", ErrCorrupt, len(r.Connections))
	}

	bw := bufio.NewWriter(w)

	var header [HeaderSize]byte
	copy(header[0:4], Magic)
	le.PutUint16(header[4:6], Version)
	le.PutUint16(header[6:8], 0) // flags, reserved
	copy(header[8:24], r.ID[:])
	le.PutUint32(header[24:28], uint32(g.Width))
	le.PutUint32(header[28:32], uint32(g.Height))
	if _, err := bw.Write(header[:]); err != nil {
		return err
	}

	if err := writeMetadata(bw, r); err != nil {
		return err
	}

	var buf [CellSize]byte
	for i := range g.Cells {
		packCell(buf[:], &g.Cells[i])
		if _, err := bw.Write(buf[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeMetadata(w *bufio.Writer, r *Region) error {
	meta := make([]byte, 0, 2+len(r.Name)+8+8+4+2+len(r.Connections)*17)
	meta = le.AppendUint16(meta, uint16(len(r.Name)))
	meta = append(meta, r.Name...)
	meta = le.AppendUint64(meta, uint64(r.Seed))
	var ts int64
	if !r.GeneratedAt.IsZero() {
		ts = r.GeneratedAt.UnixNano()
	}
	meta = le.AppendUint64(meta, uint64(ts))
	meta = le.AppendUint32(meta, math.Float32bits(float32(r.LandPercentage)))
	meta = le.AppendUint16(meta, uint16(len(r.Connections)))
	for _, c := range r.Connections {
		meta = append(meta, c.RegionID[:]...)
		meta = append(meta, byte(c.Edge))
	}
	_, err := w.Write(meta)
	return err
}

// packCell lays one cell out in 16 bytes:
//
//	0  x u16          2  z u16
//	4  elevation i16  6  water level i16
//	8  terrain u8     9  plant|farm<<2|urban<<4|special<<6
//	10 in|inDir<<1|out<<4|outDir<<5
//	11 roads bitmask  12 moisture f16   14 reserved
func packCell(b []byte, c *world.Cell) {
	le.PutUint16(b[0:2], uint16(c.X))
	le.PutUint16(b[2:4], uint16(c.Z))
	le.PutUint16(b[4:6], uint16(int16(c.Elevation)))
	le.PutUint16(b[6:8], uint16(int16(c.WaterLevel)))
	b[8] = byte(c.TerrainTypeIndex)
	b[9] = c.PlantLevel&3 | (c.FarmLevel&3)<<2 | (c.UrbanLevel&3)<<4 | (byte(c.SpecialIndex)&3)<<6

	var rivers byte
	if c.HasIncomingRiver {
		rivers |= 1 | (byte(c.IncomingRiverDirection)&7)<<1
	}
	if c.HasOutgoingRiver {
		rivers |= 1<<4 | (byte(c.OutgoingRiverDirection)&7)<<5
	}
	b[10] = rivers

	var roads byte
	for d, on := range c.Roads {
		if on {
			roads |= 1 << d
		}
	}
	b[11] = roads
	le.PutUint16(b[12:14], float16.Fromfloat32(float32(c.Moisture)).Bits())
	le.PutUint16(b[14:16], 0)
}

// Decode reads a region written by Encode.
func Decode(rd io.Reader) (*Region, error) {
	br := bufio.NewReader(rd)

	var header [HeaderSize]byte
	if _, err := io.ReadFull(br, header[:]); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrCorrupt, err)
	}
	if string(header[0:4]) != Magic {
		return nil, ErrBadMagic
	}
	if v := le.Uint16(header[4:6]); v != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}

	r := &Region{}
	copy(r.ID[:], header[8:24])
	width := int(le.Uint32(header[24:28]))
	height := int(le.Uint32(header[28:32]))
	if width > maxDimension || height > maxDimension || width*height > MaxCells {
		return nil, fmt.Errorf("%w: grid %dx%d", ErrCorrupt, width, height)
	}

	if err := readMetadata(br, r); err != nil {
		return nil, err
	}

	total := width * height
	cells := make([]world.Cell, 0, min(total, decodeChunk))
	var buf [CellSize]byte
	for i := 0; i < total; i++ {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			return nil, fmt.Errorf("%w: cell %d: %w", ErrCorrupt, i, err)
		}
		var c world.Cell
		if err := unpackCell(buf[:], &c); err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
		if c.X != i%width || c.Z != i/width {
			return nil, fmt.Errorf("%w: cell %d stored at (%d,%d)", ErrCorrupt, i, c.X, c.Z)
		}
		cells = append(cells, c)
	}
	r.Grid = &world.Grid{Width: width, Height: height, Cells: cells}
	return r, nil
}

func readMetadata(br *bufio.Reader, r *Region) error {
	var n [2]byte
	if _, err := io.ReadFull(br, n[:]); err != nil {
		return fmt.Errorf("%w: metadata: %w", ErrCorrupt, err)
	}
	name := make([]byte, le.Uint16(n[:]))
	if _, err := io.ReadFull(br, name); err != nil {
		return fmt.Errorf("%w: name: %w", ErrCorrupt, err)
	}
	r.Name = string(name)

	var fixed [8 + 8 + 4 + 2]byte
	if _, err := io.ReadFull(br, fixed[:]); err != nil {
		return fmt.Errorf("%w: metadata: %w", ErrCorrupt, err)
	}
	r.Seed = int64(le.Uint64(fixed[0:8]))
	if ts := int64(le.Uint64(fixed[8:16])); ts != 0 {
		r.GeneratedAt = time.Unix(0, ts).UTC()
	}
	r.LandPercentage = float64(math.Float32frombits(le.Uint32(fixed[16:20])))

	count := int(le.Uint16(fixed[20:22]))
	if count > 0 {
		r.Connections = make([]Connection, count)
	}
	var conn [17]byte
	for i := range r.Connections {
		if _, err := io.ReadFull(br, conn[:]); err != nil {
			return fmt.Errorf("%w: connection %d: %w", ErrCorrupt, i, err)
		}
		id, err := uuid.FromBytes(conn[:16])
		if err != nil {
			return fmt.Errorf("%w: connection %d: %w", ErrCorrupt, i, err)
		}
		edge := world.Direction(conn[16])
		if !edge.Valid() {
			return fmt.Errorf("%w: connection %d edge %d", ErrCorrupt, i, conn[16])
		}
		r.Connections[i] = Connection{RegionID: id, Edge: edge}
	}
	return nil
}

func unpackCell(b []byte, c *world.Cell) error {
	c.X = int(le.Uint16(b[0:2]))
	c.Z = int(le.Uint16(b[2:4]))
	c.Elevation = int(int16(le.Uint16(b[4:6])))
	c.WaterLevel = int(int16(le.Uint16(b[6:8])))

	c.TerrainTypeIndex = world.Biome(b[8])
	if c.TerrainTypeIndex >= world.BiomeCount {
		return fmt.Errorf("%w: terrain %d", ErrCorrupt, b[8])
	}

	f := b[9]
	c.PlantLevel = f & 3
	c.FarmLevel = f >> 2 & 3
	c.UrbanLevel = f >> 4 & 3
	c.SpecialIndex = world.Special(f >> 6 & 3)
	if c.FarmLevel > world.MaxFarmLevel || c.UrbanLevel > world.MaxUrbanLevel {
		return fmt.Errorf("%w: feature byte %#02x", ErrCorrupt, f)
	}

	rv := b[10]
	c.HasIncomingRiver = rv&1 != 0
	c.IncomingRiverDirection = world.Direction(rv >> 1 & 7)
	c.HasOutgoingRiver = rv&(1<<4) != 0
	c.OutgoingRiverDirection = world.Direction(rv >> 5 & 7)
	if !c.IncomingRiverDirection.Valid() || !c.OutgoingRiverDirection.Valid() {
		return fmt.Errorf("%w: river byte %#02x", ErrCorrupt, rv)
	}

	for d := range c.Roads {
		c.Roads[d] = b[11]&(1<<d) != 0
	}
	c.Moisture = float64(float16.Frombits(le.Uint16(b[12:14])).Float32())
	return nil
}

func fitsInt16(v int) bool {
	return v >= math.MinInt16 && v <= math.MaxInt16
}
