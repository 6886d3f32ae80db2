// Package persistence provides SQLite-based storage for generated regions.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hexgen/internal/region"
	"github.com/talgya/hexgen/internal/world"
)

// ErrNotFound is returned when a requested map does not exist.
var ErrNotFound = errors.New("map not found")

// DB wraps a SQLite connection holding a catalogue of generated maps.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS maps (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		seed INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		land_percentage REAL NOT NULL,
		generated_at INTEGER NOT NULL,
		connections_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS cells (
		map_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		x INTEGER NOT NULL,
		z INTEGER NOT NULL,
		elevation INTEGER NOT NULL,
		water_level INTEGER NOT NULL,
		moisture REAL NOT NULL,
		terrain INTEGER NOT NULL,
		has_incoming_river INTEGER NOT NULL,
		incoming_river_dir INTEGER NOT NULL,
		has_outgoing_river INTEGER NOT NULL,
		outgoing_river_dir INTEGER NOT NULL,
		plant_level INTEGER NOT NULL,
		farm_level INTEGER NOT NULL,
		urban_level INTEGER NOT NULL,
		special INTEGER NOT NULL,
		roads INTEGER NOT NULL,
		PRIMARY KEY (map_id, idx)
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_maps_seed ON maps(seed);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// MapInfo is one row of the map catalogue.
type MapInfo struct {
	ID             string  `db:"id"`
	Name           string  `db:"name"`
	Seed           int64   `db:"seed"`
	Width          int     `db:"width"`
	Height         int     `db:"height"`
	LandPercentage float64 `db:"land_percentage"`
	GeneratedAt    int64   `db:"generated_at"`
	Connections    string  `db:"connections_json"`
}

// GeneratedTime returns GeneratedAt as a time. Zero means unset.
func (m MapInfo) GeneratedTime() time.Time {
	if m.GeneratedAt == 0 {
		return time.Time{}
	}
	return time.Unix(0, m.GeneratedAt).UTC()
}

func unixNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

type cellRow struct {
	Idx              int     `db:"idx"`
	X                int     `db:"x"`
	Z                int     `db:"z"`
	Elevation        int     `db:"elevation"`
	WaterLevel       int     `db:"water_level"`
	Moisture         float64 `db:"moisture"`
	Terrain          int     `db:"terrain"`
	HasIncomingRiver int     `db:"has_incoming_river"`
	IncomingRiverDir int     `db:"incoming_river_dir"`
	HasOutgoingRiver int     `db:"has_outgoing_river"`
	OutgoingRiverDir int     `db:"outgoing_river_dir"`
	PlantLevel       int     `db:"plant_level"`
	FarmLevel        int     `db:"farm_level"`
	UrbanLevel       int     `db:"urban_level"`
	Special          int     `db:"special"`
	Roads            int     `db:"roads"`
}

// SaveRegion writes a region and all of its cells, replacing any earlier
// copy with the same ID.
func (db *DB) SaveRegion(r *region.Region) error {
	if r.Grid == nil {
		return fmt.Errorf("save region %s: no grid", r.ID)
	}
	connJSON, err := json.Marshal(r.Connections)
	if err != nil {
		return fmt.Errorf("marshal connections: %w", err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	id := r.ID.String()
	if _, err := tx.Exec("DELETE FROM cells WHERE map_id = ?", id); err != nil {
		return err
	}
	_, err = tx.Exec(`INSERT OR REPLACE INTO maps
		(id, name, seed, width, height, land_percentage, generated_at, connections_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, r.Name, r.Seed, r.Grid.Width, r.Grid.Height, r.LandPercentage,
		unixNanos(r.GeneratedAt), string(connJSON),
	)
	if err != nil {
		return fmt.Errorf("insert map %s: %w", id, err)
	}

	stmt, err := tx.Preparex(`INSERT INTO cells
		(map_id, idx, x, z, elevation, water_level, moisture, terrain,
		 has_incoming_river, incoming_river_dir, has_outgoing_river, outgoing_river_dir,
		 plant_level, farm_level, urban_level, special, roads)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range r.Grid.Cells {
		c := &r.Grid.Cells[i]
		roads := 0
		for d, on := range c.Roads {
			if on {
				roads |= 1 << d
			}
		}
		_, err := stmt.Exec(
			id, i, c.X, c.Z, c.Elevation, c.WaterLevel, c.Moisture, int(c.TerrainTypeIndex),
			boolInt(c.HasIncomingRiver), int(c.IncomingRiverDirection),
			boolInt(c.HasOutgoingRiver), int(c.OutgoingRiverDirection),
			int(c.PlantLevel), int(c.FarmLevel), int(c.UrbanLevel), int(c.SpecialIndex), roads,
		)
		if err != nil {
			return fmt.Errorf("insert cell %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("region saved", "id", id, "name", r.Name, "cells", len(r.Grid.Cells))
	return nil
}

// LoadRegion reads a region and its cells.
func (db *DB) LoadRegion(id uuid.UUID) (*region.Region, error) {
	var info MapInfo
	err := db.conn.Get(&info, "SELECT * FROM maps WHERE id = ?", id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	var rows []cellRow
	err = db.conn.Select(&rows, `SELECT idx, x, z, elevation, water_level, moisture, terrain,
		has_incoming_river, incoming_river_dir, has_outgoing_river, outgoing_river_dir,
		plant_level, farm_level, urban_level, special, roads
		FROM cells WHERE map_id = ? ORDER BY idx`, id.String())
	if err != nil {
		return nil, fmt.Errorf("load cells: %w", err)
	}
	if len(rows) != info.Width*info.Height {
		return nil, fmt.Errorf("map %s has %d cells, want %dx%d", id, len(rows), info.Width, info.Height)
	}

	r := &region.Region{
		ID:             id,
		Name:           info.Name,
		Seed:           info.Seed,
		LandPercentage: info.LandPercentage,
		GeneratedAt:    info.GeneratedTime(),
	}
	if err := json.Unmarshal([]byte(info.Connections), &r.Connections); err != nil {
		return nil, fmt.Errorf("connections: %w", err)
	}

	cells := make([]world.Cell, len(rows))
	for i, row := range rows {
		cells[i] = world.Cell{
			X:                      row.X,
			Z:                      row.Z,
			Elevation:              row.Elevation,
			WaterLevel:             row.WaterLevel,
			Moisture:               row.Moisture,
			TerrainTypeIndex:       world.Biome(row.Terrain),
			HasIncomingRiver:       row.HasIncomingRiver != 0,
			IncomingRiverDirection: world.Direction(row.IncomingRiverDir),
			HasOutgoingRiver:       row.HasOutgoingRiver != 0,
			OutgoingRiverDirection: world.Direction(row.OutgoingRiverDir),
			PlantLevel:             uint8(row.PlantLevel),
			FarmLevel:              uint8(row.FarmLevel),
			UrbanLevel:             uint8(row.UrbanLevel),
			SpecialIndex:           world.Special(row.Special),
		}
		for d := range cells[i].Roads {
			cells[i].Roads[d] = row.Roads&(1<<d) != 0
		}
	}
	r.Grid = &world.Grid{Width: info.Width, Height: info.Height, Cells: cells}
	return r, nil
}

// ListMaps returns every stored map, newest first.
func (db *DB) ListMaps() ([]MapInfo, error) {
	var maps []MapInfo
	err := db.conn.Select(&maps, "SELECT * FROM maps ORDER BY generated_at DESC, id")
	return maps, err
}

// DeleteMap removes a map and its cells.
func (db *DB) DeleteMap(id uuid.UUID) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM cells WHERE map_id = ?", id.String()); err != nil {
		return err
	}
	res, err := tx.Exec("DELETE FROM maps WHERE id = ?", id.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return tx.Commit()
}

// SaveMeta stores a key-value pair in catalogue metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
