// Package container stores and retrieves land tile blobs in a single
// SQLite file: a "land_tiles" table keyed by (z, x, y), and a small
// "metadata" table for dataset-level key/value facts (bounding box,
// build timestamp, profile coverage, and similar).
package container

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS land_tiles (
  z INTEGER NOT NULL,
  x INTEGER NOT NULL,
  y INTEGER NOT NULL,
  lat_min REAL NOT NULL,
  lon_min REAL NOT NULL,
  lat_max REAL NOT NULL,
  lon_max REAL NOT NULL,
  version INTEGER NOT NULL,
  checksum TEXT NOT NULL,
  profile_mask INTEGER NOT NULL,
  data BLOB NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_land_tiles_zxy ON land_tiles(z,x,y);
CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT
);
`

// BBox mirrors tiles.BBox without importing it, to keep this package
// free of a dependency on tile-key math it doesn't otherwise need.
type BBox struct {
	LatMin, LonMin, LatMax, LonMax float64
}

// Writer is the converter-side handle: schema creation, tile inserts,
// and metadata upserts, tuned for a single bulk-loading process.
type Writer struct {
	db *sql.DB
}

// OpenWriter opens (creating if necessary) a container database for
// writing, with the pragmas the offline converter wants: WAL for
// concurrent-safe append performance, NORMAL synchronous durability, and
// foreign keys on (the schema has none today, but turning it on is
// inexpensive and future-proof against a later addition).
func OpenWriter(path string) (*Writer, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open container %s: %w", path, err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA foreign_keys = ON;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Writer{db: db}, nil
}

// Close closes the underlying database handle.
func (w *Writer) Close() error { return w.db.Close() }

// InsertTile writes one tile's blob and bounding box, replacing any
// previous row for the same (z, x, y).
func (w *Writer) InsertTile(z, x, y int, bbox BBox, version int, checksum string, profileMask int, data []byte) error {
	_, err := w.db.Exec(
		`INSERT INTO land_tiles(z,x,y,lat_min,lon_min,lat_max,lon_max,version,checksum,profile_mask,data)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?)
		 ON CONFLICT(z,x,y) DO UPDATE SET
		   lat_min=excluded.lat_min, lon_min=excluded.lon_min,
		   lat_max=excluded.lat_max, lon_max=excluded.lon_max,
		   version=excluded.version, checksum=excluded.checksum,
		   profile_mask=excluded.profile_mask, data=excluded.data`,
		z, x, y, bbox.LatMin, bbox.LonMin, bbox.LatMax, bbox.LonMax, version, checksum, profileMask, data,
	)
	if err != nil {
		return fmt.Errorf("insert tile (%d,%d,%d): %w", z, x, y, err)
	}
	return nil
}

// WriteMetadata upserts a single dataset-level fact.
func (w *Writer) WriteMetadata(key, value string) error {
	_, err := w.db.Exec(
		`INSERT INTO metadata(key, value) VALUES(?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("write metadata %q: %w", key, err)
	}
	return nil
}

// Reader is the router-side handle: read-only tile lookups, opened with
// pragmas tuned for concurrent reads rather than bulk writes.
type Reader struct {
	db *sql.DB
}

// OpenReader opens an existing container database read-only.
func OpenReader(path string) (*Reader, error) {
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open container %s: %w", path, err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA temp_store = MEMORY;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %q: %w", pragma, err)
		}
	}
	return &Reader{db: db}, nil
}

// Close closes the underlying database handle.
func (r *Reader) Close() error { return r.db.Close() }

// LoadTile returns the raw blob stored for (z, x, y), or nil (no error)
// if no such tile exists — a miss is not a failure, since large parts of
// the world legitimately have no routable tile at a given key.
func (r *Reader) LoadTile(z, x, y int) ([]byte, error) {
	row := r.db.QueryRow(`SELECT data FROM land_tiles WHERE z=? AND x=? AND y=? LIMIT 1`, z, x, y)
	var data []byte
	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load tile (%d,%d,%d): %w", z, x, y, err)
	}
	return data, nil
}

// ReadMetadata returns a dataset-level fact, and whether it was present.
func (r *Reader) ReadMetadata(key string) (string, bool, error) {
	row := r.db.QueryRow(`SELECT value FROM metadata WHERE key=?`, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read metadata %q: %w", key, err)
	}
	return value, true, nil
}
