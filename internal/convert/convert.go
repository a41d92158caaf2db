package convert

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/azybler/tilerouter/internal/container"
	"github.com/azybler/tilerouter/internal/tileblob"
)

// Options configures a full OSM-to-container conversion run.
type Options struct {
	Zoom    int // tile zoom level; must match the Router's TileZoom
	Version uint32
	BBox    BBox
}

// DefaultOptions returns zoom 14 (matching router.DefaultOptions) and
// schema version 1.
func DefaultOptions() Options {
	return Options{Zoom: 14, Version: 1}
}

// Stats summarizes a conversion run, reported by cmd/convert.
type Stats struct {
	Segments int
	Tiles    int
	Nodes    int
	Edges    int
}

// Run parses an OSM PBF extract from rs and writes one land tile row per
// populated Web-Mercator tile into w, plus dataset metadata. It is the
// single entry point cmd/convert drives.
func Run(ctx context.Context, rs io.ReadSeeker, w *container.Writer, opts Options) (Stats, error) {
	if opts.Zoom == 0 {
		opts.Zoom = 14
	}
	if opts.Version == 0 {
		opts.Version = 1
	}

	segs, err := parseSegments(ctx, rs, ParseOptions{BBox: opts.BBox})
	if err != nil {
		return Stats{}, fmt.Errorf("parse: %w", err)
	}

	buckets := bucketSegments(segs, opts.Zoom)
	log.Printf("bucketed into %d tiles at zoom %d", len(buckets), opts.Zoom)

	stats := Stats{Segments: len(segs), Tiles: len(buckets)}
	for key, acc := range buckets {
		tile := buildLandTile(acc, opts.Version)
		blob, err := tileblob.Encode(tile)
		if err != nil {
			return stats, fmt.Errorf("encode tile %+v: %w", key, err)
		}
		bbox := tileBBox(key)
		cBBox := container.BBox{LatMin: bbox.LatMin, LonMin: bbox.LonMin, LatMax: bbox.LatMax, LonMax: bbox.LonMax}
		if err := w.InsertTile(key.Z, key.X, key.Y, cBBox, int(tile.Version), tile.Checksum, int(tile.ProfileMask), blob); err != nil {
			return stats, fmt.Errorf("insert tile %+v: %w", key, err)
		}
		stats.Nodes += len(tile.Nodes)
		stats.Edges += len(tile.Edges)
	}

	if err := w.WriteMetadata("schema_version", "1"); err != nil {
		return stats, fmt.Errorf("write metadata: %w", err)
	}
	if err := w.WriteMetadata("source", "osm-pbf"); err != nil {
		return stats, fmt.Errorf("write metadata: %w", err)
	}

	return stats, nil
}
