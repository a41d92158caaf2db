// Package convert implements the offline OSM-to-container converter: it
// parses an OSM PBF extract into directed way segments, buckets them into
// Web-Mercator tiles, and writes each tile as an encoded land tile blob
// through an internal/container.Writer. This is the "deliberately out of
// scope" collaborator spec.md §1 names — the router only ever consumes
// the container and blob schema this package produces.
package convert

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"github.com/azybler/tilerouter/internal/tiles"
)

// BBox optionally restricts conversion to way segments whose midpoint
// falls within it; the zero value means "no filter".
type BBox struct {
	MinLat, MaxLat, MinLon, MaxLon float64
}

func (b BBox) isZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLon == 0 && b.MaxLon == 0
}

func (b BBox) contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// segment is one directed-candidate edge between two consecutive nodes of
// a way, carrying enough information to decide, per profile, whether and
// in which direction(s) it is traversable. It is deliberately free of any
// osm.* type so the tiling and blob-assembly stages below are testable
// without a PBF fixture.
type segment struct {
	FromID           int64
	ToID             int64
	FromLat, FromLon float64
	ToLat, ToLon     float64
	RoadClass        tiles.RoadClass
	CarSpeedMPS      float64 // 0 if car-inaccessible in either direction
	FootSpeedMPS     float64 // 0 if foot-inaccessible in either direction
	CarForward       bool
	CarBackward      bool
	FootForward      bool
	FootBackward     bool
}

// ParseOptions configures the PBF scan.
type ParseOptions struct {
	BBox BBox
}

// parseSegments reads an OSM PBF file and returns the directed way
// segments eligible for car or foot routing. Mirrors the teacher's own
// two-pass parser (osm/parser.go): pass one collects ways and the node
// ids they reference, pass two resolves coordinates for only those nodes,
// avoiding a full in-memory node table for planet-scale extracts.
func parseSegments(ctx context.Context, rs io.ReadSeeker, opts ParseOptions) ([]segment, error) {
	referenced := make(map[osm.NodeID]struct{})
	type wayInfo struct {
		nodeIDs   []osm.NodeID
		rc        tiles.RoadClass
		carSpeed  float64
		footSpeed float64
		cf, cb    bool
		ff, fb    bool
	}
	var ways []wayInfo

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		highway := w.Tags.Find("highway")
		rc, ok := roadClassForHighway(highway)
		if !ok || len(w.Nodes) < 2 {
			continue
		}
		carOK := isCarAccessible(rc, w.Tags)
		footOK := isFootAccessible(rc, w.Tags)
		if !carOK && !footOK {
			continue
		}
		cf, cb := carDirectionFlags(rc, w.Tags)
		ff, fb := footDirectionFlags(w.Tags)

		nodeIDs := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			nodeIDs[i] = wn.ID
			referenced[wn.ID] = struct{}{}
		}

		wi := wayInfo{nodeIDs: nodeIDs, rc: rc, cf: cf && carOK, cb: cb && carOK, ff: ff && footOK, fb: fb && footOK}
		if carOK {
			wi.carSpeed = carSpeedMPS(rc, w.Tags)
		}
		if footOK {
			wi.footSpeed = tiles.DefaultFootSpeedMPS
		}
		ways = append(ways, wi)
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("parse ways: %w", err)
	}
	scanner.Close()
	log.Printf("pass 1: %d routable ways, %d referenced nodes", len(ways), len(referenced))

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for node pass: %w", err)
	}

	nodeLat := make(map[osm.NodeID]float64, len(referenced))
	nodeLon := make(map[osm.NodeID]float64, len(referenced))
	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referenced[n.ID]; !needed {
			continue
		}
		nodeLat[n.ID] = n.Lat
		nodeLon[n.ID] = n.Lon
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("parse nodes: %w", err)
	}
	scanner.Close()
	log.Printf("pass 2: %d node coordinates resolved", len(nodeLat))

	var segs []segment
	var skipped int
	for _, w := range ways {
		for i := 0; i+1 < len(w.nodeIDs); i++ {
			fromID, toID := w.nodeIDs[i], w.nodeIDs[i+1]
			fLat, fOK := nodeLat[fromID]
			fLon := nodeLon[fromID]
			tLat, tOK := nodeLat[toID]
			tLon := nodeLon[toID]
			if !fOK || !tOK {
				skipped++
				continue
			}
			if !opts.BBox.isZero() {
				midLat, midLon := (fLat+tLat)/2, (fLon+tLon)/2
				if !opts.BBox.contains(midLat, midLon) {
					continue
				}
			}
			segs = append(segs, segment{
				FromID: int64(fromID), ToID: int64(toID),
				FromLat: fLat, FromLon: fLon, ToLat: tLat, ToLon: tLon,
				RoadClass:    w.rc,
				CarSpeedMPS:  w.carSpeed,
				FootSpeedMPS: w.footSpeed,
				CarForward:   w.cf, CarBackward: w.cb,
				FootForward: w.ff, FootBackward: w.fb,
			})
		}
	}
	if skipped > 0 {
		log.Printf("skipped %d segments with unresolved node coordinates", skipped)
	}
	log.Printf("built %d way segments", len(segs))
	return segs, nil
}
