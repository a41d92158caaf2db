package convert

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"sort"

	"github.com/azybler/tilerouter/internal/geo"
	"github.com/azybler/tilerouter/internal/tileblob"
	"github.com/azybler/tilerouter/internal/tiles"
)

// directedEdge is a single-direction candidate emitted from a segment,
// before node ids are remapped to tile-local indices.
type directedEdge struct {
	fromID, toID     int64
	fromLat, fromLon float64
	toLat, toLon     float64
	roadClass        tiles.RoadClass
	speedMPS         float64
	footSpeedMPS     float64
	accessMask       uint16
}

// splitDirections turns a segment into up to two directedEdges — one per
// traversable direction — each carrying only the profile(s) that may use
// it in that direction. Every resulting edge is a strict one-way (§3
// `oneway ⇒ access_mask != 0` is satisfied by construction: an edge is
// emitted only when at least one profile bit is set), which keeps the
// schema's single oneway flag correct even when car and foot disagree
// about which directions are open.
func splitDirections(s segment) []directedEdge {
	var out []directedEdge
	fwdMask := profileMask(s.CarForward && s.CarSpeedMPS > 0, s.FootForward && s.FootSpeedMPS > 0)
	if fwdMask != 0 {
		out = append(out, directedEdge{
			fromID: s.FromID, toID: s.ToID,
			fromLat: s.FromLat, fromLon: s.FromLon, toLat: s.ToLat, toLon: s.ToLon,
			roadClass:    s.RoadClass,
			speedMPS:     maskedSpeed(fwdMask, tiles.AccessCar, s.CarSpeedMPS),
			footSpeedMPS: maskedSpeed(fwdMask, tiles.AccessFoot, s.FootSpeedMPS),
			accessMask:   fwdMask,
		})
	}
	bwdMask := profileMask(s.CarBackward && s.CarSpeedMPS > 0, s.FootBackward && s.FootSpeedMPS > 0)
	if bwdMask != 0 {
		out = append(out, directedEdge{
			fromID: s.ToID, toID: s.FromID,
			fromLat: s.ToLat, fromLon: s.ToLon, toLat: s.FromLat, toLon: s.FromLon,
			roadClass:    s.RoadClass,
			speedMPS:     maskedSpeed(bwdMask, tiles.AccessCar, s.CarSpeedMPS),
			footSpeedMPS: maskedSpeed(bwdMask, tiles.AccessFoot, s.FootSpeedMPS),
			accessMask:   bwdMask,
		})
	}
	return out
}

func profileMask(car, foot bool) uint16 {
	var m uint16
	if car {
		m |= tiles.AccessCar
	}
	if foot {
		m |= tiles.AccessFoot
	}
	return m
}

func maskedSpeed(mask uint16, bit uint16, speed float64) float64 {
	if mask&bit == 0 {
		return 0
	}
	return speed
}

// tileAccumulator collects the directed edges routed through one tile key
// before the blob is assembled.
type tileAccumulator struct {
	key   tiles.Key
	edges []directedEdge
}

// bucketSegments splits every segment into its directed edges and assigns
// each to the tile its segment midpoint falls in at the given zoom,
// mirroring original_source/converter/src/pbf_reader.cpp's per-segment
// tiling (a way that crosses a tile boundary is split at the boundary
// rather than rejected or duplicated whole into both tiles).
func bucketSegments(segs []segment, zoom int) map[tiles.Key]*tileAccumulator {
	tilesMap := make(map[tiles.Key]*tileAccumulator)
	for _, s := range segs {
		midLat, midLon := (s.FromLat+s.ToLat)/2, (s.FromLon+s.ToLon)/2
		key := tiles.KeyFor(midLat, midLon, zoom)
		acc := tilesMap[key]
		if acc == nil {
			acc = &tileAccumulator{key: key}
			tilesMap[key] = acc
		}
		acc.edges = append(acc.edges, splitDirections(s)...)
	}
	return tilesMap
}

// buildLandTile assembles one tile's accumulated directed edges into the
// tagged schema's in-memory form: a deduplicated node table in first-seen order; an
// edge table sorted by FromNode so each node's (FirstEdge, EdgeCount)
// forms a contiguous range; and a shared shape-point pool.
func buildLandTile(acc *tileAccumulator, version uint32) *tileblob.LandTile {
	type nodeInfo struct {
		osmID      int64
		latQ, lonQ int32
	}
	localIndex := make(map[int64]uint32)
	var nodeList []nodeInfo

	nodeIDFor := func(osmID int64, lat, lon float64) uint32 {
		if idx, ok := localIndex[osmID]; ok {
			return idx
		}
		latQ, lonQ := tiles.QuantizeCoord(lat, lon)
		idx := uint32(len(nodeList))
		localIndex[osmID] = idx
		nodeList = append(nodeList, nodeInfo{osmID: osmID, latQ: latQ, lonQ: lonQ})
		return idx
	}

	type edgeBuild struct {
		fromNode, toNode uint32
		e                directedEdge
	}
	edgeBuilds := make([]edgeBuild, 0, len(acc.edges))
	for _, e := range acc.edges {
		from := nodeIDFor(e.fromID, e.fromLat, e.fromLon)
		to := nodeIDFor(e.toID, e.toLat, e.toLon)
		edgeBuilds = append(edgeBuilds, edgeBuild{fromNode: from, toNode: to, e: e})
	}

	sort.SliceStable(edgeBuilds, func(i, j int) bool { return edgeBuilds[i].fromNode < edgeBuilds[j].fromNode })

	var shapes []tileblob.ShapePoint
	edges := make([]tileblob.Edge, 0, len(edgeBuilds))
	for _, eb := range edgeBuilds {
		fromLatQ, fromLonQ := tiles.QuantizeCoord(eb.e.fromLat, eb.e.fromLon)
		toLatQ, toLonQ := tiles.QuantizeCoord(eb.e.toLat, eb.e.toLon)
		shapeStart := uint32(len(shapes))
		shapes = append(shapes,
			tileblob.ShapePoint{LatQ: fromLatQ, LonQ: fromLonQ},
			tileblob.ShapePoint{LatQ: toLatQ, LonQ: toLonQ},
		)
		lengthM := geo.Haversine(eb.e.fromLat, eb.e.fromLon, eb.e.toLat, eb.e.toLon)
		edges = append(edges, tileblob.Edge{
			FromNode:     eb.fromNode,
			ToNode:       eb.toNode,
			LengthM:      float32(lengthM),
			SpeedMPS:     float32(eb.e.speedMPS),
			FootSpeedMPS: float32(eb.e.footSpeedMPS),
			Oneway:       true,
			RoadClass:    uint8(eb.e.roadClass),
			AccessMask:   eb.e.accessMask,
			ShapeStart:   shapeStart,
			ShapeCount:   2,
		})
	}

	nodes := make([]tileblob.Node, len(nodeList))
	firstEdge := make([]uint32, len(nodeList))
	edgeCount := make([]uint16, len(nodeList))
	for idx, eb := range edgeBuilds {
		n := eb.fromNode
		if edgeCount[n] == 0 {
			firstEdge[n] = uint32(idx)
		}
		edgeCount[n]++
	}
	for i, ni := range nodeList {
		nodes[i] = tileblob.Node{LatQ: ni.latQ, LonQ: ni.lonQ, FirstEdge: firstEdge[i], EdgeCount: edgeCount[i]}
	}

	var profileMaskBits uint32
	for _, e := range edges {
		if e.AccessMask&tiles.AccessCar != 0 {
			profileMaskBits |= tiles.AccessCar
		}
		if e.AccessMask&tiles.AccessFoot != 0 {
			profileMaskBits |= tiles.AccessFoot
		}
	}

	t := &tileblob.LandTile{
		Z: uint32(acc.key.Z), X: uint32(acc.key.X), Y: uint32(acc.key.Y),
		Nodes:       nodes,
		Edges:       edges,
		Shapes:      shapes,
		Version:     version,
		ProfileMask: profileMaskBits,
	}
	t.Checksum = checksumFor(t)
	return t
}

// checksumFor computes an opaque CRC32 digest over a tile's routable
// content (node/edge counts and coordinates), stamped into the blob but
// never verified on read — see spec.md §9's explicit acceptance of an
// optional, unverified checksum. No SHA-256 primitive is pulled in by any
// example in the retrieval pack, so CRC32 (already used by
// internal/tileblob's own binary envelope) stands in for it.
func checksumFor(t *tileblob.LandTile) string {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, t.Z)
	binary.Write(&buf, binary.LittleEndian, t.X)
	binary.Write(&buf, binary.LittleEndian, t.Y)
	binary.Write(&buf, binary.LittleEndian, uint32(len(t.Nodes)))
	binary.Write(&buf, binary.LittleEndian, uint32(len(t.Edges)))
	for _, n := range t.Nodes {
		binary.Write(&buf, binary.LittleEndian, n.LatQ)
		binary.Write(&buf, binary.LittleEndian, n.LonQ)
	}
	for _, e := range t.Edges {
		binary.Write(&buf, binary.LittleEndian, e.FromNode)
		binary.Write(&buf, binary.LittleEndian, e.ToNode)
		binary.Write(&buf, binary.LittleEndian, e.LengthM)
	}
	sum := crc32.ChecksumIEEE(buf.Bytes())
	return fmtHex32(sum)
}

func fmtHex32(v uint32) string {
	const hexDigits = "0123456789abcdef"
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = hexDigits[v&0xF]
		v >>= 4
	}
	return string(b)
}

// tileBBox returns the geographic bounds of a tile key, used only for the
// container's lat/lon_min/max columns.
func tileBBox(k tiles.Key) tiles.BBox { return tiles.Bounds(k) }
