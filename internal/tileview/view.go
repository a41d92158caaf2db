// Package tileview provides a read-only structural view over a decoded
// land tile: node/edge lookups by local index, forward adjacency via the
// node's (FirstEdge, EdgeCount) pair, and a lazily built reverse
// adjacency for callers that need incoming edges.
package tileview

import (
	"sync"

	"github.com/azybler/tilerouter/internal/geo"
	"github.com/azybler/tilerouter/internal/tileblob"
	"github.com/azybler/tilerouter/internal/tiles"
)

// View wraps a decoded LandTile with derived lookups. A View is safe for
// concurrent reads once constructed; the reverse adjacency index is built
// at most once, on first use, regardless of how many goroutines call
// InEdges concurrently.
type View struct {
	Key  tiles.Key
	tile *tileblob.LandTile

	once    sync.Once
	inEdges [][]uint32 // inEdges[node] = local edge indices whose ToNode == node
}

// New wraps a decoded tile for the given key.
func New(key tiles.Key, tile *tileblob.LandTile) *View {
	return &View{Key: key, tile: tile}
}

// NodeCount returns the number of nodes in the tile.
func (v *View) NodeCount() int { return len(v.tile.Nodes) }

// EdgeCount returns the number of edges in the tile.
func (v *View) EdgeCount() int { return len(v.tile.Edges) }

// Node returns the node at local index i.
func (v *View) Node(i uint32) tileblob.Node { return v.tile.Nodes[i] }

// Edge returns the edge at local index i.
func (v *View) Edge(i uint32) tileblob.Edge { return v.tile.Edges[i] }

// OutEdges returns the local edge indices originating at node u, per the
// node's (FirstEdge, EdgeCount) range.
func (v *View) OutEdges(u uint32) []uint32 {
	n := v.tile.Nodes[u]
	out := make([]uint32, n.EdgeCount)
	for i := range out {
		out[i] = n.FirstEdge + uint32(i)
	}
	return out
}

// InEdges returns the local edge indices whose ToNode is u. Building the
// reverse index requires one full pass over the tile's edges; it is
// deferred until the first call to InEdges on this View and then reused
// for the View's lifetime.
func (v *View) InEdges(u uint32) []uint32 {
	v.once.Do(v.buildReverse)
	return v.inEdges[u]
}

func (v *View) buildReverse() {
	v.inEdges = make([][]uint32, len(v.tile.Nodes))
	for i, e := range v.tile.Edges {
		v.inEdges[e.ToNode] = append(v.inEdges[e.ToNode], uint32(i))
	}
}

// AppendEdgeShape appends the shape points of edge i, endpoints included, to dst,
// in the edge's stored direction, resolving the geometry in priority
// order: an explicit shape-point slice, then the edge's encoded polyline,
// then (if neither is present) the edge's two endpoint coordinates. If
// skipFirst is true the first point is omitted, which callers use when
// concatenating consecutive edges to avoid duplicating the shared vertex.
func (v *View) AppendEdgeShape(i uint32, dst []geo.Point, skipFirst bool) []geo.Point {
	e := v.tile.Edges[i]

	switch {
	case e.ShapeCount > 0:
		pts := make([]geo.Point, 0, e.ShapeCount)
		for j := uint32(0); j < uint32(e.ShapeCount); j++ {
			sp := v.tile.Shapes[e.ShapeStart+j]
			lat, lon := tiles.Dequantize(sp.LatQ, sp.LonQ)
			pts = append(pts, geo.Point{Lat: lat, Lon: lon})
		}
		return appendPoints(dst, pts, skipFirst)

	case e.EncodedPolyline != "":
		pts := geo.DecodePolyline(e.EncodedPolyline)
		return appendPoints(dst, pts, skipFirst)

	default:
		from := v.tile.Nodes[e.FromNode]
		to := v.tile.Nodes[e.ToNode]
		fLat, fLon := tiles.Dequantize(from.LatQ, from.LonQ)
		tLat, tLon := tiles.Dequantize(to.LatQ, to.LonQ)
		pts := []geo.Point{{Lat: fLat, Lon: fLon}, {Lat: tLat, Lon: tLon}}
		return appendPoints(dst, pts, skipFirst)
	}
}

func appendPoints(dst, pts []geo.Point, skipFirst bool) []geo.Point {
	if skipFirst && len(pts) > 0 {
		pts = pts[1:]
	}
	return append(dst, pts...)
}
