// Package graph fuses a set of loaded tile views into one directed,
// weighted graph usable by the router: nodes sharing a quantized
// coordinate are unified across tile boundaries, and each node's
// outgoing edges are stored in a per-node slice that a query can append
// query-scoped (virtual) entries to without touching any other node's
// adjacency.
package graph

import (
	"github.com/azybler/tilerouter/internal/tileblob"
	"github.com/azybler/tilerouter/internal/tiles"
	"github.com/azybler/tilerouter/internal/tileview"
)

// NodeRef identifies the originating tile view and local node index a
// global node was fused from — used to resolve a node back to geometry.
type NodeRef struct {
	View  *tileview.View
	Local uint32
}

// Edge is one directed edge of the fused graph: a weight in seconds plus
// enough to identify which tile/edge it came from for geometry assembly
// and EdgeID reporting.
type Edge struct {
	To       uint32
	WeightS  float64
	View     *tileview.View
	EdgeIdx  uint32
	Reversed bool // true if this edge traverses the tile edge from ToNode to FromNode

	// Snap is non-nil only for the query-scoped virtual half-edges a
	// router attaches at its snapped start/end points (§4.5.3): it
	// trims the host edge's full polyline down to the fraction this
	// half-edge actually covers, so the assembled route polyline starts
	// or ends at the snap projection rather than the host edge's node.
	Snap *SnapTrim
}

// SnapTrim restricts a fused edge's rendered geometry to the portion of
// the host edge's polyline, in its stored (From->To) orientation, lying
// either before or after the snap projection point.
type SnapTrim struct {
	SegIndex  int     // polyline segment the projection falls on
	Lat, Lon  float64 // projected coordinate
	FromStart bool    // true: render [polyline start .. projection]; false: [projection .. polyline end]
}

// ReverseRef is a positional back-pointer: "node From's adjacency list,
// entry Pos, is an edge into this node."
type ReverseRef struct {
	From uint32
	Pos  int
}

// Graph is the fused multi-tile graph. Lat/Lon and Adj are indexed by
// global node id; In holds positional back-pointers for the backward
// search frontier.
type Graph struct {
	Lat, Lon []float64
	Refs     []NodeRef
	Adj      [][]Edge
	In       [][]ReverseRef

	index map[nodeKey]uint32
}

// GlobalNodeForQuantized returns the global node id fused from the given
// quantized coordinate, if any tile node with that coordinate was part of
// the graph build. The router uses this to map a host edge's endpoint
// (known only as a tile-local index) back to the global node a virtual
// node's half-edges must attach to.
func (g *Graph) GlobalNodeForQuantized(latQ, lonQ int32) (uint32, bool) {
	id, ok := g.index[nodeKey{LatQ: latQ, LonQ: lonQ}]
	return id, ok
}

// NodeCount returns the number of global nodes.
func (g *Graph) NodeCount() int { return len(g.Lat) }

// AddNode appends a new global node (used by the router to attach
// virtual source/target nodes) and returns its id.
func (g *Graph) AddNode(lat, lon float64) uint32 {
	id := uint32(len(g.Lat))
	g.Lat = append(g.Lat, lat)
	g.Lon = append(g.Lon, lon)
	g.Refs = append(g.Refs, NodeRef{})
	g.Adj = append(g.Adj, nil)
	g.In = append(g.In, nil)
	return id
}

// AddEdge appends a directed edge from u to the end of u's adjacency
// list, recording a positional reverse-adjacency back-pointer at e.To.
func (g *Graph) AddEdge(u uint32, e Edge) {
	pos := len(g.Adj[u])
	g.Adj[u] = append(g.Adj[u], e)
	g.In[e.To] = append(g.In[e.To], ReverseRef{From: u, Pos: pos})
}

// nodeKey is the fusion key: two nodes with the same quantized
// coordinate, anywhere in the loaded tile set, are the same global node.
type nodeKey struct {
	LatQ, LonQ int32
}

// Build fuses views into one Graph under the given profile. Nodes that
// share a quantized coordinate across tiles (border nodes) are unified
// into a single global node; edges that the profile cannot traverse in
// either direction are omitted.
func Build(views []*tileview.View, profile tiles.Profile) *Graph {
	g := &Graph{index: make(map[nodeKey]uint32)}

	globalID := func(v *tileview.View, local uint32) uint32 {
		n := v.Node(local)
		key := nodeKey{LatQ: n.LatQ, LonQ: n.LonQ}
		if id, ok := g.index[key]; ok {
			return id
		}
		lat, lon := tiles.Dequantize(n.LatQ, n.LonQ)
		id := g.AddNode(lat, lon)
		g.Refs[id] = NodeRef{View: v, Local: local}
		g.index[key] = id
		return id
	}

	for _, v := range views {
		for ei := 0; ei < v.EdgeCount(); ei++ {
			e := v.Edge(uint32(ei))
			fwdSpeed, revSpeed := profileSpeeds(e, profile)
			if fwdSpeed <= 0 && (e.Oneway || revSpeed <= 0) {
				continue
			}

			u := globalID(v, e.FromNode)
			w := globalID(v, e.ToNode)

			if fwdSpeed > 0 {
				weightS := float64(e.LengthM) / fwdSpeed
				g.AddEdge(u, Edge{To: w, WeightS: weightS, View: v, EdgeIdx: uint32(ei), Reversed: false})
			}
			if !e.Oneway && revSpeed > 0 {
				weightS := float64(e.LengthM) / revSpeed
				g.AddEdge(w, Edge{To: u, WeightS: weightS, View: v, EdgeIdx: uint32(ei), Reversed: true})
			}
		}
	}

	return g
}

// ProfileSpeed returns the edge's profile-specific traversal speed (0 if
// not traversable under the profile in either direction), for callers
// outside this package that need the same speed Build uses to weight
// edges — the router's virtual-node half-edges, in particular.
func ProfileSpeed(e tileblob.Edge, profile tiles.Profile) float64 {
	fwd, _ := profileSpeeds(e, profile)
	return fwd
}

// profileSpeeds returns the edge's traversal speed for the given profile,
// in the stored (from->to) direction and in the reverse direction. A
// returned speed of 0 means that direction is not traversable; both
// directions use the same speed value, since the schema carries one
// profile speed per edge rather than per direction.
func profileSpeeds(e tileblob.Edge, profile tiles.Profile) (fwd, rev float64) {
	var speed float64
	var accessible bool
	switch profile {
	case tiles.Foot:
		speed = float64(e.FootSpeedMPS)
		accessible = e.AccessMask&tiles.AccessFoot != 0
	default:
		speed = float64(e.SpeedMPS)
		accessible = e.AccessMask&tiles.AccessCar != 0
	}
	if !accessible || speed <= 0 {
		return 0, 0
	}
	return speed, speed
}
