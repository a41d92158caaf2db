package router

import (
	"fmt"

	"github.com/azybler/tilerouter/internal/geo"
	"github.com/azybler/tilerouter/internal/graph"
	"github.com/azybler/tilerouter/internal/snap"
	"github.com/azybler/tilerouter/internal/tiles"
	"github.com/azybler/tilerouter/internal/tileview"
)

// attachVirtualNodes allocates the two per-query virtual nodes at the
// snapped projection points and joins each to its host edge's endpoints
// with fractional half-edges, per §4.5.3's table. The static fused graph
// is otherwise untouched.
func attachVirtualNodes(g *graph.Graph, startSnap, endSnap snap.EdgeSnap, profile tiles.Profile) (vS, vE uint32, err error) {
	vS = g.AddNode(startSnap.ProjLat, startSnap.ProjLon)
	vE = g.AddNode(endSnap.ProjLat, endSnap.ProjLon)

	if err := attachStartHalfEdges(g, vS, startSnap, profile); err != nil {
		return 0, 0, err
	}
	if err := attachEndHalfEdges(g, vE, endSnap, profile); err != nil {
		return 0, 0, err
	}
	return vS, vE, nil
}

// hostEndpoints resolves a snap's host edge endpoints to their global
// fused-graph node ids. Both are guaranteed present: Snap only matches
// edges the Graph Builder also considered traversable, so both endpoints
// were assigned global ids during Build.
func hostEndpoints(g *graph.Graph, s snap.EdgeSnap) (fromG, toG uint32, ok bool) {
	e := s.View.Edge(s.EdgeIndex)
	fn := s.View.Node(e.FromNode)
	tn := s.View.Node(e.ToNode)
	fromG, ok1 := g.GlobalNodeForQuantized(fn.LatQ, fn.LonQ)
	toG, ok2 := g.GlobalNodeForQuantized(tn.LatQ, tn.LonQ)
	return fromG, toG, ok1 && ok2
}

func attachStartHalfEdges(g *graph.Graph, vS uint32, s snap.EdgeSnap, profile tiles.Profile) error {
	e := s.View.Edge(s.EdgeIndex)
	fromG, toG, ok := hostEndpoints(g, s)
	if !ok {
		return fmt.Errorf("snapped start edge's endpoints are not present in the fused graph")
	}
	speed := graph.ProfileSpeed(e, profile)
	if speed <= 0 {
		return fmt.Errorf("snapped start edge is not traversable under the selected profile")
	}
	t := edgeGlobalT(s.View, s.EdgeIndex, s.SegIndex, s.T)
	w := float64(e.LengthM) / speed
	ref := hostRef(s.View, s.EdgeIndex)
	trim := snapTrim(s)

	g.AddEdge(fromG, withHalfEdge(ref, vS, t*w, false, trim(true)))
	g.AddEdge(vS, withHalfEdge(ref, toG, (1-t)*w, false, trim(false)))
	if !e.Oneway {
		g.AddEdge(vS, withHalfEdge(ref, fromG, t*w, true, trim(true)))
	}
	return nil
}

func attachEndHalfEdges(g *graph.Graph, vE uint32, s snap.EdgeSnap, profile tiles.Profile) error {
	e := s.View.Edge(s.EdgeIndex)
	fromG, toG, ok := hostEndpoints(g, s)
	if !ok {
		return fmt.Errorf("snapped end edge's endpoints are not present in the fused graph")
	}
	speed := graph.ProfileSpeed(e, profile)
	if speed <= 0 {
		return fmt.Errorf("snapped end edge is not traversable under the selected profile")
	}
	t := edgeGlobalT(s.View, s.EdgeIndex, s.SegIndex, s.T)
	w := float64(e.LengthM) / speed
	ref := hostRef(s.View, s.EdgeIndex)
	trim := snapTrim(s)

	g.AddEdge(fromG, withHalfEdge(ref, vE, t*w, false, trim(true)))
	if !e.Oneway {
		g.AddEdge(toG, withHalfEdge(ref, vE, (1-t)*w, true, trim(false)))
	}
	return nil
}

// hostRef builds a graph.Edge template carrying only the host-edge
// identification (view + local edge index) shared by every half-edge
// attached for a given snap.
func hostRef(v *tileview.View, edgeIndex uint32) graph.Edge {
	return graph.Edge{View: v, EdgeIdx: edgeIndex}
}

func withHalfEdge(base graph.Edge, to uint32, weight float64, reversed bool, trim *graph.SnapTrim) graph.Edge {
	base.To = to
	base.WeightS = weight
	base.Reversed = reversed
	base.Snap = trim
	return base
}

// snapTrim returns a constructor for the SnapTrim each of a snap's
// half-edges carries: fromStart=true covers the host polyline from its
// start up to the projection point, fromStart=false from the projection
// point to the polyline's end — both in the edge's stored orientation,
// before any Reversed flip is applied for rendering.
func snapTrim(s snap.EdgeSnap) func(fromStart bool) *graph.SnapTrim {
	return func(fromStart bool) *graph.SnapTrim {
		return &graph.SnapTrim{
			SegIndex:  s.SegIndex,
			Lat:       s.ProjLat,
			Lon:       s.ProjLon,
			FromStart: fromStart,
		}
	}
}

// edgeGlobalT converts a snap's segment-local (SegIndex, T) into a
// fraction of the way along the edge's *entire* polyline, measured by
// cumulative great-circle segment length — the "t" the virtual-node
// half-edge weights in §4.5.3 are defined against.
func edgeGlobalT(view *tileview.View, edgeIndex uint32, segIndex int, segT float64) float64 {
	pts := view.AppendEdgeShape(edgeIndex, nil, false)
	if len(pts) < 2 {
		return 0
	}
	var before, total float64
	for k := 0; k+1 < len(pts); k++ {
		segLen := geo.Haversine(pts[k].Lat, pts[k].Lon, pts[k+1].Lat, pts[k+1].Lon)
		switch {
		case k < segIndex:
			before += segLen
		case k == segIndex:
			before += segT * segLen
		}
		total += segLen
	}
	if total <= 0 {
		return 0
	}
	return before / total
}
