package router

import (
	"github.com/azybler/tilerouter/internal/geo"
	"github.com/azybler/tilerouter/internal/graph"
	"github.com/azybler/tilerouter/internal/tiles"
)

// reconstructEdges walks F-predecessors from meetNode back to vS (then
// reverses), followed by B-predecessors from meetNode forward to vE, per
// §4.5.4. The backward predecessor entries already name the edge in its
// forward (from→to) orientation — see astar.go's predEntry doc — so no
// direction flip is needed on the backward half.
func reconstructEdges(g *graph.Graph, qs *queryState, meetNode uint32) []graph.Edge {
	var fwdHalf []graph.Edge
	cur := meetNode
	for {
		pred := qs.predF[cur]
		if !pred.has {
			break
		}
		fwdHalf = append(fwdHalf, g.Adj[pred.node][pred.pos])
		cur = pred.node
	}
	for i, j := 0, len(fwdHalf)-1; i < j; i, j = i+1, j-1 {
		fwdHalf[i], fwdHalf[j] = fwdHalf[j], fwdHalf[i]
	}

	var bwdHalf []graph.Edge
	cur = meetNode
	for {
		pred := qs.predB[cur]
		if !pred.has {
			break
		}
		bwdHalf = append(bwdHalf, g.Adj[cur][pred.pos])
		cur = pred.node
	}

	return append(fwdHalf, bwdHalf...)
}

// assembleResult builds the final RouteResult from an ordered edge
// sequence and the search's total duration, per §4.5.5: concatenate each
// edge's polyline (suppressing the shared vertex between consecutive
// edges), accumulate great-circle distance between successive appended
// points, and collect EdgeIds, skipping consecutive duplicates introduced
// when a virtual node's two half-edges reference the same host edge.
func assembleResult(g *graph.Graph, edges []graph.Edge, durationS float64) RouteResult {
	if len(edges) == 0 {
		return fail(NoRoute, "reconstructed path contains no edges")
	}

	var polyline []Coord
	var edgeIDs []tiles.EdgeID
	var distanceM float64
	var lastID tiles.EdgeID
	haveLast := false

	for _, e := range edges {
		pts := e.View.AppendEdgeShape(e.EdgeIdx, nil, false)
		if e.Snap != nil {
			pts = trimAtSnap(pts, e.Snap)
		}
		if e.Reversed {
			reversePoints(pts)
		}
		skip := len(polyline) > 0
		if skip && len(pts) > 0 {
			pts = pts[1:]
		}
		for _, p := range pts {
			if len(polyline) > 0 {
				last := polyline[len(polyline)-1]
				if last.Lat == p.Lat && last.Lon == p.Lon {
					continue
				}
				distanceM += geo.Haversine(last.Lat, last.Lon, p.Lat, p.Lon)
			}
			polyline = append(polyline, Coord{Lat: p.Lat, Lon: p.Lon})
		}

		id := tiles.MakeEdgeID(e.View.Key.Z, e.View.Key.X, e.View.Key.Y, uint16(e.EdgeIdx))
		if !haveLast || id != lastID {
			edgeIDs = append(edgeIDs, id)
			lastID = id
			haveLast = true
		}
	}

	return RouteResult{
		Status:    OK,
		Polyline:  polyline,
		DistanceM: distanceM,
		DurationS: durationS,
		EdgeIDs:   edgeIDs,
	}
}

// trimAtSnap restricts a host edge's full polyline (in its stored
// orientation) to the portion either before or after the snap's
// projection point, splicing the exact projected coordinate in as the
// new boundary vertex.
func trimAtSnap(pts []geo.Point, s *graph.SnapTrim) []geo.Point {
	if len(pts) < 2 {
		return pts
	}
	k := s.SegIndex
	if k < 0 {
		k = 0
	} else if k > len(pts)-2 {
		k = len(pts) - 2
	}
	proj := geo.Point{Lat: s.Lat, Lon: s.Lon}
	if s.FromStart {
		out := make([]geo.Point, 0, k+2)
		out = append(out, pts[:k+1]...)
		return append(out, proj)
	}
	out := make([]geo.Point, 0, len(pts)-k+1)
	out = append(out, proj)
	return append(out, pts[k+1:]...)
}

func reversePoints(pts []geo.Point) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}
