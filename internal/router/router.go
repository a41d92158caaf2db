// Package router implements the bidirectional A* search over an
// on-demand, multi-tile fused graph: tile-set selection around a pair of
// waypoints, map-matching each endpoint to a traversable edge, attaching
// virtual source/target nodes with fractional half-edges, searching, and
// assembling the resulting polyline, distance, duration, and edge ids.
package router

import (
	"fmt"
	"math"

	"github.com/azybler/tilerouter/internal/container"
	"github.com/azybler/tilerouter/internal/geo"
	"github.com/azybler/tilerouter/internal/graph"
	"github.com/azybler/tilerouter/internal/snap"
	"github.com/azybler/tilerouter/internal/tiles"
	"github.com/azybler/tilerouter/internal/tilestore"
	"github.com/azybler/tilerouter/internal/tileview"
)

// Options configures a Router.
type Options struct {
	TileZoom          int
	TileCacheCapacity int
}

// DefaultOptions returns the documented defaults: zoom 14, a 128-tile LRU.
func DefaultOptions() Options {
	return Options{TileZoom: 14, TileCacheCapacity: 128}
}

// Router answers route queries against a single container database. It
// is logically private to its own Tile Store; concurrent queries against
// one Router require external serialization.
type Router struct {
	reader *container.Reader
	store  *tilestore.Store
	opts   Options
}

// New opens the container at path and constructs a Router. A failure to
// open the container is fatal and reported to the caller, unlike query
// failures, which are reported through RouteResult.
func New(path string, opts Options) (*Router, error) {
	reader, err := container.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open container: %w", err)
	}
	return &Router{
		reader: reader,
		store:  tilestore.New(reader, opts.TileCacheCapacity),
		opts:   opts,
	}, nil
}

// Close releases the underlying container handle.
func (r *Router) Close() error { return r.reader.Close() }

// Coord is a plain floating-point waypoint.
type Coord struct {
	Lat, Lon float64
}

// RouteResult is the outcome of a Route call.
type RouteResult struct {
	Status       Status
	Polyline     []Coord
	DistanceM    float64
	DurationS    float64
	EdgeIDs      []tiles.EdgeID
	ErrorMessage string
}

func fail(status Status, format string, args ...interface{}) RouteResult {
	return RouteResult{Status: status, ErrorMessage: fmt.Sprintf(format, args...)}
}

// Route computes a route through waypoints (≥ 2 coordinates) under the
// given profile, routing each consecutive pair independently and
// concatenating the results.
func (r *Router) Route(profile tiles.Profile, waypoints []Coord) RouteResult {
	if len(waypoints) < 2 {
		return fail(InternalError, "route requires at least two waypoints, got %d", len(waypoints))
	}

	var total RouteResult
	total.Status = OK

	for i := 0; i+1 < len(waypoints); i++ {
		seg := r.routeSegment(profile, waypoints[i], waypoints[i+1])
		if seg.Status != OK {
			return seg
		}
		if i == 0 {
			total.Polyline = seg.Polyline
			total.EdgeIDs = seg.EdgeIDs
		} else {
			// The last point of segment i equals the first point of
			// segment i+1; suppress the duplicate.
			if len(seg.Polyline) > 0 {
				total.Polyline = append(total.Polyline, seg.Polyline[1:]...)
			}
			// Likewise, when both segments touch the waypoint's host edge,
			// its EdgeID is not repeated across the boundary.
			ids := seg.EdgeIDs
			if n := len(total.EdgeIDs); n > 0 && len(ids) > 0 && ids[0] == total.EdgeIDs[n-1] {
				ids = ids[1:]
			}
			total.EdgeIDs = append(total.EdgeIDs, ids...)
		}
		total.DistanceM += seg.DistanceM
		total.DurationS += seg.DurationS
	}

	return total
}

// routeSegment routes a single start→end pair.
func (r *Router) routeSegment(profile tiles.Profile, start, end Coord) RouteResult {
	if start.Lat == end.Lat && start.Lon == end.Lon {
		return RouteResult{
			Status:   OK,
			Polyline: []Coord{start},
		}
	}

	views, err := r.loadTileSet(start, end)
	if err != nil {
		return fail(DataError, "loading tiles: %v", err)
	}
	if len(views) == 0 {
		return fail(NoTile, "no tiles available for the requested region")
	}

	return routeOverViews(views, profile, start, end)
}

// routeOverViews runs snapping, graph fusion, virtual-node attachment,
// search, and result assembly over an already-loaded tile-view set. Split
// out from routeSegment so the search pipeline can be exercised directly
// against hand-built fixtures without a container.
func routeOverViews(views []*tileview.View, profile tiles.Profile, start, end Coord) RouteResult {
	startSnap, ok := snap.Snap(views, start.Lat, start.Lon, profile)
	if !ok {
		return fail(NoRoute, "failed to snap start point to a traversable edge")
	}
	endSnap, ok := snap.Snap(views, end.Lat, end.Lon, profile)
	if !ok {
		return fail(NoRoute, "failed to snap end point to a traversable edge")
	}

	g := graph.Build(views, profile)

	vS, vE, err := attachVirtualNodes(g, startSnap, endSnap, profile)
	if err != nil {
		return fail(NoRoute, "%v", err)
	}

	qs := newQueryState(g.NodeCount())
	hSpeed := profile.HeuristicSpeedMPS()
	res := runBidirectionalAStar(g, qs, vS, vE, g.Lat[vS], g.Lon[vS], g.Lat[vE], g.Lon[vE], hSpeed)
	if !res.found {
		return fail(NoRoute, "no connected path between the snapped endpoints")
	}

	edges := reconstructEdges(g, qs, res.meetNode)
	return assembleResult(g, edges, res.mu)
}

// loadTileSet implements the §4.5.1 tile-set selection: the expansion
// frame grows with straight-line distance, clamped to [1,8], around the
// axis-aligned rectangle spanning both endpoints' tiles.
func (r *Router) loadTileSet(start, end Coord) ([]*tileview.View, error) {
	z := r.opts.TileZoom
	distKm := geo.Haversine(start.Lat, start.Lon, end.Lat, end.Lon) / 1000.0
	frame := int(math.Ceil(distKm/4.0)) + 1
	if frame < 1 {
		frame = 1
	} else if frame > 8 {
		frame = 8
	}

	k0 := tiles.KeyFor(start.Lat, start.Lon, z)
	k1 := tiles.KeyFor(end.Lat, end.Lon, z)

	xMin, xMax := minInt(k0.X, k1.X)-frame, maxInt(k0.X, k1.X)+frame
	yMin, yMax := minInt(k0.Y, k1.Y)-frame, maxInt(k0.Y, k1.Y)+frame

	var views []*tileview.View
	for x := xMin; x <= xMax; x++ {
		for y := yMin; y <= yMax; y++ {
			if x < 0 || y < 0 {
				continue
			}
			key := tiles.Key{Z: z, X: x, Y: y}
			tile, err := r.store.Load(key)
			if err != nil {
				return nil, err
			}
			if tile == nil || len(tile.Nodes) == 0 {
				continue
			}
			views = append(views, tileview.New(key, tile))
		}
	}
	return views, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
