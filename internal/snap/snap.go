// Package snap implements map-matching: projecting a free geographic
// coordinate onto the nearest traversable edge across a set of loaded
// tile views.
package snap

import (
	"github.com/azybler/tilerouter/internal/geo"
	"github.com/azybler/tilerouter/internal/tileblob"
	"github.com/azybler/tilerouter/internal/tiles"
	"github.com/azybler/tilerouter/internal/tileview"
)

// EdgeSnap is the result of a successful snap: the owning tile view, the
// local edge index within it, the polyline segment the projection fell
// on, the segment parameter, the projected coordinate, and the
// great-circle distance from the query point to the projection.
type EdgeSnap struct {
	View      *tileview.View
	EdgeIndex uint32
	SegIndex  int
	T         float64
	ProjLat   float64
	ProjLon   float64
	DistM     float64
}

// Snap finds the nearest traversable edge position across all of views
// for the given profile, or reports ok=false if no edge in any view is
// traversable under the profile.
func Snap(views []*tileview.View, lat, lon float64, profile tiles.Profile) (EdgeSnap, bool) {
	var best EdgeSnap
	found := false

	for _, v := range views {
		for ei := 0; ei < v.EdgeCount(); ei++ {
			e := v.Edge(uint32(ei))
			if !traversable(e, profile) {
				continue
			}

			pts := v.AppendEdgeShape(uint32(ei), nil, false)
			if len(pts) < 2 {
				continue
			}

			for k := 0; k+1 < len(pts); k++ {
				a, b := pts[k], pts[k+1]
				projLat, projLon, t := geo.ProjectPointToSegment(lat, lon, a.Lat, a.Lon, b.Lat, b.Lon)
				d := geo.Haversine(lat, lon, projLat, projLon)
				if !found || d < best.DistM {
					found = true
					best = EdgeSnap{
						View:      v,
						EdgeIndex: uint32(ei),
						SegIndex:  k,
						T:         t,
						ProjLat:   projLat,
						ProjLon:   projLon,
						DistM:     d,
					}
				}
			}
		}
	}

	return best, found
}

// traversable reports whether e carries a positive profile-specific speed
// and the profile's access_mask bit.
func traversable(e tileblob.Edge, profile tiles.Profile) bool {
	switch profile {
	case tiles.Foot:
		return e.FootSpeedMPS > 0 && e.AccessMask&tiles.AccessFoot != 0
	default:
		return e.SpeedMPS > 0 && e.AccessMask&tiles.AccessCar != 0
	}
}
