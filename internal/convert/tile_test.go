package convert

import (
	"testing"

	"github.com/azybler/tilerouter/internal/tiles"
)

func TestSplitDirectionsBidirectional(t *testing.T) {
	s := segment{
		FromID: 1, ToID: 2,
		FromLat: 1.0, FromLon: 1.0, ToLat: 1.001, ToLon: 1.0,
		RoadClass: tiles.Residential, CarSpeedMPS: 13.89, FootSpeedMPS: 1.4,
		CarForward: true, CarBackward: true, FootForward: true, FootBackward: true,
	}
	out := splitDirections(s)
	if len(out) != 2 {
		t.Fatalf("expected 2 directed edges, got %d", len(out))
	}
	for _, e := range out {
		if e.accessMask != tiles.AccessCar|tiles.AccessFoot {
			t.Fatalf("expected both access bits set, got %x", e.accessMask)
		}
	}
}

func TestSplitDirectionsCarOnewayFootBidirectional(t *testing.T) {
	s := segment{
		FromID: 1, ToID: 2,
		FromLat: 1.0, FromLon: 1.0, ToLat: 1.001, ToLon: 1.0,
		RoadClass: tiles.Residential, CarSpeedMPS: 13.89, FootSpeedMPS: 1.4,
		CarForward: true, CarBackward: false, FootForward: true, FootBackward: true,
	}
	out := splitDirections(s)
	if len(out) != 2 {
		t.Fatalf("expected 2 directed edges (fwd both-mode, bwd foot-only), got %d", len(out))
	}
	fwd, bwd := out[0], out[1]
	if fwd.fromID != 1 || fwd.toID != 2 {
		t.Fatalf("first edge should be forward")
	}
	if fwd.accessMask != tiles.AccessCar|tiles.AccessFoot {
		t.Fatalf("forward should permit both car and foot, got %x", fwd.accessMask)
	}
	if bwd.fromID != 2 || bwd.toID != 1 {
		t.Fatalf("second edge should be backward")
	}
	if bwd.accessMask != tiles.AccessFoot {
		t.Fatalf("backward should permit only foot, got %x", bwd.accessMask)
	}
	if bwd.speedMPS != 0 {
		t.Fatalf("backward car speed should be 0, got %v", bwd.speedMPS)
	}
}

func TestSplitDirectionsNoAccessProducesNothing(t *testing.T) {
	s := segment{FromID: 1, ToID: 2, RoadClass: tiles.Motorway}
	out := splitDirections(s)
	if len(out) != 0 {
		t.Fatalf("expected no directed edges when no speed/access set, got %d", len(out))
	}
}

func TestBucketAndBuildLandTile(t *testing.T) {
	segs := []segment{
		{
			FromID: 1, ToID: 2,
			FromLat: 51.5007, FromLon: -0.1246, ToLat: 51.5010, ToLon: -0.1240,
			RoadClass: tiles.Residential, CarSpeedMPS: 13.89, FootSpeedMPS: 1.4,
			CarForward: true, CarBackward: true, FootForward: true, FootBackward: true,
		},
		{
			FromID: 2, ToID: 3,
			FromLat: 51.5010, FromLon: -0.1240, ToLat: 51.5012, ToLon: -0.1238,
			RoadClass: tiles.Residential, CarSpeedMPS: 13.89, FootSpeedMPS: 1.4,
			CarForward: true, CarBackward: true, FootForward: true, FootBackward: true,
		},
	}

	buckets := bucketSegments(segs, 14)
	if len(buckets) != 1 {
		t.Fatalf("expected both nearby segments in one tile, got %d tiles", len(buckets))
	}
	var acc *tileAccumulator
	for _, v := range buckets {
		acc = v
	}

	lt := buildLandTile(acc, 1)
	if len(lt.Nodes) != 3 {
		t.Fatalf("expected 3 distinct nodes (1,2,3), got %d", len(lt.Nodes))
	}
	if len(lt.Edges) != 4 {
		t.Fatalf("expected 4 directed edges (2 segments x 2 directions), got %d", len(lt.Edges))
	}
	if lt.ProfileMask&tiles.AccessCar == 0 || lt.ProfileMask&tiles.AccessFoot == 0 {
		t.Fatalf("expected profile mask to cover both car and foot, got %x", lt.ProfileMask)
	}
	if lt.Checksum == "" {
		t.Fatalf("expected a non-empty checksum")
	}

	// Node adjacency ranges must be contiguous and non-overlapping, and
	// every edge within a node's claimed range must actually originate there.
	seen := make([]bool, len(lt.Edges))
	for nodeIdx, n := range lt.Nodes {
		for i := uint32(0); i < uint32(n.EdgeCount); i++ {
			idx := n.FirstEdge + i
			if seen[idx] {
				t.Fatalf("edge %d claimed by more than one node's adjacency range", idx)
			}
			seen[idx] = true
			if int(lt.Edges[idx].FromNode) != nodeIdx {
				t.Fatalf("edge %d's FromNode does not match its claiming node %d", idx, nodeIdx)
			}
		}
	}
}
