package snap

import (
	"testing"

	"github.com/azybler/tilerouter/internal/tileblob"
	"github.com/azybler/tilerouter/internal/tiles"
	"github.com/azybler/tilerouter/internal/tileview"
)

func viewWithOneRoad(t *testing.T) *tileview.View {
	t.Helper()
	tile := &tileblob.LandTile{
		Z: 14, X: 1, Y: 1,
		Nodes: []tileblob.Node{
			{LatQ: 1000000, LonQ: 103000000, FirstEdge: 0, EdgeCount: 1},
			{LatQ: 1001000, LonQ: 103000000, FirstEdge: 1, EdgeCount: 0},
		},
		Edges: []tileblob.Edge{
			{FromNode: 0, ToNode: 1, LengthM: 111, SpeedMPS: 13.89, FootSpeedMPS: 1.4,
				AccessMask: tiles.AccessCar | tiles.AccessFoot, RoadClass: uint8(tiles.Residential)},
		},
	}
	return tileview.New(tiles.Key{Z: 14, X: 1, Y: 1}, tile)
}

func TestSnapFindsNearestOnRoad(t *testing.T) {
	v := viewWithOneRoad(t)
	result, ok := Snap([]*tileview.View{v}, 1.0005, 103.0001, tiles.Car)
	if !ok {
		t.Fatalf("expected a snap match")
	}
	if result.EdgeIndex != 0 {
		t.Errorf("EdgeIndex = %d, want 0", result.EdgeIndex)
	}
	if result.T < 0 || result.T > 1 {
		t.Errorf("T = %f, want within [0,1]", result.T)
	}
	if result.DistM < 0 {
		t.Errorf("DistM = %f, should be non-negative", result.DistM)
	}
}

func TestSnapSkipsInaccessibleEdges(t *testing.T) {
	tile := &tileblob.LandTile{
		Nodes: []tileblob.Node{
			{LatQ: 1000000, LonQ: 103000000, FirstEdge: 0, EdgeCount: 1},
			{LatQ: 1001000, LonQ: 103000000, FirstEdge: 1, EdgeCount: 0},
		},
		Edges: []tileblob.Edge{
			{FromNode: 0, ToNode: 1, LengthM: 111, SpeedMPS: 13.89, FootSpeedMPS: 0,
				AccessMask: tiles.AccessCar}, // foot inaccessible: zero speed and no access bit
		},
	}
	v := tileview.New(tiles.Key{Z: 14, X: 1, Y: 1}, tile)

	_, ok := Snap([]*tileview.View{v}, 1.0005, 103.0001, tiles.Foot)
	if ok {
		t.Errorf("expected no snap under foot profile for a car-only edge")
	}

	_, ok = Snap([]*tileview.View{v}, 1.0005, 103.0001, tiles.Car)
	if !ok {
		t.Errorf("expected a snap under car profile")
	}
}

func TestSnapNoTraversableEdgesReturnsFalse(t *testing.T) {
	v := tileview.New(tiles.Key{Z: 14, X: 1, Y: 1}, &tileblob.LandTile{})
	_, ok := Snap([]*tileview.View{v}, 1.0, 103.0, tiles.Car)
	if ok {
		t.Errorf("expected no snap against an empty tile")
	}
}
