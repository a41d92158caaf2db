package graph

import (
	"testing"

	"github.com/azybler/tilerouter/internal/tileblob"
	"github.com/azybler/tilerouter/internal/tiles"
	"github.com/azybler/tilerouter/internal/tileview"
)

func twoWayRoadTile() *tileblob.LandTile {
	return &tileblob.LandTile{
		Z: 14, X: 1, Y: 1,
		Nodes: []tileblob.Node{
			{LatQ: 1000000, LonQ: 103000000, FirstEdge: 0, EdgeCount: 1},
			{LatQ: 1001000, LonQ: 103000000, FirstEdge: 1, EdgeCount: 0},
		},
		Edges: []tileblob.Edge{
			{FromNode: 0, ToNode: 1, LengthM: 111, SpeedMPS: 10, FootSpeedMPS: 1.4,
				Oneway: false, AccessMask: tiles.AccessCar | tiles.AccessFoot},
		},
	}
}

func TestBuildAddsBothDirectionsForTwoWayEdge(t *testing.T) {
	v := tileview.New(tiles.Key{Z: 14, X: 1, Y: 1}, twoWayRoadTile())
	g := Build([]*tileview.View{v}, tiles.Car)

	if g.NodeCount() != 2 {
		t.Fatalf("NodeCount() = %d, want 2", g.NodeCount())
	}
	if len(g.Adj[0]) != 1 || len(g.Adj[1]) != 1 {
		t.Fatalf("expected one outgoing edge per node, got Adj[0]=%d Adj[1]=%d", len(g.Adj[0]), len(g.Adj[1]))
	}
	if len(g.In[0]) != 1 || len(g.In[1]) != 1 {
		t.Errorf("expected one reverse back-pointer per node, got In[0]=%d In[1]=%d", len(g.In[0]), len(g.In[1]))
	}
}

func TestBuildOnewayOmitsReverseEdge(t *testing.T) {
	tile := twoWayRoadTile()
	tile.Edges[0].Oneway = true
	v := tileview.New(tiles.Key{Z: 14, X: 1, Y: 1}, tile)
	g := Build([]*tileview.View{v}, tiles.Car)

	if len(g.Adj[0]) != 1 {
		t.Errorf("expected forward edge from node 0")
	}
	if len(g.Adj[1]) != 0 {
		t.Errorf("expected no reverse edge for a oneway edge, got %d", len(g.Adj[1]))
	}
}

func TestBuildFusesSharedBorderNode(t *testing.T) {
	tileA := &tileblob.LandTile{
		Z: 14, X: 1, Y: 1,
		Nodes: []tileblob.Node{
			{LatQ: 1000000, LonQ: 103000000, FirstEdge: 0, EdgeCount: 1}, // border node
			{LatQ: 999000, LonQ: 102999000, FirstEdge: 1, EdgeCount: 0},
		},
		Edges: []tileblob.Edge{
			{FromNode: 1, ToNode: 0, LengthM: 50, SpeedMPS: 10, AccessMask: tiles.AccessCar, Oneway: true},
		},
	}
	tileB := &tileblob.LandTile{
		Z: 14, X: 2, Y: 1,
		Nodes: []tileblob.Node{
			{LatQ: 1000000, LonQ: 103000000, FirstEdge: 0, EdgeCount: 1}, // same border node
			{LatQ: 1002000, LonQ: 103002000, FirstEdge: 1, EdgeCount: 0},
		},
		Edges: []tileblob.Edge{
			{FromNode: 0, ToNode: 1, LengthM: 80, SpeedMPS: 10, AccessMask: tiles.AccessCar, Oneway: true},
		},
	}

	vA := tileview.New(tiles.Key{Z: 14, X: 1, Y: 1}, tileA)
	vB := tileview.New(tiles.Key{Z: 14, X: 2, Y: 1}, tileB)
	g := Build([]*tileview.View{vA, vB}, tiles.Car)

	if g.NodeCount() != 3 {
		t.Fatalf("NodeCount() = %d, want 3 (border node fused)", g.NodeCount())
	}
}

func TestBuildOmitsInaccessibleEdges(t *testing.T) {
	tile := twoWayRoadTile()
	tile.Edges[0].AccessMask = tiles.AccessFoot // car-inaccessible
	v := tileview.New(tiles.Key{Z: 14, X: 1, Y: 1}, tile)
	g := Build([]*tileview.View{v}, tiles.Car)

	for i, adj := range g.Adj {
		if len(adj) != 0 {
			t.Errorf("node %d has %d outgoing edges, want 0 under car profile", i, len(adj))
		}
	}
}
