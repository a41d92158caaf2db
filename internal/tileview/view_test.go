package tileview

import (
	"testing"

	"github.com/azybler/tilerouter/internal/tileblob"
	"github.com/azybler/tilerouter/internal/tiles"
)

func sampleTile() *tileblob.LandTile {
	return &tileblob.LandTile{
		Z: 14, X: 1, Y: 1,
		Nodes: []tileblob.Node{
			{LatQ: 1000000, LonQ: 103000000, FirstEdge: 0, EdgeCount: 2},
			{LatQ: 1000100, LonQ: 103000100, FirstEdge: 2, EdgeCount: 1},
			{LatQ: 1000200, LonQ: 103000200, FirstEdge: 3, EdgeCount: 0},
		},
		Edges: []tileblob.Edge{
			{FromNode: 0, ToNode: 1, LengthM: 10},
			{FromNode: 0, ToNode: 2, LengthM: 20},
			{FromNode: 1, ToNode: 2, LengthM: 15},
		},
	}
}

func TestOutEdges(t *testing.T) {
	v := New(tiles.Key{Z: 14, X: 1, Y: 1}, sampleTile())
	out := v.OutEdges(0)
	if len(out) != 2 || out[0] != 0 || out[1] != 1 {
		t.Errorf("OutEdges(0) = %v, want [0 1]", out)
	}
	if len(v.OutEdges(2)) != 0 {
		t.Errorf("OutEdges(2) should be empty")
	}
}

func TestInEdgesLazyBuild(t *testing.T) {
	v := New(tiles.Key{Z: 14, X: 1, Y: 1}, sampleTile())
	in := v.InEdges(2)
	if len(in) != 2 {
		t.Fatalf("InEdges(2) = %v, want 2 entries", in)
	}
	// Idempotent: calling again must not rebuild or change the result.
	in2 := v.InEdges(2)
	if len(in2) != len(in) {
		t.Errorf("InEdges(2) changed across calls: %v vs %v", in, in2)
	}
	if len(v.InEdges(0)) != 0 {
		t.Errorf("node 0 has no incoming edges")
	}
}

func TestAppendEdgeShapeEndpointFallback(t *testing.T) {
	v := New(tiles.Key{Z: 14, X: 1, Y: 1}, sampleTile())
	pts := v.AppendEdgeShape(0, nil, false)
	if len(pts) != 2 {
		t.Fatalf("expected endpoint fallback to produce 2 points, got %d", len(pts))
	}
}

func TestAppendEdgeShapeExplicitShapeTakesPriority(t *testing.T) {
	tile := sampleTile()
	tile.Shapes = []tileblob.ShapePoint{
		{LatQ: 1000000, LonQ: 103000000},
		{LatQ: 1000050, LonQ: 103000050},
		{LatQ: 1000100, LonQ: 103000100},
	}
	tile.Edges[0].ShapeStart = 0
	tile.Edges[0].ShapeCount = 3
	tile.Edges[0].EncodedPolyline = "should_be_ignored"

	v := New(tiles.Key{Z: 14, X: 1, Y: 1}, tile)
	pts := v.AppendEdgeShape(0, nil, false)
	if len(pts) != 3 {
		t.Fatalf("expected explicit shape (3 points), got %d", len(pts))
	}
}

func TestAppendEdgeShapeSkipFirst(t *testing.T) {
	v := New(tiles.Key{Z: 14, X: 1, Y: 1}, sampleTile())
	full := v.AppendEdgeShape(0, nil, false)
	trimmed := v.AppendEdgeShape(0, nil, true)
	if len(trimmed) != len(full)-1 {
		t.Errorf("skipFirst should drop exactly one point: full=%d trimmed=%d", len(full), len(trimmed))
	}
}
