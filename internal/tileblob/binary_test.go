package tileblob

import "testing"

func sampleTile() *LandTile {
	return &LandTile{
		Z: 14, X: 12345, Y: 8192,
		ProfileMask: 3, // car | foot, see internal/tiles.AccessCar / AccessFoot
		Checksum:    "deadbeef",
		Nodes: []Node{
			{LatQ: 1352100, LonQ: 103819800, FirstEdge: 0, EdgeCount: 2},
			{LatQ: 1352200, LonQ: 103819900, FirstEdge: 2, EdgeCount: 1},
		},
		Edges: []Edge{
			{FromNode: 0, ToNode: 1, LengthM: 123.4, SpeedMPS: 13.89, FootSpeedMPS: 1.4,
				Oneway: false, RoadClass: 3, AccessMask: 3, ShapeStart: 0, ShapeCount: 0,
				EncodedPolyline: "_p~iF~ps|U_ulLnnqC_mqNvxq`@"},
			{FromNode: 1, ToNode: 0, LengthM: 123.4, SpeedMPS: 13.89, FootSpeedMPS: 1.4,
				Oneway: false, RoadClass: 3, AccessMask: 3},
			{FromNode: 1, ToNode: 0, LengthM: 50, SpeedMPS: 1.4, FootSpeedMPS: 1.4,
				Oneway: true, RoadClass: 4, AccessMask: 2, EncodedPolyline: ""},
		},
		Shapes: []ShapePoint{
			{LatQ: 1352100, LonQ: 103819800},
			{LatQ: 1352150, LonQ: 103819850},
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	orig := sampleTile()
	data, err := Encode(orig)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got.Z != orig.Z || got.X != orig.X || got.Y != orig.Y {
		t.Errorf("tile key mismatch: got (%d,%d,%d) want (%d,%d,%d)", got.Z, got.X, got.Y, orig.Z, orig.X, orig.Y)
	}
	if got.ProfileMask != orig.ProfileMask {
		t.Errorf("profile mask mismatch: got %d want %d", got.ProfileMask, orig.ProfileMask)
	}
	if got.Checksum != orig.Checksum {
		t.Errorf("checksum mismatch: got %q want %q", got.Checksum, orig.Checksum)
	}
	if len(got.Nodes) != len(orig.Nodes) {
		t.Fatalf("node count mismatch: got %d want %d", len(got.Nodes), len(orig.Nodes))
	}
	for i := range orig.Nodes {
		if got.Nodes[i] != orig.Nodes[i] {
			t.Errorf("node %d mismatch: got %+v want %+v", i, got.Nodes[i], orig.Nodes[i])
		}
	}
	if len(got.Edges) != len(orig.Edges) {
		t.Fatalf("edge count mismatch: got %d want %d", len(got.Edges), len(orig.Edges))
	}
	for i := range orig.Edges {
		if got.Edges[i] != orig.Edges[i] {
			t.Errorf("edge %d mismatch: got %+v want %+v", i, got.Edges[i], orig.Edges[i])
		}
	}
	if len(got.Shapes) != len(orig.Shapes) {
		t.Fatalf("shape count mismatch: got %d want %d", len(got.Shapes), len(orig.Shapes))
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	data, err := Encode(sampleTile())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data[1] ^= 0xFF
	if _, err := Decode(data); err == nil {
		t.Errorf("expected error decoding tile with corrupted magic byte")
	}
}

func TestDecodeRejectsCorruptedPayload(t *testing.T) {
	data, err := Encode(sampleTile())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// Flip a byte well inside the node/edge payload, leaving the header intact.
	data[len(data)/2] ^= 0xFF
	if _, err := Decode(data); err == nil {
		t.Errorf("expected crc32 mismatch error decoding corrupted tile")
	}
}

func TestEncodeEmptyTile(t *testing.T) {
	empty := &LandTile{Z: 1, X: 2, Y: 3}
	data, err := Encode(empty)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got.Nodes) != 0 || len(got.Edges) != 0 || len(got.Shapes) != 0 {
		t.Errorf("expected empty arrays, got nodes=%d edges=%d shapes=%d", len(got.Nodes), len(got.Edges), len(got.Shapes))
	}
}
