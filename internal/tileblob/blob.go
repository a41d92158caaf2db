// Package tileblob defines the decoded form of a single land tile (the
// unit of storage in the tile container) and the tagged binary codec used
// to persist it as a BLOB column.
package tileblob

// Node is a tile-local node: quantized coordinates plus an adjacency
// pointer pair into the tile's forward edge array.
type Node struct {
	LatQ, LonQ int32
	FirstEdge  uint32
	EdgeCount  uint16
}

// Edge is a tile-local directed edge.
type Edge struct {
	FromNode, ToNode uint32
	LengthM          float32
	SpeedMPS         float32
	FootSpeedMPS     float32
	Oneway           bool
	RoadClass        uint8
	AccessMask       uint16
	ShapeStart       uint32
	ShapeCount       uint16
	EncodedPolyline  string
}

// ShapePoint is a quantized lat/lon shape vertex.
type ShapePoint struct {
	LatQ, LonQ int32
}

// LandTile is the decoded form of a single tile blob.
type LandTile struct {
	Z, X, Y     uint32
	Nodes       []Node
	Edges       []Edge
	Shapes      []ShapePoint
	Version     uint32
	Checksum    string
	ProfileMask uint32
}
