package tiles

// EdgeID is a stable 64-bit identifier for any edge anywhere in the
// dataset, packing (z, x, y, edge_index) into bit fields
// [z:8][x:20][y:20][edge_index:16].
type EdgeID uint64

// MakeEdgeID packs a tile key and an edge index into a single EdgeID.
func MakeEdgeID(z, x, y int, edgeIndex uint16) EdgeID {
	var id uint64
	id |= (uint64(z) & 0xFF) << 56
	id |= (uint64(x) & 0xFFFFF) << 36
	id |= (uint64(y) & 0xFFFFF) << 16
	id |= uint64(edgeIndex) & 0xFFFF
	return EdgeID(id)
}

// Decode unpacks an EdgeID back into its tile key and edge index.
func (id EdgeID) Decode() (z, x, y int, edgeIndex uint16) {
	v := uint64(id)
	z = int((v >> 56) & 0xFF)
	x = int((v >> 36) & 0xFFFFF)
	y = int((v >> 16) & 0xFFFFF)
	edgeIndex = uint16(v & 0xFFFF)
	return
}
