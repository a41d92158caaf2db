package tileblob

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

const (
	magicBytes = "LANDTILE"
	version    = uint32(1)
)

// Encode serializes a LandTile into the tagged binary blob format: a
// magic+version+counts header, the node/edge/shape arrays, and a CRC32
// trailer over everything preceding it. The layout mirrors the teacher's
// own binary graph format (magic bytes, versioned header, checksummed
// trailer) rather than the FlatBuffers schema the blob is specified
// against, since no FlatBuffers runtime is available in this environment.
func Encode(t *LandTile) ([]byte, error) {
	var buf bytes.Buffer
	w := &crcWriter{w: &buf, hash: crc32.NewIEEE()}

	if err := writeString8(w, magicBytes); err != nil {
		return nil, err
	}
	if err := binary.Write(w, binary.LittleEndian, version); err != nil {
		return nil, err
	}
	if err := binary.Write(w, binary.LittleEndian, t.Z); err != nil {
		return nil, err
	}
	if err := binary.Write(w, binary.LittleEndian, t.X); err != nil {
		return nil, err
	}
	if err := binary.Write(w, binary.LittleEndian, t.Y); err != nil {
		return nil, err
	}
	if err := binary.Write(w, binary.LittleEndian, t.ProfileMask); err != nil {
		return nil, err
	}
	if err := writeString32(w, t.Checksum); err != nil {
		return nil, err
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(len(t.Nodes))); err != nil {
		return nil, err
	}
	for _, n := range t.Nodes {
		if err := writeNode(w, n); err != nil {
			return nil, err
		}
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(len(t.Edges))); err != nil {
		return nil, err
	}
	for _, e := range t.Edges {
		if err := writeEdge(w, e); err != nil {
			return nil, err
		}
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(len(t.Shapes))); err != nil {
		return nil, err
	}
	for _, s := range t.Shapes {
		if err := binary.Write(w, binary.LittleEndian, s.LatQ); err != nil {
			return nil, err
		}
		if err := binary.Write(w, binary.LittleEndian, s.LonQ); err != nil {
			return nil, err
		}
	}

	checksum := w.hash.Sum32()
	if err := binary.Write(&buf, binary.LittleEndian, checksum); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses a tile blob produced by Encode. It returns an error
// (surfaced by the Tile Store caller as DATA_ERROR) if the magic bytes,
// version, or trailing CRC32 don't match.
func Decode(data []byte) (*LandTile, error) {
	r := &crcReader{r: bytes.NewReader(data), hash: crc32.NewIEEE()}

	magic, err := readString8(r)
	if err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if magic != magicBytes {
		return nil, fmt.Errorf("bad magic bytes: %q", magic)
	}

	var v uint32
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	if v != version {
		return nil, fmt.Errorf("unsupported tile blob version: %d", v)
	}

	t := &LandTile{Version: v}
	if err := binary.Read(r, binary.LittleEndian, &t.Z); err != nil {
		return nil, fmt.Errorf("read z: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &t.X); err != nil {
		return nil, fmt.Errorf("read x: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &t.Y); err != nil {
		return nil, fmt.Errorf("read y: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &t.ProfileMask); err != nil {
		return nil, fmt.Errorf("read profile_mask: %w", err)
	}
	if t.Checksum, err = readString32(r); err != nil {
		return nil, fmt.Errorf("read checksum: %w", err)
	}

	var nodeCount uint32
	if err := binary.Read(r, binary.LittleEndian, &nodeCount); err != nil {
		return nil, fmt.Errorf("read node count: %w", err)
	}
	t.Nodes = make([]Node, nodeCount)
	for i := range t.Nodes {
		if t.Nodes[i], err = readNode(r); err != nil {
			return nil, fmt.Errorf("read node %d: %w", i, err)
		}
	}

	var edgeCount uint32
	if err := binary.Read(r, binary.LittleEndian, &edgeCount); err != nil {
		return nil, fmt.Errorf("read edge count: %w", err)
	}
	t.Edges = make([]Edge, edgeCount)
	for i := range t.Edges {
		if t.Edges[i], err = readEdge(r); err != nil {
			return nil, fmt.Errorf("read edge %d: %w", i, err)
		}
	}

	var shapeCount uint32
	if err := binary.Read(r, binary.LittleEndian, &shapeCount); err != nil {
		return nil, fmt.Errorf("read shape count: %w", err)
	}
	t.Shapes = make([]ShapePoint, shapeCount)
	for i := range t.Shapes {
		if err := binary.Read(r, binary.LittleEndian, &t.Shapes[i].LatQ); err != nil {
			return nil, fmt.Errorf("read shape %d lat: %w", i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &t.Shapes[i].LonQ); err != nil {
			return nil, fmt.Errorf("read shape %d lon: %w", i, err)
		}
	}

	expected := r.hash.Sum32()
	var stored uint32
	if err := binary.Read(r.r, binary.LittleEndian, &stored); err != nil {
		return nil, fmt.Errorf("read crc32 trailer: %w", err)
	}
	if stored != expected {
		return nil, fmt.Errorf("crc32 mismatch: stored=%08x computed=%08x", stored, expected)
	}

	return t, nil
}

func writeNode(w io.Writer, n Node) error {
	for _, v := range []any{n.LatQ, n.LonQ, n.FirstEdge, n.EdgeCount} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

func readNode(r io.Reader) (Node, error) {
	var n Node
	if err := binary.Read(r, binary.LittleEndian, &n.LatQ); err != nil {
		return n, err
	}
	if err := binary.Read(r, binary.LittleEndian, &n.LonQ); err != nil {
		return n, err
	}
	if err := binary.Read(r, binary.LittleEndian, &n.FirstEdge); err != nil {
		return n, err
	}
	if err := binary.Read(r, binary.LittleEndian, &n.EdgeCount); err != nil {
		return n, err
	}
	return n, nil
}

func writeEdge(w io.Writer, e Edge) error {
	if err := binary.Write(w, binary.LittleEndian, e.FromNode); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, e.ToNode); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, e.LengthM); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, e.SpeedMPS); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, e.FootSpeedMPS); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, e.Oneway); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, e.RoadClass); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, e.AccessMask); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, e.ShapeStart); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, e.ShapeCount); err != nil {
		return err
	}
	return writeString32(w, e.EncodedPolyline)
}

func readEdge(r io.Reader) (Edge, error) {
	var e Edge
	var err error
	if err = binary.Read(r, binary.LittleEndian, &e.FromNode); err != nil {
		return e, err
	}
	if err = binary.Read(r, binary.LittleEndian, &e.ToNode); err != nil {
		return e, err
	}
	if err = binary.Read(r, binary.LittleEndian, &e.LengthM); err != nil {
		return e, err
	}
	if err = binary.Read(r, binary.LittleEndian, &e.SpeedMPS); err != nil {
		return e, err
	}
	if err = binary.Read(r, binary.LittleEndian, &e.FootSpeedMPS); err != nil {
		return e, err
	}
	if err = binary.Read(r, binary.LittleEndian, &e.Oneway); err != nil {
		return e, err
	}
	if err = binary.Read(r, binary.LittleEndian, &e.RoadClass); err != nil {
		return e, err
	}
	if err = binary.Read(r, binary.LittleEndian, &e.AccessMask); err != nil {
		return e, err
	}
	if err = binary.Read(r, binary.LittleEndian, &e.ShapeStart); err != nil {
		return e, err
	}
	if err = binary.Read(r, binary.LittleEndian, &e.ShapeCount); err != nil {
		return e, err
	}
	e.EncodedPolyline, err = readString32(r)
	return e, err
}

// writeString8 writes a length-prefixed (uint8) string; used only for the
// fixed 8-byte magic.
func writeString8(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint8(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString8(r io.Reader) (string, error) {
	var n uint8
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeString32(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString32(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// crcWriter hashes everything written through it, for the CRC32 trailer.
type crcWriter struct {
	w    io.Writer
	hash hashWriter
}

type hashWriter interface {
	io.Writer
	Sum32() uint32
}

func (cw *crcWriter) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crcReader struct {
	r    io.Reader
	hash hashWriter
}

func (cr *crcReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
