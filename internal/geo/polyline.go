package geo

// DecodePolyline decodes an encoded-polyline string (the Google polyline
// algorithm: signed varint, 5-bit chunks OR-accumulated with a continuation
// high bit, ZigZag-decoded to a signed offset in 1e-5 degrees, accumulated
// from the previous point starting at (0,0)) into a sequence of (lat, lon)
// pairs.
func DecodePolyline(s string) []Point {
	var out []Point
	index, length := 0, len(s)
	lat, lon := 0, 0

	for index < length {
		lat += decodeVarint(s, &index)
		lon += decodeVarint(s, &index)
		out = append(out, Point{Lat: float64(lat) * 1e-5, Lon: float64(lon) * 1e-5})
	}
	return out
}

// Point is a plain floating-point lat/lon pair.
type Point struct {
	Lat float64
	Lon float64
}

func decodeVarint(s string, index *int) int {
	result, shift := 0, uint(0)
	for {
		b := int(s[*index]) - 63
		*index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}
	if result&1 != 0 {
		return ^(result >> 1)
	}
	return result >> 1
}
