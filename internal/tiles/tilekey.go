// Package tiles holds the small, dependency-free types shared across the
// routing engine: tile keys, quantized coordinates, edge identifiers, and
// travel profiles.
package tiles

import "math"

// Key identifies a tile in the Web-Mercator tiling scheme: z is the zoom
// level, x/y are the tile column/row with 0 <= x,y < 2^z.
type Key struct {
	Z, X, Y int
}

// BBox is a geographic bounding box.
type BBox struct {
	LatMin, LonMin, LatMax, LonMax float64
}

// KeyFor returns the tile key containing (lat, lon) at zoom z.
func KeyFor(lat, lon float64, z int) Key {
	latRad := lat * math.Pi / 180
	n := 1 << uint(z)
	x := int(math.Floor((lon + 180.0) / 360.0 * float64(n)))
	y := int(math.Floor((1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * float64(n)))
	if x < 0 {
		x = 0
	} else if x >= n {
		x = n - 1
	}
	if y < 0 {
		y = 0
	} else if y >= n {
		y = n - 1
	}
	return Key{Z: z, X: x, Y: y}
}

// Bounds returns the geographic bounding box of a tile key.
func Bounds(k Key) BBox {
	n := 1 << uint(k.Z)
	unit := 1.0 / float64(n)
	lonMin := float64(k.X)*unit*360.0 - 180.0
	lonMax := float64(k.X+1)*unit*360.0 - 180.0
	y0 := float64(k.Y) * unit
	y1 := float64(k.Y+1) * unit
	latMax := math.Atan(math.Sinh(math.Pi*(1.0-2.0*y0))) * 180.0 / math.Pi
	latMin := math.Atan(math.Sinh(math.Pi*(1.0-2.0*y1))) * 180.0 / math.Pi
	return BBox{LatMin: latMin, LonMin: lonMin, LatMax: latMax, LonMax: lonMax}
}

// QuantizeCoord converts a floating lat/lon to the pair of signed 32-bit
// integers that define node identity across tiles: round(lat*1e6),
// round(lon*1e6).
func QuantizeCoord(lat, lon float64) (latQ, lonQ int32) {
	return int32(math.Round(lat * 1e6)), int32(math.Round(lon * 1e6))
}

// Dequantize converts quantized coordinates back to floating degrees.
func Dequantize(latQ, lonQ int32) (lat, lon float64) {
	return float64(latQ) / 1e6, float64(lonQ) / 1e6
}
