package convert

import (
	"strconv"
	"strings"

	"github.com/paulmach/osm"

	"github.com/azybler/tilerouter/internal/tiles"
)

// highwayRoadClass maps an OSM highway tag value to a tile road class.
// Unrecognized highway values are not routable at all.
var highwayRoadClass = map[string]tiles.RoadClass{
	"motorway":       tiles.Motorway,
	"motorway_link":  tiles.Motorway,
	"trunk":          tiles.Primary,
	"trunk_link":     tiles.Primary,
	"primary":        tiles.Primary,
	"primary_link":   tiles.Primary,
	"secondary":      tiles.Secondary,
	"secondary_link": tiles.Secondary,
	"tertiary":       tiles.Residential,
	"tertiary_link":  tiles.Residential,
	"unclassified":   tiles.Residential,
	"residential":    tiles.Residential,
	"living_street":  tiles.Residential,
	"service":        tiles.Residential,
	"footway":        tiles.Footway,
	"pedestrian":     tiles.Footway,
	"path":           tiles.Path,
	"track":          tiles.Path,
	"steps":          tiles.Steps,
}

// roadClassForHighway classifies a way's highway tag, or reports ok=false
// for a highway value this converter doesn't route over at all.
func roadClassForHighway(highway string) (tiles.RoadClass, bool) {
	rc, ok := highwayRoadClass[highway]
	return rc, ok
}

// isCarAccessible reports whether a way carrying this road class and tag
// set may be traversed by car, independent of direction.
func isCarAccessible(rc tiles.RoadClass, tags osm.Tags) bool {
	if rc == tiles.Footway || rc == tiles.Path || rc == tiles.Steps {
		return false
	}
	if tags.Find("area") == "yes" {
		return false
	}
	access := tags.Find("access")
	if access == "no" || access == "private" {
		return false
	}
	if tags.Find("motor_vehicle") == "no" || tags.Find("motorcar") == "no" {
		return false
	}
	return true
}

// isFootAccessible reports whether a way may be traversed on foot,
// independent of direction. Motorways and their links are the only
// classes pedestrians are categorically excluded from; everything else
// defaults to accessible unless tagged foot=no, or access=no/private
// without foot=yes.
func isFootAccessible(rc tiles.RoadClass, tags osm.Tags) bool {
	if rc == tiles.Motorway {
		return false
	}
	if tags.Find("foot") == "no" {
		return false
	}
	access := tags.Find("access")
	if (access == "no" || access == "private") && tags.Find("foot") != "yes" {
		return false
	}
	return true
}

// carDirectionFlags returns (forward, backward) traversability for car
// traffic, honoring implied-oneway road classes (motorways, roundabouts)
// and the explicit oneway tag.
func carDirectionFlags(rc tiles.RoadClass, tags osm.Tags) (forward, backward bool) {
	forward, backward = true, true
	if rc == tiles.Motorway || tags.Find("junction") == "roundabout" {
		backward = false
	}
	switch tags.Find("oneway") {
	case "yes", "true", "1":
		forward, backward = true, false
	case "-1", "reverse":
		forward, backward = false, true
	case "no":
		forward, backward = true, true
	case "reversible", "alternating":
		forward, backward = false, false
	}
	return forward, backward
}

// footDirectionFlags returns (forward, backward) traversability on foot.
// Pedestrians are only subject to direction restrictions when a way
// explicitly carries an oneway:foot tag; plain "oneway" (a car
// restriction) does not apply to them.
func footDirectionFlags(tags osm.Tags) (forward, backward bool) {
	forward, backward = true, true
	switch tags.Find("oneway:foot") {
	case "yes", "true", "1":
		forward, backward = true, false
	case "-1", "reverse":
		forward, backward = false, true
	}
	return forward, backward
}

// carSpeedMPS resolves the car travel speed for an edge: an explicit
// maxspeed tag (assumed km/h) if present and parseable, else the default
// table keyed by road class.
func carSpeedMPS(rc tiles.RoadClass, tags osm.Tags) float64 {
	if raw := tags.Find("maxspeed"); raw != "" {
		if kph, ok := parseMaxSpeedKPH(raw); ok && kph > 0 {
			return kph / 3.6
		}
	}
	return tiles.DefaultCarSpeedMPS(rc)
}

// parseMaxSpeedKPH parses an OSM maxspeed value, which is usually a bare
// number (km/h) but sometimes carries a " mph" suffix.
func parseMaxSpeedKPH(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if strings.HasSuffix(raw, "mph") {
		num := strings.TrimSpace(strings.TrimSuffix(raw, "mph"))
		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, false
		}
		return v * 1.60934, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
