package convert

import (
	"testing"

	"github.com/paulmach/osm"

	"github.com/azybler/tilerouter/internal/tiles"
)

func tagsOf(pairs ...string) osm.Tags {
	var t osm.Tags
	for i := 0; i+1 < len(pairs); i += 2 {
		t = append(t, osm.Tag{Key: pairs[i], Value: pairs[i+1]})
	}
	return t
}

func TestRoadClassForHighway(t *testing.T) {
	cases := map[string]tiles.RoadClass{
		"motorway":    tiles.Motorway,
		"primary":     tiles.Primary,
		"residential": tiles.Residential,
		"footway":     tiles.Footway,
		"steps":       tiles.Steps,
	}
	for highway, want := range cases {
		got, ok := roadClassForHighway(highway)
		if !ok || got != want {
			t.Errorf("roadClassForHighway(%q) = %v,%v, want %v,true", highway, got, ok, want)
		}
	}
	if _, ok := roadClassForHighway("raceway"); ok {
		t.Errorf("unrecognized highway value should not resolve to a road class")
	}
}

func TestCarAccessibleExcludesFootwaysAndPrivate(t *testing.T) {
	if isCarAccessible(tiles.Footway, tagsOf()) {
		t.Errorf("footway should never be car accessible")
	}
	if isCarAccessible(tiles.Residential, tagsOf("access", "private")) {
		t.Errorf("access=private should exclude car")
	}
	if !isCarAccessible(tiles.Residential, tagsOf()) {
		t.Errorf("plain residential way should be car accessible")
	}
}

func TestFootAccessibleExcludesMotorways(t *testing.T) {
	if isFootAccessible(tiles.Motorway, tagsOf()) {
		t.Errorf("motorway should never be foot accessible")
	}
	if isFootAccessible(tiles.Residential, tagsOf("foot", "no")) {
		t.Errorf("foot=no should exclude pedestrians")
	}
	if !isFootAccessible(tiles.Residential, tagsOf()) {
		t.Errorf("plain residential way should be foot accessible")
	}
}

func TestCarDirectionFlagsOneway(t *testing.T) {
	fwd, bwd := carDirectionFlags(tiles.Residential, tagsOf("oneway", "yes"))
	if !fwd || bwd {
		t.Errorf("oneway=yes should give forward-only, got fwd=%v bwd=%v", fwd, bwd)
	}
	fwd, bwd = carDirectionFlags(tiles.Residential, tagsOf("oneway", "-1"))
	if fwd || !bwd {
		t.Errorf("oneway=-1 should give backward-only, got fwd=%v bwd=%v", fwd, bwd)
	}
	fwd, bwd = carDirectionFlags(tiles.Motorway, tagsOf())
	if !fwd || bwd {
		t.Errorf("motorway implies oneway forward, got fwd=%v bwd=%v", fwd, bwd)
	}
}

func TestFootDirectionFlagsIgnoresCarOneway(t *testing.T) {
	fwd, bwd := footDirectionFlags(tagsOf("oneway", "yes"))
	if !fwd || !bwd {
		t.Errorf("a car oneway tag alone should not restrict pedestrians, got fwd=%v bwd=%v", fwd, bwd)
	}
	fwd, bwd = footDirectionFlags(tagsOf("oneway:foot", "yes"))
	if !fwd || bwd {
		t.Errorf("oneway:foot=yes should restrict pedestrians to forward, got fwd=%v bwd=%v", fwd, bwd)
	}
}

func TestCarSpeedMPSPrefersExplicitTag(t *testing.T) {
	got := carSpeedMPS(tiles.Residential, tagsOf("maxspeed", "30 mph"))
	want := 30 * 1.60934 / 3.6
	if diff := got - want; diff > 0.01 || diff < -0.01 {
		t.Errorf("carSpeedMPS with mph tag = %v, want ~%v", got, want)
	}
	got = carSpeedMPS(tiles.Residential, tagsOf())
	if got != tiles.DefaultCarSpeedMPS(tiles.Residential) {
		t.Errorf("carSpeedMPS with no tag should fall back to the default table")
	}
}
