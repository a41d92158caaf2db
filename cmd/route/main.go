// Command route is a CLI demo front-end over the routing engine: open a
// container, route between two waypoints under a chosen profile, and
// print the result. It is explicitly out of the core's scope (spec.md
// §1) — a thin, disposable way to exercise the Router from a terminal.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/azybler/tilerouter/internal/router"
	"github.com/azybler/tilerouter/internal/tiles"
)

// fileConfig is the optional TOML options file schema: any flag not
// passed on the command line falls back to this file, then to
// router.DefaultOptions.
type fileConfig struct {
	Container         string `toml:"container"`
	TileZoom          int    `toml:"tile_zoom"`
	TileCacheCapacity int    `toml:"tile_cache_capacity"`
	Profile           string `toml:"profile"`
}

func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return cfg, nil
}

func main() {
	configPath := flag.String("config", "", "optional TOML options file")
	dbPath := flag.String("db", "", "container database path")
	profileName := flag.String("profile", "", "travel profile: car or foot")
	tileZoom := flag.Int("tile-zoom", 0, "tile zoom level (0 = use config/default)")
	cacheCapacity := flag.Int("cache-capacity", -1, "tile LRU capacity (-1 = use config/default)")
	fromArg := flag.String("from", "", "start coordinate: lat,lon")
	toArg := flag.String("to", "", "end coordinate: lat,lon")
	flag.Parse()

	fileCfg, err := loadFileConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := firstNonEmpty(*dbPath, fileCfg.Container)
	if db == "" {
		fmt.Fprintln(os.Stderr, "Usage: route --db map.db --from lat,lon --to lat,lon [--profile car|foot] [--config options.toml]")
		os.Exit(1)
	}

	opts := router.DefaultOptions()
	if fileCfg.TileZoom > 0 {
		opts.TileZoom = fileCfg.TileZoom
	}
	if fileCfg.TileCacheCapacity > 0 {
		opts.TileCacheCapacity = fileCfg.TileCacheCapacity
	}
	if *tileZoom > 0 {
		opts.TileZoom = *tileZoom
	}
	if *cacheCapacity >= 0 {
		opts.TileCacheCapacity = *cacheCapacity
	}

	profile := parseProfile(firstNonEmpty(*profileName, fileCfg.Profile))

	from, err := parseCoord(*fromArg)
	if err != nil {
		log.Fatalf("invalid --from: %v", err)
	}
	to, err := parseCoord(*toArg)
	if err != nil {
		log.Fatalf("invalid --to: %v", err)
	}

	log.Printf("opening container %s (zoom %d, cache %d)...", db, opts.TileZoom, opts.TileCacheCapacity)
	r, err := router.New(db, opts)
	if err != nil {
		log.Fatalf("failed to open router: %v", err)
	}
	defer r.Close()

	start := time.Now()
	result := r.Route(profile, []router.Coord{from, to})
	elapsed := time.Since(start)

	if result.Status != router.OK {
		log.Fatalf("route failed (%s): %s", result.Status, result.ErrorMessage)
	}

	fmt.Printf("status=%s distance_m=%.1f duration_s=%.1f points=%d edges=%d (%s)\n",
		result.Status, result.DistanceM, result.DurationS, len(result.Polyline), len(result.EdgeIDs), elapsed.Round(time.Millisecond))
	for _, c := range result.Polyline {
		fmt.Printf("%.6f,%.6f\n", c.Lat, c.Lon)
	}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func parseProfile(name string) tiles.Profile {
	if name == "foot" {
		return tiles.Foot
	}
	return tiles.Car
}

func parseCoord(s string) (router.Coord, error) {
	var lat, lon float64
	if _, err := fmt.Sscanf(s, "%f,%f", &lat, &lon); err != nil {
		return router.Coord{}, fmt.Errorf("expected lat,lon, got %q: %w", s, err)
	}
	return router.Coord{Lat: lat, Lon: lon}, nil
}
