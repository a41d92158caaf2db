// Command convert builds a routing container from an OSM PBF extract: it
// parses ways and nodes, tiles them into the Web-Mercator scheme the
// Router expects, and writes one land tile row per populated tile into a
// SQLite container, following the layout spec.md §6.1 describes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/azybler/tilerouter/internal/container"
	"github.com/azybler/tilerouter/internal/convert"
)

func main() {
	input := flag.String("input", "", "path to an .osm.pbf extract")
	output := flag.String("output", "map.db", "output container database path")
	zoom := flag.Int("zoom", 14, "tile zoom level")
	bbox := flag.String("bbox", "", "bounding box filter: minLat,minLon,maxLat,maxLon")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: convert --input <file.osm.pbf> [--output map.db] [--zoom 14] [--bbox minLat,minLon,maxLat,maxLon]")
		os.Exit(1)
	}

	opts := convert.DefaultOptions()
	opts.Zoom = *zoom
	if *bbox != "" {
		var minLat, minLon, maxLat, maxLon float64
		if _, err := fmt.Sscanf(*bbox, "%f,%f,%f,%f", &minLat, &minLon, &maxLat, &maxLon); err != nil {
			log.Fatalf("invalid bbox format (expected minLat,minLon,maxLat,maxLon): %v", err)
		}
		opts.BBox = convert.BBox{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon}
		log.Printf("bounding box filter: lat [%.4f, %.4f], lon [%.4f, %.4f]", minLat, maxLat, minLon, maxLon)
	}

	start := time.Now()

	log.Printf("opening %s...", *input)
	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("failed to open input file: %v", err)
	}
	defer f.Close()

	log.Printf("creating container at %s...", *output)
	w, err := container.OpenWriter(*output)
	if err != nil {
		log.Fatalf("failed to open container: %v", err)
	}
	defer w.Close()

	log.Println("converting...")
	stats, err := convert.Run(context.Background(), f, w, opts)
	if err != nil {
		log.Fatalf("conversion failed: %v", err)
	}

	elapsed := time.Since(start)
	log.Printf("done in %s: %d segments, %d tiles, %d nodes, %d edges written to %s",
		elapsed.Round(time.Millisecond), stats.Segments, stats.Tiles, stats.Nodes, stats.Edges, *output)
}
