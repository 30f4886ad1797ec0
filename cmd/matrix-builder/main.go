// README: Builds the zone distance matrix from zone centroids via the Google Maps Distance Matrix API.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"shipquote/data"
	"shipquote/internal/config"
	"shipquote/internal/infra"
	"shipquote/internal/maps"
	"shipquote/internal/modules/zone"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zonesSrc := flag.String("zones", cfg.Sources.Zones, "zone GeoJSON source")
	out := flag.String("out", "data/matrix.json", "output path")
	intraZone := flag.Float64("intra-zone-miles", 150, "distance recorded for same-zone pairs")
	timeout := flag.Duration("timeout", 2*time.Minute, "total timeout")
	estimate := flag.Float64("estimate", 0, "skip the Maps API and use great-circle miles times this road factor (e.g. 1.2)")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	raw, err := infra.NewSourceFetcher(data.FS, cfg.Load.Timeout).Fetch(ctx, *zonesSrc)
	if err != nil {
		log.Fatal(err)
	}
	centroids, err := zone.Centroids(raw)
	if err != nil {
		log.Fatal(err)
	}

	var router Router
	switch {
	case *estimate > 0:
		router = estimateRouter{roadFactor: *estimate}
	case cfg.Maps.APIKey == "":
		log.Fatal("GOOGLE_MAPS_API_KEY is required unless -estimate is set")
	default:
		svc, err := maps.NewDistanceService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatal(err)
		}
		router = mapsRouter{svc: svc}
	}
	m, err := BuildMatrix(ctx, router, centroids, *intraZone)
	if err != nil {
		log.Fatal(err)
	}

	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile(*out, append(b, '\n'), 0o644); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %d pairs for %d zones to %s", m.Pairs(), len(centroids), *out)
}
