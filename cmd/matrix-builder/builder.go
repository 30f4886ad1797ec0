package main

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"shipquote/internal/maps"
	"shipquote/internal/modules/zone"
)

const metersPerMile = 1609.344

// Router returns driving distances from one origin to many destinations.
type Router interface {
	DrivingMiles(ctx context.Context, origin orb.Point, destinations []orb.Point) ([]maps.Leg, error)
}

// BuildMatrix asks the router for every ordered pair of zone centroids.
// Same-zone entries get intraZoneMiles. Pairs without a route are left out so
// the directory falls back to its default distance.
func BuildMatrix(ctx context.Context, router Router, centroids map[string]orb.Point, intraZoneMiles float64) (zone.Matrix, error) {
	ids := make([]string, 0, len(centroids))
	for id := range centroids {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	points := make([]orb.Point, len(ids))
	for i, id := range ids {
		points[i] = centroids[id]
	}

	m := zone.Matrix{}
	for i, origin := range ids {
		legs, err := router.DrivingMiles(ctx, points[i], points)
		if err != nil {
			return nil, fmt.Errorf("distances from %s: %w", origin, err)
		}
		if len(legs) != len(ids) {
			return nil, fmt.Errorf("distances from %s: got %d legs, want %d", origin, len(legs), len(ids))
		}
		row := map[string]float64{}
		for j, dest := range ids {
			switch {
			case i == j:
				row[dest] = intraZoneMiles
			case legs[j].Found:
				row[dest] = math.Round(legs[j].Miles*10) / 10
			}
		}
		m[origin] = row
	}
	return m, nil
}

// mapsRouter sends centroids to the Distance Matrix API.
type mapsRouter struct {
	svc *maps.DistanceService
}

func (r mapsRouter) DrivingMiles(ctx context.Context, origin orb.Point, destinations []orb.Point) ([]maps.Leg, error) {
	dests := make([]string, len(destinations))
	for i, p := range destinations {
		dests[i] = latLng(p)
	}
	return r.svc.DrivingMiles(ctx, latLng(origin), dests)
}

// estimateRouter approximates road distance as great-circle distance times a
// road factor. Used when no Maps API key is available.
type estimateRouter struct {
	roadFactor float64
}

func (r estimateRouter) DrivingMiles(_ context.Context, origin orb.Point, destinations []orb.Point) ([]maps.Leg, error) {
	legs := make([]maps.Leg, len(destinations))
	for i, p := range destinations {
		miles := geo.DistanceHaversine(origin, p) / metersPerMile
		legs[i] = maps.Leg{Miles: miles * r.roadFactor, Found: true}
	}
	return legs, nil
}

// latLng formats an orb point (lng, lat) the way the Maps API expects.
func latLng(p orb.Point) string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat(), p.Lon())
}
