// README: Zone/distance directory with fail-soft loading and lookups.
package zone

import (
	"context"
	"log"
	"sort"
	"sync"

	"shipquote/internal/types"
)

// Fetcher reads the raw bytes of a static source.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// Directory holds the zone set and distance matrix. A failed load keeps the
// previous state, so lookups keep answering with whatever was last loaded (or
// with fallbacks when nothing was).
type Directory struct {
	fetcher Fetcher

	mu         sync.RWMutex
	zones      map[string]Zone
	matrix     Matrix
	zoneLoad   types.LoadResult
	matrixLoad types.LoadResult
}

func NewDirectory(fetcher Fetcher) *Directory {
	return &Directory{
		fetcher: fetcher,
		zones:   map[string]Zone{},
		matrix:  Matrix{},
	}
}

func (d *Directory) LoadZones(ctx context.Context, location string) types.LoadResult {
	res := d.loadZones(ctx, location)
	d.mu.Lock()
	d.zoneLoad = res
	d.mu.Unlock()
	return res
}

func (d *Directory) loadZones(ctx context.Context, location string) types.LoadResult {
	data, err := d.fetcher.Fetch(ctx, location)
	if err != nil {
		log.Printf("zone: failed to load zones from %s: %v", location, err)
		return types.LoadFailed(location, err)
	}
	zones, err := DecodeZones(data)
	if err != nil {
		log.Printf("zone: failed to parse zones from %s: %v", location, err)
		return types.LoadFailed(location, err)
	}

	d.mu.Lock()
	d.zones = zones
	d.mu.Unlock()
	return types.Loaded(location, len(zones))
}

func (d *Directory) LoadDistanceMatrix(ctx context.Context, location string) types.LoadResult {
	res := d.loadMatrix(ctx, location)
	d.mu.Lock()
	d.matrixLoad = res
	d.mu.Unlock()
	return res
}

func (d *Directory) loadMatrix(ctx context.Context, location string) types.LoadResult {
	data, err := d.fetcher.Fetch(ctx, location)
	if err != nil {
		log.Printf("zone: failed to load distance matrix from %s: %v", location, err)
		return types.LoadFailed(location, err)
	}
	m, err := DecodeMatrix(data)
	if err != nil {
		log.Printf("zone: failed to parse distance matrix from %s: %v", location, err)
		return types.LoadFailed(location, err)
	}

	d.mu.Lock()
	d.matrix = m
	d.mu.Unlock()
	return types.Loaded(location, m.Pairs())
}

// GetZone looks up a zone by exact id. A miss is not an error: callers treat
// it as "unknown zone, use defaults".
func (d *Directory) GetZone(id string) (Zone, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	z, ok := d.zones[id]
	return z, ok
}

// GetDistance returns the matrix distance for (origin, dest), or FallbackMiles
// when the pair is missing.
func (d *Directory) GetDistance(origin, dest string) float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if miles, ok := d.matrix.Lookup(origin, dest); ok {
		return miles
	}
	return FallbackMiles
}

// HasDistance reports whether the matrix holds an entry for (origin, dest).
func (d *Directory) HasDistance(origin, dest string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.matrix.Lookup(origin, dest)
	return ok
}

// Zones returns all loaded zones sorted by id.
func (d *Directory) Zones() []Zone {
	d.mu.RLock()
	out := make([]Zone, 0, len(d.zones))
	for _, z := range d.zones {
		out = append(out, z)
	}
	d.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Status returns the most recent zone and matrix load results.
func (d *Directory) Status() (zones, matrix types.LoadResult) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.zoneLoad, d.matrixLoad
}
