// README: Decoders for the GeoJSON zone source and the JSON distance source.
package zone

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// DecodeZones parses a GeoJSON FeatureCollection whose features carry
// zone_id, name, multiplier and remote_fee properties. When two features share
// a zone_id the first one wins.
func DecodeZones(data []byte) (map[string]Zone, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
	}

	zones := make(map[string]Zone, len(fc.Features))
	for i, f := range fc.Features {
		id := f.Properties.MustString("zone_id", "")
		if id == "" {
			return nil, fmt.Errorf("%w: feature %d has no zone_id", ErrMalformedSource, i)
		}
		if _, seen := zones[id]; seen {
			continue
		}
		z := Zone{
			ID:         id,
			Name:       f.Properties.MustString("name", id),
			Multiplier: f.Properties.MustFloat64("multiplier", 1),
			RemoteFee:  f.Properties.MustFloat64("remote_fee", 0),
		}
		if z.Multiplier < 0 || z.RemoteFee < 0 {
			return nil, fmt.Errorf("%w: zone %s has a negative multiplier or remote_fee", ErrMalformedSource, id)
		}
		zones[id] = z
	}
	return zones, nil
}

// DecodeMatrix parses the two-level origin -> destination -> miles mapping.
func DecodeMatrix(data []byte) (Matrix, error) {
	var m Matrix
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
	}
	for origin, row := range m {
		for dest, miles := range row {
			if miles < 0 || math.IsNaN(miles) {
				return nil, fmt.Errorf("%w: distance %s -> %s is %v", ErrMalformedSource, origin, dest, miles)
			}
		}
	}
	if m == nil {
		m = Matrix{}
	}
	return m, nil
}

// Centroids returns the planar centroid of each zone geometry, keyed by
// zone_id. Features without geometry are skipped. Used when preparing the
// distance matrix, not at quote time.
func Centroids(data []byte) (map[string]orb.Point, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
	}
	out := make(map[string]orb.Point, len(fc.Features))
	for _, f := range fc.Features {
		id := f.Properties.MustString("zone_id", "")
		if _, seen := out[id]; id == "" || seen || f.Geometry == nil {
			continue
		}
		c, _ := planar.CentroidArea(f.Geometry)
		out[id] = c
	}
	return out, nil
}
