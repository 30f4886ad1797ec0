package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"
)

const metersPerMile = 1609.344

// maxDestinations is the Distance Matrix limit per request.
const maxDestinations = 25

// Leg is one origin-to-destination driving distance. Found is false when the
// API had no route for the pair.
type Leg struct {
	Miles float64
	Found bool
}

// DistanceService handles interactions with the Google Maps Distance Matrix API.
type DistanceService struct {
	client *maps.Client
}

// NewDistanceService creates a new DistanceService with the given API Key.
func NewDistanceService(apiKey string) (*DistanceService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &DistanceService{client: client}, nil
}

// DrivingMiles returns the driving distance from origin to each destination,
// in destination order. Locations are "lat,lng" strings or addresses.
func (s *DistanceService) DrivingMiles(ctx context.Context, origin string, destinations []string) ([]Leg, error) {
	legs := make([]Leg, 0, len(destinations))
	for start := 0; start < len(destinations); start += maxDestinations {
		end := min(start+maxDestinations, len(destinations))
		r := &maps.DistanceMatrixRequest{
			Origins:      []string{origin},
			Destinations: destinations[start:end],
			Mode:         maps.TravelModeDriving,
			Units:        maps.UnitsImperial,
		}
		resp, err := s.client.DistanceMatrix(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("maps api error: %w", err)
		}
		if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) != end-start {
			return nil, fmt.Errorf("unexpected distance matrix shape for %s", origin)
		}
		for _, el := range resp.Rows[0].Elements {
			legs = append(legs, elementLeg(el))
		}
	}
	return legs, nil
}

func elementLeg(el *maps.DistanceMatrixElement) Leg {
	if el == nil || el.Status != "OK" {
		return Leg{}
	}
	return Leg{Miles: float64(el.Distance.Meters) / metersPerMile, Found: true}
}
