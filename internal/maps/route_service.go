// README: Travel-time oracle backed by the Google Maps Directions API.
package maps

import (
	"context"
	"fmt"
	"math"

	"googlemaps.github.io/maps"

	"tavolo/internal/types"
)

// RouteService asks Google Maps for driving ETAs. It is an optional
// refinement over the straight-line estimate: callers fall back to the
// haversine ETA when the oracle is unconfigured or unavailable.
type RouteService struct {
	client *maps.Client
}

// NewRouteService creates a RouteService with the given API key.
func NewRouteService(apiKey string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// EtaMinutes returns the driving travel time between two points, rounded
// up to whole minutes.
func (s *RouteService) EtaMinutes(ctx context.Context, origin, destination types.Point) (int, error) {
	r := &maps.DirectionsRequest{
		Origin:      fmt.Sprintf("%f,%f", origin.Lat, origin.Lng),
		Destination: fmt.Sprintf("%f,%f", destination.Lat, destination.Lng),
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, fmt.Errorf("no route found")
	}

	leg := routes[0].Legs[0]
	return int(math.Ceil(leg.Duration.Minutes())), nil
}
