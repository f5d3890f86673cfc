package geocoding

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sergss/geomark/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes. It is used to interact with the
// Google Maps geocoding services.
type GoogleProvider struct {
	client GoogleAPIClient // client is the Google Maps API client
	log    *slog.Logger    // log is the logger for logging operations
}

type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// NewGoogleProvider initializes a new GoogleProvider with the given API client and logger.
func NewGoogleProvider(client GoogleAPIClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, log: log}
}

// Geocode returns the best match for the given query using the Google Maps
// Geocoding API. A non-nil bias is passed as a bounds restriction. An empty
// result set maps to ErrNoMatch; a REQUEST_DENIED status from the API maps
// to ErrUnauthorized.
func (gp *GoogleProvider) Geocode(
	ctx context.Context,
	query string,
	bias *models.Bounds,
) (*models.Match, error) {
	gp.log.DebugContext(ctx, "Geocoding using Google Maps", "query", query, "biased", bias != nil)

	req := maps.GeocodingRequest{Address: query}
	if bias != nil {
		req.Bounds = &maps.LatLngBounds{
			NorthEast: maps.LatLng{Lat: bias.NorthEast.Latitude, Lng: bias.NorthEast.Longitude},
			SouthWest: maps.LatLng{Lat: bias.SouthWest.Latitude, Lng: bias.SouthWest.Longitude},
		}
	}

	results, err := gp.client.Geocode(ctx, &req)
	if err != nil {
		// The maps client surfaces API statuses as error strings; the
		// credential class must be distinguished so callers never retry it.
		if strings.Contains(err.Error(), "REQUEST_DENIED") {
			return nil, fmt.Errorf("%w: %s", ErrUnauthorized, err.Error())
		}
		return nil, fmt.Errorf("failed to geocode address: %w", err)
	}

	if len(results) == 0 {
		return nil, ErrNoMatch
	}

	location := results[0].Geometry.Location

	return &models.Match{
		Coordinates: models.Coordinates{Latitude: location.Lat, Longitude: location.Lng},
		AddressLine: results[0].FormattedAddress,
	}, nil
}
