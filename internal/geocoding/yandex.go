package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sergss/geomark/internal/models"
	"golang.org/x/time/rate"
)

// YandexBaseURL -- Yandex Geocoder API base URL.
const YandexBaseURL = "https://geocode-maps.yandex.ru/1.x/"

// YandexProvider implements geocoding using the Yandex Geocoder HTTP API.
type YandexProvider struct {
	client  HTTPClient    // HTTP client for making requests
	baseURL string        // Base URL for the Yandex Geocoder API
	apiKey  string        // API key with geocoding access
	log     *slog.Logger  // Logger for logging operations
	limiter *rate.Limiter // Rate limiter
}

// Yandex API response (simplified for the geocoding use-case).
type yandexResponse struct {
	Response struct {
		GeoObjectCollection struct {
			FeatureMember []struct {
				GeoObject struct {
					MetaDataProperty struct {
						GeocoderMetaData struct {
							Text string `json:"text"`
						} `json:"GeocoderMetaData"`
					} `json:"metaDataProperty"`
					Point struct {
						Pos string `json:"pos"` // "lon lat"
					} `json:"Point"`
				} `json:"GeoObject"`
			} `json:"featureMember"`
		} `json:"GeoObjectCollection"`
	} `json:"response"`
}

// NewYandexProvider creates a new Yandex geocoding provider.
func NewYandexProvider(apiKey string, rateLimit int, log *slog.Logger) *YandexProvider {
	const timeout = 10

	return &YandexProvider{
		client: &http.Client{
			Timeout: timeout * time.Second,
		},
		baseURL: YandexBaseURL,
		apiKey:  apiKey,
		log:     log,
		limiter: rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
	}
}

// NewYandexProviderWithClient allows injecting a custom HTTP client.
func NewYandexProviderWithClient(
	client HTTPClient,
	apiKey string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *YandexProvider {
	return &YandexProvider{
		client:  client,
		baseURL: YandexBaseURL,
		apiKey:  apiKey,
		log:     log,
		limiter: limiter,
	}
}

// Geocode converts an address into geographic coordinates using the Yandex
// Geocoder API. When a bias region is given, the lookup is restricted to it
// (bbox with rspn=1); with a nil bias the lookup is global.
func (yp *YandexProvider) Geocode(
	ctx context.Context,
	query string,
	bias *models.Bounds,
) (*models.Match, error) {
	// Rate limit
	if err := yp.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	yp.log.DebugContext(ctx, "Geocoding using Yandex", "query", query, "biased", bias != nil)

	reqURL, err := url.Parse(yp.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	params := reqURL.Query()
	params.Set("geocode", query)
	params.Set("format", "json")
	params.Set("results", "1")
	params.Set("apikey", yp.apiKey)
	if bias != nil {
		// bbox is "lon,lat~lon,lat" (lower-left to upper-right); rspn=1
		// restricts the search to the box instead of merely preferring it.
		params.Set("bbox", fmt.Sprintf("%f,%f~%f,%f",
			bias.SouthWest.Longitude, bias.SouthWest.Latitude,
			bias.NorthEast.Longitude, bias.NorthEast.Latitude))
		params.Set("rspn", "1")
	}
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := yp.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// continue
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	default:
		body, _ := io.ReadAll(resp.Body)
		yp.log.ErrorContext(ctx, "Yandex API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("yandex API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var result yandexResponse
	if err = json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode yandex response: %w", err)
	}

	members := result.Response.GeoObjectCollection.FeatureMember
	if len(members) == 0 {
		return nil, ErrNoMatch
	}

	geoObject := members[0].GeoObject

	var lon, lat float64
	if _, err = fmt.Sscanf(geoObject.Point.Pos, "%f %f", &lon, &lat); err != nil {
		return nil, fmt.Errorf("yandex API returned invalid point %q: %w", geoObject.Point.Pos, err)
	}

	yp.log.DebugContext(ctx, "Yandex found result", "query", query, "lat", lat, "lon", lon)

	return &models.Match{
		Coordinates: models.Coordinates{Latitude: lat, Longitude: lon},
		AddressLine: geoObject.MetaDataProperty.GeocoderMetaData.Text,
	}, nil
}
