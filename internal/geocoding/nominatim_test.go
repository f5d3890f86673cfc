package geocoding_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/sergss/geomark/internal/geocoding"
	"github.com/sergss/geomark/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNominatimProvider_Geocode(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("successful geocoding", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				// Verify request parameters
				assert.Equal(t, "GET", req.Method)
				assert.Contains(t, req.URL.String(), "nominatim.openstreetmap.org")
				assert.Equal(t, "Rynok Square 1, Lviv", req.URL.Query().Get("q"))
				assert.Equal(t, "json", req.URL.Query().Get("format"))
				assert.Equal(t, "1", req.URL.Query().Get("limit"))
				assert.NotEmpty(t, req.Header.Get("User-Agent"))
				assert.Empty(t, req.URL.Query().Get("viewbox"))

				responseBody := `[{"lat":"49.841952","lon":"24.031592","display_name":"1, Rynok Square, Lviv, Ukraine"}]`
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(responseBody)),
				}, nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		match, err := provider.Geocode(ctx, "Rynok Square 1, Lviv", nil)

		require.NoError(t, err)
		require.NotNil(t, match)
		assert.InEpsilon(t, 49.841952, match.Coordinates.Latitude, 0.0001)
		assert.InEpsilon(t, 24.031592, match.Coordinates.Longitude, 0.0001)
		assert.Equal(t, "1, Rynok Square, Lviv, Ukraine", match.AddressLine)
	})

	t.Run("bias region sets a bounded viewbox", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "24.000000,49.000000,25.000000,50.000000", req.URL.Query().Get("viewbox"))
				assert.Equal(t, "1", req.URL.Query().Get("bounded"))

				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(`[]`)),
				}, nil
			},
		}

		bias := &models.Bounds{
			SouthWest: models.Coordinates{Latitude: 49, Longitude: 24},
			NorthEast: models.Coordinates{Latitude: 50, Longitude: 25},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		_, err := provider.Geocode(ctx, "Rynok Square 1", bias)

		require.ErrorIs(t, err, geocoding.ErrNoMatch)
	})

	t.Run("empty result maps to ErrNoMatch", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(`[]`)),
				}, nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		match, err := provider.Geocode(ctx, "no such place", nil)

		require.Error(t, err)
		assert.Nil(t, match)
		assert.ErrorIs(t, err, geocoding.ErrNoMatch)
	})

	t.Run("invalid coordinates are a plain failure", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				responseBody := `[{"lat":"not-a-number","lon":"24.03","display_name":"x"}]`
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(responseBody)),
				}, nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		match, err := provider.Geocode(ctx, "bad coords", nil)

		require.Error(t, err)
		assert.Nil(t, match)
		assert.ErrorContains(t, err, "invalid latitude")
	})

	t.Run("server error is a plain failure", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusServiceUnavailable,
					Body:       io.NopCloser(bytes.NewBufferString(`overloaded`)),
				}, nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		match, err := provider.Geocode(ctx, "some address", nil)

		require.Error(t, err)
		assert.Nil(t, match)
		assert.NotErrorIs(t, err, geocoding.ErrNoMatch)
	})
}
