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
	"golang.org/x/time/rate"
)

// mockHTTPClient is a mock implementation of HTTPClient for testing.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

const yandexFoundBody = `{"response":{"GeoObjectCollection":{"featureMember":[{"GeoObject":{` +
	`"metaDataProperty":{"GeocoderMetaData":{"text":"Ukraine, Kyiv, Khreshchatyk Street, 1"}},` +
	`"Point":{"pos":"30.524417 50.450446"}}}]}}}`

func TestYandexProvider_Geocode(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	apiKey := "test-api-key"
	defaultRL := rate.NewLimiter(rate.Inf, 0)

	t.Run("successful geocoding", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				// Verify request parameters
				assert.Equal(t, "GET", req.Method)
				assert.Contains(t, req.URL.String(), "geocode-maps.yandex.ru")
				assert.Equal(t, "Khreshchatyk 1, Kyiv", req.URL.Query().Get("geocode"))
				assert.Equal(t, apiKey, req.URL.Query().Get("apikey"))
				assert.Equal(t, "json", req.URL.Query().Get("format"))
				assert.Equal(t, "1", req.URL.Query().Get("results"))
				assert.Empty(t, req.URL.Query().Get("bbox"))

				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(yandexFoundBody)),
				}, nil
			},
		}

		provider := geocoding.NewYandexProviderWithClient(mockClient, apiKey, defaultRL, logger)
		match, err := provider.Geocode(ctx, "Khreshchatyk 1, Kyiv", nil)

		require.NoError(t, err)
		require.NotNil(t, match)
		assert.InEpsilon(t, 50.450446, match.Coordinates.Latitude, 0.0001)
		assert.InEpsilon(t, 30.524417, match.Coordinates.Longitude, 0.0001)
		assert.Equal(t, "Ukraine, Kyiv, Khreshchatyk Street, 1", match.AddressLine)
	})

	t.Run("bias region restricts the lookup", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "30.000000,50.000000~31.000000,51.000000", req.URL.Query().Get("bbox"))
				assert.Equal(t, "1", req.URL.Query().Get("rspn"))

				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(yandexFoundBody)),
				}, nil
			},
		}

		bias := &models.Bounds{
			SouthWest: models.Coordinates{Latitude: 50, Longitude: 30},
			NorthEast: models.Coordinates{Latitude: 51, Longitude: 31},
		}

		provider := geocoding.NewYandexProviderWithClient(mockClient, apiKey, defaultRL, logger)
		match, err := provider.Geocode(ctx, "Khreshchatyk 1", bias)

		require.NoError(t, err)
		require.NotNil(t, match)
	})

	t.Run("empty member list maps to ErrNoMatch", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusOK,
					Body: io.NopCloser(bytes.NewBufferString(
						`{"response":{"GeoObjectCollection":{"featureMember":[]}}}`)),
				}, nil
			},
		}

		provider := geocoding.NewYandexProviderWithClient(mockClient, apiKey, defaultRL, logger)
		match, err := provider.Geocode(ctx, "no such place", nil)

		require.Error(t, err)
		assert.Nil(t, match)
		assert.ErrorIs(t, err, geocoding.ErrNoMatch)
	})

	t.Run("forbidden maps to ErrUnauthorized", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusForbidden,
					Body:       io.NopCloser(bytes.NewBufferString(`forbidden`)),
				}, nil
			},
		}

		provider := geocoding.NewYandexProviderWithClient(mockClient, apiKey, defaultRL, logger)
		match, err := provider.Geocode(ctx, "some address", nil)

		require.Error(t, err)
		assert.Nil(t, match)
		assert.ErrorIs(t, err, geocoding.ErrUnauthorized)
	})

	t.Run("server error is a plain failure", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusInternalServerError,
					Body:       io.NopCloser(bytes.NewBufferString(`boom`)),
				}, nil
			},
		}

		provider := geocoding.NewYandexProviderWithClient(mockClient, apiKey, defaultRL, logger)
		match, err := provider.Geocode(ctx, "some address", nil)

		require.Error(t, err)
		assert.Nil(t, match)
		assert.NotErrorIs(t, err, geocoding.ErrNoMatch)
		assert.NotErrorIs(t, err, geocoding.ErrUnauthorized)
	})

	t.Run("invalid point is a plain failure", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				body := `{"response":{"GeoObjectCollection":{"featureMember":[{"GeoObject":{` +
					`"Point":{"pos":"not-a-point"}}}]}}}`
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(body)),
				}, nil
			},
		}

		provider := geocoding.NewYandexProviderWithClient(mockClient, apiKey, defaultRL, logger)
		match, err := provider.Geocode(ctx, "bad point", nil)

		require.Error(t, err)
		assert.Nil(t, match)
		assert.ErrorContains(t, err, "invalid point")
	})
}
