package geocoding

import (
	"context"
	"errors"
	"net/http"

	"github.com/sergss/geomark/internal/models"
)

// Provider is an interface that defines a method for geocoding an address.
// The Geocode method takes a context, a free-text query, and an optional bias
// region; it returns the single best match or an error. A nil bias requests a
// global (unrestricted) lookup; a non-nil bias restricts the lookup to the
// given region.
type Provider interface {
	Geocode(ctx context.Context, query string, bias *models.Bounds) (*models.Match, error)
}

// Shared error taxonomy. Providers wrap their transport-specific failures in
// one of these sentinels so that callers can decide between retrying and
// aborting without knowing which provider is behind the interface.
var (
	// ErrNoMatch is returned when a lookup legitimately yields zero results.
	// It is not a failure and is never worth retrying.
	ErrNoMatch = errors.New("geocoder returned no match")

	// ErrUnauthorized is returned when the provider rejects the credential.
	// Retrying cannot change an invalid key, so this is never retried.
	ErrUnauthorized = errors.New("geocoder rejected the API key")
)

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
