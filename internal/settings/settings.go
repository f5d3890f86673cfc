package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sergss/geomark/internal/resolver"
)

// Settings is the flat user-configurable blob: the geocoder credential and
// the retry policy. It is loaded once when a run starts and written on save.
type Settings struct {
	APIKey             string    `json:"api_key"`              // APIKey is the geocoding provider credential.
	RetryCount         int       `json:"retry_count"`          // RetryCount is the total attempts per address.
	RetryDelaysSeconds []float64 `json:"retry_delays_seconds"` // RetryDelaysSeconds is the backoff sequence between attempts.
}

// Validation errors surfaced to the settings form.
var (
	ErrRetryCount  = errors.New("retry count must be at least 1")
	ErrNoDelays    = errors.New("at least one retry delay is required")
	ErrDelaysValue = errors.New("retry delays must be positive")
)

// Default returns the settings used before the user has saved any. The API
// key is deliberately empty: geocoding is refused until one is configured.
func Default() Settings {
	return Settings{
		RetryCount:         3,
		RetryDelaysSeconds: []float64{1, 2, 4},
	}
}

// Validate checks the blob the same way RetryPolicy validation would, so a
// bad form submission is rejected at save time rather than at run time.
func (s Settings) Validate() error {
	if s.RetryCount < 1 {
		return ErrRetryCount
	}
	if len(s.RetryDelaysSeconds) == 0 {
		return ErrNoDelays
	}
	for _, d := range s.RetryDelaysSeconds {
		if d <= 0 {
			return ErrDelaysValue
		}
	}
	return nil
}

// Policy converts the blob into the retry policy a run is started with.
func (s Settings) Policy() resolver.RetryPolicy {
	delays := make([]time.Duration, 0, len(s.RetryDelaysSeconds))
	for _, seconds := range s.RetryDelaysSeconds {
		delays = append(delays, time.Duration(seconds*float64(time.Second)))
	}
	return resolver.RetryPolicy{
		MaxAttempts: s.RetryCount,
		Delays:      delays,
	}
}

// Store persists the settings blob as a JSON file on disk.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the settings file. A missing file is not an error: the defaults
// are returned and the empty API key forces configuration before any
// geocoding is possible.
func (st *Store) Load() (Settings, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	data, err := os.ReadFile(st.path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	}

	settings := Default()
	if err = json.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings file: %w", err)
	}

	return settings, nil
}

// Save validates and writes the settings atomically (write to a temp file in
// the same directory, then rename over the target).
func (st *Store) Save(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	dir := filepath.Dir(st.path)
	tmp, err := os.CreateTemp(dir, "settings-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close settings file: %w", err)
	}

	if err = os.Rename(tmp.Name(), st.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace settings file: %w", err)
	}

	return nil
}
