package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sergss/geomark/internal/geocoding"
	"github.com/sergss/geomark/internal/models"
)

// ErrCacheMiss is returned by a Store when the key is not present.
var ErrCacheMiss = errors.New("cache miss")

// Store is the minimal key-value surface the cache needs. It is implemented
// by RedisStore and by stubs in tests.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisStore adapts a go-redis client to the Store interface.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis at the given address and verifies the
// connection with a ping.
func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// Get implements Store, mapping redis.Nil to ErrCacheMiss.
func (rs *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := rs.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("failed to get cache key: %w", err)
	}
	return value, nil
}

// Set implements Store.
func (rs *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := rs.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache key: %w", err)
	}
	return nil
}

// CachedProvider decorates a geocoding provider with a read-through cache.
// Only successful matches are cached; errors and empty results always go to
// the provider, and a cache outage degrades to a plain provider call.
type CachedProvider struct {
	next  geocoding.Provider
	store Store
	ttl   time.Duration
	log   *slog.Logger
}

// NewCachedProvider wraps the given provider with a cache.
func NewCachedProvider(next geocoding.Provider, store Store, ttl time.Duration, log *slog.Logger) *CachedProvider {
	return &CachedProvider{next: next, store: store, ttl: ttl, log: log}
}

// Geocode implements geocoding.Provider.
func (cp *CachedProvider) Geocode(
	ctx context.Context,
	query string,
	bias *models.Bounds,
) (*models.Match, error) {
	key := cacheKey(query, bias)

	if cached, err := cp.store.Get(ctx, key); err == nil {
		var match models.Match
		if err = json.Unmarshal([]byte(cached), &match); err == nil {
			cp.log.DebugContext(ctx, "Geocode cache hit", "query", query)
			return &match, nil
		}
		cp.log.WarnContext(ctx, "Discarding corrupt cache entry", "key", key, "error", err)
	} else if !errors.Is(err, ErrCacheMiss) {
		cp.log.WarnContext(ctx, "Geocode cache unavailable", "error", err)
	}

	match, err := cp.next.Geocode(ctx, query, bias)
	if err != nil {
		return nil, err
	}

	if data, marshalErr := json.Marshal(match); marshalErr == nil {
		if setErr := cp.store.Set(ctx, key, string(data), cp.ttl); setErr != nil {
			cp.log.WarnContext(ctx, "Failed to cache geocode result", "error", setErr)
		}
	}

	return match, nil
}

// cacheKey builds a stable key for the query. Biased and global lookups of
// the same query can legitimately differ, so the bias participates in the key.
func cacheKey(query string, bias *models.Bounds) string {
	if bias == nil {
		return "geocode:global:" + query
	}
	return fmt.Sprintf("geocode:%f,%f,%f,%f:%s",
		bias.SouthWest.Latitude, bias.SouthWest.Longitude,
		bias.NorthEast.Latitude, bias.NorthEast.Longitude,
		query)
}
