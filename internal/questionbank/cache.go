package questionbank

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores the serialized question bank in Redis keyed by a content
// fingerprint of the source document, so restarts skip re-parsing as
// long as the document is unchanged.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCache creates a bank cache over an existing Redis client.
func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// Fingerprint returns the cache key component for a document's content.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func cacheKey(fingerprint string) string {
	return "healthyoda:questionbank:" + fingerprint
}

// Load returns the cached records for the given fingerprint.
// The second return is false on a cache miss.
func (c *Cache) Load(ctx context.Context, fingerprint string) ([]Record, bool, error) {
	data, err := c.rdb.Get(ctx, cacheKey(fingerprint)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("question bank cache get: %w", err)
	}

	records, err := UnmarshalRecords(data)
	if err != nil {
		// A corrupt entry is a miss, not a failure; the caller re-parses.
		return nil, false, nil
	}
	return records, true, nil
}

// Store caches the records under the given fingerprint.
func (c *Cache) Store(ctx context.Context, fingerprint string, records []Record) error {
	data, err := MarshalRecords(records)
	if err != nil {
		return fmt.Errorf("serialize question bank for cache: %w", err)
	}
	if err := c.rdb.Set(ctx, cacheKey(fingerprint), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("question bank cache set: %w", err)
	}
	return nil
}
