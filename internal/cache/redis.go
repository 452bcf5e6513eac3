package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const displayNameTTL = 12 * time.Hour

// DisplayNameCache caches resolved display names in Redis. A nil cache is
// valid and caches nothing, so callers never branch on availability.
type DisplayNameCache struct {
	client *redis.Client
}

// NewDisplayNameCache connects to Redis and verifies the connection.
func NewDisplayNameCache(addr, password string, db int) (*DisplayNameCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Printf("[Redis] Connected to %s", addr)
	return &DisplayNameCache{client: client}, nil
}

func key(upn string) string {
	return "displayname:" + upn
}

// Get splits upns into cached hits and misses. Redis errors degrade to a full
// miss.
func (c *DisplayNameCache) Get(ctx context.Context, upns []string) (map[string]string, []string) {
	if c == nil || len(upns) == 0 {
		return map[string]string{}, upns
	}

	keys := make([]string, len(upns))
	for i, upn := range upns {
		keys[i] = key(upn)
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		log.Printf("[Redis] MGet failed, treating as miss: %v", err)
		return map[string]string{}, upns
	}

	hits := make(map[string]string)
	var misses []string
	for i, value := range values {
		if name, ok := value.(string); ok && name != "" {
			hits[upns[i]] = name
		} else {
			misses = append(misses, upns[i])
		}
	}
	return hits, misses
}

// Set stores resolved names. Errors are logged, never propagated.
func (c *DisplayNameCache) Set(ctx context.Context, names map[string]string) {
	if c == nil || len(names) == 0 {
		return
	}

	pipe := c.client.Pipeline()
	for upn, name := range names {
		pipe.Set(ctx, key(upn), name, displayNameTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[Redis] caching display names failed: %v", err)
	}
}

// Close closes the Redis connection.
func (c *DisplayNameCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
