package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/documind-hq/documind/internal/rag"
)

const keyPrefix = "rag:query:"

// pingTimeout bounds the startup reachability probe.
const pingTimeout = 2 * time.Second

// QueryCache stores synthesized answers in Redis, keyed by a hash of the
// normalized query text. When Redis is unreachable at startup the cache
// degrades to a no-op so the service keeps answering queries.
type QueryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis at addr. A failed ping disables the cache rather
// than failing the caller.
func New(addr string, ttl time.Duration) *QueryCache {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, query cache disabled", "addr", addr, "error", err)
		client.Close()
		return &QueryCache{}
	}

	return &QueryCache{client: client, ttl: ttl}
}

// NewWithClient wraps an existing Redis client; used by tests.
func NewWithClient(client *redis.Client, ttl time.Duration) *QueryCache {
	return &QueryCache{client: client, ttl: ttl}
}

// Enabled reports whether a Redis backend is connected.
func (c *QueryCache) Enabled() bool {
	return c.client != nil
}

// Key returns the Redis key for a query. The query is lowercased and
// trimmed first, so trivially different phrasings share an entry.
func Key(query string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	sum := sha256.Sum256([]byte(normalized))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached answer for the query, or nil on a miss. A hit is
// marked Cached and its ResponseTime replaced with the lookup latency.
func (c *QueryCache) Get(ctx context.Context, query string) (*rag.Answer, error) {
	if c.client == nil {
		return nil, nil
	}

	start := time.Now()
	raw, err := c.client.Get(ctx, Key(query)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var answer rag.Answer
	if err := json.Unmarshal(raw, &answer); err != nil {
		return nil, fmt.Errorf("cache entry decode: %w", err)
	}

	answer.Cached = true
	answer.ResponseTime = time.Since(start).Seconds()
	return &answer, nil
}

// Put stores an answer under the query's key with the configured TTL.
func (c *QueryCache) Put(ctx context.Context, query string, answer *rag.Answer) error {
	if c.client == nil {
		return nil
	}

	raw, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("cache entry encode: %w", err)
	}
	if err := c.client.Set(ctx, Key(query), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// InvalidateAll deletes every cached answer. Called when the document
// corpus changes and on the explicit cache-clear endpoint.
func (c *QueryCache) InvalidateAll(ctx context.Context) error {
	if c.client == nil {
		return nil
	}

	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (c *QueryCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
