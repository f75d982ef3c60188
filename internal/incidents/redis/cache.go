// Package redis provides a Redis-backed cache for fetched raw incidents.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bissquit/incident-feed/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

const (
	defaultAddr      = "127.0.0.1:6379"
	defaultKeyPrefix = "incidentfeed"
	defaultTTL       = 60 * time.Second
	pingTimeout      = 5 * time.Second
)

// Config configures Redis access for the incident cache.
type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

// Cache stores the raw incident collection as a single JSON value.
type Cache struct {
	client *goredis.Client
	key    string
	ttl    time.Duration
}

// NewCache connects to Redis and verifies the connection.
func NewCache(cfg Config) (*Cache, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = defaultAddr
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis incident cache: %w", err)
	}

	return NewCacheWithClient(client, cfg), nil
}

// NewCacheWithClient builds a cache on an existing client.
func NewCacheWithClient(client *goredis.Client, cfg Config) *Cache {
	prefix := strings.TrimSpace(cfg.KeyPrefix)
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &Cache{
		client: client,
		key:    Key(prefix),
		ttl:    ttl,
	}
}

// Key returns the Redis key holding the raw collection for prefix.
func Key(prefix string) string {
	return prefix + ":incidents:raw"
}

// Get implements incidents.Cache. A missing key is a miss, not an error.
func (c *Cache) Get(ctx context.Context) ([]domain.RawIncident, bool, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", c.key, err)
	}

	raws, err := Decode(data)
	if err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", c.key, err)
	}
	return raws, true, nil
}

// Set implements incidents.Cache.
func (c *Cache) Set(ctx context.Context, raws []domain.RawIncident) error {
	data, err := Encode(raws)
	if err != nil {
		return fmt.Errorf("encode incidents: %w", err)
	}

	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", c.key, err)
	}
	return nil
}

// Ping implements incidents.Cache.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the Redis connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Encode serialises raw incidents for storage.
func Encode(raws []domain.RawIncident) ([]byte, error) {
	if raws == nil {
		raws = []domain.RawIncident{}
	}
	return json.Marshal(raws)
}

// Decode parses a stored raw incident collection.
func Decode(data []byte) ([]domain.RawIncident, error) {
	var raws []domain.RawIncident
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}
	if raws == nil {
		raws = []domain.RawIncident{}
	}
	return raws, nil
}
