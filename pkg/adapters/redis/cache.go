package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/wayfinder/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "wayfinder:"

// Cache implements ports.Cache using Redis.
type Cache struct {
	client *backend.Client
	prefix string
}

// Option configures a Cache.
type Option func(*Cache)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = prefix
	}
}

// Config holds the connection settings used by New.
type Config struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// New creates a Redis cache with its own client.
func New(cfg Config, opts ...Option) *Cache {
	rdb := backend.NewClient(&backend.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Redis cache from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Cache {
	c := &Cache{
		client: client,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Client exposes the underlying client so a Locker can share the pool.
func (c *Cache) Client() *backend.Client {
	return c.client
}

// Prefix returns the configured key prefix.
func (c *Cache) Prefix() string {
	return c.prefix
}

func (c *Cache) key(k string) string {
	return c.prefix + k
}

// Get retrieves a value.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, ports.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return val, nil
}

// Set stores a value. A zero ttl keeps the key until deleted.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}
