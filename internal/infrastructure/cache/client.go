package cache

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nerrad567/pairing-core/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultConnectTimeout bounds the initial PING.
	defaultConnectTimeout = 10 * time.Second

	// defaultPingTimeout bounds health check PINGs.
	defaultPingTimeout = 3 * time.Second

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12
)

// Client wraps a go-redis client with the cache contract used by the pairing flow.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - The underlying connection pool is shared by all callers.
type Client struct {
	rdb *redis.Client
	cfg config.CacheConfig

	closed bool
	mu     sync.RWMutex
}

// Connect creates a Redis client from config and verifies it with a PING.
//
// Returns:
//   - *Client: Connected client ready for use
//   - error: wrapped ErrConnectionFailed if the server is unreachable
func Connect(ctx context.Context, cfg config.CacheConfig) (*Client, error) {
	rdb := redis.NewClient(buildOptions(cfg))

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectionFailed, cfg.Address, err)
	}

	return &Client{rdb: rdb, cfg: cfg}, nil
}

// buildOptions maps CacheConfig onto go-redis options.
func buildOptions(cfg config.CacheConfig) *redis.Options {
	opts := &redis.Options{
		Addr:     cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = time.Duration(cfg.DialTimeout) * time.Second
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = time.Duration(cfg.ReadTimeout) * time.Second
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = time.Duration(cfg.WriteTimeout) * time.Second
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tlsMinVersion}
	}
	return opts
}

// SetIfNotExistsWithExpiration stores value under key only if key is absent.
//
// It returns true iff this call created the key. When the key already exists
// the stored value and its TTL are left untouched and false is returned.
func (c *Client) SetIfNotExistsWithExpiration(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if key == "" {
		return false, ErrInvalidKey
	}
	if ttl <= 0 {
		return false, ErrInvalidTTL
	}
	if !c.IsConnected() {
		return false, ErrNotConnected
	}

	ok, err := c.rdb.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, c.wrap("set nx", err)
	}
	return ok, nil
}

// Get returns the value stored under key.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	if !c.IsConnected() {
		return "", ErrNotConnected
	}

	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		return "", c.wrap("get", err)
	}
	return val, nil
}

// GetDelete atomically returns and removes the value stored under key.
// Requires Redis 6.2 or newer (GETDEL).
func (c *Client) GetDelete(ctx context.Context, key string) (string, error) {
	if !c.IsConnected() {
		return "", ErrNotConnected
	}

	val, err := c.rdb.GetDel(ctx, key).Result()
	if err != nil {
		return "", c.wrap("getdel", err)
	}
	return val, nil
}

// Delete removes key. Deleting a missing key returns ErrKeyNotFound.
func (c *Client) Delete(ctx context.Context, key string) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	n, err := c.rdb.Del(ctx, key).Result()
	if err != nil {
		return c.wrap("del", err)
	}
	if n == 0 {
		return ErrKeyNotFound
	}
	return nil
}

// TTL returns the remaining time to live of key.
func (c *Client) TTL(ctx context.Context, key string) (time.Duration, error) {
	if !c.IsConnected() {
		return 0, ErrNotConnected
	}

	d, err := c.rdb.TTL(ctx, key).Result()
	if err != nil {
		return 0, c.wrap("ttl", err)
	}
	// go-redis reports -2 (missing key) and -1 (no expiry) as raw durations.
	if d == -2 {
		return 0, ErrKeyNotFound
	}
	return d, nil
}

// HealthCheck verifies the cache is reachable with a PING.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	checkCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if err := c.rdb.Ping(checkCtx).Err(); err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}
	return nil
}

// IsConnected reports whether Close has not yet been called.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed
}

// Address returns the configured server address.
func (c *Client) Address() string {
	return c.cfg.Address
}

// Close releases the connection pool. Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.rdb == nil {
		return nil
	}
	c.closed = true

	if err := c.rdb.Close(); err != nil {
		return fmt.Errorf("closing cache: %w", err)
	}
	return nil
}

// wrap maps go-redis errors onto package sentinels.
func (c *Client) wrap(op string, err error) error {
	switch {
	case errors.Is(err, redis.Nil):
		return ErrKeyNotFound
	case errors.Is(err, redis.ErrClosed):
		return ErrNotConnected
	default:
		return fmt.Errorf("cache %s: %w", op, err)
	}
}
