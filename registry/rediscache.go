package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taipm/go-llm-gateway/types"
)

// ResponseCache stores a completed ChatResponse keyed by a deterministic
// request hash, so identical requests can be served without another round
// trip.
type ResponseCache interface {
	Get(ctx context.Context, key string) (*types.ChatResponse, bool, error)
	Set(ctx context.Context, key string, resp *types.ChatResponse, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisCache is a Redis-backed ResponseCache, grounded in the teacher's
// RedisCache (agent/cache_redis.go) but storing a marshalled ChatResponse
// instead of an opaque string.
type RedisCache struct {
	client     redis.UniversalClient
	prefix     string
	defaultTTL time.Duration
}

type RedisCacheOptions struct {
	Addr       string
	Password   string
	DB         int
	KeyPrefix  string
	DefaultTTL time.Duration
}

func NewRedisCache(opts RedisCacheOptions) (*RedisCache, error) {
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = "go-llm-gateway"
	}
	if opts.DefaultTTL == 0 {
		opts.DefaultTTL = 5 * time.Minute
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w\n\n"+
			"Fix:\n"+
			"  1. Check Redis is running: redis-cli ping\n"+
			"  2. Verify connection: redis://%s\n"+
			"  3. Start Redis: redis-server or docker run -p 6379:6379 redis\n", err, opts.Addr)
	}

	return &RedisCache{client: client, prefix: opts.KeyPrefix, defaultTTL: opts.DefaultTTL}, nil
}

func (c *RedisCache) makeKey(key string) string {
	return fmt.Sprintf("%s:response:%s", c.prefix, key)
}

func (c *RedisCache) Get(ctx context.Context, key string) (*types.ChatResponse, bool, error) {
	val, err := c.client.Get(ctx, c.makeKey(key)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}
	var resp types.ChatResponse
	if err := json.Unmarshal([]byte(val), &resp); err != nil {
		return nil, false, fmt.Errorf("redis cache: decode cached response: %w", err)
	}
	return &resp, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, resp *types.ChatResponse, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("redis cache: encode response: %w", err)
	}
	if err := c.client.Set(ctx, c.makeKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.makeKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
