package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/krishivaani/krishivaani/src/config"
	"github.com/krishivaani/krishivaani/src/models"
)

// RedisCache stores computed answers keyed by the deterministic query key.
// It is best effort, not a correctness mechanism: callers treat every
// failure as a miss and last-writer-wins is acceptable for writes.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(cfg *config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{
		client: client,
		ttl:    cfg.CacheTTL,
	}, nil
}

// Key builds the deterministic cache key from the raw query text and both
// language parameters. It must not depend on retrieval results or
// timestamps: identical inputs always produce the identical key.
func Key(text string, src, dst models.Language) string {
	return fmt.Sprintf("query:%s:%s:%s", text, src, dst)
}

func (c *RedisCache) Get(ctx context.Context, key string) (*models.AnswerPayload, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrCacheUnavailable, err)
	}

	var payload models.AnswerPayload
	if err := json.Unmarshal([]byte(val), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrCacheUnavailable, err)
	}

	return &payload, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, payload *models.AnswerPayload, ttl time.Duration) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrCacheUnavailable, err)
	}

	if ttl <= 0 {
		ttl = c.ttl
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrCacheUnavailable, err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
