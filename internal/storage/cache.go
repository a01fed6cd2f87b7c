package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the narrow key-value contract the history cache needs. Get must
// return ErrCacheMiss on an absent key so callers can distinguish a miss
// from an outage.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// ErrCacheMiss позначає відсутність ключа, а не збій бекенда.
var ErrCacheMiss = errors.New("cache miss")

// RedisCache adapts a go-redis client to the Cache contract.
type RedisCache struct {
	Client *redis.Client
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return val, err
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	return c.Client.Del(ctx, keys...).Err()
}

// HistoryCache wraps paginated history reads with a cache-aside strategy.
// The cache is a best-effort accelerator: any backend failure falls through
// to the loader and is only logged, never surfaced to the caller.
type HistoryCache struct {
	Cache Cache
	TTL   time.Duration
}

func NewHistoryCache(cache Cache, ttl time.Duration) *HistoryCache {
	return &HistoryCache{Cache: cache, TTL: ttl}
}

// GetHistory returns the cached page for key, or loads it from the
// persistence store on a miss and repopulates the cache. The cache write is
// fire-and-forget so a slow Redis never blocks the read path.
func (h *HistoryCache) GetHistory(ctx context.Context, key string, loader func() ([]byte, error)) ([]byte, error) {
	val, err := h.Cache.Get(ctx, key)
	if err == nil {
		return val, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		log.Printf("WARNING: history cache get failed for %s: %v", key, err)
	}

	fresh, err := loader()
	if err != nil {
		return nil, err
	}

	go func() {
		// Фонове заповнення кешу; помилка лише логується.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := h.Cache.Set(ctx, key, fresh, h.TTL); err != nil {
			log.Printf("WARNING: history cache set failed for %s: %v", key, err)
		}
	}()

	return fresh, nil
}

// Invalidate deletes keys in the background. TTL remains the safety net if
// the delete fails; callers never wait on it or see its errors.
func (h *HistoryCache) Invalidate(keys ...string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := h.Cache.Del(ctx, keys...); err != nil {
			log.Printf("WARNING: history cache invalidation failed for %v: %v", keys, err)
		}
	}()
}

// DirectHistoryKey builds the cache key for one page of a direct
// conversation. The cursor and page size are part of the key so distinct
// pages never collide.
func DirectHistoryKey(pairKey string, beforeID uint, limit int) string {
	return fmt.Sprintf("history:direct:%s:%d:%d", pairKey, beforeID, limit)
}

// GroupHistoryKey builds the cache key for one page of a group conversation.
func GroupHistoryKey(groupID uint, beforeID uint, limit int) string {
	return fmt.Sprintf("history:group:%d:%d:%d", groupID, beforeID, limit)
}
