package adapters

import (
	"context"
	"time"

	"github.com/DevilCodeX-123/College-Hub-sub003/internal/database"
	"github.com/DevilCodeX-123/College-Hub-sub003/internal/storage"
)

// CacheAdapter адаптирует database.RedisClient для storage.CacheInterface
type CacheAdapter struct {
	redis *database.RedisClient
}

// NewCacheAdapter создает новый адаптер для Redis
func NewCacheAdapter(redis *database.RedisClient) storage.CacheInterface {
	return &CacheAdapter{redis: redis}
}

// SetNX устанавливает значение, только если ключа еще нет
func (a *CacheAdapter) SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	return a.redis.SetNX(ctx, key, value, ttl)
}

// DeleteIfValue удаляет ключ, только если он хранит value
func (a *CacheAdapter) DeleteIfValue(ctx context.Context, key string, value string) (bool, error) {
	return a.redis.DeleteIfValue(ctx, key, value)
}

// Health проверяет состояние Redis
func (a *CacheAdapter) Health(ctx context.Context) error {
	return a.redis.Health(ctx)
}
