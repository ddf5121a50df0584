package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/DevilCodeX-123/College-Hub-sub003/internal/storage"
)

const lockKeyPrefix = "progression:lock:"

// CacheLocker реализует storage.Locker через SETNX в кеше
type CacheLocker struct {
	cache storage.CacheInterface
	owner string
}

// NewCacheLocker создает блокировку, владелец которой уникален для процесса
func NewCacheLocker(cache storage.CacheInterface) *CacheLocker {
	return &CacheLocker{
		cache: cache,
		owner: uuid.NewString(),
	}
}

// TryLock пытается захватить ключ на ttl
func (l *CacheLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.cache.SetNX(ctx, lockKeyPrefix+key, l.owner, ttl)
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	return ok, nil
}

// Unlock освобождает ключ, если он принадлежит этому процессу; проверка и удаление атомарны
func (l *CacheLocker) Unlock(ctx context.Context, key string) error {
	if _, err := l.cache.DeleteIfValue(ctx, lockKeyPrefix+key, l.owner); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	return nil
}
