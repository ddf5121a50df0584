package memory

import (
	"context"
	"sync"
	"time"
)

// Locker блокировка внутри процесса, используется когда Redis не настроен
type Locker struct {
	mu    sync.Mutex
	locks map[string]time.Time
	now   func() time.Time
}

// NewLocker создает пустую блокировку
func NewLocker() *Locker {
	return &Locker{
		locks: make(map[string]time.Time),
		now:   time.Now,
	}
}

// TryLock захватывает ключ на ttl, если он свободен или истек
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if expiresAt, held := l.locks[key]; held && now.Before(expiresAt) {
		return false, nil
	}
	l.locks[key] = now.Add(ttl)
	return true, nil
}

// Unlock освобождает ключ
func (l *Locker) Unlock(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, key)
	return nil
}
