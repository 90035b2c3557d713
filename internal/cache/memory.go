// Package cache хранит посчитанные бэкендом комиссии.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type entry struct {
	fee     decimal.Decimal
	expires time.Time
}

// MemoryCache - кеш комиссий в памяти процесса с TTL на каждую запись.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache создает кэш котировок в памяти процесса.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get возвращает комиссию, если запись еще не истекла
func (c *MemoryCache) Get(_ context.Context, key string) (decimal.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.now().After(e.expires) {
		return decimal.Zero, false
	}
	return e.fee, true
}

// Set сохраняет комиссию на ttl.
func (c *MemoryCache) Set(_ context.Context, key string, fee decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{fee: fee, expires: c.now().Add(c.ttl)}
}

// Purge удаляет истекшие записи
func (c *MemoryCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// RunPurge чистит кеш каждые interval, пока не отменен ctx.
func (c *MemoryCache) RunPurge(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Purge()
		}
	}
}
