package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Renal37/cardledger/internal/logger"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const keyPrefix = "cardledger:fee:"

// RedisCache - кеш комиссий в Redis, общий для всех экземпляров сервиса.
// Ошибки Redis не ломают расчет: промах просто уходит в бэкенд.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache создает кэш котировок поверх Redis.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Connect создает клиента и проверяет соединение.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// Get возвращает комиссию по ключу. Ошибки Redis считаются промахом.
func (c *RedisCache) Get(ctx context.Context, key string) (decimal.Decimal, bool) {
	data, err := c.client.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.Warn("fee cache read failed", zap.String("key", key), zap.Error(err))
		}
		return decimal.Zero, false
	}

	fee, err := decimal.NewFromString(data)
	if err != nil {
		logger.Log.Warn("fee cache holds malformed value", zap.String("key", key), zap.String("value", data))
		return decimal.Zero, false
	}
	return fee, true
}

// Set сохраняет комиссию строкой с TTL. Ошибка записи только логируется.
func (c *RedisCache) Set(ctx context.Context, key string, fee decimal.Decimal) {
	if err := c.client.Set(ctx, keyPrefix+key, fee.String(), c.ttl).Err(); err != nil {
		logger.Log.Warn("fee cache write failed", zap.String("key", key), zap.Error(err))
	}
}
