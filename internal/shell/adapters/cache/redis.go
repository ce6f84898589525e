// Package cache содержит реализацию кэширования с использованием Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"acmeshell/internal/shell/ports/cache"
	"acmeshell/pkg/logger"
)

// Константы для логирования.
const (
	LogMethodGet    = "get"
	LogMethodSet    = "set"
	LogMethodSetNX  = "setnx"
	LogMethodExists = "exists"
	LogMethodDelete = "delete"

	ErrorFailedToGet    = "failed to get value from redis"
	ErrorFailedToSet    = "failed to set value in redis"
	ErrorFailedToSetNX  = "failed to set value in redis if absent"
	ErrorFailedToExists = "failed to check key in redis"
	ErrorFailedToDelete = "failed to delete value from redis"
	ErrorFailedToPing   = "failed to ping redis"
	ErrorFailedToClose  = "failed to close redis connection"
)

// RedisCache реализует интерфейс Cache с использованием Redis.
type RedisCache struct {
	client     *redis.Client
	defaultTTL time.Duration
}

// NewRedisCache создает кэш поверх уже подключенного клиента.
func NewRedisCache(client *redis.Client, defaultTTL time.Duration) cache.Cache {
	return &RedisCache{
		client:     client,
		defaultTTL: defaultTTL,
	}
}

// Get получает значение по ключу.
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	log := logger.Log(ctx).With(zap.String("method", LogMethodGet), zap.String("key", key))

	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		log.Error(ctx, ErrorFailedToGet, zap.Error(err))
		return "", fmt.Errorf("%s: %w", ErrorFailedToGet, err)
	}

	return value, nil
}

// Set устанавливает значение для ключа с временем жизни.
func (c *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	log := logger.Log(ctx).With(zap.String("method", LogMethodSet), zap.String("key", key))

	if err := c.client.Set(ctx, key, value, c.ttl(ttl)).Err(); err != nil {
		log.Error(ctx, ErrorFailedToSet, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToSet, err)
	}

	return nil
}

// SetNX устанавливает значение, только если ключ отсутствует.
func (c *RedisCache) SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	log := logger.Log(ctx).With(zap.String("method", LogMethodSetNX), zap.String("key", key))

	ok, err := c.client.SetNX(ctx, key, value, c.ttl(ttl)).Result()
	if err != nil {
		log.Error(ctx, ErrorFailedToSetNX, zap.Error(err))
		return false, fmt.Errorf("%s: %w", ErrorFailedToSetNX, err)
	}

	return ok, nil
}

// Exists проверяет наличие ключа.
func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	log := logger.Log(ctx).With(zap.String("method", LogMethodExists), zap.String("key", key))

	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		log.Error(ctx, ErrorFailedToExists, zap.Error(err))
		return false, fmt.Errorf("%s: %w", ErrorFailedToExists, err)
	}

	return n > 0, nil
}

// Delete удаляет значение по ключу.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	log := logger.Log(ctx).With(zap.String("method", LogMethodDelete), zap.String("key", key))

	if err := c.client.Del(ctx, key).Err(); err != nil {
		log.Error(ctx, ErrorFailedToDelete, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToDelete, err)
	}

	return nil
}

// Ping проверяет соединение с Redis.
func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedToPing, err)
	}
	return nil
}

// Close закрывает соединение с Redis.
func (c *RedisCache) Close() error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedToClose, err)
	}
	return nil
}

func (c *RedisCache) ttl(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return c.defaultTTL
	}
	return ttl
}
