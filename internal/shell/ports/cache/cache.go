// Package cache определяет интерфейсы для кэширования.
package cache

import (
	"context"
	"time"
)

// Cache определяет интерфейс для работы с кэшем.
type Cache interface {
	// Get возвращает пустую строку, если ключа нет.
	Get(ctx context.Context, key string) (string, error)

	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// SetNX устанавливает значение, только если ключа нет, и сообщает, удалось ли.
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)

	Exists(ctx context.Context, key string) (bool, error)

	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error

	Close() error
}
