package config

import (
	"fmt"
	"time"
)

// RedisConfig представляет конфигурацию для Redis.
type RedisConfig struct {
	Host            string        `env:"SHELL_REDIS_HOST" env-default:"localhost"`
	Port            int           `env:"SHELL_REDIS_PORT" env-default:"6379"`
	Password        string        `env:"SHELL_REDIS_PASSWORD" env-default:""`
	DB              int           `env:"SHELL_REDIS_DB" env-default:"0"`
	ConnectTimeout  time.Duration `env:"SHELL_REDIS_CONNECT_TIMEOUT" env-default:"5s"`
	ReadTimeout     time.Duration `env:"SHELL_REDIS_READ_TIMEOUT" env-default:"3s"`
	WriteTimeout    time.Duration `env:"SHELL_REDIS_WRITE_TIMEOUT" env-default:"3s"`
	PoolSize        int           `env:"SHELL_REDIS_POOL_SIZE" env-default:"10"`
	MinIdle         int           `env:"SHELL_REDIS_MIN_IDLE" env-default:"2"`
	IdleTimeout     time.Duration `env:"SHELL_REDIS_IDLE_TIMEOUT" env-default:"5m"`
	MaxConnLifetime time.Duration `env:"SHELL_REDIS_MAX_CONN_LIFETIME" env-default:"1h"`
	DefaultTTL      time.Duration `env:"SHELL_REDIS_DEFAULT_TTL" env-default:"15m"`
}

// GetAddress возвращает адрес Redis.
func (c *RedisConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
