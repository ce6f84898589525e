package config

import (
	"fmt"
	"net/url"
	"time"
)

// PostgresConfig представляет конфигурацию базы аккаунтов.
type PostgresConfig struct {
	Host     string `env:"SHELL_POSTGRES_HOST" env-default:"localhost"`
	Port     int    `env:"SHELL_POSTGRES_PORT" env-default:"5432"`
	User     string `env:"SHELL_POSTGRES_USER" env-default:"postgres"`
	Password string `env:"SHELL_POSTGRES_PASSWORD" env-default:"postgres"`
	Database string `env:"SHELL_POSTGRES_DB" env-default:"shell"`
	SSLMode  string `env:"SHELL_POSTGRES_SSLMODE" env-default:"disable"`
	MinConn  int    `env:"SHELL_POSTGRES_MIN_CONN" env-default:"1"`
	MaxConn  int    `env:"SHELL_POSTGRES_MAX_CONN" env-default:"10"`

	MaxConnIdleTime time.Duration `env:"SHELL_POSTGRES_MAX_CONN_IDLE_TIME" env-default:"5m"`
	ConnectTimeout  time.Duration `env:"SHELL_POSTGRES_CONNECT_TIMEOUT" env-default:"5s"`
}

// GetDSN возвращает строку подключения к Postgres.
func (c *PostgresConfig) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.User), url.QueryEscape(c.Password), c.Host, c.Port, c.Database, c.SSLMode)
}
