package config

import (
	"fmt"
	"time"
)

// HTTPConfig представляет конфигурацию HTTP сервера.
type HTTPConfig struct {
	Host         string        `env:"SHELL_HTTP_HOST" env-default:"0.0.0.0"`
	Port         int           `env:"SHELL_HTTP_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `env:"SHELL_HTTP_READ_TIMEOUT" env-default:"5s"`
	WriteTimeout time.Duration `env:"SHELL_HTTP_WRITE_TIMEOUT" env-default:"10s"`
	PublicURL    string        `env:"SHELL_PUBLIC_URL" env-default:"http://localhost:8080"`
}

// GetAddress возвращает адрес HTTP сервера.
func (c *HTTPConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
