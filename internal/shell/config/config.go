// Package config содержит конфигурацию веб-оболочки.
package config

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	pkgconfig "acmeshell/pkg/config"
	"acmeshell/pkg/logger"
)

// Константы ошибок и сообщений для конфигурации.
const (
	ServiceName = "shell"

	LogConfigSummary    = "shell configuration"
	ErrFailedLoadConfig = "failed to load shell configuration"
	ErrInvalidBackend   = "invalid submission backend"
)

// DefaultEnvFiles перечисляет env-файлы, читаемые при старте.
var DefaultEnvFiles = []string{".env", "deploy/.env"}

// Config представляет полную конфигурацию оболочки.
type Config struct {
	HTTP       HTTPConfig
	Logging    LoggingConfig
	Shutdown   ShutdownConfig
	Redis      RedisConfig
	Postgres   PostgresConfig
	Session    SessionConfig
	Submission SubmissionConfig
	RateLimit  RateLimitConfig
	Backend    BackendConfig
	Mail       MailConfig
	Events     EventsConfig
	Guard      GuardConfig
}

// Load загружает конфигурацию из env-файлов и переменных окружения.
func Load(ctx context.Context, envFiles ...string) (*Config, error) {
	log := logger.Log(ctx)

	cfg, err := pkgconfig.Load[Config](ctx, ServiceName, envFiles...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrFailedLoadConfig, err)
	}

	if err := cfg.Backend.Validate(); err != nil {
		log.Error(ctx, ErrInvalidBackend, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrFailedLoadConfig, err)
	}

	log.Info(ctx, LogConfigSummary,
		zap.String("http_address", cfg.HTTP.GetAddress()),
		zap.String("log_level", cfg.Logging.Level),
		zap.String("log_mode", cfg.Logging.Mode),
		zap.String("redis_address", cfg.Redis.GetAddress()),
		zap.String("backend", cfg.Backend.Kind),
		zap.Bool("guard_enabled", cfg.Guard.Enabled),
		zap.Duration("submission_latency", cfg.Submission.Latency))

	return cfg, nil
}

// GetEnvironment возвращает режим работы логгера.
func (c *LoggingConfig) GetEnvironment() logger.Environment {
	if c.Mode == "development" {
		return logger.Development
	}
	return logger.Production
}
