// Package config предоставляет функциональность для загрузки конфигурации из переменных окружения.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"acmeshell/pkg/logger"
)

const (
	msgLoadingConfiguration = "loading configuration"
	msgConfigurationLoaded  = "configuration loaded successfully"
	msgEnvFileLoaded        = "env file loaded"
	msgEnvFileMissing       = "env file not found, using process environment"

	errFailedLoadEnvFile       = "failed to load env file"
	errFailedLoadConfiguration = "failed to load configuration"

	attrService = "service"
	attrPath    = "path"
)

// Load загружает конфигурацию сервиса: сначала переменные из envFiles
// (отсутствующие файлы пропускаются), затем окружение процесса.
// Уже заданные переменные окружения не перезаписываются.
func Load[T any](ctx context.Context, serviceName string, envFiles ...string) (*T, error) {
	log := logger.Log(ctx).With(zap.String(attrService, serviceName))

	for _, path := range envFiles {
		err := godotenv.Load(path)
		switch {
		case err == nil:
			log.Info(ctx, msgEnvFileLoaded, zap.String(attrPath, path))
		case errors.Is(err, fs.ErrNotExist):
			log.Debug(ctx, msgEnvFileMissing, zap.String(attrPath, path))
		default:
			log.Error(ctx, errFailedLoadEnvFile, zap.String(attrPath, path), zap.Error(err))
			return nil, fmt.Errorf("%s: %w", errFailedLoadEnvFile, err)
		}
	}

	log.Info(ctx, msgLoadingConfiguration)

	var cfg T
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Error(ctx, errFailedLoadConfiguration, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errFailedLoadConfiguration, err)
	}

	log.Info(ctx, msgConfigurationLoaded)
	return &cfg, nil
}
