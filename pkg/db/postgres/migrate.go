package postgres

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"acmeshell/pkg/logger"
)

// Константы для сообщений об ошибках миграций.
const (
	ErrOpenMigrationSource     = "failed to open migration source"
	ErrCreateMigrationInstance = "failed to create migration instance"
	ErrApplyMigrations         = "failed to apply migrations"
	ErrRollbackMigrations      = "failed to roll back migrations"
	ErrUnknownDirection        = "unknown migration direction"
)

// Direction задает направление миграции.
type Direction string

// Поддерживаемые направления.
const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection разбирает направление миграции из строки.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Up, Down:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("%s: %q", ErrUnknownDirection, s)
	}
}

// Migrate применяет (или откатывает) миграции из встроенной файловой системы.
func Migrate(ctx context.Context, dsn string, migrations fs.FS, dir Direction) error {
	log := logger.Log(ctx).With(zap.String("direction", string(dir)))

	src, err := iofs.New(migrations, ".")
	if err != nil {
		log.Error(ctx, ErrOpenMigrationSource, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrOpenMigrationSource, err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		log.Error(ctx, ErrCreateMigrationInstance, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrCreateMigrationInstance, err)
	}
	defer m.Close()

	switch dir {
	case Up:
		err = m.Up()
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Error(ctx, ErrApplyMigrations, zap.Error(err))
			return fmt.Errorf("%s: %w", ErrApplyMigrations, err)
		}
	case Down:
		err = m.Down()
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Error(ctx, ErrRollbackMigrations, zap.Error(err))
			return fmt.Errorf("%s: %w", ErrRollbackMigrations, err)
		}
	default:
		return fmt.Errorf("%s: %q", ErrUnknownDirection, dir)
	}

	log.Info(ctx, LogMigrationsApplied)
	return nil
}
