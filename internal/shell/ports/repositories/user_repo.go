// Package repositories определяет интерфейсы хранилищ аккаунтов.
package repositories

import (
	"context"

	"acmeshell/internal/shell/domain/entities"
)

// UserRepository определяет операции сохранения пользователей.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) (*entities.User, error)

	FindByID(ctx context.Context, id string) (*entities.User, error)

	FindByEmail(ctx context.Context, email string) (*entities.User, error)

	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
