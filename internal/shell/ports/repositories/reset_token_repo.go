package repositories

import (
	"context"

	"acmeshell/internal/shell/domain/entities"
)

// ResetTokenRepository определяет операции с токенами сброса пароля.
type ResetTokenRepository interface {
	Store(ctx context.Context, token *entities.ResetToken) error

	FindByHash(ctx context.Context, tokenHash string) (*entities.ResetToken, error)

	MarkUsed(ctx context.Context, id string) error

	DeleteExpired(ctx context.Context) (int64, error)
}
