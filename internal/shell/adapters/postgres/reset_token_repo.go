package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"acmeshell/internal/shell/domain/entities"
	"acmeshell/internal/shell/ports/repositories"
	"acmeshell/pkg/logger"
)

// ResetTokenRepository реализует repositories.ResetTokenRepository для Postgres.
type ResetTokenRepository struct {
	pool PgxPoolInterface
	now  func() time.Time
}

// NewResetTokenRepository создает новый экземпляр репозитория токенов сброса.
func NewResetTokenRepository(pool PgxPoolInterface) repositories.ResetTokenRepository {
	return &ResetTokenRepository{pool: pool, now: time.Now}
}

// Store сохраняет токен сброса пароля.
func (r *ResetTokenRepository) Store(ctx context.Context, token *entities.ResetToken) error {
	log := logger.Log(ctx).With(zap.String("repository", "reset_token"), zap.String("method", "Store"))

	query := `
        INSERT INTO password_reset_tokens (id, user_id, token_hash, expires_at)
        VALUES ($1, $2, $3, $4)
    `

	if _, err := r.pool.Exec(ctx, query, token.ID, token.UserID, token.TokenHash, token.ExpiresAt); err != nil {
		log.Error(ctx, "error storing reset token", zap.Error(err))
		return fmt.Errorf("error storing reset token: %w", err)
	}

	return nil
}

// FindByHash находит неиспользованный токен по хэшу.
func (r *ResetTokenRepository) FindByHash(ctx context.Context, tokenHash string) (*entities.ResetToken, error) {
	log := logger.Log(ctx).With(zap.String("repository", "reset_token"), zap.String("method", "FindByHash"))

	query := `
        SELECT id, user_id, token_hash, expires_at, created_at, used_at
        FROM password_reset_tokens
        WHERE token_hash = $1 AND used_at IS NULL
    `

	var token entities.ResetToken
	err := r.pool.QueryRow(ctx, query, tokenHash).Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.ExpiresAt,
		&token.CreatedAt,
		&token.UsedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "reset token not found")
			return nil, entities.ErrResetTokenNotFound
		}
		log.Error(ctx, "error finding reset token", zap.Error(err))
		return nil, fmt.Errorf("error querying reset token: %w", err)
	}

	return &token, nil
}

// MarkUsed помечает токен использованным.
func (r *ResetTokenRepository) MarkUsed(ctx context.Context, id string) error {
	log := logger.Log(ctx).With(zap.String("repository", "reset_token"), zap.String("method", "MarkUsed"))

	query := `
        UPDATE password_reset_tokens
        SET used_at = $2
        WHERE id = $1 AND used_at IS NULL
    `

	result, err := r.pool.Exec(ctx, query, id, r.now().UTC())
	if err != nil {
		log.Error(ctx, "error marking reset token used", zap.Error(err))
		return fmt.Errorf("error marking reset token used: %w", err)
	}

	if result.RowsAffected() == 0 {
		return entities.ErrResetTokenNotFound
	}

	return nil
}

// DeleteExpired удаляет просроченные токены и возвращает их количество.
func (r *ResetTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	log := logger.Log(ctx).With(zap.String("repository", "reset_token"), zap.String("method", "DeleteExpired"))

	query := `
        DELETE FROM password_reset_tokens
        WHERE expires_at < $1
    `

	result, err := r.pool.Exec(ctx, query, r.now().UTC())
	if err != nil {
		log.Error(ctx, "error deleting expired reset tokens", zap.Error(err))
		return 0, fmt.Errorf("error deleting expired reset tokens: %w", err)
	}

	log.Info(ctx, "expired reset tokens cleaned up", zap.Int64("removed_count", result.RowsAffected()))
	return result.RowsAffected(), nil
}
