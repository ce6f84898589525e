package services

import (
	"context"

	"acmeshell/internal/shell/domain/session"
)

// TokenService выпускает и проверяет сессионные токены.
type TokenService interface {
	Issue(ctx context.Context, id session.Identity, remember bool) (string, *session.Session, error)

	Parse(ctx context.Context, token string) (*session.Session, error)
}
