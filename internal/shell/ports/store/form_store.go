// Package store определяет хранилища состояния форм и сессий.
package store

import (
	"context"
	"errors"
	"time"

	"acmeshell/internal/shell/domain/form"
)

// Ошибки хранилища.
var (
	ErrFormSessionNotFound = errors.New("form session not found")
	ErrFormSessionLocked   = errors.New("form session is locked by another submission")
)

// FormStore хранит сессии форм одной страницы.
type FormStore[T any] interface {
	Load(ctx context.Context, id string) (*form.Session[T], error)

	Save(ctx context.Context, sess *form.Session[T]) error

	Delete(ctx context.Context, id string) error

	// Lock захватывает отправку формы не дольше ttl. Повторный захват
	// до Unlock возвращает ErrFormSessionLocked.
	Lock(ctx context.Context, id string, ttl time.Duration) error

	Unlock(ctx context.Context, id string) error
}

// RevocationStore хранит отозванные сессии пользователей.
type RevocationStore interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error

	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}
