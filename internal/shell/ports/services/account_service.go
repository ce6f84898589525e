// Package services определяет внешние сервисы, вызываемые оболочкой.
package services

import (
	"context"

	"acmeshell/internal/shell/domain/form"
	"acmeshell/internal/shell/domain/forms"
	"acmeshell/internal/shell/domain/session"
)

// AccountService выполняет операции с аккаунтами. Результат бизнес-уровня
// возвращается как Outcome; ошибка означает сбой транспорта или инфраструктуры.
type AccountService interface {
	SignIn(ctx context.Context, in forms.Login) (*form.Outcome, error)

	Register(ctx context.Context, in forms.Registration) (*form.Outcome, error)

	RequestPasswordReset(ctx context.Context, in forms.Recovery) (*form.Outcome, error)
}

// IdentityResolver возвращает данные пользователя по email после успешного входа.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, email string) (*session.Identity, error)
}

// AccountBackend объединяет операции аккаунтов и получение личности пользователя.
type AccountBackend interface {
	AccountService
	IdentityResolver
}
