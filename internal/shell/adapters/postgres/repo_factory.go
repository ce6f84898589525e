// Package postgres содержит репозитории аккаунтов для Postgres.
package postgres

import "acmeshell/internal/shell/ports/repositories"

// RepositoryFactory создает все необходимые репозитории для работы с PostgreSQL.
type RepositoryFactory struct {
	userRepo  repositories.UserRepository
	tokenRepo repositories.ResetTokenRepository
}

// NewRepositoryFactory создает новую фабрику репозиториев.
func NewRepositoryFactory(pool PgxPoolInterface) *RepositoryFactory {
	return &RepositoryFactory{
		userRepo:  NewUserRepository(pool),
		tokenRepo: NewResetTokenRepository(pool),
	}
}

// UserRepository возвращает репозиторий пользователей.
func (f *RepositoryFactory) UserRepository() repositories.UserRepository {
	return f.userRepo
}

// ResetTokenRepository возвращает репозиторий токенов сброса пароля.
func (f *RepositoryFactory) ResetTokenRepository() repositories.ResetTokenRepository {
	return f.tokenRepo
}
