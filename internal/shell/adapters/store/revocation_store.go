package store

import (
	"context"
	"fmt"
	"time"

	"acmeshell/internal/shell/ports/cache"
	"acmeshell/internal/shell/ports/store"
)

// Константы ошибок.
const (
	ErrRevokeSession   = "failed to revoke session"
	ErrCheckRevocation = "failed to check session revocation"

	revocationKeyPrefix   = "session-revoked:"
	minRevocationLifetime = time.Second
)

// RevocationStore хранит отозванные сессии до истечения их срока.
type RevocationStore struct {
	cache cache.Cache
}

// NewRevocationStore создает хранилище отозванных сессий.
func NewRevocationStore(c cache.Cache) store.RevocationStore {
	return &RevocationStore{cache: c}
}

// Revoke помечает сессию отозванной на ttl.
func (s *RevocationStore) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl < minRevocationLifetime {
		ttl = minRevocationLifetime
	}
	if err := s.cache.Set(ctx, revocationKeyPrefix+sessionID, "1", ttl); err != nil {
		return fmt.Errorf("%s: %w", ErrRevokeSession, err)
	}
	return nil
}

// IsRevoked проверяет, отозвана ли сессия.
func (s *RevocationStore) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	ok, err := s.cache.Exists(ctx, revocationKeyPrefix+sessionID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", ErrCheckRevocation, err)
	}
	return ok, nil
}
