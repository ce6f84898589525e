package services

import (
	"errors"
	"time"
)

// Ошибки сессионных токенов.
var (
	ErrInvalidSessionToken = errors.New("invalid session token")
	ErrExpiredSessionToken = errors.New("session token has expired")
	ErrGeneratingToken     = errors.New("failed to generate session token")
)

// TokenConfig содержит настройки сервиса сессионных токенов.
type TokenConfig struct {
	SecretKey   []byte
	TTL         time.Duration
	RememberTTL time.Duration
}
