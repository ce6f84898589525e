// Package events определяет публикацию событий аккаунтов.
package events

import (
	"context"
	"time"
)

// Темы событий.
const (
	SubjectRegistered             = "account.registered"
	SubjectPasswordResetRequested = "account.password_reset_requested"
	SubjectSignedIn               = "account.signed_in"
)

// AccountEvent - событие, публикуемое при изменении аккаунта.
type AccountEvent struct {
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher публикует события.
type Publisher interface {
	Publish(ctx context.Context, subject string, event AccountEvent) error

	Close() error
}
