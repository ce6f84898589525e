package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"acmeshell/internal/shell/domain/session"
)

func TestSessionExpiry(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	s := &session.Session{IssuedAt: now, ExpiresAt: now.Add(time.Hour)}

	assert.False(t, s.Expired(now))
	assert.Equal(t, time.Hour, s.TTL(now))
	assert.True(t, s.Expired(now.Add(time.Hour)))
	assert.Zero(t, s.TTL(now.Add(2*time.Hour)))

	var none *session.Session
	assert.True(t, none.Expired(now))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Jane", (&session.Session{Name: "Jane", Email: "j@x.io"}).DisplayName())
	assert.Equal(t, "j@x.io", (&session.Session{Email: "j@x.io"}).DisplayName())

	var none *session.Session
	assert.Empty(t, none.DisplayName())
}
