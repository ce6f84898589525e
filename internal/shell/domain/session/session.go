// Package session описывает сессию вошедшего пользователя.
package session

import "time"

// Session - сессия пользователя, выданная после входа.
type Session struct {
	ID        string
	UserID    string
	Email     string
	Name      string
	Remember  bool
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired сообщает, истекла ли сессия к моменту now.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || !now.Before(s.ExpiresAt)
}

// DisplayName возвращает имя для приветствия.
func (s *Session) DisplayName() string {
	if s == nil {
		return ""
	}
	if s.Name != "" {
		return s.Name
	}
	return s.Email
}

// TTL возвращает оставшееся время жизни сессии.
func (s *Session) TTL(now time.Time) time.Duration {
	if s.Expired(now) {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}

// Identity - данные пользователя, на которого выписывается сессия.
type Identity struct {
	UserID string
	Email  string
	Name   string
}
