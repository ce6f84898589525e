package config

import "time"

// SessionConfig представляет конфигурацию сессий пользователя и форм.
type SessionConfig struct {
	SecretKey    string        `env:"SHELL_SESSION_SECRET_KEY" env-default:"change-me-in-production"`
	TTL          time.Duration `env:"SHELL_SESSION_TTL" env-default:"12h"`
	RememberTTL  time.Duration `env:"SHELL_SESSION_REMEMBER_TTL" env-default:"720h"`
	CookieSecure bool          `env:"SHELL_SESSION_COOKIE_SECURE" env-default:"false"`
	FormTTL      time.Duration `env:"SHELL_FORM_SESSION_TTL" env-default:"30m"`
}
