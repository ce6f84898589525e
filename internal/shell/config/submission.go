package config

import "time"

// SubmissionConfig задает параметры отправки форм.
type SubmissionConfig struct {
	Latency       time.Duration `env:"SHELL_SUBMISSION_LATENCY" env-default:"1s"`
	RedirectDelay time.Duration `env:"SHELL_SUBMISSION_REDIRECT_DELAY" env-default:"2s"`
	Timeout       time.Duration `env:"SHELL_SUBMISSION_TIMEOUT" env-default:"10s"`
}

// RateLimitConfig задает лимиты отправки форм с одного адреса за окно Window.
type RateLimitConfig struct {
	Login    int           `env:"SHELL_RATE_LIMIT_LOGIN" env-default:"10"`
	Register int           `env:"SHELL_RATE_LIMIT_REGISTER" env-default:"5"`
	Recovery int           `env:"SHELL_RATE_LIMIT_RECOVERY" env-default:"3"`
	Window   time.Duration `env:"SHELL_RATE_LIMIT_WINDOW" env-default:"1m"`
}

// GuardConfig управляет защитой маршрутов.
type GuardConfig struct {
	Enabled bool `env:"SHELL_GUARD_ENABLED" env-default:"true"`
}
