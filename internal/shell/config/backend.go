package config

import (
	"fmt"
	"time"
)

// Поддерживаемые реализации сервиса аккаунтов.
const (
	BackendSimulated = "simulated"
	BackendPostgres  = "postgres"
)

// BackendConfig выбирает реализацию сервиса аккаунтов.
type BackendConfig struct {
	Kind          string        `env:"SHELL_BACKEND" env-default:"simulated"`
	BcryptCost    int           `env:"SHELL_BCRYPT_COST" env-default:"10"`
	ResetTokenTTL time.Duration `env:"SHELL_RESET_TOKEN_TTL" env-default:"1h"`
}

// Validate проверяет, что выбран известный backend.
func (c *BackendConfig) Validate() error {
	switch c.Kind {
	case BackendSimulated, BackendPostgres:
		return nil
	default:
		return fmt.Errorf("%s: %q", ErrInvalidBackend, c.Kind)
	}
}

// MailConfig представляет конфигурацию отправки писем через SendGrid.
type MailConfig struct {
	SendGridAPIKey string `env:"SHELL_MAIL_SENDGRID_API_KEY" env-default:""`
	FromAddress    string `env:"SHELL_MAIL_FROM_ADDRESS" env-default:"no-reply@acme.example"`
	FromName       string `env:"SHELL_MAIL_FROM_NAME" env-default:"Acme Inc."`
}

// Enabled сообщает, настроена ли отправка писем.
func (c *MailConfig) Enabled() bool {
	return c.SendGridAPIKey != ""
}

// EventsConfig представляет конфигурацию публикации событий в NATS.
type EventsConfig struct {
	NATSURL string `env:"SHELL_EVENTS_NATS_URL" env-default:""`
}

// Enabled сообщает, настроена ли публикация событий.
func (c *EventsConfig) Enabled() bool {
	return c.NATSURL != ""
}
