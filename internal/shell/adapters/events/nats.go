// Package events содержит публикацию событий аккаунтов.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"acmeshell/internal/shell/ports/events"
	"acmeshell/pkg/logger"
)

// Константы для логирования.
const (
	LogConnected      = "connected to nats"
	LogPublished      = "account event published"
	LogEventsDisabled = "event publishing disabled, event dropped"

	ErrConnect      = "failed to connect to nats"
	ErrEncodeEvent  = "failed to encode account event"
	ErrPublishEvent = "failed to publish account event"
	ErrCloseConn    = "failed to drain nats connection"
)

const (
	connectionName = "acmeshell"
	connectTimeout = 2 * time.Second
)

// Conn - часть соединения NATS, используемая публикатором.
type Conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NATSPublisher публикует события аккаунтов в NATS.
type NATSPublisher struct {
	conn Conn
}

// Connect подключается к NATS по url.
func Connect(ctx context.Context, url string) (events.Publisher, error) {
	log := logger.Log(ctx)

	nc, err := nats.Connect(url,
		nats.Name(connectionName),
		nats.ReconnectWait(connectTimeout),
		nats.Timeout(connectTimeout),
	)
	if err != nil {
		log.Error(ctx, ErrConnect, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrConnect, err)
	}

	log.Info(ctx, LogConnected, zap.String("server", nc.ConnectedUrlRedacted()))
	return NewNATSPublisher(nc), nil
}

// NewNATSPublisher создает публикатор поверх готового соединения.
func NewNATSPublisher(conn Conn) events.Publisher {
	return &NATSPublisher{conn: conn}
}

// Publish кодирует событие в JSON и публикует его в subject.
func (p *NATSPublisher) Publish(ctx context.Context, subject string, event events.AccountEvent) error {
	log := logger.Log(ctx).With(zap.String("subject", subject))

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrEncodeEvent, err)
	}

	if err := p.conn.Publish(subject, data); err != nil {
		log.Error(ctx, ErrPublishEvent, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrPublishEvent, err)
	}

	log.Debug(ctx, LogPublished)
	return nil
}

// Close дожидается отправки буфера и закрывает соединение.
func (p *NATSPublisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		return fmt.Errorf("%s: %w", ErrCloseConn, err)
	}
	return nil
}

// NoopPublisher отбрасывает события.
type NoopPublisher struct{}

// NewNoopPublisher создает публикатор, который ничего не отправляет.
func NewNoopPublisher() events.Publisher {
	return NoopPublisher{}
}

// Publish записывает событие в лог на уровне debug.
func (NoopPublisher) Publish(ctx context.Context, subject string, _ events.AccountEvent) error {
	logger.Log(ctx).Debug(ctx, LogEventsDisabled, zap.String("subject", subject))
	return nil
}

// Close ничего не делает.
func (NoopPublisher) Close() error {
	return nil
}
