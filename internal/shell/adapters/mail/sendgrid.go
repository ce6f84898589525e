// Package mail содержит реализации отправки писем.
package mail

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"acmeshell/internal/shell/ports/mail"
	"acmeshell/pkg/logger"
)

// Константы для логирования.
const (
	DefaultSendGridHost = "https://api.sendgrid.com"
	sendGridEndpoint    = "/v3/mail/send"

	LogMailSent      = "mail sent"
	LogMailLogged    = "mail delivery disabled, message logged"
	ErrSendMail      = "failed to send mail"
	ErrMailRejected  = "mail rejected by provider"
	errCtxStatusCode = "status"
)

// ErrProviderRejected возвращается при ответе SendGrid с кодом ошибки.
var ErrProviderRejected = errors.New("mail provider rejected message")

// SendGridSender отправляет письма через SendGrid v3 API.
type SendGridSender struct {
	request  rest.Request
	fromName string
	fromAddr string
}

// NewSendGridSender создает отправителя SendGrid. Пустой host означает DefaultSendGridHost.
func NewSendGridSender(apiKey, host, fromAddr, fromName string) mail.Sender {
	if host == "" {
		host = DefaultSendGridHost
	}
	req := sendgrid.GetRequest(apiKey, sendGridEndpoint, host)
	req.Method = http.MethodPost

	return &SendGridSender{
		request:  req,
		fromName: fromName,
		fromAddr: fromAddr,
	}
}

// Send отправляет письмо.
func (s *SendGridSender) Send(ctx context.Context, msg mail.Message) error {
	log := logger.Log(ctx).With(zap.String("method", "Send"))

	message := sgmail.NewSingleEmail(
		sgmail.NewEmail(s.fromName, s.fromAddr),
		msg.Subject,
		sgmail.NewEmail(msg.ToName, msg.ToAddress),
		msg.Text,
		msg.HTML,
	)

	// Client хранит тело запроса в себе, поэтому создается на каждое письмо.
	client := &sendgrid.Client{Request: s.request}
	resp, err := client.SendWithContext(ctx, message)
	if err != nil {
		log.Error(ctx, ErrSendMail, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrSendMail, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		log.Error(ctx, ErrMailRejected, zap.Int("status_code", resp.StatusCode))
		return fmt.Errorf("%s: %w: %s %d", ErrSendMail, ErrProviderRejected, errCtxStatusCode, resp.StatusCode)
	}

	log.Info(ctx, LogMailSent, zap.Int("status_code", resp.StatusCode))
	return nil
}

// LogSender записывает письма в лог вместо отправки.
type LogSender struct{}

// NewLogSender создает отправителя, пишущего в лог.
func NewLogSender() mail.Sender {
	return LogSender{}
}

// Send записывает тему письма в лог. Тело не логируется, так как содержит ссылку сброса.
func (LogSender) Send(ctx context.Context, msg mail.Message) error {
	logger.Log(ctx).Info(ctx, LogMailLogged, zap.String("subject", msg.Subject))
	return nil
}
