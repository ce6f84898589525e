// Package simulated содержит демонстрационную реализацию сервиса аккаунтов,
// сравнивающую ввод с фиксированными значениями после искусственной задержки.
package simulated

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"acmeshell/internal/shell/domain/form"
	"acmeshell/internal/shell/domain/forms"
	"acmeshell/internal/shell/domain/services"
	"acmeshell/internal/shell/domain/session"
	portServices "acmeshell/internal/shell/ports/services"
	"acmeshell/pkg/logger"
)

// Фиксированные значения, с которыми сравнивается ввод.
const (
	SentinelEmail        = "user@example.com"
	SentinelPassword     = "password123"
	SentinelTakenEmail   = "taken@example.com"
	SentinelUnknownEmail = "unknown@example.com"
)

// Константы для логирования.
const (
	LogSignIn        = "simulated sign in"
	LogRegister      = "simulated registration"
	LogPasswordReset = "simulated password reset"
	LogCancelled     = "simulated call cancelled"

	errCtxWait = "simulated call interrupted"
)

var identityNamespace = uuid.MustParse("6f1c3a1e-3a8f-4f59-9d1c-4b1f5c0e2a7d")

// AccountService - демонстрационная реализация сервиса аккаунтов.
type AccountService struct {
	latency       time.Duration
	redirectDelay time.Duration
}

// NewAccountService создает демонстрационный сервис с задержкой latency на каждый вызов.
func NewAccountService(latency, redirectDelay time.Duration) portServices.AccountBackend {
	return &AccountService{latency: latency, redirectDelay: redirectDelay}
}

// SignIn принимает только фиксированную пару email и пароля.
func (s *AccountService) SignIn(ctx context.Context, in forms.Login) (*form.Outcome, error) {
	log := logger.Log(ctx).With(zap.String("method", "SignIn"))

	if err := s.wait(ctx); err != nil {
		log.Debug(ctx, LogCancelled, zap.Error(err))
		return nil, err
	}

	success := in.Email == SentinelEmail && in.Password == SentinelPassword
	log.Debug(ctx, LogSignIn, zap.Bool("success", success))

	if !success {
		return form.FieldError("password", services.MsgInvalidCredentials), nil
	}
	return form.Success("").WithSubject(in.Email).WithRedirect(services.RedirectAfterLogin, 0), nil
}

// Register отклоняет только занятый email.
func (s *AccountService) Register(ctx context.Context, in forms.Registration) (*form.Outcome, error) {
	log := logger.Log(ctx).With(zap.String("method", "Register"))

	if err := s.wait(ctx); err != nil {
		log.Debug(ctx, LogCancelled, zap.Error(err))
		return nil, err
	}

	taken := in.Email == SentinelTakenEmail
	log.Debug(ctx, LogRegister, zap.Bool("taken", taken))

	if taken {
		return form.FieldError("email", services.MsgEmailTaken).WithBanner(services.MsgEmailTaken), nil
	}
	return form.Success(services.MsgRegistrationSuccess).
		WithRedirect(services.RedirectAfterRegistration, s.redirectDelay), nil
}

// RequestPasswordReset отклоняет только неизвестный email.
func (s *AccountService) RequestPasswordReset(ctx context.Context, in forms.Recovery) (*form.Outcome, error) {
	log := logger.Log(ctx).With(zap.String("method", "RequestPasswordReset"))

	if err := s.wait(ctx); err != nil {
		log.Debug(ctx, LogCancelled, zap.Error(err))
		return nil, err
	}

	unknown := in.Email == SentinelUnknownEmail
	log.Debug(ctx, LogPasswordReset, zap.Bool("unknown", unknown))

	if unknown {
		return form.FieldError("email", services.MsgEmailNotFound).WithBanner(services.MsgEmailNotFoundBanner), nil
	}
	return form.Success(services.ResetLinkSent(in.Email)), nil
}

// ResolveIdentity возвращает стабильную личность для email.
func (s *AccountService) ResolveIdentity(_ context.Context, email string) (*session.Identity, error) {
	name, _, _ := strings.Cut(email, "@")
	return &session.Identity{
		UserID: uuid.NewSHA1(identityNamespace, []byte(email)).String(),
		Email:  email,
		Name:   name,
	}, nil
}

func (s *AccountService) wait(ctx context.Context) error {
	if s.latency <= 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", errCtxWait, err)
		}
		return nil
	}

	timer := time.NewTimer(s.latency)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", errCtxWait, ctx.Err())
	}
}
