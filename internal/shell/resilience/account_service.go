package resilience

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"acmeshell/internal/shell/domain/form"
	"acmeshell/internal/shell/domain/forms"
	"acmeshell/internal/shell/domain/services"
	portServices "acmeshell/internal/shell/ports/services"
	"acmeshell/pkg/logger"
)

// Константы для логирования.
const (
	LogExecuting       = "executing account operation"
	LogOperationFailed = "account operation failed"

	OpSignIn        = "sign_in"
	OpRegister      = "register"
	OpPasswordReset = "password_reset"
)

// AccountService оборачивает сервис аккаунтов в Circuit Breaker.
// Открытый breaker дает ошибку уровня страницы без обращения к сервису.
type AccountService struct {
	next portServices.AccountService
	cb   *CircuitBreaker
}

// NewAccountService создает обертку отказоустойчивости для сервиса аккаунтов.
func NewAccountService(next portServices.AccountService, cb *CircuitBreaker) portServices.AccountService {
	return &AccountService{next: next, cb: cb}
}

// SignIn выполняет вход через Circuit Breaker.
func (s *AccountService) SignIn(ctx context.Context, in forms.Login) (*form.Outcome, error) {
	return execute(ctx, s.cb, OpSignIn, func() (*form.Outcome, error) {
		return s.next.SignIn(ctx, in)
	})
}

// Register выполняет регистрацию через Circuit Breaker.
func (s *AccountService) Register(ctx context.Context, in forms.Registration) (*form.Outcome, error) {
	return execute(ctx, s.cb, OpRegister, func() (*form.Outcome, error) {
		return s.next.Register(ctx, in)
	})
}

// RequestPasswordReset запрашивает сброс пароля через Circuit Breaker.
func (s *AccountService) RequestPasswordReset(ctx context.Context, in forms.Recovery) (*form.Outcome, error) {
	return execute(ctx, s.cb, OpPasswordReset, func() (*form.Outcome, error) {
		return s.next.RequestPasswordReset(ctx, in)
	})
}

func execute(
	ctx context.Context,
	cb *CircuitBreaker,
	operation string,
	fn func() (*form.Outcome, error),
) (*form.Outcome, error) {
	log := logger.Log(ctx).With(zap.String("operation", operation))
	log.Debug(ctx, LogExecuting)

	var outcome *form.Outcome
	err := cb.Execute(ctx, func() error {
		var err error
		outcome, err = fn()
		return err
	})

	switch {
	case errors.Is(err, ErrCircuitOpen):
		return form.GeneralError(services.MsgServiceUnavailable), nil
	case err != nil:
		log.Warn(ctx, LogOperationFailed, zap.Error(err))
		return nil, err
	default:
		return outcome, nil
	}
}
