// Package app содержит сценарии работы с аккаунтами для хранилища PostgreSQL.
package app

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"acmeshell/internal/shell/domain/entities"
	"acmeshell/internal/shell/domain/form"
	"acmeshell/internal/shell/domain/forms"
	"acmeshell/internal/shell/domain/services"
	"acmeshell/internal/shell/domain/session"
	"acmeshell/internal/shell/ports/events"
	"acmeshell/internal/shell/ports/mail"
	"acmeshell/internal/shell/ports/repositories"
	svc "acmeshell/internal/shell/ports/services"
	"acmeshell/pkg/logger"
)

const (
	methodSignIn          = "SignIn"
	methodRegister        = "Register"
	methodPasswordReset   = "RequestPasswordReset"
	methodResolveIdentity = "ResolveIdentity"

	msgLoginAttempt       = "login attempt"
	msgLoginUnknownEmail  = "login attempt with non-existent email"
	msgLoginWrongPassword = "invalid password provided"
	msgUserLoggedIn       = "user logged in successfully"
	msgStartRegistration  = "starting user registration"
	msgEmailExists        = "user with this email already exists"
	msgUserRegistered     = "user registered successfully"
	msgResetRequested     = "password reset requested"
	msgResetUnknownEmail  = "password reset for non-existent email"
	msgResetLinkSent      = "password reset link sent"
	msgErrPublishEvent    = "failed to publish account event"

	errCtxFindingUser       = "finding user"
	errCtxVerifyingPassword = "verifying password"
	errCtxHashingPassword   = "hashing password"
	errCtxCreatingUser      = "creating user"
	errCtxGeneratingToken   = "generating reset token"
	errCtxStoringToken      = "storing reset token"
	errCtxSendingMail       = "sending reset mail"

	resetPath        = "/reset-password"
	resetTokenBytes  = 32
	resetMailSubject = "Reset your Acme Inc. password"
	resetMailText    = "Hello %s,\n\nUse the link below to choose a new password. It expires in %s.\n\n%s\n"
	resetMailHTML    = `<p>Hello %s,</p><p>Use the link below to choose a new password. It expires in %s.</p><p><a href="%s">Reset password</a></p>`
)

// AccountConfig - параметры сценариев аккаунтов.
type AccountConfig struct {
	PublicURL     string
	ResetTokenTTL time.Duration
	RedirectDelay time.Duration
}

// AccountUseCase реализует сервис аккаунтов поверх репозиториев.
type AccountUseCase struct {
	userRepo    repositories.UserRepository
	tokenRepo   repositories.ResetTokenRepository
	passwordSvc svc.PasswordService
	mailer      mail.Sender
	publisher   events.Publisher
	cfg         AccountConfig
	now         func() time.Time
}

// NewAccountUseCase создает сервис аккаунтов.
func NewAccountUseCase(
	userRepo repositories.UserRepository,
	tokenRepo repositories.ResetTokenRepository,
	passwordSvc svc.PasswordService,
	mailer mail.Sender,
	publisher events.Publisher,
	cfg AccountConfig,
) svc.AccountBackend {
	return newAccountUseCase(userRepo, tokenRepo, passwordSvc, mailer, publisher, cfg, time.Now)
}

func newAccountUseCase(
	userRepo repositories.UserRepository,
	tokenRepo repositories.ResetTokenRepository,
	passwordSvc svc.PasswordService,
	mailer mail.Sender,
	publisher events.Publisher,
	cfg AccountConfig,
	now func() time.Time,
) *AccountUseCase {
	return &AccountUseCase{
		userRepo:    userRepo,
		tokenRepo:   tokenRepo,
		passwordSvc: passwordSvc,
		mailer:      mailer,
		publisher:   publisher,
		cfg:         cfg,
		now:         now,
	}
}

// SignIn проверяет email и пароль. Неизвестный email и неверный пароль
// дают одинаковую ошибку поля пароля.
func (a *AccountUseCase) SignIn(ctx context.Context, in forms.Login) (*form.Outcome, error) {
	log := logger.Log(ctx).With(zap.String("method", methodSignIn))
	log.Debug(ctx, msgLoginAttempt)

	user, err := a.userRepo.FindByEmail(ctx, in.Email)
	if errors.Is(err, entities.ErrUserNotFound) {
		log.Debug(ctx, msgLoginUnknownEmail)
		return form.FieldError("password", services.MsgInvalidCredentials), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}

	ok, err := a.passwordSvc.Verify(ctx, in.Password, user.PasswordHash)
	if err != nil && !errors.Is(err, services.ErrInvalidPassword) {
		return nil, fmt.Errorf("%s: %w", errCtxVerifyingPassword, err)
	}
	if !ok {
		log.Debug(ctx, msgLoginWrongPassword)
		return form.FieldError("password", services.MsgInvalidCredentials), nil
	}

	a.publish(ctx, events.SubjectSignedIn, user)
	log.Info(ctx, msgUserLoggedIn, zap.String("user_id", user.ID))

	return form.Success("").WithSubject(user.Email).WithRedirect(services.RedirectAfterLogin, 0), nil
}

// Register создает пользователя. Занятый email дает ошибку поля email.
func (a *AccountUseCase) Register(ctx context.Context, in forms.Registration) (*form.Outcome, error) {
	log := logger.Log(ctx).With(zap.String("method", methodRegister))
	log.Debug(ctx, msgStartRegistration)

	existing, err := a.userRepo.FindByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, entities.ErrUserNotFound) {
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}
	if existing != nil {
		log.Debug(ctx, msgEmailExists)
		return emailTaken(), nil
	}

	hash, err := a.passwordSvc.Hash(ctx, in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxHashingPassword, err)
	}

	now := a.now().UTC()
	user, err := a.userRepo.Create(ctx, &entities.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, services.ErrEmailTaken) {
		log.Debug(ctx, msgEmailExists)
		return emailTaken(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxCreatingUser, err)
	}

	a.publish(ctx, events.SubjectRegistered, user)
	log.Info(ctx, msgUserRegistered, zap.String("user_id", user.ID))

	return form.Success(services.MsgRegistrationSuccess).
		WithRedirect(services.RedirectAfterRegistration, a.cfg.RedirectDelay), nil
}

// RequestPasswordReset сохраняет хеш одноразового токена и отправляет ссылку сброса.
func (a *AccountUseCase) RequestPasswordReset(ctx context.Context, in forms.Recovery) (*form.Outcome, error) {
	log := logger.Log(ctx).With(zap.String("method", methodPasswordReset))
	log.Debug(ctx, msgResetRequested)

	user, err := a.userRepo.FindByEmail(ctx, in.Email)
	if errors.Is(err, entities.ErrUserNotFound) {
		log.Debug(ctx, msgResetUnknownEmail)
		return form.FieldError("email", services.MsgEmailNotFound).WithBanner(services.MsgEmailNotFoundBanner), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}

	raw, hash, err := newResetToken()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxGeneratingToken, err)
	}

	now := a.now().UTC()
	token := &entities.ResetToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: now.Add(a.cfg.ResetTokenTTL),
		CreatedAt: now,
	}
	if err := a.tokenRepo.Store(ctx, token); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxStoringToken, err)
	}

	link := a.resetLink(raw)
	ttl := a.cfg.ResetTokenTTL.String()
	if err := a.mailer.Send(ctx, mail.Message{
		ToAddress: user.Email,
		ToName:    user.Name,
		Subject:   resetMailSubject,
		Text:      fmt.Sprintf(resetMailText, user.Name, ttl, link),
		HTML:      fmt.Sprintf(resetMailHTML, user.Name, ttl, link),
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxSendingMail, err)
	}

	a.publish(ctx, events.SubjectPasswordResetRequested, user)
	log.Info(ctx, msgResetLinkSent, zap.String("user_id", user.ID))

	return form.Success(services.ResetLinkSent(in.Email)), nil
}

// ResolveIdentity возвращает данные пользователя для сессии.
func (a *AccountUseCase) ResolveIdentity(ctx context.Context, email string) (*session.Identity, error) {
	user, err := a.userRepo.FindByEmail(ctx, email)
	if err != nil {
		logger.Log(ctx).Debug(ctx, errCtxFindingUser,
			zap.String("method", methodResolveIdentity), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}
	return &session.Identity{UserID: user.ID, Email: user.Email, Name: user.Name}, nil
}

func (a *AccountUseCase) publish(ctx context.Context, subject string, user *entities.User) {
	err := a.publisher.Publish(ctx, subject, events.AccountEvent{
		UserID:     user.ID,
		Email:      user.Email,
		OccurredAt: a.now().UTC(),
	})
	if err != nil {
		logger.Log(ctx).Warn(ctx, msgErrPublishEvent, zap.String("subject", subject), zap.Error(err))
	}
}

func (a *AccountUseCase) resetLink(token string) string {
	return strings.TrimRight(a.cfg.PublicURL, "/") + resetPath + "?token=" + url.QueryEscape(token)
}

func emailTaken() *form.Outcome {
	return form.FieldError("email", services.MsgEmailTaken).WithBanner(services.MsgEmailTaken)
}

// newResetToken возвращает токен для ссылки и его sha256-хеш для хранения.
func newResetToken() (string, string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	raw := base64.RawURLEncoding.EncodeToString(buf)
	sum := sha256.Sum256([]byte(raw))
	return raw, hex.EncodeToString(sum[:]), nil
}
