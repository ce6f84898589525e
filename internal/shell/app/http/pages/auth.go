package pages

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"acmeshell/internal/shell/app/guard"
	"acmeshell/internal/shell/app/http/middleware"
	"acmeshell/internal/shell/app/http/view"
	"acmeshell/internal/shell/app/workflow"
	"acmeshell/internal/shell/domain/forms"
	"acmeshell/internal/shell/ports/services"
	"acmeshell/internal/shell/ports/store"
	"acmeshell/pkg/logger"
)

// Константы для логирования.
const (
	LogUserSignedIn  = "user signed in"
	LogUserLogout    = "user logged out"
	LogLoginReplayed = "completed login form posted again"

	ErrResolveIdentity = "failed to resolve identity"
	ErrIssueSession    = "failed to issue session"
	ErrRevokeSession   = "failed to revoke session"
	ErrDiscardForm     = "failed to discard form session"
)

var errNoSubject = errors.New("sign-in outcome carries no verified email")

// AccountHandlers обслуживает страницы входа, регистрации, восстановления и выхода.
type AccountHandlers struct {
	login    *formHandler[forms.Login]
	register *formHandler[forms.Registration]
	recovery *formHandler[forms.Recovery]

	identities   services.IdentityResolver
	tokens       services.TokenService
	revocations  store.RevocationStore
	cookieSecure bool
}

// AccountConfig - зависимости страниц аккаунта.
type AccountConfig struct {
	View         *view.Renderer
	Login        *workflow.Runner[forms.Login]
	Registration *workflow.Runner[forms.Registration]
	Recovery     *workflow.Runner[forms.Recovery]
	Identities   services.IdentityResolver
	Tokens       services.TokenService
	Revocations  store.RevocationStore
	CookieSecure bool
}

// NewAccountHandlers создает обработчики страниц аккаунта.
func NewAccountHandlers(cfg AccountConfig) *AccountHandlers {
	h := &AccountHandlers{
		identities:   cfg.Identities,
		tokens:       cfg.Tokens,
		revocations:  cfg.Revocations,
		cookieSecure: cfg.CookieSecure,
	}

	h.login = &formHandler[forms.Login]{
		runner: cfg.Login,
		view:   cfg.View,
		meta: pageMeta{
			Title:           "Welcome Back!",
			Description:     "Sign in to continue to your dashboard.",
			Action:          "/login",
			SubmitLabel:     "Sign In",
			SubmittingLabel: "Signing In...",
			Links: []view.Link{
				{Label: "Forgot Password?", Href: "/forgot-password"},
				{Prefix: "Don't have an account?", Label: "Sign Up Here", Href: "/register"},
			},
			HideBannerOnFieldError: "password",
		},
		sanitize: func(in forms.Login) forms.Login {
			in.Email = sanitizeText(in.Email)
			return in
		},
		onSuccess: h.signIn,
	}

	h.register = &formHandler[forms.Registration]{
		runner: cfg.Registration,
		view:   cfg.View,
		meta: pageMeta{
			Title:           "Create Your Account",
			Description:     "Join our community by filling out the form below.",
			Action:          "/register",
			SubmitLabel:     "Create Account",
			SubmittingLabel: "Creating Account...",
			Links: []view.Link{
				{Prefix: "Already have an account?", Label: "Sign In", Href: "/login"},
			},
		},
		sanitize: func(in forms.Registration) forms.Registration {
			in.Name = sanitizeText(in.Name)
			in.Email = sanitizeText(in.Email)
			return in
		},
	}

	h.recovery = &formHandler[forms.Recovery]{
		runner: cfg.Recovery,
		view:   cfg.View,
		meta: pageMeta{
			Title:             "Forgot Password?",
			Description:       "No worries, we'll send you reset instructions.",
			Action:            "/forgot-password",
			SubmitLabel:       "Send Reset Link",
			SubmittingLabel:   "Sending...",
			Links:             []view.Link{{Label: "Back to Login", Href: "/login"}},
			HideFormOnSuccess: true,
		},
		sanitize: func(in forms.Recovery) forms.Recovery {
			in.Email = sanitizeText(in.Email)
			return in
		},
	}

	return h
}

// ShowLogin отрисовывает страницу входа.
func (h *AccountHandlers) ShowLogin(c fiber.Ctx) error { return h.login.Show(c) }

// SubmitLogin обрабатывает вход.
func (h *AccountHandlers) SubmitLogin(c fiber.Ctx) error { return h.login.Submit(c) }

// ShowRegister отрисовывает страницу регистрации.
func (h *AccountHandlers) ShowRegister(c fiber.Ctx) error { return h.register.Show(c) }

// SubmitRegister обрабатывает регистрацию.
func (h *AccountHandlers) SubmitRegister(c fiber.Ctx) error { return h.register.Submit(c) }

// ShowRecovery отрисовывает страницу восстановления пароля.
func (h *AccountHandlers) ShowRecovery(c fiber.Ctx) error { return h.recovery.Show(c) }

// SubmitRecovery обрабатывает запрос сброса пароля.
func (h *AccountHandlers) SubmitRecovery(c fiber.Ctx) error { return h.recovery.Submit(c) }

// Logout отзывает сессию и возвращает на страницу входа.
func (h *AccountHandlers) Logout(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	log := logger.Log(requestCtx).With(zap.String("method", "Logout"))

	if sess := middleware.Session(c); sess != nil {
		if err := h.revocations.Revoke(requestCtx, sess.ID, sess.TTL(time.Now())); err != nil {
			log.Error(requestCtx, ErrRevokeSession, zap.Error(err))
			return fmt.Errorf("%s: %w", ErrRevokeSession, err)
		}
		log.Info(requestCtx, LogUserLogout, zap.String("session_id", sess.ID))
	}

	middleware.ClearSessionCookie(c)
	return c.Redirect().Status(fiber.StatusSeeOther).To("/login")
}

// signIn выпускает сессию после успешного входа и перенаправляет на панель.
// Сессия формы удаляется до выпуска cookie, поэтому ее id нельзя использовать
// повторно. Повторная отправка завершенной формы входа начинает вход заново.
func (h *AccountHandlers) signIn(c fiber.Ctx, res *workflow.Result[forms.Login]) (bool, error) {
	requestCtx := middleware.RequestContext(c)
	log := logger.Log(requestCtx).With(zap.String("method", "signIn"))

	h.discard(requestCtx, res.Session.ID)

	if res.Replayed {
		log.Warn(requestCtx, LogLoginReplayed, zap.String("form_session", res.Session.ID))
		return true, c.Redirect().Status(fiber.StatusSeeOther).To(guard.RouteLogin)
	}

	out := res.Session.Outcome
	if out == nil || out.Subject == "" {
		return true, fmt.Errorf("%s: %w", ErrResolveIdentity, errNoSubject)
	}

	identity, err := h.identities.ResolveIdentity(requestCtx, out.Subject)
	if err != nil {
		return true, fmt.Errorf("%s: %w", ErrResolveIdentity, err)
	}

	token, sess, err := h.tokens.Issue(requestCtx, *identity, res.Values.RememberMe)
	if err != nil {
		return true, fmt.Errorf("%s: %w", ErrIssueSession, err)
	}

	middleware.SetSessionCookie(c, token, sess, h.cookieSecure)

	log.Info(requestCtx, LogUserSignedIn, zap.String("user_id", sess.UserID), zap.Bool("remember", sess.Remember))

	target := out.Redirect
	if target == "" {
		target = guard.RouteDashboard
	}
	return true, c.Redirect().Status(fiber.StatusSeeOther).To(target)
}

func (h *AccountHandlers) discard(ctx context.Context, id string) {
	if err := h.login.runner.Discard(ctx, id); err != nil {
		logger.Log(ctx).Warn(ctx, ErrDiscardForm, zap.Error(err))
	}
}
