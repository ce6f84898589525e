// Package http собирает HTTP сервер оболочки.
package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"

	"acmeshell/internal/shell/app/http/middleware"
	"acmeshell/internal/shell/app/http/pages"
	"acmeshell/internal/shell/app/http/view"
	"acmeshell/internal/shell/app/workflow"
	"acmeshell/internal/shell/domain/forms"
	"acmeshell/internal/shell/ports/services"
	"acmeshell/internal/shell/ports/store"
)

// ErrCreateRenderer - ошибка создания рендерера шаблонов.
const ErrCreateRenderer = "failed to create page renderer"

// Route - строка таблицы маршрутов.
type Route struct {
	Method      string
	Path        string
	Description string
}

// RouteTable возвращает маршруты сервера в порядке регистрации.
func RouteTable() []Route {
	return []Route{
		{fiber.MethodGet, "/", "redirect to /login"},
		{fiber.MethodGet, "/login", "login page"},
		{fiber.MethodPost, "/login", "submit login form"},
		{fiber.MethodGet, "/register", "registration page"},
		{fiber.MethodPost, "/register", "submit registration form"},
		{fiber.MethodGet, "/forgot-password", "password recovery page"},
		{fiber.MethodPost, "/forgot-password", "submit password recovery form"},
		{fiber.MethodGet, "/dashboard", "dashboard (requires sign in)"},
		{fiber.MethodPost, "/logout", "sign out"},
		{fiber.MethodGet, "/healthz", "liveness and dependency checks"},
		{"*", "*", "not found page"},
	}
}

// RateLimits - лимиты отправки форм за окно Window.
type RateLimits struct {
	Login    int
	Register int
	Recovery int
	Window   time.Duration
}

// Options - параметры сервера.
type Options struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	SubmissionTimeout time.Duration
	RateLimits        RateLimits
	GuardEnabled      bool
	CookieSecure      bool
}

// Dependencies - сервисы и хранилища, нужные страницам.
type Dependencies struct {
	Accounts          services.AccountService
	Identities        services.IdentityResolver
	Tokens            services.TokenService
	Revocations       store.RevocationStore
	LoginForms        store.FormStore[forms.Login]
	RegistrationForms store.FormStore[forms.Registration]
	RecoveryForms     store.FormStore[forms.Recovery]
	HealthChecks      map[string]pages.HealthCheck
	Observer          workflow.Observer
}

// New создает fiber.App с обработчиком ошибок и всеми маршрутами.
func New(opts Options, deps Dependencies) (*fiber.App, error) {
	renderer, err := view.New()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrCreateRenderer, err)
	}

	system := pages.NewSystemHandlers(renderer, deps.HealthChecks)

	app := fiber.New(fiber.Config{
		AppName:      "acmeshell",
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		ErrorHandler: system.ErrorHandler,
	})

	SetupRouter(app, renderer, system, opts, deps)
	return app, nil
}

// SetupRouter настраивает маршрутизацию для HTTP сервера.
func SetupRouter(app *fiber.App, renderer *view.Renderer, system *pages.SystemHandlers, opts Options, deps Dependencies) {
	wcfg := workflow.Config{Timeout: opts.SubmissionTimeout, Observer: deps.Observer}

	account := pages.NewAccountHandlers(pages.AccountConfig{
		View: renderer,
		Login: workflow.NewRunner(forms.LoginSchema, deps.LoginForms,
			deps.Accounts.SignIn, wcfg),
		Registration: workflow.NewRunner(forms.RegistrationSchema, deps.RegistrationForms,
			deps.Accounts.Register, wcfg),
		Recovery: workflow.NewRunner(forms.RecoverySchema, deps.RecoveryForms,
			deps.Accounts.RequestPasswordReset, wcfg),
		Identities:   deps.Identities,
		Tokens:       deps.Tokens,
		Revocations:  deps.Revocations,
		CookieSecure: opts.CookieSecure,
	})
	dashboard := pages.NewDashboardHandler(renderer)

	limits := opts.RateLimits
	loginLimit := middleware.NewRateLimitMiddleware(middleware.NewRateLimiter(limits.Login, limits.Window))
	registerLimit := middleware.NewRateLimitMiddleware(middleware.NewRateLimiter(limits.Register, limits.Window))
	recoveryLimit := middleware.NewRateLimitMiddleware(middleware.NewRateLimiter(limits.Recovery, limits.Window))

	// Middleware для всех запросов.
	app.Use(middleware.NewRequestIDMiddleware())
	app.Use(middleware.NewLoggerMiddleware())
	app.Use(middleware.NewRecoveryMiddleware())
	app.Use(middleware.NewSessionMiddleware(deps.Tokens, deps.Revocations))
	app.Use(middleware.NewGuardMiddleware(opts.GuardEnabled))

	app.Get("/", func(c fiber.Ctx) error {
		return c.Redirect().Status(fiber.StatusFound).To("/login")
	})

	app.Get("/login", account.ShowLogin)
	app.Post("/login", loginLimit, account.SubmitLogin)
	app.Get("/register", account.ShowRegister)
	app.Post("/register", registerLimit, account.SubmitRegister)
	app.Get("/forgot-password", account.ShowRecovery)
	app.Post("/forgot-password", recoveryLimit, account.SubmitRecovery)

	app.Get("/dashboard", dashboard.Show)
	app.Post("/logout", account.Logout)

	app.Get("/healthz", system.Health)

	// Обработчик для несуществующих маршрутов.
	app.Use(system.NotFound)
}
