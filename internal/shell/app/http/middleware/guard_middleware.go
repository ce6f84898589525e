package middleware

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"acmeshell/internal/shell/app/guard"
	"acmeshell/pkg/logger"
)

// LogGuardRedirect - сообщение о перенаправлении guard.
const LogGuardRedirect = "route guard redirect"

// NewGuardMiddleware перенаправляет запрос согласно guard.Decide.
func NewGuardMiddleware(enabled bool) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		if !enabled {
			return ctx.Next()
		}

		decision := guard.Decide(Session(ctx), ctx.Path())
		if decision.Action != guard.Redirect {
			return ctx.Next()
		}

		requestCtx := RequestContext(ctx)
		logger.Log(requestCtx).Debug(requestCtx, LogGuardRedirect,
			zap.String("path", ctx.Path()), zap.String("target", decision.Target))

		return ctx.Redirect().Status(fiber.StatusFound).To(decision.Target)
	}
}
