package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"acmeshell/pkg/logger"
)

// LogServerPanic - сообщение о перехваченной панике.
const LogServerPanic = "server panic"

// NewRecoveryMiddleware перехватывает панику обработчика и превращает ее в
// ошибку 500, которую отрисовывает обработчик ошибок приложения.
func NewRecoveryMiddleware() fiber.Handler {
	return func(ctx fiber.Ctx) (err error) {
		requestCtx := RequestContext(ctx)

		defer func() {
			if r := recover(); r != nil {
				logger.Log(requestCtx).Error(requestCtx, LogServerPanic,
					zap.String("error", fmt.Sprintf("%v", r)),
					zap.String("stack", string(debug.Stack())),
				)
				err = fiber.ErrInternalServerError
			}
		}()

		return ctx.Next()
	}
}
