// Package middleware содержит промежуточное ПО для HTTP обработчиков.
package middleware

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"acmeshell/internal/shell/domain/session"
	"acmeshell/pkg/logger"
)

// Ключи Locals.
const (
	LocalRequestID = "requestID"
	LocalSession   = "session"
)

// HeaderRequestID - заголовок с идентификатором запроса.
const HeaderRequestID = "X-Request-ID"

// RequestContext возвращает контекст запроса с идентификатором запроса.
func RequestContext(c fiber.Ctx) context.Context {
	var ctx context.Context = c.Context()
	id, _ := c.Locals(LocalRequestID).(string)
	return logger.NewRequestIDContext(ctx, id)
}

// Session возвращает сессию пользователя или nil, если пользователь не вошел.
func Session(c fiber.Ctx) *session.Session {
	sess, _ := c.Locals(LocalSession).(*session.Session)
	return sess
}
