package middleware

import (
	"github.com/gofiber/fiber/v3"

	"acmeshell/pkg/logger"
)

const maxRequestIDLength = 128

// NewRequestIDMiddleware назначает запросу идентификатор. Идентификатор из
// заголовка X-Request-ID используется, если он есть.
func NewRequestIDMiddleware() fiber.Handler {
	return func(ctx fiber.Ctx) error {
		id := ctx.Get(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLength {
			id = logger.GenerateRequestID()
		}

		ctx.Locals(LocalRequestID, id)
		ctx.Set(HeaderRequestID, id)

		return ctx.Next()
	}
}
