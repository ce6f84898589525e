package pages

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"acmeshell/internal/shell/app/http/middleware"
	"acmeshell/internal/shell/app/http/view"
	"acmeshell/pkg/logger"
)

// Константы для логирования.
const (
	LogHealthCheckFailed = "health check failed"
	LogRenderErrorPage   = "failed to render error page"

	MsgInternalError = "Something went wrong on our side. Please try again later."
)

const healthTimeout = 2 * time.Second

// HealthCheck проверяет доступность зависимости.
type HealthCheck func(ctx context.Context) error

// SystemHandlers обслуживает служебные страницы.
type SystemHandlers struct {
	view   *view.Renderer
	checks map[string]HealthCheck
}

// NewSystemHandlers создает обработчики служебных страниц.
func NewSystemHandlers(r *view.Renderer, checks map[string]HealthCheck) *SystemHandlers {
	return &SystemHandlers{view: r, checks: checks}
}

// Health отвечает JSON с состоянием зависимостей.
func (h *SystemHandlers) Health(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	ctx, cancel := context.WithTimeout(requestCtx, healthTimeout)
	defer cancel()

	status := fiber.StatusOK
	result := fiber.Map{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			logger.Log(requestCtx).Warn(requestCtx, LogHealthCheckFailed, zap.String("check", name), zap.Error(err))
			result[name] = "down"
			status = fiber.StatusServiceUnavailable
			continue
		}
		result[name] = "up"
	}

	state := "ok"
	if status != fiber.StatusOK {
		state = "degraded"
	}
	return c.Status(status).JSON(fiber.Map{"status": state, "checks": result})
}

// NotFound отрисовывает страницу 404.
func (h *SystemHandlers) NotFound(c fiber.Ctx) error {
	return renderHTML(c, h.view, fiber.StatusNotFound, view.TemplateNotFound, map[string]any{
		"path": c.Path(),
	})
}

// ErrorHandler отрисовывает страницу ошибки. Код берется из *fiber.Error,
// остальные ошибки дают 500 без подробностей.
func (h *SystemHandlers) ErrorHandler(c fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := MsgInternalError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
		if status != fiber.StatusInternalServerError {
			message = fe.Message
		}
	}
	if status == fiber.StatusNotFound {
		return h.NotFound(c)
	}

	if renderErr := renderHTML(c, h.view, status, view.TemplateError, map[string]any{
		"status":  status,
		"message": message,
	}); renderErr != nil {
		requestCtx := middleware.RequestContext(c)
		logger.Log(requestCtx).Error(requestCtx, LogRenderErrorPage, zap.Error(renderErr))
		return c.Status(status).SendString(message)
	}
	return nil
}
