package pages

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"acmeshell/internal/shell/app/http/middleware"
	"acmeshell/internal/shell/app/http/view"
	"acmeshell/pkg/logger"
)

// Имя для приветствия, если пользователь не вошел (guard выключен).
const guestName = "User"

// DashboardHandler отрисовывает панель управления.
type DashboardHandler struct {
	view *view.Renderer
}

// NewDashboardHandler создает обработчик панели.
func NewDashboardHandler(r *view.Renderer) *DashboardHandler {
	return &DashboardHandler{view: r}
}

// Show отрисовывает панель с именем текущего пользователя.
func (h *DashboardHandler) Show(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)

	user := guestName
	if sess := middleware.Session(c); sess != nil {
		user = sess.DisplayName()
	}
	logger.Log(requestCtx).Debug(requestCtx, LogPageLoaded, zap.String("page", "dashboard"))

	nav := h.view.Navigation()
	return renderHTML(c, h.view, fiber.StatusOK, view.TemplateDashboard, map[string]any{
		"nav":      nav,
		"activity": nav.Activity,
		"user":     user,
		"path":     c.Path(),
		"query":    sanitizeText(c.Query("q")),
	})
}
