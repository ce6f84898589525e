// Package pages содержит HTTP обработчики страниц оболочки.
package pages

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"acmeshell/internal/shell/app/http/middleware"
	"acmeshell/internal/shell/app/http/view"
	"acmeshell/internal/shell/app/workflow"
	"acmeshell/internal/shell/domain/form"
	"acmeshell/internal/shell/domain/services"
	"acmeshell/pkg/logger"
)

// Константы для логирования.
const (
	LogPageLoaded     = "page loaded"
	LogFormSubmitted  = "form submitted"
	LogSubmitRejected = "submission rejected, another one is in progress"

	ErrStartForm  = "failed to start form session"
	ErrSubmitForm = "failed to submit form"
	ErrRenderPage = "failed to render page"
	ErrBindForm   = "failed to bind form"

	MsgBadRequest = "The submitted form could not be read."
	MsgInProgress = "Your previous submission is still being processed."
)

const (
	fieldSessionID  = "session_id"
	headerRefresh   = "Refresh"
	contentTypeHTML = fiber.MIMETextHTMLCharsetUTF8
)

var textPolicy = bluemonday.StrictPolicy()

// sanitizeText удаляет разметку из пользовательского ввода.
func sanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

// pageMeta - неизменяемые тексты страницы с формой.
type pageMeta struct {
	Title           string
	Description     string
	Action          string
	SubmitLabel     string
	SubmittingLabel string
	Links           []view.Link
	// HideBannerOnFieldError скрывает баннер, если у поля есть ошибка.
	HideBannerOnFieldError string
	// HideFormOnSuccess заменяет форму сообщением об успехе.
	HideFormOnSuccess bool
}

// successHook обрабатывает успешную отправку. handled=true означает, что
// ответ уже сформирован.
type successHook[T any] func(c fiber.Ctx, res *workflow.Result[T]) (handled bool, err error)

// formHandler обслуживает GET и POST одной страницы с формой.
type formHandler[T any] struct {
	runner    *workflow.Runner[T]
	view      *view.Renderer
	meta      pageMeta
	sanitize  func(T) T
	onSuccess successHook[T]
}

// Show создает сессию формы и отрисовывает пустую форму.
func (h *formHandler[T]) Show(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)

	sess, err := h.runner.Start(requestCtx)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrStartForm, err)
	}

	logger.Log(requestCtx).Debug(requestCtx, LogPageLoaded, zap.String("page", sess.Page))
	return h.render(c, fiber.StatusOK, sess, "")
}

// Submit проверяет и отправляет форму.
func (h *formHandler[T]) Submit(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	log := logger.Log(requestCtx).With(zap.String("page", h.runner.Schema().Name()))

	var in T
	if err := c.Bind().Form(&in); err != nil {
		log.Debug(requestCtx, ErrBindForm, zap.Error(err))
		return fiber.NewError(fiber.StatusBadRequest, MsgBadRequest)
	}
	if h.sanitize != nil {
		in = h.sanitize(in)
	}
	sessionID := c.FormValue(fieldSessionID)

	res, err := h.runner.Submit(requestCtx, sessionID, in)
	if errors.Is(err, services.ErrSubmissionInProgress) {
		log.Debug(requestCtx, LogSubmitRejected)
		sess, loadErr := h.runner.Load(requestCtx, sessionID)
		if loadErr != nil {
			return fmt.Errorf("%s: %w", ErrSubmitForm, loadErr)
		}
		sess.Submitting = true
		return h.render(c, fiber.StatusConflict, sess, MsgInProgress)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", ErrSubmitForm, err)
	}

	log.Debug(requestCtx, LogFormSubmitted, zap.String("state", string(res.State)))

	if res.State == workflow.StateSucceeded && h.onSuccess != nil {
		handled, err := h.onSuccess(c, res)
		if err != nil || handled {
			return err
		}
	}

	if v, ok := refreshHeader(res.Session.Outcome); ok {
		c.Set(headerRefresh, v)
	}

	return h.render(c, fiber.StatusOK, res.Session, "")
}

// refreshHeader возвращает значение заголовка Refresh для отложенного
// перенаправления. Задержка округляется до секунды, но не меньше одной.
func refreshHeader(out *form.Outcome) (string, bool) {
	if out == nil || out.Redirect == "" || out.RedirectAfter <= 0 {
		return "", false
	}
	secs := max(int(out.RedirectAfter.Round(time.Second).Seconds()), 1)
	return strconv.Itoa(secs) + "; url=" + out.Redirect, true
}

func (h *formHandler[T]) render(c fiber.Ctx, status int, sess *form.Session[T], banner string) error {
	page := h.page(sess)
	if banner != "" {
		page.Banner = banner
		page.BannerKind = view.BannerError
	}
	return renderHTML(c, h.view, status, view.TemplateForm, page.Data())
}

// page собирает данные шаблона из сессии формы.
func (h *formHandler[T]) page(sess *form.Session[T]) view.FormPage {
	schema := h.runner.Schema()
	values := schema.Values(sess.Values)

	page := view.FormPage{
		Title:           h.meta.Title,
		Description:     h.meta.Description,
		Action:          h.meta.Action,
		SubmitLabel:     h.meta.SubmitLabel,
		SubmittingLabel: h.meta.SubmittingLabel,
		SessionID:       sess.ID,
		Submitting:      sess.Submitting,
		Disabled:        sess.Completed,
		Links:           h.meta.Links,
	}

	for _, f := range schema.Fields() {
		fv := view.FieldView{
			Name:        f.Name,
			Type:        f.Input(),
			Label:       f.Label,
			ID:          f.InputID,
			Placeholder: f.Placeholder,
			Error:       sess.Errors.Get(f.Name),
		}
		switch f.Kind {
		case form.BooleanField:
			fv.Checked = values[f.Name] == "true"
		case form.PasswordField:
		default:
			fv.Value = values[f.Name]
		}
		page.Fields = append(page.Fields, fv)
	}

	out := sess.Outcome
	switch {
	case out == nil:
	case out.IsSuccess() && h.meta.HideFormOnSuccess:
		page.HideForm = true
		page.Success = out.Message
	case out.IsSuccess():
		page.Banner = out.Message
		page.BannerKind = view.BannerSuccess
	default:
		hide := h.meta.HideBannerOnFieldError
		if hide == "" || !sess.Errors.Has(hide) {
			page.Banner = out.PageMessage()
			page.BannerKind = view.BannerError
		}
	}

	return page
}

// renderHTML отрисовывает шаблон и отправляет его с кодом status.
func renderHTML(c fiber.Ctx, r *view.Renderer, status int, name string, data map[string]any) error {
	var buf bytes.Buffer
	if err := r.Render(&buf, name, data); err != nil {
		return fmt.Errorf("%s: %w", ErrRenderPage, err)
	}
	c.Set(fiber.HeaderContentType, contentTypeHTML)
	return c.Status(status).Send(buf.Bytes())
}
