package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"acmeshell/internal/shell/domain/session"
	"acmeshell/internal/shell/ports/services"
	"acmeshell/internal/shell/ports/store"
	"acmeshell/pkg/logger"
)

// CookieSession - имя cookie с токеном сессии.
const CookieSession = "acme_session"

// Константы для логирования.
const (
	LogSessionRejected  = "session cookie rejected"
	LogSessionRevoked   = "revoked session presented"
	LogSessionRecovered = "session restored from cookie"
	ErrCheckRevocation  = "failed to check session revocation"
)

// NewSessionMiddleware разбирает cookie сессии и кладет сессию в Locals.
// Недействительная или отозванная cookie удаляется.
func NewSessionMiddleware(tokens services.TokenService, revocations store.RevocationStore) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		raw := ctx.Cookies(CookieSession)
		if raw == "" {
			return ctx.Next()
		}

		requestCtx := RequestContext(ctx)
		log := logger.Log(requestCtx).With(zap.String("middleware", "session"))

		sess, err := tokens.Parse(requestCtx, raw)
		if err != nil {
			log.Debug(requestCtx, LogSessionRejected, zap.Error(err))
			ClearSessionCookie(ctx)
			return ctx.Next()
		}

		revoked, err := revocations.IsRevoked(requestCtx, sess.ID)
		if err != nil {
			log.Error(requestCtx, ErrCheckRevocation, zap.Error(err))
			return ctx.Next()
		}
		if revoked {
			log.Debug(requestCtx, LogSessionRevoked, zap.String("session_id", sess.ID))
			ClearSessionCookie(ctx)
			return ctx.Next()
		}

		log.Debug(requestCtx, LogSessionRecovered, zap.String("session_id", sess.ID))
		ctx.Locals(LocalSession, sess)
		return ctx.Next()
	}
}

// SetSessionCookie записывает cookie сессии. Постоянная cookie выдается только
// для сессии с флагом Remember.
func SetSessionCookie(ctx fiber.Ctx, token string, sess *session.Session, secure bool) {
	cookie := &fiber.Cookie{
		Name:     CookieSession,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if sess.Remember {
		cookie.MaxAge = int(sess.TTL(time.Now()).Seconds())
	}
	ctx.Cookie(cookie)
}

// ClearSessionCookie удаляет cookie сессии.
func ClearSessionCookie(ctx fiber.Ctx) {
	ctx.Cookie(&fiber.Cookie{
		Name:     CookieSession,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}
