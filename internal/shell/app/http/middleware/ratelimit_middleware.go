package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"acmeshell/pkg/logger"
)

// Константы для логирования.
const (
	LogRateLimited  = "submission rate limit exceeded"
	MsgTooManyTries = "Too many attempts. Please wait a moment and try again."
)

const (
	maxTrackedIPs    = 10000
	headerRetryAfter = "Retry-After"
)

// RateLimiter ограничивает число отправок формы с одного адреса.
type RateLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	window   time.Duration
	visitors map[string]*visitor
	// maxVisitors - жесткий предел числа отслеживаемых адресов.
	maxVisitors int
	now         func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter разрешает не более perWindow отправок за window с одного адреса.
func NewRateLimiter(perWindow int, window time.Duration) *RateLimiter {
	return newRateLimiter(perWindow, window, time.Now)
}

func newRateLimiter(perWindow int, window time.Duration, now func() time.Time) *RateLimiter {
	if perWindow <= 0 {
		perWindow = 1
	}
	return &RateLimiter{
		limit:       rate.Every(window / time.Duration(perWindow)),
		burst:       perWindow,
		window:      window,
		visitors:    make(map[string]*visitor),
		maxVisitors: maxTrackedIPs,
		now:         now,
	}
}

// Allow сообщает, можно ли принять отправку с адреса key.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[key]
	if !ok {
		if len(l.visitors) >= l.maxVisitors {
			l.evict(now)
		}
		if len(l.visitors) >= l.maxVisitors {
			l.evictOldest()
		}
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// evict удаляет адреса, не появлявшиеся дольше окна.
func (l *RateLimiter) evict(now time.Time) {
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.window {
			delete(l.visitors, key)
		}
	}
}

// evictOldest удаляет адрес, который дольше всех не появлялся.
func (l *RateLimiter) evictOldest() {
	var (
		oldestKey string
		oldest    time.Time
		found     bool
	)
	for key, v := range l.visitors {
		if !found || v.lastSeen.Before(oldest) {
			oldestKey, oldest, found = key, v.lastSeen, true
		}
	}
	delete(l.visitors, oldestKey)
}

// NewRateLimitMiddleware отклоняет POST-запросы сверх лимита кодом 429.
func NewRateLimitMiddleware(limiter *RateLimiter) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		if ctx.Method() != fiber.MethodPost {
			return ctx.Next()
		}

		if limiter.Allow(ctx.IP()) {
			return ctx.Next()
		}

		requestCtx := RequestContext(ctx)
		logger.Log(requestCtx).Warn(requestCtx, LogRateLimited,
			zap.String("path", ctx.Path()), zap.String("ip", ctx.IP()))

		ctx.Set(headerRetryAfter, retryAfter(limiter.window, limiter.burst))
		return fiber.NewError(fiber.StatusTooManyRequests, MsgTooManyTries)
	}
}

func retryAfter(window time.Duration, burst int) string {
	secs := int((window / time.Duration(burst)).Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
