package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"acmeshell/internal/shell/domain/services"
	"acmeshell/internal/shell/domain/session"
	svc "acmeshell/internal/shell/ports/services"
	"acmeshell/pkg/logger"
)

// Константы для работы с JWT.
const (
	methodIssue       = "Issue"
	methodParse       = "Parse"
	msgIssuingToken   = "issuing session token"
	msgTokenIssued    = "session token issued"
	msgTokenValidated = "session token validated"
	msgTokenExpired   = "session token has expired"
	msgEmptySecret    = "empty secret key provided"
	//nolint:gosec
	errSigningToken = "error signing token"
	//nolint:gosec
	errParsingToken       = "error parsing token"
	errCtxGeneratingToken = "generating token"
	errCtxValidatingToken = "validating token"
)

// ErrInvalidAlgorithm представляет ошибку неверного алгоритма подписи.
var ErrInvalidAlgorithm = errors.New("invalid signing algorithm")

// Claims используется для адаптации между сессией и библиотекой JWT.
type Claims struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Remember bool   `json:"remember,omitempty"`
	jwt.RegisteredClaims
}

// ServiceJWT выпускает сессионные токены, подписанные HS256.
type ServiceJWT struct {
	config services.TokenConfig
	now    func() time.Time
}

// NewJWT создает новый экземпляр сервиса JWT.
func NewJWT(secretKey string, ttl, rememberTTL time.Duration) svc.TokenService {
	return NewJWTWithClock(secretKey, ttl, rememberTTL, time.Now)
}

// NewJWTWithClock создает сервис JWT с заданным источником времени.
func NewJWTWithClock(secretKey string, ttl, rememberTTL time.Duration, now func() time.Time) svc.TokenService {
	return &ServiceJWT{
		config: services.TokenConfig{
			SecretKey:   []byte(secretKey),
			TTL:         ttl,
			RememberTTL: rememberTTL,
		},
		now: now,
	}
}

// Issue выпускает токен для пользователя. remember продлевает срок жизни.
func (s *ServiceJWT) Issue(ctx context.Context, id session.Identity, remember bool) (string, *session.Session, error) {
	log := logger.Log(ctx).With(zap.String("method", methodIssue), zap.String("userID", id.UserID))
	log.Debug(ctx, msgIssuingToken)

	if len(s.config.SecretKey) == 0 {
		log.Error(ctx, msgEmptySecret)
		return "", nil, fmt.Errorf("%s: %w: empty secret key", errCtxGeneratingToken, services.ErrGeneratingToken)
	}

	ttl := s.config.TTL
	if remember {
		ttl = s.config.RememberTTL
	}

	now := s.now().Truncate(time.Second)
	sess := &session.Session{
		ID:        uuid.NewString(),
		UserID:    id.UserID,
		Email:     id.Email,
		Name:      id.Name,
		Remember:  remember,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email:    sess.Email,
		Name:     sess.Name,
		Remember: sess.Remember,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   sess.UserID,
			IssuedAt:  jwt.NewNumericDate(sess.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	})

	signed, err := token.SignedString(s.config.SecretKey)
	if err != nil {
		log.Error(ctx, errSigningToken, zap.Error(err))
		return "", nil, fmt.Errorf("%s: %w: %w", errCtxGeneratingToken, services.ErrGeneratingToken, err)
	}

	log.Debug(ctx, msgTokenIssued, zap.Time("expiresAt", sess.ExpiresAt))
	return signed, sess, nil
}

// Parse проверяет токен и восстанавливает сессию.
func (s *ServiceJWT) Parse(ctx context.Context, tokenString string) (*session.Session, error) {
	log := logger.Log(ctx).With(zap.String("method", methodParse))

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAlgorithm, token.Header["alg"])
		}
		return s.config.SecretKey, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug(ctx, msgTokenExpired)
			return nil, fmt.Errorf("%s: %w", errCtxValidatingToken, services.ErrExpiredSessionToken)
		}
		log.Debug(ctx, errParsingToken, zap.Error(err))
		return nil, fmt.Errorf("%s: %w: %w", errCtxValidatingToken, services.ErrInvalidSessionToken, err)
	}

	if !token.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, fmt.Errorf("%s: %w", errCtxValidatingToken, services.ErrInvalidSessionToken)
	}

	sess := &session.Session{
		ID:       claims.ID,
		UserID:   claims.Subject,
		Email:    claims.Email,
		Name:     claims.Name,
		Remember: claims.Remember,
	}
	if claims.IssuedAt != nil {
		sess.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}

	log.Debug(ctx, msgTokenValidated, zap.String("userID", sess.UserID))
	return sess, nil
}
