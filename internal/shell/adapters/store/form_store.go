// Package store содержит хранилища форм и сессий поверх кэша.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"acmeshell/internal/shell/domain/form"
	"acmeshell/internal/shell/ports/cache"
	"acmeshell/internal/shell/ports/store"
	"acmeshell/pkg/logger"
)

// Константы для логирования.
const (
	LogMethodLoad = "load"
	LogMethodSave = "save"
	LogMethodLock = "lock"

	ErrLoadFormSession   = "failed to load form session"
	ErrDecodeFormSession = "failed to decode form session"
	ErrEncodeFormSession = "failed to encode form session"
	ErrSaveFormSession   = "failed to save form session"
	ErrDeleteFormSession = "failed to delete form session"
	ErrLockFormSession   = "failed to lock form session"
	ErrUnlockFormSession = "failed to unlock form session"

	formKeyPrefix = "form:"
	lockKeyPrefix = "form-lock:"
)

// FormStore хранит сессии форм страницы в кэше в виде JSON.
type FormStore[T any] struct {
	cache cache.Cache
	page  string
	ttl   time.Duration
}

// NewFormStore создает хранилище сессий формы для страницы.
func NewFormStore[T any](c cache.Cache, page string, ttl time.Duration) store.FormStore[T] {
	return &FormStore[T]{cache: c, page: page, ttl: ttl}
}

// Load загружает сессию формы по идентификатору.
func (s *FormStore[T]) Load(ctx context.Context, id string) (*form.Session[T], error) {
	log := logger.Log(ctx).With(zap.String("method", LogMethodLoad), zap.String("page", s.page))

	if id == "" {
		return nil, store.ErrFormSessionNotFound
	}

	raw, err := s.cache.Get(ctx, s.key(id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrLoadFormSession, err)
	}
	if raw == "" {
		return nil, store.ErrFormSessionNotFound
	}

	var sess form.Session[T]
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		log.Error(ctx, ErrDecodeFormSession, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrDecodeFormSession, err)
	}
	if sess.Page != s.page {
		return nil, store.ErrFormSessionNotFound
	}
	if sess.Errors == nil {
		sess.Errors = form.Errors{}
	}

	return &sess, nil
}

// Save сохраняет сессию формы, продлевая время жизни.
func (s *FormStore[T]) Save(ctx context.Context, sess *form.Session[T]) error {
	log := logger.Log(ctx).With(zap.String("method", LogMethodSave), zap.String("page", s.page))

	raw, err := json.Marshal(sess)
	if err != nil {
		log.Error(ctx, ErrEncodeFormSession, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrEncodeFormSession, err)
	}

	if err := s.cache.Set(ctx, s.key(sess.ID), string(raw), s.ttl); err != nil {
		return fmt.Errorf("%s: %w", ErrSaveFormSession, err)
	}

	return nil
}

// Delete удаляет сессию формы.
func (s *FormStore[T]) Delete(ctx context.Context, id string) error {
	if err := s.cache.Delete(ctx, s.key(id)); err != nil {
		return fmt.Errorf("%s: %w", ErrDeleteFormSession, err)
	}
	return nil
}

// Lock захватывает отправку формы.
func (s *FormStore[T]) Lock(ctx context.Context, id string, ttl time.Duration) error {
	log := logger.Log(ctx).With(zap.String("method", LogMethodLock), zap.String("page", s.page))

	ok, err := s.cache.SetNX(ctx, s.lockKey(id), "1", ttl)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrLockFormSession, err)
	}
	if !ok {
		log.Debug(ctx, store.ErrFormSessionLocked.Error())
		return store.ErrFormSessionLocked
	}

	return nil
}

// Unlock освобождает отправку формы.
func (s *FormStore[T]) Unlock(ctx context.Context, id string) error {
	if err := s.cache.Delete(ctx, s.lockKey(id)); err != nil {
		return fmt.Errorf("%s: %w", ErrUnlockFormSession, err)
	}
	return nil
}

func (s *FormStore[T]) key(id string) string {
	return formKeyPrefix + s.page + ":" + id
}

func (s *FormStore[T]) lockKey(id string) string {
	return lockKeyPrefix + s.page + ":" + id
}
