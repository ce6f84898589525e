// Package workflow выполняет проверку и отправку форм.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"acmeshell/internal/shell/domain/form"
	"acmeshell/internal/shell/domain/services"
	"acmeshell/internal/shell/ports/store"
	"acmeshell/pkg/logger"
)

// State - состояние отправки формы.
type State string

// Состояния отправки.
const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateInvalid    State = "invalid"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Константы для логирования.
const (
	LogTransition       = "form state transition"
	LogSubmissionFailed = "collaborator call failed"
	LogAlreadyCompleted = "form already completed, submission ignored"

	ErrLoadSession    = "failed to load form session"
	ErrSaveSession    = "failed to save form session"
	ErrLockSession    = "failed to lock form session"
	ErrSubmission     = "submission aborted"
	errCtxStartSubmit = "starting submission"
)

const (
	defaultTimeout = 10 * time.Second
	lockMargin     = 5 * time.Second
)

// Submitter вызывает внешний сервис с проверенными значениями формы.
type Submitter[T any] func(ctx context.Context, values T) (*form.Outcome, error)

// Observer получает переходы между состояниями.
type Observer interface {
	OnTransition(ctx context.Context, page string, from, to State)
}

// ObserverFunc позволяет использовать функцию как Observer.
type ObserverFunc func(ctx context.Context, page string, from, to State)

// OnTransition вызывает f.
func (f ObserverFunc) OnTransition(ctx context.Context, page string, from, to State) {
	f(ctx, page, from, to)
}

// Config - параметры Runner.
type Config struct {
	// Timeout ограничивает вызов внешнего сервиса.
	Timeout  time.Duration
	Observer Observer
	Now      func() time.Time
}

// Result - итог одной попытки отправки.
type Result[T any] struct {
	Session *form.Session[T]
	State   State
	// Values - значения, прошедшие проверку и переданные внешнему сервису.
	// Для повторной отправки завершенной сессии остаются нулевыми.
	Values T
	// Replayed означает, что сессия уже была завершена и внешний сервис
	// не вызывался; Session.Outcome содержит прежний результат.
	Replayed bool
}

// Runner выполняет отправку форм одной страницы.
type Runner[T any] struct {
	schema   *form.Schema[T]
	store    store.FormStore[T]
	submit   Submitter[T]
	timeout  time.Duration
	observer Observer
	now      func() time.Time
}

// NewRunner создает Runner для схемы и хранилища страницы.
func NewRunner[T any](schema *form.Schema[T], st store.FormStore[T], submit Submitter[T], cfg Config) *Runner[T] {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Runner[T]{
		schema:   schema,
		store:    st,
		submit:   submit,
		timeout:  cfg.Timeout,
		observer: cfg.Observer,
		now:      cfg.Now,
	}
}

// Schema возвращает схему формы.
func (r *Runner[T]) Schema() *form.Schema[T] {
	return r.schema
}

// Start создает и сохраняет новую сессию формы.
func (r *Runner[T]) Start(ctx context.Context) (*form.Session[T], error) {
	sess := form.NewSession[T](r.schema.Name(), r.now())
	if err := r.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrSaveSession, err)
	}
	return sess, nil
}

// Load возвращает сессию формы по id или новую, если сессия не найдена.
func (r *Runner[T]) Load(ctx context.Context, id string) (*form.Session[T], error) {
	sess, err := r.store.Load(ctx, id)
	if errors.Is(err, store.ErrFormSessionNotFound) {
		return form.NewSession[T](r.schema.Name(), r.now()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrLoadSession, err)
	}
	return sess, nil
}

// Discard удаляет сессию формы.
func (r *Runner[T]) Discard(ctx context.Context, id string) error {
	return r.store.Delete(ctx, id)
}

// Submit проверяет values и, если ошибок нет, вызывает внешний сервис.
// Вся попытка выполняется под блокировкой сессии формы: вторая одновременная
// отправка получает services.ErrSubmissionInProgress, а сессия читается заново
// после захвата блокировки. Флаг Submitting снимается при любом исходе,
// включая отмену ctx.
//
// Завершенная сессия повторно не отправляется: результат имеет состояние
// StateSucceeded, Replayed=true и прежний Outcome, даже если новые values
// отличаются или не прошли бы проверку. Вызывающая сторона не должна
// использовать Values такого результата.
func (r *Runner[T]) Submit(ctx context.Context, sessionID string, values T) (*Result[T], error) {
	sess, err := r.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := r.store.Lock(ctx, sess.ID, r.timeout+lockMargin); err != nil {
		if errors.Is(err, store.ErrFormSessionLocked) {
			return nil, fmt.Errorf("%s: %w", errCtxStartSubmit, services.ErrSubmissionInProgress)
		}
		return nil, fmt.Errorf("%s: %w", ErrLockSession, err)
	}
	defer r.release(ctx, sess.ID, sess.Page)

	if sess, err = r.reload(ctx, sess); err != nil {
		return nil, err
	}

	res := &Result[T]{Session: sess, State: StateIdle}

	if sess.Completed {
		logger.Log(ctx).Debug(ctx, LogAlreadyCompleted, zap.String("page", sess.Page))
		res.State = StateSucceeded
		res.Replayed = true
		return res, nil
	}

	r.transition(ctx, sess, StateIdle, StateValidating)
	sess.SetValues(r.schema, values, r.now())

	if errs := r.schema.Validate(values); !errs.Empty() {
		sess.SetErrors(errs)
		sess.Outcome = nil
		r.transition(ctx, sess, StateValidating, StateInvalid)
		res.State = StateInvalid
		return r.finish(ctx, res)
	}
	sess.SetErrors(form.Errors{})
	res.Values = values

	sess.Submitting = true
	r.transition(ctx, sess, StateValidating, StateSubmitting)
	if err := r.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrSaveSession, err)
	}

	outcome, callErr := r.call(ctx, values)
	sess.Submitting = false

	if callErr != nil && ctx.Err() != nil {
		r.transition(ctx, sess, StateSubmitting, StateIdle)
		if err := r.store.Save(context.WithoutCancel(ctx), sess); err != nil {
			logger.Log(ctx).Warn(ctx, ErrSaveSession, zap.Error(err))
		}
		return nil, fmt.Errorf("%s: %w", ErrSubmission, callErr)
	}

	res.State = r.apply(ctx, sess, outcome, callErr)
	r.transition(ctx, sess, StateSubmitting, res.State)
	return r.finish(ctx, res)
}

// reload перечитывает сессию под блокировкой. Еще не сохраненная сессия
// возвращается как есть.
func (r *Runner[T]) reload(ctx context.Context, sess *form.Session[T]) (*form.Session[T], error) {
	fresh, err := r.store.Load(ctx, sess.ID)
	if errors.Is(err, store.ErrFormSessionNotFound) {
		return sess, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrLoadSession, err)
	}
	return fresh, nil
}

func (r *Runner[T]) call(ctx context.Context, values T) (*form.Outcome, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.submit(callCtx, values)
}

// apply записывает результат вызова в сессию и возвращает итоговое состояние.
func (r *Runner[T]) apply(ctx context.Context, sess *form.Session[T], outcome *form.Outcome, callErr error) State {
	switch {
	case callErr != nil:
		logger.Log(ctx).Warn(ctx, LogSubmissionFailed, zap.String("page", sess.Page), zap.Error(callErr))
		msg := services.MsgUnexpectedError
		if errors.Is(callErr, context.DeadlineExceeded) || errors.Is(callErr, services.ErrServiceUnavailable) {
			msg = services.MsgServiceUnavailable
		}
		outcome = form.GeneralError(msg)
	case outcome == nil:
		outcome = form.GeneralError(services.MsgUnexpectedError)
	}

	sess.Outcome = outcome

	switch {
	case outcome.IsSuccess():
		sess.ClearValues()
		sess.Completed = true
		return StateSucceeded
	case outcome.IsFieldError():
		sess.AttachFieldError(outcome.Field, outcome.Message)
	}
	return StateFailed
}

func (r *Runner[T]) finish(ctx context.Context, res *Result[T]) (*Result[T], error) {
	if err := r.store.Save(ctx, res.Session); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrSaveSession, err)
	}
	r.transition(ctx, res.Session, res.State, StateIdle)
	return res, nil
}

func (r *Runner[T]) release(ctx context.Context, id, page string) {
	if err := r.store.Unlock(context.WithoutCancel(ctx), id); err != nil {
		logger.Log(ctx).Warn(ctx, ErrLockSession, zap.String("page", page), zap.Error(err))
	}
}

func (r *Runner[T]) transition(ctx context.Context, sess *form.Session[T], from, to State) {
	logger.Log(ctx).Debug(ctx, LogTransition,
		zap.String("page", sess.Page),
		zap.String("form_session", sess.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	if r.observer != nil {
		r.observer.OnTransition(ctx, sess.Page, from, to)
	}
}
