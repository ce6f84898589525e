package workflow_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"acmeshell/internal/shell/app/workflow"
	"acmeshell/internal/shell/domain/form"
	"acmeshell/internal/shell/domain/forms"
	"acmeshell/internal/shell/domain/services"
	"acmeshell/internal/shell/ports/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memStore[T any] struct {
	mu       sync.Mutex
	sessions map[string]form.Session[T]
	locks    map[string]bool
	// beforeLock вызывается один раз перед следующим Lock.
	beforeLock func()
}

func newMemStore[T any]() *memStore[T] {
	return &memStore[T]{sessions: map[string]form.Session[T]{}, locks: map[string]bool{}}
}

func (s *memStore[T]) Load(_ context.Context, id string) (*form.Session[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, store.ErrFormSessionNotFound
	}
	sess.Errors = sess.Errors.Clone()
	return &sess, nil
}

func (s *memStore[T]) Save(ctx context.Context, sess *form.Session[T]) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sess
	cp.Errors = sess.Errors.Clone()
	s.sessions[sess.ID] = cp
	return nil
}

func (s *memStore[T]) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *memStore[T]) Lock(_ context.Context, id string, _ time.Duration) error {
	s.mu.Lock()
	hook := s.beforeLock
	s.beforeLock = nil
	s.mu.Unlock()
	if hook != nil {
		hook()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks[id] {
		return store.ErrFormSessionLocked
	}
	s.locks[id] = true
	return nil
}

func (s *memStore[T]) Unlock(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, id)
	return nil
}

func (s *memStore[T]) locked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locks[id]
}

type countingSubmitter[T any] struct {
	calls atomic.Int32
	fn    workflow.Submitter[T]
}

func (c *countingSubmitter[T]) submit(ctx context.Context, values T) (*form.Outcome, error) {
	c.calls.Add(1)
	return c.fn(ctx, values)
}

func newLoginRunner(
	t *testing.T,
	fn workflow.Submitter[forms.Login],
	cfg workflow.Config,
) (*workflow.Runner[forms.Login], *memStore[forms.Login], *countingSubmitter[forms.Login]) {
	t.Helper()
	st := newMemStore[forms.Login]()
	sub := &countingSubmitter[forms.Login]{fn: fn}
	return workflow.NewRunner(forms.LoginSchema, st, sub.submit, cfg), st, sub
}

func startSession(t *testing.T, r *workflow.Runner[forms.Login]) string {
	t.Helper()
	sess, err := r.Start(context.Background())
	require.NoError(t, err)
	return sess.ID
}

func TestSubmitInvalidDoesNotCallCollaborator(t *testing.T) {
	r, _, sub := newLoginRunner(t, func(context.Context, forms.Login) (*form.Outcome, error) {
		return form.Success(""), nil
	}, workflow.Config{})
	id := startSession(t, r)

	res, err := r.Submit(context.Background(), id, forms.Login{})

	require.NoError(t, err)
	assert.Equal(t, workflow.StateInvalid, res.State)
	assert.Equal(t, int32(0), sub.calls.Load())
	want := form.Errors{"email": forms.MsgLoginEmail, "password": forms.MsgLoginPassword}
	if diff := cmp.Diff(want, res.Session.Errors); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitRegistrationMismatchDoesNotCallCollaborator(t *testing.T) {
	st := newMemStore[forms.Registration]()
	var calls atomic.Int32
	r := workflow.NewRunner(forms.RegistrationSchema, st,
		func(context.Context, forms.Registration) (*form.Outcome, error) {
			calls.Add(1)
			return form.Success(""), nil
		}, workflow.Config{})

	res, err := r.Submit(context.Background(), "", forms.Registration{
		Name:            "Jane",
		Email:           "jane@example.com",
		Password:        "password123",
		ConfirmPassword: "password124",
	})

	require.NoError(t, err)
	assert.Equal(t, workflow.StateInvalid, res.State)
	assert.Equal(t, forms.MsgPasswordsDoNotMatch, res.Session.Errors.Get("confirmPassword"))
	assert.Equal(t, int32(0), calls.Load())
}

func TestSubmitSuccess(t *testing.T) {
	r, st, sub := newLoginRunner(t, func(context.Context, forms.Login) (*form.Outcome, error) {
		return form.Success("").WithRedirect(services.RedirectAfterLogin, 0), nil
	}, workflow.Config{})
	id := startSession(t, r)
	in := forms.Login{Email: "user@example.com", Password: "password123", RememberMe: true}

	res, err := r.Submit(context.Background(), id, in)

	require.NoError(t, err)
	assert.Equal(t, workflow.StateSucceeded, res.State)
	assert.Equal(t, int32(1), sub.calls.Load())
	assert.Equal(t, in, res.Values)
	assert.False(t, res.Replayed)
	assert.True(t, res.Session.Completed)
	assert.False(t, res.Session.Submitting)
	assert.Equal(t, forms.Login{}, res.Session.Values)
	assert.Equal(t, services.RedirectAfterLogin, res.Session.Outcome.Redirect)
	assert.False(t, st.locked(id))
}

func TestSubmitFieldError(t *testing.T) {
	r, st, _ := newLoginRunner(t, func(context.Context, forms.Login) (*form.Outcome, error) {
		return form.FieldError("password", services.MsgInvalidCredentials), nil
	}, workflow.Config{})
	id := startSession(t, r)

	res, err := r.Submit(context.Background(), id, forms.Login{Email: "a@b.co", Password: "nope"})

	require.NoError(t, err)
	assert.Equal(t, workflow.StateFailed, res.State)
	assert.Equal(t, services.MsgInvalidCredentials, res.Session.Errors.Get("password"))

	stored, err := st.Load(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, stored.Submitting)
	assert.False(t, stored.Completed)
}

func TestSubmitTransportErrorBecomesBanner(t *testing.T) {
	r, _, _ := newLoginRunner(t, func(context.Context, forms.Login) (*form.Outcome, error) {
		return nil, errors.New("connection refused")
	}, workflow.Config{})

	res, err := r.Submit(context.Background(), "", forms.Login{Email: "a@b.co", Password: "x"})

	require.NoError(t, err)
	assert.Equal(t, workflow.StateFailed, res.State)
	assert.True(t, res.Session.Outcome.IsGeneralError())
	assert.Equal(t, services.MsgUnexpectedError, res.Session.Outcome.PageMessage())
}

func TestSubmitTimeoutBecomesUnavailable(t *testing.T) {
	r, _, _ := newLoginRunner(t, func(ctx context.Context, _ forms.Login) (*form.Outcome, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}, workflow.Config{Timeout: 10 * time.Millisecond})

	res, err := r.Submit(context.Background(), "", forms.Login{Email: "a@b.co", Password: "x"})

	require.NoError(t, err)
	assert.Equal(t, services.MsgServiceUnavailable, res.Session.Outcome.Message)
}

func TestSubmitRejectsConcurrentSubmission(t *testing.T) {
	r, st, sub := newLoginRunner(t, func(context.Context, forms.Login) (*form.Outcome, error) {
		return form.Success(""), nil
	}, workflow.Config{})
	id := startSession(t, r)
	require.NoError(t, st.Lock(context.Background(), id, time.Minute))

	_, err := r.Submit(context.Background(), id, forms.Login{Email: "a@b.co", Password: "x"})

	require.ErrorIs(t, err, services.ErrSubmissionInProgress)
	assert.Equal(t, int32(0), sub.calls.Load())
}

func TestSubmitCancellationClearsFlag(t *testing.T) {
	started := make(chan struct{})
	r, st, _ := newLoginRunner(t, func(ctx context.Context, _ forms.Login) (*form.Outcome, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}, workflow.Config{Timeout: time.Minute})
	id := startSession(t, r)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := r.Submit(ctx, id, forms.Login{Email: "a@b.co", Password: "x"})
		errCh <- err
	}()

	<-started
	cancel()

	err := <-errCh
	require.ErrorIs(t, err, context.Canceled)

	stored, err := st.Load(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, stored.Submitting)
	assert.False(t, st.locked(id))
}

func TestSubmitIsIdempotent(t *testing.T) {
	r, _, sub := newLoginRunner(t, func(_ context.Context, in forms.Login) (*form.Outcome, error) {
		if in.Password == "password123" {
			return form.Success(""), nil
		}
		return form.FieldError("password", services.MsgInvalidCredentials), nil
	}, workflow.Config{})
	id := startSession(t, r)
	in := forms.Login{Email: "user@example.com", Password: "wrong"}

	first, err := r.Submit(context.Background(), id, in)
	require.NoError(t, err)
	second, err := r.Submit(context.Background(), id, in)
	require.NoError(t, err)

	assert.Equal(t, first.State, second.State)
	assert.Equal(t, first.Session.Outcome, second.Session.Outcome)
	assert.Equal(t, int32(2), sub.calls.Load())
}

func TestSubmitCompletedSessionIsNotResubmitted(t *testing.T) {
	r, _, sub := newLoginRunner(t, func(context.Context, forms.Login) (*form.Outcome, error) {
		return form.Success("").WithSubject("user@example.com"), nil
	}, workflow.Config{})
	id := startSession(t, r)

	_, err := r.Submit(context.Background(), id, forms.Login{Email: "user@example.com", Password: "password123"})
	require.NoError(t, err)

	for _, in := range []forms.Login{
		{Email: "other@example.com", Password: "whatever1"},
		{},
	} {
		res, err := r.Submit(context.Background(), id, in)
		require.NoError(t, err)

		assert.Equal(t, workflow.StateSucceeded, res.State)
		assert.True(t, res.Replayed)
		assert.Equal(t, forms.Login{}, res.Values)
		assert.Equal(t, "user@example.com", res.Session.Outcome.Subject)
	}
	assert.Equal(t, int32(1), sub.calls.Load())
}

func TestSubmitReadsSessionAfterLocking(t *testing.T) {
	r, st, sub := newLoginRunner(t, func(_ context.Context, in forms.Login) (*form.Outcome, error) {
		return form.Success("").WithSubject(in.Email), nil
	}, workflow.Config{})
	id := startSession(t, r)

	var first *workflow.Result[forms.Login]
	st.beforeLock = func() {
		var err error
		first, err = r.Submit(context.Background(), id, forms.Login{Email: "user@example.com", Password: "password123"})
		require.NoError(t, err)
	}

	second, err := r.Submit(context.Background(), id, forms.Login{Email: "other@example.com", Password: "password456"})
	require.NoError(t, err)

	require.NotNil(t, first)
	assert.False(t, first.Replayed)
	assert.True(t, second.Replayed)
	assert.Equal(t, int32(1), sub.calls.Load())
	assert.Equal(t, "user@example.com", second.Session.Outcome.Subject)

	stored, err := st.Load(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, stored.Completed)
	assert.Equal(t, "user@example.com", stored.Outcome.Subject)
	assert.False(t, st.locked(id))
}

func TestObserverSeesTransitions(t *testing.T) {
	var got []workflow.State
	obs := workflow.ObserverFunc(func(_ context.Context, _ string, _, to workflow.State) {
		got = append(got, to)
	})
	r, _, _ := newLoginRunner(t, func(context.Context, forms.Login) (*form.Outcome, error) {
		return form.GeneralError("down"), nil
	}, workflow.Config{Observer: obs})

	_, err := r.Submit(context.Background(), "", forms.Login{Email: "a@b.co", Password: "x"})
	require.NoError(t, err)

	want := []workflow.State{
		workflow.StateValidating,
		workflow.StateSubmitting,
		workflow.StateFailed,
		workflow.StateIdle,
	}
	assert.Equal(t, want, got)
}
