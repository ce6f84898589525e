package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"acmeshell/internal/shell/app"
	"acmeshell/internal/shell/domain/entities"
	"acmeshell/internal/shell/domain/forms"
	"acmeshell/internal/shell/domain/services"
	"acmeshell/internal/shell/ports/events"
	"acmeshell/internal/shell/ports/mail"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*entities.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*entities.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*entities.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*entities.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

type mockTokenRepo struct{ mock.Mock }

func (m *mockTokenRepo) Store(ctx context.Context, token *entities.ResetToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockTokenRepo) FindByHash(ctx context.Context, tokenHash string) (*entities.ResetToken, error) {
	args := m.Called(ctx, tokenHash)
	if t, ok := args.Get(0).(*entities.ResetToken); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTokenRepo) MarkUsed(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockPasswordSvc struct{ mock.Mock }

func (m *mockPasswordSvc) Hash(ctx context.Context, password string) (string, error) {
	args := m.Called(ctx, password)
	return args.String(0), args.Error(1)
}

func (m *mockPasswordSvc) Verify(ctx context.Context, password, hash string) (bool, error) {
	args := m.Called(ctx, password, hash)
	return args.Bool(0), args.Error(1)
}

type mockSender struct{ mock.Mock }

func (m *mockSender) Send(ctx context.Context, msg mail.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, subject string, event events.AccountEvent) error {
	return m.Called(ctx, subject, event).Error(0)
}

func (m *mockPublisher) Close() error {
	return m.Called().Error(0)
}

type deps struct {
	users     *mockUserRepo
	tokens    *mockTokenRepo
	passwords *mockPasswordSvc
	mailer    *mockSender
	publisher *mockPublisher
}

func newDeps() deps {
	return deps{
		users:     new(mockUserRepo),
		tokens:    new(mockTokenRepo),
		passwords: new(mockPasswordSvc),
		mailer:    new(mockSender),
		publisher: new(mockPublisher),
	}
}

func (d deps) useCase() *app.AccountUseCase {
	svc := app.NewAccountUseCase(d.users, d.tokens, d.passwords, d.mailer, d.publisher, app.AccountConfig{
		PublicURL:     "https://acme.test/",
		ResetTokenTTL: time.Hour,
		RedirectDelay: 2 * time.Second,
	})
	return svc.(*app.AccountUseCase)
}

func (d deps) assertExpectations(t *testing.T) {
	t.Helper()
	d.users.AssertExpectations(t)
	d.tokens.AssertExpectations(t)
	d.passwords.AssertExpectations(t)
	d.mailer.AssertExpectations(t)
	d.publisher.AssertExpectations(t)
}

var alice = &entities.User{
	ID:           "7b0d7c1e-8a43-4c2b-9d6f-3c1d1f8e0a11",
	Name:         "Alice",
	Email:        "alice@example.com",
	PasswordHash: "hashed",
}

func TestSignInSuccess(t *testing.T) {
	d := newDeps()
	ctx := context.Background()
	d.users.On("FindByEmail", ctx, alice.Email).Return(alice, nil)
	d.passwords.On("Verify", ctx, "secret123", "hashed").Return(true, nil)
	d.publisher.On("Publish", ctx, events.SubjectSignedIn, mock.MatchedBy(func(e events.AccountEvent) bool {
		return e.UserID == alice.ID && e.Email == alice.Email
	})).Return(nil)

	out, err := d.useCase().SignIn(ctx, forms.Login{Email: alice.Email, Password: "secret123"})

	require.NoError(t, err)
	assert.True(t, out.IsSuccess())
	assert.Equal(t, services.RedirectAfterLogin, out.Redirect)
	assert.Equal(t, alice.Email, out.Subject)
	d.assertExpectations(t)
}

func TestSignInRejectsUnknownEmailAndWrongPasswordAlike(t *testing.T) {
	ctx := context.Background()

	d := newDeps()
	d.users.On("FindByEmail", ctx, "ghost@example.com").Return(nil, entities.ErrUserNotFound)
	unknown, err := d.useCase().SignIn(ctx, forms.Login{Email: "ghost@example.com", Password: "x"})
	require.NoError(t, err)

	d = newDeps()
	d.users.On("FindByEmail", ctx, alice.Email).Return(alice, nil)
	d.passwords.On("Verify", ctx, "wrong", "hashed").Return(false, nil)
	wrong, err := d.useCase().SignIn(ctx, forms.Login{Email: alice.Email, Password: "wrong"})
	require.NoError(t, err)

	assert.Equal(t, unknown, wrong)
	assert.True(t, wrong.IsFieldError())
	assert.Equal(t, "password", wrong.Field)
	assert.Equal(t, services.MsgInvalidCredentials, wrong.Message)
	d.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestSignInRepositoryFailure(t *testing.T) {
	d := newDeps()
	ctx := context.Background()
	boom := errors.New("connection reset")
	d.users.On("FindByEmail", ctx, alice.Email).Return(nil, boom)

	out, err := d.useCase().SignIn(ctx, forms.Login{Email: alice.Email, Password: "x"})

	require.ErrorIs(t, err, boom)
	assert.Nil(t, out)
}

func TestRegisterSuccess(t *testing.T) {
	d := newDeps()
	ctx := context.Background()
	in := forms.Registration{Name: "Bob", Email: "bob@example.com", Password: "longpassword", ConfirmPassword: "longpassword"}

	d.users.On("FindByEmail", ctx, in.Email).Return(nil, entities.ErrUserNotFound)
	d.passwords.On("Hash", ctx, in.Password).Return("bcrypt-hash", nil)
	d.users.On("Create", ctx, mock.MatchedBy(func(u *entities.User) bool {
		return u.ID != "" && u.Name == "Bob" && u.Email == in.Email && u.PasswordHash == "bcrypt-hash"
	})).Return(&entities.User{ID: "new-id", Name: "Bob", Email: in.Email}, nil)
	d.publisher.On("Publish", ctx, events.SubjectRegistered, mock.Anything).Return(nil)

	out, err := d.useCase().Register(ctx, in)

	require.NoError(t, err)
	assert.True(t, out.IsSuccess())
	assert.Equal(t, services.MsgRegistrationSuccess, out.Message)
	assert.Equal(t, services.RedirectAfterRegistration, out.Redirect)
	assert.Equal(t, 2*time.Second, out.RedirectAfter)
	d.assertExpectations(t)
}

func TestRegisterEmailTaken(t *testing.T) {
	ctx := context.Background()
	in := forms.Registration{Name: "Alice", Email: alice.Email, Password: "longpassword"}

	t.Run("found before insert", func(t *testing.T) {
		d := newDeps()
		d.users.On("FindByEmail", ctx, in.Email).Return(alice, nil)

		out, err := d.useCase().Register(ctx, in)

		require.NoError(t, err)
		assert.True(t, out.IsFieldError())
		assert.Equal(t, "email", out.Field)
		assert.Equal(t, services.MsgEmailTaken, out.Banner)
		d.passwords.AssertNotCalled(t, "Hash", mock.Anything, mock.Anything)
	})

	t.Run("unique violation on insert", func(t *testing.T) {
		d := newDeps()
		d.users.On("FindByEmail", ctx, in.Email).Return(nil, entities.ErrUserNotFound)
		d.passwords.On("Hash", ctx, in.Password).Return("h", nil)
		d.users.On("Create", ctx, mock.Anything).Return(nil, services.ErrEmailTaken)

		out, err := d.useCase().Register(ctx, in)

		require.NoError(t, err)
		assert.True(t, out.IsFieldError())
		assert.Equal(t, "email", out.Field)
	})
}

func TestRegisterPublishFailureIsNotFatal(t *testing.T) {
	d := newDeps()
	ctx := context.Background()
	in := forms.Registration{Name: "Bob", Email: "bob@example.com", Password: "longpassword"}

	d.users.On("FindByEmail", ctx, in.Email).Return(nil, entities.ErrUserNotFound)
	d.passwords.On("Hash", ctx, in.Password).Return("h", nil)
	d.users.On("Create", ctx, mock.Anything).Return(&entities.User{ID: "id", Email: in.Email}, nil)
	d.publisher.On("Publish", ctx, events.SubjectRegistered, mock.Anything).Return(errors.New("nats down"))

	out, err := d.useCase().Register(ctx, in)

	require.NoError(t, err)
	assert.True(t, out.IsSuccess())
}

func TestRequestPasswordResetSuccess(t *testing.T) {
	d := newDeps()
	ctx := context.Background()

	var stored *entities.ResetToken
	d.users.On("FindByEmail", ctx, alice.Email).Return(alice, nil)
	d.tokens.On("Store", ctx, mock.AnythingOfType("*entities.ResetToken")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*entities.ResetToken) }).
		Return(nil)
	d.mailer.On("Send", ctx, mock.MatchedBy(func(m mail.Message) bool {
		return m.ToAddress == alice.Email &&
			strings.Contains(m.Text, "https://acme.test/reset-password?token=")
	})).Return(nil)
	d.publisher.On("Publish", ctx, events.SubjectPasswordResetRequested, mock.Anything).Return(nil)

	out, err := d.useCase().RequestPasswordReset(ctx, forms.Recovery{Email: alice.Email})

	require.NoError(t, err)
	assert.True(t, out.IsSuccess())
	assert.Contains(t, out.Message, alice.Email)
	require.NotNil(t, stored)
	assert.Equal(t, alice.ID, stored.UserID)
	assert.Len(t, stored.TokenHash, 64)
	assert.WithinDuration(t, time.Now().Add(time.Hour), stored.ExpiresAt, time.Minute)
	d.assertExpectations(t)
}

func TestRequestPasswordResetUnknownEmail(t *testing.T) {
	d := newDeps()
	ctx := context.Background()
	d.users.On("FindByEmail", ctx, "ghost@example.com").Return(nil, entities.ErrUserNotFound)

	out, err := d.useCase().RequestPasswordReset(ctx, forms.Recovery{Email: "ghost@example.com"})

	require.NoError(t, err)
	assert.True(t, out.IsFieldError())
	assert.Equal(t, "email", out.Field)
	assert.Equal(t, services.MsgEmailNotFound, out.Message)
	assert.Equal(t, services.MsgEmailNotFoundBanner, out.Banner)
	d.tokens.AssertNotCalled(t, "Store", mock.Anything, mock.Anything)
}

func TestRequestPasswordResetMailFailure(t *testing.T) {
	d := newDeps()
	ctx := context.Background()
	boom := errors.New("smtp unavailable")
	d.users.On("FindByEmail", ctx, alice.Email).Return(alice, nil)
	d.tokens.On("Store", ctx, mock.Anything).Return(nil)
	d.mailer.On("Send", ctx, mock.Anything).Return(boom)

	_, err := d.useCase().RequestPasswordReset(ctx, forms.Recovery{Email: alice.Email})

	require.ErrorIs(t, err, boom)
}

func TestResolveIdentity(t *testing.T) {
	d := newDeps()
	ctx := context.Background()
	d.users.On("FindByEmail", ctx, alice.Email).Return(alice, nil)

	id, err := d.useCase().ResolveIdentity(ctx, alice.Email)

	require.NoError(t, err)
	assert.Equal(t, alice.ID, id.UserID)
	assert.Equal(t, "Alice", id.Name)
}
