package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acmeshell/internal/shell/adapters/postgres"
	"acmeshell/internal/shell/domain/entities"
	"acmeshell/internal/shell/domain/services"
	"acmeshell/pkg/logger"
)

var (
	userColumns  = []string{"id", "name", "email", "password_hash", "created_at", "updated_at"}
	tokenColumns = []string{"id", "user_id", "token_hash", "expires_at", "created_at", "used_at"}

	errDB = errors.New("connection reset")
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	log, err := logger.NewLogger(logger.Development, "debug")
	require.NoError(t, err)
	return logger.NewContext(context.Background(), log)
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func testUser() entities.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return entities.User{
		ID:           "6a3f7c52-8d1b-4c0e-9f55-1f2d3c4b5a69",
		Name:         "Test User",
		Email:        "test@example.com",
		PasswordHash: "hashed_password",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func userRow(u entities.User) *pgxmock.Rows {
	return pgxmock.NewRows(userColumns).
		AddRow(u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
}

func TestUserRepositoryFindByEmail(t *testing.T) {
	ctx := testContext(t)
	u := testUser()

	t.Run("found", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, password_hash, created_at, updated_at")).
			WithArgs(u.Email).
			WillReturnRows(userRow(u))

		got, err := postgres.NewUserRepository(mock).FindByEmail(ctx, u.Email)

		require.NoError(t, err)
		assert.Equal(t, &u, got)
	})

	t.Run("not found", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("SELECT id, name, email").
			WithArgs("missing@example.com").
			WillReturnError(pgx.ErrNoRows)

		got, err := postgres.NewUserRepository(mock).FindByEmail(ctx, "missing@example.com")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, entities.ErrUserNotFound)
	})

	t.Run("database error", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("SELECT id, name, email").
			WithArgs(u.Email).
			WillReturnError(errDB)

		_, err := postgres.NewUserRepository(mock).FindByEmail(ctx, u.Email)

		require.ErrorIs(t, err, errDB)
		assert.NotErrorIs(t, err, entities.ErrUserNotFound)
	})
}

func TestUserRepositoryFindByID(t *testing.T) {
	ctx := testContext(t)
	u := testUser()

	mock := newMock(t)
	mock.ExpectQuery("SELECT id, name, email").WithArgs(u.ID).WillReturnRows(userRow(u))
	mock.ExpectQuery("SELECT id, name, email").WithArgs("nope").WillReturnError(pgx.ErrNoRows)

	repo := postgres.NewUserRepository(mock)

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Name, got.Name)

	_, err = repo.FindByID(ctx, "nope")
	require.ErrorIs(t, err, entities.ErrUserNotFound)
}

func TestUserRepositoryCreate(t *testing.T) {
	ctx := testContext(t)
	u := testUser()

	t.Run("created", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (id, name, email, password_hash)")).
			WithArgs(u.ID, u.Name, u.Email, u.PasswordHash).
			WillReturnRows(userRow(u))

		got, err := postgres.NewUserRepository(mock).Create(ctx, &u)

		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, u.CreatedAt, got.CreatedAt)
	})

	t.Run("email taken", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs(u.ID, u.Name, u.Email, u.PasswordHash).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		got, err := postgres.NewUserRepository(mock).Create(ctx, &u)

		assert.Nil(t, got)
		assert.ErrorIs(t, err, services.ErrEmailTaken)
	})

	t.Run("other error", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs(u.ID, u.Name, u.Email, u.PasswordHash).
			WillReturnError(errDB)

		_, err := postgres.NewUserRepository(mock).Create(ctx, &u)

		require.ErrorIs(t, err, errDB)
	})
}

func TestUserRepositoryUpdatePassword(t *testing.T) {
	ctx := testContext(t)

	t.Run("updated", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec("UPDATE users").
			WithArgs("id-1", "new-hash", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, postgres.NewUserRepository(mock).UpdatePassword(ctx, "id-1", "new-hash"))
	})

	t.Run("missing user", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec("UPDATE users").
			WithArgs("id-2", "new-hash", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := postgres.NewUserRepository(mock).UpdatePassword(ctx, "id-2", "new-hash")
		require.ErrorIs(t, err, entities.ErrUserNotFound)
	})
}

func TestResetTokenRepositoryStore(t *testing.T) {
	ctx := testContext(t)
	token := &entities.ResetToken{
		ID:        "t-1",
		UserID:    "u-1",
		TokenHash: "abc",
		ExpiresAt: time.Now().Add(time.Hour).UTC(),
	}

	mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO password_reset_tokens")).
		WithArgs(token.ID, token.UserID, token.TokenHash, token.ExpiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO password_reset_tokens")).
		WithArgs(token.ID, token.UserID, token.TokenHash, token.ExpiresAt).
		WillReturnError(errDB)

	repo := postgres.NewResetTokenRepository(mock)
	require.NoError(t, repo.Store(ctx, token))
	require.ErrorIs(t, repo.Store(ctx, token), errDB)
}

func TestResetTokenRepositoryFindByHash(t *testing.T) {
	ctx := testContext(t)
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Microsecond)
	created := time.Now().UTC().Truncate(time.Microsecond)

	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM password_reset_tokens")).
		WithArgs("abc").
		WillReturnRows(pgxmock.NewRows(tokenColumns).AddRow("t-1", "u-1", "abc", expires, created, nil))
	mock.ExpectQuery(regexp.QuoteMeta("FROM password_reset_tokens")).
		WithArgs("zzz").
		WillReturnError(pgx.ErrNoRows)

	repo := postgres.NewResetTokenRepository(mock)

	got, err := repo.FindByHash(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.UserID)
	assert.Equal(t, expires, got.ExpiresAt)
	assert.Nil(t, got.UsedAt)

	_, err = repo.FindByHash(ctx, "zzz")
	require.ErrorIs(t, err, entities.ErrResetTokenNotFound)
}

func TestResetTokenRepositoryMarkUsed(t *testing.T) {
	ctx := testContext(t)

	mock := newMock(t)
	mock.ExpectExec("UPDATE password_reset_tokens").
		WithArgs("t-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE password_reset_tokens").
		WithArgs("t-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := postgres.NewResetTokenRepository(mock)
	require.NoError(t, repo.MarkUsed(ctx, "t-1"))
	require.ErrorIs(t, repo.MarkUsed(ctx, "t-1"), entities.ErrResetTokenNotFound)
}

func TestResetTokenRepositoryDeleteExpired(t *testing.T) {
	ctx := testContext(t)

	mock := newMock(t)
	mock.ExpectExec("DELETE FROM password_reset_tokens").
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := postgres.NewResetTokenRepository(mock).DeleteExpired(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestRepositoryFactory(t *testing.T) {
	f := postgres.NewRepositoryFactory(newMock(t))

	assert.NotNil(t, f.UserRepository())
	assert.NotNil(t, f.ResetTokenRepository())
}
