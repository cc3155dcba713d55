package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickvest/brickvest/internal/pkg/logger"
	"github.com/brickvest/brickvest/internal/pkg/models"
	"github.com/brickvest/brickvest/services/user"
)

func newPostgresUserRepo(t *testing.T) (user.UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewPostgresUserRepo(sqlxDB, logger.NewNop()), mock
}

func TestPostgresUserRepo_GetUserByEmail(t *testing.T) {
	repo, mock := newPostgresUserRepo(t)

	now := time.Now().UTC().Truncate(time.Second)
	rows := sqlmock.NewRows([]string{
		"id", "email", "password_hash", "display_name", "photo_url",
		"provider", "created_at", "updated_at",
	}).AddRow("u1", "ada@example.com", "hash", "Ada", "", models.ProviderPassword, now, now)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE lower\(email\) = lower\(\$1\)`).
		WithArgs("Ada@Example.com").
		WillReturnRows(rows)

	u, err := repo.GetUserByEmail(context.Background(), "Ada@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepo_GetUserByIDMissing(t *testing.T) {
	repo, mock := newPostgresUserRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetUserByID(context.Background(), "missing")
	assert.ErrorIs(t, err, user.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepo_CreateUserDuplicateEmail(t *testing.T) {
	repo, mock := newPostgresUserRepo(t)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_lower_idx"})

	err := repo.CreateUser(context.Background(), &models.User{
		Email:        "ada@example.com",
		PasswordHash: "hash",
		Provider:     models.ProviderPassword,
	})
	assert.ErrorIs(t, err, user.ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepo_UpdateUserMissing(t *testing.T) {
	repo, mock := newPostgresUserRepo(t)

	mock.ExpectExec(`UPDATE users`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateUser(context.Background(), &models.User{ID: "missing"})
	assert.ErrorIs(t, err, user.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
