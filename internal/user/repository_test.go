// AngelaMos | 2026
// repository_test.go

package user

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/emoji-explainer/internal/core"
)

var userCols = []string{"id", "username", "email", "password_hash", "role", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = mockDB.Close()
	})

	return NewRepository(sqlx.NewDb(mockDB, "pgx")), mock
}

func TestRepository_Create(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("u-1", "alice", "alice@x.com", "hash", RoleUser).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	u := &User{ID: "u-1", Username: "alice", Email: "alice@x.com", PasswordHash: "hash", Role: RoleUser}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.True(t, u.CreatedAt.Equal(now))
}

func TestRepository_CreateDuplicate(t *testing.T) {
	tests := []struct {
		constraint string
		want       error
	}{
		{constraintEmail, ErrEmailTaken},
		{constraintUsername, ErrUsernameTaken},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			repo, mock := newMockRepo(t)

			mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tt.constraint})

			err := repo.Create(context.Background(), &User{ID: "u-1"})
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, core.ErrDuplicateKey)
		})
	}
}

func TestRepository_GetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u-1", "alice", "alice@x.com", "hash", RoleUser, now, now))

	u, err := repo.GetByID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, RoleUser, u.Role)
}

func TestRepository_GetByEmailNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("ghost@x.com").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := repo.GetByEmail(context.Background(), "ghost@x.com")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepository_GetByUsernameUnavailable(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1")).
		WillReturnError(context.DeadlineExceeded)

	_, err := repo.GetByUsername(context.Background(), "alice")
	assert.ErrorIs(t, err, core.ErrStoreUnavailable)
}

func TestRepository_ExistsByUsernameOrEmail(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("alice", "alice@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByUsernameOrEmail(context.Background(), "alice", "alice@x.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRepository_UpdateNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
		WithArgs("u-1", "alice", "alice@x.com", RoleUser).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

	err := repo.Update(context.Background(), &User{
		ID: "u-1", Username: "alice", Email: "alice@x.com", Role: RoleUser,
	})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepository_Delete(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "u-1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "u-1"), core.ErrNotFound)
}

func TestRepository_List(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE TRUE AND (email ILIKE $1 OR username ILIKE $1)")).
		WithArgs("%al\\_ice%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $2 OFFSET $3")).
		WithArgs("%al\\_ice%", 20, 0).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u-1", "al_ice", "alice@x.com", "hash", RoleUser, now, now))

	users, total, err := repo.List(context.Background(), ListUsersParams{Search: "al_ice"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "al_ice", users[0].Username)
}
