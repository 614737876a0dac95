package accounts

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/verikeep/internal/common"
	"github.com/dmitrijs2005/verikeep/internal/server/models"
)

var (
	ts       = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	columns  = []string{"id", "name", "email", "password_hash", "role", "is_verified", "verification_code", "code_expires_at", "created_at", "updated_at", "last_login_at"}
	qInsert  = `(?s)^INSERT\s+INTO\s+accounts\s*\(id,\s*name,\s*email,\s*password_hash,\s*role,\s*is_verified,\s*verification_code,\s*code_expires_at,\s*created_at,\s*updated_at\)\s*VALUES\s*\(\$1,.*\$10\)\s*$`
	qByEmail = `(?s)^SELECT\s+id,\s*name,\s*email,.*FROM\s+accounts\s+WHERE\s+email\s*=\s*\$1\s*$`
	qLock    = `(?s)^SELECT\s+id,.*FROM\s+accounts\s+WHERE\s+email\s*=\s*\$1\s+FOR\s+UPDATE\s*$`
	qByID    = `(?s)^SELECT\s+id,.*FROM\s+accounts\s+WHERE\s+id\s*=\s*\$1\s*$`
	qLockID  = `(?s)^SELECT\s+id,.*FROM\s+accounts\s+WHERE\s+id\s*=\s*\$1\s+FOR\s+UPDATE\s*$`
	qUpdate  = `(?s)^UPDATE\s+accounts\s+SET\s+name\s*=\s*\$2,.*WHERE\s+id\s*=\s*\$1\s*$`
	qDelete  = `(?s)^DELETE\s+FROM\s+accounts\s+WHERE\s+id\s*=\s*\$1\s*$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func pendingAccount() *models.Account {
	a := &models.Account{
		ID: "0b5c", Name: "Ann", Email: "ann@x.com", PasswordHash: "hash",
		Role: models.RoleUser, CreatedAt: ts, UpdatedAt: ts,
	}
	a.SetCode("123456", ts.Add(10*time.Minute))
	return a
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	a := pendingAccount()
	mock.ExpectExec(qInsert).
		WithArgs(a.ID, a.Name, a.Email, a.PasswordHash, a.Role, false, "123456", ts.Add(10*time.Minute), ts, ts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := repo.Create(context.Background(), a)
	require.NoError(t, err)
	assert.Same(t, a, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(qInsert).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_key"})

	_, err := repo.Create(context.Background(), pendingAccount())
	if !errors.Is(err, common.ErrorDuplicateEmail) {
		t.Fatalf("want common.ErrorDuplicateEmail, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(qInsert).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), pendingAccount())
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(columns).
		AddRow("0b5c", "Ann", "ann@x.com", "hash", "user", false, "123456", ts.Add(10*time.Minute), ts, ts, nil)
	mock.ExpectQuery(qByEmail).WithArgs("ann@x.com").WillReturnRows(rows)

	got, err := repo.GetByEmail(context.Background(), "ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, "0b5c", got.ID)
	assert.True(t, got.HasPendingCode())
	assert.Equal(t, "123456", *got.VerificationCode)
	assert.Equal(t, ts.Add(10*time.Minute), *got.CodeExpiresAt)
	assert.Nil(t, got.LastLoginAt)
}

func TestGetByEmailForUpdate_Verified(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(columns).
		AddRow("0b5c", "Ann", "ann@x.com", "hash", "user", true, nil, nil, ts, ts, ts)
	mock.ExpectQuery(qLock).WithArgs("ann@x.com").WillReturnRows(rows)

	got, err := repo.GetByEmailForUpdate(context.Background(), "ann@x.com")
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
	assert.False(t, got.HasPendingCode())
	require.NotNil(t, got.LastLoginAt)
	assert.Equal(t, ts, *got.LastLoginAt)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qByID).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByIDForUpdate_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(columns).
		AddRow("0b5c", "Ann", "ann@x.com", "hash", "admin", true, nil, nil, ts, ts, nil)
	mock.ExpectQuery(qLockID).WithArgs("0b5c").WillReturnRows(rows)

	got, err := repo.GetByIDForUpdate(context.Background(), "0b5c")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qByID).WithArgs("x").WillReturnError(errors.New("db err"))

	_, err := repo.GetByID(context.Background(), "x")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		a := pendingAccount()
		a.MarkVerified(ts)
		mock.ExpectExec(qUpdate).
			WithArgs(a.ID, a.Name, a.PasswordHash, a.Role, true, nil, nil, ts, ts).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Update(context.Background(), a))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectExec(qUpdate).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(context.Background(), pendingAccount())
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectExec(qUpdate).WillReturnError(errors.New("db err"))

		err := repo.Update(context.Background(), pendingAccount())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db error")
	})
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(qDelete).WithArgs("0b5c").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qDelete).WithArgs("0b5c").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "0b5c"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "0b5c"), common.ErrorNotFound)
}

func TestCount(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	verified := true
	mock.ExpectQuery(`(?s)^SELECT\s+COUNT\(\*\)\s+FROM\s+accounts$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(5)))
	mock.ExpectQuery(`(?s)^SELECT\s+COUNT\(\*\)\s+FROM\s+accounts\s+WHERE\s+is_verified\s*=\s*\$1$`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

	total, err := repo.Count(context.Background(), models.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)

	n, err := repo.Count(context.Background(), models.Filter{Verified: &verified})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.NoError(t, mock.ExpectationsWereMet())
}
