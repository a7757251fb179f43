package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	apperrors "github.com/jrsteele09/go-token-authority/internal/errors"
	"github.com/jrsteele09/go-token-authority/token/keys"
	"github.com/jrsteele09/go-token-authority/token/refresh"
	"github.com/jrsteele09/go-token-authority/users"
	"github.com/stretchr/testify/require"
)

const (
	qSelectKey      = `(?s)^SELECT\s+id,\s*algorithm,.*FROM\s+keys\s+WHERE\s+id\s*=\s*\$1$`
	qInsertKey      = `(?s)^INSERT\s+INTO\s+keys\s*\(id,.*VALUES\s*\(\$1,.*\$8\)$`
	qSelectUserID   = `(?s)^SELECT\s+id,\s*usp_hex,\s*password_file\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`
	qSelectUserUsp  = `(?s)^SELECT\s+id,\s*usp_hex,\s*password_file\s+FROM\s+users\s+WHERE\s+usp_hex\s*=\s*\$1$`
	qInsertUser     = `(?s)^INSERT\s+INTO\s+users\s*\(usp_hex,\s*password_file\)\s*VALUES\s*\(\$1,\s*\$2\)\s*RETURNING\s+id$`
	qSelectLink     = `(?s)^SELECT\s+id,\s*family_id,.*FROM\s+refresh_tokens\s+WHERE\s+id\s*=\s*\$1$`
	qInsertLink     = `(?s)^INSERT\s+INTO\s+refresh_tokens\s*\(family_id,.*RETURNING\s+id$`
	qDeleteLink     = `^DELETE\s+FROM\s+refresh_tokens\s+WHERE\s+id\s*=\s*\$1$`
	qDeleteFamily   = `^DELETE\s+FROM\s+refresh_tokens\s+WHERE\s+family_id\s*=\s*\$1$`
	testFamilyID    = "01HZX3Q7J8K2M4N6P8R0S2T4V6"
	testAccessValue = `{"sub":"alice"}`
	testIDValue     = `{"sub":"alice","auth_time":1}`
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

var linkColumns = []string{"id", "family_id", "access_value", "id_token_value", "iat", "exp", "nonce"}

func testLink() *refresh.SavedRefreshToken {
	return &refresh.SavedRefreshToken{
		FamilyID:     testFamilyID,
		AccessValue:  testAccessValue,
		IDTokenValue: testIDValue,
		Iat:          1740830400,
		Exp:          1740834000,
		Nonce:        "n1",
	}
}

func TestKeyRepo_GetMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(qSelectKey).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewKeyRepo(db).Get(context.Background(), 1)
	require.ErrorIs(t, err, apperrors.ErrNoRow)
}

func TestKeyRepo_InsertDuplicate(t *testing.T) {
	db, mock := newMock(t)
	k, err := keys.GenerateSymmetricKey(keys.RefreshKeyID)
	require.NoError(t, err)

	mock.ExpectExec(qInsertKey).
		WithArgs(k.ID, k.Algorithm, k.Public, k.Private, k.PublicFormat, k.PublicEncoding, k.PrivateFormat, k.PrivateEncoding).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "keys_pkey"})

	err = NewKeyRepo(db).Insert(context.Background(), k)
	require.ErrorIs(t, err, apperrors.ErrRequiredExists)
}

func TestKeyRepo_Get(t *testing.T) {
	db, mock := newMock(t)
	rows := sqlmock.NewRows([]string{"id", "algorithm", "public", "private", "public_format", "public_encoding", "private_format", "private_encoding"}).
		AddRow(int64(2), keys.AlgAES256GCM, "", "c2VjcmV0", "", "", keys.FormatRaw, keys.EncodingBase64URL)
	mock.ExpectQuery(qSelectKey).WithArgs(int64(2)).WillReturnRows(rows)

	k, err := NewKeyRepo(db).Get(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, keys.AlgAES256GCM, k.Algorithm)
	secret, err := k.PrivateBytes()
	require.NoError(t, err)
	require.Equal(t, []byte("secret"), secret)
}

func TestUserRepo(t *testing.T) {
	ctx := context.Background()

	t.Run("insert returns id", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(qInsertUser).WithArgs("alice", []byte("file")).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

		id, err := NewUserRepo(db).Insert(ctx, &users.User{UspHex: "alice", PasswordFile: []byte("file")})
		require.NoError(t, err)
		require.Equal(t, int64(7), id)
	})

	t.Run("duplicate usp_hex", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(qInsertUser).WithArgs("alice", []byte("file")).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_usp_hex_key"})

		_, err := NewUserRepo(db).Insert(ctx, &users.User{UspHex: "alice", PasswordFile: []byte("file")})
		require.ErrorIs(t, err, apperrors.ErrRequiredExists)
	})

	t.Run("lookup by usp_hex", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(qSelectUserUsp).WithArgs("alice").
			WillReturnRows(sqlmock.NewRows([]string{"id", "usp_hex", "password_file"}).AddRow(int64(7), "alice", []byte("file")))

		u, err := NewUserRepo(db).GetByUspHex(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, &users.User{ID: 7, UspHex: "alice", PasswordFile: []byte("file")}, u)
	})

	t.Run("missing id", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(qSelectUserID).WithArgs(int64(0)).WillReturnError(sql.ErrNoRows)

		_, err := NewUserRepo(db).GetByID(ctx, 0)
		require.ErrorIs(t, err, apperrors.ErrNoRow)
	})

	t.Run("driver error is wrapped", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(qSelectUserUsp).WithArgs("bob").WillReturnError(errors.New("db down"))

		_, err := NewUserRepo(db).GetByUspHex(ctx, "bob")
		require.Error(t, err)
		require.NotErrorIs(t, err, apperrors.ErrNoRow)
		require.Contains(t, err.Error(), "db down")
	})
}

func TestRefreshTokenRepo_GetAndInsert(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t)
	link := testLink()

	mock.ExpectQuery(qInsertLink).
		WithArgs(link.FamilyID, link.AccessValue, link.IDTokenValue, link.Iat, link.Exp, link.Nonce).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectQuery(qSelectLink).WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(linkColumns).
			AddRow(int64(3), link.FamilyID, link.AccessValue, link.IDTokenValue, link.Iat, link.Exp, link.Nonce))

	repo := NewRefreshTokenRepo(db)
	id, err := repo.Insert(ctx, link)
	require.NoError(t, err)
	require.Equal(t, int64(3), id)

	got, err := repo.Get(ctx, 3)
	require.NoError(t, err)
	link.ID = 3
	require.Equal(t, link, got)
}

func TestRefreshTokenRepo_Delete(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t)

	mock.ExpectExec(qDeleteLink).WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qDeleteLink).WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(qDeleteFamily).WithArgs(testFamilyID).WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewRefreshTokenRepo(db)
	require.NoError(t, repo.Delete(ctx, 3))
	require.ErrorIs(t, repo.Delete(ctx, 3), apperrors.ErrNoRow)
	require.NoError(t, repo.DeleteFamily(ctx, testFamilyID))
}

func TestRefreshTokenRepo_ReplaceCommits(t *testing.T) {
	db, mock := newMock(t)
	next := testLink()

	mock.ExpectBegin()
	mock.ExpectExec(qDeleteLink).WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(qInsertLink).
		WithArgs(next.FamilyID, next.AccessValue, next.IDTokenValue, next.Iat, next.Exp, next.Nonce).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(4)))
	mock.ExpectCommit()

	id, err := NewRefreshTokenRepo(db).Replace(context.Background(), 3, next)
	require.NoError(t, err)
	require.Equal(t, int64(4), id)
}

func TestRefreshTokenRepo_ReplaceMissingRollsBack(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(qDeleteLink).WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := NewRefreshTokenRepo(db).Replace(context.Background(), 3, testLink())
	require.ErrorIs(t, err, apperrors.ErrNoRow)
}

func TestRefreshTokenRepo_ReplaceInsertFailureRollsBack(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(qDeleteLink).WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(qInsertLink).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := NewRefreshTokenRepo(db).Replace(context.Background(), 3, testLink())
	require.Error(t, err)
	require.Contains(t, err.Error(), "disk full")
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	require.Panics(t, func() {
		_ = WithTx(context.Background(), db, nil, func(context.Context, DBTX) error {
			panic("kaput")
		})
	})
}
