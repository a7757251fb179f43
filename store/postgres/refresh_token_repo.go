package postgres

import (
	"context"
	"database/sql"

	"github.com/jrsteele09/go-token-authority/internal/errors"
	"github.com/jrsteele09/go-token-authority/token/refresh"
)

var _ refresh.Repo = (*RefreshTokenRepo)(nil)

const insertRefreshToken = `INSERT INTO refresh_tokens (family_id, access_value, id_token_value, iat, exp, nonce)
	 VALUES ($1, $2, $3, $4, $5, $6)
	 RETURNING id`

type RefreshTokenRepo struct {
	db *sql.DB
}

func NewRefreshTokenRepo(db *sql.DB) *RefreshTokenRepo {
	return &RefreshTokenRepo{db: db}
}

func (r *RefreshTokenRepo) Get(ctx context.Context, id int64) (*refresh.SavedRefreshToken, error) {
	query :=
		`SELECT id, family_id, access_value, id_token_value, iat, exp, nonce
		 FROM refresh_tokens WHERE id = $1`

	t := &refresh.SavedRefreshToken{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.FamilyID, &t.AccessValue, &t.IDTokenValue, &t.Iat, &t.Exp, &t.Nonce)
	if err != nil {
		return nil, mapError(err)
	}
	return t, nil
}

func (r *RefreshTokenRepo) Insert(ctx context.Context, t *refresh.SavedRefreshToken) (int64, error) {
	return insertLink(ctx, r.db, t)
}

// Delete removes one link and fails with errors.ErrNoRow when it is already gone.
func (r *RefreshTokenRepo) Delete(ctx context.Context, id int64) error {
	return deleteLink(ctx, r.db, id)
}

func (r *RefreshTokenRepo) DeleteFamily(ctx context.Context, familyID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE family_id = $1`, familyID)
	return mapError(err)
}

// Replace deletes oldID and inserts next in one transaction. When oldID has already been
// deleted, by an earlier rotation or a concurrent one that committed first, nothing is
// written and errors.ErrNoRow is returned.
func (r *RefreshTokenRepo) Replace(ctx context.Context, oldID int64, next *refresh.SavedRefreshToken) (int64, error) {
	var id int64
	err := WithTx(ctx, r.db, nil, func(ctx context.Context, tx DBTX) error {
		if err := deleteLink(ctx, tx, oldID); err != nil {
			return err
		}
		var err error
		id, err = insertLink(ctx, tx, next)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func insertLink(ctx context.Context, db DBTX, t *refresh.SavedRefreshToken) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx, insertRefreshToken,
		t.FamilyID, t.AccessValue, t.IDTokenValue, t.Iat, t.Exp, t.Nonce).Scan(&id)
	if err != nil {
		return 0, mapError(err)
	}
	return id, nil
}

func deleteLink(ctx context.Context, db DBTX, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if n == 0 {
		return errors.ErrNoRow
	}
	return nil
}
