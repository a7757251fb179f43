package postgres

import (
	"context"

	"github.com/jrsteele09/go-token-authority/token/keys"
)

var _ keys.Repo = (*KeyRepo)(nil)

type KeyRepo struct {
	db DBTX
}

func NewKeyRepo(db DBTX) *KeyRepo {
	return &KeyRepo{db: db}
}

func (r *KeyRepo) Get(ctx context.Context, id int64) (*keys.Key, error) {
	query :=
		`SELECT id, algorithm, public, private, public_format, public_encoding, private_format, private_encoding
		 FROM keys WHERE id = $1`

	k := &keys.Key{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&k.ID, &k.Algorithm, &k.Public, &k.Private,
		&k.PublicFormat, &k.PublicEncoding, &k.PrivateFormat, &k.PrivateEncoding)
	if err != nil {
		return nil, mapError(err)
	}
	return k, nil
}

func (r *KeyRepo) Insert(ctx context.Context, k *keys.Key) error {
	query :=
		`INSERT INTO keys (id, algorithm, public, private, public_format, public_encoding, private_format, private_encoding)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		k.ID, k.Algorithm, k.Public, k.Private,
		k.PublicFormat, k.PublicEncoding, k.PrivateFormat, k.PrivateEncoding)
	return mapError(err)
}
