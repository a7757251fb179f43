package postgres

import (
	"context"

	"github.com/jrsteele09/go-token-authority/users"
)

var _ users.Repo = (*UserRepo)(nil)

type UserRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*users.User, error) {
	query := `SELECT id, usp_hex, password_file FROM users WHERE id = $1`
	return r.scan(r.db.QueryRowContext(ctx, query, id).Scan)
}

func (r *UserRepo) GetByUspHex(ctx context.Context, uspHex string) (*users.User, error) {
	query := `SELECT id, usp_hex, password_file FROM users WHERE usp_hex = $1`
	return r.scan(r.db.QueryRowContext(ctx, query, uspHex).Scan)
}

func (r *UserRepo) Insert(ctx context.Context, user *users.User) (int64, error) {
	query :=
		`INSERT INTO users (usp_hex, password_file)
		 VALUES ($1, $2)
		 RETURNING id`

	var id int64
	if err := r.db.QueryRowContext(ctx, query, user.UspHex, user.PasswordFile).Scan(&id); err != nil {
		return 0, mapError(err)
	}
	return id, nil
}

// InsertWithID stores user under its own id. Used for the reserved dummy row.
func (r *UserRepo) InsertWithID(ctx context.Context, user *users.User) error {
	query :=
		`INSERT INTO users (id, usp_hex, password_file)
		 VALUES ($1, $2, $3)`

	_, err := r.db.ExecContext(ctx, query, user.ID, user.UspHex, user.PasswordFile)
	return mapError(err)
}

func (r *UserRepo) scan(scan func(dest ...any) error) (*users.User, error) {
	u := &users.User{}
	if err := scan(&u.ID, &u.UspHex, &u.PasswordFile); err != nil {
		return nil, mapError(err)
	}
	return u, nil
}
