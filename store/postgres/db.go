// Package postgres is the durable store: key rows, users and refresh token links in
// PostgreSQL, reached through database/sql over a pgx pool.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jrsteele09/go-token-authority/internal/config"
	apperrors "github.com/jrsteele09/go-token-authority/internal/errors"
	"github.com/jrsteele09/go-token-authority/store/postgres/migrations"
	"github.com/pressly/goose/v3"
)

const pingTimeout = 3 * time.Second

// DB owns the pool and the database/sql handle the repositories share.
type DB struct {
	pool *pgxpool.Pool
	sql  *sql.DB
}

// Open connects to cfg's database and checks it is reachable.
func Open(ctx context.Context, cfg config.StoreConfig) (*DB, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.GetDatabaseURL())
	if err != nil {
		return nil, apperrors.Wrapf(err, "parse database url")
	}
	if maxConns := cfg.GetDatabaseMaxConns(); maxConns > 0 {
		pcfg.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, apperrors.Wrapf(err, "create pool")
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, apperrors.Wrapf(err, "ping database")
	}

	return &DB{pool: pool, sql: stdlib.OpenDBFromPool(pool)}, nil
}

// SQL returns the database/sql handle.
func (d *DB) SQL() *sql.DB {
	return d.sql
}

// Migrate applies the embedded schema migrations.
func (d *DB) Migrate(ctx context.Context) error {
	return Migrate(ctx, d.sql)
}

func (d *DB) Close() {
	_ = d.sql.Close()
	d.pool.Close()
}

// Migrate applies the embedded schema migrations to db.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// DBTX is the subset of database/sql used by the repositories.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(ctx, tx)
}

// mapError turns driver errors into the store taxonomy.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.ErrNoRow
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
		return apperrors.Wrapf(apperrors.ErrRequiredExists, "%s", pgErr.ConstraintName)
	}
	return apperrors.Wrapf(err, "db error")
}
