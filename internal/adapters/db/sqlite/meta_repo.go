package sqlite

import (
	"context"
	"database/sql"
	"errors"
)

// MetaRepo implements ports.MetaStore on the meta key/value table. It keeps
// catalog-level state such as the header fields of the last imported file
// per language.
type MetaRepo struct{ *Repo }

func NewMetaRepo(db *sql.DB) *MetaRepo { return &MetaRepo{NewRepo(db)} }

func (r *MetaRepo) Get(ctx context.Context, key string) (string, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key)
	var v string
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return v, nil
}

func (r *MetaRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO meta(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	return err
}
