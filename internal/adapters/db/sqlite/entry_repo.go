package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/yawaramin/podb/internal/domain"
)

// EntryRepo implements ports.EntryStore. Entries live in the entries table;
// the logical translations map is an entry_translations side table so a new
// language never changes the physical schema.
type EntryRepo struct{ *Repo }

func NewEntryRepo(db *sql.DB) *EntryRepo { return &EntryRepo{NewRepo(db)} }

func (r *EntryRepo) EnsureLanguage(ctx context.Context, code string) error {
	q := r.SQ.Insert("languages").Columns("code", "created_at").
		Values(code, time.Now().UTC().Format(time.RFC3339)).
		Suffix("ON CONFLICT(code) DO NOTHING")
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *EntryRepo) Languages(ctx context.Context) ([]string, error) {
	q := r.SQ.Select("code").From("languages").OrderBy("code")
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		out = append(out, code)
	}
	return out, rows.Err()
}

func (r *EntryRepo) FetchAll(ctx context.Context) ([]*domain.Entry, error) {
	q := r.SQ.Select("id", "ref", "key", "comment", "updated_at").
		From("entries").OrderBy("ref", "key")
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Entry
	byID := map[int64]*domain.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		byID[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	tq := r.SQ.Select("entry_id", "lang", "text").From("entry_translations")
	sqlStr, args, _ = tq.ToSql()
	trows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer trows.Close()
	for trows.Next() {
		var id int64
		var lang, text string
		if err := trows.Scan(&id, &lang, &text); err != nil {
			return nil, err
		}
		if e, ok := byID[id]; ok {
			e.SetTranslation(lang, text)
		}
	}
	return out, trows.Err()
}

func (r *EntryRepo) FetchByKey(ctx context.Context, ref, key string) (*domain.Entry, error) {
	q := r.SQ.Select("id", "ref", "key", "comment", "updated_at").
		From("entries").Where(sq.Eq{"ref": ref, "key": key}).Limit(1)
	sqlStr, args, _ := q.ToSql()
	row := r.DB.QueryRowContext(ctx, sqlStr, args...)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	tq := r.SQ.Select("lang", "text").From("entry_translations").Where(sq.Eq{"entry_id": e.ID})
	sqlStr, args, _ = tq.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var lang, text string
		if err := rows.Scan(&lang, &text); err != nil {
			return nil, err
		}
		e.SetTranslation(lang, text)
	}
	return e, rows.Err()
}

func (r *EntryRepo) Upsert(ctx context.Context, e *domain.Entry) error {
	return WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		return r.upsertTx(ctx, tx, e)
	})
}

func (r *EntryRepo) UpsertBatch(ctx context.Context, entries []*domain.Entry) error {
	return WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		for _, e := range entries {
			if err := r.upsertTx(ctx, tx, e); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *EntryRepo) upsertTx(ctx context.Context, tx *sql.Tx, e *domain.Entry) error {
	now := time.Now().UTC()
	q := r.SQ.Insert("entries").Columns("ref", "key", "comment", "updated_at").
		Values(e.Ref, e.Key, e.Comment, now.Format(time.RFC3339)).
		Suffix("ON CONFLICT(ref, key) DO UPDATE SET comment=excluded.comment, updated_at=excluded.updated_at")
	sqlStr, args, _ := q.ToSql()
	if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
		return err
	}
	idq := r.SQ.Select("id").From("entries").Where(sq.Eq{"ref": e.Ref, "key": e.Key})
	sqlStr, args, _ = idq.ToSql()
	if err := tx.QueryRowContext(ctx, sqlStr, args...).Scan(&e.ID); err != nil {
		return err
	}
	for lang, text := range e.Translations {
		tq := r.SQ.Insert("entry_translations").Columns("entry_id", "lang", "text").
			Values(e.ID, lang, text).
			Suffix("ON CONFLICT(entry_id, lang) DO UPDATE SET text=excluded.text")
		sqlStr, args, _ = tq.ToSql()
		if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
			return err
		}
	}
	e.UpdatedAt = now
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*domain.Entry, error) {
	var e domain.Entry
	var updated string
	if err := row.Scan(&e.ID, &e.Ref, &e.Key, &e.Comment, &updated); err != nil {
		return nil, err
	}
	e.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &e, nil
}
