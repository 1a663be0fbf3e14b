package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// SuggestCacheRepo implements ports.SuggestionCache so a machine-translation
// provider is asked at most once per source text, language pair and model.
type SuggestCacheRepo struct{ *Repo }

func NewSuggestCacheRepo(db *sql.DB) *SuggestCacheRepo {
	return &SuggestCacheRepo{NewRepo(db)}
}

func (r *SuggestCacheRepo) Get(ctx context.Context, src, srcLang, tgtLang, model string) (string, bool, error) {
	q := r.SQ.Select("text").From("suggestion_cache").
		Where(sq.Eq{"src": src, "src_lang": srcLang, "tgt_lang": tgtLang, "model": model}).
		Limit(1)
	sqlStr, args, _ := q.ToSql()
	var text string
	if err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&text); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return text, true, nil
}

func (r *SuggestCacheRepo) Put(ctx context.Context, src, srcLang, tgtLang, model, text string) error {
	q := r.SQ.Insert("suggestion_cache").
		Columns("src", "src_lang", "tgt_lang", "model", "text", "created_at").
		Values(src, srcLang, tgtLang, model, text, time.Now().UTC().Format(time.RFC3339)).
		Suffix("ON CONFLICT(src, src_lang, tgt_lang, model) DO UPDATE SET text=excluded.text")
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}
