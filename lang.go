package podb

import (
	"context"

	"github.com/yawaramin/podb/internal/domain"
)

// Lang resolves message keys to stored translations for one registered
// language.
type Lang struct {
	Code string

	db     *DB
	base   bool
	backup *Lang // parent-tag accessor, e.g. pt for pt-BR
}

// T resolves key under DefaultRef.
func (l *Lang) T(ctx context.Context, key string) (string, error) {
	return l.Resolve(ctx, DefaultRef, key)
}

// Resolve returns the stored translation for (ref, key). An unknown key is
// created with empty slots for every registered language and persisted
// immediately, so the next export carries every message an application has
// ever asked for. Untranslated lookups fall back to the parent language when
// one exists, then to the missing marker; the base language returns the key
// itself.
func (l *Lang) Resolve(ctx context.Context, ref, key string) (string, error) {
	if l.base {
		return key, nil
	}
	e, err := l.db.store.FetchByKey(ctx, ref, key)
	if err != nil {
		return "", err
	}
	if e == nil {
		e = &domain.Entry{Ref: ref, Key: key}
		langs, err := l.db.store.Languages(ctx)
		if err != nil {
			return "", err
		}
		for _, code := range langs {
			e.SetTranslation(code, "")
		}
		if err := l.db.store.Upsert(ctx, e); err != nil {
			return "", err
		}
		return l.fallback(ctx, ref, key)
	}
	if t, ok := e.Translation(l.Code); ok {
		return t, nil
	}
	return l.fallback(ctx, ref, key)
}

func (l *Lang) fallback(ctx context.Context, ref, key string) (string, error) {
	if l.backup != nil {
		return l.backup.Resolve(ctx, ref, key)
	}
	return l.db.opts.Missing + key, nil
}
