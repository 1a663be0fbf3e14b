package ports

import (
	"context"

	"github.com/yawaramin/podb/internal/domain"
)

// EntryStore is the persistence contract for catalog entries. How the
// per-language translations are laid out physically is the implementation's
// business; callers only see the logical map on domain.Entry.
type EntryStore interface {
	// EnsureLanguage makes the store able to hold a translation for code on
	// every entry. Idempotent.
	EnsureLanguage(ctx context.Context, code string) error
	Languages(ctx context.Context) ([]string, error)
	FetchAll(ctx context.Context) ([]*domain.Entry, error)
	// FetchByKey returns nil when no entry exists for (ref, key).
	FetchByKey(ctx context.Context, ref, key string) (*domain.Entry, error)
	// Upsert inserts or replaces the entry keyed by (Ref, Key), refreshing
	// UpdatedAt.
	Upsert(ctx context.Context, e *domain.Entry) error
	// UpsertBatch writes all entries in a single transaction, or none of them.
	UpsertBatch(ctx context.Context, entries []*domain.Entry) error
}

// MetaStore holds catalog-level metadata, such as the header fields of the
// last file imported for a language. Get returns "" for an absent key.
type MetaStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// SuggestionCache remembers machine-translation candidates so a provider is
// asked at most once per (source, language pair, model).
type SuggestionCache interface {
	Get(ctx context.Context, src, srcLang, tgtLang, model string) (string, bool, error)
	Put(ctx context.Context, src, srcLang, tgtLang, model, text string) error
}
