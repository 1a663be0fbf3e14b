package importer

import (
	"context"
	"testing"
	"time"

	"github.com/yawaramin/podb/internal/adapters/catalog/po"
	"github.com/yawaramin/podb/internal/adapters/catalog/registry"
	"github.com/yawaramin/podb/internal/domain"
)

type memStore struct {
	langs   []string
	entries []*domain.Entry
}

func (m *memStore) EnsureLanguage(_ context.Context, code string) error {
	for _, l := range m.langs {
		if l == code {
			return nil
		}
	}
	m.langs = append(m.langs, code)
	return nil
}

func (m *memStore) Languages(context.Context) ([]string, error) {
	return append([]string(nil), m.langs...), nil
}

func (m *memStore) FetchAll(context.Context) ([]*domain.Entry, error) {
	out := make([]*domain.Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, cloneEntry(e))
	}
	return out, nil
}

func (m *memStore) FetchByKey(_ context.Context, ref, key string) (*domain.Entry, error) {
	for _, e := range m.entries {
		if e.Ref == ref && e.Key == key {
			return cloneEntry(e), nil
		}
	}
	return nil, nil
}

func (m *memStore) Upsert(_ context.Context, e *domain.Entry) error {
	now := time.Now().UTC()
	for i, old := range m.entries {
		if old.Ref == e.Ref && old.Key == e.Key {
			c := cloneEntry(e)
			c.UpdatedAt = now
			m.entries[i] = c
			return nil
		}
	}
	c := cloneEntry(e)
	c.UpdatedAt = now
	m.entries = append(m.entries, c)
	return nil
}

func (m *memStore) UpsertBatch(ctx context.Context, entries []*domain.Entry) error {
	for _, e := range entries {
		if err := m.Upsert(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func cloneEntry(e *domain.Entry) *domain.Entry {
	c := *e
	c.Translations = map[string]string{}
	for k, v := range e.Translations {
		c.Translations[k] = v
	}
	return &c
}

type memMeta map[string]string

func (m memMeta) Get(_ context.Context, key string) (string, error) { return m[key], nil }
func (m memMeta) Set(_ context.Context, key, value string) error    { m[key] = value; return nil }

func newService(store *memStore, meta memMeta) *Service {
	reg := registry.New()
	reg.Register(po.New())
	return New(store, meta, reg)
}

const frCatalog = `msgid ""
msgstr ""
"Language: fr\n"

#: podb
msgid "hello"
msgstr "bonjour"

#: podb
msgid "bye"
msgstr ""
`

func TestImportCreates(t *testing.T) {
	store := &memStore{langs: []string{"fr", "it"}}
	svc := newService(store, memMeta{})
	res, err := svc.Import(context.Background(), ImportArgs{Language: "fr", Format: "po", Content: []byte(frCatalog)})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if res.Language != "fr" {
		t.Errorf("language = %q, want fr", res.Language)
	}
	want := domain.ImportReport{Created: 2}
	if res.Report != want {
		t.Errorf("report = %+v, want %+v", res.Report, want)
	}
	e, _ := store.FetchByKey(context.Background(), "podb", "hello")
	if e == nil {
		t.Fatal("entry not created")
	}
	if got, _ := e.Translation("fr"); got != "bonjour" {
		t.Errorf("fr = %q, want bonjour", got)
	}
	if got, ok := e.Translation("it"); ok {
		t.Errorf("it should be untranslated, got %q", got)
	}
	if _, slot := e.Translations["it"]; !slot {
		t.Error("it slot missing on created entry")
	}
}

func TestImportIdempotent(t *testing.T) {
	store := &memStore{langs: []string{"fr"}}
	svc := newService(store, memMeta{})
	ctx := context.Background()
	if _, err := svc.Import(ctx, ImportArgs{Format: "po", Content: []byte(frCatalog)}); err != nil {
		t.Fatalf("first import failed: %v", err)
	}
	res, err := svc.Import(ctx, ImportArgs{Format: "po", Content: []byte(frCatalog)})
	if err != nil {
		t.Fatalf("second import failed: %v", err)
	}
	want := domain.ImportReport{Unchanged: 2}
	if res.Report != want {
		t.Errorf("second report = %+v, want %+v", res.Report, want)
	}
	if len(store.entries) != 2 {
		t.Errorf("store has %d entries, want 2", len(store.entries))
	}
}

func TestImportEmptyValueNeverErases(t *testing.T) {
	store := &memStore{langs: []string{"fr"}}
	ctx := context.Background()
	seed := &domain.Entry{Ref: "podb", Key: "hello"}
	seed.SetTranslation("fr", "bonjour")
	if err := store.Upsert(ctx, seed); err != nil {
		t.Fatal(err)
	}
	svc := newService(store, memMeta{})
	text := "#: podb\nmsgid \"hello\"\nmsgstr \"\"\n"
	res, err := svc.Import(ctx, ImportArgs{Language: "fr", Format: "po", Content: []byte(text)})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if res.Report.Updated != 0 || res.Report.Unchanged != 1 {
		t.Errorf("report = %+v, want 1 unchanged", res.Report)
	}
	e, _ := store.FetchByKey(ctx, "podb", "hello")
	if got, _ := e.Translation("fr"); got != "bonjour" {
		t.Errorf("fr = %q, want bonjour preserved", got)
	}
}

func TestImportCommentOverwrite(t *testing.T) {
	store := &memStore{langs: []string{"fr"}}
	ctx := context.Background()
	seed := &domain.Entry{Ref: "podb", Key: "hello", Comment: "old note"}
	seed.SetTranslation("fr", "bonjour")
	if err := store.Upsert(ctx, seed); err != nil {
		t.Fatal(err)
	}
	svc := newService(store, memMeta{})

	text := "#. new note\n#: podb\nmsgid \"hello\"\nmsgstr \"bonjour\"\n"
	res, err := svc.Import(ctx, ImportArgs{Language: "fr", Format: "po", Content: []byte(text)})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if res.Report.Updated != 1 {
		t.Errorf("report = %+v, want 1 updated", res.Report)
	}
	e, _ := store.FetchByKey(ctx, "podb", "hello")
	if e.Comment != "new note" {
		t.Errorf("comment = %q, want overwritten", e.Comment)
	}

	// a block with no comment leaves the stored comment alone
	text = "#: podb\nmsgid \"hello\"\nmsgstr \"bonjour\"\n"
	if _, err := svc.Import(ctx, ImportArgs{Language: "fr", Format: "po", Content: []byte(text)}); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	e, _ = store.FetchByKey(ctx, "podb", "hello")
	if e.Comment != "new note" {
		t.Errorf("comment = %q, want kept", e.Comment)
	}
}

func TestImportHeaderLanguageWins(t *testing.T) {
	store := &memStore{}
	meta := memMeta{}
	svc := newService(store, meta)
	res, err := svc.Import(context.Background(), ImportArgs{Language: "wrong", Format: "po", Content: []byte(frCatalog)})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if res.Language != "fr" {
		t.Errorf("language = %q, want fr from the header", res.Language)
	}
	if meta["header:fr"] == "" {
		t.Error("header metadata not persisted")
	}
}

func TestImportSkipsHeaderAndStale(t *testing.T) {
	text := `msgid ""
msgstr ""
"Language: fr\n"

#~ msgid "gone"
#~ msgstr "parti"
`
	store := &memStore{}
	svc := newService(store, memMeta{})
	res, err := svc.Import(context.Background(), ImportArgs{Format: "po", Content: []byte(text)})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if res.Report != (domain.ImportReport{}) {
		t.Errorf("report = %+v, want all zero", res.Report)
	}
	if len(store.entries) != 0 {
		t.Errorf("store has %d entries, want none", len(store.entries))
	}
}

func TestImportParseErrorAppliesNothing(t *testing.T) {
	store := &memStore{langs: []string{"fr"}}
	svc := newService(store, memMeta{})
	text := "#: podb\nmsgid \"hello\"\nmsgstr \"unterminated\n"
	if _, err := svc.Import(context.Background(), ImportArgs{Language: "fr", Format: "po", Content: []byte(text)}); err == nil {
		t.Fatal("expected a parse error")
	}
	if len(store.entries) != 0 {
		t.Errorf("store has %d entries after failed import, want none", len(store.entries))
	}
}
