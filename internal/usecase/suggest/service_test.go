package suggest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yawaramin/podb/internal/domain"
	"github.com/yawaramin/podb/internal/ports"
)

type memStore struct {
	langs   []string
	entries []*domain.Entry
}

func (m *memStore) EnsureLanguage(_ context.Context, code string) error {
	m.langs = append(m.langs, code)
	return nil
}

func (m *memStore) Languages(context.Context) ([]string, error) {
	return append([]string(nil), m.langs...), nil
}

func (m *memStore) FetchAll(context.Context) ([]*domain.Entry, error) {
	return append([]*domain.Entry(nil), m.entries...), nil
}

func (m *memStore) FetchByKey(_ context.Context, ref, key string) (*domain.Entry, error) {
	for _, e := range m.entries {
		if e.Ref == ref && e.Key == key {
			return e, nil
		}
	}
	return nil, nil
}

func (m *memStore) Upsert(_ context.Context, e *domain.Entry) error {
	e.UpdatedAt = time.Now().UTC()
	for i, old := range m.entries {
		if old.Ref == e.Ref && old.Key == e.Key {
			m.entries[i] = e
			return nil
		}
	}
	m.entries = append(m.entries, e)
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

type memCache map[string]string

func cacheKey(src, srcLang, tgtLang, model string) string {
	return src + "|" + srcLang + "|" + tgtLang + "|" + model
}

func (m memCache) Get(_ context.Context, src, srcLang, tgtLang, model string) (string, bool, error) {
	t, ok := m[cacheKey(src, srcLang, tgtLang, model)]
	return t, ok, nil
}

func (m memCache) Put(_ context.Context, src, srcLang, tgtLang, model, text string) error {
	m[cacheKey(src, srcLang, tgtLang, model)] = text
	return nil
}

type fakeProvider struct {
	calls int
	err   error
}

func (p *fakeProvider) Translate(_ context.Context, seg ports.Segment, _ ports.TranslateParams) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return "mt:" + seg.Key, nil
}

func (p *fakeProvider) Test(context.Context) error { return nil }

func seededStore() *memStore {
	store := &memStore{langs: []string{"fr"}}
	done := &domain.Entry{Ref: "podb", Key: "hello"}
	done.SetTranslation("fr", "bonjour")
	todo := &domain.Entry{Ref: "podb", Key: "bye"}
	todo.SetTranslation("fr", "")
	store.entries = []*domain.Entry{done, todo}
	return store
}

func TestFillTranslatesOnlyMissing(t *testing.T) {
	store := seededStore()
	prov := &fakeProvider{}
	cache := memCache{}
	svc := &Service{Store: store, Cache: cache, Provider: prov, SourceLang: "en", Model: "m"}

	res, err := svc.Fill(context.Background(), "fr")
	if err != nil {
		t.Fatalf("Fill failed: %v", err)
	}
	if res.Filled != 1 || res.Skipped != 1 || res.Cached != 0 {
		t.Errorf("result = %+v, want 1 filled, 1 skipped", res)
	}
	if prov.calls != 1 {
		t.Errorf("provider called %d times, want 1", prov.calls)
	}
	e, _ := store.FetchByKey(context.Background(), "podb", "bye")
	if got, _ := e.Translation("fr"); got != "mt:bye" {
		t.Errorf("fr = %q, want the suggestion stored", got)
	}

	// second pass finds nothing left to do
	res, err = svc.Fill(context.Background(), "fr")
	if err != nil {
		t.Fatalf("second Fill failed: %v", err)
	}
	if res.Filled != 0 || res.Skipped != 2 {
		t.Errorf("second result = %+v, want all skipped", res)
	}
}

func TestFillUsesCache(t *testing.T) {
	store := seededStore()
	prov := &fakeProvider{}
	cache := memCache{}
	_ = cache.Put(context.Background(), "bye", "en", "fr", "m", "au revoir")
	svc := &Service{Store: store, Cache: cache, Provider: prov, SourceLang: "en", Model: "m"}

	res, err := svc.Fill(context.Background(), "fr")
	if err != nil {
		t.Fatalf("Fill failed: %v", err)
	}
	if res.Filled != 1 || res.Cached != 1 {
		t.Errorf("result = %+v, want the cached suggestion used", res)
	}
	if prov.calls != 0 {
		t.Errorf("provider called %d times, want 0", prov.calls)
	}
	e, _ := store.FetchByKey(context.Background(), "podb", "bye")
	if got, _ := e.Translation("fr"); got != "au revoir" {
		t.Errorf("fr = %q, want au revoir", got)
	}
}

func TestFillProviderError(t *testing.T) {
	store := seededStore()
	boom := errors.New("boom")
	svc := &Service{Store: store, Provider: &fakeProvider{err: boom}, SourceLang: "en"}
	if _, err := svc.Fill(context.Background(), "fr"); !errors.Is(err, boom) {
		t.Errorf("err = %v, want the provider error surfaced", err)
	}
}

func TestFillUnregisteredLanguage(t *testing.T) {
	svc := &Service{Store: &memStore{langs: []string{"fr"}}, Provider: &fakeProvider{}}
	if _, err := svc.Fill(context.Background(), "de"); !errors.Is(err, domain.ErrLanguageNotRegistered) {
		t.Errorf("err = %v, want ErrLanguageNotRegistered", err)
	}
}
