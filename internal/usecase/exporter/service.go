// Package exporter is the merge engine's export half: a pure projection of
// the entry store into catalog text. The store is always authoritative.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/yawaramin/podb/internal/adapters/catalog/registry"
	"github.com/yawaramin/podb/internal/domain"
	"github.com/yawaramin/podb/internal/ports"
)

type Service struct {
	Store ports.EntryStore
	Reg   *registry.Registry
	// Generator names the tool in the synthetic header. Defaults to the
	// module path.
	Generator string
}

func New(store ports.EntryStore, reg *registry.Registry) *Service {
	return &Service{Store: store, Reg: reg}
}

type ExportArgs struct {
	Language string
	Format   string
}

// Export serializes every stored entry for the language in ascending
// (ref, key) order behind a synthetic machine-generated header. Untranslated
// entries emit an empty value so a translator can tell "nothing written yet"
// from intentionally empty text.
func (s *Service) Export(ctx context.Context, a ExportArgs) ([]byte, error) {
	codec, ok := s.Reg.Get(a.Format)
	if !ok {
		return nil, errors.New("no codec for format: " + a.Format)
	}
	langs, err := s.Store.Languages(ctx)
	if err != nil {
		return nil, err
	}
	registered := false
	for _, l := range langs {
		if l == a.Language {
			registered = true
			break
		}
	}
	if !registered {
		return nil, fmt.Errorf("%s: %w", a.Language, domain.ErrLanguageNotRegistered)
	}
	entries, err := s.Store.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Ref != entries[j].Ref {
			return entries[i].Ref < entries[j].Ref
		}
		return entries[i].Key < entries[j].Key
	})
	out := make([]ports.ParsedEntry, 0, len(entries)+1)
	out = append(out, ports.ParsedEntry{Header: true, Value: s.header(a.Language)})
	for _, e := range entries {
		out = append(out, ports.ParsedEntry{
			Ref:     e.Ref,
			Comment: e.Comment,
			Key:     e.Key,
			Value:   e.Translations[a.Language],
		})
	}
	return codec.Serialize(out)
}

func (s *Service) header(lang string) string {
	gen := s.Generator
	if gen == "" {
		gen = "github.com/yawaramin/podb"
	}
	return "MIME-Version: 1.0\n" +
		"Content-Type: text/plain; charset=UTF-8\n" +
		"Content-Transfer-Encoding: 8bit\n" +
		"X-Generator: " + gen + "\n" +
		"Language: " + lang + "\n"
}
