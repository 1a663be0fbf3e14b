// Package importer is the merge engine's import half: it reconciles a
// parsed catalog file with the entry store without ever losing stored work.
package importer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/yawaramin/podb/internal/adapters/catalog/registry"
	"github.com/yawaramin/podb/internal/domain"
	"github.com/yawaramin/podb/internal/ports"
)

type Service struct {
	Store ports.EntryStore
	Meta  ports.MetaStore // optional; keeps the last imported header per language
	Reg   *registry.Registry
}

func New(store ports.EntryStore, meta ports.MetaStore, reg *registry.Registry) *Service {
	return &Service{Store: store, Meta: meta, Reg: reg}
}

type ImportArgs struct {
	// Language is the fallback when the catalog header carries no Language
	// field; callers usually pass the filename stem.
	Language string
	Format   string
	Content  []byte
}

type ImportResult struct {
	Language string
	Report   domain.ImportReport
}

type refKey struct{ ref, key string }

// Import parses the catalog, stages every resolved entry, then commits the
// whole set in one batch. A non-empty incoming translation overwrites the
// stored one; an empty incoming translation never erases stored work.
// Comments follow the same rule. Header and stale blocks are skipped.
func (s *Service) Import(ctx context.Context, in ImportArgs) (ImportResult, error) {
	codec, ok := s.Reg.Get(in.Format)
	if !ok {
		return ImportResult{}, errors.New("unsupported format: " + in.Format)
	}
	pr, err := codec.Parse(in.Content)
	if err != nil {
		return ImportResult{}, err
	}
	lang := in.Language
	if l := pr.Metadata["Language"]; l != "" {
		lang = l
	}
	if lang == "" {
		return ImportResult{}, errors.New("cannot determine catalog language")
	}
	if err := s.Store.EnsureLanguage(ctx, lang); err != nil {
		return ImportResult{}, err
	}
	langs, err := s.Store.Languages(ctx)
	if err != nil {
		return ImportResult{}, err
	}

	var (
		report domain.ImportReport
		batch  []*domain.Entry
		staged = map[refKey]*domain.Entry{}
	)
	for _, pe := range pr.Entries {
		if pe.Header || pe.Stale {
			continue
		}
		k := refKey{pe.Ref, pe.Key}
		e := staged[k]
		if e == nil {
			e, err = s.Store.FetchByKey(ctx, pe.Ref, pe.Key)
			if err != nil {
				return ImportResult{}, err
			}
		}
		if e == nil {
			e = &domain.Entry{Ref: pe.Ref, Key: pe.Key, Comment: pe.Comment}
			for _, l := range langs {
				e.SetTranslation(l, "")
			}
			if pe.Value != "" {
				e.SetTranslation(lang, pe.Value)
			}
			staged[k] = e
			batch = append(batch, e)
			report.Created++
			continue
		}
		changed := false
		if pe.Value != "" {
			if cur, _ := e.Translation(lang); cur != pe.Value {
				e.SetTranslation(lang, pe.Value)
				changed = true
			}
		}
		if pe.Comment != "" && pe.Comment != e.Comment {
			e.Comment = pe.Comment
			changed = true
		}
		if !changed {
			report.Unchanged++
			continue
		}
		report.Updated++
		if staged[k] == nil {
			staged[k] = e
			batch = append(batch, e)
		}
	}
	if len(batch) > 0 {
		if err := s.Store.UpsertBatch(ctx, batch); err != nil {
			return ImportResult{}, err
		}
	}
	if s.Meta != nil && len(pr.Metadata) > 0 {
		if err := s.Meta.Set(ctx, "header:"+lang, encodeMetadata(pr.Metadata)); err != nil {
			return ImportResult{}, err
		}
	}
	return ImportResult{Language: lang, Report: report}, nil
}

func encodeMetadata(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, m[k])
	}
	return b.String()
}
