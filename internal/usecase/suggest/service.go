// Package suggest pre-fills untranslated entries with machine-translation
// candidates. Suggestions land in the store like imported translations, so
// a translator reviews them in the next export pass.
package suggest

import (
	"context"
	"fmt"

	"github.com/yawaramin/podb/internal/domain"
	"github.com/yawaramin/podb/internal/ports"
)

type Service struct {
	Store      ports.EntryStore
	Cache      ports.SuggestionCache // optional
	Provider   ports.Provider
	SourceLang string
	Model      string
}

type FillResult struct {
	Filled  int
	Cached  int // subset of Filled answered from the cache
	Skipped int
}

// Fill asks the provider for a candidate for every untranslated entry in
// lang, consulting the cache first. Each filled entry persists immediately;
// a provider failure stops the pass with the progress so far already stored.
func (s *Service) Fill(ctx context.Context, lang string) (FillResult, error) {
	var res FillResult
	langs, err := s.Store.Languages(ctx)
	if err != nil {
		return res, err
	}
	registered := false
	for _, l := range langs {
		if l == lang {
			registered = true
			break
		}
	}
	if !registered {
		return res, fmt.Errorf("%s: %w", lang, domain.ErrLanguageNotRegistered)
	}
	entries, err := s.Store.FetchAll(ctx)
	if err != nil {
		return res, err
	}
	for _, e := range entries {
		if _, ok := e.Translation(lang); ok {
			res.Skipped++
			continue
		}
		var (
			text string
			hit  bool
		)
		if s.Cache != nil {
			text, hit, err = s.Cache.Get(ctx, e.Key, s.SourceLang, lang, s.Model)
			if err != nil {
				return res, err
			}
		}
		if !hit {
			text, err = s.Provider.Translate(ctx,
				ports.Segment{Ref: e.Ref, Key: e.Key, Comment: e.Comment},
				ports.TranslateParams{SourceLang: s.SourceLang, TargetLang: lang, Model: s.Model})
			if err != nil {
				return res, err
			}
			if s.Cache != nil && text != "" {
				if err := s.Cache.Put(ctx, e.Key, s.SourceLang, lang, s.Model, text); err != nil {
					return res, err
				}
			}
		}
		if text == "" {
			res.Skipped++
			continue
		}
		e.SetTranslation(lang, text)
		if err := s.Store.Upsert(ctx, e); err != nil {
			return res, err
		}
		res.Filled++
		if hit {
			res.Cached++
		}
	}
	return res, nil
}
