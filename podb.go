// Package podb keeps translated message catalogs in a SQLite database and
// exchanges them with translators as PO files: it reads catalogs on open,
// resolves messages through per-language accessors in between, and writes
// catalogs back on close.
package podb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"

	"github.com/yawaramin/podb/internal/adapters/catalog/po"
	"github.com/yawaramin/podb/internal/adapters/catalog/registry"
	dbsqlite "github.com/yawaramin/podb/internal/adapters/db/sqlite"
	"github.com/yawaramin/podb/internal/ports"
	"github.com/yawaramin/podb/internal/usecase/exporter"
	"github.com/yawaramin/podb/internal/usecase/importer"
	"github.com/yawaramin/podb/internal/usecase/suggest"
)

// DefaultRef groups messages resolved without an explicit ref.
const DefaultRef = "podb"

const catalogExt = ".po"

type Options struct {
	Workdir  string // catalog directory, default "po"
	Filename string // database filename inside Workdir, default "po.db"
	Missing  string // marker prefixed to untranslated lookups, default "🇺🇸 "
	BaseLang string // language whose keys are the message text, default "en"

	// Provider enables machine-translation suggestions. Optional.
	Provider      ports.Provider
	ProviderLang  string // source language reported to the provider, defaults to BaseLang
	ProviderModel string
}

type DB struct {
	opts  Options
	sqldb *sql.DB
	store *dbsqlite.EntryRepo
	reg   *registry.Registry
	imp   *importer.Service
	exp   *exporter.Service
	sug   *suggest.Service

	langs map[string]*Lang
	order []string // registration order, drives export on Close
}

// Open creates or opens the catalog database under opts.Workdir and imports
// every catalog file found there. The caller must Close to flush catalogs
// back to disk.
func Open(opts Options) (*DB, error) {
	if opts.Workdir == "" {
		opts.Workdir = "po"
	}
	if opts.Filename == "" {
		opts.Filename = "po.db"
	}
	if opts.Missing == "" {
		opts.Missing = "🇺🇸 "
	}
	if opts.BaseLang == "" {
		opts.BaseLang = "en"
	}
	sqldb, err := dbsqlite.Init(filepath.Join(opts.Workdir, opts.Filename))
	if err != nil {
		return nil, err
	}
	reg := registry.New()
	reg.Register(po.New())
	store := dbsqlite.NewEntryRepo(sqldb)
	meta := dbsqlite.NewMetaRepo(sqldb)
	d := &DB{
		opts:  opts,
		sqldb: sqldb,
		store: store,
		reg:   reg,
		imp:   importer.New(store, meta, reg),
		exp:   exporter.New(store, reg),
		langs: map[string]*Lang{},
	}
	if opts.Provider != nil {
		src := opts.ProviderLang
		if src == "" {
			src = opts.BaseLang
		}
		d.sug = &suggest.Service{
			Store:      store,
			Cache:      dbsqlite.NewSuggestCacheRepo(sqldb),
			Provider:   opts.Provider,
			SourceLang: src,
			Model:      opts.ProviderModel,
		}
	}
	if err := d.readCatalogs(context.Background()); err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) readCatalogs(ctx context.Context) error {
	entries, err := os.ReadDir(d.opts.Workdir)
	if err != nil {
		return fmt.Errorf("read workdir: %w", err)
	}
	for _, de := range entries {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, catalogExt) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(d.opts.Workdir, name))
		if err != nil {
			return err
		}
		stem := strings.TrimSuffix(name, catalogExt)
		if _, err := d.imp.Import(ctx, importer.ImportArgs{Language: stem, Format: "po", Content: data}); err != nil {
			return fmt.Errorf("import %s: %w", name, err)
		}
	}
	return nil
}

// Lang registers code and returns its accessor. Repeated calls return the
// cached accessor. The first registration validates the tag, ensures the
// store slot, and imports <code>.po from the workdir when present. A tag
// with a parent (pt-BR) also registers the parent as its fallback.
func (d *DB) Lang(ctx context.Context, code string) (*Lang, error) {
	if l, ok := d.langs[code]; ok {
		return l, nil
	}
	if code == d.opts.BaseLang {
		l := &Lang{Code: code, db: d, base: true}
		d.langs[code] = l
		return l, nil
	}
	tag, err := language.Parse(code)
	if err != nil {
		return nil, fmt.Errorf("language %q: %w", code, err)
	}
	if err := d.store.EnsureLanguage(ctx, code); err != nil {
		return nil, err
	}
	path := filepath.Join(d.opts.Workdir, code+catalogExt)
	if data, err := os.ReadFile(path); err == nil {
		if _, err := d.imp.Import(ctx, importer.ImportArgs{Language: code, Format: "po", Content: data}); err != nil {
			return nil, fmt.Errorf("import %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	l := &Lang{Code: code, db: d}
	if parent := tag.Parent(); parent != language.Und {
		backup, err := d.Lang(ctx, parent.String())
		if err != nil {
			return nil, err
		}
		l.backup = backup
	}
	d.langs[code] = l
	d.order = append(d.order, code)
	return l, nil
}

// SuggestResult counts what one machine-translation pass did.
type SuggestResult struct {
	Filled  int
	Cached  int
	Skipped int
}

// Suggest machine-fills untranslated entries for a registered language.
// Requires Options.Provider.
func (d *DB) Suggest(ctx context.Context, code string) (SuggestResult, error) {
	if d.sug == nil {
		return SuggestResult{}, errors.New("no machine-translation provider configured")
	}
	res, err := d.sug.Fill(ctx, code)
	return SuggestResult{Filled: res.Filled, Cached: res.Cached, Skipped: res.Skipped}, err
}

// Close exports one catalog file per registered language and closes the
// database. Files are replaced atomically via a temp file and rename.
func (d *DB) Close(ctx context.Context) error {
	var firstErr error
	for _, code := range d.order {
		text, err := d.exp.Export(ctx, exporter.ExportArgs{Language: code, Format: "po"})
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("export %s: %w", code, err)
			}
			continue
		}
		if err := writeFileAtomic(filepath.Join(d.opts.Workdir, code+catalogExt), text); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("write %s catalog: %w", code, err)
			}
		}
	}
	if err := d.sqldb.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".po-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
