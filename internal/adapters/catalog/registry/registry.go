// Package registry indexes catalog codecs by format name so the import and
// export services stay format-agnostic.
package registry

import "github.com/yawaramin/podb/internal/ports"

type Registry struct {
	byFormat map[string]ports.Codec
}

func New() *Registry { return &Registry{byFormat: map[string]ports.Codec{}} }

func (r *Registry) Register(c ports.Codec) { r.byFormat[c.Format()] = c }

func (r *Registry) Get(format string) (ports.Codec, bool) {
	c, ok := r.byFormat[format]
	return c, ok
}
