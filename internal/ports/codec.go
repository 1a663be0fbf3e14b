package ports

// ParsedEntry is one block of a catalog file in logical (unescaped) form.
type ParsedEntry struct {
	Ref     string
	Comment string
	Key     string
	Value   string
	Header  bool // empty-key metadata block
	Stale   bool // marked as no longer used
}

// ParseResult carries the parsed blocks plus any metadata fields found in
// the header block (e.g. "Language").
type ParseResult struct {
	Entries  []ParsedEntry
	Metadata map[string]string
}

// Codec parses and serializes one catalog text format. Serialize is the
// exact inverse of Parse's unescaping and emits entries in input order.
type Codec interface {
	Format() string
	Parse(data []byte) (ParseResult, error)
	Serialize(entries []ParsedEntry) ([]byte, error)
}
