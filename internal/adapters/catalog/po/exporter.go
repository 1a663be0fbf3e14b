package po

import (
	"bytes"
	"strings"

	"github.com/yawaramin/podb/internal/ports"
)

// Serialize emits entries in input order, one block each, separated by blank
// lines. A header entry serializes as an empty msgid with its metadata text
// on continuation lines, one per metadata line.
func (c *Codec) Serialize(entries []ports.ParsedEntry) ([]byte, error) {
	var b bytes.Buffer
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		if e.Header {
			writeLine(&b, e.Stale, `msgid ""`)
			writeLine(&b, e.Stale, `msgstr ""`)
			for _, ln := range headerLines(e.Value) {
				writeLine(&b, e.Stale, `"`+escape(ln)+`"`)
			}
			continue
		}
		if e.Comment != "" {
			for _, ln := range strings.Split(e.Comment, "\n") {
				writeLine(&b, e.Stale, "#. "+ln)
			}
		}
		if e.Ref != "" {
			writeLine(&b, e.Stale, "#: "+e.Ref)
		}
		writeLine(&b, e.Stale, `msgid "`+escape(e.Key)+`"`)
		writeLine(&b, e.Stale, `msgstr "`+escape(e.Value)+`"`)
	}
	return b.Bytes(), nil
}

func writeLine(b *bytes.Buffer, stale bool, line string) {
	if stale {
		b.WriteString("#~ ")
	}
	b.WriteString(line)
	b.WriteByte('\n')
}

// headerLines splits metadata text after each newline, keeping the newline
// with its line so the escaped form round-trips.
func headerLines(s string) []string {
	var out []string
	for len(s) > 0 {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			out = append(out, s)
			break
		}
		out = append(out, s[:i+1])
		s = s[i+1:]
	}
	return out
}

// escape encodes s for a PO quoted literal: backslash, quote, newline, tab.
func escape(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/4)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
