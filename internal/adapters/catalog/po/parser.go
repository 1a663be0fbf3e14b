package po

import (
	"bufio"
	"bytes"
	"errors"
	"strings"

	"github.com/yawaramin/podb/internal/ports"
)

const (
	fieldNone = iota
	fieldMsgid
	fieldMsgstr
)

func (c *Codec) Parse(data []byte) (ports.ParseResult, error) {
	data = stripBOM(data)
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		res    ports.ParseResult
		cur    ports.ParsedEntry
		field  = fieldNone
		hasKey bool
		sawHdr bool
		line   int
	)
	flush := func() {
		if hasKey {
			if cur.Key == "" && !sawHdr && !cur.Stale {
				cur.Header = true
				sawHdr = true
				res.Metadata = parseMetadata(cur.Value)
			}
			res.Entries = append(res.Entries, cur)
		}
		cur = ports.ParsedEntry{}
		field = fieldNone
		hasKey = false
	}

	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			flush()
			continue
		}
		if strings.HasPrefix(text, "#~") {
			cur.Stale = true
			text = strings.TrimSpace(text[2:])
			if text == "" {
				continue
			}
		}
		switch {
		case strings.HasPrefix(text, "#:"):
			cur.Ref = strings.TrimSpace(text[2:])
		case strings.HasPrefix(text, "#."):
			comment := strings.TrimSpace(text[2:])
			if cur.Comment != "" {
				cur.Comment += "\n"
			}
			cur.Comment += comment
		case strings.HasPrefix(text, "#"):
			// other comment kinds (translator remarks, flags) are tolerated
		case strings.HasPrefix(text, "msgid"):
			if field != fieldNone {
				return ports.ParseResult{}, &ParseError{Line: line, Reason: "msgid appears twice in one block"}
			}
			s, err := unquote(strings.TrimSpace(text[len("msgid"):]))
			if err != nil {
				return ports.ParseResult{}, &ParseError{Line: line, Reason: err.Error()}
			}
			cur.Key = s
			field = fieldMsgid
			hasKey = true
		case strings.HasPrefix(text, "msgstr"):
			if field == fieldNone {
				return ports.ParseResult{}, &ParseError{Line: line, Reason: "msgstr without a preceding msgid"}
			}
			if field == fieldMsgstr {
				return ports.ParseResult{}, &ParseError{Line: line, Reason: "msgstr appears twice in one block"}
			}
			s, err := unquote(strings.TrimSpace(text[len("msgstr"):]))
			if err != nil {
				return ports.ParseResult{}, &ParseError{Line: line, Reason: err.Error()}
			}
			cur.Value = s
			field = fieldMsgstr
		case strings.HasPrefix(text, `"`):
			if field == fieldNone {
				return ports.ParseResult{}, &ParseError{Line: line, Reason: "string continuation without msgid"}
			}
			s, err := unquote(text)
			if err != nil {
				return ports.ParseResult{}, &ParseError{Line: line, Reason: err.Error()}
			}
			if field == fieldMsgid {
				cur.Key += s
			} else {
				cur.Value += s
			}
		default:
			return ports.ParseResult{}, &ParseError{Line: line, Reason: "unrecognized line"}
		}
	}
	if err := sc.Err(); err != nil {
		return ports.ParseResult{}, err
	}
	flush()
	return res, nil
}

// unquote decodes one double-quoted PO string literal, handling the \\, \",
// \n and \t escapes. Unknown escapes pass through verbatim.
func unquote(s string) (string, error) {
	if len(s) < 1 || s[0] != '"' {
		return "", errors.New("expected a quoted string")
	}
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '"':
			if rest := strings.TrimSpace(s[i+1:]); rest != "" {
				return "", errors.New("trailing characters after closing quote")
			}
			return b.String(), nil
		case '\\':
			i++
			if i >= len(s) {
				return "", errors.New("unterminated string")
			}
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				b.WriteByte('\\')
				b.WriteByte(s[i])
			}
		default:
			b.WriteByte(s[i])
		}
	}
	return "", errors.New("unterminated string")
}

// parseMetadata splits a header value into "Name: value" fields.
func parseMetadata(header string) map[string]string {
	m := map[string]string{}
	for _, ln := range strings.Split(header, "\n") {
		k, v, ok := strings.Cut(ln, ":")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		m[k] = strings.TrimSpace(v)
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

func stripBOM(b []byte) []byte {
	bom := []byte{0xEF, 0xBB, 0xBF}
	if len(b) >= 3 && bytes.Equal(b[:3], bom) {
		return b[3:]
	}
	return b
}
