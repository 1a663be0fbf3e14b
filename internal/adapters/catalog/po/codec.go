// Package po implements the gettext-style PO catalog format: blank-line
// separated blocks of comment lines followed by a msgid and a msgstr, with
// adjacent quoted-string lines concatenating into one logical string.
package po

import "fmt"

type Codec struct{}

func New() *Codec { return &Codec{} }

func (c *Codec) Format() string { return "po" }

// ParseError reports malformed catalog text. Nothing is applied to any
// store when one is returned.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("po: line %d: %s", e.Line, e.Reason)
}
