package query

import (
	"fmt"
	"strings"
)

// ParseError reports the offending token, its byte position, and what the
// grammar expected there. Parsing never partially succeeds: either a
// complete expression is produced or a ParseError is returned.
type ParseError struct {
	Pos      int
	Found    string
	Expected []string
	Message  string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse: ")
	if e.Message != "" {
		b.WriteString(e.Message)
	} else {
		b.WriteString("syntax error")
	}
	if e.Pos >= 0 {
		fmt.Fprintf(&b, " at position %d", e.Pos)
	}
	if e.Found != "" {
		fmt.Fprintf(&b, " (found %q)", e.Found)
	}
	if len(e.Expected) > 0 {
		fmt.Fprintf(&b, ", expected %s", strings.Join(e.Expected, " or "))
	}
	return b.String()
}

func errExpected(t Token, expected ...string) *ParseError {
	return &ParseError{Pos: t.Pos, Found: t.Value, Expected: expected}
}
