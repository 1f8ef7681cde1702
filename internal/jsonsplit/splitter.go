// Package jsonsplit extracts complete top-level JSON objects out of a byte
// stream without parsing the full document.
//
// Listener exports are concatenated object literals, not a JSON array, and a
// single file can be larger than memory. The splitter therefore tracks only
// string state and brace depth, one rune at a time, and emits a candidate
// record each time depth returns to zero.
//
// Known approximation: this is not a JSON grammar. Braces are the only
// structure tracked (arrays inside objects are fine, bare top-level arrays
// are not), and unescaped control characters inside strings will confuse
// string detection. Well-formed object-per-record input is a precondition.
package jsonsplit

import (
	"bufio"
	"io"
	"strings"
)

// Splitter yields complete top-level JSON objects from a reader, in arrival
// order. It is a forward-only, non-restartable sequence.
type Splitter struct {
	r *bufio.Reader

	buf      strings.Builder
	depth    int
	inString bool
	escaped  bool
}

// New returns a Splitter reading from r.
func New(r io.Reader) *Splitter {
	return &Splitter{r: bufio.NewReader(r)}
}

// Next returns the next complete top-level object as a raw JSON string.
//
// It returns io.EOF when the stream ends cleanly; any other error is a read
// failure from the underlying stream. Bytes between objects (whitespace,
// commas, array brackets from sloppy producers) are discarded.
func (s *Splitter) Next() (string, error) {
	for {
		c, _, err := s.r.ReadRune()
		if err != nil {
			if err == io.EOF && strings.TrimSpace(s.buf.String()) != "" && s.depth == 0 {
				// Trailing complete object not yet emitted.
				out := s.buf.String()
				s.buf.Reset()
				return out, nil
			}
			return "", err
		}

		// Don't accumulate inter-record separators.
		if s.depth == 0 && !s.inString && c != '{' {
			continue
		}

		s.buf.WriteRune(c)

		if s.inString {
			switch {
			case s.escaped:
				s.escaped = false
			case c == '\\':
				s.escaped = true
			case c == '"':
				s.inString = false
			}
			continue
		}

		switch c {
		case '"':
			s.inString = true
		case '{':
			s.depth++
		case '}':
			s.depth--
		}

		if s.depth == 0 {
			out := s.buf.String()
			s.buf.Reset()
			if strings.TrimSpace(out) == "" {
				continue
			}
			return out, nil
		}
	}
}
