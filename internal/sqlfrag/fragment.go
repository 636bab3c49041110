// Package sqlfrag accumulates SQL text together with its positional bind
// parameters. Parameters are always "?" markers; callers rebind them for the
// target driver at execution time.
package sqlfrag

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInsertPlaceholder is returned when Insert is handed text that carries a
// "?" marker, or text that changes how many existing markers are counted
// (an unbalanced quote). Either way the parameters would be misaligned.
var ErrInsertPlaceholder = errors.New("inserted text must not contain parameter markers")

// IndexError reports an Insert position outside the current text.
type IndexError struct {
	Pos int
	Len int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("insert position %d out of range [0, %d]", e.Pos, e.Len)
}

// Fragment is a not-yet-executed SQL statement (or part of one). It is owned
// by a single caller and is not safe for concurrent use.
type Fragment struct {
	sql    strings.Builder
	params []any
}

// New starts a fragment with the given text and parameters.
func New(sql string, params ...any) *Fragment {
	f := &Fragment{}
	return f.Append(sql, params...)
}

// Append adds literal SQL and its parameters in lockstep.
func (f *Fragment) Append(sql string, params ...any) *Fragment {
	f.sql.WriteString(sql)
	f.params = append(f.params, params...)
	return f
}

// AppendFragment appends other's text and parameters. A nil fragment is a no-op.
func (f *Fragment) AppendFragment(other *Fragment) *Fragment {
	if other == nil {
		return f
	}
	f.sql.WriteString(other.sql.String())
	f.params = append(f.params, other.params...)
	return f
}

// AddParams appends parameters without touching the text. Used by generators
// that write the markers and values separately.
func (f *Fragment) AddParams(params ...any) *Fragment {
	f.params = append(f.params, params...)
	return f
}

// Insert splices text at byte offset pos. pos may equal the text length.
func (f *Fragment) Insert(pos int, text string) error {
	current := f.sql.String()
	if pos < 0 || pos > len(current) {
		return &IndexError{Pos: pos, Len: len(current)}
	}
	if countMarkers(text) > 0 {
		return ErrInsertPlaceholder
	}
	spliced := current[:pos] + text + current[pos:]
	if countMarkers(spliced) != countMarkers(current) {
		// an unbalanced quote in text swallowed or exposed existing markers
		return ErrInsertPlaceholder
	}

	f.sql.Reset()
	f.sql.WriteString(spliced)
	return nil
}

// SQL returns the accumulated text.
func (f *Fragment) SQL() string {
	return f.sql.String()
}

// Params returns a copy of the parameters in marker order.
func (f *Fragment) Params() []any {
	out := make([]any, len(f.params))
	copy(out, f.params)
	return out
}

// Len returns the length of the accumulated text in bytes.
func (f *Fragment) Len() int {
	return f.sql.Len()
}

// IsEmpty reports whether the fragment holds no text.
func (f *Fragment) IsEmpty() bool {
	return strings.TrimSpace(f.sql.String()) == ""
}

// Clone returns an independent copy.
func (f *Fragment) Clone() *Fragment {
	c := &Fragment{}
	c.sql.WriteString(f.sql.String())
	c.params = f.Params()
	return c
}

// Placeholders counts "?" markers outside quoted literals and identifiers.
func (f *Fragment) Placeholders() int {
	return countMarkers(f.sql.String())
}

// Validate checks that the marker count matches the parameter count.
func (f *Fragment) Validate() error {
	if n := f.Placeholders(); n != len(f.params) {
		return fmt.Errorf("fragment has %d parameter markers but %d parameters", n, len(f.params))
	}
	return nil
}

// String renders the text followed by the parameters, for logs.
func (f *Fragment) String() string {
	if len(f.params) == 0 {
		return f.sql.String()
	}
	return fmt.Sprintf("%s\n-- params: %v", f.sql.String(), f.params)
}

// countMarkers skips '...' literals, "..." and [...] identifiers. Doubled
// quote characters inside a literal are handled by re-entering the literal.
func countMarkers(s string) int {
	n := 0
	var closing byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if closing != 0 {
			if c == closing {
				closing = 0
			}
			continue
		}
		switch c {
		case '\'':
			closing = '\''
		case '"':
			closing = '"'
		case '[':
			closing = ']'
		case '?':
			n++
		}
	}
	return n
}
