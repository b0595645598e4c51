package toon

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Error kinds surfaced by the codec. Test with errors.Is.
var (
	// ErrCyclicStructure is returned by Emit when the value graph
	// contains a cycle.
	ErrCyclicStructure = errors.New("cyclic structure")

	// ErrIndentation is returned by Parse for lines whose leading
	// spaces are not a multiple of two, contain tabs, or skip an
	// indentation level.
	ErrIndentation = errors.New("indentation error")

	// ErrSyntax is returned by Parse for grammar violations not
	// covered by a more specific kind.
	ErrSyntax = errors.New("syntax error")

	// ErrMalformedTableRow is returned by Parse when a table row's
	// field count does not match the header's field list.
	ErrMalformedTableRow = errors.New("malformed table row")

	// ErrInvalidTableMarker is returned by Parse when a table header
	// carries the set marker; set items are unordered and table rows
	// are positional.
	ErrInvalidTableMarker = errors.New("invalid table marker")
)

// ParseError is a grammar violation at a specific source line.
type ParseError struct {
	Line int // 1-based line number in the input
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Line returns the 1-based line number carried by a parse error,
// or 0 if err is not a parse error.
func Line(err error) int {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Line
	}
	return 0
}

// parseErrf builds a line-located error marked with the given kind.
func parseErrf(kind error, line int, format string, args ...any) error {
	return errors.Mark(&ParseError{Line: line, Msg: fmt.Sprintf(format, args...)}, kind)
}
