package toon

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Keywords recognized by scalar decoding. Bare strings matching one of
// these must be quoted on output.
const (
	kwNull  = "null"
	kwTrue  = "true"
	kwFalse = "false"
)

// needsQuoting reports whether a string cannot appear bare: it is
// empty, would decode as a non-string scalar, carries leading or
// trailing whitespace, contains a structural character, or starts with
// a character that is structural at line start.
func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	if decodesAsNonString(s) {
		return true
	}
	if first, _ := utf8.DecodeRuneInString(s); unicode.IsSpace(first) || first == '-' || first == '\'' {
		return true
	}
	if last, _ := utf8.DecodeLastRuneInString(s); unicode.IsSpace(last) {
		return true
	}
	return strings.ContainsAny(s, ":,[]{}()\"\n\r\t")
}

// decodesAsNonString reports whether the scalar decoder would turn the
// bare token s into something other than a string.
func decodesAsNonString(s string) bool {
	switch s {
	case kwNull, kwTrue, kwFalse:
		return true
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return true
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	return false
}

// quoteString returns s in double quotes with escapes applied.
func quoteString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&sb, `\u%04x`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// scalarText returns the emitted form of a scalar value, quoting
// strings per needsQuoting. Panics on container kinds; callers route
// containers elsewhere.
func scalarText(v *Value) string {
	switch v.Kind() {
	case KindNull:
		return kwNull
	case KindBool:
		if v.boolVal {
			return kwTrue
		}
		return kwFalse
	case KindInt:
		return strconv.FormatInt(v.intVal, 10)
	case KindFloat:
		return formatFloat(v.floatVal)
	case KindStr:
		if needsQuoting(v.strVal) {
			return quoteString(v.strVal)
		}
		return v.strVal
	default:
		panic("toon: scalarText on " + v.Kind().String())
	}
}

// formatFloat renders the shortest representation that parses back to
// an equal value, keeping floats distinguishable from integers.
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Inf"
	}
	if math.IsInf(f, -1) {
		return "-Inf"
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// keyText returns the emitted form of a mapping key.
func keyText(k string) string {
	if needsQuoting(k) {
		return quoteString(k)
	}
	return k
}

// decodeScalar turns a trimmed token back into a value. Precedence is
// fixed: quoted string, boolean keyword, null keyword, integer,
// floating-point, bare string.
func decodeScalar(tok string, lineNum int) (*Value, error) {
	if strings.HasPrefix(tok, `"`) {
		s, rest, err := unquote(tok, lineNum)
		if err != nil {
			return nil, err
		}
		if rest != "" {
			return nil, parseErrf(ErrSyntax, lineNum, "unexpected text after quoted string: %q", rest)
		}
		return Str(s), nil
	}
	switch tok {
	case kwTrue:
		return Bool(true), nil
	case kwFalse:
		return Bool(false), nil
	case kwNull:
		return Null(), nil
	}
	if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return Int(i), nil
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return Float(f), nil
	}
	return Str(tok), nil
}

// unquote decodes a leading double-quoted string from s, returning the
// decoded text and the remainder after the closing quote.
func unquote(s string, lineNum int) (string, string, error) {
	if len(s) < 2 || s[0] != '"' {
		return "", "", parseErrf(ErrSyntax, lineNum, "expected quoted string")
	}
	var sb strings.Builder
	i := 1
	for i < len(s) {
		c := s[i]
		switch c {
		case '"':
			return sb.String(), s[i+1:], nil
		case '\\':
			if i+1 >= len(s) {
				return "", "", parseErrf(ErrSyntax, lineNum, "unterminated escape sequence")
			}
			i++
			switch s[i] {
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'u':
				if i+4 >= len(s) {
					return "", "", parseErrf(ErrSyntax, lineNum, "truncated \\u escape")
				}
				n, err := strconv.ParseUint(s[i+1:i+5], 16, 32)
				if err != nil {
					return "", "", parseErrf(ErrSyntax, lineNum, "invalid \\u escape %q", s[i+1:i+5])
				}
				sb.WriteRune(rune(n))
				i += 4
			default:
				return "", "", parseErrf(ErrSyntax, lineNum, "invalid escape \\%c", s[i])
			}
			i++
		default:
			_, size := utf8.DecodeRuneInString(s[i:])
			sb.WriteString(s[i : i+size])
			i += size
		}
	}
	return "", "", parseErrf(ErrSyntax, lineNum, "unterminated quoted string")
}

// splitCells splits a table row on top-level commas; commas inside
// quoted values are literal. Cells are returned trimmed.
func splitCells(s string) []string {
	var cells []string
	var cur strings.Builder
	inQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuote && c == '\\' && i+1 < len(s):
			cur.WriteByte(c)
			i++
			cur.WriteByte(s[i])
		case c == '"':
			inQuote = !inQuote
			cur.WriteByte(c)
		case c == ',' && !inQuote:
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	cells = append(cells, strings.TrimSpace(cur.String()))
	return cells
}
