package toon

import (
	"strconv"
	"strings"
)

// line is one non-blank input line with its indentation depth measured
// in units of two spaces.
type line struct {
	num    int // 1-based source line number
	indent int
	text   string
}

// Parse reconstructs a value from TOON text. Grammar violations fail
// with one of ErrIndentation, ErrSyntax, ErrMalformedTableRow or
// ErrInvalidTableMarker, each carrying the offending line number
// (see Line). Empty input parses as an empty mapping.
func Parse(input string) (*Value, error) {
	lines, err := splitLines(input)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return Map(), nil
	}
	p := &parser{lines: lines}
	v, err := p.parseDocument(0)
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.lines) {
		return nil, parseErrf(ErrSyntax, p.lines[p.pos].num, "unexpected content after document value")
	}
	return v, nil
}

// splitLines drops blank lines and measures indentation. Tabs in
// indentation and odd leading-space counts are indentation errors;
// level skips are caught during descent where the expected depth is
// known.
func splitLines(input string) ([]line, error) {
	var lines []line
	for i, raw := range strings.Split(input, "\n") {
		raw = strings.TrimRight(raw, "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		spaces := 0
		for spaces < len(raw) && raw[spaces] == ' ' {
			spaces++
		}
		if spaces < len(raw) && raw[spaces] == '\t' {
			return nil, parseErrf(ErrIndentation, i+1, "tab in indentation")
		}
		if spaces%2 != 0 {
			return nil, parseErrf(ErrIndentation, i+1, "indentation of %d spaces is not a multiple of 2", spaces)
		}
		lines = append(lines, line{num: i + 1, indent: spaces / 2, text: raw[spaces:]})
	}
	return lines, nil
}

type parser struct {
	lines []line
	pos   int
}

func (p *parser) cur() (line, bool) {
	if p.pos >= len(p.lines) {
		return line{}, false
	}
	return p.lines[p.pos], true
}

// parseDocument parses a keyless value at the given depth: a bare
// scalar, a keyless sequence header, or mapping entries. Used for the
// document root and for block items under a bare "-".
func (p *parser) parseDocument(indent int) (*Value, error) {
	l, ok := p.cur()
	if !ok {
		return Map(), nil
	}
	if l.indent > indent {
		return nil, parseErrf(ErrIndentation, l.num, "unexpected indent")
	}

	h, err := parseHead(l.text, l.num)
	if err != nil {
		return nil, err
	}
	if h.isSeq && h.key == "" && !h.quotedKey {
		p.pos++
		return p.parseSequenceBody(h, l, indent)
	}
	if !h.hasColon {
		// Bare scalar: legal only as a whole document value.
		p.pos++
		return decodeScalar(l.text, l.num)
	}
	return p.parseMapping(indent)
}

// parseMapping parses consecutive "key: ..." lines at the given depth
// into a mapping.
func (p *parser) parseMapping(indent int) (*Value, error) {
	var entries []Entry
	for {
		l, ok := p.cur()
		if !ok || l.indent < indent {
			break
		}
		if l.indent > indent {
			return nil, parseErrf(ErrIndentation, l.num, "unexpected indent")
		}

		h, err := parseHead(l.text, l.num)
		if err != nil {
			return nil, err
		}
		if !h.hasColon {
			return nil, parseErrf(ErrSyntax, l.num, "expected key, got bare value %q", l.text)
		}
		if h.isSeq && h.key == "" && !h.quotedKey {
			return nil, parseErrf(ErrSyntax, l.num, "sequence header requires a key here")
		}
		if hasKey(entries, h.key) {
			return nil, parseErrf(ErrSyntax, l.num, "duplicate key %q", h.key)
		}
		p.pos++

		var v *Value
		switch {
		case h.isSeq:
			v, err = p.parseSequenceBody(h, l, indent)
		case h.rest != "":
			v, err = decodeScalar(h.rest, l.num)
		default:
			v, err = p.parseNestedMapping(indent)
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Key: h.key, Value: v})
	}
	return Map(entries...), nil
}

// parseNestedMapping parses the block under a "key:" line. No deeper
// lines means an empty mapping.
func (p *parser) parseNestedMapping(parentIndent int) (*Value, error) {
	l, ok := p.cur()
	if !ok || l.indent <= parentIndent {
		return Map(), nil
	}
	if l.indent > parentIndent+1 {
		return nil, parseErrf(ErrIndentation, l.num, "indent jumps past parent level")
	}
	return p.parseMapping(parentIndent + 1)
}

// parseSequenceBody parses the rows or items following a sequence
// header that was found on hdr at headerIndent.
func (p *parser) parseSequenceBody(h head, hdr line, headerIndent int) (*Value, error) {
	if h.rest != "" {
		return nil, parseErrf(ErrSyntax, hdr.num, "unexpected text after sequence header")
	}
	if h.hasFields {
		return p.parseTableRows(h, hdr, headerIndent)
	}
	return p.parseBlockItems(h, hdr, headerIndent)
}

// parseTableRows reads exactly N comma-joined rows one level below the
// header.
func (p *parser) parseTableRows(h head, hdr line, headerIndent int) (*Value, error) {
	items := make([]*Value, 0, h.count)
	for i := 0; i < h.count; i++ {
		l, ok := p.cur()
		if !ok || l.indent <= headerIndent {
			return nil, parseErrf(ErrSyntax, hdr.num, "expected %d table rows, got %d", h.count, i)
		}
		if l.indent > headerIndent+1 {
			return nil, parseErrf(ErrIndentation, l.num, "indent jumps past parent level")
		}
		p.pos++

		cells := splitCells(l.text)
		if len(cells) != len(h.fields) {
			return nil, parseErrf(ErrMalformedTableRow, l.num,
				"row has %d values, header lists %d fields", len(cells), len(h.fields))
		}
		entries := make([]Entry, len(cells))
		for j, cell := range cells {
			v, err := decodeScalar(cell, l.num)
			if err != nil {
				return nil, err
			}
			entries[j] = Entry{Key: h.fields[j], Value: v}
		}
		items = append(items, Map(entries...))
	}
	return Sequence(h.origin, items...), nil
}

// parseBlockItems reads exactly N "-" items one level below the header.
func (p *parser) parseBlockItems(h head, hdr line, headerIndent int) (*Value, error) {
	items := make([]*Value, 0, h.count)
	for i := 0; i < h.count; i++ {
		l, ok := p.cur()
		if !ok || l.indent <= headerIndent {
			return nil, parseErrf(ErrSyntax, hdr.num, "expected %d sequence items, got %d", h.count, i)
		}
		if l.indent > headerIndent+1 {
			return nil, parseErrf(ErrIndentation, l.num, "indent jumps past parent level")
		}

		switch {
		case l.text == "-":
			p.pos++
			item, err := p.parseItemBlock(headerIndent + 1)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		case strings.HasPrefix(l.text, "- "):
			p.pos++
			item, err := decodeScalar(strings.TrimSpace(l.text[2:]), l.num)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		default:
			return nil, parseErrf(ErrSyntax, l.num, "expected sequence item, got %q", l.text)
		}
	}
	return Sequence(h.origin, items...), nil
}

// parseItemBlock parses the sub-document under a bare "-" line. A "-"
// with no deeper block is an empty mapping item.
func (p *parser) parseItemBlock(itemIndent int) (*Value, error) {
	l, ok := p.cur()
	if !ok || l.indent <= itemIndent {
		return Map(), nil
	}
	if l.indent > itemIndent+1 {
		return nil, parseErrf(ErrIndentation, l.num, "indent jumps past parent level")
	}
	v, err := p.parseDocument(itemIndent + 1)
	if err != nil {
		return nil, err
	}
	if next, ok := p.cur(); ok && next.indent > itemIndent {
		return nil, parseErrf(ErrSyntax, next.num, "unexpected content after sequence item")
	}
	return v, nil
}

// ============================================================
// Line head parsing
// ============================================================

// head is the classified form of a line's leading content: a plain
// key, a sequence header with marker and optional field list, or a
// bare scalar (hasColon false).
type head struct {
	key       string
	quotedKey bool
	hasColon  bool
	rest      string // trimmed text after the colon

	isSeq     bool
	origin    Origin
	count     int
	fields    []string
	hasFields bool
}

// parseHead classifies one line. It never consumes parser state; the
// caller decides how to treat the result (mapping entry, sequence
// header, or bare scalar at document root).
func parseHead(text string, lineNum int) (head, error) {
	var h head

	rest := text
	if strings.HasPrefix(rest, `"`) {
		key, after, err := unquote(rest, lineNum)
		if err != nil {
			return h, err
		}
		h.key = key
		h.quotedKey = true
		rest = after
	} else {
		i := strings.IndexAny(rest, ":[({")
		if i < 0 {
			return h, nil // bare scalar
		}
		h.key = rest[:i]
		rest = rest[i:]
	}

	if rest == "" {
		return head{}, nil // bare scalar such as a quoted string value
	}

	if rest[0] == ':' {
		if !h.quotedKey && h.key == "" {
			// A leading colon with no key is not a valid entry;
			// treat the line as a bare scalar.
			return head{}, nil
		}
		h.hasColon = true
		h.rest = strings.TrimSpace(rest[1:])
		return h, nil
	}

	// Sequence marker: [N], (N) or {N}, optionally followed by a
	// field list {f1,f2} for table form.
	var want byte
	switch rest[0] {
	case '[':
		h.origin, want = OriginList, ']'
	case '(':
		h.origin, want = OriginTuple, ')'
	case '{':
		h.origin, want = OriginSet, '}'
	default:
		return head{}, nil // bare scalar
	}
	end := strings.IndexByte(rest, want)
	if end < 0 {
		if h.quotedKey {
			return h, parseErrf(ErrSyntax, lineNum, "unterminated sequence marker")
		}
		return head{}, nil // bare scalar that happens to contain a bracket
	}
	count, err := strconv.Atoi(rest[1:end])
	if err != nil || count < 0 {
		if h.quotedKey {
			return h, parseErrf(ErrSyntax, lineNum, "invalid sequence count %q", rest[1:end])
		}
		return head{}, nil
	}
	h.isSeq = true
	h.hasColon = true
	h.count = count
	rest = rest[end+1:]

	if strings.HasPrefix(rest, "{") {
		fend := fieldListEnd(rest)
		if fend < 0 {
			return h, parseErrf(ErrSyntax, lineNum, "unterminated field list")
		}
		fields, err := parseFieldList(rest[1:fend], lineNum)
		if err != nil {
			return h, err
		}
		if h.origin == OriginSet {
			return h, parseErrf(ErrInvalidTableMarker, lineNum, "table header cannot use the set marker")
		}
		h.fields = fields
		h.hasFields = true
		rest = rest[fend+1:]
	}

	if !strings.HasPrefix(rest, ":") {
		return h, parseErrf(ErrSyntax, lineNum, "expected colon after sequence header")
	}
	h.rest = strings.TrimSpace(rest[1:])
	return h, nil
}

// fieldListEnd returns the index of the '}' closing the field list
// opened at s[0]. Braces inside quoted field names are literal, so the
// scan tracks quote state the way splitCells does. Returns -1 when the
// list is unterminated.
func fieldListEnd(s string) int {
	inQuote := false
	for i := 1; i < len(s); i++ {
		switch c := s[i]; {
		case inQuote && c == '\\':
			i++
		case c == '"':
			inQuote = !inQuote
		case c == '}' && !inQuote:
			return i
		}
	}
	return -1
}

// parseFieldList splits a table header's {f1,f2} content. Field names
// follow the same quoting rules as keys and must be unique, since they
// become the keys of every row mapping.
func parseFieldList(s string, lineNum int) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, parseErrf(ErrSyntax, lineNum, "empty field list")
	}
	raw := splitCells(s)
	fields := make([]string, len(raw))
	for i, f := range raw {
		name := f
		if strings.HasPrefix(f, `"`) {
			decoded, after, err := unquote(f, lineNum)
			if err != nil {
				return nil, err
			}
			if after != "" {
				return nil, parseErrf(ErrSyntax, lineNum, "unexpected text after quoted field name")
			}
			name = decoded
		} else if f == "" {
			return nil, parseErrf(ErrSyntax, lineNum, "empty field name")
		}
		for _, prev := range fields[:i] {
			if prev == name {
				return nil, parseErrf(ErrSyntax, lineNum, "duplicate field %q", name)
			}
		}
		fields[i] = name
	}
	return fields, nil
}
