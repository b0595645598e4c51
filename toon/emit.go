package toon

import (
	"strconv"
	"strings"
)

// indentUnit is the fixed indentation step of the grammar.
const indentUnit = "  "

// Emit converts a value to TOON text. The root value carries no key:
// a scalar becomes a bare line, a mapping becomes entries at column
// zero and a sequence opens with a keyless header. Emit fails only
// with ErrCyclicStructure.
func Emit(v *Value) (string, error) {
	e := &emitter{onPath: map[*Value]bool{}}
	if err := e.emitRoot(v); err != nil {
		return "", err
	}
	return e.sb.String(), nil
}

// EmitNamed converts a value to TOON text under a root key, so the
// whole document reads as a single mapping entry.
func EmitNamed(v *Value, rootKey string) (string, error) {
	e := &emitter{onPath: map[*Value]bool{}}
	if err := e.emitKeyed(rootKey, v, 0); err != nil {
		return "", err
	}
	return e.sb.String(), nil
}

type emitter struct {
	sb     strings.Builder
	onPath map[*Value]bool
}

// emitRoot renders a document value with the key prefix dropped.
func (e *emitter) emitRoot(v *Value) error {
	if v.IsScalar() {
		e.sb.WriteString(scalarText(v))
		e.sb.WriteByte('\n')
		return nil
	}
	switch v.Kind() {
	case KindMapping, KindRecord:
		return e.emitEntries(v, 0)
	case KindSequence:
		return e.emitSequence("", false, v, 0)
	}
	return nil
}

// emitKeyed renders "key: value" at the given depth, opening an
// indented block for containers.
func (e *emitter) emitKeyed(key string, v *Value, indent int) error {
	if v.IsScalar() {
		e.pad(indent)
		e.sb.WriteString(keyText(key))
		e.sb.WriteString(": ")
		e.sb.WriteString(scalarText(v))
		e.sb.WriteByte('\n')
		return nil
	}
	switch v.Kind() {
	case KindMapping, KindRecord:
		e.pad(indent)
		e.sb.WriteString(keyText(key))
		e.sb.WriteString(":\n")
		return e.emitEntries(v, indent+1)
	case KindSequence:
		return e.emitSequence(key, true, v, indent)
	}
	return nil
}

func (e *emitter) emitEntries(v *Value, indent int) error {
	if e.onPath[v] {
		return ErrCyclicStructure
	}
	e.onPath[v] = true
	defer delete(e.onPath, v)

	for _, entry := range v.Entries() {
		if err := e.emitKeyed(entry.Key, entry.Value, indent); err != nil {
			return err
		}
	}
	return nil
}

// emitSequence picks table form for uniform record sequences and block
// form otherwise. The header marker restores the origin on parse:
// [] list, () tuple, {} set.
func (e *emitter) emitSequence(key string, hasKey bool, v *Value, indent int) error {
	if e.onPath[v] {
		return ErrCyclicStructure
	}
	e.onPath[v] = true
	defer delete(e.onPath, v)

	open, close := markers(v.origin)
	n := len(v.items)

	if v.IsUniformRecords() && v.origin != OriginSet {
		return e.emitTable(key, hasKey, v, indent, open, close)
	}

	e.pad(indent)
	if hasKey {
		e.sb.WriteString(keyText(key))
	}
	e.sb.WriteByte(open)
	e.sb.WriteString(strconv.Itoa(n))
	e.sb.WriteByte(close)
	e.sb.WriteString(":\n")

	for _, item := range v.items {
		if item.IsScalar() {
			e.pad(indent + 1)
			e.sb.WriteString("- ")
			e.sb.WriteString(scalarText(item))
			e.sb.WriteByte('\n')
			continue
		}
		e.pad(indent + 1)
		e.sb.WriteString("-\n")
		if err := e.emitItemBlock(item, indent+2); err != nil {
			return err
		}
	}
	return nil
}

// emitItemBlock renders a container item under its "-" line, as a
// keyless sub-document.
func (e *emitter) emitItemBlock(v *Value, indent int) error {
	switch v.Kind() {
	case KindMapping, KindRecord:
		return e.emitEntries(v, indent)
	case KindSequence:
		return e.emitSequence("", false, v, indent)
	}
	return nil
}

// emitTable renders the compact header-plus-rows form:
//
//	key[N]{f1,f2}:
//	  v1,v2
func (e *emitter) emitTable(key string, hasKey bool, v *Value, indent int, open, close byte) error {
	fields := v.items[0].Entries()

	e.pad(indent)
	if hasKey {
		e.sb.WriteString(keyText(key))
	}
	e.sb.WriteByte(open)
	e.sb.WriteString(strconv.Itoa(len(v.items)))
	e.sb.WriteByte(close)
	e.sb.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			e.sb.WriteByte(',')
		}
		e.sb.WriteString(keyText(f.Key))
	}
	e.sb.WriteString("}:\n")

	for _, item := range v.items {
		e.pad(indent + 1)
		for i, f := range item.Entries() {
			if i > 0 {
				e.sb.WriteByte(',')
			}
			e.sb.WriteString(scalarText(f.Value))
		}
		e.sb.WriteByte('\n')
	}
	return nil
}

func (e *emitter) pad(indent int) {
	for i := 0; i < indent; i++ {
		e.sb.WriteString(indentUnit)
	}
}

func markers(o Origin) (open, close byte) {
	switch o {
	case OriginTuple:
		return '(', ')'
	case OriginSet:
		return '{', '}'
	default:
		return '[', ']'
	}
}
