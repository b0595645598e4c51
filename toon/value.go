package toon

import (
	"math"

	"github.com/cockroachdb/errors"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStr
	KindSequence
	KindMapping
	KindRecord
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	case KindRecord:
		return "record"
	default:
		return "unknown"
	}
}

// Origin tags the host container a Sequence came from. It selects the
// bracket marker on output ([] list, () tuple, {} set) and nothing else;
// item content is never affected.
type Origin uint8

const (
	OriginList Origin = iota
	OriginTuple
	OriginSet
)

// String returns the origin name.
func (o Origin) String() string {
	switch o {
	case OriginList:
		return "list"
	case OriginTuple:
		return "tuple"
	case OriginSet:
		return "set"
	default:
		return "unknown"
	}
}

// Value represents a TOON document node.
type Value struct {
	kind Kind

	// Scalar values (only one valid based on kind)
	boolVal  bool
	intVal   int64
	floatVal float64
	strVal   string

	// Sequence
	items  []*Value
	origin Origin

	// Mapping / Record
	entries []Entry
}

// Entry represents a key-value pair in a Mapping or Record.
type Entry struct {
	Key   string
	Value *Value
}

// ============================================================
// Constructors
// ============================================================

// Null creates a null value.
func Null() *Value {
	return &Value{kind: KindNull}
}

// Bool creates a boolean value.
func Bool(v bool) *Value {
	return &Value{kind: KindBool, boolVal: v}
}

// Int creates an integer value.
func Int(v int64) *Value {
	return &Value{kind: KindInt, intVal: v}
}

// Float creates a floating-point value.
func Float(v float64) *Value {
	return &Value{kind: KindFloat, floatVal: v}
}

// Str creates a string value.
func Str(v string) *Value {
	return &Value{kind: KindStr, strVal: v}
}

// List creates a sequence with list origin.
func List(items ...*Value) *Value {
	return &Value{kind: KindSequence, origin: OriginList, items: items}
}

// Tuple creates a sequence with tuple origin.
func Tuple(items ...*Value) *Value {
	return &Value{kind: KindSequence, origin: OriginTuple, items: items}
}

// SetOf creates a sequence with set origin. Items are kept in the given
// order; callers wanting canonical output should pre-sort.
func SetOf(items ...*Value) *Value {
	return &Value{kind: KindSequence, origin: OriginSet, items: items}
}

// Sequence creates a sequence with an explicit origin.
func Sequence(origin Origin, items ...*Value) *Value {
	return &Value{kind: KindSequence, origin: origin, items: items}
}

// Map creates a mapping from key-value entries.
func Map(entries ...Entry) *Value {
	return &Value{kind: KindMapping, entries: entries}
}

// Record creates a record from key-value entries. A record serializes
// exactly like a mapping; since no schema travels with the text it
// parses back as a mapping.
func Record(entries ...Entry) *Value {
	return &Value{kind: KindRecord, entries: entries}
}

// Field creates an Entry for use in Map/Record construction.
func Field(key string, value *Value) Entry {
	return Entry{Key: key, Value: value}
}

// ============================================================
// Accessors
// ============================================================

// Kind returns the value kind.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsNull returns true if this is a null value.
func (v *Value) IsNull() bool {
	return v == nil || v.kind == KindNull
}

// IsScalar returns true for null, bool, int, float and string values.
func (v *Value) IsScalar() bool {
	switch v.Kind() {
	case KindNull, KindBool, KindInt, KindFloat, KindStr:
		return true
	default:
		return false
	}
}

// AsBool returns the boolean value.
func (v *Value) AsBool() (bool, error) {
	if v == nil {
		return false, errors.Newf("toon: nil value")
	}
	if v.kind != KindBool {
		return false, errors.Newf("toon: expected bool, got %s", v.kind)
	}
	return v.boolVal, nil
}

// AsInt returns the integer value.
func (v *Value) AsInt() (int64, error) {
	if v == nil {
		return 0, errors.Newf("toon: nil value")
	}
	if v.kind != KindInt {
		return 0, errors.Newf("toon: expected int, got %s", v.kind)
	}
	return v.intVal, nil
}

// AsFloat returns the floating-point value.
func (v *Value) AsFloat() (float64, error) {
	if v == nil {
		return 0, errors.Newf("toon: nil value")
	}
	if v.kind != KindFloat {
		return 0, errors.Newf("toon: expected float, got %s", v.kind)
	}
	return v.floatVal, nil
}

// AsStr returns the string value.
func (v *Value) AsStr() (string, error) {
	if v == nil {
		return "", errors.Newf("toon: nil value")
	}
	if v.kind != KindStr {
		return "", errors.Newf("toon: expected str, got %s", v.kind)
	}
	return v.strVal, nil
}

// Items returns the sequence items, or nil for non-sequences.
func (v *Value) Items() []*Value {
	if v == nil || v.kind != KindSequence {
		return nil
	}
	return v.items
}

// Origin returns the sequence origin tag. Non-sequences report list.
func (v *Value) Origin() Origin {
	if v == nil || v.kind != KindSequence {
		return OriginList
	}
	return v.origin
}

// Entries returns the mapping or record entries in insertion order,
// or nil for other kinds.
func (v *Value) Entries() []Entry {
	if v == nil || (v.kind != KindMapping && v.kind != KindRecord) {
		return nil
	}
	return v.entries
}

// Get returns the value for a key in a mapping or record, or nil.
func (v *Value) Get(key string) *Value {
	for _, e := range v.Entries() {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

// Len returns the number of items or entries of a container.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	switch v.kind {
	case KindSequence:
		return len(v.items)
	case KindMapping, KindRecord:
		return len(v.entries)
	default:
		return 0
	}
}

// ============================================================
// Mutators
// ============================================================

// Append adds an item to a sequence.
func (v *Value) Append(item *Value) {
	if v.kind != KindSequence {
		panic("toon: cannot append to non-sequence")
	}
	v.items = append(v.items, item)
}

// Set sets or replaces an entry on a mapping or record.
func (v *Value) Set(key string, val *Value) {
	if v.kind != KindMapping && v.kind != KindRecord {
		panic("toon: cannot set on non-mapping")
	}
	for i := range v.entries {
		if v.entries[i].Key == key {
			v.entries[i].Value = val
			return
		}
	}
	v.entries = append(v.entries, Entry{Key: key, Value: val})
}

// ============================================================
// Predicates
// ============================================================

// IsUniformRecords reports whether v is a non-empty sequence whose
// items are all mappings or records with the identical ordered key set
// and only scalar (or null) entry values. This is the sole trigger for
// table-mode output.
func (v *Value) IsUniformRecords() bool {
	if v == nil || v.kind != KindSequence || len(v.items) == 0 {
		return false
	}
	first := v.items[0]
	if first.Kind() != KindMapping && first.Kind() != KindRecord {
		return false
	}
	keys := first.Entries()
	if len(keys) == 0 {
		return false
	}
	for _, item := range v.items {
		k := item.Kind()
		if k != KindMapping && k != KindRecord {
			return false
		}
		entries := item.Entries()
		if len(entries) != len(keys) {
			return false
		}
		for i, e := range entries {
			if e.Key != keys[i].Key {
				return false
			}
			if !e.Value.IsScalar() {
				return false
			}
		}
	}
	return true
}

// ============================================================
// Equality
// ============================================================

// Equal reports structural equality of two values. Mapping entry order
// is not significant; record and mapping compare as the same kind;
// set-origin sequences compare as multisets; NaN compares equal to NaN
// so round-trip comparisons hold.
func Equal(a, b *Value) bool {
	if a == nil || b == nil {
		return a.IsNull() && b.IsNull()
	}
	ak, bk := a.kind, b.kind
	if ak == KindRecord {
		ak = KindMapping
	}
	if bk == KindRecord {
		bk = KindMapping
	}
	if ak != bk {
		return false
	}
	switch ak {
	case KindNull:
		return true
	case KindBool:
		return a.boolVal == b.boolVal
	case KindInt:
		return a.intVal == b.intVal
	case KindFloat:
		if math.IsNaN(a.floatVal) && math.IsNaN(b.floatVal) {
			return true
		}
		return a.floatVal == b.floatVal
	case KindStr:
		return a.strVal == b.strVal
	case KindSequence:
		if a.origin != b.origin || len(a.items) != len(b.items) {
			return false
		}
		if a.origin == OriginSet {
			return multisetEqual(a.items, b.items)
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		if len(a.entries) != len(b.entries) {
			return false
		}
		for _, e := range a.entries {
			other := b.Get(e.Key)
			if other == nil && !e.Value.IsNull() {
				return false
			}
			if !Equal(e.Value, other) {
				return false
			}
		}
		// Keys are unique on both sides, so equal length plus full
		// coverage of a's keys implies the key sets match.
		for _, e := range b.entries {
			if !hasKey(a.entries, e.Key) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func hasKey(entries []Entry, key string) bool {
	for _, e := range entries {
		if e.Key == key {
			return true
		}
	}
	return false
}

func multisetEqual(a, b []*Value) bool {
	used := make([]bool, len(b))
	for _, av := range a {
		found := false
		for i, bv := range b {
			if !used[i] && Equal(av, bv) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
