// Package adapt converts Go host values to and from the toon value
// model. It is the caller-side boundary described by the codec
// contract: the core never reflects over host objects, it only sees
// the resulting Value tree.
//
// Conversion is lossy in one documented direction: structs become
// records and serialize like mappings, but with no schema in the text
// they materialize back as ordered mappings, never as the original
// struct type.
package adapt

import (
	"reflect"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/toon-format/toon-go/toon"
)

// FromGo converts a Go value into a Value tree.
//
// nil becomes null; bools, integers, floats and strings become
// scalars; []T becomes a list sequence; a fixed-size array becomes a
// tuple sequence; map[T]struct{} and map[T]bool become a set sequence
// (items sorted by their emitted text, since Go map iteration order
// is random and output must be byte-stable); other maps with string
// keys become mappings with sorted keys; *OrderedMap becomes a
// mapping in stored order; structs become records with fields in
// declaration order, honoring `toon:"name"` and `toon:"-"` tags.
//
// Reference cycles fail with toon.ErrCyclicStructure.
func FromGo(v any) (*toon.Value, error) {
	if om, ok := v.(*OrderedMap); ok {
		return orderedMapValue(om, map[uintptr]bool{})
	}
	return convert(reflect.ValueOf(v), map[uintptr]bool{})
}

func convert(rv reflect.Value, onPath map[uintptr]bool) (*toon.Value, error) {
	if !rv.IsValid() {
		return toon.Null(), nil
	}

	if om, ok := rv.Interface().(*OrderedMap); ok {
		return orderedMapValue(om, onPath)
	}

	switch rv.Kind() {
	case reflect.Bool:
		return toon.Bool(rv.Bool()), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return toon.Int(rv.Int()), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > uint64(1<<63-1) {
			return nil, errors.Newf("adapt: unsigned value %d overflows int64", u)
		}
		return toon.Int(int64(u)), nil

	case reflect.Float32, reflect.Float64:
		return toon.Float(rv.Float()), nil

	case reflect.String:
		return toon.Str(rv.String()), nil

	case reflect.Pointer:
		if rv.IsNil() {
			return toon.Null(), nil
		}
		ptr := rv.Pointer()
		if onPath[ptr] {
			return nil, errors.Wrap(toon.ErrCyclicStructure, "adapt")
		}
		onPath[ptr] = true
		defer delete(onPath, ptr)
		return convert(rv.Elem(), onPath)

	case reflect.Interface:
		if rv.IsNil() {
			return toon.Null(), nil
		}
		return convert(rv.Elem(), onPath)

	case reflect.Slice:
		if rv.IsNil() {
			return toon.Null(), nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return toon.Str(string(rv.Bytes())), nil
		}
		ptr := rv.Pointer()
		if onPath[ptr] {
			return nil, errors.Wrap(toon.ErrCyclicStructure, "adapt")
		}
		onPath[ptr] = true
		defer delete(onPath, ptr)
		items, err := convertItems(rv, onPath)
		if err != nil {
			return nil, err
		}
		return toon.List(items...), nil

	case reflect.Array:
		items, err := convertItems(rv, onPath)
		if err != nil {
			return nil, err
		}
		return toon.Tuple(items...), nil

	case reflect.Map:
		if rv.IsNil() {
			return toon.Null(), nil
		}
		ptr := rv.Pointer()
		if onPath[ptr] {
			return nil, errors.Wrap(toon.ErrCyclicStructure, "adapt")
		}
		onPath[ptr] = true
		defer delete(onPath, ptr)
		if isSetMap(rv) {
			return setValue(rv, onPath)
		}
		return mapValue(rv, onPath)

	case reflect.Struct:
		return structValue(rv, onPath)

	default:
		return nil, errors.Newf("adapt: unsupported type %s", rv.Type())
	}
}

func convertItems(rv reflect.Value, onPath map[uintptr]bool) ([]*toon.Value, error) {
	items := make([]*toon.Value, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		item, err := convert(rv.Index(i), onPath)
		if err != nil {
			return nil, err
		}
		items[i] = item
	}
	return items, nil
}

// isSetMap reports whether a map represents a set: struct{} values,
// or bool values (membership flags).
func isSetMap(rv reflect.Value) bool {
	elem := rv.Type().Elem()
	if elem.Kind() == reflect.Struct && elem.NumField() == 0 {
		return true
	}
	return elem.Kind() == reflect.Bool
}

func setValue(rv reflect.Value, onPath map[uintptr]bool) (*toon.Value, error) {
	isBool := rv.Type().Elem().Kind() == reflect.Bool
	items := make([]*toon.Value, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		if isBool && !iter.Value().Bool() {
			continue
		}
		item, err := convert(iter.Key(), onPath)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	keyed := lo.Map(items, func(item *toon.Value, _ int) keyedItem {
		text, _ := toon.Emit(item)
		return keyedItem{text: text, item: item}
	})
	sort.Slice(keyed, func(i, j int) bool { return keyed[i].text < keyed[j].text })
	return toon.SetOf(lo.Map(keyed, func(k keyedItem, _ int) *toon.Value { return k.item })...), nil
}

type keyedItem struct {
	text string
	item *toon.Value
}

func mapValue(rv reflect.Value, onPath map[uintptr]bool) (*toon.Value, error) {
	if rv.Type().Key().Kind() != reflect.String {
		return nil, errors.Newf("adapt: unsupported map key type %s", rv.Type().Key())
	}
	keys := lo.Map(rv.MapKeys(), func(k reflect.Value, _ int) string { return k.String() })
	sort.Strings(keys)

	entries := make([]toon.Entry, 0, len(keys))
	for _, k := range keys {
		v, err := convert(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())), onPath)
		if err != nil {
			return nil, err
		}
		entries = append(entries, toon.Field(k, v))
	}
	return toon.Map(entries...), nil
}

func orderedMapValue(om *OrderedMap, onPath map[uintptr]bool) (*toon.Value, error) {
	if om == nil {
		return toon.Null(), nil
	}
	entries := make([]toon.Entry, 0, om.Len())
	for _, k := range om.Keys() {
		raw, _ := om.Get(k)
		v, err := convert(reflect.ValueOf(raw), onPath)
		if err != nil {
			return nil, err
		}
		entries = append(entries, toon.Field(k, v))
	}
	return toon.Map(entries...), nil
}

func structValue(rv reflect.Value, onPath map[uintptr]bool) (*toon.Value, error) {
	t := rv.Type()
	entries := make([]toon.Entry, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue // unexported
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("toon"); ok {
			if tag == "-" {
				continue
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			if tag != "" {
				name = tag
			}
		}
		v, err := convert(rv.Field(i), onPath)
		if err != nil {
			return nil, err
		}
		entries = append(entries, toon.Field(name, v))
	}
	return toon.Record(entries...), nil
}

// ToGo materializes a Value tree as plain Go values: null to nil,
// bool to bool, int to int64, float to float64, str to string,
// mapping and record to *OrderedMap, list and tuple sequences to
// []any, and set sequences to map[any]struct{} when every item is a
// scalar (falling back to []any otherwise).
func ToGo(v *toon.Value) any {
	switch v.Kind() {
	case toon.KindNull:
		return nil
	case toon.KindBool:
		b, _ := v.AsBool()
		return b
	case toon.KindInt:
		i, _ := v.AsInt()
		return i
	case toon.KindFloat:
		f, _ := v.AsFloat()
		return f
	case toon.KindStr:
		s, _ := v.AsStr()
		return s
	case toon.KindSequence:
		items := v.Items()
		if v.Origin() == toon.OriginSet && lo.EveryBy(items, (*toon.Value).IsScalar) {
			set := make(map[any]struct{}, len(items))
			for _, item := range items {
				set[ToGo(item)] = struct{}{}
			}
			return set
		}
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = ToGo(item)
		}
		return out
	case toon.KindMapping, toon.KindRecord:
		om := NewOrderedMap()
		for _, e := range v.Entries() {
			om.Set(e.Key, ToGo(e.Value))
		}
		return om
	default:
		return nil
	}
}
