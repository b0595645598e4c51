package toon

import (
	"math"
	"strings"
	"testing"
)

// roundTrip emits v and parses the result back, failing the test on
// any step.
func roundTrip(t *testing.T, v *Value) *Value {
	t.Helper()
	text, err := Emit(v)
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	got, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse failed on emitted text %q: %v", text, err)
	}
	return got
}

func TestRoundTrip_ValuePreservingKinds(t *testing.T) {
	tests := []struct {
		name  string
		value *Value
	}{
		{"null", Null()},
		{"bool", Bool(false)},
		{"int", Int(math.MaxInt64)},
		{"negative int", Int(math.MinInt64)},
		{"float", Float(9.2)},
		{"whole float", Float(100)},
		{"tiny float", Float(2.5e-10)},
		{"huge float", Float(1e21)},
		{"nan", Float(math.NaN())},
		{"inf", Float(math.Inf(1))},
		{"neg inf", Float(math.Inf(-1))},
		{"string", Str("plain")},
		{"tricky strings", Map(
			Field("comma", Str("a,b")),
			Field("colon", Str("k: v")),
			Field("padded", Str("  x  ")),
			Field("keyword", Str("false")),
			Field("numeric", Str("3.14")),
			Field("multiline", Str("a\nb\r\tc")),
			Field("quoted", Str(`say "hi"`)),
			Field("unicode", Str("héllo 世界")),
			Field("dashy", Str("- not an item")),
		)},
		{"empty mapping", Map()},
		{"empty list", List()},
		{"flat mapping", Map(Field("a", Int(1)), Field("b", Str("x")))},
		{"deep nesting", Map(
			Field("system", Map(
				Field("config", Map(
					Field("levels", Map(
						Field("one", Map(Field("a", Int(1)))),
						Field("two", Map(Field("b", Int(2)))),
					)),
				)),
				Field("modes", List(Str("on"), Str("off"))),
			)),
		)},
		{"uniform table", Map(Field("items", List(
			Map(Field("id", Int(1)), Field("name", Str("Blue Lake Trail")), Field("distanceKm", Float(7.5))),
			Map(Field("id", Int(2)), Field("name", Str("Ridge, Overlook")), Field("distanceKm", Float(9.2))),
		)))},
		{"mixed column kinds", Map(Field("rows", List(
			Map(Field("id", Int(1))),
			Map(Field("id", Str("two"))),
		)))},
		{"non-uniform list", Map(Field("mixed", List(
			Map(Field("x", Int(1))),
			Map(Field("x", Int(2)), Field("y", Bool(true))),
			Int(100),
			Str("test"),
		)))},
		{"tuple", Map(Field("misc", Tuple(Int(1), Null(), Str("two"))))},
		{"tuple table", Map(Field("pts", Tuple(
			Map(Field("x", Int(1)), Field("y", Int(2))),
			Map(Field("x", Int(3)), Field("y", Int(4))),
		)))},
		{"list of lists", List(List(Int(1)), List(), Tuple(Str("a")))},
		{"quoted field names", Map(Field("t", List(
			Map(Field("a,b", Int(1)), Field("c d", Int(2))),
			Map(Field("a,b", Int(3)), Field("c d", Int(4))),
		)))},
		{"braces in field names", Map(Field("t", List(
			Map(Field("a}b", Int(1)), Field("{c", Int(2))),
			Map(Field("a}b", Int(3)), Field("{c", Int(4))),
		)))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roundTrip(t, tt.value)
			if !Equal(got, tt.value) {
				text, _ := Emit(tt.value)
				t.Errorf("round trip changed value; emitted:\n%s", text)
			}
		})
	}
}

func TestRoundTrip_SetMembership(t *testing.T) {
	v := SetOf(Str("x"), Str("y"), Int(3))
	got := roundTrip(t, v)
	if got.Origin() != OriginSet {
		t.Fatalf("origin = %s, want set", got.Origin())
	}
	if !Equal(got, v) {
		t.Errorf("set membership not preserved")
	}
}

func TestRoundTrip_RecordBecomesMapping(t *testing.T) {
	rec := Record(Field("id", Int(1)), Field("name", Str("A")))
	got := roundTrip(t, Map(Field("item", rec)))
	item := got.Get("item")
	if item.Kind() != KindMapping {
		t.Fatalf("record should materialize as mapping, got %s", item.Kind())
	}
	if !Equal(item, rec) {
		t.Errorf("record entries not preserved")
	}
}

func TestRoundTrip_EntryOrderPreserved(t *testing.T) {
	v := Map(
		Field("zeta", Int(1)),
		Field("alpha", Int(2)),
		Field("mid", Map(Field("y", Int(3)), Field("x", Int(4)))),
	)
	got := roundTrip(t, v)
	var keys []string
	for _, e := range got.Entries() {
		keys = append(keys, e.Key)
	}
	if strings.Join(keys, ",") != "zeta,alpha,mid" {
		t.Errorf("top-level key order = %v", keys)
	}
	var inner []string
	for _, e := range got.Get("mid").Entries() {
		inner = append(inner, e.Key)
	}
	if strings.Join(inner, ",") != "y,x" {
		t.Errorf("nested key order = %v", inner)
	}
}

// The emitted form itself must be stable through a reparse: emitting
// the parsed value reproduces the text byte for byte.
func TestRoundTrip_CanonicalTextStable(t *testing.T) {
	v := Map(
		Field("context", Map(Field("task", Str("Roundtrip demo")))),
		Field("friends", List(Str("ana"), Str("luis"), Str("sam"))),
		Field("hikes", List(
			Map(Field("id", Int(1)), Field("name", Str("Blue Lake Trail")), Field("distanceKm", Float(7.5))),
			Map(Field("id", Int(2)), Field("name", Str("Ridge, Overlook")), Field("distanceKm", Float(9.2))),
		)),
		Field("misc", Tuple(Int(1), Null(), Str("two"))),
		Field("empty_list", List()),
	)
	first, err := Emit(v)
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	parsed, err := Parse(first)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	second, err := Emit(parsed)
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if first != second {
		t.Errorf("canonical text not stable:\n--- first\n%s--- second\n%s", first, second)
	}
}
