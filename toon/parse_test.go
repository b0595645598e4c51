package toon

import (
	"testing"

	"github.com/cockroachdb/errors"
)

// ============================================================
// Scalar Decoding
// ============================================================

func TestParse_Scalars(t *testing.T) {
	tests := []struct {
		input    string
		expected *Value
	}{
		{"null", Null()},
		{"true", Bool(true)},
		{"false", Bool(false)},
		{"123", Int(123)},
		{"-456", Int(-456)},
		{"3.14", Float(3.14)},
		{"2.0", Float(2)},
		{"1e3", Float(1000)},
		{"hello", Str("hello")},
		{"hello world", Str("hello world")},
		{`""`, Str("")},
		{`"true"`, Str("true")},
		{`"12"`, Str("12")},
		{`"a, b"`, Str("a, b")},
		{`"a:b"`, Str("a:b")},
		{`"line\nbreak"`, Str("line\nbreak")},
		{`"tab\there"`, Str("tab\there")},
		{`"quote \" inside"`, Str(`quote " inside`)},
		{`"\u00e9"`, Str("é")},
		{`"  padded  "`, Str("  padded  ")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input + "\n")
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if !Equal(got, tt.expected) {
				t.Errorf("Parse(%q) = %s, want %s", tt.input, got.Kind(), tt.expected.Kind())
			}
		})
	}
}

func TestParse_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "\n", "  \n\n"} {
		got, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", input, err)
		}
		if !Equal(got, Map()) {
			t.Errorf("Parse(%q) should yield an empty mapping", input)
		}
	}
}

// ============================================================
// Mappings
// ============================================================

func TestParse_NestedMapping(t *testing.T) {
	got, err := Parse("a: 1\nb:\n  c: true\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := Map(
		Field("a", Int(1)),
		Field("b", Map(Field("c", Bool(true)))),
	)
	if !Equal(got, want) {
		t.Errorf("unexpected value for nested mapping")
	}
	// Entry order must be insertion order.
	entries := got.Entries()
	if entries[0].Key != "a" || entries[1].Key != "b" {
		t.Errorf("entry order not preserved: %v, %v", entries[0].Key, entries[1].Key)
	}
}

func TestParse_EmptyNestedMapping(t *testing.T) {
	got, err := Parse("a:\nb: 2\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := Map(Field("a", Map()), Field("b", Int(2)))
	if !Equal(got, want) {
		t.Errorf("key with no block should parse as empty mapping")
	}
}

func TestParse_QuotedKeys(t *testing.T) {
	got, err := Parse("\"a,b\": 1\n\"\": 2\n\"x: y\": 3\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	for key, n := range map[string]int64{"a,b": 1, "": 2, "x: y": 3} {
		v := got.Get(key)
		if v == nil {
			t.Fatalf("key %q missing", key)
		}
		if i, _ := v.AsInt(); i != n {
			t.Errorf("key %q = %d, want %d", key, i, n)
		}
	}
}

// ============================================================
// Sequences
// ============================================================

func TestParse_BlockSequences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *Value
	}{
		{
			"list of scalars",
			"nums[3]:\n  - 1\n  - 2\n  - 3\n",
			Map(Field("nums", List(Int(1), Int(2), Int(3)))),
		},
		{
			"tuple origin",
			"pair(2):\n  - 1\n  - two\n",
			Map(Field("pair", Tuple(Int(1), Str("two")))),
		},
		{
			"set origin",
			"tags{2}:\n  - a\n  - b\n",
			Map(Field("tags", SetOf(Str("a"), Str("b")))),
		},
		{
			"empty list",
			"xs[0]:\n",
			Map(Field("xs", List())),
		},
		{
			"mapping items",
			"mixed[2]:\n  -\n    x: 1\n  - 100\n",
			Map(Field("mixed", List(Map(Field("x", Int(1))), Int(100)))),
		},
		{
			"nested sequence item",
			"grid[1]:\n  -\n    [2]:\n      - 1\n      - 2\n",
			Map(Field("grid", List(List(Int(1), Int(2))))),
		},
		{
			"bare dash is empty mapping item",
			"xs[1]:\n  -\n",
			Map(Field("xs", List(Map()))),
		},
		{
			"root keyless sequence",
			"[2]:\n  - 1\n  - 2\n",
			List(Int(1), Int(2)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if !Equal(got, tt.expected) {
				t.Errorf("unexpected value for %q", tt.input)
			}
		})
	}
}

func TestParse_Table(t *testing.T) {
	got, err := Parse("items[2]{id,name}:\n  1,A\n  2,B\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := Map(Field("items", List(
		Map(Field("id", Int(1)), Field("name", Str("A"))),
		Map(Field("id", Int(2)), Field("name", Str("B"))),
	)))
	if !Equal(got, want) {
		t.Errorf("unexpected table value")
	}
}

func TestParse_TableQuotedCells(t *testing.T) {
	got, err := Parse("rows[1]{a,b}:\n  \"x,y\",\" z\"\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	row := got.Get("rows").Items()[0]
	if s, _ := row.Get("a").AsStr(); s != "x,y" {
		t.Errorf("quoted comma cell = %q, want %q", s, "x,y")
	}
	if s, _ := row.Get("b").AsStr(); s != " z" {
		t.Errorf("quoted padded cell = %q, want %q", s, " z")
	}
}

func TestParse_TableQuotedFieldNames(t *testing.T) {
	// Braces inside a quoted field name must not close the field list.
	got, err := Parse("t[2]{\"a}b\",c}:\n  1,2\n  3,4\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := Map(Field("t", List(
		Map(Field("a}b", Int(1)), Field("c", Int(2))),
		Map(Field("a}b", Int(3)), Field("c", Int(4))),
	)))
	if !Equal(got, want) {
		t.Errorf("unexpected value for braced field name")
	}
}

func TestParse_TableTupleOrigin(t *testing.T) {
	got, err := Parse("pts(1){x,y}:\n  1,2\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if o := got.Get("pts").Origin(); o != OriginTuple {
		t.Errorf("origin = %s, want tuple", o)
	}
}

// ============================================================
// Errors
// ============================================================

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		kind     error
		wantLine int
	}{
		{"odd indentation", "a:\n   b: 1\n", ErrIndentation, 2},
		{"tab indentation", "a:\n\tb: 1\n", ErrIndentation, 2},
		{"indent level skip", "a:\n    b: 1\n", ErrIndentation, 2},
		{"indent under scalar", "a: 1\n  b: 2\n", ErrIndentation, 2},
		{"row field count", "items[1]{id,name}:\n  1\n", ErrMalformedTableRow, 2},
		{"row extra fields", "items[1]{id}:\n  1,2\n", ErrMalformedTableRow, 2},
		{"set table marker", "items{2}{id,name}:\n  1,A\n  2,B\n", ErrInvalidTableMarker, 1},
		{"missing rows", "items[2]{id}:\n  1\n", ErrSyntax, 1},
		{"missing items", "xs[2]:\n  - 1\n", ErrSyntax, 1},
		{"extra items", "xs[1]:\n  - 1\n  - 2\n", ErrIndentation, 3},
		{"duplicate key", "x: 1\nx: 2\n", ErrSyntax, 2},
		{"duplicate field", "items[1]{id,id}:\n  1,2\n", ErrSyntax, 1},
		{"duplicate quoted field", "items[1]{\"a\",a}:\n  1,2\n", ErrSyntax, 1},
		{"bare value in mapping", "a: 1\njust a value\n", ErrSyntax, 2},
		{"content after root scalar", "5\n6\n", ErrSyntax, 2},
		{"unterminated quote", `a: "oops` + "\n", ErrSyntax, 1},
		{"text after quoted value", `a: "x" y` + "\n", ErrSyntax, 1},
		{"header trailing text", "xs[2]: 1\n", ErrSyntax, 1},
		{"empty field list", "xs[1]{}:\n  1\n", ErrSyntax, 1},
		{"keyless header in mapping", "a: 1\n[2]:\n", ErrSyntax, 2},
		{"missing item marker", "xs[1]:\n  1\n", ErrSyntax, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("Parse(%q) should fail", tt.input)
			}
			if !errors.Is(err, tt.kind) {
				t.Errorf("error kind = %v, want %v", err, tt.kind)
			}
			if got := Line(err); got != tt.wantLine {
				t.Errorf("error line = %d, want %d (%v)", got, tt.wantLine, err)
			}
		})
	}
}

func TestParse_LineNumbersSkipBlanks(t *testing.T) {
	// Blank lines do not shift reported line numbers.
	_, err := Parse("a: 1\n\n\nitems[1]{id}:\n  1,2\n")
	if !errors.Is(err, ErrMalformedTableRow) {
		t.Fatalf("expected malformed table row, got %v", err)
	}
	if got := Line(err); got != 5 {
		t.Errorf("error line = %d, want 5", got)
	}
}
