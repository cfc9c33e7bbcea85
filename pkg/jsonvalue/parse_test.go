package jsonvalue

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse_PreservesKeyOrder(t *testing.T) {
	v, err := Parse([]byte(`{"zeta": 1, "alpha": 2, "mid": 3}`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if v.Kind != Object {
		t.Fatalf("Kind = %v, want object", v.Kind)
	}
	want := []string{"zeta", "alpha", "mid"}
	if len(v.Object) != len(want) {
		t.Fatalf("got %d members, want %d", len(v.Object), len(want))
	}
	for i, k := range want {
		if v.Object[i].Key != k {
			t.Errorf("member %d key = %q, want %q", i, v.Object[i].Key, k)
		}
	}
}

func TestParse_Scalars(t *testing.T) {
	tests := []struct {
		input    string
		wantKind Kind
		wantText string
	}{
		{"null", Null, "null"},
		{"true", Bool, "true"},
		{"false", Bool, "false"},
		{"42", Number, "42"},
		{"9.99", Number, "9.99"},
		{"1e3", Number, "1000"},
		{`"Alice"`, String, "Alice"},
		{`""`, String, ""},
		{"  7  ", Number, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Parse([]byte(tt.input))
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}
			if v.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", v.Kind, tt.wantKind)
			}
			if got := v.Text(); got != tt.wantText {
				t.Errorf("Text() = %q, want %q", got, tt.wantText)
			}
		})
	}
}

func TestParse_Nested(t *testing.T) {
	v, err := Parse([]byte(`{"items": [{"name": "A"}, [], {}], "ok": null}`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	items, ok := v.Get("items")
	if !ok || items.Kind != Array {
		t.Fatalf("items missing or not array: %+v", items)
	}
	if items.Len() != 3 {
		t.Errorf("items.Len() = %d, want 3", items.Len())
	}
	name, ok := items.Array[0].Get("name")
	if !ok || name.String != "A" {
		t.Errorf("items[0].name = %+v", name)
	}
	if items.Array[1].Kind != Array || items.Array[1].Len() != 0 {
		t.Errorf("items[1] should be an empty array")
	}
	if items.Array[2].Kind != Object || items.Array[2].Len() != 0 {
		t.Errorf("items[2] should be an empty object")
	}
	okVal, _ := v.Get("ok")
	if okVal.Kind != Null {
		t.Errorf("ok.Kind = %v, want null", okVal.Kind)
	}
}

func TestParse_DuplicateKeys(t *testing.T) {
	v, err := Parse([]byte(`{"a": 1, "b": 2, "a": 3}`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(v.Object) != 2 {
		t.Fatalf("got %d members, want 2", len(v.Object))
	}
	if v.Object[0].Key != "a" || v.Object[0].Value.Text() != "3" {
		t.Errorf("first member = %s:%s, want a:3", v.Object[0].Key, v.Object[0].Value.Text())
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty", "", ErrEmptyInput},
		{"whitespace", "  \n\t", ErrEmptyInput},
		{"trailing value", `{} {}`, ErrTrailingData},
		{"unterminated object", `{"a": 1`, nil},
		{"unterminated array", `[1, 2`, nil},
		{"bad literal", `{"a": tru}`, nil},
		{"trailing comma", `[1,]`, nil},
		{"trailing garbage", `{} x`, nil},
		{"too deep", strings.Repeat("[", MaxDepth+1) + strings.Repeat("]", MaxDepth+1), ErrTooDeep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if err == nil {
				t.Fatalf("Parse(%q) should fail", tt.input)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr == nil && errors.Is(err, ErrEmptyInput) {
				t.Errorf("Parse(%q) reported empty input for malformed JSON", tt.input)
			}
		})
	}
}

func TestParseYAML(t *testing.T) {
	v, err := ParseYAML([]byte("user:\n  name: Alice\n  tags:\n    - admin\n    - editor\nid: 7\n"))
	if err != nil {
		t.Fatalf("ParseYAML() error: %v", err)
	}
	if v.Kind != Object || v.Object[0].Key != "user" || v.Object[1].Key != "id" {
		t.Fatalf("unexpected top-level members: %+v", v.Object)
	}
	user := v.Object[0].Value
	tags, ok := user.Get("tags")
	if !ok || tags.Len() != 2 {
		t.Errorf("user.tags = %+v", tags)
	}

	if _, err := ParseYAML(nil); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("ParseYAML(nil) error = %v, want ErrEmptyInput", err)
	}
}

func TestValue_MarshalJSON(t *testing.T) {
	src := `{"z":[1,"two",null,true],"a":{"k":"v\"q"}}`
	v, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	got, err := v.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error: %v", err)
	}
	if string(got) != src {
		t.Errorf("MarshalJSON() = %s, want %s", got, src)
	}
}

func TestValue_UnmarshalJSON(t *testing.T) {
	var doc struct {
		Value Value `json:"value"`
		Other Value `json:"other"`
	}
	src := `{"value": {"b": 1.50, "a": [null]}, "other": null}`
	if err := json.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	got, _ := doc.Value.MarshalJSON()
	if string(got) != `{"b":1.50,"a":[null]}` {
		t.Errorf("round trip = %s", got)
	}
	if doc.Other.Kind != Null {
		t.Errorf("null member Kind = %v, want Null", doc.Other.Kind)
	}
}

func TestValue_Interface(t *testing.T) {
	v := ObjectValue(
		Member{Key: "n", Value: NumberValue("1.5")},
		Member{Key: "list", Value: ArrayValue(BoolValue(true), NullValue())},
	)
	m, ok := v.Interface().(map[string]any)
	if !ok {
		t.Fatalf("Interface() = %T, want map[string]any", v.Interface())
	}
	list, ok := m["list"].([]any)
	if !ok || len(list) != 2 || list[0] != true || list[1] != nil {
		t.Errorf("list = %#v", m["list"])
	}
}

func TestKindString(t *testing.T) {
	if Object.String() != "object" || Null.String() != "null" {
		t.Error("unexpected kind names")
	}
	if Kind(99).String() != "unknown" {
		t.Error("out-of-range kind should be unknown")
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"-0", "0"},
		{"-0.0", "0"},
		{"1.50", "1.5"},
		{"1e3", "1000"},
		{"1E+3", "1000"},
		{"-42", "-42"},
		{"9.99", "9.99"},
		{"0.1", "0.1"},
		{"123.456", "123.456"},
		{"1e20", "100000000000000000000"},
		{"1e21", "1e+21"},
		{"1.5e300", "1.5e+300"},
		{"0.000001", "0.000001"},
		{"1e-7", "1e-7"},
		{"-2.5e-8", "-2.5e-8"},
		{"12345678901234567890", "12345678901234567000"},
		{"1e400", "Infinity"},
		{"not-a-number", "not-a-number"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := FormatNumber(json.Number(tt.in)); got != tt.want {
				t.Errorf("FormatNumber(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValue_NumberSpelling(t *testing.T) {
	v, err := Parse([]byte(`[1.50, 1e3, -0]`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	var texts []string
	for _, item := range v.Array {
		texts = append(texts, item.Text())
	}
	if diff := cmp.Diff([]string{"1.5", "1000", "0"}, texts); diff != "" {
		t.Errorf("Text() mismatch (-want +got):\n%s", diff)
	}

	got, err := v.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error: %v", err)
	}
	if string(got) != `[1.50,1e3,-0]` {
		t.Errorf("MarshalJSON() = %s, want source spelling", got)
	}
}
