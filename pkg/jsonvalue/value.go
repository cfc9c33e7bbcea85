// Package jsonvalue provides an order-preserving representation of parsed
// JSON documents.
//
// Go's encoding/json decodes objects into maps, which loses the key order of
// the source text. Tree layouts depend on that order (siblings are laid out
// in document order), so this package decodes into a tagged variant whose
// objects keep their members as an ordered slice.
//
// # Usage
//
//	v, err := jsonvalue.Parse([]byte(`{"b": 1, "a": [true, null]}`))
//	if err != nil {
//	    return err
//	}
//	for _, m := range v.Object {
//	    fmt.Println(m.Key, m.Value.Kind)
//	}
//	// b number
//	// a array
//
// Numbers are stored as a [encoding/json.Number] and keep their source
// spelling when re-encoded. [Value.Text] prints them in the shortest
// round-trip form instead, so 1.50 reads "1.5" and 1e3 reads "1000".
package jsonvalue

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which variant of [Value] is populated.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

var kindNames = [...]string{
	Null:   "null",
	Bool:   "boolean",
	Number: "number",
	String: "string",
	Array:  "array",
	Object: "object",
}

// String returns the JSON type name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Member is a single key/value pair of a JSON object.
type Member struct {
	Key   string
	Value Value
}

// Value is a parsed JSON value. Exactly one of the payload fields is
// meaningful, selected by Kind. The zero value is JSON null.
type Value struct {
	Kind   Kind
	Bool   bool
	Number json.Number
	String string
	Array  []Value
	Object []Member
}

// NullValue returns JSON null.
func NullValue() Value { return Value{} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{Kind: Bool, Bool: b} }

// NumberValue wraps a number given in its JSON spelling. The text is not
// validated.
func NumberValue(n string) Value { return Value{Kind: Number, Number: json.Number(n)} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{Kind: String, String: s} }

// ArrayValue builds an array from items in the given order.
func ArrayValue(items ...Value) Value { return Value{Kind: Array, Array: items} }

// ObjectValue builds an object from members in the given order.
func ObjectValue(members ...Member) Value { return Value{Kind: Object, Object: members} }

// IsContainer reports whether v is an array or object.
func (v Value) IsContainer() bool { return v.Kind == Array || v.Kind == Object }

// Get returns the value stored under key when v is an object.
func (v Value) Get(key string) (Value, bool) {
	if v.Kind != Object {
		return Value{}, false
	}
	for _, m := range v.Object {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Len returns the number of children of a container, or 0 for scalars.
func (v Value) Len() int {
	switch v.Kind {
	case Array:
		return len(v.Array)
	case Object:
		return len(v.Object)
	}
	return 0
}

// Text returns the natural string form of a scalar: "null", "true"/"false",
// the number in canonical form (see [FormatNumber]), or the raw string
// contents. Containers render as their compact JSON encoding.
func (v Value) Text() string {
	switch v.Kind {
	case Null:
		return "null"
	case Bool:
		if v.Bool {
			return "true"
		}
		return "false"
	case Number:
		return FormatNumber(v.Number)
	case String:
		return v.String
	}
	data, err := v.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(data)
}

// Interface converts v into the plain Go representation produced by
// encoding/json (map[string]any, []any, json.Number, string, bool, nil).
// Object key order is lost in the conversion.
func (v Value) Interface() any {
	switch v.Kind {
	case Bool:
		return v.Bool
	case Number:
		return v.Number
	case String:
		return v.String
	case Array:
		out := make([]any, len(v.Array))
		for i, item := range v.Array {
			out[i] = item.Interface()
		}
		return out
	case Object:
		out := make(map[string]any, len(v.Object))
		for _, m := range v.Object {
			out[m.Key] = m.Value.Interface()
		}
		return out
	}
	return nil
}

// MarshalJSON encodes v, keeping object members in their stored order.
func (v Value) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	if err := v.encode(&b); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

// UnmarshalJSON decodes data with [Parse], so member order and number
// spelling survive a round trip.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Value) encode(b *strings.Builder) error {
	switch v.Kind {
	case Null:
		b.WriteString("null")
	case Bool:
		b.WriteString(v.Text())
	case Number:
		b.WriteString(v.Number.String())
	case String:
		data, err := json.Marshal(v.String)
		if err != nil {
			return err
		}
		b.Write(data)
	case Array:
		b.WriteByte('[')
		for i, item := range v.Array {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := item.encode(b); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case Object:
		b.WriteByte('{')
		for i, m := range v.Object {
			if i > 0 {
				b.WriteByte(',')
			}
			key, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			b.Write(key)
			b.WriteByte(':')
			if err := m.Value.encode(b); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	}
	return nil
}

// FormatNumber prints n the way JavaScript's String(number) does: the
// shortest digits that round-trip a float64, plain notation for decimal
// exponents from -7 to 20, exponent notation ("1e+21", "1e-7") outside it,
// and "0" for negative zero. Text that does not parse as a number is
// returned unchanged.
func FormatNumber(n json.Number) string {
	f, err := strconv.ParseFloat(string(n), 64)
	switch {
	case err != nil && !math.IsInf(f, 0):
		return string(n)
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	sign := ""
	if f < 0 {
		sign, f = "-", -f
	}
	mant, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	digits := strings.Replace(mant, ".", "", 1)
	e, _ := strconv.Atoi(exp)

	// The value is 0.digits * 10^point.
	point, k := e+1, len(digits)
	switch {
	case k <= point && point <= 21:
		return sign + digits + strings.Repeat("0", point-k)
	case 0 < point && point <= 21:
		return sign + digits[:point] + "." + digits[point:]
	case -6 < point && point <= 0:
		return sign + "0." + strings.Repeat("0", -point) + digits
	}

	out := digits[:1]
	if k > 1 {
		out += "." + digits[1:]
	}
	if e < 0 {
		return sign + out + "e-" + strconv.Itoa(-e)
	}
	return sign + out + "e+" + strconv.Itoa(e)
}
