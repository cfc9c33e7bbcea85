package jsonvalue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
)

var (
	// ErrEmptyInput is returned when the input is empty or only whitespace.
	ErrEmptyInput = errors.New("input is empty")

	// ErrTrailingData is returned when more than one JSON value is present.
	ErrTrailingData = errors.New("unexpected data after top-level value")

	// ErrTooDeep is returned when containers nest deeper than MaxDepth.
	ErrTooDeep = errors.New("document nests too deeply")
)

// MaxDepth is the deepest container nesting Decode accepts.
const MaxDepth = 1000

// Parse decodes exactly one JSON value from data.
//
// Object members keep their source order. When a key repeats, the last value
// wins but the member keeps the position of its first occurrence, which is
// how browsers' JSON.parse behaves.
func Parse(data []byte) (Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Value{}, ErrEmptyInput
	}
	return Decode(bytes.NewReader(data))
}

// Decode reads exactly one JSON value from r. Any non-whitespace content
// after the value is an error.
func Decode(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return Value{}, ErrEmptyInput
	}
	if err != nil {
		return Value{}, describe(err)
	}
	v, err := decodeToken(dec, tok, 0)
	if err != nil {
		return Value{}, describe(err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return Value{}, describe(err)
		}
		return Value{}, fmt.Errorf("%w at offset %d", ErrTrailingData, dec.InputOffset())
	}
	return v, nil
}

// ParseYAML converts a YAML document to JSON and parses the result.
// Mapping order is preserved through the conversion.
func ParseYAML(data []byte) (Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Value{}, ErrEmptyInput
	}
	js, err := yaml.YAMLToJSON(data)
	if err != nil {
		return Value{}, fmt.Errorf("yaml: %w", err)
	}
	return Parse(js)
}

func describe(err error) error {
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		return fmt.Errorf("offset %d: %w", syn.Offset, err)
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("unexpected end of JSON input: %w", err)
	}
	return err
}

// next reads a token inside a container, where running out of input is
// always a truncation.
func next(dec *json.Decoder) (json.Token, error) {
	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil, io.ErrUnexpectedEOF
	}
	return tok, err
}

func decodeValue(dec *json.Decoder, depth int) (Value, error) {
	tok, err := next(dec)
	if err != nil {
		return Value{}, err
	}
	return decodeToken(dec, tok, depth)
}

func decodeToken(dec *json.Decoder, tok json.Token, depth int) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return NullValue(), nil
	case bool:
		return BoolValue(t), nil
	case json.Number:
		return Value{Kind: Number, Number: t}, nil
	case string:
		return StringValue(t), nil
	case json.Delim:
		if depth >= MaxDepth && (t == '[' || t == '{') {
			return Value{}, fmt.Errorf("%w at offset %d", ErrTooDeep, dec.InputOffset())
		}
		switch t {
		case '[':
			return decodeArray(dec, depth+1)
		case '{':
			return decodeObject(dec, depth+1)
		}
	}
	return Value{}, fmt.Errorf("unexpected token %v at offset %d", tok, dec.InputOffset())
}

func decodeArray(dec *json.Decoder, depth int) (Value, error) {
	items := []Value{}
	for dec.More() {
		item, err := decodeValue(dec, depth)
		if err != nil {
			return Value{}, err
		}
		items = append(items, item)
	}
	if err := closing(dec, ']'); err != nil {
		return Value{}, err
	}
	return ArrayValue(items...), nil
}

func decodeObject(dec *json.Decoder, depth int) (Value, error) {
	members := []Member{}
	index := make(map[string]int)
	for dec.More() {
		tok, err := next(dec)
		if err != nil {
			return Value{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("object key must be a string at offset %d", dec.InputOffset())
		}
		val, err := decodeValue(dec, depth)
		if err != nil {
			return Value{}, err
		}
		if i, seen := index[key]; seen {
			members[i].Value = val
			continue
		}
		index[key] = len(members)
		members = append(members, Member{Key: key, Value: val})
	}
	if err := closing(dec, '}'); err != nil {
		return Value{}, err
	}
	return ObjectValue(members...), nil
}

func closing(dec *json.Decoder, want json.Delim) error {
	tok, err := next(dec)
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q at offset %d", want, dec.InputOffset())
	}
	return nil
}
