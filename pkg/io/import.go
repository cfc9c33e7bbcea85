package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/jsontree/pkg/jsonvalue"
	"github.com/matzehuels/jsontree/pkg/tree"
)

// InputFormat selects the document decoder.
type InputFormat string

const (
	InputJSON InputFormat = "json"
	InputYAML InputFormat = "yaml"
)

// DetectFormat picks the decoder from a file extension. Anything that is
// not .yaml or .yml is read as JSON.
func DetectFormat(path string) InputFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return InputYAML
	}
	return InputJSON
}

// ReadDocument reads all of r and decodes it in the given format.
// ReadDocument does not close r.
func ReadDocument(r io.Reader, format InputFormat) (jsonvalue.Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return jsonvalue.Value{}, fmt.Errorf("read: %w", err)
	}
	return DecodeDocument(data, format)
}

// DecodeDocument decodes an in-memory document.
func DecodeDocument(data []byte, format InputFormat) (jsonvalue.Value, error) {
	switch format {
	case InputYAML:
		return jsonvalue.ParseYAML(data)
	case InputJSON, "":
		return jsonvalue.Parse(data)
	}
	return jsonvalue.Value{}, fmt.Errorf("unknown input format %q", format)
}

// ReadFile reads the document at path, choosing the decoder with
// [DetectFormat]. Errors are wrapped with the path for context.
func ReadFile(path string) (jsonvalue.Value, error) {
	f, err := os.Open(path)
	if err != nil {
		return jsonvalue.Value{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	v, err := ReadDocument(f, DetectFormat(path))
	if err != nil {
		return jsonvalue.Value{}, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// ReadTree decodes a tree written by [WriteTree] and validates it.
//
// ReadTree returns an error if the JSON is malformed or if the node and edge
// lists do not form a tree (see [tree.Tree.Validate]). ReadTree does not
// close r.
func ReadTree(r io.Reader) (*tree.Tree, error) {
	var t tree.Tree
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tree: %w", err)
	}
	return &t, nil
}

// ImportTree reads a tree file written by [ExportTree].
func ImportTree(path string) (*tree.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTree(f)
}
