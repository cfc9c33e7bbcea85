package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/jsontree/pkg/tree"
)

// WriteTree encodes a tree as indented JSON and writes it to w.
// The output can be re-read with [ReadTree].
func WriteTree(t *tree.Tree, w io.Writer) error {
	if t == nil {
		t = &tree.Tree{}
	}
	out := *t
	if out.Nodes == nil {
		out.Nodes = []tree.Node{}
	}
	if out.Edges == nil {
		out.Edges = []tree.Edge{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// MarshalTree returns the compact JSON encoding of t, as cached and served
// by the API.
func MarshalTree(t *tree.Tree) ([]byte, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return data, nil
}

// ExportTree writes a tree to a JSON file at path.
// This is a convenience wrapper around [WriteTree] for file-based output.
func ExportTree(t *tree.Tree, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteTree(t, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
