package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/jsontree/pkg/errors"
	"github.com/matzehuels/jsontree/pkg/render"
	"github.com/matzehuels/jsontree/pkg/tree"
)

const sampleDoc = `{"name": "Ada", "address": {"city": "Paris", "zip": "75001"}, "tags": ["x", "y"]}`

// isolate points config and cache lookups at temp dirs and silences status
// output for the duration of the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))

	old := statusOut
	statusOut = io.Discard
	t.Cleanup(func() { statusOut = old })
	return dir
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		def  string
		want []string
	}{
		{"", "svg", []string{"svg"}},
		{"png", "svg", []string{"png"}},
		{"svg, png", "svg", []string{"svg", "png"}},
		{"dot,,json,", "svg", []string{"dot", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, parseFormats(tt.in, tt.def)); diff != "" {
				t.Errorf("parseFormats(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestNormalizeFormats(t *testing.T) {
	got, err := normalizeFormats([]string{"SVG", "dot", "svg", "json"})
	if err != nil {
		t.Fatalf("normalizeFormats() error: %v", err)
	}
	if diff := cmp.Diff([]string{"svg", "dot", "json"}, got); diff != "" {
		t.Errorf("normalizeFormats() mismatch (-want +got):\n%s", diff)
	}

	if _, err := normalizeFormats([]string{"pdf"}); err == nil {
		t.Error("normalizeFormats(pdf) should fail")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		input    string
		format   render.Format
		multiple bool
		want     string
	}{
		{"single explicit", "out.svg", "data.json", render.FormatSVG, false, "out.svg"},
		{"from input", "", "data.json", render.FormatSVG, false, "data.svg"},
		{"dot extension", "", "dir/data.json", render.FormatDOT, false, "dir/data.gv"},
		{"stdin", "", stdinName, render.FormatPNG, false, "tree.png"},
		{"multiple with base", "out/data", "data.json", render.FormatPNG, true, "out/data.png"},
		{"multiple strips extension", "out/data.svg", "data.json", render.FormatPNG, true, "out/data.png"},
		{"would overwrite input", "", "data.json", render.FormatJSON, false, "data.tree.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPath(tt.output, tt.input, tt.format, tt.multiple)
			if got != tt.want {
				t.Errorf("outputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildCommand(t *testing.T) {
	dir := isolate(t)
	input := writeDoc(t, dir, "data.json", sampleDoc)

	out, err := execute(t, "", "build", input, "--no-cache")
	if err != nil {
		t.Fatalf("build error: %v", err)
	}

	var got tree.Tree
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(got.Nodes) != 8 || len(got.Edges) != 7 {
		t.Errorf("got %d nodes, %d edges; want 8, 7", len(got.Nodes), len(got.Edges))
	}
	if got.Nodes[0].Label != tree.RootLabel {
		t.Errorf("first node label = %q, want %q", got.Nodes[0].Label, tree.RootLabel)
	}
}

func TestBuildCommandOutputFile(t *testing.T) {
	dir := isolate(t)
	input := writeDoc(t, dir, "data.yaml", "name: Ada\ntags: [x]\n")
	output := filepath.Join(dir, "tree.json")

	out, err := execute(t, "", "build", input, "-o", output)
	if err != nil {
		t.Fatalf("build error: %v", err)
	}
	if out != "" {
		t.Errorf("stdout should be empty with -o, got %q", out)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var got tree.Tree
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(got.Nodes) != 4 {
		t.Errorf("got %d nodes, want 4", len(got.Nodes))
	}
}

func TestBuildCommandStdin(t *testing.T) {
	isolate(t)

	out, err := execute(t, `[1, 2]`, "build", "--no-cache")
	if err != nil {
		t.Fatalf("build error: %v", err)
	}
	if !strings.Contains(out, `"[1]: 2"`) {
		t.Errorf("output missing array element label:\n%s", out)
	}
}

func TestBuildCommandInvalidJSON(t *testing.T) {
	isolate(t)

	_, err := execute(t, `{"a": }`, "build", "--no-cache")
	if !errors.Is(err, errors.ErrCodeInvalidJSON) {
		t.Errorf("build error = %v, want %s", err, errors.ErrCodeInvalidJSON)
	}
}

func TestSearchCommand(t *testing.T) {
	dir := isolate(t)
	input := writeDoc(t, dir, "data.json", sampleDoc)

	out, err := execute(t, "", "search", input, "city", "--no-cache")
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	for _, want := range []string{"address.city", "node_4", "city: Paris"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSearchCommandNoMatch(t *testing.T) {
	dir := isolate(t)
	input := writeDoc(t, dir, "data.json", sampleDoc)

	_, err := execute(t, "", "search", input, "address.country", "--no-cache")
	if err == nil {
		t.Fatal("search should fail for a missing path")
	}
	if code := errors.GetCode(err); code != errors.ErrCodeNoMatch {
		t.Errorf("error code = %q, want %q", code, errors.ErrCodeNoMatch)
	}
}

func TestRenderCommandFiles(t *testing.T) {
	dir := isolate(t)
	input := writeDoc(t, dir, "data.json", sampleDoc)
	base := filepath.Join(dir, "out", "data")

	_, err := execute(t, "", "render", input, "-f", "dot,json", "-o", base, "--select", "address.city", "--no-cache")
	if err != nil {
		t.Fatalf("render error: %v", err)
	}

	dot, err := os.ReadFile(base + ".gv")
	if err != nil {
		t.Fatalf("read dot: %v", err)
	}
	if !strings.Contains(string(dot), "penwidth=4") {
		t.Error("selected node should be highlighted in DOT output")
	}
	if _, err := os.Stat(base + ".json"); err != nil {
		t.Errorf("json output missing: %v", err)
	}
}

func TestRenderCommandStdout(t *testing.T) {
	isolate(t)

	out, err := execute(t, sampleDoc, "render", "-f", "dot", "--no-cache")
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if !strings.HasPrefix(out, "digraph") {
		t.Errorf("stdout should carry the DOT source, got:\n%s", out)
	}
}

func TestRenderCommandErrors(t *testing.T) {
	dir := isolate(t)
	input := writeDoc(t, dir, "data.json", sampleDoc)

	tests := []struct {
		name string
		args []string
	}{
		{"bad format", []string{"render", input, "-f", "pdf"}},
		{"highlight and select", []string{"render", input, "--highlight", "node_1", "--select", "name"}},
		{"select misses", []string{"render", input, "-f", "dot", "--select", "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, "", append(tt.args, "--no-cache")...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestCachePathCommand(t *testing.T) {
	dir := isolate(t)

	out, err := execute(t, "", "cache", "path")
	if err != nil {
		t.Fatalf("cache path error: %v", err)
	}
	want := filepath.Join(dir, "cache", appName)
	if strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(out), want)
	}
}

func TestCacheClearCommand(t *testing.T) {
	dir := isolate(t)
	input := writeDoc(t, dir, "data.json", sampleDoc)

	if _, err := execute(t, "", "build", input); err != nil {
		t.Fatalf("build error: %v", err)
	}
	cacheRoot := filepath.Join(dir, "cache", appName)
	if _, err := os.Stat(cacheRoot); err != nil {
		t.Fatalf("build should populate the cache: %v", err)
	}

	if _, err := execute(t, "", "cache", "clear"); err != nil {
		t.Fatalf("cache clear error: %v", err)
	}
}

func TestConfigFileApplies(t *testing.T) {
	dir := isolate(t)
	cfgPath := writeDoc(t, dir, "config.toml", "[render]\nformat = \"dot\"\n")

	out, err := execute(t, sampleDoc, "--config", cfgPath, "render", "--no-cache")
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if !strings.HasPrefix(out, "digraph") {
		t.Errorf("configured default format should be dot, got:\n%s", out)
	}
}

func TestConfigFileInvalid(t *testing.T) {
	dir := isolate(t)
	cfgPath := writeDoc(t, dir, "config.toml", "[render]\nunknown = 1\n")

	if _, err := execute(t, "", "--config", cfgPath, "cache", "path"); err == nil {
		t.Error("unknown config keys should fail")
	}
}

func TestServeRejectsInvalidFlags(t *testing.T) {
	isolate(t)

	if _, err := execute(t, "", "serve", "--addr", ""); err == nil {
		t.Error("serve with an empty address should fail")
	}
	if _, err := execute(t, "", "serve", "--session-ttl", "0s"); err == nil {
		t.Error("serve with a zero session TTL should fail")
	}
}

func TestBrowseRejectsStdin(t *testing.T) {
	isolate(t)

	if _, err := execute(t, sampleDoc, "browse"); err == nil {
		t.Error("browse without a file should fail")
	}
}

func TestCompletionCommand(t *testing.T) {
	isolate(t)

	for _, shell := range shells {
		t.Run(shell, func(t *testing.T) {
			out, err := execute(t, "", "completion", shell)
			if err != nil {
				t.Fatalf("completion %s error: %v", shell, err)
			}
			if !strings.Contains(out, appName) {
				t.Errorf("completion %s output should mention %s", shell, appName)
			}
		})
	}

	if _, err := execute(t, "", "completion", "tcsh"); err == nil {
		t.Error("unknown shell should fail")
	}
}
