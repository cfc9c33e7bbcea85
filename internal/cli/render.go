package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jsontree/pkg/pipeline"
	"github.com/matzehuels/jsontree/pkg/render"
)

// defaultBase names outputs rendered from stdin.
const defaultBase = "tree"

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	in        inputOpts
	output    string  // output file (single format) or base path (multiple)
	formats   string  // comma-separated output formats
	highlight string  // node id to emphasize
	selectExp string  // path expression whose match is emphasized
	scale     float64 // PNG scale
}

// renderCommand creates the render command for generating visualizations.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a document's tree as DOT, SVG, PNG or layout JSON",
		Long: `Render a document's tree as DOT, SVG, PNG or layout JSON.

Nodes keep the positions computed by the tree builder: depth grows
downwards and siblings spread to the right. Objects, arrays and primitive
values are drawn in different colours. Use --select to emphasize the node a
path expression resolves to, or --highlight to name a node id directly.

SVG and PNG results are cached, so re-rendering an unchanged document is
instant. Reads stdin when no file (or "-") is given.`,
		Example: `  jsontree render data.json
  jsontree render data.json -f svg,png -o out/data
  jsontree render data.json -f dot --select user.address.city`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, inputArg(args), opts)
		},
	}

	opts.in.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), png, dot, json (comma-separated)")
	cmd.Flags().StringVar(&opts.highlight, "highlight", "", "node id to emphasize (e.g. node_3)")
	cmd.Flags().StringVar(&opts.selectExp, "select", "", "path expression whose node is emphasized")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "PNG scale factor (default from config)")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, ro renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	formats, err := normalizeFormats(parseFormats(ro.formats, c.Config.Render.Format))
	if err != nil {
		return err
	}
	if ro.highlight != "" && ro.selectExp != "" {
		return fmt.Errorf("--highlight and --select are mutually exclusive")
	}

	runner, err := c.newRunner(ctx, ro.in.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := ro.in.options(input)
	t, _, err := loadTree(ctx, cmd, runner, input, opts)
	if err != nil {
		return err
	}
	logger.Debugf("Loaded tree: %d nodes, %d edges", t.Len(), len(t.Edges))

	opts.Formats = formats
	opts.Highlight = ro.highlight
	opts.Scale = ro.scale
	if opts.Scale == 0 {
		opts.Scale = c.Config.Render.Scale
	}
	if ro.selectExp != "" {
		n, err := runner.Search(ctx, t, ro.selectExp)
		if err != nil {
			return err
		}
		logger.Infof("Selected %s (%s)", n.Path, n.ID)
		opts.Highlight = n.ID
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", strings.Join(formats, ", ")))
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, t, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	return writeArtifacts(cmd, artifactWriteParams{
		artifacts: artifacts,
		formats:   formats,
		input:     input,
		output:    ro.output,
		cacheHit:  cacheHit,
	})
}

// normalizeFormats parses user-supplied format names into canonical ones.
func normalizeFormats(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		f, err := render.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		if !seen[string(f)] {
			seen[string(f)] = true
			out = append(out, string(f))
		}
	}
	if err := pipeline.ValidateFormats(out); err != nil {
		return nil, err
	}
	return out, nil
}

type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	cacheHit  bool
}

// writeArtifacts writes each rendered format to its file. A single text
// format rendered from stdin without --output goes to stdout.
func writeArtifacts(cmd *cobra.Command, p artifactWriteParams) error {
	if len(p.formats) == 1 && p.output == "" && p.input == stdinName {
		if f := render.Format(p.formats[0]); !f.IsImage() {
			_, err := cmd.OutOrStdout().Write(p.artifacts[p.formats[0]])
			return err
		}
	}

	var paths []string
	for _, name := range p.formats {
		path := outputPath(p.output, p.input, render.Format(name), len(p.formats) > 1)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(path, p.artifacts[name], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	status := "Rendered"
	if p.cacheHit {
		status = "Rendered (cached)"
	}
	printSuccess("%s %s", status, strings.Join(p.formats, ", "))
	for _, path := range paths {
		printFile(path)
	}
	return nil
}

// outputPath derives the file for one format. A single format uses output
// as given; several formats treat output as a base path. Without output,
// the base is the input name minus its extension, and a name that would
// overwrite the input gets a ".tree" infix.
func outputPath(output, input string, format render.Format, multiple bool) string {
	if output != "" && !multiple {
		return output
	}
	base := basePath(output, input)
	if p := base + format.Extension(); p != input {
		return p
	}
	return base + ".tree" + format.Extension()
}

// basePath strips a known format extension from output, or derives the base
// from input when output is empty.
func basePath(output, input string) string {
	if output == "" {
		if input == stdinName || input == "" {
			return defaultBase
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if _, err := render.ParseFormat(ext); err == nil || ext == ".gv" {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
