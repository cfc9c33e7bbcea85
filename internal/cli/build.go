package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	jtio "github.com/matzehuels/jsontree/pkg/io"
	"github.com/matzehuels/jsontree/pkg/pipeline"
	"github.com/matzehuels/jsontree/pkg/tree"
)

// stdinName is the input argument that reads the document from stdin.
const stdinName = "-"

// inputOpts holds the flags shared by commands that read a document.
type inputOpts struct {
	inputFormat string
	noCache     bool
	refresh     bool
}

func (o *inputOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.inputFormat, "input-format", "", "document format: json, yaml (default: from file extension)")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "ignore cached results")
}

// options resolves the pipeline options for the named input.
func (o *inputOpts) options(input string) pipeline.Options {
	format := o.inputFormat
	if format == "" && input != stdinName {
		format = string(jtio.DetectFormat(input))
	}
	return pipeline.Options{InputFormat: strings.ToLower(format), Refresh: o.refresh}
}

// readInput reads the document named by input, or stdin for "-".
func readInput(cmd *cobra.Command, input string) ([]byte, error) {
	if input == stdinName {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", input, err)
	}
	return data, nil
}

// inputArg returns the single optional positional argument, defaulting to stdin.
func inputArg(args []string) string {
	if len(args) == 0 {
		return stdinName
	}
	return args[0]
}

// loadTree reads input and builds its tree through runner.
func loadTree(ctx context.Context, cmd *cobra.Command, runner *pipeline.Runner, input string, opts pipeline.Options) (*tree.Tree, bool, error) {
	data, err := readInput(cmd, input)
	if err != nil {
		return nil, false, err
	}
	return runner.BuildWithCacheInfo(ctx, data, opts)
}

// buildCommand creates the build command, which writes the tree as JSON.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		in     inputOpts
		output string
		asTab  bool
	)

	cmd := &cobra.Command{
		Use:   "build [file]",
		Short: "Build the node-link tree of a JSON or YAML document",
		Long: `Build the node-link tree of a JSON or YAML document.

Every value in the document becomes a node with an id, a display label, its
path from the root, its depth and a layout position. The tree is written as
JSON (nodes and edges) to stdout or to --output. Use --table for a readable
listing instead.

Reads stdin when no file (or "-") is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd, inputArg(args), in, output, asTab)
		},
	}

	in.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&asTab, "table", false, "print a node table instead of JSON")

	return cmd
}

func (c *CLI) runBuild(cmd *cobra.Command, input string, in inputOpts, output string, asTable bool) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, in.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(logger)
	t, hit, err := loadTree(ctx, cmd, runner, input, in.options(input))
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built %d nodes", t.Len()))

	if asTable {
		fmt.Fprintln(cmd.OutOrStdout(), renderNodeTable(t.Nodes, ""))
		printStats(t.Len(), len(t.Edges), t.MaxDepth(), hit)
		return nil
	}

	if output == "" {
		return jtio.WriteTree(t, cmd.OutOrStdout())
	}
	if err := jtio.ExportTree(t, output); err != nil {
		return err
	}
	printSuccess("Built tree")
	printStats(t.Len(), len(t.Edges), t.MaxDepth(), hit)
	printFile(output)
	printNextStep("Render it", fmt.Sprintf("%s render %s", appName, input))
	return nil
}
