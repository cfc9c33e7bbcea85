package cli

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jsontree/pkg/errors"
	"github.com/matzehuels/jsontree/pkg/query"
	"github.com/matzehuels/jsontree/pkg/tree"
)

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var (
		in  inputOpts
		all bool
	)

	cmd := &cobra.Command{
		Use:   "search <file> <path>",
		Short: "Find the node a path expression points at",
		Long: `Find the node a path expression points at.

Paths use dots between keys and brackets for array indices, with an optional
leading "$": user.address.city, $.items[0].name. A path also matches any node
whose path ends with it, so "city" finds user.address.city; the first such
node in tree order wins. Use --all to list every match.

When nothing matches, the closest node paths are suggested.`,
		Example: `  jsontree search data.json user.address.city
  jsontree search data.json '$.items[0].name'
  cat data.json | jsontree search - city --all`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSearch(cmd, args[0], args[1], in, all)
		},
	}

	in.register(cmd)
	cmd.Flags().BoolVar(&all, "all", false, "list every matching node")

	return cmd
}

func (c *CLI) runSearch(cmd *cobra.Command, input, expr string, in inputOpts, all bool) error {
	ctx := cmd.Context()

	runner, err := c.newRunner(ctx, in.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	t, _, err := loadTree(ctx, cmd, runner, input, in.options(input))
	if err != nil {
		return err
	}

	n, err := runner.Search(ctx, t, expr)
	if err != nil {
		var miss *errors.NoMatchError
		if stderrors.As(err, &miss) {
			printWarning("No match found for %q", expr)
			if len(miss.Suggestions) > 0 {
				printDetail("Did you mean: %s", strings.Join(miss.Suggestions, ", "))
			}
		}
		return err
	}

	out := cmd.OutOrStdout()
	if !all {
		fmt.Fprintln(out, formatMatch(t, n))
		return nil
	}
	matches := query.All(t.Nodes, query.Tokenize(expr))
	nodes := make([]tree.Node, len(matches))
	for i, m := range matches {
		nodes[i] = *m
	}
	fmt.Fprintln(out, renderNodeTable(nodes, n.ID))
	printInfo("%d matches; the first is selected", len(matches))
	return nil
}

// formatMatch describes a matched node on a few lines.
func formatMatch(t *tree.Tree, n *tree.Node) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", StyleTitle.Render(n.Path), StyleDim.Render("("+n.ID+")"))
	fmt.Fprintf(&b, "  label: %s\n", n.Label)
	fmt.Fprintf(&b, "  type:  %s\n", n.Kind)
	fmt.Fprintf(&b, "  depth: %d\n", n.Depth)
	fmt.Fprintf(&b, "  pos:   %g,%g", n.Position.X, n.Position.Y)
	if anc := t.Ancestors(n.ID); len(anc) > 0 {
		fmt.Fprintf(&b, "\n  under: %s", strings.Join(anc, " "+iconArrow+" "))
	}
	return b.String()
}
