package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/jsontree/pkg/clipboard"
	"github.com/matzehuels/jsontree/pkg/session"
	"github.com/matzehuels/jsontree/pkg/tree"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	promptStyle       = lipgloss.NewStyle().Foreground(colorBlue)
)

// browseCommand creates the interactive tree browser.
func (c *CLI) browseCommand() *cobra.Command {
	var in inputOpts

	cmd := &cobra.Command{
		Use:   "browse [file]",
		Short: "Explore a document's tree in the terminal",
		Long: `Explore a document's tree in the terminal.

Move through the nodes with the arrow keys, press / to search by path
expression and enter to copy the node's path to the clipboard. Copying uses
the OSC 52 terminal escape, which works over SSH and inside tmux.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBrowse(cmd, inputArg(args), in)
		},
	}

	in.register(cmd)
	return cmd
}

func (c *CLI) runBrowse(cmd *cobra.Command, input string, in inputOpts) error {
	ctx := cmd.Context()

	if input == stdinName {
		return fmt.Errorf("browse needs a file argument; stdin is used for keyboard input")
	}
	data, err := readInput(cmd, input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, in.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	sess := session.New(input, runner, clipboard.NewOSC52(os.Stderr))
	st := sess.Visualize(ctx, string(data))
	if st.Error != "" {
		return fmt.Errorf("%s", st.Error)
	}

	m := newBrowseModel(ctx, sess, input)
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

// =============================================================================
// browseModel - Interactive tree browser
// =============================================================================

// browseModel is the bubbletea model behind "jsontree browse". It drives a
// session: searches select nodes and enter copies a node's path.
type browseModel struct {
	ctx   context.Context
	sess  *session.Session
	title string

	state     session.State
	cursor    int
	offset    int
	height    int
	searching bool
	query     string
}

func newBrowseModel(ctx context.Context, sess *session.Session, title string) browseModel {
	return browseModel{
		ctx:    ctx,
		sess:   sess,
		title:  title,
		state:  sess.State(),
		height: 20,
	}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "home", "g":
			m.move(-len(m.state.Nodes))
		case "end", "G":
			m.move(len(m.state.Nodes))
		case "/":
			m.searching = true
			m.query = ""
		case "enter", "y":
			if len(m.state.Nodes) > 0 {
				st, err := m.sess.Click(m.ctx, m.state.Nodes[m.cursor].ID)
				if err == nil {
					m.state = st
				}
			}
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-7, 5)
		m.scroll()
	}
	return m, nil
}

func (m browseModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.searching = false
	case tea.KeyEnter:
		m.searching = false
		m.state = m.sess.Search(m.ctx, m.query)
		m.jumpToSelected()
	case tea.KeyBackspace:
		if r := []rune(m.query); len(r) > 0 {
			m.query = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.query += string(msg.Runes)
	}
	return m, nil
}

// move shifts the cursor by delta, clamped to the node list.
func (m *browseModel) move(delta int) {
	m.cursor = min(max(m.cursor+delta, 0), max(len(m.state.Nodes)-1, 0))
	m.scroll()
}

// jumpToSelected puts the cursor on the selected node, keeping it in view.
func (m *browseModel) jumpToSelected() {
	for i, n := range m.state.Nodes {
		if n.ID == m.state.Selected {
			m.cursor = i
			break
		}
	}
	m.scroll()
}

func (m *browseModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%d nodes", len(m.state.Nodes))))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  / search  ⏎ copy path  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.state.Nodes))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderNode(i))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.searching:
		b.WriteString(promptStyle.Render("/ ") + m.query + "█")
	case m.state.Error != "":
		b.WriteString(StyleError.Render(m.state.Error))
	case m.state.Message != "":
		b.WriteString(m.state.Message)
		if len(m.state.Suggestions) > 0 {
			b.WriteString(listDimStyle.Render("  did you mean: " + strings.Join(m.state.Suggestions, ", ")))
		}
	default:
		b.WriteString(listDimStyle.Render(fmt.Sprintf("[%d/%d]", m.cursor+1, len(m.state.Nodes))))
	}
	return b.String()
}

func (m browseModel) renderNode(i int) string {
	n := m.state.Nodes[i]

	cursor := "  "
	if i == m.cursor {
		cursor = "▸ "
	}
	indent := strings.Repeat("  ", n.Depth)

	label := kindStyles[n.Kind].Render(n.Label)
	if n.ID == m.state.Selected {
		label = listSelectedStyle.Render(n.Label + " ◆")
	}
	line := cursor + indent + label
	if i == m.cursor && n.Path != tree.RootPath {
		line += "  " + listDimStyle.Render(n.Path)
	}
	return line
}
