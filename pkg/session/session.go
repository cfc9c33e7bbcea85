// Package session holds the interactive state behind a tree view.
//
// A [Session] models one editor page: the document text, the tree built from
// it, the selected node and the status line shown to the user. The browser
// command and the HTTP API drive the same operations:
//
//   - [Session.Visualize]: build the tree from the current text
//   - [Session.Clear]: reset everything
//   - [Session.Search]: select the node matching a path expression
//   - [Session.Click]: copy a node's path to the clipboard
//
// Every operation returns a [State] snapshot, which is what front ends render.
//
// # Storage
//
// Sessions live in memory only. A [Store] hands out uuid-keyed sessions and
// expires them after a period of inactivity:
//
//	store := session.NewStore(runner, clipboard.Nop{}, session.DefaultTTL)
//	sess := store.Create(ctx)
//	st := sess.Visualize(ctx, `{"a": 1}`)
//	st = sess.Search(ctx, "a")
package session

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jsontree/pkg/clipboard"
	"github.com/matzehuels/jsontree/pkg/errors"
	"github.com/matzehuels/jsontree/pkg/pipeline"
	"github.com/matzehuels/jsontree/pkg/tree"
)

// Status messages shown after user actions.
const (
	MsgEnterPath  = "Enter a JSON path to search."
	MsgMatchFound = "Match found and centered."
	MsgNoMatch    = "No match found."
	MsgCopied     = "Copied path: "
)

// State is a point-in-time copy of a session, safe to serialize and share.
type State struct {
	ID          string      `json:"id"`
	Text        string      `json:"text"`
	Nodes       []tree.Node `json:"nodes"`
	Edges       []tree.Edge `json:"edges"`
	Selected    string      `json:"selected,omitempty"`
	Message     string      `json:"message,omitempty"`
	Error       string      `json:"error,omitempty"`
	Suggestions []string    `json:"suggestions,omitempty"`
	ExpiresAt   time.Time   `json:"expires_at"`
}

// Session is one user's view state. All methods are safe for concurrent use;
// operations on the same session are applied one at a time.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu          sync.Mutex
	expiresAt   time.Time
	text        string
	tree        *tree.Tree
	selected    string
	message     string
	errText     string
	suggestions []string

	runner *pipeline.Runner
	clip   clipboard.Writer
	logger *log.Logger
}

// New creates a detached session. Most callers use [Store.Create] instead.
// A nil clip discards copies.
func New(id string, runner *pipeline.Runner, clip clipboard.Writer) *Session {
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, nil)
	}
	if clip == nil {
		clip = clipboard.Nop{}
	}
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
		tree:      &tree.Tree{},
		runner:    runner,
		clip:      clip,
		logger:    runner.Logger,
	}
}

// SetText replaces the document text without rebuilding the tree.
func (s *Session) SetText(text string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
	return s.snapshot()
}

// Visualize builds the tree from text. The previous error and message are
// cleared first. On failure the error reads "Invalid JSON: <detail>" and the
// tree is emptied; on success the tree is replaced and the selection reset.
func (s *Session) Visualize(ctx context.Context, text string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.text = text
	s.errText = ""
	s.message = ""
	s.suggestions = nil
	s.selected = ""

	t, err := s.runner.Build(ctx, []byte(text), pipeline.Options{})
	if err != nil {
		s.errText = visualizeError(err)
		s.tree = &tree.Tree{}
		s.logger.Debug("visualize failed", "session", s.ID, "err", err)
		return s.snapshot()
	}
	s.tree = t
	s.logger.Debug("visualized", "session", s.ID, "nodes", t.Len())
	return s.snapshot()
}

// visualizeError keeps the "Invalid JSON: <detail>" wording for every build
// failure, including empty input.
func visualizeError(err error) string {
	if errors.Is(err, errors.ErrCodeInvalidJSON) {
		return errors.UserMessage(err)
	}
	return "Invalid JSON: " + errors.UserMessage(err)
}

// Clear empties the text, the tree, the selection and both status lines.
func (s *Session) Clear() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.text = ""
	s.tree = &tree.Tree{}
	s.selected = ""
	s.errText = ""
	s.message = ""
	s.suggestions = nil
	return s.snapshot()
}

// Search selects the node matching expr and reports the outcome in the
// message. A miss keeps the current selection and records suggestions.
func (s *Session) Search(ctx context.Context, expr string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.suggestions = nil
	n, err := s.runner.Search(ctx, s.tree, expr)
	switch {
	case err == nil:
		s.selected = n.ID
		s.message = MsgMatchFound
	case errors.Is(err, errors.ErrCodeEmptyQuery):
		s.message = MsgEnterPath
	default:
		s.message = MsgNoMatch
		var miss *errors.NoMatchError
		if stderrors.As(err, &miss) {
			s.suggestions = miss.Suggestions
		}
	}
	return s.snapshot()
}

// Click copies the path of the node with the given id. A successful copy
// sets the message to "Copied path: <path>"; a clipboard failure is logged
// and otherwise ignored. Unknown ids fail with NOT_FOUND.
func (s *Session) Click(ctx context.Context, nodeID string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.tree.Node(nodeID)
	if !ok {
		return s.snapshot(), errors.New(errors.ErrCodeNotFound, "node %q not found", nodeID)
	}
	if err := s.clip.WritePath(ctx, n.Path); err != nil {
		s.logger.Debug("clipboard write failed", "session", s.ID, "err", err)
		return s.snapshot(), nil
	}
	s.message = MsgCopied + n.Path
	return s.snapshot(), nil
}

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Tree returns the current tree. The tree is replaced, never mutated, so
// the result stays valid after later operations.
func (s *Session) Tree() *tree.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree
}

// View returns the current tree and the id of its selected node, read
// together so the selection always belongs to the returned tree.
func (s *Session) View() (*tree.Tree, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree, s.selected
}

func (s *Session) touch(now time.Time, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiresAt = now.Add(ttl)
}

func (s *Session) expired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.expiresAt.IsZero() && now.After(s.expiresAt)
}

// snapshot copies the state. Callers hold s.mu.
func (s *Session) snapshot() State {
	st := State{
		ID:          s.ID,
		Text:        s.text,
		Nodes:       []tree.Node{},
		Edges:       []tree.Edge{},
		Selected:    s.selected,
		Message:     s.message,
		Error:       s.errText,
		Suggestions: append([]string(nil), s.suggestions...),
		ExpiresAt:   s.expiresAt,
	}
	if s.tree != nil {
		st.Nodes = append(st.Nodes, s.tree.Nodes...)
		st.Edges = append(st.Edges, s.tree.Edges...)
	}
	return st
}
