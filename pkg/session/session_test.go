package session

import (
	"context"
	stderrors "errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jsontree/pkg/clipboard"
	"github.com/matzehuels/jsontree/pkg/errors"
	"github.com/matzehuels/jsontree/pkg/pipeline"
)

const sample = `{"user": {"name": "Alice", "address": {"city": "Wonderland"}}, "items": [1, 2]}`

func newTestSession(t *testing.T, clip clipboard.Writer) *Session {
	t.Helper()
	runner := pipeline.NewRunner(nil, nil, log.NewWithOptions(io.Discard, log.Options{}))
	return New("test", runner, clip)
}

func TestVisualize(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)

	st := s.Visualize(ctx, sample)
	if st.Error != "" {
		t.Fatalf("Visualize() error = %q", st.Error)
	}
	if len(st.Nodes) != 8 || len(st.Edges) != 7 {
		t.Errorf("Visualize() = %d nodes, %d edges; want 8, 7", len(st.Nodes), len(st.Edges))
	}
	if st.Text != sample {
		t.Error("Visualize() should keep the text")
	}
}

func TestVisualizeInvalid(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	s.Visualize(ctx, sample)
	s.Search(ctx, "city")

	st := s.Visualize(ctx, `{"a": `)
	if !strings.HasPrefix(st.Error, "Invalid JSON: ") {
		t.Errorf("Error = %q, want Invalid JSON prefix", st.Error)
	}
	if len(st.Nodes) != 0 || len(st.Edges) != 0 {
		t.Error("failed Visualize() should clear nodes and edges")
	}
	if st.Message != "" || st.Selected != "" {
		t.Errorf("failed Visualize() left message %q, selection %q", st.Message, st.Selected)
	}

	st = s.Visualize(ctx, "")
	if !strings.HasPrefix(st.Error, "Invalid JSON: ") {
		t.Errorf("empty input Error = %q", st.Error)
	}

	// A successful build clears the previous error
	st = s.Visualize(ctx, `[]`)
	if st.Error != "" || len(st.Nodes) != 1 {
		t.Errorf("recovery Visualize() = %+v", st)
	}
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	s.Visualize(ctx, sample)

	tests := []struct {
		name         string
		query        string
		wantMessage  string
		wantSelected string
	}{
		{"empty", "   ", MsgEnterPath, ""},
		{"match", "user.address.city", MsgMatchFound, "node_5"},
		{"miss keeps selection", "nope", MsgNoMatch, "node_5"},
		{"suffix", "items[1]", MsgMatchFound, "node_8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := s.Search(ctx, tt.query)
			if st.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", st.Message, tt.wantMessage)
			}
			if st.Selected != tt.wantSelected {
				t.Errorf("Selected = %q, want %q", st.Selected, tt.wantSelected)
			}
		})
	}
}

func TestView(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)

	if tr, selected := s.View(); tr.Len() != 0 || selected != "" {
		t.Errorf("View() before Visualize = %d nodes, %q", tr.Len(), selected)
	}

	s.Visualize(ctx, sample)
	s.Search(ctx, "city")
	tr, selected := s.View()
	n, ok := tr.Node(selected)
	if !ok || n.Path != "user.address.city" {
		t.Errorf("View() selection %q not in tree", selected)
	}
}

func TestViewSelectionMatchesTree(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	s.Visualize(ctx, sample)

	// The small document has no node_5, so a selection carried over from
	// the sample would not resolve.
	docs := []string{sample, `{"a": 1}`}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.Visualize(ctx, docs[i%2])
			s.Search(ctx, "city")
		}
	}()

	for i := 0; i < 200; i++ {
		tr, selected := s.View()
		if selected == "" {
			continue
		}
		if _, ok := tr.Node(selected); !ok {
			t.Fatalf("selection %q missing from its tree", selected)
		}
	}
	wg.Wait()
}

func TestSearchSuggestions(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	s.Visualize(ctx, sample)

	st := s.Search(ctx, "usr.name")
	if st.Message != MsgNoMatch || len(st.Suggestions) == 0 || st.Suggestions[0] != "user.name" {
		t.Errorf("Search(usr.name) = %q %v", st.Message, st.Suggestions)
	}
	st = s.Search(ctx, "user.name")
	if len(st.Suggestions) != 0 {
		t.Error("a match should clear suggestions")
	}
}

func TestSearchBeforeVisualize(t *testing.T) {
	s := newTestSession(t, nil)
	if st := s.Search(context.Background(), "a"); st.Message != MsgNoMatch {
		t.Errorf("Message = %q, want %q", st.Message, MsgNoMatch)
	}
}

func TestClick(t *testing.T) {
	ctx := context.Background()
	rec := &clipboard.Recorder{}
	s := newTestSession(t, rec)
	s.Visualize(ctx, sample)

	st, err := s.Click(ctx, "node_5")
	if err != nil {
		t.Fatalf("Click() error: %v", err)
	}
	if st.Message != "Copied path: user.address.city" {
		t.Errorf("Message = %q", st.Message)
	}
	if got, _ := rec.Last(); got != "user.address.city" {
		t.Errorf("clipboard = %q", got)
	}

	if _, err := s.Click(ctx, "node_99"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Click(unknown) error = %v, want NOT_FOUND", err)
	}
}

func TestClickClipboardFailure(t *testing.T) {
	ctx := context.Background()
	rec := &clipboard.Recorder{Err: stderrors.New("denied")}
	s := newTestSession(t, rec)
	s.Visualize(ctx, sample)
	s.Search(ctx, "items")

	st, err := s.Click(ctx, "node_2")
	if err != nil {
		t.Fatalf("Click() should swallow clipboard errors, got %v", err)
	}
	if st.Message != MsgMatchFound {
		t.Errorf("Message = %q, want it unchanged", st.Message)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	s.Visualize(ctx, sample)
	s.Search(ctx, "city")

	st := s.Clear()
	if st.Text != "" || len(st.Nodes) != 0 || len(st.Edges) != 0 || st.Selected != "" || st.Message != "" || st.Error != "" {
		t.Errorf("Clear() = %+v", st)
	}
	if s.Tree().Len() != 0 {
		t.Error("Tree() after Clear() should be empty")
	}
}

func TestSetText(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	s.Visualize(ctx, `[1]`)

	st := s.SetText(`{"draft": true`)
	if st.Text != `{"draft": true` || len(st.Nodes) != 2 {
		t.Errorf("SetText() should keep the tree: %+v", st)
	}
}

func TestStateIsACopy(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	st := s.Visualize(ctx, `{"a": 1}`)
	st.Nodes[0].Label = "changed"
	if s.State().Nodes[0].Label != "root" {
		t.Error("modifying a snapshot should not change the session")
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil, nil, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	sess := store.Create(ctx)
	if len(sess.ID) != 36 {
		t.Errorf("session id %q is not a uuid", sess.ID)
	}
	if got, err := store.Get(ctx, sess.ID); err != nil || got != sess {
		t.Fatalf("Get() = %v, %v", got, err)
	}
	if _, err := store.Get(ctx, "missing"); !stderrors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}

	// Get extends the lifetime
	now = now.Add(50 * time.Second)
	if _, err := store.Get(ctx, sess.ID); err != nil {
		t.Fatalf("Get() before expiry error: %v", err)
	}
	now = now.Add(50 * time.Second)
	if _, err := store.Get(ctx, sess.ID); err != nil {
		t.Fatalf("Get() within extended ttl error: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.Get(ctx, sess.ID); !stderrors.Is(err, ErrExpired) {
		t.Errorf("Get() after expiry error = %v, want ErrExpired", err)
	}
	if store.Len() != 0 {
		t.Error("expired session should be removed")
	}
}

func TestStoreCleanupAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil, nil, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	a := store.Create(ctx)
	store.Create(ctx)
	now = now.Add(30 * time.Second)
	c := store.Create(ctx)

	now = now.Add(45 * time.Second)
	if n := store.Cleanup(ctx); n != 2 {
		t.Errorf("Cleanup() = %d, want 2", n)
	}
	if _, err := store.Get(ctx, c.ID); err != nil {
		t.Errorf("fresh session removed: %v", err)
	}
	if _, err := store.Get(ctx, a.ID); !stderrors.Is(err, ErrNotFound) {
		t.Errorf("cleaned session Get() error = %v, want ErrNotFound", err)
	}

	if err := store.Delete(ctx, c.ID); err != nil {
		t.Fatal(err)
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d after Delete, want 0", store.Len())
	}
}
