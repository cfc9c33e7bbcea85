// Package clipboard copies node paths to the user's clipboard.
//
// Terminals get the text through an OSC 52 escape sequence, which works over
// SSH and inside tmux without a platform clipboard tool. Copy failures are
// reported to the caller; the session layer decides whether they matter.
package clipboard

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aymanbagabas/go-osc52/v2"
)

// Writer places text on a clipboard.
type Writer interface {
	WritePath(ctx context.Context, text string) error
}

// OSC52 writes OSC 52 sequences to a terminal.
type OSC52 struct {
	mu  sync.Mutex
	out io.Writer
	env func(string) string
}

// NewOSC52 returns a writer targeting out, usually os.Stderr so the sequence
// does not mix with piped stdout.
func NewOSC52(out io.Writer) *OSC52 {
	return &OSC52{out: out, env: os.Getenv}
}

// WritePath emits the sequence for text, wrapped for tmux or screen when the
// environment says we are running inside one.
func (w *OSC52) WritePath(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	seq := osc52.New(text)
	switch {
	case w.env("TMUX") != "":
		seq = seq.Tmux()
	case strings.HasPrefix(w.env("TERM"), "screen"):
		seq = seq.Screen()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := seq.WriteTo(w.out)
	return err
}

// Nop discards everything.
type Nop struct{}

// WritePath implements Writer.
func (Nop) WritePath(context.Context, string) error { return nil }

// Recorder keeps every written text in memory.
type Recorder struct {
	mu    sync.Mutex
	texts []string
	Err   error // returned from WritePath when set
}

// WritePath implements Writer.
func (r *Recorder) WritePath(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.texts = append(r.texts, text)
	return nil
}

// Last returns the most recent text and whether anything was written.
func (r *Recorder) Last() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.texts) == 0 {
		return "", false
	}
	return r.texts[len(r.texts)-1], true
}

// All returns a copy of every written text in order.
func (r *Recorder) All() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.texts...)
}

var (
	_ Writer = (*OSC52)(nil)
	_ Writer = Nop{}
	_ Writer = (*Recorder)(nil)
)
