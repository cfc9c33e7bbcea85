package session

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/jsontree/pkg/clipboard"
	"github.com/matzehuels/jsontree/pkg/pipeline"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = stderrors.New("session not found")

	// ErrExpired is returned when a session has been idle longer than its TTL.
	ErrExpired = stderrors.New("session expired")
)

// DefaultTTL is the default idle lifetime of a session.
const DefaultTTL = 30 * time.Minute

// Store keeps sessions in memory, keyed by uuid.
// Each successful Get extends the session's lifetime by the TTL.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time

	runner *pipeline.Runner
	clip   clipboard.Writer
}

// NewStore creates a store whose sessions share runner and clip.
// A non-positive ttl uses [DefaultTTL].
func NewStore(runner *pipeline.Runner, clip clipboard.Writer, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, nil)
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
		runner:   runner,
		clip:     clip,
	}
}

// Create starts a new empty session.
func (s *Store) Create(ctx context.Context) *Session {
	sess := New(uuid.NewString(), s.runner, s.clip)

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	sess.CreatedAt = now
	sess.touch(now, s.ttl)
	s.sessions[sess.ID] = sess
	return sess
}

// Get returns the session with the given id and extends its lifetime.
// An expired session is removed and reported as ErrExpired.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := s.now()
	if sess.expired(now) {
		delete(s.sessions, id)
		return nil, ErrExpired
	}
	sess.touch(now, s.ttl)
	return sess, nil
}

// Delete removes a session. Deleting an unknown id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Cleanup removes expired sessions and returns how many were removed.
func (s *Store) Cleanup(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if sess.expired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, including expired ones not yet
// cleaned up.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Run calls Cleanup every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Cleanup(ctx); n > 0 {
				s.runner.Logger.Debug("expired sessions removed", "count", n)
			}
		}
	}
}
