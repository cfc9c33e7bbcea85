package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/jsontree/pkg/errors"
	"github.com/matzehuels/jsontree/pkg/pipeline"
	"github.com/matzehuels/jsontree/pkg/session"
)

type visualizeRequest struct {
	Text string `json:"text"`
}

type sessionSearchRequest struct {
	Query string `json:"query"`
}

type clickRequest struct {
	NodeID string `json:"node_id"`
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create(r.Context())
	s.logger.Debug("session created", "session", sess.ID)
	w.Header().Set("Location", "/api/v1/sessions/"+sess.ID)
	writeJSON(w, http.StatusCreated, sess.State())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.State())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	_ = s.sessions.Delete(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// handleVisualize builds the session tree from the given text. A document
// that fails to parse is not an HTTP error: the state carries the message.
func (s *Server) handleVisualize(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req visualizeRequest
	if err := decode(w, r, s.bodyLimit(), &req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Visualize(r.Context(), req.Text))
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Clear())
}

// handleSessionSearch reports misses through the state message, like the
// page does, rather than as a 404.
func (s *Server) handleSessionSearch(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req sessionSearchRequest
	if err := decode(w, r, int64(errors.MaxQueryLength)+bodyOverhead, &req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Search(r.Context(), req.Query))
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req clickRequest
	if err := decode(w, r, bodyOverhead, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := errors.ValidateNodeID(req.NodeID); err != nil {
		writeError(w, err)
		return
	}
	st, err := sess.Click(r.Context(), req.NodeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleSessionRender renders the session tree with the selected node
// highlighted.
func (s *Server) handleSessionRender(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	format, err := s.format(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, err)
		return
	}

	t, selected := sess.View()
	opts := pipeline.Options{
		Formats:   []string{string(format)},
		Highlight: selected,
	}
	s.writeArtifact(w, r, t, format, opts)
}
