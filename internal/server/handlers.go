package server

import (
	"net/http"
	"strconv"

	"github.com/matzehuels/jsontree/pkg/errors"
	"github.com/matzehuels/jsontree/pkg/pipeline"
	"github.com/matzehuels/jsontree/pkg/query"
	"github.com/matzehuels/jsontree/pkg/render"
	"github.com/matzehuels/jsontree/pkg/tree"
)

// documentRequest is the common part of the stateless endpoints.
type documentRequest struct {
	Document    string `json:"document"`
	InputFormat string `json:"input_format,omitempty"`
	Refresh     bool   `json:"refresh,omitempty"`
}

func (d documentRequest) options(maxBytes int) pipeline.Options {
	return pipeline.Options{
		InputFormat: d.InputFormat,
		MaxBytes:    maxBytes,
		Refresh:     d.Refresh,
	}
}

type buildResponse struct {
	Nodes  []tree.Node `json:"nodes"`
	Edges  []tree.Edge `json:"edges"`
	Stats  treeStats   `json:"stats"`
	Cached bool        `json:"cached"`
}

type treeStats struct {
	Nodes    int `json:"nodes"`
	Edges    int `json:"edges"`
	MaxDepth int `json:"max_depth"`
}

type searchRequest struct {
	documentRequest
	Query string `json:"query"`
}

type searchResponse struct {
	Node      tree.Node `json:"node"`
	Tokens    []string  `json:"tokens"`
	Ancestors []string  `json:"ancestors"`
}

type renderRequest struct {
	documentRequest
	Format    string  `json:"format,omitempty"`
	Highlight string  `json:"highlight,omitempty"`
	Scale     float64 `json:"scale,omitempty"`
}

func (s *Server) bodyLimit() int64 {
	return int64(2*s.opts.MaxBytes + bodyOverhead)
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := decode(w, r, s.bodyLimit(), &req); err != nil {
		writeError(w, err)
		return
	}

	t, hit, err := s.runner.BuildWithCacheInfo(r.Context(), []byte(req.Document), req.options(s.opts.MaxBytes))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newBuildResponse(t, hit))
}

func newBuildResponse(t *tree.Tree, hit bool) buildResponse {
	resp := buildResponse{
		Nodes:  t.Nodes,
		Edges:  t.Edges,
		Stats:  treeStats{Nodes: len(t.Nodes), Edges: len(t.Edges), MaxDepth: t.MaxDepth()},
		Cached: hit,
	}
	if resp.Nodes == nil {
		resp.Nodes = []tree.Node{}
	}
	if resp.Edges == nil {
		resp.Edges = []tree.Edge{}
	}
	return resp
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decode(w, r, s.bodyLimit(), &req); err != nil {
		writeError(w, err)
		return
	}
	if err := errors.ValidateQuery(req.Query); err != nil {
		writeError(w, err)
		return
	}

	t, err := s.runner.Build(r.Context(), []byte(req.Document), req.options(s.opts.MaxBytes))
	if err != nil {
		writeError(w, err)
		return
	}
	n, err := s.runner.Search(r.Context(), t, req.Query)
	if err != nil {
		writeError(w, err)
		return
	}

	ancestors := t.Ancestors(n.ID)
	if ancestors == nil {
		ancestors = []string{}
	}
	writeJSON(w, http.StatusOK, searchResponse{
		Node:      *n,
		Tokens:    query.Tokenize(req.Query),
		Ancestors: ancestors,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decode(w, r, s.bodyLimit(), &req); err != nil {
		writeError(w, err)
		return
	}

	format, err := s.format(req.Format)
	if err != nil {
		writeError(w, err)
		return
	}

	opts := req.options(s.opts.MaxBytes)
	t, err := s.runner.Build(r.Context(), []byte(req.Document), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	opts.Formats = []string{string(format)}
	opts.Highlight = req.Highlight
	opts.Scale = req.Scale
	s.writeArtifact(w, r, t, format, opts)
}

// format parses a requested render format, falling back to the default.
func (s *Server) format(name string) (render.Format, error) {
	if name == "" {
		name = s.opts.DefaultFormat
	}
	f, err := render.ParseFormat(name)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid format")
	}
	return f, nil
}

func (s *Server) writeArtifact(w http.ResponseWriter, r *http.Request, t *tree.Tree, format render.Format, opts pipeline.Options) {
	artifacts, hit, err := s.runner.RenderWithCacheInfo(r.Context(), t, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	data := artifacts[string(format)]

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if format.IsImage() {
		cache := "miss"
		if hit {
			cache = "hit"
		}
		w.Header().Set("X-Cache", cache)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
