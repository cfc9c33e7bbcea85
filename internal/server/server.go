// Package server exposes the tree pipeline and interactive sessions over HTTP.
//
// # Routes
//
// Stateless endpoints take the document in the request body:
//
//	POST /api/v1/build    {"document", "input_format"}           -> tree
//	POST /api/v1/search   {"document", "input_format", "query"}  -> node
//	POST /api/v1/render   {"document", "format", "highlight"}    -> bytes
//
// Session endpoints keep the document server side and mirror the browser
// page: visualize, clear, search and click.
//
//	POST   /api/v1/sessions
//	GET    /api/v1/sessions/{id}
//	DELETE /api/v1/sessions/{id}
//	PUT    /api/v1/sessions/{id}/document
//	DELETE /api/v1/sessions/{id}/document
//	POST   /api/v1/sessions/{id}/search
//	POST   /api/v1/sessions/{id}/click
//	GET    /api/v1/sessions/{id}/render?format=svg
//
// Errors are JSON objects of the form {"error": {"code", "message"}} with
// the status chosen by [errors.HTTPStatus].
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/jsontree/pkg/errors"
	"github.com/matzehuels/jsontree/pkg/pipeline"
	"github.com/matzehuels/jsontree/pkg/session"
)

const (
	// shutdownTimeout bounds graceful shutdown after the context ends.
	shutdownTimeout = 10 * time.Second

	// cleanupInterval is how often expired sessions are swept.
	cleanupInterval = time.Minute

	// bodyOverhead is added to the document limit when bounding request
	// bodies, which carry the document as an escaped JSON string.
	bodyOverhead = 64 << 10
)

// Options configures a Server.
type Options struct {
	// MaxBytes limits document size; 0 uses errors.MaxDocumentBytes.
	MaxBytes int

	// DefaultFormat is used by render requests that name no format.
	DefaultFormat string

	// Metrics, when set, is mounted at /metrics.
	Metrics http.Handler
}

// Server routes API requests to a pipeline runner and a session store.
type Server struct {
	runner   *pipeline.Runner
	sessions *session.Store
	logger   *log.Logger
	opts     Options
	router   chi.Router
}

// New creates a server. A nil store gets a fresh in-memory store with the
// default TTL; a nil logger uses log.Default().
func New(runner *pipeline.Runner, store *session.Store, logger *log.Logger, opts Options) *Server {
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	if store == nil {
		store = session.NewStore(runner, nil, session.DefaultTTL)
	}
	if logger == nil {
		logger = log.Default()
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = errors.MaxDocumentBytes
	}
	if opts.DefaultFormat == "" {
		opts.DefaultFormat = pipeline.DefaultFormat
	}

	s := &Server{
		runner:   runner,
		sessions: store,
		logger:   logger,
		opts:     opts,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/build", s.handleBuild)
		r.Post("/search", s.handleSearch)
		r.Post("/render", s.handleRender)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Put("/document", s.handleVisualize)
				r.Delete("/document", s.handleClear)
				r.Post("/search", s.handleSessionSearch)
				r.Post("/click", s.handleClick)
				r.Get("/render", s.handleSessionRender)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errors.New(errors.ErrCodeUnsupported, "method %s not allowed", r.Method))
	})
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully. Expired sessions are swept in the background meanwhile.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sessions.Run(sweepCtx, cleanupInterval)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}
