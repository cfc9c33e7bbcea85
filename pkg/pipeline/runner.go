package pipeline

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jsontree/pkg/cache"
	"github.com/matzehuels/jsontree/pkg/errors"
	jtio "github.com/matzehuels/jsontree/pkg/io"
	"github.com/matzehuels/jsontree/pkg/jsonvalue"
	"github.com/matzehuels/jsontree/pkg/observability"
	"github.com/matzehuels/jsontree/pkg/query"
	"github.com/matzehuels/jsontree/pkg/render"
	"github.com/matzehuels/jsontree/pkg/render/nodelink"
	"github.com/matzehuels/jsontree/pkg/tree"
)

// Runner encapsulates pipeline execution with caching.
// The CLI, the browser and the API all use it to avoid duplicating caching
// and error mapping.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete build → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, data []byte, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}

	result := &Result{DocHash: docHash(data, opts.InputFormat)}

	// Stage 1: Build
	buildStart := time.Now()
	t, buildHit, err := r.BuildWithCacheInfo(ctx, data, opts)
	if err != nil {
		return nil, err
	}
	result.Tree = t
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = len(t.Nodes)
	result.Stats.EdgeCount = len(t.Edges)
	result.Stats.MaxDepth = t.MaxDepth()
	result.CacheInfo.BuildHit = buildHit

	r.Logger.Info("built tree",
		"nodes", result.Stats.NodeCount,
		"depth", result.Stats.MaxDepth,
		"duration", result.Stats.BuildTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, t, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// BuildWithCacheInfo validates and decodes a document, builds its tree and
// reports whether the tree came from the cache.
//
// Errors carry the codes EMPTY_INPUT, TOO_LARGE, INVALID_JSON or
// INVALID_INPUT. The INVALID_JSON message reads "Invalid JSON" (or "Invalid
// YAML") with the decoder detail as its cause.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, data []byte, opts Options) (*tree.Tree, bool, error) {
	if err := opts.ValidateForBuild(); err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	if err := errors.ValidateDocument(data, opts.MaxBytes); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, len(data))
	start := time.Now()

	cacheKey := r.Keyer.TreeKey(docHash(data, opts.InputFormat))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			v, err := jsonvalue.Parse(cached)
			if err == nil {
				t := tree.Build(v)
				observability.Cache().OnCacheHit(ctx, cache.KeyTypeTree)
				hooks.OnBuildComplete(ctx, t.Len(), time.Since(start), nil)
				return t, true, nil // Cache hit
			}
			r.Logger.Debug("discarding unreadable cached document", "key", cacheKey, "err", err)
		} else if err != nil {
			r.Logger.Warn("cache read failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, cache.KeyTypeTree)
	}

	v, err := jtio.DecodeDocument(data, jtio.InputFormat(opts.InputFormat))
	if err != nil {
		err = decodeError(err, opts.InputFormat)
		hooks.OnBuildComplete(ctx, 0, time.Since(start), err)
		return nil, false, err
	}
	t := tree.Build(v)
	hooks.OnBuildComplete(ctx, t.Len(), time.Since(start), nil)

	// Cache the normalized document; a hit rebuilds the tree from it.
	if r.caching() {
		if encoded, err := v.MarshalJSON(); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, encoded, cache.TTLTree); err != nil {
				r.Logger.Warn("cache write failed", "err", err)
			} else {
				observability.Cache().OnCacheSet(ctx, cache.KeyTypeTree, len(encoded))
			}
		}
	}

	return t, false, nil // Cache miss
}

// Build is a convenience wrapper that calls BuildWithCacheInfo and discards the cache hit info.
func (r *Runner) Build(ctx context.Context, data []byte, opts Options) (*tree.Tree, error) {
	t, _, err := r.BuildWithCacheInfo(ctx, data, opts)
	return t, err
}

// Search resolves a path expression against the tree's nodes.
//
// An empty (or whitespace-only) expression fails with EMPTY_QUERY. A miss
// fails with NO_MATCH wrapping an [errors.NoMatchError] that lists the
// closest node paths.
func (r *Runner) Search(ctx context.Context, t *tree.Tree, expr string) (*tree.Node, error) {
	if err := errors.ValidateQuery(expr); err != nil {
		return nil, err
	}

	start := time.Now()
	tokens := query.Tokenize(expr)
	var nodes []tree.Node
	if t != nil {
		nodes = t.Nodes
	}
	n, ok := query.Resolve(nodes, tokens)
	observability.Pipeline().OnSearch(ctx, len(tokens), ok, time.Since(start))

	if !ok {
		miss := &errors.NoMatchError{
			Query:       expr,
			Suggestions: query.Suggest(nodes, expr, query.DefaultSuggestions),
		}
		r.Logger.Debug("no match", "query", expr, "suggestions", miss.Suggestions)
		return nil, errors.Wrap(errors.ErrCodeNoMatch, miss, "No match found.")
	}
	r.Logger.Debug("match", "query", expr, "node", n.ID, "path", n.Path)
	return n, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
// Only SVG and PNG are cached; JSON and DOT are cheaper to produce than to
// look up. The hit flag is true when every cacheable format was found.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, t *tree.Tree, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid render options")
	}
	if t == nil {
		t = &tree.Tree{}
	}
	if opts.Highlight != "" {
		if _, ok := t.Node(opts.Highlight); !ok {
			return nil, false, errors.New(errors.ErrCodeNotFound, "node %q not found", opts.Highlight)
		}
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	allHit := true
	var dot, hash string

	for _, name := range opts.Formats {
		format := render.Format(name)
		hooks := observability.Pipeline()
		hooks.OnRenderStart(ctx, name)
		start := time.Now()

		var (
			out []byte
			hit bool
			err error
		)
		switch format {
		case render.FormatJSON:
			out, err = jtio.MarshalTree(t)
		case render.FormatDOT:
			dot = r.dot(dot, t, opts)
			out = []byte(dot)
		default:
			if hash == "" {
				hash = treeHash(t)
			}
			key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(name))
			out, hit = r.cached(ctx, key, opts.Refresh)
			if !hit {
				allHit = false
				dot = r.dot(dot, t, opts)
				out, err = r.image(ctx, format, dot)
				if err == nil {
					r.store(ctx, key, out)
				}
			}
		}

		hooks.OnRenderComplete(ctx, name, time.Since(start), err)
		if err != nil {
			return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "render %s", name)
		}
		r.Logger.Debug("rendered", "format", name, "bytes", len(out), "cached", hit)
		artifacts[name] = out
	}

	return artifacts, allHit, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, t *tree.Tree, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, t, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// caching reports whether writes can reach a real cache.
func (r *Runner) caching() bool {
	_, disabled := r.Cache.(cache.NullCache)
	return !disabled
}

// dot returns prev if it is already computed, else the DOT source for t.
func (r *Runner) dot(prev string, t *tree.Tree, opts Options) string {
	if prev != "" {
		return prev
	}
	return nodelink.ToDOT(t, nodelink.Options{Highlight: opts.Highlight, Scale: opts.Scale})
}

func (r *Runner) image(ctx context.Context, format render.Format, dot string) ([]byte, error) {
	switch format {
	case render.FormatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case render.FormatPNG:
		return nodelink.RenderPNG(ctx, dot)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

func (r *Runner) cached(ctx context.Context, key string, refresh bool) ([]byte, bool) {
	if refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
		return nil, false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, cache.KeyTypeArtifact)
	} else {
		observability.Cache().OnCacheMiss(ctx, cache.KeyTypeArtifact)
	}
	return data, hit
}

func (r *Runner) store(ctx context.Context, key string, data []byte) {
	if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cache.KeyTypeArtifact, len(data))
}

// docHash keys a document by its format and bytes, so the same text read as
// JSON and as YAML caches separately.
func docHash(data []byte, format string) string {
	if format == "" {
		format = DefaultInputFormat
	}
	return cache.Hash(append([]byte(format+"\x00"), data...))
}

// treeHash keys a tree by what a drawing of it shows: node ids, labels,
// paths, kinds and positions, plus the edges. Node values are left out, as
// they repeat every subtree once per ancestor.
func treeHash(t *tree.Tree) string {
	var b bytes.Buffer
	for _, n := range t.Nodes {
		fmt.Fprintf(&b, "%s\x00%s\x00%s\x00%s\x00%d\x00%g\x00%g\n",
			n.ID, n.Label, n.Path, n.Kind, n.Depth, n.Position.X, n.Position.Y)
	}
	for _, e := range t.Edges {
		fmt.Fprintf(&b, "%s\x00%s\n", e.Source, e.Target)
	}
	return cache.Hash(b.Bytes())
}

// decodeError maps decoder failures to coded errors.
func decodeError(err error, format string) error {
	if stderrors.Is(err, jsonvalue.ErrEmptyInput) {
		return errors.Wrap(errors.ErrCodeEmptyInput, err, "document is empty")
	}
	if format == string(jtio.InputYAML) {
		return errors.Wrap(errors.ErrCodeInvalidJSON, err, "Invalid YAML")
	}
	return errors.Wrap(errors.ErrCodeInvalidJSON, err, "Invalid JSON")
}
