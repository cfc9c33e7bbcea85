// Package pipeline provides the build, search and render pipeline for jsontree.
//
// This package implements the document → tree → artifact pipeline shared by
// the CLI, the interactive browser and the HTTP API. By centralizing this
// logic, every entry point reports the same errors, uses the same cache keys
// and emits the same observability events.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: Validate and decode a JSON or YAML document, then lay it out as a tree
//  2. Search: Resolve a path expression against the tree's nodes
//  3. Render: Produce JSON, DOT, SVG or PNG output from the tree
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, data, pipeline.Options{
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	t, err := runner.Build(ctx, data, opts)
//	node, err := runner.Search(ctx, t, "user.address.city")
//	artifacts, err := runner.Render(ctx, t, opts)
//
// Errors are [errors.Error] values with codes such as INVALID_JSON,
// EMPTY_QUERY and NO_MATCH, so callers can map them to user messages and
// HTTP statuses.
//
// [errors.Error]: github.com/matzehuels/jsontree/pkg/errors.Error
package pipeline

import (
	"fmt"
	"time"

	"github.com/matzehuels/jsontree/pkg/cache"
	jtio "github.com/matzehuels/jsontree/pkg/io"
	"github.com/matzehuels/jsontree/pkg/render"
	"github.com/matzehuels/jsontree/pkg/tree"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Browser
// =============================================================================

const (
	// DefaultFormat is the render format used when none is requested.
	DefaultFormat = string(render.FormatSVG)

	// DefaultInputFormat is the document format used when none is given.
	DefaultInputFormat = string(jtio.InputJSON)

	// DefaultScale is the raster scale for PNG output.
	DefaultScale = 1.0

	// MaxScale bounds PNG scale to keep image sizes reasonable.
	MaxScale = 8.0
)

// ValidInputFormats is the set of supported document formats.
var ValidInputFormats = map[string]bool{
	string(jtio.InputJSON): true,
	string(jtio.InputYAML): true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Build options
	InputFormat string `json:"input_format,omitempty"` // "json" (default) or "yaml"
	MaxBytes    int    `json:"-"`                      // document size limit; 0 uses errors.MaxDocumentBytes
	Refresh     bool   `json:"refresh,omitempty"`      // bypass cache reads

	// Render options
	Formats   []string `json:"formats,omitempty"`
	Highlight string   `json:"highlight,omitempty"` // node id drawn emphasized
	Scale     float64  `json:"scale,omitempty"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Tree is the built node-link tree.
	Tree *tree.Tree

	// DocHash is the content hash of the input document.
	DocHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	MaxDepth   int
	BuildTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	BuildHit  bool // Whether the tree came from cache
	RenderHit bool // Whether all cacheable artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a render format is valid. Names are
// case-sensitive; use [render.ParseFormat] to normalize user input.
func ValidateFormat(format string) error {
	for _, f := range render.Formats {
		if string(f) == format {
			return nil
		}
	}
	return fmt.Errorf("invalid format: %q (must be one of: json, dot, svg, png)", format)
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateInputFormat checks that a document format is valid.
func ValidateInputFormat(format string) error {
	if !ValidInputFormats[format] {
		return fmt.Errorf("invalid input format: %q (must be one of: json, yaml)", format)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks all fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForBuild(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForBuild validates and sets defaults for building.
func (o *Options) ValidateForBuild() error {
	if o.InputFormat == "" {
		o.InputFormat = DefaultInputFormat
	}
	if o.MaxBytes < 0 {
		return fmt.Errorf("max bytes must not be negative")
	}
	return ValidateInputFormat(o.InputFormat)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Scale < 0 || o.Scale > MaxScale {
		return fmt.Errorf("invalid scale: %g (must be between 0 and %g)", o.Scale, MaxScale)
	}
	return ValidateFormats(o.Formats)
}

// ArtifactKeyOpts returns cache key options for rendering one format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:    format,
		Scale:     o.Scale,
		Highlight: o.Highlight,
	}
}
