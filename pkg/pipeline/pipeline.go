// Package pipeline wires the manifest readers, the Debian prober, the
// RubyGems registry and the resolver into one run, and renders the run's
// artifacts. The CLI and the HTTP server both go through [Runner].
//
// # Stages
//
//  1. Load: read the Gemfile or gemspec into root records
//  2. Resolve: probe Debian and expand unsatisfied gems through RubyGems
//  3. Render: produce JSON, DOT, SVG, PDF, HTML, edge list or text output
//
// # Usage
//
//	runner := pipeline.NewRunner(cfg, cache, logger)
//	res, err := runner.Check(ctx, pipeline.Options{Manifest: "Gemfile"})
//	if err != nil && res == nil {
//	    return err
//	}
//	paths, err := runner.Write(ctx, res, ".", []string{"json", "dot"})
package pipeline

import (
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/debgems/pkg/deps"
	errs "github.com/matzehuels/debgems/pkg/errors"
	"github.com/matzehuels/debgems/pkg/report"
)

// Output formats.
const (
	FormatJSON  = "json"  // ordered name -> record status file
	FormatDOT   = "dot"   // Graphviz source
	FormatSVG   = "svg"   // rendered graph
	FormatPDF   = "pdf"   // rendered graph, needs rsvg-convert
	FormatHTML  = "html"  // status page
	FormatEdges = "edges" // JSON edge list
	FormatText  = "txt"   // plain text table
)

// AllFormats lists every supported format.
var AllFormats = []string{FormatJSON, FormatDOT, FormatSVG, FormatPDF, FormatHTML, FormatEdges, FormatText}

// DefaultFormats are written when none are requested: the gemdeps pair.
var DefaultFormats = []string{FormatJSON, FormatDOT}

// Options configures one [Runner.Check].
type Options struct {
	Manifest string   // Gemfile or gemspec path (required)
	App      string   // Root name (default: config app, else derived from the path)
	Groups   []string // Groups to keep (default: config groups)
	Seed     string   // Status file from an earlier run (default: config seed)
	Refresh  bool     // Bypass cached probe and registry results

	// Progress, when set, is called after each record is visited.
	Progress func(done, total int, rec *deps.Record)
}

// Validate checks required fields.
func (o Options) Validate() error {
	if o.Manifest == "" {
		return errs.New(errs.ErrCodeInvalidInput, "manifest path is required")
	}
	return nil
}

// Result is a finished (or interrupted) run.
type Result struct {
	*deps.Result
	App      string
	Manifest string
	Summary  report.Summary
	Duration time.Duration
}

// ParseFormats splits a comma-separated list, defaulting to [DefaultFormats].
func ParseFormats(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return slices.Clone(DefaultFormats), nil
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		if !slices.Contains(AllFormats, f) {
			return nil, errs.New(errs.ErrCodeInvalidInput, "unknown format %q (want %s)", f, strings.Join(AllFormats, ", "))
		}
		if !slices.Contains(formats, f) {
			formats = append(formats, f)
		}
	}
	return formats, nil
}

// FileName returns the output file name of format for app.
func FileName(app, format string) string {
	switch format {
	case FormatJSON:
		return report.StatusFile(app)
	case FormatDOT:
		return report.GraphFile(app)
	case FormatEdges:
		return app + "_edges.json"
	case FormatText:
		return app + "_debian_status.txt"
	}
	return app + "." + format
}
