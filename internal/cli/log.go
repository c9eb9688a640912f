// Package cli implements the debgems command-line interface.
//
// The CLI checks a Gemfile or gemspec against the Debian archive, renders
// stored status files, manages saved runs and the lookup cache, and serves
// reports over HTTP. It is built with cobra and logs through
// charmbracelet/log.
//
// # Commands
//
//   - check: resolve a manifest and write the status file and graph
//   - status: print a status file as a table
//   - graph: render a status file as DOT, SVG, PDF or HTML
//   - serve: run the report server
//   - runs: list, show and delete saved runs
//   - cache: manage the lookup cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// reports cache and HTTP activity.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// elapsed returns the time since the tracker was created, rounded to the millisecond.
func (p *progress) elapsed() time.Duration {
	return time.Since(p.start).Round(time.Millisecond)
}

// done logs msg along with the elapsed time.
// Example output: "Wrote 3 files (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, p.elapsed())
}
