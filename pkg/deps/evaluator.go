package deps

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/debgems/pkg/gemver"
)

// Evaluator decides whether a probed record's Debian version satisfies its
// requirement.
type Evaluator struct {
	// Exempt names are always satisfied.
	Exempt []string
	// Clean turns a Debian version into an upstream version. Nil keeps the
	// version as is.
	Clean  func(string) string
	Logger *log.Logger
}

// Evaluate applies the satisfaction rules to rec. It does not modify rec.
func (e *Evaluator) Evaluate(rec *Record) bool {
	if slices.Contains(e.Exempt, rec.Name) {
		return true
	}
	if rec.Requirement == "" {
		return rec.Status == Packaged
	}
	if rec.Version == "" || rec.Version == NoVersion {
		return false
	}

	version := rec.Version
	if e.Clean != nil {
		version = e.Clean(version)
	}
	ok, err := gemver.Satisfies(rec.Requirement, version)
	if err != nil {
		e.logger().Warn("cannot evaluate requirement", "gem", rec.Name, "requirement", rec.Requirement, "err", err)
		return false
	}
	return ok
}

func (e *Evaluator) logger() *log.Logger {
	if e.Logger == nil {
		return log.New(io.Discard)
	}
	return e.Logger
}
