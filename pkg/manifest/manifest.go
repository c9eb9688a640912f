package manifest

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/debgems/pkg/deps"
	errs "github.com/matzehuels/debgems/pkg/errors"
)

// Group names.
const (
	GroupRuntime     = "runtime"
	GroupProduction  = "production"
	GroupDevelopment = "development"
	GroupTest        = "test"
)

// DefaultGroups are the groups kept when none are configured.
var DefaultGroups = []string{GroupRuntime, GroupProduction}

// Options configures the readers.
type Options struct {
	App    string   // Parent recorded on every returned record (optional)
	Groups []string // Groups to keep (default: runtime, production)
}

func (o Options) keeps(groups []string) (string, bool) {
	allowed := o.Groups
	if len(allowed) == 0 {
		allowed = DefaultGroups
	}
	for _, g := range groups {
		if slices.Contains(allowed, g) {
			return g, true
		}
	}
	return "", false
}

func (o Options) record(name, requirement, group string) *deps.Record {
	var rec *deps.Record
	if o.App != "" {
		rec = deps.NewRecord(name, requirement, o.App)
	} else {
		rec = deps.NewRecord(name, requirement)
	}
	rec.Group = group
	return rec
}

// Detect returns the reader for path based on its file name.
func Detect(path string, opts Options) (deps.ManifestReader, error) {
	base := filepath.Base(path)
	if err := errs.ValidateManifestFilename(base); err != nil {
		return nil, err
	}
	switch {
	case base == "Gemfile" || base == "gems.rb" || strings.HasSuffix(base, ".gemfile"):
		return &Gemfile{Options: opts}, nil
	case strings.HasSuffix(base, ".gemspec"):
		return &Gemspec{Options: opts}, nil
	}
	return nil, errs.New(errs.ErrCodeUnsupported, "unsupported manifest: %s", base)
}

// AppName guesses the application name for path: the gemspec's file name
// without extension, or the directory holding the Gemfile.
func AppName(path string) string {
	base := filepath.Base(path)
	if name, ok := strings.CutSuffix(base, ".gemspec"); ok {
		return name
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "app"
	}
	dir := filepath.Base(filepath.Dir(abs))
	if dir == "/" || dir == "." {
		return "app"
	}
	return dir
}

// normalizeGroup maps Bundler's :default group to runtime.
func normalizeGroup(g string) string {
	g = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(g), ":"))
	g = strings.Trim(g, `'"`)
	if g == "default" {
		return GroupRuntime
	}
	return g
}
