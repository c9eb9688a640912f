package manifest

import (
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/matzehuels/debgems/pkg/deps"
	errs "github.com/matzehuels/debgems/pkg/errors"
)

// Gemspec reads gem specifications.
type Gemspec struct {
	Options
}

var (
	depCall  = regexp.MustCompile(`^\w+\.add_(runtime_|development_)?dependency\b\s*\(?(.*?)\)?$`)
	nameAttr = regexp.MustCompile(`^\w+\.name\s*=\s*(.+)$`)
)

// Load parses the gemspec at path.
func (g *Gemspec) Load(path string) ([]*deps.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "manifest %s", path)
		}
		return nil, err
	}
	defer f.Close()
	return g.Parse(f)
}

// Parse reads gemspec source from r. add_dependency and
// add_runtime_dependency belong to runtime, add_development_dependency to
// development.
func (g *Gemspec) Parse(r io.Reader) ([]*deps.Record, error) {
	lines, err := logicalLines(r)
	if err != nil {
		return nil, err
	}

	var records []*deps.Record
	seen := make(map[string]bool)
	for _, ln := range lines {
		m := depCall.FindStringSubmatch(ln.text)
		if m == nil {
			continue
		}
		group := GroupRuntime
		if m[1] == "development_" {
			group = GroupDevelopment
		}
		if _, ok := g.keeps([]string{group}); !ok {
			continue
		}

		args := splitArgs(m[2])
		if len(args) == 0 {
			return nil, errs.New(errs.ErrCodeInvalidManifest, "line %d: dependency without a name", ln.number)
		}
		name, ok := unquote(args[0])
		if !ok {
			return nil, errs.New(errs.ErrCodeInvalidManifest, "line %d: dependency name is not a string: %s", ln.number, args[0])
		}
		if err := errs.ValidateGemName(name); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidManifest, err, "line %d", ln.number)
		}
		if seen[name] {
			continue
		}
		seen[name] = true

		var clauses []string
		for _, arg := range args[1:] {
			if list, ok := stringList(arg); ok {
				clauses = append(clauses, list...)
			}
		}
		records = append(records, g.record(name, joinRequirements(clauses), group))
	}
	return records, nil
}

// SpecName returns the value of the "<spec>.name = ..." attribute, if it is
// a string literal.
func SpecName(r io.Reader) (string, error) {
	lines, err := logicalLines(r)
	if err != nil {
		return "", err
	}
	for _, ln := range lines {
		if m := nameAttr.FindStringSubmatch(ln.text); m != nil {
			if s, ok := unquote(strings.TrimSpace(m[1])); ok {
				return s, nil
			}
		}
	}
	return "", nil
}
