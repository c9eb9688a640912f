package deps

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a [StatusProbe] when the package is in none of
// the places it looks.
var ErrNotFound = errors.New("package not found")

// ManifestReader loads the direct dependencies of an application.
type ManifestReader interface {
	// Load returns pending records for the dependencies declared in path.
	Load(path string) ([]*Record, error)
}

// StatusProbe reports the packaging status of a Debian package.
type StatusProbe interface {
	Query(ctx context.Context, debianName string) (*Packaging, error)
}

// SuiteProbe is implemented by probes that can look up a single suite. The
// resolver uses it to retry unsatisfied records against experimental.
type SuiteProbe interface {
	QuerySuite(ctx context.Context, debianName, suite string) (*Packaging, error)
}

// Registry lists the runtime dependencies of a gem at the smallest version
// satisfying requirement.
type Registry interface {
	DependenciesOf(ctx context.Context, name, requirement string) ([]Requirement, error)
}
