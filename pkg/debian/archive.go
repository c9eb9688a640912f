package debian

import (
	"context"
	"errors"
	"strings"
)

// Archive suites as understood by madison.
const (
	Unstable     = "unstable"
	Experimental = "experimental"
	New          = "new"
)

// DefaultArchitectures restricts madison to binary-independent and amd64
// uploads.
const DefaultArchitectures = "amd64,all"

var (
	// ErrNotInArchive is returned by an [Archive] when the package has no
	// upload in the requested suite, or no WNPP bug.
	ErrNotInArchive = errors.New("not in archive")

	// errTransient marks output that indicates a failed download rather
	// than an answer.
	errTransient = errors.New("transient archive failure")
)

// Archive looks packages up in the Debian archive and the WNPP list.
type Archive interface {
	// Madison returns the version of pkg in suite.
	Madison(ctx context.Context, pkg, suite string) (string, error)
	// WNPP returns the open work-needing bug for pkg.
	WNPP(ctx context.Context, pkg string) (*WNPPBug, error)
}

// WNPPBug is an open ITP or RFP bug.
type WNPPBug struct {
	Kind   string `json:"kind"`
	Number string `json:"number"`
}

// parseMadison extracts the version column from madison's text output:
//
//	ruby-rack | 2.2.4-3 | unstable | source, all
//
// The first line with a version wins.
func parseMadison(out string) (string, error) {
	if strings.Contains(out, "curl:") {
		return "", errTransient
	}
	for line := range strings.Lines(out) {
		fields := strings.Split(line, "|")
		if len(fields) < 2 {
			continue
		}
		if v := strings.TrimSpace(fields[1]); v != "" {
			return v, nil
		}
	}
	return "", ErrNotInArchive
}

// parseWNPPCheck reads wnpp-check output such as
//
//	(ITP - #123456) https://bugs.debian.org/123456 ruby-foo
func parseWNPPCheck(out string) (*WNPPBug, error) {
	if strings.Contains(out, "curl:") {
		return nil, errTransient
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return nil, ErrNotInArchive
	}
	var kind string
	switch {
	case strings.Contains(out, "ITP"):
		kind = "ITP"
	case strings.Contains(out, "RFP"):
		kind = "RFP"
	default:
		return nil, ErrNotInArchive
	}
	start := strings.Index(out, "#")
	end := strings.Index(out, ")")
	if start < 0 || end <= start {
		return &WNPPBug{Kind: kind}, nil
	}
	return &WNPPBug{Kind: kind, Number: strings.TrimSpace(out[start+1 : end])}, nil
}
