package debian

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/debgems/pkg/cache"
	"github.com/matzehuels/debgems/pkg/integrations"
	"github.com/matzehuels/debgems/pkg/retry"
)

const (
	// DefaultMadisonURL is the ftp-master madison endpoint rmadison uses.
	DefaultMadisonURL = "https://api.ftp-master.debian.org/madison"
	// DefaultWNPPURL is the QA list of open WNPP bugs wnpp-check downloads.
	DefaultWNPPURL = "https://qa.debian.org/data/bts/wnpp_rm"
)

// APIArchive queries madison and the WNPP list over HTTP, without devscripts.
type APIArchive struct {
	client        *integrations.Client
	madisonURL    string
	wnppURL       string
	architectures string

	refresh bool
	mu      sync.Mutex
	fetched map[string]bool // keys already refetched under refresh
}

// NewAPIArchive returns an APIArchive whose responses are cached in
// backend for ttl. The WNPP list is downloaded once per ttl.
func NewAPIArchive(backend cache.Cache, ttl time.Duration, p retry.Policy) *APIArchive {
	return &APIArchive{
		client:        integrations.NewClient(backend, "debian:", ttl, nil).WithRetry(p),
		madisonURL:    DefaultMadisonURL,
		wnppURL:       DefaultWNPPURL,
		architectures: DefaultArchitectures,
	}
}

// WithURLs overrides the madison and WNPP endpoints. Empty values keep the
// current ones.
func (a *APIArchive) WithURLs(madison, wnpp string) *APIArchive {
	if madison != "" {
		a.madisonURL = madison
	}
	if wnpp != "" {
		a.wnppURL = wnpp
	}
	return a
}

type madisonQuery struct {
	Package       string `url:"package"`
	Suite         string `url:"s,omitempty"`
	Architectures string `url:"a,omitempty"`
	Text          string `url:"text"`
}

// WithRefresh makes the archive refetch each madison answer and the WNPP
// list once, ignoring cached copies, and cache the fresh results for the
// rest of the run.
func (a *APIArchive) WithRefresh(refresh bool) *APIArchive {
	a.refresh = refresh
	return a
}

// bypass reports whether key must skip the cache. Under refresh each key
// is refetched only the first time it is asked for.
func (a *APIArchive) bypass(key string) bool {
	if !a.refresh {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fetched[key] {
		return false
	}
	if a.fetched == nil {
		a.fetched = make(map[string]bool)
	}
	a.fetched[key] = true
	return true
}

// Madison queries /madison?package=pkg&s=suite&a=arch&text=on.
func (a *APIArchive) Madison(ctx context.Context, pkg, suite string) (string, error) {
	u, err := integrations.BuildURL(a.madisonURL, madisonQuery{
		Package:       pkg,
		Suite:         suite,
		Architectures: a.architectures,
		Text:          "on",
	})
	if err != nil {
		return "", err
	}
	var out string
	key := "madison:" + suite + ":" + pkg
	err = a.client.Cached(ctx, key, a.bypass(key), &out, func() error {
		text, err := a.client.GetText(ctx, u)
		if err != nil {
			return err
		}
		if _, perr := parseMadison(text); errors.Is(perr, errTransient) {
			return retry.Retryable(perr)
		}
		out = text
		return nil
	})
	if err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return "", ErrNotInArchive
		}
		return "", err
	}
	return parseMadison(out)
}

// WNPP looks pkg up in the cached WNPP list.
func (a *APIArchive) WNPP(ctx context.Context, pkg string) (*WNPPBug, error) {
	var bugs map[string]WNPPBug
	err := a.client.Cached(ctx, "wnpp", a.bypass("wnpp"), &bugs, func() error {
		text, err := a.client.GetText(ctx, a.wnppURL)
		if err != nil {
			return err
		}
		bugs = parseWNPPList(text)
		return nil
	})
	if err != nil {
		return nil, err
	}
	bug, ok := bugs[pkg]
	if !ok {
		return nil, ErrNotInArchive
	}
	return &bug, nil
}

// parseWNPPList reads lines of the form
//
//	ruby-foo: ITP 123456 ...
//
// keeping only ITP and RFP bugs. When a package has both, ITP wins.
func parseWNPPList(text string) map[string]WNPPBug {
	bugs := make(map[string]WNPPBug)
	for line := range strings.Lines(text) {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		name := strings.TrimSuffix(fields[0], ":")
		kind := fields[1]
		if kind != "ITP" && kind != "RFP" {
			continue
		}
		if prev, ok := bugs[name]; ok && prev.Kind == "ITP" {
			continue
		}
		bugs[name] = WNPPBug{Kind: kind, Number: fields[2]}
	}
	return bugs
}
