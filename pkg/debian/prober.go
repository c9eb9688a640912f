package debian

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/debgems/pkg/cache"
	"github.com/matzehuels/debgems/pkg/deps"
)

// Link formats.
const (
	TrackerURL = "https://tracker.debian.org/pkg/%s"
	NewURL     = "https://ftp-master.debian.org/new/%s_%s.html"
	BugURL     = "https://bugs.debian.org/%s"
)

// DefaultTTL is how long probe results stay cached.
const DefaultTTL = 24 * time.Hour

// Options configures a [Prober].
type Options struct {
	Logger  *log.Logger               // Structured logger (default: discard)
	Cache   cache.Cache               // Result cache (default: none)
	TTL     time.Duration             // Cache TTL (default: 24h)
	Refresh bool                      // Ignore cached results
	Seed    map[string]deps.Packaging // Known results keyed by Debian name
}

// Prober implements [deps.StatusProbe] and [deps.SuiteProbe] on top of an
// [Archive].
type Prober struct {
	archive Archive
	cache   cache.Cache
	ttl     time.Duration
	refresh bool
	logger  *log.Logger

	mu   sync.RWMutex
	seed map[string]deps.Packaging
}

// NewProber returns a prober querying archive.
func NewProber(archive Archive, opts Options) *Prober {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	seed := make(map[string]deps.Packaging, len(opts.Seed))
	for k, v := range opts.Seed {
		seed[k] = v
	}
	return &Prober{
		archive: archive,
		cache:   cache.Namespace(opts.Cache, "status:"),
		ttl:     opts.TTL,
		refresh: opts.Refresh,
		logger:  opts.Logger,
		seed:    seed,
	}
}

// AddSeed registers known results, keyed by Debian name.
func (p *Prober) AddSeed(known map[string]deps.Packaging) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for k, v := range known {
		p.seed[k] = v
	}
}

// Query walks unstable, experimental, NEW and WNPP and returns the first
// hit. A package found nowhere yields [deps.ErrNotFound].
func (p *Prober) Query(ctx context.Context, name string) (*deps.Packaging, error) {
	p.mu.RLock()
	known, ok := p.seed[name]
	p.mu.RUnlock()
	if ok {
		p.logger.Debug("status from seed", "package", name, "suite", known.Suite)
		return found(&known)
	}

	key := "all:" + name
	if !p.refresh {
		var cached deps.Packaging
		if hit, _ := cache.GetJSON(ctx, p.cache, key, &cached); hit {
			return found(&cached)
		}
	}

	pkg, err := p.lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, p.cache, key, pkg, p.ttl); err != nil {
		p.logger.Debug("cache write failed", "package", name, "err", err)
	}
	return found(pkg)
}

// QuerySuite looks name up in a single suite (deps.SuiteUnstable,
// deps.SuiteExperimental or deps.SuiteNew).
func (p *Prober) QuerySuite(ctx context.Context, name, suite string) (*deps.Packaging, error) {
	archiveSuite, ok := archiveSuites[suite]
	if !ok {
		return nil, fmt.Errorf("unknown suite %q", suite)
	}

	key := "suite:" + archiveSuite + ":" + name
	if !p.refresh {
		var cached deps.Packaging
		if hit, _ := cache.GetJSON(ctx, p.cache, key, &cached); hit {
			return found(&cached)
		}
	}

	pkg, err := p.madison(ctx, name, suite)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, p.cache, key, pkg, p.ttl); err != nil {
		p.logger.Debug("cache write failed", "package", name, "suite", suite, "err", err)
	}
	return found(pkg)
}

var archiveSuites = map[string]string{
	deps.SuiteUnstable:     Unstable,
	deps.SuiteExperimental: Experimental,
	deps.SuiteNew:          New,
}

func (p *Prober) lookup(ctx context.Context, name string) (*deps.Packaging, error) {
	for _, suite := range []string{deps.SuiteUnstable, deps.SuiteExperimental, deps.SuiteNew} {
		pkg, err := p.madison(ctx, name, suite)
		if err != nil {
			return nil, err
		}
		if pkg.Status != deps.Unpackaged {
			return pkg, nil
		}
	}

	bug, err := p.archive.WNPP(ctx, name)
	switch {
	case errors.Is(err, ErrNotInArchive):
		return unpackaged(name), nil
	case err != nil:
		return nil, fmt.Errorf("wnpp %s: %w", name, err)
	}
	status := deps.PackageStatus(bug.Kind)
	pkg := &deps.Packaging{
		DebianName: name,
		Version:    deps.NoVersion,
		Suite:      bug.Kind,
		Status:     status,
	}
	if bug.Number != "" {
		pkg.Link = fmt.Sprintf(BugURL, bug.Number)
	}
	return pkg, nil
}

// madison returns the package in suite, or an Unpackaged result when it is
// not there.
func (p *Prober) madison(ctx context.Context, name, suite string) (*deps.Packaging, error) {
	version, err := p.archive.Madison(ctx, name, archiveSuites[suite])
	if errors.Is(err, ErrNotInArchive) {
		return unpackaged(name), nil
	}
	if err != nil {
		return nil, fmt.Errorf("madison %s %s: %w", suite, name, err)
	}

	pkg := &deps.Packaging{
		DebianName: name,
		Version:    version,
		Suite:      suite,
		Status:     deps.Packaged,
		Link:       fmt.Sprintf(TrackerURL, name),
	}
	if suite == deps.SuiteNew {
		pkg.Status = deps.InNew
		pkg.Link = fmt.Sprintf(NewURL, name, version)
	}
	return pkg, nil
}

func unpackaged(name string) *deps.Packaging {
	return &deps.Packaging{
		DebianName: name,
		Version:    deps.NoVersion,
		Suite:      deps.SuiteUnpackaged,
		Status:     deps.Unpackaged,
	}
}

func found(pkg *deps.Packaging) (*deps.Packaging, error) {
	if pkg.Status == deps.Unpackaged {
		return nil, deps.ErrNotFound
	}
	return pkg, nil
}
