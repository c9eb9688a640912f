package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/debgems/pkg/cache"
	"github.com/matzehuels/debgems/pkg/config"
	"github.com/matzehuels/debgems/pkg/debian"
	"github.com/matzehuels/debgems/pkg/deps"
	"github.com/matzehuels/debgems/pkg/integrations/rubygems"
	"github.com/matzehuels/debgems/pkg/manifest"
	"github.com/matzehuels/debgems/pkg/observability"
	"github.com/matzehuels/debgems/pkg/report"
)

// Runner executes runs against one configuration. It holds no per-run
// state; concurrent Check calls are safe.
type Runner struct {
	Config *config.Config
	Cache  cache.Cache
	Logger *log.Logger

	// Archive and Registry replace the configured backends when set.
	Archive  debian.Archive
	Registry deps.Registry
}

// NewRunner creates a runner. A nil config uses defaults; a nil cache
// disables caching.
func NewRunner(cfg *config.Config, c cache.Cache, logger *log.Logger) *Runner {
	if cfg == nil {
		cfg = config.Default()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Config: cfg, Cache: c, Logger: logger}
}

// Check loads the manifest and resolves it. On cancellation the partial
// result is returned together with the context error.
func (r *Runner) Check(ctx context.Context, opts Options) (_ *Result, err error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	cfg := r.Config
	start := time.Now()

	app := firstNonEmpty(opts.App, cfg.App, manifest.AppName(opts.Manifest))
	observability.Run().OnCheckStart(ctx, app, opts.Manifest)
	gems := 0
	defer func() {
		observability.Run().OnCheckComplete(ctx, app, gems, time.Since(start), err)
	}()
	groups := opts.Groups
	if len(groups) == 0 {
		groups = cfg.Groups
	}

	reader, err := manifest.Detect(opts.Manifest, manifest.Options{App: app, Groups: groups})
	if err != nil {
		return nil, err
	}
	roots, err := reader.Load(opts.Manifest)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("loaded manifest", "path", opts.Manifest, "app", app, "gems", len(roots))

	names := debian.NewNames(cfg.DebianNames)
	probe, err := r.prober(names, opts)
	if err != nil {
		return nil, err
	}

	resolver, err := deps.NewResolver(probe, r.registry(opts.Refresh), deps.Options{
		Logger:       r.Logger,
		Workers:      cfg.Workers,
		MaxNodes:     cfg.MaxNodes,
		SkipPatterns: cfg.SkipPatterns,
		Exempt:       cfg.SkipVersionCheck,
		DebianName:   names.Name,
		CleanVersion: debian.UpstreamVersion,
		Progress:     opts.Progress,
	})
	if err != nil {
		return nil, err
	}

	res, err := resolver.Resolve(ctx, app, roots)
	if res == nil {
		return nil, err
	}
	gems = res.Set.Len()
	out := &Result{
		Result:   res,
		App:      app,
		Manifest: opts.Manifest,
		Summary:  report.Summarize(res.Set),
		Duration: time.Since(start),
	}
	r.Logger.Info("resolved dependencies",
		"gems", res.Set.Len(),
		"packaged", out.Summary.Packaged,
		"unpackaged", out.Summary.Unpackaged,
		"duration", out.Duration.Round(time.Millisecond))
	return out, err
}

// statusOnly hides the SuiteProbe side of a prober so the resolver skips
// the experimental fallback.
type statusOnly struct{ deps.StatusProbe }

func (r *Runner) prober(names *debian.Names, opts Options) (deps.StatusProbe, error) {
	cfg := r.Config
	seedPath := firstNonEmpty(opts.Seed, cfg.Seed)

	var seed map[string]deps.Packaging
	if seedPath != "" {
		var err error
		seed, err = debian.ReadSeedFile(seedPath, names)
		if err != nil {
			return nil, fmt.Errorf("read seed %s: %w", seedPath, err)
		}
		r.Logger.Debug("loaded seed", "path", seedPath, "packages", len(seed))
	}

	p := debian.NewProber(r.archive(opts.Refresh), debian.Options{
		Logger:  r.Logger,
		Cache:   r.Cache,
		TTL:     cfg.Cache.TTL,
		Refresh: opts.Refresh,
		Seed:    seed,
	})
	if !cfg.Experimental {
		return statusOnly{p}, nil
	}
	return p, nil
}

func (r *Runner) archive(refresh bool) debian.Archive {
	if r.Archive != nil {
		return r.Archive
	}
	cfg := r.Config
	policy := cfg.Retry.Policy()
	if cfg.Backend == config.BackendAPI {
		return debian.NewAPIArchive(r.Cache, cfg.Cache.TTL, policy).WithRefresh(refresh)
	}
	a := debian.NewCommandArchive(policy)
	a.Architectures = cfg.Architectures
	return a
}

func (r *Runner) registry(refresh bool) deps.Registry {
	if r.Registry != nil {
		return r.Registry
	}
	c := rubygems.NewClient(r.Cache, r.Config.Cache.TTL).WithRefresh(refresh)
	if r.Config.RubygemsURL != "" {
		c.WithBaseURL(r.Config.RubygemsURL)
	}
	c.WithRetry(r.Config.Retry.Policy())
	return c
}

// Render produces the artifact for one format.
func (r *Runner) Render(ctx context.Context, res *Result, format string) (data []byte, err error) {
	start := time.Now()
	defer func() {
		observability.Run().OnRender(ctx, format, len(data), time.Since(start), err)
	}()

	var buf bytes.Buffer
	switch format {
	case FormatJSON:
		err = report.WriteJSON(&buf, res.Set)
	case FormatEdges:
		err = report.WriteEdges(&buf, res.Edges)
	case FormatDOT:
		buf.WriteString(report.ToDOT(res.Result, report.DOTOptions{}))
	case FormatSVG:
		return report.RenderSVG(ctx, report.ToDOT(res.Result, report.DOTOptions{}))
	case FormatPDF:
		return report.RenderPDF(ctx, report.ToDOT(res.Result, report.DOTOptions{}))
	case FormatHTML:
		err = report.WriteHTML(&buf, res.App, res.Set)
	case FormatText:
		err = report.WriteText(&buf, res.Set)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// Write renders formats into dir and returns the written paths.
func (r *Runner) Write(ctx context.Context, res *Result, dir string, formats []string) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var paths []string
	for _, format := range formats {
		data, err := r.Render(ctx, res, format)
		if err != nil {
			return paths, err
		}
		path := filepath.Join(dir, FileName(res.App, format))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		r.Logger.Debug("wrote output", "format", format, "path", path)
		paths = append(paths, path)
	}
	return paths, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
