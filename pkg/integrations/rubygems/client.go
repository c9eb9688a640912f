package rubygems

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/debgems/pkg/cache"
	"github.com/matzehuels/debgems/pkg/deps"
	errs "github.com/matzehuels/debgems/pkg/errors"
	"github.com/matzehuels/debgems/pkg/gemver"
	"github.com/matzehuels/debgems/pkg/integrations"
)

// DefaultBaseURL is the public RubyGems API host.
const DefaultBaseURL = "https://rubygems.org"

// Version is one published version of a gem.
type Version struct {
	Number     string `json:"number"`
	Platform   string `json:"platform"`
	Prerelease bool   `json:"prerelease"`
}

// GemVersion holds the metadata of one gem version.
type GemVersion struct {
	Name          string             // Gem name as published
	Version       string             // Version number
	Runtime       []deps.Requirement // Runtime dependencies in declaration order
	Development   []deps.Requirement // Development dependencies
	HomepageURI   string             // Homepage URL (may be empty)
	SourceCodeURI string             // Source code repository URL (may be empty)
}

// Client provides access to the RubyGems package registry API.
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
	refresh bool
}

// NewClient creates a RubyGems client with the given cache backend.
// Responses are cached for cacheTTL.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "rubygems:", cacheTTL, map[string]string{"Accept": "application/json"}),
		baseURL: DefaultBaseURL,
	}
}

// WithBaseURL points the client at another RubyGems-compatible host.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

// WithRefresh makes DependenciesOf bypass the cache.
func (c *Client) WithRefresh(refresh bool) *Client {
	c.refresh = refresh
	return c
}

// Versions lists the published version numbers of gem, deduplicated across
// platforms, in the order the registry returns them (newest first).
func (c *Client) Versions(ctx context.Context, gem string, refresh bool) ([]Version, error) {
	gem = strings.TrimSpace(gem)
	var out []Version
	err := c.Cached(ctx, "versions:"+gem, refresh, &out, func() error {
		var raw []Version
		u := fmt.Sprintf("%s/api/v1/versions/%s.json", c.baseURL, url.PathEscape(gem))
		if err := c.Get(ctx, u, &raw); err != nil {
			return wrap(err, gem)
		}
		out = dedupe(raw)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FetchVersion retrieves the metadata of one gem version.
func (c *Client) FetchVersion(ctx context.Context, gem, version string, refresh bool) (*GemVersion, error) {
	gem = strings.TrimSpace(gem)
	var info GemVersion
	err := c.Cached(ctx, "version:"+gem+"@"+version, refresh, &info, func() error {
		var data versionResponse
		u := fmt.Sprintf("%s/api/v2/rubygems/%s/versions/%s.json", c.baseURL, url.PathEscape(gem), url.PathEscape(version))
		if err := c.Get(ctx, u, &data); err != nil {
			return wrap(err, gem+" "+version)
		}
		info = GemVersion{
			Name:          data.Name,
			Version:       data.Version,
			Runtime:       requirements(data.Dependencies.Runtime),
			Development:   requirements(data.Dependencies.Development),
			HomepageURI:   data.HomepageURI,
			SourceCodeURI: data.SourceCodeURI,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// SmallestSatisfying picks the lowest release of gem satisfying
// requirement, falling back to prereleases when no release matches.
func (c *Client) SmallestSatisfying(ctx context.Context, gem, requirement string, refresh bool) (string, error) {
	versions, err := c.Versions(ctx, gem, refresh)
	if err != nil {
		return "", err
	}
	var releases, all []string
	for _, v := range versions {
		all = append(all, v.Number)
		if !v.Prerelease {
			releases = append(releases, v.Number)
		}
	}
	if picked, err := gemver.SmallestSatisfying(requirement, releases); err == nil {
		return picked, nil
	} else if !errors.Is(err, gemver.ErrNoSatisfyingVersion) {
		return "", err
	}
	picked, err := gemver.SmallestSatisfying(requirement, all)
	if err != nil {
		return "", fmt.Errorf("%s: %w", gem, err)
	}
	return picked, nil
}

// DependenciesOf returns the runtime dependencies of the smallest version
// of name satisfying requirement.
func (c *Client) DependenciesOf(ctx context.Context, name, requirement string) ([]deps.Requirement, error) {
	v, err := c.SmallestSatisfying(ctx, name, requirement, c.refresh)
	if err != nil {
		return nil, err
	}
	info, err := c.FetchVersion(ctx, name, v, c.refresh)
	if err != nil {
		return nil, err
	}
	return info.Runtime, nil
}

func wrap(err error, what string) error {
	if errors.Is(err, integrations.ErrNotFound) {
		return errs.Wrap(errs.ErrCodePackageNotFound, err, "gem %s", what)
	}
	return err
}

func dedupe(raw []Version) []Version {
	seen := make(map[string]bool, len(raw))
	out := make([]Version, 0, len(raw))
	for _, v := range raw {
		if seen[v.Number] {
			continue
		}
		seen[v.Number] = true
		out = append(out, v)
	}
	return out
}

func requirements(in []dependency) []deps.Requirement {
	out := make([]deps.Requirement, 0, len(in))
	for _, d := range in {
		out = append(out, deps.Requirement{
			Name:        strings.TrimSpace(d.Name),
			Requirement: strings.TrimSpace(d.Requirements),
		})
	}
	return out
}

type versionResponse struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	HomepageURI   string `json:"homepage_uri"`
	SourceCodeURI string `json:"source_code_uri"`
	Dependencies  struct {
		Runtime     []dependency `json:"runtime"`
		Development []dependency `json:"development"`
	} `json:"dependencies"`
}

type dependency struct {
	Name         string `json:"name"`
	Requirements string `json:"requirements"`
}
