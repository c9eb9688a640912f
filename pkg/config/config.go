// Package config loads debgems settings.
//
// Settings come from a TOML or YAML file. The file named by --config is
// used when given; otherwise debgems.toml, .debgems.toml, debgems.yml or
// .debgems.yml in the working directory, otherwise built-in defaults.
// Values in the file override the defaults key by key; command-line flags
// override the file.
//
//	app = "diaspora"
//	groups = ["runtime", "production"]
//	backend = "api"
//	workers = 8
//
//	[cache]
//	ttl = "12h"
//	redis_url = "redis://localhost:6379/0"
//
//	[store]
//	mongo_uri = "mongodb://localhost:27017"
//
// Unknown keys are rejected so typos surface as INVALID_CONFIG errors.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/debgems/pkg/deps"
	errs "github.com/matzehuels/debgems/pkg/errors"
	"github.com/matzehuels/debgems/pkg/manifest"
	"github.com/matzehuels/debgems/pkg/retry"
)

// Probe backends.
const (
	BackendCommand = "command" // rmadison and wnpp-check
	BackendAPI     = "api"     // ftp-master madison API and the WNPP list
)

// Candidates are the file names searched in the working directory.
var Candidates = []string{"debgems.toml", ".debgems.toml", "debgems.yml", ".debgems.yml", "debgems.yaml", ".debgems.yaml"}

// Config holds every setting.
type Config struct {
	App              string            `toml:"app" yaml:"app"`
	Groups           []string          `toml:"groups" yaml:"groups"`
	SkipPatterns     []string          `toml:"skip_patterns" yaml:"skip_patterns"`
	SkipVersionCheck []string          `toml:"skip_version_check" yaml:"skip_version_check"`
	DebianNames      map[string]string `toml:"debian_names" yaml:"debian_names"`
	Backend          string            `toml:"backend" yaml:"backend"`
	Architectures    string            `toml:"architectures" yaml:"architectures"`
	Experimental     bool              `toml:"experimental" yaml:"experimental"`
	Seed             string            `toml:"seed" yaml:"seed"`
	OutputDir        string            `toml:"output_dir" yaml:"output_dir"`
	RubygemsURL      string            `toml:"rubygems_url" yaml:"rubygems_url"`
	Workers          int               `toml:"workers" yaml:"workers"`
	MaxNodes         int               `toml:"max_nodes" yaml:"max_nodes"`

	Cache  CacheConfig  `toml:"cache" yaml:"cache"`
	Retry  RetryConfig  `toml:"retry" yaml:"retry"`
	Server ServerConfig `toml:"server" yaml:"server"`
	Store  StoreConfig  `toml:"store" yaml:"store"`

	path string
}

// CacheConfig configures the probe and registry cache.
type CacheConfig struct {
	Dir      string        `toml:"dir" yaml:"dir"`             // default: user cache dir
	TTL      time.Duration `toml:"ttl" yaml:"ttl"`             // default: 24h
	RedisURL string        `toml:"redis_url" yaml:"redis_url"` // use Redis instead of files
	Disabled bool          `toml:"disabled" yaml:"disabled"`
}

// RetryConfig configures the shared retry policy.
type RetryConfig struct {
	Attempts int           `toml:"attempts" yaml:"attempts"`
	Delay    time.Duration `toml:"delay" yaml:"delay"`
}

// Policy returns the retry policy.
func (r RetryConfig) Policy() retry.Policy {
	return retry.Policy{Attempts: r.Attempts, Delay: r.Delay}.WithDefaults()
}

// ServerConfig configures "debgems serve".
type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr"`
}

// StoreConfig configures where runs are kept.
type StoreConfig struct {
	Dir      string `toml:"dir" yaml:"dir"`
	MongoURI string `toml:"mongo_uri" yaml:"mongo_uri"`
	Database string `toml:"database" yaml:"database"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Groups:           slices.Clone(manifest.DefaultGroups),
		SkipPatterns:     []string{"^rails-assets-"},
		SkipVersionCheck: []string{"bootstrap-sass", "messagebus_ruby_api", "gitlab_omniauth-ldap"},
		DebianNames:      map[string]string{},
		Backend:          BackendCommand,
		Architectures:    "amd64,all",
		Experimental:     true,
		OutputDir:        ".",
		RubygemsURL:      "https://rubygems.org",
		Workers:          deps.DefaultWorkers,
		MaxNodes:         deps.DefaultMaxNodes,
		Cache:            CacheConfig{TTL: 24 * time.Hour},
		Retry:            RetryConfig{Attempts: retry.DefaultAttempts, Delay: retry.DefaultDelay},
		Server:           ServerConfig{Addr: "localhost:8080"},
	}
}

// Path returns the file the configuration was loaded from, or "".
func (c *Config) Path() string { return c.path }

// Load reads the configuration. An explicit path must exist; otherwise the
// working directory is searched and defaults are used when nothing is found.
func Load(path, workDir string) (*Config, error) {
	if path == "" {
		for _, name := range Candidates {
			candidate := filepath.Join(workDir, name)
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if err := cfg.decode(path, data); err != nil {
		return nil, err
	}
	cfg.path = path
	return cfg, cfg.Validate()
}

func (c *Config) decode(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return c.DecodeYAML(bytes.NewReader(data))
	default:
		return c.DecodeTOML(bytes.NewReader(data))
	}
}

// DecodeTOML overlays TOML settings from r onto c.
func (c *Config) DecodeTOML(r io.Reader) error {
	md, err := toml.NewDecoder(r).Decode(c)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse TOML")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errs.New(errs.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// DecodeYAML overlays YAML settings from r onto c.
func (c *Config) DecodeYAML(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse YAML")
	}
	return nil
}

// Validate checks value ranges and patterns.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Backend != BackendCommand && c.Backend != BackendAPI {
		add("backend must be %q or %q, got %q", BackendCommand, BackendAPI, c.Backend)
	}
	if len(c.Groups) == 0 {
		add("groups must not be empty")
	}
	for _, p := range c.SkipPatterns {
		if _, err := regexp.Compile(p); err != nil {
			add("skip_patterns: %v", err)
		}
	}
	for gem, deb := range c.DebianNames {
		if err := errs.ValidateDebianName(deb); err != nil {
			add("debian_names[%s]: %s", gem, errs.UserMessage(err))
		}
	}
	if c.Workers < 1 {
		add("workers must be at least 1, got %d", c.Workers)
	}
	if c.MaxNodes < 1 {
		add("max_nodes must be at least 1, got %d", c.MaxNodes)
	}
	if c.Cache.TTL < 0 {
		add("cache.ttl must not be negative")
	}
	if c.Retry.Attempts < 0 {
		add("retry.attempts must not be negative")
	}
	if c.RubygemsURL != "" {
		if err := errs.ValidateURL(c.RubygemsURL); err != nil {
			add("rubygems_url: %s", errs.UserMessage(err))
		}
	}

	if len(problems) > 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "%s", strings.Join(problems, "; "))
	}
	return nil
}
