package debian

import (
	"maps"
	"strings"
)

var defaultExceptions = map[string]string{
	"rake":                 "rake",
	"rubyntlm":             "ruby-ntlm",
	"rails":                "rails",
	"asciidoctor":          "asciidoctor",
	"unicorn":              "unicorn",
	"capistrano":           "capistrano",
	"cucumber":             "cucumber",
	"rubyzip":              "ruby-zip",
	"thin":                 "thin",
	"racc":                 "racc",
	"pry":                  "pry",
	"rexical":              "rexical",
	"messagebus_ruby_api":  "ruby-messagebus-api",
	"bundler":              "bundler",
	"org-ruby":             "ruby-org",
	"CFPropertyList":       "ruby-cfpropertylist",
	"ruby-saml":            "ruby-saml",
	"ruby_parser":          "ruby-parser",
	"RedCloth":             "ruby-redcloth",
	"gitlab_omniauth-ldap": "ruby-omniauth-ldap",
	"pyu-ruby-sasl":        "ruby-sasl",
	"gitlab-grit":          "ruby-grit",
	"ruby-fogbugz":         "ruby-fogbugz",
	"ruby-oembed":          "ruby-oembed",
	"gollum-grit_adapter":  "ruby-gollum-rugged-adapter",
	"concurrent-ruby":      "ruby-concurrent",
	"ruby-beautify":        "ruby-beautify",
	"ruby-prof":            "ruby-prof",

	"rails-assets-markdown-it--markdown-it-for-inline": "ruby-rails-assets-markdown-it--markdown-it-for-inline",
}

// Names maps gem names to Debian package names.
type Names struct {
	exceptions map[string]string
}

// DefaultNames returns the mapping with the built-in exceptions.
func DefaultNames() *Names {
	return NewNames(nil)
}

// NewNames returns the built-in exceptions overridden by extra.
func NewNames(extra map[string]string) *Names {
	ex := maps.Clone(defaultExceptions)
	maps.Copy(ex, extra)
	return &Names{exceptions: ex}
}

var hyphenate = strings.NewReplacer("_", "-")

// Name returns the Debian package name for gem.
func (n *Names) Name(gem string) string {
	if name, ok := n.exceptions[gem]; ok {
		return name
	}
	name := hyphenate.Replace(gem)
	name = strings.ReplaceAll(name, "--", "-")
	return "ruby-" + strings.ToLower(name)
}

// Exceptions returns a copy of the exception table.
func (n *Names) Exceptions() map[string]string {
	return maps.Clone(n.exceptions)
}
