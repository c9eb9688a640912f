package debian

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	n := DefaultNames()
	tests := map[string]string{
		"rack":                "ruby-rack",
		"mime-types":          "ruby-mime-types",
		"net_http_persistent": "ruby-net-http-persistent",
		"foo__bar":            "ruby-foo-bar",
		"foo-_bar":            "ruby-foo-bar",
		"RedCloth":            "ruby-redcloth",
		"Ascii85":             "ruby-ascii85",
		"rake":                "rake",
		"concurrent-ruby":     "ruby-concurrent",
		"rubyzip":             "ruby-zip",
		"rails-assets-markdown-it--markdown-it-for-inline": "ruby-rails-assets-markdown-it--markdown-it-for-inline",
	}
	for gem, want := range tests {
		assert.Equal(t, want, n.Name(gem), gem)
	}
}

func TestNewNamesOverrides(t *testing.T) {
	n := NewNames(map[string]string{"rake": "ruby-rake", "gitlab-markup": "ruby-github-markup"})
	assert.Equal(t, "ruby-rake", n.Name("rake"))
	assert.Equal(t, "ruby-github-markup", n.Name("gitlab-markup"))
	assert.Equal(t, "bundler", n.Name("bundler"))

	ex := n.Exceptions()
	ex["rack"] = "nope"
	assert.Equal(t, "ruby-rack", n.Name("rack"))
}

func TestUpstreamVersion(t *testing.T) {
	tests := map[string]string{
		"2.2.4-3":          "2.2.4",
		"1:2.2.4-3":        "2.2.4",
		"1.13.10+dfsg-2":   "1.13.10",
		"6.0.0~rc1-1":      "6.0.0",
		"3.2.5-1+deb12u1":  "3.2.5",
		"0.9.26-1~bpo11+1": "0.9.26",
		"1.0":              "1.0",
		"2:1.4-0-1":        "1.4-0",
		" 5.1.1-1 ":        "5.1.1",
	}
	for in, want := range tests {
		assert.Equal(t, want, UpstreamVersion(in), in)
	}
}
