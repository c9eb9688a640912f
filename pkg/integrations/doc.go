// Package integrations provides the shared HTTP client used by the upstream
// API clients: RubyGems (subpackage rubygems) and the Debian ftp-master
// madison API (package debian).
//
// # Caching and Retries
//
// [Client.Cached] looks a key up in a [cache.Cache] namespace first and
// otherwise runs the fetch function under the configured [retry.Policy].
// Connection failures, 429 and 5xx responses are retryable; 404 maps to
// [ErrNotFound] and is returned immediately.
//
// # Query Strings
//
// [BuildURL] encodes a parameter struct with go-querystring:
//
//	type params struct {
//	    Package string `url:"package"`
//	    Text    string `url:"text,omitempty"`
//	}
//	u, _ := integrations.BuildURL(base, params{Package: "ruby-rack", Text: "on"})
package integrations
