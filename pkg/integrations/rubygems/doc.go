// Package rubygems provides an HTTP client for the RubyGems.org API.
//
// # Overview
//
// The client answers one question for the resolver: which gems does a
// given gem need at runtime, at the smallest version that satisfies a
// requirement? It implements [deps.Registry].
//
// # Usage
//
//	client := rubygems.NewClient(backend, 24*time.Hour)
//	reqs, err := client.DependenciesOf(ctx, "rails", "~> 7.0")
//	for _, r := range reqs {
//	    fmt.Println(r.Name, r.Requirement)
//	}
//
// # Endpoints
//
//   - GET /api/v1/versions/<gem>.json: every published version
//   - GET /api/v2/rubygems/<gem>/versions/<version>.json: one version,
//     including its runtime and development dependencies
//
// # Caching
//
// Responses are cached per gem and per gem version in the "rubygems:"
// namespace of the configured cache. Pass refresh=true to bypass it.
//
// # Version Selection
//
// Prerelease versions are ignored unless no release satisfies the
// requirement. Platform builds of the same version collapse into one.
package rubygems
