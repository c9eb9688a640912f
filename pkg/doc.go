// Package pkg holds the debgems libraries.
//
// debgems answers one question for a Ruby application: which of its gems,
// direct and transitive, are already packaged in Debian at a version that
// satisfies the application's requirements, and which still need work.
//
// # Data Flow
//
//	Gemfile / gemspec
//	         ↓
//	    [manifest] root records
//	         ↓
//	    [deps] resolution loop
//	         ├── [debian] archive probe (rmadison, madison API, WNPP)
//	         ├── [gemver] requirement checks
//	         └── [integrations/rubygems] dependencies of unsatisfied gems
//	         ↓
//	    [report] status JSON, DOT/SVG/PDF graph, HTML page, tables
//
// [pipeline] wires these stages together for the CLI and for [server], which
// keeps finished runs in a [store].
//
// # Main Packages
//
// [gemver] - RubyGems versions and requirement strings: comparison,
// "~>" semantics, merging two requirements into the stricter one, and
// picking the smallest satisfying release.
//
// [deps] - Records, the working set and the resolver. Probes are
// prefetched by a bounded worker pool while the loop itself is
// single-writer.
//
// [debian] - Gem to Debian name mapping, archive backends and the suite
// chain unstable, experimental, NEW, ITP/RFP.
//
// # Infrastructure
//
// [cache] - File, Redis and no-op caches for probe and registry lookups.
//
// [store] - File and MongoDB storage for finished runs.
//
// [config] - TOML and YAML configuration.
//
// [retry], [errors], [observability] and [buildinfo] are shared by all of
// the above.
package pkg
