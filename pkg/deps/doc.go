// Package deps drives dependency resolution for a Ruby application against
// the Debian archive.
//
// # Overview
//
// A run starts from the records read out of a Gemfile or gemspec and walks
// them in discovery order. Each record is checked against the Debian
// archive through a [StatusProbe]; records whose packaged version does not
// satisfy the declared requirement are expanded through a [Registry] into
// their own runtime dependencies, which are appended to the same
// [WorkingSet] and visited later in the same pass.
//
//	r, err := deps.NewResolver(prober, rubygemsClient, deps.Options{
//	    Logger:       logger,
//	    SkipPatterns: []string{"rails-assets"},
//	    DebianName:   debian.DefaultNames().Name,
//	})
//	res, err := r.Resolve(ctx, "myapp", seed)
//
// # Working Set
//
// The [WorkingSet] holds at most one [Record] per gem name, in insertion
// order. A gem required by several parents keeps a single record whose
// Parents list grows, and whose requirement is tightened with
// [gemver.Stricter]. Records are never probed twice.
//
// # Failure Handling
//
// A failing probe or registry lookup is logged with the gem name and only
// degrades that record. Resolve returns an error only when the context is
// cancelled.
//
// # Concurrency
//
// Status probes are I/O-bound, so the resolver prefetches them for every
// discovered record on a bounded pool of goroutines ([Options.Workers]).
// The loop itself and every mutation of the working set stay on the calling
// goroutine.
package deps
