// Package debian answers where, and at which version, a Ruby gem is
// packaged in Debian.
//
// # Naming
//
// [Names] maps gem names to Debian source package names following the Ruby
// team convention: "ruby-" + name, underscores and double hyphens become a
// single hyphen. A table of exceptions covers gems packaged under their own
// name (rake, rails, bundler) or under irregular names.
//
// # Lookup Chain
//
// [Prober] implements [deps.StatusProbe]. For each package it asks its
// [Archive] in order:
//
//  1. unstable
//  2. experimental
//  3. the NEW queue
//  4. WNPP (an open ITP or RFP bug)
//
// and reports the first hit with a link to the tracker, the NEW queue page
// or the bug. A package found nowhere yields [deps.ErrNotFound].
//
// # Backends
//
//   - [CommandArchive] shells out to rmadison and wnpp-check from
//     devscripts. Output containing "curl:" is a transient failure and is
//     retried.
//   - [APIArchive] talks to the ftp-master madison API and the QA WNPP
//     list over HTTP.
//
// # Caching and Seeding
//
// Results are cached by Debian name. A status file from an earlier run can
// be loaded with [ReadSeed] to skip the archive for packages already known.
package debian
