// Package gemver implements RubyGems-style version requirements.
//
// # Versions
//
// A [Version] is a sequence of dot-separated components. Purely numeric
// components compare numerically; any other pairing compares the string forms
// lexicographically. When one version is a strict prefix of the other, the
// shorter one is smaller:
//
//	Compare(ParseVersion("1.10"), ParseVersion("1.9"))    // +1
//	Compare(ParseVersion("1.0"), ParseVersion("1.0.0"))   // -1
//	Compare(ParseVersion("2.0.rc1"), ParseVersion("2.0.0")) // +1 ("rc1" > "0")
//
// # Requirements
//
// A requirement clause is an operator and a version: "=", "<", "<=", ">",
// ">=" or "~>". A bare version means "=", and the empty string means ">= 0".
// A requirement string may hold several comma-separated clauses, all of which
// must hold:
//
//	ok, _ := Satisfies(">= 1.0, < 2.0", "1.5.0") // true
//
// The pessimistic operator "~>" freezes every component but the last one of
// its version and lets the last one grow: "~> 2.1" accepts 2.1.0 and 2.9 but
// not 3.0, 2.0.9 or plain "2".
//
// # Merging
//
// [Stricter] picks the more restrictive of two requirements contributed by
// different parents of the same gem. It is a heuristic table, not a solver:
// an exact pin always wins, bounds pointing the same way keep the tighter
// bound, and a lower bound beats an upper bound.
//
// # Errors
//
// Failures wrap one of [ErrMalformedRequirement], [ErrUnhandledCombination]
// or [ErrNoSatisfyingVersion] inside a coded [errors.Error].
//
// [errors.Error]: github.com/matzehuels/debgems/pkg/errors.Error
package gemver
