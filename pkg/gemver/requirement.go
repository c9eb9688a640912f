package gemver

import (
	"errors"
	"fmt"
	"strings"

	errs "github.com/matzehuels/debgems/pkg/errors"
)

var (
	// ErrMalformedRequirement is returned when a clause has no version
	// digits or uses an unknown operator.
	ErrMalformedRequirement = errors.New("malformed requirement")

	// ErrUnhandledCombination is returned by [Stricter] for an operator
	// pairing outside its table.
	ErrUnhandledCombination = errors.New("unhandled requirement combination")

	// ErrNoSatisfyingVersion is returned by [SmallestSatisfying] when no
	// candidate satisfies the requirement.
	ErrNoSatisfyingVersion = errors.New("no satisfying version")
)

// Operator is a requirement operator.
type Operator string

const (
	Equal        Operator = "="
	Less         Operator = "<"
	LessEqual    Operator = "<="
	Greater      Operator = ">"
	GreaterEqual Operator = ">="
	Pessimistic  Operator = "~>"

	// NotEqual is valid RubyGems syntax that is recognized only to be
	// rejected with a clear message.
	NotEqual Operator = "!="
)

// Operators lists every recognized operator.
var Operators = []Operator{Equal, Less, LessEqual, Greater, GreaterEqual, Pessimistic}

// Valid reports whether op is one of [Operators].
func (op Operator) Valid() bool {
	switch op {
	case Equal, Less, LessEqual, Greater, GreaterEqual, Pessimistic:
		return true
	}
	return false
}

func (op Operator) lowerBound() bool { return op == Greater || op == GreaterEqual }
func (op Operator) upperBound() bool { return op == Less || op == LessEqual }

// SplitOperator separates a single clause into operator and version string.
// The operator is everything before the first digit; a clause starting with
// a digit means "=" and the empty clause means ">= 0".
func SplitOperator(token string) (Operator, string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return GreaterEqual, "0", nil
	}
	pos := strings.IndexFunc(token, func(r rune) bool { return r >= '0' && r <= '9' })
	if pos < 0 {
		return "", "", errs.Wrap(errs.ErrCodeMalformedRequirement, ErrMalformedRequirement, "no version in %q", token)
	}
	if pos == 0 {
		return Equal, token, nil
	}
	op := Operator(strings.TrimSpace(token[:pos]))
	if op == NotEqual {
		return "", "", errs.Wrap(errs.ErrCodeMalformedRequirement, ErrMalformedRequirement,
			"operator != is not supported in %q", token)
	}
	if !op.Valid() {
		return "", "", errs.Wrap(errs.ErrCodeMalformedRequirement, ErrMalformedRequirement, "unknown operator %q in %q", op, token)
	}
	return op, token[pos:], nil
}

// Requirement is a single operator/version clause.
type Requirement struct {
	Op      Operator
	Version Version
}

// ParseRequirement parses one clause.
func ParseRequirement(clause string) (Requirement, error) {
	op, v, err := SplitOperator(clause)
	if err != nil {
		return Requirement{}, err
	}
	return Requirement{Op: op, Version: ParseVersion(v)}, nil
}

// ParseRequirements parses a comma-separated requirement string. The empty
// string yields the single clause ">= 0".
func ParseRequirements(s string) ([]Requirement, error) {
	clauses := strings.Split(s, ",")
	reqs := make([]Requirement, 0, len(clauses))
	for _, c := range clauses {
		r, err := ParseRequirement(c)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, r)
	}
	return reqs, nil
}

// String formats the clause as "op version".
func (r Requirement) String() string {
	return fmt.Sprintf("%s %s", r.Op, r.Version)
}

// Match reports whether v satisfies the clause.
func (r Requirement) Match(v Version) bool {
	c := Compare(v, r.Version)
	switch r.Op {
	case Equal:
		return c == 0
	case Less:
		return c < 0
	case LessEqual:
		return c <= 0
	case Greater:
		return c > 0
	case GreaterEqual:
		return c >= 0
	case Pessimistic:
		return compatible(r.Version, v)
	}
	return false
}

func matchAll(reqs []Requirement, v Version) bool {
	for _, r := range reqs {
		if !r.Match(v) {
			return false
		}
	}
	return true
}

// Satisfies reports whether candidate satisfies every clause of requirement.
func Satisfies(requirement, candidate string) (bool, error) {
	reqs, err := ParseRequirements(requirement)
	if err != nil {
		return false, err
	}
	return matchAll(reqs, ParseVersion(candidate)), nil
}

// SmallestSatisfying returns the lowest candidate satisfying requirement.
// Ties between equal versions keep the first candidate.
func SmallestSatisfying(requirement string, candidates []string) (string, error) {
	reqs, err := ParseRequirements(requirement)
	if err != nil {
		return "", err
	}
	var (
		best  Version
		found bool
		pick  string
	)
	for _, c := range candidates {
		v := ParseVersion(c)
		if !matchAll(reqs, v) {
			continue
		}
		if !found || Compare(v, best) < 0 {
			best, pick, found = v, c, true
		}
	}
	if !found {
		return "", errs.Wrap(errs.ErrCodeNoSatisfyingVersion, ErrNoSatisfyingVersion,
			"none of %d versions matches %q", len(candidates), requirement)
	}
	return pick, nil
}
