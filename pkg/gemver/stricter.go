package gemver

import (
	"strings"

	errs "github.com/matzehuels/debgems/pkg/errors"
)

// leading parses the first clause of a requirement string, which is what
// decides merges.
func leading(s string) (Requirement, error) {
	first, _, _ := strings.Cut(s, ",")
	return ParseRequirement(first)
}

// Stricter returns whichever of a and b is more restrictive. On a tie the
// first argument is kept, so Stricter(a, a) == a.
//
//   - "=" wins over everything; two pins keep a
//   - two lower bounds keep the larger version
//   - two upper bounds keep the smaller version
//   - two "~>" keep the smaller version
//   - a lower bound wins over an upper bound
//   - "~>" wins over a lower bound when it has more than one component,
//     otherwise the larger version wins
//   - an upper bound wins over "~>"
func Stricter(a, b string) (string, error) {
	ra, err := leading(a)
	if err != nil {
		return "", err
	}
	rb, err := leading(b)
	if err != nil {
		return "", err
	}

	larger := func() string {
		if Compare(ra.Version, rb.Version) >= 0 {
			return a
		}
		return b
	}
	smaller := func() string {
		if Compare(ra.Version, rb.Version) <= 0 {
			return a
		}
		return b
	}

	switch {
	case ra.Op == Equal:
		return a, nil
	case rb.Op == Equal:
		return b, nil

	case ra.Op.lowerBound() && rb.Op.lowerBound():
		return larger(), nil
	case ra.Op.upperBound() && rb.Op.upperBound():
		return smaller(), nil
	case ra.Op == Pessimistic && rb.Op == Pessimistic:
		return smaller(), nil

	case ra.Op.lowerBound() && rb.Op.upperBound():
		return a, nil
	case ra.Op.upperBound() && rb.Op.lowerBound():
		return b, nil

	case ra.Op == Pessimistic && rb.Op.lowerBound():
		if ra.Version.Len() > 1 {
			return a, nil
		}
		return larger(), nil
	case ra.Op.lowerBound() && rb.Op == Pessimistic:
		if rb.Version.Len() > 1 {
			return b, nil
		}
		return larger(), nil

	case ra.Op == Pessimistic && rb.Op.upperBound():
		return b, nil
	case ra.Op.upperBound() && rb.Op == Pessimistic:
		return a, nil
	}

	return "", errs.Wrap(errs.ErrCodeUnhandledCombination, ErrUnhandledCombination,
		"%q (%s) vs %q (%s)", a, ra.Op, b, rb.Op)
}
