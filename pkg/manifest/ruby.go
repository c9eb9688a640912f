package manifest

import (
	"regexp"
	"strings"
)

// stripComment removes a trailing "# ..." that is not inside a string.
func stripComment(line string) string {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '#':
			return strings.TrimSpace(line[:i])
		}
	}
	return strings.TrimSpace(line)
}

// splitArgs splits an argument list on commas that are outside strings,
// brackets and parentheses.
func splitArgs(s string) []string {
	var (
		args  []string
		quote byte
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '[' || c == '(' || c == '{' || c == '<':
			depth++
		case c == ']' || c == ')' || c == '}' || (c == '>' && depth > 0 && !strings.HasSuffix(s[:i], "=")):
			depth--
		case c == ',' && depth == 0:
			args = append(args, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	if rest := strings.TrimSpace(s[start:]); rest != "" {
		args = append(args, rest)
	}
	return args
}

var percentLiteral = regexp.MustCompile(`^%[qQ]?([<({\[])(.*)([>)}\]])$`)

// unquote returns the value of a Ruby string literal: '...', "...",
// %q<...>, %q(...), %q{...} or %q[...].
func unquote(tok string) (string, bool) {
	tok = strings.TrimSpace(tok)
	if len(tok) >= 2 {
		first, last := tok[0], tok[len(tok)-1]
		if (first == '\'' || first == '"') && last == first {
			return tok[1 : len(tok)-1], true
		}
	}
	if m := percentLiteral.FindStringSubmatch(tok); m != nil {
		return m[2], true
	}
	return "", false
}

// stringList returns the string literals of a single literal or an array
// literal such as [">= 1", "< 2"].
func stringList(tok string) ([]string, bool) {
	tok = strings.TrimSpace(tok)
	if s, ok := unquote(tok); ok {
		return []string{s}, true
	}
	if strings.HasPrefix(tok, "[") && strings.HasSuffix(tok, "]") {
		var out []string
		for _, item := range splitArgs(tok[1 : len(tok)-1]) {
			s, ok := unquote(item)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

var (
	newStyleOption = regexp.MustCompile(`^([a-z_]+):\s+(.+)$`)
	oldStyleOption = regexp.MustCompile(`^:([a-z_]+)\s*=>\s*(.+)$`)
)

// option parses "key: value" and ":key => value" hash arguments.
func option(tok string) (key, value string, ok bool) {
	if m := newStyleOption.FindStringSubmatch(tok); m != nil {
		return m[1], strings.TrimSpace(m[2]), true
	}
	if m := oldStyleOption.FindStringSubmatch(tok); m != nil {
		return m[1], strings.TrimSpace(m[2]), true
	}
	return "", "", false
}

// symbols parses :a, [:a, :b], "a" or ["a", "b"] into names.
func symbols(value string) []string {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") {
		value = value[1 : len(value)-1]
	}
	var out []string
	for _, item := range splitArgs(value) {
		if g := normalizeGroup(item); g != "" {
			out = append(out, g)
		}
	}
	return out
}

// joinRequirements joins requirement clauses the way RubyGems prints them.
func joinRequirements(clauses []string) string {
	cleaned := make([]string, 0, len(clauses))
	for _, c := range clauses {
		if c = strings.TrimSpace(c); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	return strings.Join(cleaned, ", ")
}
