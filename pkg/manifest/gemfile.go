package manifest

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/matzehuels/debgems/pkg/deps"
	errs "github.com/matzehuels/debgems/pkg/errors"
)

// Gemfile reads Bundler Gemfiles.
type Gemfile struct {
	Options
}

// Load parses the Gemfile at path.
func (g *Gemfile) Load(path string) ([]*deps.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "manifest %s", path)
		}
		return nil, err
	}
	defer f.Close()
	return g.Parse(f)
}

var (
	gemCall   = regexp.MustCompile(`^gem[\s(]`)
	groupCall = regexp.MustCompile(`^group[\s(](.*?)\)?\s+do(\s*\|[^|]*\|)?$`)
	opensDo   = regexp.MustCompile(`\bdo(\s*\|[^|]*\|)?$`)
	opensKw   = regexp.MustCompile(`^(if|unless|case|while|until|begin)\b`)
	closesEnd = regexp.MustCompile(`^end\b`)
)

// Parse reads Gemfile source from r. Gems declared more than once keep
// their first declaration.
func (g *Gemfile) Parse(r io.Reader) ([]*deps.Record, error) {
	var (
		records []*deps.Record
		seen    = make(map[string]bool)
		blocks  [][]string // group names per open block; nil for non-group blocks
	)

	lines, err := logicalLines(r)
	if err != nil {
		return nil, err
	}
	for _, ln := range lines {
		line := ln.text
		switch {
		case gemCall.MatchString(line):
			d, err := parseGem(line)
			if err != nil {
				return nil, errs.Wrap(errs.ErrCodeInvalidManifest, err, "line %d", ln.number)
			}
			groups := d.groups
			if len(groups) == 0 {
				groups = currentGroups(blocks)
			}
			group, ok := g.keeps(groups)
			if !ok || seen[d.name] {
				continue
			}
			seen[d.name] = true
			rec := g.record(d.name, d.requirement, group)
			rec.Source = d.source
			rec.Autorequire = d.require
			records = append(records, rec)

		case groupCall.MatchString(line):
			m := groupCall.FindStringSubmatch(line)
			var names []string
			for _, arg := range splitArgs(m[1]) {
				if _, _, isOpt := option(arg); isOpt {
					continue
				}
				names = append(names, symbols(arg)...)
			}
			blocks = append(blocks, names)

		case opensDo.MatchString(line) || opensKw.MatchString(line):
			blocks = append(blocks, nil)

		case closesEnd.MatchString(line):
			if len(blocks) > 0 {
				blocks = blocks[:len(blocks)-1]
			}
		}
	}
	return records, nil
}

// currentGroups returns the innermost enclosing group block's names, or
// runtime outside any group.
func currentGroups(blocks [][]string) []string {
	for i := len(blocks) - 1; i >= 0; i-- {
		if blocks[i] != nil {
			return blocks[i]
		}
	}
	return []string{GroupRuntime}
}

type gemDecl struct {
	name        string
	requirement string
	groups      []string
	source      string
	require     string
}

func parseGem(line string) (gemDecl, error) {
	body := strings.TrimSpace(strings.TrimPrefix(line, "gem"))
	if strings.HasPrefix(body, "(") && strings.HasSuffix(body, ")") {
		body = body[1 : len(body)-1]
	}
	args := splitArgs(body)
	if len(args) == 0 {
		return gemDecl{}, errs.New(errs.ErrCodeInvalidManifest, "gem without a name")
	}

	var d gemDecl
	name, ok := unquote(args[0])
	if !ok {
		return gemDecl{}, errs.New(errs.ErrCodeInvalidManifest, "gem name is not a string: %s", args[0])
	}
	if err := errs.ValidateGemName(name); err != nil {
		return gemDecl{}, err
	}
	d.name = name

	var clauses []string
	for _, arg := range args[1:] {
		if key, value, isOpt := option(arg); isOpt {
			switch key {
			case "group", "groups":
				d.groups = symbols(value)
			case "source", "git", "github", "path":
				if s, ok := unquote(value); ok {
					d.source = s
				}
			case "require":
				if s, ok := unquote(value); ok {
					d.require = s
				} else {
					d.require = value
				}
			}
			continue
		}
		if list, ok := stringList(arg); ok {
			clauses = append(clauses, list...)
		}
	}
	d.requirement = joinRequirements(clauses)
	return d, nil
}

type logicalLine struct {
	number int
	text   string
}

// logicalLines strips comments and joins lines that end with a comma or an
// open parenthesis onto the next one.
func logicalLines(r io.Reader) ([]logicalLine, error) {
	var (
		out     []logicalLine
		pending strings.Builder
		startAt int
		n       int
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		n++
		line := stripComment(sc.Text())
		if line == "" {
			continue
		}
		if pending.Len() == 0 {
			startAt = n
		} else {
			pending.WriteByte(' ')
		}
		cont := strings.HasSuffix(line, ",") || strings.HasSuffix(line, "(") || strings.HasSuffix(line, "\\")
		pending.WriteString(strings.TrimSpace(strings.TrimSuffix(line, "\\")))
		if cont {
			continue
		}
		out = append(out, logicalLine{number: startAt, text: pending.String()})
		pending.Reset()
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if pending.Len() > 0 {
		out = append(out, logicalLine{number: startAt, text: pending.String()})
	}
	return out, nil
}
