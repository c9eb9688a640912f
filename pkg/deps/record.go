package deps

import (
	"encoding/json"
	"slices"
)

// Tristate is a boolean that may not have been decided yet.
type Tristate int8

const (
	Unknown Tristate = iota
	Yes
	No
)

// TristateOf converts a decided boolean.
func TristateOf(b bool) Tristate {
	if b {
		return Yes
	}
	return No
}

// True reports whether t is [Yes].
func (t Tristate) True() bool { return t == Yes }

// MarshalJSON encodes Unknown as null.
func (t Tristate) MarshalJSON() ([]byte, error) {
	switch t {
	case Yes:
		return []byte("true"), nil
	case No:
		return []byte("false"), nil
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts true, false or null.
func (t *Tristate) UnmarshalJSON(data []byte) error {
	var b *bool
	if err := json.Unmarshal(data, &b); err != nil {
		return err
	}
	switch {
	case b == nil:
		*t = Unknown
	case *b:
		*t = Yes
	default:
		*t = No
	}
	return nil
}

// State is the position of a record in the resolution state machine.
type State string

const (
	Pending     State = "pending"
	Satisfied   State = "satisfied"
	Unsatisfied State = "unsatisfied"
	Skipped     State = "skipped"
)

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool { return s != Pending && s != "" }

// PackageStatus is the overall packaging state of a gem in Debian.
type PackageStatus string

const (
	Packaged   PackageStatus = "Packaged"
	InNew      PackageStatus = "NEW"
	ITP        PackageStatus = "ITP"
	RFP        PackageStatus = "RFP"
	Unpackaged PackageStatus = "Unpackaged"
)

// Suites where a package can be found, in lookup order.
const (
	SuiteUnstable     = "Unstable"
	SuiteExperimental = "Experimental"
	SuiteNew          = "NEW"
	SuiteITP          = "ITP"
	SuiteRFP          = "RFP"
	SuiteUnpackaged   = "Unpackaged"
)

// NoVersion is the version recorded when a package is not in the archive.
const NoVersion = "NA"

// Color classifies a record for the status page and the graph.
type Color string

const (
	Green  Color = "green"
	Yellow Color = "yellow"
	Blue   Color = "blue"
	Cyan   Color = "cyan"
	Red    Color = "red"
	Violet Color = "violet"
)

// ColorOf derives the color from the suite and the satisfaction result.
// Packaging status takes priority: unsatisfied records are only recolored
// violet when they are not already red or cyan.
func ColorOf(suite string, satisfied bool) Color {
	var c Color
	switch suite {
	case SuiteUnstable:
		c = Green
	case SuiteExperimental:
		c = Yellow
	case SuiteNew:
		c = Blue
	case SuiteITP, SuiteRFP:
		c = Cyan
	default:
		c = Red
	}
	if !satisfied && c != Red && c != Cyan {
		c = Violet
	}
	return c
}

// Packaging is what a [StatusProbe] reports for one Debian package.
type Packaging struct {
	DebianName string        `json:"debian_name"`
	Version    string        `json:"version"`
	Suite      string        `json:"suite"`
	Status     PackageStatus `json:"status"`
	Link       string        `json:"link,omitempty"`
}

// Requirement is a dependency declaration: a gem name and its raw
// requirement string.
type Requirement struct {
	Name        string `json:"name"`
	Requirement string `json:"requirements"`
}

// Record tracks one gem through resolution.
type Record struct {
	Name        string        `json:"name"`
	Requirement string        `json:"requirement"`
	Parents     []string      `json:"parent"`
	Group       string        `json:"group,omitempty"`
	Source      string        `json:"source,omitempty"`
	Autorequire string        `json:"autorequire,omitempty"`
	State       State         `json:"state"`
	Satisfied   Tristate      `json:"satisfied"`
	DebianName  string        `json:"debian_name"`
	Version     string        `json:"version"`
	Suite       string        `json:"suite"`
	Status      PackageStatus `json:"status"`
	Color       Color         `json:"color"`
	Link        string        `json:"link"`
	Error       string        `json:"error,omitempty"`
}

// NewRecord returns a pending record.
func NewRecord(name, requirement string, parents ...string) *Record {
	return &Record{
		Name:        name,
		Requirement: requirement,
		Parents:     slices.Clone(parents),
		State:       Pending,
	}
}

// AddParent appends parent unless it is already listed.
func (r *Record) AddParent(parent string) bool {
	if parent == "" || slices.Contains(r.Parents, parent) {
		return false
	}
	r.Parents = append(r.Parents, parent)
	return true
}

// Annotate copies a probe result onto the record.
func (r *Record) Annotate(p *Packaging) {
	if p.DebianName != "" {
		r.DebianName = p.DebianName
	}
	r.Version = p.Version
	r.Suite = p.Suite
	r.Status = p.Status
	r.Link = p.Link
}

// Settle moves the record to Satisfied or Unsatisfied and sets its color.
func (r *Record) Settle(satisfied bool) {
	r.Satisfied = TristateOf(satisfied)
	if satisfied {
		r.State = Satisfied
	} else {
		r.State = Unsatisfied
	}
	r.Color = ColorOf(r.Suite, satisfied)
}

// Degrade marks the record unsatisfied and unpackaged after a failure.
func (r *Record) Degrade(err error) {
	r.Version = NoVersion
	r.Suite = SuiteUnpackaged
	r.Status = Unpackaged
	r.Link = ""
	r.Error = err.Error()
	r.Settle(false)
}

// Skip marks the record as intentionally not checked.
func (r *Record) Skip() {
	r.State = Skipped
	r.Satisfied = Unknown
}

// Edge is a parent to child relation.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Result is the outcome of a resolution run.
type Result struct {
	Root  string
	Set   *WorkingSet
	Edges []Edge
}
