package deps

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/iancoleman/orderedmap"

	errs "github.com/matzehuels/debgems/pkg/errors"
)

// WorkingSet is an insertion-ordered collection of records with at most one
// record per name. It is not safe for concurrent mutation.
type WorkingSet struct {
	records []*Record
	index   map[string]int
}

// NewWorkingSet returns an empty set.
func NewWorkingSet() *WorkingSet {
	return &WorkingSet{index: make(map[string]int)}
}

// Len returns the number of records.
func (s *WorkingSet) Len() int { return len(s.records) }

// At returns the i-th record in insertion order.
func (s *WorkingSet) At(i int) *Record { return s.records[i] }

// Get returns the record named name.
func (s *WorkingSet) Get(name string) (*Record, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.records[i], true
}

// Has reports whether a record named name exists.
func (s *WorkingSet) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Add appends rec. It returns false and leaves the set unchanged when a
// record with the same name is already present.
func (s *WorkingSet) Add(rec *Record) bool {
	if _, ok := s.index[rec.Name]; ok {
		return false
	}
	s.index[rec.Name] = len(s.records)
	s.records = append(s.records, rec)
	return true
}

// Records returns the records in insertion order. The slice is shared with
// the set and must not be modified.
func (s *WorkingSet) Records() []*Record { return s.records }

// Names returns record names in insertion order.
func (s *WorkingSet) Names() []string {
	names := make([]string, len(s.records))
	for i, r := range s.records {
		names[i] = r.Name
	}
	return names
}

// Edges returns one edge per (parent, record) pair, in record order.
func (s *WorkingSet) Edges() []Edge {
	var edges []Edge
	for _, r := range s.records {
		for _, p := range r.Parents {
			edges = append(edges, Edge{From: p, To: r.Name})
		}
	}
	return edges
}

// Ordered returns the set as an ordered name -> record map.
func (s *WorkingSet) Ordered() *orderedmap.OrderedMap {
	m := orderedmap.New()
	m.SetEscapeHTML(false)
	for _, r := range s.records {
		m.Set(r.Name, r)
	}
	return m
}

// MarshalJSON encodes the set as a JSON object keyed by name, preserving
// insertion order. HTML characters in requirements are not escaped.
func (s *WorkingSet) MarshalJSON() ([]byte, error) {
	return s.Ordered().MarshalJSON()
}

// DecodeRecords reads a JSON object of name -> record, as written by
// [WorkingSet.MarshalJSON], preserving the object's key order. Unknown
// fields are rejected.
func DecodeRecords(r io.Reader) ([]*Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	order := orderedmap.New()
	if err := json.Unmarshal(data, order); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode records")
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode records")
	}

	records := make([]*Record, 0, len(raw))
	for _, name := range order.Keys() {
		dec := json.NewDecoder(bytes.NewReader(raw[name]))
		dec.DisallowUnknownFields()
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "record %q", name)
		}
		if rec.Name == "" {
			rec.Name = name
		}
		if rec.Name != name {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "record key %q holds %q", name, rec.Name)
		}
		records = append(records, &rec)
	}
	return records, nil
}

// ReadWorkingSet decodes records into a new set.
func ReadWorkingSet(r io.Reader) (*WorkingSet, error) {
	records, err := DecodeRecords(r)
	if err != nil {
		return nil, err
	}
	s := NewWorkingSet()
	for _, rec := range records {
		if !s.Add(rec) {
			return nil, fmt.Errorf("duplicate record %q", rec.Name)
		}
	}
	return s, nil
}
