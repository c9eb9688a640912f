package report

import (
	"github.com/matzehuels/debgems/pkg/deps"
)

// Summary counts records by packaging state.
type Summary struct {
	Total       int `json:"total"`
	Packaged    int `json:"packaged"` // in the archive or the NEW queue
	ITP         int `json:"itp"`
	Unpackaged  int `json:"unpackaged"`
	Satisfied   int `json:"satisfied"`
	Unsatisfied int `json:"unsatisfied"`
	Skipped     int `json:"skipped"`
	Errors      int `json:"errors"`
	Percent     int `json:"percent_complete"`
}

// Summarize counts the records of set. NEW counts as packaged; RFP counts
// as unpackaged. Skipped records are counted but excluded from the
// percentage.
func Summarize(set *deps.WorkingSet) Summary {
	var s Summary
	for _, r := range set.Records() {
		switch r.State {
		case deps.Skipped:
			s.Skipped++
			continue
		case deps.Satisfied:
			s.Satisfied++
		case deps.Unsatisfied:
			s.Unsatisfied++
		}
		if r.Error != "" {
			s.Errors++
		}
		switch r.Status {
		case deps.Packaged, deps.InNew:
			s.Packaged++
		case deps.ITP:
			s.ITP++
		default:
			s.Unpackaged++
		}
	}
	s.Total = s.Packaged + s.ITP + s.Unpackaged
	if s.Total > 0 {
		s.Percent = s.Packaged * 100 / s.Total
	}
	return s
}
